package emistat

import (
	"strconv"

	"github.com/emistat/emistat/domain/model"
)

// ResultTable is the plain tabular form of an analytic result: a header
// plus string records. It is the handoff surface to external reporting and
// charting layers, and the input to SaveTable / WriteTable.
type ResultTable struct {
	Name    string
	Header  model.Header
	Records []model.Record
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatPercent renders percentages with two decimals, the precision the
// reporting layer expects for shares and growth rates.
func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// formatNullable renders a missing value as an empty cell.
func formatNullable(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

// TotalsTable renders TotalsByRegionYear output.
func TotalsTable(rows []RegionYearTotal) ResultTable {
	t := ResultTable{
		Name:   "totals_by_region_year",
		Header: model.NewHeader([]string{"region", "year", "total"}),
	}
	for _, r := range rows {
		t.Records = append(t.Records, model.NewRecord([]string{
			r.Region, strconv.Itoa(r.Year), formatFloat(r.Total),
		}))
	}
	return t
}

// DecadesTable renders DecadeSummary output.
func DecadesTable(rows []DecadeSummary) ResultTable {
	t := ResultTable{
		Name:   "decade_summary",
		Header: model.NewHeader([]string{"region", "decade", "mean", "min", "max", "sum", "reported"}),
	}
	for _, r := range rows {
		t.Records = append(t.Records, model.NewRecord([]string{
			r.Region, strconv.Itoa(r.Decade),
			formatFloat(r.Mean), formatFloat(r.Min), formatFloat(r.Max), formatFloat(r.Sum),
			strconv.Itoa(r.Reported),
		}))
	}
	return t
}

// StatsTable renders RegionSummaryStats output.
func StatsTable(rows []RegionStats) ResultTable {
	t := ResultTable{
		Name: "region_summary_stats",
		Header: model.NewHeader([]string{
			"region", "min", "max", "range", "mean", "median", "stddev", "sum", "entities", "years",
		}),
	}
	for _, r := range rows {
		t.Records = append(t.Records, model.NewRecord([]string{
			r.Region,
			formatFloat(r.Min), formatFloat(r.Max), formatFloat(r.Range),
			formatFloat(r.Mean), formatFloat(r.Median), formatFloat(r.StdDev), formatFloat(r.Sum),
			strconv.Itoa(r.Entities), strconv.Itoa(r.Years),
		}))
	}
	return t
}

// CompletenessTable renders ReportingCompleteness output.
func CompletenessTable(rows []CompletenessRow) ResultTable {
	t := ResultTable{
		Name:   "reporting_completeness",
		Header: model.NewHeader([]string{"region", "entity", "years_reported", "span", "completeness_pct"}),
	}
	for _, r := range rows {
		t.Records = append(t.Records, model.NewRecord([]string{
			r.Region, r.Entity,
			strconv.Itoa(r.YearsReported), strconv.Itoa(r.Span), formatPercent(r.Completeness),
		}))
	}
	return t
}

// TopNTable renders TopNByAverage output.
func TopNTable(rows []RankedEntity) ResultTable {
	t := ResultTable{
		Name:   "top_by_average",
		Header: model.NewHeader([]string{"region", "entity", "average", "rank"}),
	}
	for _, r := range rows {
		t.Records = append(t.Records, model.NewRecord([]string{
			r.Region, r.Entity, formatFloat(r.Average), strconv.Itoa(r.Rank),
		}))
	}
	return t
}

// SharesTable renders TopEntityShare output.
func SharesTable(rows []EntityShare) ResultTable {
	t := ResultTable{
		Name:   "top_entity_share",
		Header: model.NewHeader([]string{"region", "entity", "value", "region_total", "share_pct", "rest_pct"}),
	}
	for _, r := range rows {
		t.Records = append(t.Records, model.NewRecord([]string{
			r.Region, r.Entity,
			formatFloat(r.Value), formatFloat(r.RegionTotal),
			formatPercent(r.Share), formatPercent(r.Rest),
		}))
	}
	return t
}

// GrowthTable renders YearOverYearGrowth output. Undefined growth rates
// become empty cells.
func GrowthTable(rows []GrowthPoint) ResultTable {
	t := ResultTable{
		Name:   "year_over_year_growth",
		Header: model.NewHeader([]string{"entity", "region", "year", "value", "prev_year", "growth_pct"}),
	}
	for _, r := range rows {
		prevYear := ""
		if r.PrevYear != 0 {
			prevYear = strconv.Itoa(r.PrevYear)
		}
		growth := ""
		if r.Growth != nil {
			growth = formatPercent(*r.Growth)
		}
		t.Records = append(t.Records, model.NewRecord([]string{
			r.Entity, r.Region, strconv.Itoa(r.Year),
			formatNullable(r.Value), prevYear, growth,
		}))
	}
	return t
}

// SpikesTable renders MaxSpikePerRegion output.
func SpikesTable(rows []SpikeRow) ResultTable {
	t := ResultTable{
		Name:   "max_spike_per_region",
		Header: model.NewHeader([]string{"region", "entity", "year", "growth_pct"}),
	}
	for _, r := range rows {
		t.Records = append(t.Records, model.NewRecord([]string{
			r.Region, r.Entity, strconv.Itoa(r.Year), formatPercent(r.Growth),
		}))
	}
	return t
}

// RollingTable renders RollingAverage output.
func RollingTable(rows []RollingPoint) ResultTable {
	t := ResultTable{
		Name:   "rolling_average",
		Header: model.NewHeader([]string{"entity", "year", "value", "rolling_avg"}),
	}
	for _, r := range rows {
		t.Records = append(t.Records, model.NewRecord([]string{
			r.Entity, strconv.Itoa(r.Year),
			formatNullable(r.Value), formatNullable(r.Rolling),
		}))
	}
	return t
}

// MedianFlagsTable renders MedianFlag output.
func MedianFlagsTable(rows []MedianFlagRow) ResultTable {
	t := ResultTable{
		Name:   "median_flags",
		Header: model.NewHeader([]string{"region", "entity", "year", "value", "median", "flag"}),
	}
	for _, r := range rows {
		t.Records = append(t.Records, model.NewRecord([]string{
			r.Region, r.Entity, strconv.Itoa(r.Year),
			formatFloat(r.Value), formatFloat(r.Median), r.Flag,
		}))
	}
	return t
}

// FirstLastTable renders FirstLastYearGrowth output.
func FirstLastTable(rows []FirstLastGrowth) ResultTable {
	t := ResultTable{
		Name: "first_last_year_growth",
		Header: model.NewHeader([]string{
			"region", "first_year", "last_year", "first_total", "last_total", "absolute", "percent",
		}),
	}
	for _, r := range rows {
		t.Records = append(t.Records, model.NewRecord([]string{
			r.Region,
			strconv.Itoa(r.FirstYear), strconv.Itoa(r.LastYear),
			formatFloat(r.FirstTotal), formatFloat(r.LastTotal),
			formatFloat(r.Absolute), formatPercent(r.Percent),
		}))
	}
	return t
}

// WideTableResult renders a WideTable with one column per year. Nil cells
// become empty fields, preserving the null fill.
func WideTableResult(wide WideTable) ResultTable {
	header := make([]string, 0, len(wide.Years)+1)
	header = append(header, "entity")
	for _, y := range wide.Years {
		header = append(header, strconv.Itoa(y))
	}

	t := ResultTable{Name: "wide_by_year", Header: model.NewHeader(header)}
	for _, row := range wide.Rows {
		rec := make(model.Record, 0, len(row.Cells)+1)
		rec = append(rec, row.Entity)
		for _, cell := range row.Cells {
			rec = append(rec, formatNullable(cell))
		}
		t.Records = append(t.Records, rec)
	}
	return t
}

// LongTable renders LongFromWide output.
func LongTable(rows []LongRow) ResultTable {
	t := ResultTable{
		Name:   "long_from_wide",
		Header: model.NewHeader([]string{"entity", "year", "value"}),
	}
	for _, r := range rows {
		t.Records = append(t.Records, model.NewRecord([]string{
			r.Entity, strconv.Itoa(r.Year), formatFloat(r.Value),
		}))
	}
	return t
}

// MatrixTable renders a Matrix with its zero-filled cells.
func MatrixTable(name, rowLabel string, m Matrix) ResultTable {
	header := make([]string, 0, len(m.ColLabels)+1)
	header = append(header, rowLabel)
	header = append(header, m.ColLabels...)

	t := ResultTable{Name: name, Header: model.NewHeader(header)}
	for i, label := range m.RowLabels {
		rec := make(model.Record, 0, len(m.ColLabels)+1)
		rec = append(rec, label)
		for _, cell := range m.Cells[i] {
			rec = append(rec, formatFloat(cell))
		}
		t.Records = append(t.Records, rec)
	}
	return t
}
