package emistat

import (
	"errors"
	"fmt"

	"github.com/emistat/emistat/domain/model"
)

// GrowthPoint is one entity-year row with its growth rate against the
// entity's previous reported row. Growth is nil when undefined: the first
// row of an entity, a missing current or previous value, or a previous
// value of zero or below.
type GrowthPoint struct {
	Entity string
	Region string
	Year   int
	Value  *float64
	// PrevYear is the year of the preceding reported row, 0 for the first row
	PrevYear int
	// Growth is (curr - prev) / prev * 100, nil when undefined
	Growth *float64
}

// SpikeRow is the single largest defined growth rate within a region.
type SpikeRow struct {
	Region string
	Entity string
	Year   int
	Growth float64
}

// RollingPoint is one entity-year row with its trailing moving average.
type RollingPoint struct {
	Entity string
	Year   int
	Value  *float64
	// Rolling averages the reported values among the current row and up to
	// window-1 preceding rows; nil when none of those rows report a value
	Rolling *float64
}

// MedianFlagRow flags one reported value against its entity's all-years median.
type MedianFlagRow struct {
	Region string
	Entity string
	Year   int
	Value  float64
	Median float64
	// Flag is "above", "below" or "equal"
	Flag string
}

// FirstLastGrowth compares a region's summed total between its first and
// last reported year.
type FirstLastGrowth struct {
	Region     string
	FirstYear  int
	LastYear   int
	FirstTotal float64
	LastTotal  float64
	// Absolute is LastTotal - FirstTotal
	Absolute float64
	// Percent is Absolute / FirstTotal * 100
	Percent float64
}

// Flag values for MedianFlagRow
const (
	FlagAbove = "above"
	FlagBelow = "below"
	FlagEqual = "equal"
)

// entityRuns walks observations entity by entity. Observations are sorted
// by (entity, year) at load, so each entity is one contiguous run in year
// order.
func (d *Dataset) entityRuns(fn func(entity string, run []model.Observation)) {
	start := 0
	for i := 1; i <= len(d.obs); i++ {
		if i == len(d.obs) || d.obs[i].Entity != d.obs[start].Entity {
			fn(d.obs[start].Entity, d.obs[start:i])
			start = i
		}
	}
}

// YearOverYearGrowth computes, per entity in year order, the percentage
// change of each row against the entity's previous reported row. "Previous"
// means the previous row the entity actually reported, not the previous
// calendar year: a gap in the series makes the next growth span the gap.
// Growth is nil, not zero, when the previous value is missing or <= 0.
func (d *Dataset) YearOverYearGrowth() []GrowthPoint {
	points := make([]GrowthPoint, 0, len(d.obs))
	d.entityRuns(func(entity string, run []model.Observation) {
		for i, o := range run {
			p := GrowthPoint{
				Entity: entity,
				Region: o.Region,
				Year:   o.Year,
				Value:  o.Value,
			}
			if i > 0 {
				prev := run[i-1]
				p.PrevYear = prev.Year
				if o.Value != nil && prev.Value != nil && *prev.Value > 0 {
					g := (*o.Value - *prev.Value) / *prev.Value * 100
					p.Growth = &g
				}
			}
			points = append(points, p)
		}
	})
	return points
}

// MaxSpikePerRegion returns, per region, the (entity, year) row with the
// largest defined growth rate. Ties are broken by entity ascending, then
// year ascending, so the result is deterministic. Regions without any
// defined growth rate are omitted.
func (d *Dataset) MaxSpikePerRegion() []SpikeRow {
	best := make(map[string]*SpikeRow)
	for _, p := range d.YearOverYearGrowth() {
		if p.Growth == nil {
			continue
		}
		b := best[p.Region]
		better := b == nil || *p.Growth > b.Growth ||
			(*p.Growth == b.Growth && (p.Entity < b.Entity || (p.Entity == b.Entity && p.Year < b.Year)))
		if better {
			best[p.Region] = &SpikeRow{
				Region: p.Region,
				Entity: p.Entity,
				Year:   p.Year,
				Growth: *p.Growth,
			}
		}
	}

	rows := make([]SpikeRow, 0, len(best))
	for _, region := range sortedKeys(best) {
		rows = append(rows, *best[region])
	}
	return rows
}

// RollingAverage computes, per entity in year order, the trailing moving
// average over the current row and up to window-1 preceding rows. A window
// of 0 or below uses Options.RollingWindow. Partial windows at the start of
// a series average over however many rows exist; missing values inside the
// window are skipped rather than padded with zeros.
func (d *Dataset) RollingAverage(window int) []RollingPoint {
	if window <= 0 {
		window = d.opts.RollingWindow
	}

	points := make([]RollingPoint, 0, len(d.obs))
	d.entityRuns(func(entity string, run []model.Observation) {
		for i, o := range run {
			p := RollingPoint{
				Entity: entity,
				Year:   o.Year,
				Value:  o.Value,
			}
			lo := i - window + 1
			if lo < 0 {
				lo = 0
			}
			var sum float64
			var n int
			for _, w := range run[lo : i+1] {
				if w.Value != nil {
					sum += *w.Value
					n++
				}
			}
			if n > 0 {
				avg := sum / float64(n)
				p.Rolling = &avg
			}
			points = append(points, p)
		}
	})
	return points
}

// MedianFlag flags every reported value against the median of its entity's
// values across all years. Rows without a reported value carry nothing to
// compare and are omitted.
func (d *Dataset) MedianFlag() []MedianFlagRow {
	var rows []MedianFlagRow
	d.entityRuns(func(entity string, run []model.Observation) {
		var values []float64
		for _, o := range run {
			if o.Value != nil {
				values = append(values, *o.Value)
			}
		}
		if len(values) == 0 {
			return
		}
		med := median(values)
		for _, o := range run {
			if o.Value == nil {
				continue
			}
			flag := FlagEqual
			switch {
			case *o.Value > med:
				flag = FlagAbove
			case *o.Value < med:
				flag = FlagBelow
			}
			rows = append(rows, MedianFlagRow{
				Region: o.Region,
				Entity: entity,
				Year:   o.Year,
				Value:  *o.Value,
				Median: med,
				Flag:   flag,
			})
		}
	})
	return rows
}

// FirstLastYearGrowth compares, per region, the summed total of the
// region's first reported year against its last. First and last are the
// minimum and maximum year across all entities in the region; the totals
// sum every entity's value for exactly those years, missing values
// contributing zero. A region whose first-year total is zero is excluded
// from the rows and reported through the returned error, which wraps
// ErrDivisionByZero.
func (d *Dataset) FirstLastYearGrowth() ([]FirstLastGrowth, error) {
	type spanAcc struct {
		first, last           int
		firstTotal, lastTotal float64
	}
	regions := make(map[string]*spanAcc)
	for _, o := range d.obs {
		s := regions[o.Region]
		if s == nil {
			s = &spanAcc{first: o.Year, last: o.Year}
			regions[o.Region] = s
		}
		if o.Year < s.first {
			s.first = o.Year
		}
		if o.Year > s.last {
			s.last = o.Year
		}
	}
	for _, o := range d.obs {
		if o.Value == nil {
			continue
		}
		s := regions[o.Region]
		if o.Year == s.first {
			s.firstTotal += *o.Value
		}
		if o.Year == s.last {
			s.lastTotal += *o.Value
		}
	}

	var rows []FirstLastGrowth
	var errs []error
	for _, region := range sortedKeys(regions) {
		s := regions[region]
		if s.firstTotal == 0 {
			errs = append(errs, fmt.Errorf("%w: region %s has zero total for first year %d", ErrDivisionByZero, region, s.first))
			continue
		}
		abs := s.lastTotal - s.firstTotal
		rows = append(rows, FirstLastGrowth{
			Region:     region,
			FirstYear:  s.first,
			LastYear:   s.last,
			FirstTotal: s.firstTotal,
			LastTotal:  s.lastTotal,
			Absolute:   abs,
			Percent:    abs / s.firstTotal * 100,
		})
	}
	return rows, errors.Join(errs...)
}
