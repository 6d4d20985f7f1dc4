package emistat

import (
	"sort"
)

// RegionYearTotal is one summed cell of the region x year rollup.
type RegionYearTotal struct {
	Region string
	Year   int
	Total  float64
}

// DecadeSummary summarizes one region's values within a decade bucket.
type DecadeSummary struct {
	Region string
	Decade int
	// Mean, Min and Max consider reported values only
	Mean float64
	Min  float64
	Max  float64
	// Sum treats missing values as zero contribution
	Sum float64
	// Reported is the number of non-null values in the bucket
	Reported int
}

// RegionStats holds descriptive statistics for one region across all
// entities and years.
type RegionStats struct {
	Region string
	Min    float64
	Max    float64
	// Range is Max - Min
	Range  float64
	Mean   float64
	Median float64
	StdDev float64
	Sum    float64
	// Entities is the number of distinct entities in the region
	Entities int
	// Years is the number of distinct reporting years in the region
	Years int
}

// CompletenessRow reports how much of an entity's reporting span is
// actually covered by reported years.
type CompletenessRow struct {
	Region string
	Entity string
	// YearsReported is the count of distinct years with a row
	YearsReported int
	// Span is last year - first year + 1
	Span int
	// Completeness is YearsReported / Span * 100
	Completeness float64
}

// TotalsByRegionYear sums values grouped by (region, year), ordered by
// region then year. Missing values contribute zero; rows are still counted
// into their group so every (region, year) with data appears.
func (d *Dataset) TotalsByRegionYear() []RegionYearTotal {
	totals := make(map[string]map[int]float64)
	for _, o := range d.obs {
		if totals[o.Region] == nil {
			totals[o.Region] = make(map[int]float64)
		}
		v := 0.0
		if o.Value != nil {
			v = *o.Value
		}
		totals[o.Region][o.Year] += v
	}

	rows := make([]RegionYearTotal, 0, len(totals))
	for _, region := range sortedKeys(totals) {
		for _, year := range sortedIntKeys(totals[region]) {
			rows = append(rows, RegionYearTotal{
				Region: region,
				Year:   year,
				Total:  totals[region][year],
			})
		}
	}
	return rows
}

// DecadeSummary groups observations by (region, decade) and emits mean,
// min, max and sum per bucket. The decade of 1949 is 1940: buckets use
// floor division, including for negative years.
func (d *Dataset) DecadeSummary() []DecadeSummary {
	type bucket struct {
		values []float64
		sum    float64
	}
	buckets := make(map[string]map[int]*bucket)
	for _, o := range d.obs {
		decade := decadeOf(o.Year)
		if buckets[o.Region] == nil {
			buckets[o.Region] = make(map[int]*bucket)
		}
		b := buckets[o.Region][decade]
		if b == nil {
			b = &bucket{}
			buckets[o.Region][decade] = b
		}
		if o.Value != nil {
			b.values = append(b.values, *o.Value)
			b.sum += *o.Value
		}
	}

	var rows []DecadeSummary
	for _, region := range sortedKeys(buckets) {
		for _, decade := range sortedIntKeys(buckets[region]) {
			b := buckets[region][decade]
			row := DecadeSummary{
				Region:   region,
				Decade:   decade,
				Sum:      b.sum,
				Reported: len(b.values),
			}
			if len(b.values) > 0 {
				row.Mean = mean(b.values)
				row.Min = minOf(b.values)
				row.Max = maxOf(b.values)
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// RegionSummaryStats computes per-region descriptive statistics across all
// entities and years. The standard deviation convention follows
// Options.StdDev; the median uses the interpolated percentile definition.
// Min, max, mean, median, stddev and sum consider reported values only,
// while the entity and year counts cover every joined row.
func (d *Dataset) RegionSummaryStats() []RegionStats {
	type acc struct {
		values   []float64
		entities map[string]bool
		years    map[int]bool
	}
	regions := make(map[string]*acc)
	for _, o := range d.obs {
		a := regions[o.Region]
		if a == nil {
			a = &acc{entities: make(map[string]bool), years: make(map[int]bool)}
			regions[o.Region] = a
		}
		a.entities[o.Entity] = true
		a.years[o.Year] = true
		if o.Value != nil {
			a.values = append(a.values, *o.Value)
		}
	}

	rows := make([]RegionStats, 0, len(regions))
	for _, region := range sortedKeys(regions) {
		a := regions[region]
		row := RegionStats{
			Region:   region,
			Entities: len(a.entities),
			Years:    len(a.years),
		}
		if len(a.values) > 0 {
			row.Min = minOf(a.values)
			row.Max = maxOf(a.values)
			row.Range = row.Max - row.Min
			row.Mean = mean(a.values)
			row.Median = median(a.values)
			row.StdDev = stdDev(a.values, d.opts.StdDev)
			for _, v := range a.values {
				row.Sum += v
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// ReportingCompleteness reports the share of each entity's reporting span
// covered by actual rows, filtered to entities with at least
// Options.MinCompletenessYears distinct years. Ordered by completeness
// descending, then year count descending, then entity ascending.
func (d *Dataset) ReportingCompleteness() []CompletenessRow {
	type span struct {
		region   string
		years    map[int]bool
		min, max int
	}
	entities := make(map[string]*span)
	for _, o := range d.obs {
		s := entities[o.Entity]
		if s == nil {
			s = &span{region: o.Region, years: make(map[int]bool), min: o.Year, max: o.Year}
			entities[o.Entity] = s
		}
		s.years[o.Year] = true
		if o.Year < s.min {
			s.min = o.Year
		}
		if o.Year > s.max {
			s.max = o.Year
		}
	}

	var rows []CompletenessRow
	for entity, s := range entities {
		reported := len(s.years)
		if reported < d.opts.MinCompletenessYears {
			continue
		}
		spanYears := s.max - s.min + 1
		rows = append(rows, CompletenessRow{
			Region:        s.region,
			Entity:        entity,
			YearsReported: reported,
			Span:          spanYears,
			Completeness:  float64(reported) / float64(spanYears) * 100,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Completeness != rows[j].Completeness {
			return rows[i].Completeness > rows[j].Completeness
		}
		if rows[i].YearsReported != rows[j].YearsReported {
			return rows[i].YearsReported > rows[j].YearsReported
		}
		return rows[i].Entity < rows[j].Entity
	})
	return rows
}

// sortedKeys returns map keys in ascending order.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// sortedIntKeys returns integer map keys in ascending order.
func sortedIntKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func minOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
