package emistat

import (
	"errors"
	"fmt"
	"sort"
)

// RankedEntity is one row of a per-region top-N ranking.
type RankedEntity struct {
	Region string
	Entity string
	// Average is the mean of the entity's reported values
	Average float64
	// Rank is 1-based within the region
	Rank int
}

// EntityShare reports the top emitting entity of a region for a fixed year
// and its percentage share of the region total.
type EntityShare struct {
	Region string
	Entity string
	Value  float64
	// RegionTotal is the sum over all reported values in the region/year
	RegionTotal float64
	// Share is Value / RegionTotal * 100
	Share float64
	// Rest is 100 - Share
	Rest float64
}

// TopNByAverage ranks entities within each region by the average of their
// reported values, descending, and returns rows with rank <= n. Ties are
// broken by entity name ascending so results are reproducible; the source
// query left tie order undefined. Entities with no reported values at all
// are excluded from the ranking.
func (d *Dataset) TopNByAverage(n int) []RankedEntity {
	if n <= 0 {
		return nil
	}

	type acc struct {
		sum   float64
		count int
	}
	byRegion := make(map[string]map[string]*acc)
	for _, o := range d.obs {
		if o.Value == nil {
			continue
		}
		if byRegion[o.Region] == nil {
			byRegion[o.Region] = make(map[string]*acc)
		}
		a := byRegion[o.Region][o.Entity]
		if a == nil {
			a = &acc{}
			byRegion[o.Region][o.Entity] = a
		}
		a.sum += *o.Value
		a.count++
	}

	var rows []RankedEntity
	for _, region := range sortedKeys(byRegion) {
		entities := byRegion[region]
		ranked := make([]RankedEntity, 0, len(entities))
		for entity, a := range entities {
			ranked = append(ranked, RankedEntity{
				Region:  region,
				Entity:  entity,
				Average: a.sum / float64(a.count),
			})
		}
		sort.Slice(ranked, func(i, j int) bool {
			if ranked[i].Average != ranked[j].Average {
				return ranked[i].Average > ranked[j].Average
			}
			return ranked[i].Entity < ranked[j].Entity
		})
		for i := range ranked {
			if i >= n {
				break
			}
			ranked[i].Rank = i + 1
			rows = append(rows, ranked[i])
		}
	}
	return rows
}

// TopEntityShare finds, per region, the single highest reported value for
// the given year and its percentage share of the region total. Regions
// with no rows for the year are omitted (an empty group is not an error).
// A region whose total is zero is excluded from the result rows and
// reported through the returned error, which wraps ErrDivisionByZero;
// the remaining regions are unaffected.
func (d *Dataset) TopEntityShare(year int) ([]EntityShare, error) {
	type top struct {
		entity string
		value  float64
		total  float64
		seen   bool
	}
	byRegion := make(map[string]*top)
	for _, o := range d.obs {
		if o.Year != year || o.Value == nil {
			continue
		}
		t := byRegion[o.Region]
		if t == nil {
			t = &top{}
			byRegion[o.Region] = t
		}
		t.total += *o.Value
		v := *o.Value
		if !t.seen || v > t.value || (v == t.value && o.Entity < t.entity) {
			t.entity = o.Entity
			t.value = v
			t.seen = true
		}
	}

	var rows []EntityShare
	var errs []error
	for _, region := range sortedKeys(byRegion) {
		t := byRegion[region]
		if t.total == 0 {
			errs = append(errs, fmt.Errorf("%w: region %s has zero total for year %d", ErrDivisionByZero, region, year))
			continue
		}
		share := t.value / t.total * 100
		rows = append(rows, EntityShare{
			Region:      region,
			Entity:      t.entity,
			Value:       t.value,
			RegionTotal: t.total,
			Share:       share,
			Rest:        100 - share,
		})
	}
	return rows, errors.Join(errs...)
}
