package emistat

import (
	"sort"
	"strconv"

	"github.com/emistat/emistat/domain/model"
)

// WideRow is one entity row of a wide (entity x year) table. Cells align
// with the year list of the enclosing WideTable; a nil cell means the
// (entity, year) pair has no reported value.
type WideRow struct {
	Entity string
	Cells  []*float64
}

// WideTable is an entity x year pivot over a caller-specified year list.
// Missing (entity, year) pairs are nil, not zero: absence of a report and
// a reported zero stay distinguishable.
type WideTable struct {
	Years []int
	Rows  []WideRow
}

// LongRow is one (entity, year, value) row of the long format.
type LongRow struct {
	Entity string
	Year   int
	Value  float64
}

// Matrix is a two-dimensional cross-tabulation with summed cells. Unlike
// WideTable, combinations without data are 0, not null; downstream
// consumers rely on the zero fill, so the two fill policies stay separate
// operations.
type Matrix struct {
	RowLabels []string
	ColLabels []string
	Cells     [][]float64
}

// WideByYear pivots observations into one row per entity with one column
// per requested year. Entities are ordered by name; only entities present
// in the joined data appear. Cells for missing (entity, year) pairs and
// for rows whose value was not reported are nil.
func (d *Dataset) WideByYear(years []int) WideTable {
	colIndex := make(map[int]int, len(years))
	for i, y := range years {
		colIndex[y] = i
	}

	// Every joined entity gets a row, even when none of its years are in
	// the requested list: the row is then all nulls.
	cells := make(map[string][]*float64)
	for _, o := range d.obs {
		row := cells[o.Entity]
		if row == nil {
			row = make([]*float64, len(years))
			cells[o.Entity] = row
		}
		// Cells hold copies so writes through the returned table can
		// never reach the dataset's own observations.
		if col, ok := colIndex[o.Year]; ok && o.Value != nil {
			row[col] = model.Float(*o.Value)
		}
	}

	table := WideTable{Years: append([]int(nil), years...)}
	for _, entity := range sortedKeys(cells) {
		table.Rows = append(table.Rows, WideRow{Entity: entity, Cells: cells[entity]})
	}
	return table
}

// LongFromWide is the inverse of WideByYear: one row per non-nil cell,
// ordered by entity then year position. Restricted to the same year list,
// the round trip through WideByYear is lossless modulo the omission of
// nil cells.
func LongFromWide(wide WideTable) []LongRow {
	var rows []LongRow
	for _, r := range wide.Rows {
		for i, cell := range r.Cells {
			if cell == nil {
				continue
			}
			rows = append(rows, LongRow{
				Entity: r.Entity,
				Year:   wide.Years[i],
				Value:  *cell,
			})
		}
	}
	return rows
}

// MatrixByRegionYear cross-tabulates regions (rows) against the given
// years (columns) with summed values. Combinations without data are 0.
func (d *Dataset) MatrixByRegionYear(years []int) Matrix {
	colIndex := make(map[int]int, len(years))
	cols := make([]string, len(years))
	for i, y := range years {
		colIndex[y] = i
		cols[i] = strconv.Itoa(y)
	}

	sums := make(map[string][]float64)
	for _, o := range d.obs {
		col, ok := colIndex[o.Year]
		if !ok || o.Value == nil {
			continue
		}
		row := sums[o.Region]
		if row == nil {
			row = make([]float64, len(years))
			sums[o.Region] = row
		}
		row[col] += *o.Value
	}

	return matrixFrom(sums, cols)
}

// MatrixByEntityRegion cross-tabulates entities (rows) against the given
// regions (columns) with summed values. An entity's cells are zero for
// every region except its own; the zero fill is intentional.
func (d *Dataset) MatrixByEntityRegion(regions []string) Matrix {
	colIndex := make(map[string]int, len(regions))
	for i, r := range regions {
		colIndex[r] = i
	}

	sums := make(map[string][]float64)
	for _, o := range d.obs {
		col, ok := colIndex[o.Region]
		if !ok || o.Value == nil {
			continue
		}
		row := sums[o.Entity]
		if row == nil {
			row = make([]float64, len(regions))
			sums[o.Entity] = row
		}
		row[col] += *o.Value
	}

	return matrixFrom(sums, append([]string(nil), regions...))
}

// matrixFrom assembles a Matrix from per-row sums with rows sorted by label.
func matrixFrom(sums map[string][]float64, cols []string) Matrix {
	m := Matrix{ColLabels: cols}
	labels := make([]string, 0, len(sums))
	for label := range sums {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		m.RowLabels = append(m.RowLabels, label)
		m.Cells = append(m.Cells, sums[label])
	}
	return m
}
