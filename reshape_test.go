package emistat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emistat/emistat/domain/model"
)

func TestWideByYear(t *testing.T) {
	t.Parallel()

	wide := testDataset().WideByYear([]int{1990, 1991, 1993})
	assert.Equal(t, []int{1990, 1991, 1993}, wide.Years)
	require.Len(t, wide.Rows, 4)

	assert.Equal(t, "China", wide.Rows[0].Entity)
	require.NotNil(t, wide.Rows[0].Cells[0])
	assert.InDelta(t, 100.0, *wide.Rows[0].Cells[0], 1e-9)
	require.NotNil(t, wide.Rows[0].Cells[2])
	assert.InDelta(t, 120.0, *wide.Rows[0].Cells[2], 1e-9)

	// France never reports 1993: the cell is null, not zero.
	assert.Equal(t, "France", wide.Rows[1].Entity)
	assert.Nil(t, wide.Rows[1].Cells[2])

	// India has a 1993 row with no reported value; it stays null too.
	assert.Equal(t, "India", wide.Rows[3].Entity)
	assert.Nil(t, wide.Rows[3].Cells[2])
	require.NotNil(t, wide.Rows[3].Cells[1])
	assert.InDelta(t, 60.0, *wide.Rows[3].Cells[1], 1e-9)
}

func TestWideByYearCellsAreCopies(t *testing.T) {
	t.Parallel()

	ds := testDataset()
	wide := ds.WideByYear([]int{1990})

	require.NotNil(t, wide.Rows[0].Cells[0])
	*wide.Rows[0].Cells[0] = -1

	// Writing through the pivot must not reach the dataset.
	obs := ds.Observations()
	require.NotNil(t, obs[0].Value)
	assert.InDelta(t, 100.0, *obs[0].Value, 1e-9)
}

func TestWideByYearNoMatchingYears(t *testing.T) {
	t.Parallel()

	// Every joined entity keeps its row even when none of the requested
	// years match; the row is all nulls.
	wide := testDataset().WideByYear([]int{2050})
	require.Len(t, wide.Rows, 4)
	for _, row := range wide.Rows {
		require.Len(t, row.Cells, 1)
		assert.Nil(t, row.Cells[0])
	}
}

func TestLongFromWide(t *testing.T) {
	t.Parallel()

	ds := testDataset()
	wide := ds.WideByYear([]int{1990, 1991, 1993})
	long := LongFromWide(wide)

	// One long row per non-null cell: nine reported values survive the
	// round trip, the nulls disappear.
	require.Len(t, long, 9)

	assert.Equal(t, LongRow{Entity: "China", Year: 1990, Value: 100}, long[0])
	assert.Equal(t, LongRow{Entity: "China", Year: 1993, Value: 120}, long[2])

	// Round trip: every long row matches an original reported observation.
	values := make(map[string]map[int]float64)
	for _, o := range ds.Observations() {
		if o.Value == nil {
			continue
		}
		if values[o.Entity] == nil {
			values[o.Entity] = make(map[int]float64)
		}
		values[o.Entity][o.Year] = *o.Value
	}
	for _, r := range long {
		assert.InDelta(t, values[r.Entity][r.Year], r.Value, 1e-9)
	}
}

func TestMatrixByRegionYear(t *testing.T) {
	t.Parallel()

	m := testDataset().MatrixByRegionYear([]int{1990, 1993})

	assert.Equal(t, []string{"1990", "1993"}, m.ColLabels)
	require.Equal(t, []string{"Asia", "Europe"}, m.RowLabels)
	require.Len(t, m.Cells, 2)

	assert.InDelta(t, 150.0, m.Cells[0][0], 1e-9)
	assert.InDelta(t, 120.0, m.Cells[0][1], 1e-9)

	// Europe has no 1993 data: the matrix cell is zero, unlike the wide
	// pivot where the same absence is null.
	assert.InDelta(t, 120.0, m.Cells[1][0], 1e-9)
	assert.Zero(t, m.Cells[1][1])
}

func TestMatrixByEntityRegion(t *testing.T) {
	t.Parallel()

	m := testDataset().MatrixByEntityRegion([]string{"Asia", "Europe"})

	assert.Equal(t, []string{"Asia", "Europe"}, m.ColLabels)
	require.Equal(t, []string{"China", "France", "Germany", "India"}, m.RowLabels)

	assert.InDelta(t, 370.0, m.Cells[0][0], 1e-9)
	assert.Zero(t, m.Cells[0][1])
	assert.Zero(t, m.Cells[1][0])
	assert.InDelta(t, 85.0, m.Cells[1][1], 1e-9)
	assert.InDelta(t, 170.0, m.Cells[2][1], 1e-9)
	assert.InDelta(t, 110.0, m.Cells[3][0], 1e-9)
}

func TestMatrixByRegionYearIgnoresUnlistedColumns(t *testing.T) {
	t.Parallel()

	ds := &Dataset{
		obs: []model.Observation{
			{Entity: "Japan", Region: "Asia", Year: 1990, Value: model.Float(10)},
			{Entity: "Japan", Region: "Asia", Year: 1991, Value: model.Float(99)},
		},
		opts: NewOptions(),
	}
	m := ds.MatrixByRegionYear([]int{1990})
	require.Len(t, m.Cells, 1)
	assert.InDelta(t, 10.0, m.Cells[0][0], 1e-9)
}
