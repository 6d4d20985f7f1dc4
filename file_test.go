package emistat

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/apache/arrow/go/v18/parquet"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/emistat/emistat/domain/model"
)

func TestDetectFileType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path string
		want FileType
	}{
		{name: "CSV file", path: "data.csv", want: FileTypeCSV},
		{name: "TSV file", path: "data.tsv", want: FileTypeTSV},
		{name: "XLSX file", path: "data.xlsx", want: FileTypeXLSX},
		{name: "Parquet file", path: "data.parquet", want: FileTypeParquet},
		{name: "Gzipped CSV", path: "data.csv.gz", want: FileTypeCSVGZ},
		{name: "Bzip2 CSV", path: "data.csv.bz2", want: FileTypeCSVBZ2},
		{name: "XZ CSV", path: "data.csv.xz", want: FileTypeCSVXZ},
		{name: "Zstd CSV", path: "data.csv.zst", want: FileTypeCSVZSTD},
		{name: "Zstd TSV", path: "data.tsv.zst", want: FileTypeTSVZSTD},
		{name: "Uppercase extension", path: "DATA.CSV", want: FileTypeCSV},
		{name: "Compressed XLSX unsupported", path: "data.xlsx.gz", want: FileTypeUnsupported},
		{name: "Compressed Parquet unsupported", path: "data.parquet.gz", want: FileTypeUnsupported},
		{name: "Unknown extension", path: "data.txt", want: FileTypeUnsupported},
		{name: "No extension", path: "data", want: FileTypeUnsupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, detectFileType(tt.path))
		})
	}
}

func TestFileTypeBaseType(t *testing.T) {
	t.Parallel()

	assert.Equal(t, FileTypeCSV, FileTypeCSVGZ.baseType())
	assert.Equal(t, FileTypeCSV, FileTypeCSVZSTD.baseType())
	assert.Equal(t, FileTypeTSV, FileTypeTSVBZ2.baseType())
	assert.Equal(t, FileTypeXLSX, FileTypeXLSX.baseType())
	assert.Equal(t, FileTypeParquet, FileTypeParquet.baseType())
	assert.Equal(t, FileTypeUnsupported, FileTypeUnsupported.baseType())
}

func TestTableFromFilePath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "Plain CSV", path: filepath.Join("dir", "emissions.csv"), want: "emissions"},
		{name: "Compressed CSV strips both extensions", path: "emissions.csv.gz", want: "emissions"},
		{name: "Zstd TSV", path: "mapping.tsv.zst", want: "mapping"},
		{name: "Parquet", path: "data.parquet", want: "data"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tableFromFilePath(tt.path))
		})
	}
}

func TestStripBOM(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"entity", "code"}, stripBOM([]string{"﻿entity", "code"}))
	assert.Equal(t, []string{"entity"}, stripBOM([]string{"entity"}))
	assert.Empty(t, stripBOM(nil))
}

func TestValidateColumnNames(t *testing.T) {
	t.Parallel()

	assert.NoError(t, validateColumnNames([]string{"entity", "code", "year"}))
	assert.ErrorIs(t, validateColumnNames([]string{"entity", "entity"}), ErrDuplicateColumnName)
}

func TestParseDelimitedFile(t *testing.T) {
	t.Parallel()

	t.Run("CSV with ragged rows", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "data.csv")
		content := "Entity,Code,Year,Value\nChina,CHN,1990,100\nShort,CHN\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		table, err := newFile(path).toTable(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "data", table.name)
		assert.True(t, table.header.Equal(model.NewHeader([]string{"Entity", "Code", "Year", "Value"})))
		// Ragged rows survive parsing; the decoder decides what to skip.
		require.Len(t, table.records, 2)
		assert.Len(t, table.records[1], 2)
	})

	t.Run("TSV", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "data.tsv")
		content := "Entity\tCode\nChina\tCHN\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		table, err := newFile(path).toTable(context.Background())
		require.NoError(t, err)
		require.Len(t, table.records, 1)
		assert.True(t, table.records[0].Equal(model.NewRecord([]string{"China", "CHN"})))
	})

	t.Run("Header BOM is stripped", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "data.csv")
		content := "﻿Entity,Code\nChina,CHN\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		table, err := newFile(path).toTable(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Entity", table.header[0])
	})
}

func TestParseXLSX(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data.xlsx")

	wb := excelize.NewFile()
	sheet := wb.GetSheetName(0)
	require.NoError(t, wb.SetSheetRow(sheet, "A1", &[]any{"Entity", "Code", "Year", "Value"}))
	require.NoError(t, wb.SetSheetRow(sheet, "A2", &[]any{"China", "CHN", 1990, 100}))
	require.NoError(t, wb.SetSheetRow(sheet, "A3", &[]any{"India", "IND", 1990, ""}))
	require.NoError(t, wb.SaveAs(path))
	require.NoError(t, wb.Close())

	table, err := newFile(path).toTable(context.Background())
	require.NoError(t, err)
	assert.True(t, table.header.Equal(model.NewHeader([]string{"Entity", "Code", "Year", "Value"})))
	require.Len(t, table.records, 2)
	assert.Equal(t, "China", table.records[0][0])
	assert.Equal(t, "1990", table.records[0][2])
}

// writeParquetFixture writes an emissions table as a Parquet file with a
// null Value cell for India 1990.
func writeParquetFixture(t *testing.T, path string) {
	t.Helper()

	pool := memory.NewGoAllocator()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "Entity", Type: arrow.BinaryTypes.String},
		{Name: "Code", Type: arrow.BinaryTypes.String},
		{Name: "Year", Type: arrow.PrimitiveTypes.Int64},
		{Name: "Value", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
	}, nil)

	b := array.NewRecordBuilder(pool, schema)
	defer b.Release()
	b.Field(0).(*array.StringBuilder).AppendValues([]string{"China", "China", "India"}, nil)
	b.Field(1).(*array.StringBuilder).AppendValues([]string{"CHN", "CHN", "IND"}, nil)
	b.Field(2).(*array.Int64Builder).AppendValues([]int64{1990, 1991, 1990}, nil)
	values := b.Field(3).(*array.Float64Builder)
	values.Append(100)
	values.Append(150)
	values.AppendNull()

	rec := b.NewRecord()
	defer rec.Release()
	tbl := array.NewTableFromRecords(schema, []arrow.Record{rec})
	defer tbl.Release()

	f, err := os.Create(path) //nolint:gosec // Test-owned path
	require.NoError(t, err)
	require.NoError(t, pqarrow.WriteTable(tbl, f, 1024, parquet.NewWriterProperties(), pqarrow.DefaultWriterProps()))
	require.NoError(t, f.Close())
}

func TestParseParquet(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "emissions.parquet")
	writeParquetFixture(t, path)

	table, err := newFile(path).toTable(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "emissions", table.name)
	assert.True(t, table.header.Equal(model.NewHeader([]string{"Entity", "Code", "Year", "Value"})))
	require.Len(t, table.records, 3)
	assert.True(t, table.records[0].Equal(model.NewRecord([]string{"China", "CHN", "1990", "100"})))
	// Null cells surface as empty strings, like empty CSV fields.
	assert.True(t, table.records[2].Equal(model.NewRecord([]string{"India", "IND", "1990", ""})))
}

func TestLoadParquetInput(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "emissions.parquet")
	writeParquetFixture(t, path)

	ds, err := Load(path, filepath.Join("testdata", "continents.csv"))
	require.NoError(t, err)

	obs := ds.Observations()
	require.Len(t, obs, 3)
	assert.Equal(t, "China", obs[0].Entity)
	assert.Equal(t, "Asia", obs[0].Region)
	require.NotNil(t, obs[0].Value)
	assert.InDelta(t, 100.0, *obs[0].Value, 1e-9)

	// The null Parquet cell loads as a missing value, not a zero.
	india := obs[2]
	assert.Equal(t, "India", india.Entity)
	assert.Equal(t, 1990, india.Year)
	assert.Nil(t, india.Value)
}

func TestArrowValueString(t *testing.T) {
	t.Parallel()

	pool := memory.NewGoAllocator()

	t.Run("String array", func(t *testing.T) {
		t.Parallel()

		b := array.NewStringBuilder(pool)
		defer b.Release()
		b.Append("China")
		b.AppendNull()
		arr := b.NewStringArray()
		defer arr.Release()

		assert.Equal(t, "China", arrowValueString(arr, 0))
		assert.Empty(t, arrowValueString(arr, 1))
	})

	t.Run("Integer arrays", func(t *testing.T) {
		t.Parallel()

		b := array.NewInt64Builder(pool)
		defer b.Release()
		b.Append(1990)
		b.AppendNull()
		arr := b.NewInt64Array()
		defer arr.Release()

		assert.Equal(t, "1990", arrowValueString(arr, 0))
		assert.Empty(t, arrowValueString(arr, 1))
	})

	t.Run("Float arrays", func(t *testing.T) {
		t.Parallel()

		b := array.NewFloat64Builder(pool)
		defer b.Release()
		b.Append(3.14)
		arr := b.NewFloat64Array()
		defer arr.Release()

		assert.Equal(t, "3.14", arrowValueString(arr, 0))
	})

	t.Run("Boolean array", func(t *testing.T) {
		t.Parallel()

		b := array.NewBooleanBuilder(pool)
		defer b.Release()
		b.Append(true)
		arr := b.NewBooleanArray()
		defer arr.Release()

		assert.Equal(t, "true", arrowValueString(arr, 0))
	})
}
