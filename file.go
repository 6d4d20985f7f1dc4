package emistat

import (
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	pqfile "github.com/apache/arrow/go/v18/parquet/file"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
	"github.com/xuri/excelize/v2"

	"github.com/emistat/emistat/domain/model"
)

// FileType represents supported file types including compression variants
type FileType int

const (
	// FileTypeCSV represents CSV file type
	FileTypeCSV FileType = iota
	// FileTypeTSV represents TSV file type
	FileTypeTSV
	// FileTypeXLSX represents Excel XLSX file type
	FileTypeXLSX
	// FileTypeParquet represents Parquet file type
	FileTypeParquet
	// FileTypeCSVGZ represents gzip-compressed CSV file type
	FileTypeCSVGZ
	// FileTypeTSVGZ represents gzip-compressed TSV file type
	FileTypeTSVGZ
	// FileTypeCSVBZ2 represents bzip2-compressed CSV file type
	FileTypeCSVBZ2
	// FileTypeTSVBZ2 represents bzip2-compressed TSV file type
	FileTypeTSVBZ2
	// FileTypeCSVXZ represents xz-compressed CSV file type
	FileTypeCSVXZ
	// FileTypeTSVXZ represents xz-compressed TSV file type
	FileTypeTSVXZ
	// FileTypeCSVZSTD represents zstd-compressed CSV file type
	FileTypeCSVZSTD
	// FileTypeTSVZSTD represents zstd-compressed TSV file type
	FileTypeTSVZSTD
	// FileTypeUnsupported represents unsupported file type
	FileTypeUnsupported
)

// File extensions
const (
	// extCSV is the CSV file extension
	extCSV = ".csv"
	// extTSV is the TSV file extension
	extTSV = ".tsv"
	// extXLSX is the Excel XLSX file extension
	extXLSX = ".xlsx"
	// extParquet is the Parquet file extension
	extParquet = ".parquet"
	// extGZ is the gzip compression extension
	extGZ = ".gz"
	// extBZ2 is the bzip2 compression extension
	extBZ2 = ".bz2"
	// extXZ is the xz compression extension
	extXZ = ".xz"
	// extZSTD is the zstd compression extension
	extZSTD = ".zst"
)

// File format delimiters
const (
	// csvDelimiter is the delimiter for CSV files
	csvDelimiter = ','
	// tsvDelimiter is the delimiter for TSV files
	tsvDelimiter = '\t'
)

// rawTable holds an untyped parsed file: a header plus string records.
type rawTable struct {
	name    string
	header  model.Header
	records []model.Record
}

// file represents an input file that can be parsed into a rawTable
type file struct {
	path     string
	fileType FileType
}

// newFile creates a new file
func newFile(path string) *file {
	return &file{
		path:     path,
		fileType: detectFileType(path),
	}
}

// detectFileType detects file type from extension, considering compressed files
func detectFileType(path string) FileType {
	basePath := strings.ToLower(path)
	var compressed string

	for _, ext := range []string{extGZ, extBZ2, extXZ, extZSTD} {
		if strings.HasSuffix(basePath, ext) {
			basePath = strings.TrimSuffix(basePath, ext)
			compressed = ext
			break
		}
	}

	switch filepath.Ext(basePath) {
	case extCSV:
		switch compressed {
		case extGZ:
			return FileTypeCSVGZ
		case extBZ2:
			return FileTypeCSVBZ2
		case extXZ:
			return FileTypeCSVXZ
		case extZSTD:
			return FileTypeCSVZSTD
		default:
			return FileTypeCSV
		}
	case extTSV:
		switch compressed {
		case extGZ:
			return FileTypeTSVGZ
		case extBZ2:
			return FileTypeTSVBZ2
		case extXZ:
			return FileTypeTSVXZ
		case extZSTD:
			return FileTypeTSVZSTD
		default:
			return FileTypeTSV
		}
	case extXLSX:
		if compressed != "" {
			// Compressed workbooks are not supported; excelize needs random access.
			return FileTypeUnsupported
		}
		return FileTypeXLSX
	case extParquet:
		if compressed != "" {
			// Parquet compresses internally.
			return FileTypeUnsupported
		}
		return FileTypeParquet
	default:
		return FileTypeUnsupported
	}
}

// baseType returns the base file type without compression
func (ft FileType) baseType() FileType {
	switch ft {
	case FileTypeCSV, FileTypeCSVGZ, FileTypeCSVBZ2, FileTypeCSVXZ, FileTypeCSVZSTD:
		return FileTypeCSV
	case FileTypeTSV, FileTypeTSVGZ, FileTypeTSVBZ2, FileTypeTSVXZ, FileTypeTSVZSTD:
		return FileTypeTSV
	case FileTypeXLSX:
		return FileTypeXLSX
	case FileTypeParquet:
		return FileTypeParquet
	default:
		return FileTypeUnsupported
	}
}

// isGZ returns true if file is gzip compressed
func (f *file) isGZ() bool {
	return strings.HasSuffix(strings.ToLower(f.path), extGZ)
}

// isBZ2 returns true if file is bzip2 compressed
func (f *file) isBZ2() bool {
	return strings.HasSuffix(strings.ToLower(f.path), extBZ2)
}

// isXZ returns true if file is xz compressed
func (f *file) isXZ() bool {
	return strings.HasSuffix(strings.ToLower(f.path), extXZ)
}

// isZSTD returns true if file is zstd compressed
func (f *file) isZSTD() bool {
	return strings.HasSuffix(strings.ToLower(f.path), extZSTD)
}

// openReader opens file and returns a reader that handles compression
func (f *file) openReader() (io.Reader, func() error, error) {
	fh, err := os.Open(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%w: %s", ErrFileNotFound, f.path)
		}
		return nil, nil, err
	}

	var reader io.Reader = fh
	closer := fh.Close

	switch {
	case f.isGZ():
		gzReader, err := gzip.NewReader(fh)
		if err != nil {
			_ = fh.Close()
			return nil, nil, err
		}
		reader = gzReader
		closer = func() error {
			_ = gzReader.Close()
			return fh.Close()
		}
	case f.isBZ2():
		reader = bzip2.NewReader(fh)
	case f.isXZ():
		xzReader, err := xz.NewReader(fh)
		if err != nil {
			_ = fh.Close()
			return nil, nil, err
		}
		reader = xzReader
	case f.isZSTD():
		decoder, err := zstd.NewReader(fh)
		if err != nil {
			_ = fh.Close()
			return nil, nil, err
		}
		reader = decoder
		closer = func() error {
			decoder.Close()
			return fh.Close()
		}
	}

	return reader, closer, nil
}

// toTable parses the file into a rawTable according to its type
func (f *file) toTable(ctx context.Context) (*rawTable, error) {
	switch f.fileType.baseType() {
	case FileTypeCSV:
		return f.parseDelimitedFile(csvDelimiter)
	case FileTypeTSV:
		return f.parseDelimitedFile(tsvDelimiter)
	case FileTypeXLSX:
		return f.parseXLSX()
	case FileTypeParquet:
		return f.parseParquet(ctx)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, f.path)
	}
}

// parseDelimitedFile parses CSV or TSV files with the given delimiter
func (f *file) parseDelimitedFile(delimiter rune) (*rawTable, error) {
	reader, closer, err := f.openReader()
	if err != nil {
		return nil, err
	}
	defer closer() //nolint:errcheck // Read-only cleanup

	csvReader := csv.NewReader(reader)
	csvReader.Comma = delimiter
	csvReader.FieldsPerRecord = -1
	records, err := csvReader.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyData, f.path)
	}

	header := stripBOM(records[0])
	if err := validateColumnNames(header); err != nil {
		return nil, err
	}

	tableRecords := make([]model.Record, 0, len(records)-1)
	for i := 1; i < len(records); i++ {
		tableRecords = append(tableRecords, model.NewRecord(records[i]))
	}

	return &rawTable{
		name:    tableFromFilePath(f.path),
		header:  model.NewHeader(header),
		records: tableRecords,
	}, nil
}

// parseXLSX parses the first sheet of an XLSX workbook
func (f *file) parseXLSX() (*rawTable, error) {
	xlsxFile, err := excelize.OpenFile(f.path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = xlsxFile.Close()
	}()

	sheetNames := xlsxFile.GetSheetList()
	if len(sheetNames) == 0 {
		return nil, fmt.Errorf("%w: no sheets in %s", ErrEmptyData, f.path)
	}

	rows, err := xlsxFile.GetRows(sheetNames[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheetNames[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: sheet %s in %s", ErrEmptyData, sheetNames[0], f.path)
	}

	header := stripBOM(rows[0])
	if err := validateColumnNames(header); err != nil {
		return nil, err
	}

	tableRecords := make([]model.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make(model.Record, len(header))
		for j := range header {
			if j < len(row) {
				record[j] = row[j]
			}
		}
		tableRecords = append(tableRecords, record)
	}

	return &rawTable{
		name:    tableFromFilePath(f.path),
		header:  model.NewHeader(header),
		records: tableRecords,
	}, nil
}

// parseParquet parses a Parquet file via the Arrow reader
func (f *file) parseParquet(ctx context.Context) (*rawTable, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, f.path)
		}
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyData, f.path)
	}

	pqReader, err := pqfile.NewParquetReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create parquet reader: %w", err)
	}
	defer pqReader.Close() //nolint:errcheck // Read-only cleanup

	arrowReader, err := pqarrow.NewFileReader(pqReader, pqarrow.ArrowReadProperties{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create arrow reader: %w", err)
	}

	table, err := arrowReader.ReadTable(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read table: %w", err)
	}
	defer table.Release()

	if table.NumRows() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyData, f.path)
	}

	schema := table.Schema()
	header := make([]string, schema.NumFields())
	for i, field := range schema.Fields() {
		header[i] = field.Name
	}
	if err := validateColumnNames(header); err != nil {
		return nil, err
	}

	tableReader := array.NewTableReader(table, 0)
	defer tableReader.Release()

	var tableRecords []model.Record
	for tableReader.Next() {
		batch := tableReader.Record()
		numRows := batch.NumRows()
		for i := int64(0); i < numRows; i++ {
			row := make(model.Record, batch.NumCols())
			for j, col := range batch.Columns() {
				row[j] = arrowValueString(col, int(i))
			}
			tableRecords = append(tableRecords, row)
		}
	}
	if err := tableReader.Err(); err != nil {
		return nil, fmt.Errorf("error reading table records: %w", err)
	}

	return &rawTable{
		name:    tableFromFilePath(f.path),
		header:  model.NewHeader(header),
		records: tableRecords,
	}, nil
}

// arrowValueString converts one Arrow array cell to its string form.
// Null cells become empty strings, matching missing fields in CSV input.
func arrowValueString(col arrow.Array, i int) string {
	if col.IsNull(i) {
		return ""
	}
	switch arr := col.(type) {
	case *array.String:
		return arr.Value(i)
	case *array.Int8:
		return strconv.FormatInt(int64(arr.Value(i)), 10)
	case *array.Int16:
		return strconv.FormatInt(int64(arr.Value(i)), 10)
	case *array.Int32:
		return strconv.FormatInt(int64(arr.Value(i)), 10)
	case *array.Int64:
		return strconv.FormatInt(arr.Value(i), 10)
	case *array.Float32:
		return strconv.FormatFloat(float64(arr.Value(i)), 'f', -1, 32)
	case *array.Float64:
		return strconv.FormatFloat(arr.Value(i), 'f', -1, 64)
	case *array.Boolean:
		return strconv.FormatBool(arr.Value(i))
	default:
		return col.ValueStr(i)
	}
}

// stripBOM removes a UTF-8 byte order mark from the first header cell
func stripBOM(header []string) []string {
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "﻿")
	}
	return header
}

// validateColumnNames checks for duplicate column names
func validateColumnNames(columns []string) error {
	seen := make(map[string]bool, len(columns))
	for _, column := range columns {
		if seen[column] {
			return fmt.Errorf("%w: %s", ErrDuplicateColumnName, column)
		}
		seen[column] = true
	}
	return nil
}

// tableFromFilePath creates a table name from a file path
func tableFromFilePath(filePath string) string {
	fileName := filepath.Base(filePath)
	for _, ext := range []string{extGZ, extBZ2, extXZ, extZSTD} {
		if strings.HasSuffix(strings.ToLower(fileName), ext) {
			fileName = fileName[:len(fileName)-len(ext)]
			break
		}
	}
	return strings.TrimSuffix(fileName, filepath.Ext(fileName))
}
