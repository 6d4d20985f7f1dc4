package emistat

import (
	"compress/gzip"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
	"github.com/xuri/excelize/v2"
)

// WriteTable writes a result table to w as delimited text according to the
// write options. XLSX output needs seekable storage and is only available
// through SaveTable.
func WriteTable(w io.Writer, table ResultTable, opts ...WriteOptions) error {
	options := NewWriteOptions()
	if len(opts) > 0 {
		options = opts[0]
	}
	if options.Format == OutputFormatXLSX {
		return errors.New("emistat: XLSX output requires SaveTable")
	}

	compressed, cleanup, err := newCompressionWriter(w, options.Compression)
	if err != nil {
		return err
	}

	csvWriter := csv.NewWriter(compressed)
	if options.Format == OutputFormatTSV {
		csvWriter.Comma = tsvDelimiter
	}

	if err := csvWriter.Write(table.Header); err != nil {
		_ = cleanup()
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, record := range table.Records {
		if err := csvWriter.Write(record); err != nil {
			_ = cleanup()
			return fmt.Errorf("failed to write record: %w", err)
		}
	}
	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		_ = cleanup()
		return err
	}
	return cleanup()
}

// SaveTable writes a result table to outputDir as
// <table name><format extension><compression extension>. The default is an
// uncompressed CSV file; see WriteOptions for TSV, XLSX and compressed
// variants. It returns the path of the written file.
func SaveTable(outputDir string, table ResultTable, opts ...WriteOptions) (string, error) {
	options := NewWriteOptions()
	if len(opts) > 0 {
		options = opts[0]
	}

	if err := os.MkdirAll(outputDir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(outputDir, table.Name+options.FileExtension())

	if options.Format == OutputFormatXLSX {
		if options.Compression != CompressionNone {
			return "", errors.New("emistat: compressed XLSX output is not supported")
		}
		return path, saveXLSX(path, table)
	}

	f, err := os.Create(path) //nolint:gosec // Caller chooses the output directory
	if err != nil {
		return "", fmt.Errorf("failed to create output file: %w", err)
	}

	if err := WriteTable(f, table, options); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}

// saveXLSX writes the table as a single-sheet workbook.
func saveXLSX(path string, table ResultTable) error {
	wb := excelize.NewFile()
	defer func() {
		_ = wb.Close()
	}()

	sheet := wb.GetSheetName(0)
	header := make([]any, len(table.Header))
	for i, h := range table.Header {
		header[i] = h
	}
	if err := wb.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}
	for i, record := range table.Records {
		row := make([]any, len(record))
		for j, v := range record {
			row[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := wb.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}
	return wb.SaveAs(path)
}

// newCompressionWriter wraps w with a compression writer when needed. The
// returned cleanup flushes and closes the compression layer but never the
// underlying writer.
func newCompressionWriter(w io.Writer, compression CompressionType) (io.Writer, func() error, error) {
	switch compression {
	case CompressionNone:
		return w, func() error { return nil }, nil
	case CompressionGZ:
		gzWriter := gzip.NewWriter(w)
		return gzWriter, gzWriter.Close, nil
	case CompressionXZ:
		xzWriter, err := xz.NewWriter(w)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create xz writer: %w", err)
		}
		return xzWriter, xzWriter.Close, nil
	case CompressionZSTD:
		zstdWriter, err := zstd.NewWriter(w)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create zstd writer: %w", err)
		}
		return zstdWriter, zstdWriter.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported compression type for writing: %v", compression)
	}
}
