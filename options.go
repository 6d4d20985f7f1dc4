package emistat

// StdDevMode selects the standard deviation convention used by
// RegionSummaryStats. The sample convention (n-1 denominator) matches the
// default of common statistical libraries and is the package default.
type StdDevMode int

const (
	// StdDevSample divides by n-1
	StdDevSample StdDevMode = iota
	// StdDevPopulation divides by n
	StdDevPopulation
)

// String returns the string representation of StdDevMode
func (m StdDevMode) String() string {
	switch m {
	case StdDevPopulation:
		return "population"
	default:
		return "sample"
	}
}

// Options controls analysis behavior for a Dataset.
type Options struct {
	// StdDev selects the standard deviation convention
	StdDev StdDevMode
	// RollingWindow is the trailing window length for RollingAverage
	RollingWindow int
	// MinCompletenessYears filters ReportingCompleteness to entities with
	// at least this many distinct reported years
	MinCompletenessYears int
}

// NewOptions creates Options with default values (sample stddev,
// 5-year rolling window, 50-year completeness threshold)
func NewOptions() Options {
	return Options{
		StdDev:               StdDevSample,
		RollingWindow:        5,
		MinCompletenessYears: 50,
	}
}

// WithStdDev sets the standard deviation convention
func (o Options) WithStdDev(mode StdDevMode) Options {
	o.StdDev = mode
	return o
}

// WithRollingWindow sets the trailing window length
func (o Options) WithRollingWindow(window int) Options {
	if window >= 1 {
		o.RollingWindow = window
	}
	return o
}

// WithMinCompletenessYears sets the completeness filter threshold
func (o Options) WithMinCompletenessYears(years int) Options {
	if years >= 0 {
		o.MinCompletenessYears = years
	}
	return o
}

// OutputFormat represents the output file format
type OutputFormat int

const (
	// OutputFormatCSV represents CSV output format
	OutputFormatCSV OutputFormat = iota
	// OutputFormatTSV represents TSV output format
	OutputFormatTSV
	// OutputFormatXLSX represents Excel XLSX output format
	OutputFormatXLSX
)

// String returns the string representation of OutputFormat
func (f OutputFormat) String() string {
	switch f {
	case OutputFormatTSV:
		return "tsv"
	case OutputFormatXLSX:
		return "xlsx"
	default:
		return "csv"
	}
}

// Extension returns the file extension for the format
func (f OutputFormat) Extension() string {
	switch f {
	case OutputFormatTSV:
		return extTSV
	case OutputFormatXLSX:
		return extXLSX
	default:
		return extCSV
	}
}

// CompressionType represents the compression type
type CompressionType int

const (
	// CompressionNone represents no compression
	CompressionNone CompressionType = iota
	// CompressionGZ represents gzip compression
	CompressionGZ
	// CompressionXZ represents xz compression
	CompressionXZ
	// CompressionZSTD represents zstd compression
	CompressionZSTD
)

// String returns the string representation of CompressionType
func (c CompressionType) String() string {
	switch c {
	case CompressionGZ:
		return "gz"
	case CompressionXZ:
		return "xz"
	case CompressionZSTD:
		return "zstd"
	default:
		return "none"
	}
}

// Extension returns the file extension for the compression type
func (c CompressionType) Extension() string {
	switch c {
	case CompressionGZ:
		return extGZ
	case CompressionXZ:
		return extXZ
	case CompressionZSTD:
		return extZSTD
	default:
		return ""
	}
}

// WriteOptions represents options for writing result tables
type WriteOptions struct {
	// Format specifies the output file format
	Format OutputFormat
	// Compression specifies the compression type
	Compression CompressionType
}

// NewWriteOptions creates WriteOptions with default values (CSV format, no compression)
func NewWriteOptions() WriteOptions {
	return WriteOptions{
		Format:      OutputFormatCSV,
		Compression: CompressionNone,
	}
}

// WithFormat sets the output format
func (o WriteOptions) WithFormat(format OutputFormat) WriteOptions {
	o.Format = format
	return o
}

// WithCompression sets the compression type
func (o WriteOptions) WithCompression(compression CompressionType) WriteOptions {
	o.Compression = compression
	return o
}

// FileExtension returns the complete file extension including compression
func (o WriteOptions) FileExtension() string {
	return o.Format.Extension() + o.Compression.Extension()
}
