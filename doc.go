// Package emistat computes descriptive statistics, rankings, growth rates
// and pivoted summaries over a CO2 emissions dataset joined against a
// country-to-continent mapping.
//
// The two inputs are flat tables: an emissions table with (entity, code,
// year, value) columns and a mapping table with (entity, code, region)
// columns. Supported formats are CSV and TSV (plain or compressed with
// gzip, bzip2, xz or zstandard), Excel XLSX workbooks, and Parquet files.
// Both tables are loaded into an in-memory SQLite database and joined on
// the code column; the joined table is then analyzed in memory.
//
// # Basic Usage
//
//	ds, err := emistat.Load("emissions.csv", "continents.csv")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Fprintln(os.Stderr, ds.Report())
//
//	for _, row := range ds.TotalsByRegionYear() {
//	    fmt.Printf("%s %d: %.1f\n", row.Region, row.Year, row.Total)
//	}
//
// Analysis methods are pure functions over the loaded dataset: a Dataset is
// never mutated after Load, and every method can be called any number of
// times in any order.
//
// # Join Semantics
//
// The join key is the code column, not the entity name. Emissions rows with
// an empty code, or a code that has no mapping entry, are silently excluded
// from all analysis. This mirrors the upstream dataset's own convention;
// the number of excluded rows is surfaced in the LoadReport so the
// exclusion is visible rather than silent.
//
// # Missing Values
//
// An empty value field is a missing observation, not a zero. Sums treat
// missing values as zero contribution; means, medians and growth rates
// skip them; the wide pivot keeps them as nulls while the matrix
// cross-tabulations fill absent combinations with zero. The two fill
// policies are deliberately separate operations.
//
// # Result Tables
//
// Every analytic result renders to a ResultTable via its render function
// (TotalsTable, TopNTable, ...) and can be written as CSV, TSV or XLSX,
// optionally compressed, with WriteTable and SaveTable. These plain
// tabular outputs are the interface to external reporting and charting
// layers.
package emistat
