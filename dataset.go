package emistat

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	_ "modernc.org/sqlite" // SQLite driver for the in-memory join store

	"github.com/emistat/emistat/domain/model"
)

// Column counts for the two input table layouts. Columns are positional:
// extra trailing columns are ignored so datasets with annotation columns
// still load.
const (
	emissionsColumns  = 4 // entity, code, year, value
	continentsColumns = 3 // entity, code, region
)

// Dataset is the joined emissions table plus the report of what was
// excluded on the way in. All analysis methods are pure functions over the
// loaded observations; a Dataset is never mutated after Load.
type Dataset struct {
	obs    []model.Observation
	report LoadReport
	opts   Options
}

// LoadReport summarizes one load run. Row and group local failures never
// abort a load; they are counted here so every output table can be
// accompanied by its exclusion summary.
type LoadReport struct {
	// RunID uniquely identifies the analysis run
	RunID string
	// EmissionsRows is the number of data rows in the emissions input
	EmissionsRows int
	// ContinentRows is the number of data rows in the mapping input
	ContinentRows int
	// MalformedRows counts rows skipped for non-numeric year/value or
	// missing fields, across both inputs
	MalformedRows int
	// DuplicateYears counts emissions rows dropped because the same
	// (entity, year) pair was already loaded
	DuplicateYears int
	// UnkeyedMappings counts mapping rows dropped because the code field
	// was empty, so they could never participate in the join
	UnkeyedMappings int
	// MissingJoinKey counts emissions rows dropped by the code join:
	// empty codes and codes with no mapping entry
	MissingJoinKey int
	// Observations is the number of joined rows available for analysis
	Observations int
}

// String renders the report as a one-line summary suitable for stderr.
func (r LoadReport) String() string {
	return fmt.Sprintf(
		"run %s: %d observations (emissions rows=%d, mapping rows=%d, malformed=%d, duplicate years=%d, unkeyed mappings=%d, unmatched codes=%d)",
		r.RunID, r.Observations, r.EmissionsRows, r.ContinentRows,
		r.MalformedRows, r.DuplicateYears, r.UnkeyedMappings, r.MissingJoinKey,
	)
}

// Load reads the emissions table and the continent mapping table and joins
// them on code into an in-memory Dataset.
//
// Supported input formats are CSV, TSV (plain or compressed with
// .gz/.bz2/.xz/.zst), XLSX workbooks, and Parquet files. Columns are
// positional with a header row: emissions files carry (entity, code, year,
// value), mapping files carry (entity, code, region).
//
// The join key is the code column, not the entity name. Emissions rows with
// an empty code or a code absent from the mapping are silently excluded
// from all downstream analysis; the count of such rows is surfaced in the
// LoadReport rather than treated as an error. When no row at all survives
// the join, Load fails with ErrNoObservations.
func Load(emissionsPath, continentsPath string, opts ...Options) (*Dataset, error) {
	return LoadContext(context.Background(), emissionsPath, continentsPath, opts...)
}

// LoadContext is Load with context support for cancellation of file
// parsing and the join.
func LoadContext(ctx context.Context, emissionsPath, continentsPath string, opts ...Options) (*Dataset, error) {
	options := NewOptions()
	if len(opts) > 0 {
		options = opts[0]
	}

	var emissionsRaw, continentsRaw *rawTable
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := newFile(emissionsPath).toTable(gctx)
		if err != nil {
			return fmt.Errorf("emissions: %w", err)
		}
		emissionsRaw = t
		return nil
	})
	g.Go(func() error {
		t, err := newFile(continentsPath).toTable(gctx)
		if err != nil {
			return fmt.Errorf("continents: %w", err)
		}
		continentsRaw = t
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := LoadReport{
		RunID:         uuid.NewString(),
		EmissionsRows: len(emissionsRaw.records),
		ContinentRows: len(continentsRaw.records),
	}

	emissions, err := decodeEmissions(emissionsRaw, &report)
	if err != nil {
		return nil, err
	}
	continents, err := decodeContinents(continentsRaw, &report)
	if err != nil {
		return nil, err
	}

	obs, err := joinOnCode(ctx, emissions, continents)
	if err != nil {
		return nil, err
	}
	if len(obs) == 0 {
		return nil, fmt.Errorf("%w: no emission code matched the mapping", ErrNoObservations)
	}
	report.MissingJoinKey = len(emissions) - len(obs)
	report.Observations = len(obs)

	return &Dataset{
		obs:    obs,
		report: report,
		opts:   options,
	}, nil
}

// Observations returns the joined rows sorted by (entity, year).
func (d *Dataset) Observations() []model.Observation {
	return d.obs
}

// Report returns the load report for this dataset.
func (d *Dataset) Report() LoadReport {
	return d.report
}

// Options returns the analysis options for this dataset.
func (d *Dataset) Options() Options {
	return d.opts
}

// decodeEmissions converts raw emissions records into typed records,
// skipping malformed rows and duplicate (entity, year) pairs.
func decodeEmissions(raw *rawTable, report *LoadReport) ([]model.EmissionRecord, error) {
	if len(raw.header) < emissionsColumns {
		return nil, fmt.Errorf("%w: emissions table needs %d columns, got %d",
			ErrMissingColumns, emissionsColumns, len(raw.header))
	}

	seen := make(map[string]map[int]bool)
	records := make([]model.EmissionRecord, 0, len(raw.records))
	for _, rec := range raw.records {
		if len(rec) < emissionsColumns || rec[0] == "" {
			report.MalformedRows++
			continue
		}
		year, ok := model.ParseYear(rec[2])
		if !ok {
			report.MalformedRows++
			continue
		}
		value, present, ok := model.ParseValue(rec[3])
		if !ok {
			report.MalformedRows++
			continue
		}

		entity := rec[0]
		if seen[entity] == nil {
			seen[entity] = make(map[int]bool)
		}
		if seen[entity][year] {
			report.DuplicateYears++
			continue
		}
		seen[entity][year] = true

		r := model.EmissionRecord{
			Entity: entity,
			Code:   rec[1],
			Year:   year,
		}
		if present {
			r.Value = model.Float(value)
		}
		records = append(records, r)
	}
	return records, nil
}

// decodeContinents converts raw mapping records into typed mappings.
// Rows without a code can never join and are dropped and counted; duplicate
// codes keep the first mapping so the join stays one-to-one.
func decodeContinents(raw *rawTable, report *LoadReport) ([]model.ContinentMapping, error) {
	if len(raw.header) < continentsColumns {
		return nil, fmt.Errorf("%w: continents table needs %d columns, got %d",
			ErrMissingColumns, continentsColumns, len(raw.header))
	}

	seenCodes := make(map[string]bool)
	mappings := make([]model.ContinentMapping, 0, len(raw.records))
	for _, rec := range raw.records {
		if len(rec) < continentsColumns || rec[0] == "" || rec[2] == "" {
			report.MalformedRows++
			continue
		}
		if rec[1] == "" {
			report.UnkeyedMappings++
			continue
		}
		if seenCodes[rec[1]] {
			continue
		}
		seenCodes[rec[1]] = true
		mappings = append(mappings, model.ContinentMapping{
			Entity: rec[0],
			Code:   rec[1],
			Region: rec[2],
		})
	}
	return mappings, nil
}

// joinOnCode loads both typed tables into an in-memory SQLite database and
// returns the inner join on code, ordered by (entity, year). Empty emission
// codes are stored as NULL so they cannot match anything.
func joinOnCode(ctx context.Context, emissions []model.EmissionRecord, continents []model.ContinentMapping) ([]model.Observation, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory database: %w", err)
	}
	defer db.Close() //nolint:errcheck // In-memory database

	const schema = `
CREATE TABLE emissions (entity TEXT NOT NULL, code TEXT, year INTEGER NOT NULL, value REAL);
CREATE TABLE continents (entity TEXT NOT NULL, code TEXT NOT NULL, region TEXT NOT NULL);
CREATE INDEX idx_continents_code ON continents(code);`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // No-op after commit

	insertEmission, err := tx.PrepareContext(ctx, "INSERT INTO emissions (entity, code, year, value) VALUES (?, ?, ?, ?)")
	if err != nil {
		return nil, err
	}
	defer insertEmission.Close() //nolint:errcheck // Statement cleanup
	for _, r := range emissions {
		var code any
		if r.Code != "" {
			code = r.Code
		}
		var value any
		if r.Value != nil {
			value = *r.Value
		}
		if _, err := insertEmission.ExecContext(ctx, r.Entity, code, r.Year, value); err != nil {
			return nil, fmt.Errorf("failed to insert emission row: %w", err)
		}
	}

	insertContinent, err := tx.PrepareContext(ctx, "INSERT INTO continents (entity, code, region) VALUES (?, ?, ?)")
	if err != nil {
		return nil, err
	}
	defer insertContinent.Close() //nolint:errcheck // Statement cleanup
	for _, m := range continents {
		if _, err := insertContinent.ExecContext(ctx, m.Entity, m.Code, m.Region); err != nil {
			return nil, fmt.Errorf("failed to insert mapping row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit load: %w", err)
	}

	rows, err := db.QueryContext(ctx, `
SELECT e.entity, e.code, c.region, e.year, e.value
FROM emissions e
JOIN continents c ON e.code = c.code
ORDER BY e.entity, e.year`)
	if err != nil {
		return nil, fmt.Errorf("join query failed: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only cursor

	var obs []model.Observation
	for rows.Next() {
		var o model.Observation
		var value sql.NullFloat64
		if err := rows.Scan(&o.Entity, &o.Code, &o.Region, &o.Year, &value); err != nil {
			return nil, fmt.Errorf("failed to scan joined row: %w", err)
		}
		if value.Valid {
			o.Value = model.Float(value.Float64)
		}
		obs = append(obs, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("join iteration failed: %w", err)
	}
	return obs, nil
}
