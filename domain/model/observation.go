package model

// EmissionRecord is one loaded emissions row. Value is nil when the source
// field was empty (the entity did not report that year).
type EmissionRecord struct {
	// Entity is the country or aggregate reporting unit.
	Entity string
	// Code is the entity code used as the join key. Empty means unknown.
	Code string
	// Year is the reporting year.
	Year int
	// Value is the reported emissions value, nil when missing.
	Value *float64
}

// ContinentMapping assigns a region to an entity via its code.
type ContinentMapping struct {
	Entity string
	Code   string
	Region string
}

// Observation is an emissions row joined against the continent mapping.
// Only rows whose code matched a mapping row become observations; rows with
// empty or unmatched codes are dropped during the join and counted in the
// load report.
type Observation struct {
	Entity string
	Code   string
	Region string
	Year   int
	Value  *float64
}

// HasValue reports whether the observation carries a reported value.
func (o Observation) HasValue() bool {
	return o.Value != nil
}

// Float returns a pointer to a copy of v. Convenience for building
// observations with non-null values.
func Float(v float64) *float64 {
	return &v
}
