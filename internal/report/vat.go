// Package report implements the financial aggregation engine: VAT arithmetic,
// expense annualization, invoice filtering and the grouped breakdowns behind
// the reporting API.
//
// Every function in this package is pure: it takes in-memory snapshots, never
// mutates them, performs no I/O, and is safe for concurrent use. Callers cache
// results as an optimization only; recomputing must always yield identical
// values.
package report

// StripVAT decomposes a gross, VAT-inclusive amount into its pre-tax base:
// gross / (1 + rate/100).
//
// No validation is performed: zero and negative amounts pass through the same
// formula. The rate is a percentage (18 means 18%).
func StripVAT(gross, ratePercent float64) float64 {
	return gross / (1 + ratePercent/100)
}

// VATPortion returns the tax component of a gross amount, the complement of
// StripVAT: for any gross and rate, StripVAT + VATPortion == gross.
func VATPortion(gross, ratePercent float64) float64 {
	return gross - StripVAT(gross, ratePercent)
}
