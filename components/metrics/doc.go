// Package metrics derives dashboard KPIs from raw counts and amounts and
// classifies them into qualitative levels.
//
// Every function in this package is pure: results depend only on the
// arguments, nothing is cached, and callers may invoke any function from
// multiple goroutines without coordination. Division happens only inside
// Percentage, Delta and Divide, which resolve a zero or negative denominator
// to 0 instead of returning NaN or Inf, so widgets stay renderable before any
// history exists.
//
// Classification output is a Level plus a stable category key. Mapping those
// to labels, colors or icons belongs to the presentation layer.
package metrics
