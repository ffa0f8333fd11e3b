// Package builder holds the mutable declaration builders used by advice logic
// and the immutable data records they freeze into.
//
// A builder is owned by the advice that created it. Freeze captures its
// state into a Data record exactly once; repeated calls return the same
// record and any mutation after freezing panics.
package builder
