// Package diag defines the diagnostic model shared by the introduction engine,
// the project loader and the CLI.
//
// # Purpose
//
//   - Provide deterministic data structures that capture user-correctable
//     findings (introduction conflicts, invalid models and plans).
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to storage or formatting.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – tri-level enum (Info, Warning, Error).
//   - Code – compact numeric identifier with stable string form (ADVxxxx,
//     PRJxxxx, OBSxxxx) and an optional message template.
//   - Message – human oriented text; keep it short and actionable.
//   - Primary span – the declaration or advice site the issue points at.
//   - Notes – secondary spans, typically the conflicting declaration.
//
// # Emitting diagnostics
//
// The introduction engine never panics for user mistakes. It builds a
// ReportBuilder through Errorf (template + positional arguments, mirroring a
// descriptor/location/format-args sink), optionally attaches notes, and calls
// Emit exactly once. Programming errors (broken invariants) are panics and
// never pass through this package.
//
// BagReporter aggregates into a Bag, which sorts and enforces the
// diagnostic limit; DedupReporter drops repeated reports in front of it.
package diag
