// Package trace is weave's structured log.
//
// The engine itself never prints. Pipeline passes, aspects and advice calls
// open spans on the Tracer carried by the context, and the CLI decides
// where the events go:
//
//	weave apply --trace=- --trace-level=detail model.toml plan.toml
//
// Nop is used when tracing is off. StreamTracer writes text or NDJSON as
// events happen, RingTracer keeps the tail in memory for a failure dump,
// and MultiTracer combines the two.
//
// Spans opened inside StartAspect carry the aspect name and layer, so a
// failing advice can be traced back to the layer that ran it:
//
//	ctx, span := trace.StartAspect(ctx, "Logging", 1)
//	defer span.End("")
//	_, call := trace.Start(ctx, trace.ScopeAdvice, "wrap-run")
//	call.Fail(err)
package trace
