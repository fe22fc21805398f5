// Package services defines shared utilities consumed by the ingest pipeline
// stages and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp listing item IDs, page numbers, stage names,
//     and correlation identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper that let callers classify
//     failures (transient vs not-found vs write) with errors.Is instead of
//     string matching.
//
// Use these helpers when wiring new stage logic so operational behaviour
// (error handling, observability, retries) stays uniform across the pipeline.
package services
