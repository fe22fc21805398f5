// Package pipeline drives the crawl: page listing, per-title enrichment,
// and dependency-ordered store writes, with each title isolated so one
// failure never aborts the run.
package pipeline
