// Package journal persists per-run ingest outcomes in SQLite so later runs
// can resume past titles already stored and operators can inspect history.
package journal
