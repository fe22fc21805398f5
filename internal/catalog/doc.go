// Package catalog assembles enriched title records and writes them to the
// relational store in dependency order: entry, then season, then episodes.
package catalog
