// Package supabase is a minimal REST client for PostgREST-style table
// inserts with representation return.
package supabase
