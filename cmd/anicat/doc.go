// Command anicat crawls a paginated catalog listing, enriches each title
// with external metadata, and stores the assembled records through a
// Supabase REST endpoint.
package main
