// Package metadata reconciles raw listing titles against an AniList-style
// GraphQL lookup source using a cleaned-then-raw query strategy.
package metadata
