// Package fetch provides the retrying HTTP transport shared by the listing
// and metadata clients.
package fetch
