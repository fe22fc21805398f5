// Package listing crawls the paginated hianime-compatible listing source and
// fetches per-item quick-info detail.
package listing
