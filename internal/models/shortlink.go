// Package models defines the core data structures used throughout shurl
// including short links and repository commits.
package models

import "net/url"

// ArtifactExt is appended to a short name to form its redirect file name.
const ArtifactExt = ".html"

// LedgerFile is the index document listing every short link.
const LedgerFile = "index.html"

// ShortLink pairs a short name with the URL it redirects to
type ShortLink struct {
	Name   string
	Target *url.URL
}

// ArtifactFile returns the redirect file name relative to the repository root
func (l *ShortLink) ArtifactFile() string {
	return ArtifactFileName(l.Name)
}

// ArtifactFileName returns "<name>.html"
func ArtifactFileName(name string) string {
	return name + ArtifactExt
}

// LedgerEntry is one parsed line of the index ledger. Href is decoded, e.g.
// "./a#b.html" for the name "a#b".
type LedgerEntry struct {
	Target string
	Href   string
}
