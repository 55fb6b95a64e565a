package dto

import (
	"booklist/internal/openlibrary"
)

// Placeholders used when the catalog omits a field.
const (
	NoDescription = "No description"
	NoImage       = "No image available"
	NoDate        = "No date available"
	NoAuthor      = "No author listed"
	Untitled      = "Untitled"
)

// BookAggregate is the request-time view of one catalog work merged with
// the reviews stored locally for it.
type BookAggregate struct {
	Key         string
	Title       string
	Description string
	Cover       string
	Published   string
	Authors     []string
	Reviews     []ReviewResponse
}

// CoverURL returns the cover image URL, or "" when the work has no cover.
func (b *BookAggregate) CoverURL() string {
	if b.Cover == "" || b.Cover == NoImage {
		return ""
	}
	return openlibrary.CoverURL(b.Cover)
}

// BookResult is one entry of a batch build: either a book or the error that
// prevented building it.
type BookResult struct {
	Key  string
	Book *BookAggregate
	Err  error
	// the catalog has no such work, as opposed to being unreachable
	NotFound bool
}

// Failed reports whether the entry could not be built.
func (r BookResult) Failed() bool {
	return r.Err != nil || r.Book == nil
}

// ReaderBook pairs another reader with a book they liked.
type ReaderBook struct {
	UserID   int64
	Username string
	Result   BookResult
}

// BookListing is a trending or search entry.
type BookListing struct {
	Key      string
	Title    string
	Authors  []string
	Year     int
	CoverURL string
	Link     string
}
