package openlibrary

import (
	"bytes"
	"encoding/json"
)

// ============================================
// API RESPONSE STRUCTURES
// ============================================

// DescriptionKind tells which shape the catalog used for a description.
type DescriptionKind int

const (
	DescriptionAbsent DescriptionKind = iota
	DescriptionText                   // plain JSON string
	DescriptionObject                 // {"type": "/type/text", "value": "..."}
)

// Description is the work description, decoded once from either a string
// or an object carrying a nested value.
type Description struct {
	Kind DescriptionKind
	Text string
}

// UnmarshalJSON accepts a string, an object with a string "value", or null.
// Any other shape decodes as absent.
func (d *Description) UnmarshalJSON(data []byte) error {
	*d = Description{}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		d.Kind = DescriptionText
		d.Text = s
	case '{':
		var obj struct {
			Value json.RawMessage `json:"value"`
		}
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return err
		}
		var s string
		if len(obj.Value) > 0 && json.Unmarshal(obj.Value, &s) == nil {
			d.Kind = DescriptionObject
			d.Text = s
		}
	}
	return nil
}

// Present reports whether the catalog supplied a description.
func (d Description) Present() bool {
	return d.Kind != DescriptionAbsent
}

// Work represents the response from GET /works/{key}.json
type Work struct {
	Key              string        `json:"key"`
	Title            string        `json:"title"`
	Description      Description   `json:"description"`
	Covers           []json.Number `json:"covers"`
	FirstPublishDate string        `json:"first_publish_date"`
	Authors          []WorkAuthor  `json:"authors"`
	Subjects         []string      `json:"subjects"`
}

// WorkAuthor is one entry of a work's author list.
type WorkAuthor struct {
	Author KeyRef `json:"author"`
}

// KeyRef is a {"key": "..."} reference to another catalog record.
type KeyRef struct {
	Key string `json:"key"`
}

// AuthorKeys returns the non-empty author keys in reference order.
func (w *Work) AuthorKeys() []string {
	keys := make([]string, 0, len(w.Authors))
	for _, a := range w.Authors {
		if a.Author.Key != "" {
			keys = append(keys, a.Author.Key)
		}
	}
	return keys
}

// Author represents the response from GET /authors/{key}.json
type Author struct {
	Key          string `json:"key"`
	Name         string `json:"name"`
	PersonalName string `json:"personal_name"`
}

// Doc is a listing entry shared by the trending and search endpoints.
type Doc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	FirstPublishYear int      `json:"first_publish_year"`
	CoverID          int64    `json:"cover_i"`
}

// TrendingResponse represents the response from GET /trending/now.json
type TrendingResponse struct {
	Works []Doc `json:"works"`
}

// SearchResponse represents the response from GET /search.json
type SearchResponse struct {
	NumFound int   `json:"numFound"`
	Docs     []Doc `json:"docs"`
}

// SearchQuery holds the supported search parameters.
type SearchQuery struct {
	Term    string
	Subject string
	Limit   int
}
