// Package ingestion reads raw documents from a corpus source and turns them
// into the processed document stream the index is built from.
package ingestion

import (
	"context"
	"strings"
)

// Document is a raw document as read from a corpus.
type Document struct {
	ID int `json:"id"`
	// Name is the corpus-assigned label (a TDT DOCNO), not indexed.
	Name  string `json:"name,omitempty"`
	Title string `json:"title,omitempty"`
	URL   string `json:"url,omitempty"`
	Text  string `json:"text"`
}

// IndexText is the text the index sees for this document.
func (d Document) IndexText() string {
	if d.Title == "" {
		return d.Text
	}
	return d.Title + " " + d.Text
}

// Reader yields raw documents until it returns io.EOF.
type Reader interface {
	Read(ctx context.Context) (Document, error)
}

// Sink receives every raw document a TokenStream passes on to the index.
type Sink interface {
	Put(doc Document)
}

// Format names a corpus file layout.
type Format string

const (
	FormatTDT      Format = "tdt"
	FormatJSONL    Format = "jsonl"
	FormatPostgres Format = "postgres"
)

// ParseFormat maps a configuration string onto a Format, defaulting to TDT.
func ParseFormat(s string) Format {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatJSONL, "json", "web":
		return FormatJSONL
	case FormatPostgres, "pg":
		return FormatPostgres
	default:
		return FormatTDT
	}
}
