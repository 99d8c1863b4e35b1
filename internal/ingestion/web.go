package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

type webRecord struct {
	ID    *int   `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
	Text  string `json:"text"`
}

// WebReader decodes a stream of JSON objects, one web document each, with
// "id", "title", "url" and "text" fields. Records without an id are
// numbered by position.
type WebReader struct {
	dec     *json.Decoder
	ordinal int
}

func NewWebReader(r io.Reader) *WebReader {
	return &WebReader{dec: json.NewDecoder(r)}
}

func (r *WebReader) Read(ctx context.Context) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	var rec webRecord
	if err := r.dec.Decode(&rec); err != nil {
		if errors.Is(err, io.EOF) {
			return Document{}, io.EOF
		}
		return Document{}, fmt.Errorf("decoding web document %d: %w", r.ordinal, err)
	}
	doc := Document{ID: r.ordinal, Title: rec.Title, URL: rec.URL, Text: rec.Text}
	if rec.ID != nil {
		doc.ID = *rec.ID
	}
	r.ordinal++
	return doc, nil
}
