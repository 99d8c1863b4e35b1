package index

import (
	"context"
	"io"
)

// Document is a processed document: a unique id and its tokens in order.
type Document struct {
	ID     int
	Tokens []string
}

// DocumentStream yields documents until it returns io.EOF. Streams are
// consumed once and cannot be restarted.
type DocumentStream interface {
	Next(ctx context.Context) (Document, error)
}

// SliceStream is a DocumentStream over documents already in memory.
type SliceStream struct {
	docs []Document
	pos  int
}

func NewSliceStream(docs ...Document) *SliceStream {
	return &SliceStream{docs: docs}
}

func (s *SliceStream) Next(ctx context.Context) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	if s.pos >= len(s.docs) {
		return Document{}, io.EOF
	}
	doc := s.docs[s.pos]
	s.pos++
	return doc, nil
}
