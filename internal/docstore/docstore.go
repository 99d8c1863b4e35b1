// Package docstore keeps display payloads for indexed documents. The index
// itself only knows ids; a Store is filled from the same raw-document pass
// and consulted by drivers when they render results.
package docstore

import (
	"fmt"
	"strings"
	"sync"

	"github.com/Adithya-Monish-Kumar-K/vector-space-search/internal/ingestion"
)

// Store maps document ids to raw documents. It is safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	docs map[int]ingestion.Document
}

func New() *Store {
	return &Store{docs: make(map[int]ingestion.Document)}
}

// Put records doc, replacing any earlier payload with the same id.
func (s *Store) Put(doc ingestion.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = doc
}

func (s *Store) Get(id int) (ingestion.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	return doc, ok
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// Render formats a document for terminal output: title and url for web
// documents, the label and text otherwise.
func Render(doc ingestion.Document) string {
	if doc.URL != "" || doc.Title != "" {
		return fmt.Sprintf("%s\n%s\n", doc.Title, doc.URL)
	}
	var b strings.Builder
	if doc.Name != "" {
		b.WriteString(doc.Name)
		b.WriteByte('\n')
	}
	b.WriteString(doc.Text)
	return b.String()
}
