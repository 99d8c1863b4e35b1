package ingestion

import (
	"context"
	"database/sql"
	"fmt"
	"io"
)

// DefaultDocumentsQuery selects the corpus from the documents table.
const DefaultDocumentsQuery = `SELECT id, COALESCE(title, ''), COALESCE(url, ''), body FROM documents ORDER BY id`

// PostgresReader streams documents from a query returning
// (id, title, url, text) rows. The query runs on the first Read.
type PostgresReader struct {
	db    *sql.DB
	query string
	rows  *sql.Rows
	done  bool
}

func NewPostgresReader(db *sql.DB, query string) *PostgresReader {
	if query == "" {
		query = DefaultDocumentsQuery
	}
	return &PostgresReader{db: db, query: query}
}

func (r *PostgresReader) Read(ctx context.Context) (Document, error) {
	if r.done {
		return Document{}, io.EOF
	}
	if r.rows == nil {
		rows, err := r.db.QueryContext(ctx, r.query)
		if err != nil {
			return Document{}, fmt.Errorf("querying documents: %w", err)
		}
		r.rows = rows
	}
	if !r.rows.Next() {
		r.done = true
		err := r.rows.Err()
		r.rows.Close()
		if err != nil {
			return Document{}, fmt.Errorf("iterating documents: %w", err)
		}
		return Document{}, io.EOF
	}
	var (
		doc Document
		id  int64
	)
	if err := r.rows.Scan(&id, &doc.Title, &doc.URL, &doc.Text); err != nil {
		return Document{}, fmt.Errorf("scanning document row: %w", err)
	}
	doc.ID = int(id)
	return doc, nil
}

// Close releases the result set if the reader was not read to the end.
func (r *PostgresReader) Close() error {
	r.done = true
	if r.rows != nil {
		return r.rows.Close()
	}
	return nil
}
