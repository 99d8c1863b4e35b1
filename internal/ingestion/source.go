package ingestion

import (
	"database/sql"
	"fmt"
	"io"
	"os"
)

// Open returns a Reader for the configured corpus. File formats read path;
// FormatPostgres reads the documents table through db. The returned closer
// releases the file or result set.
func Open(format Format, path string, db *sql.DB) (Reader, io.Closer, error) {
	switch format {
	case FormatPostgres:
		if db == nil {
			return nil, nil, fmt.Errorf("postgres corpus: no database connection")
		}
		r := NewPostgresReader(db, "")
		return r, r, nil
	case FormatTDT, FormatJSONL:
		if path == "" {
			return nil, nil, fmt.Errorf("%s corpus: no path configured", format)
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, nil, fmt.Errorf("opening corpus: %w", err)
		}
		if format == FormatJSONL {
			return NewWebReader(f), f, nil
		}
		return NewTDTReader(f), f, nil
	default:
		return nil, nil, fmt.Errorf("unknown corpus format %q", format)
	}
}
