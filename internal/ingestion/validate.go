package ingestion

import (
	"fmt"
	"math"
	"sort"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/vector-space-search/pkg/errors"
)

const (
	maxTitleLength = 1024
	maxTextLength  = 16 << 20
)

// ValidationError holds per-field validation failure messages.
type ValidationError struct {
	DocID  int
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s:%s", field, msg))
	}
	sort.Strings(parts)
	return fmt.Sprintf("document %d: %s", e.DocID, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error {
	return apperrors.ErrInvalidInput
}

// Validate checks the id range and the field sizes of a raw document.
func Validate(doc Document) error {
	errs := make(map[string]string)
	if doc.ID < 0 || int64(doc.ID) > math.MaxUint32 {
		errs["id"] = fmt.Sprintf("id must be between 0 and %d", uint32(math.MaxUint32))
	}
	if len(doc.Title) > maxTitleLength {
		errs["title"] = fmt.Sprintf("title must be at most %d characters", maxTitleLength)
	}
	if len(doc.Text) > maxTextLength {
		errs["text"] = fmt.Sprintf("text must be at most %d bytes", maxTextLength)
	}
	if len(errs) > 0 {
		return &ValidationError{DocID: doc.ID, Fields: errs}
	}
	return nil
}
