package ingestion

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const maxLineSize = 1 << 20

// TDTReader reads SGML-style corpora where each record is wrapped in
// <DOC> ... </DOC> with an optional <DOCNO> label and <TEXT> body. Lines
// inside a record that are not tags are treated as text.
//
// The first record fixes the id policy for the whole file. When its DOCNO
// is purely numeric, every record must carry a numeric DOCNO and that
// number is the id. Otherwise ids are record positions counted from 0 and
// DOCNOs are kept only as names.
type TDTReader struct {
	scanner *bufio.Scanner
	ordinal int
	line    int
	policy  idPolicy
}

type idPolicy int

const (
	policyUnset idPolicy = iota
	policyNumeric
	policyOrdinal
)

func NewTDTReader(r io.Reader) *TDTReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &TDTReader{scanner: sc}
}

func (r *TDTReader) Read(ctx context.Context) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	var (
		inDoc bool
		doc   Document
		text  strings.Builder
	)
	for r.scanner.Scan() {
		r.line++
		line := strings.TrimSpace(r.scanner.Text())
		switch {
		case strings.EqualFold(line, "<DOC>"):
			if inDoc {
				return Document{}, fmt.Errorf("line %d: nested <DOC>", r.line)
			}
			inDoc = true
			doc = Document{}
			text.Reset()
		case strings.EqualFold(line, "</DOC>"):
			if !inDoc {
				return Document{}, fmt.Errorf("line %d: </DOC> without <DOC>", r.line)
			}
			id, err := r.assignID(doc.Name)
			if err != nil {
				return Document{}, err
			}
			r.ordinal++
			doc.ID = id
			doc.Text = strings.TrimSpace(text.String())
			return doc, nil
		case !inDoc:
			if line != "" {
				return Document{}, fmt.Errorf("line %d: text outside <DOC>", r.line)
			}
		case hasTag(line, "DOCNO"):
			doc.Name = stripTags(line, "DOCNO")
		default:
			body := stripTags(line, "TEXT")
			if body == "" {
				continue
			}
			if text.Len() > 0 {
				text.WriteByte('\n')
			}
			text.WriteString(body)
		}
	}
	if err := r.scanner.Err(); err != nil {
		return Document{}, fmt.Errorf("scanning corpus: %w", err)
	}
	if inDoc {
		return Document{}, fmt.Errorf("line %d: unterminated <DOC>", r.line)
	}
	return Document{}, io.EOF
}

// assignID applies the file's id policy to a finished record, deciding the
// policy on the first one.
func (r *TDTReader) assignID(docno string) (int, error) {
	id, err := strconv.Atoi(docno)
	numeric := err == nil && id >= 0
	if r.policy == policyUnset {
		r.policy = policyOrdinal
		if numeric {
			r.policy = policyNumeric
		}
	}
	if r.policy == policyOrdinal {
		return r.ordinal, nil
	}
	if !numeric {
		return 0, fmt.Errorf("line %d: record %d has DOCNO %q, but the first record set numeric ids for this file", r.line, r.ordinal, docno)
	}
	return id, nil
}

func hasTag(line, tag string) bool {
	open := "<" + tag + ">"
	return len(line) >= len(open) && strings.EqualFold(line[:len(open)], open)
}

func stripTags(line, tag string) string {
	open, closing := "<"+tag+">", "</"+tag+">"
	if hasTag(line, tag) {
		line = line[len(open):]
	}
	if n := len(line) - len(closing); n >= 0 && strings.EqualFold(line[n:], closing) {
		line = line[:n]
	}
	return strings.TrimSpace(line)
}
