package ingestion

import (
	"context"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/vector-space-search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/vector-space-search/internal/indexer/weighting"
	apperrors "github.com/Adithya-Monish-Kumar-K/vector-space-search/pkg/errors"
)

const tdtSample = `
<DOC>
<DOCNO> CNN0001 </DOCNO>
<TEXT>
Cat and dog.
</TEXT>
</DOC>
<DOC>
<DOCNO>17</DOCNO>
dog dog
<TEXT>bird</TEXT>
</DOC>
<DOC>
plain text only
</DOC>
`

func readAll(t *testing.T, r Reader) []Document {
	t.Helper()
	var docs []Document
	for {
		doc, err := r.Read(context.Background())
		if errors.Is(err, io.EOF) {
			return docs
		}
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		docs = append(docs, doc)
	}
}

func TestTDTReader(t *testing.T) {
	docs := readAll(t, NewTDTReader(strings.NewReader(tdtSample)))
	want := []Document{
		{ID: 0, Name: "CNN0001", Text: "Cat and dog."},
		{ID: 1, Name: "17", Text: "dog dog\nbird"},
		{ID: 2, Text: "plain text only"},
	}
	if !reflect.DeepEqual(docs, want) {
		t.Fatalf("got %+v\nwant %+v", docs, want)
	}
}

func TestTDTReaderIDPolicy(t *testing.T) {
	record := func(docno, text string) string {
		if docno != "" {
			docno = "<DOCNO>" + docno + "</DOCNO>\n"
		}
		return "<DOC>\n" + docno + "<TEXT>" + text + "</TEXT>\n</DOC>\n"
	}
	tests := []struct {
		name    string
		input   string
		wantIDs []int
		wantErr bool
	}{
		{
			name:    "numeric",
			input:   record("7", "a") + record("3", "b"),
			wantIDs: []int{7, 3},
		},
		{
			name:    "ordinal then numeric",
			input:   record("CNN1", "a") + record("0", "b") + record("", "c"),
			wantIDs: []int{0, 1, 2},
		},
		{
			name:    "missing first docno",
			input:   record("", "a") + record("1", "b"),
			wantIDs: []int{0, 1},
		},
		{
			name:    "numeric then label",
			input:   record("1", "a") + record("CNN1", "b"),
			wantErr: true,
		},
		{
			name:    "numeric then missing",
			input:   record("1", "a") + record("", "b"),
			wantErr: true,
		},
		{
			name:    "negative is a label",
			input:   record("-4", "a") + record("5", "b"),
			wantIDs: []int{0, 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewTDTReader(strings.NewReader(tt.input))
			var ids []int
			for {
				doc, err := r.Read(context.Background())
				if errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					if !tt.wantErr {
						t.Fatalf("read: %v", err)
					}
					if !strings.Contains(err.Error(), "numeric ids") {
						t.Fatalf("unexpected error %v", err)
					}
					return
				}
				ids = append(ids, doc.ID)
			}
			if tt.wantErr {
				t.Fatalf("expected an id policy error, got ids %v", ids)
			}
			if !reflect.DeepEqual(ids, tt.wantIDs) {
				t.Fatalf("ids = %v, want %v", ids, tt.wantIDs)
			}
		})
	}
}

func TestTDTReaderMalformed(t *testing.T) {
	tests := map[string]string{
		"unterminated": "<DOC>\ntext\n",
		"stray close":  "</DOC>\n",
		"nested":       "<DOC>\n<DOC>\n",
		"outside":      "hello\n",
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			r := NewTDTReader(strings.NewReader(input))
			if _, err := r.Read(context.Background()); err == nil || errors.Is(err, io.EOF) {
				t.Fatalf("expected a format error, got %v", err)
			}
		})
	}
}

func TestWebReader(t *testing.T) {
	input := `{"id": 5, "title": "Cats", "url": "http://a", "text": "cat dog"}
{"title": "Birds", "url": "http://b", "text": "bird"}
`
	docs := readAll(t, NewWebReader(strings.NewReader(input)))
	want := []Document{
		{ID: 5, Title: "Cats", URL: "http://a", Text: "cat dog"},
		{ID: 1, Title: "Birds", URL: "http://b", Text: "bird"},
	}
	if !reflect.DeepEqual(docs, want) {
		t.Fatalf("got %+v\nwant %+v", docs, want)
	}
	if docs[0].IndexText() != "Cats cat dog" {
		t.Fatalf("unexpected index text %q", docs[0].IndexText())
	}
}

func TestWebReaderRejectsGarbage(t *testing.T) {
	r := NewWebReader(strings.NewReader(`{"id": "x"}`))
	if _, err := r.Read(context.Background()); err == nil || errors.Is(err, io.EOF) {
		t.Fatalf("expected decode error, got %v", err)
	}
}

type recordingSink struct {
	docs []Document
}

func (s *recordingSink) Put(doc Document) {
	s.docs = append(s.docs, doc)
}

func TestTokenStreamFeedsIndex(t *testing.T) {
	sink := &recordingSink{}
	pipeline := tokenizer.Pipeline{
		Tokenizer: tokenizer.Simple{},
		Processor: tokenizer.NewProcessor(tokenizer.Options{Lowercase: true}),
	}
	stream := NewTokenStream(NewTDTReader(strings.NewReader(tdtSample)), pipeline, sink)

	idx, err := index.Build(context.Background(), stream, weighting.Default)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if idx.DocCount() != 3 || stream.Count() != 3 {
		t.Fatalf("expected 3 docs, index has %d, stream passed %d", idx.DocCount(), stream.Count())
	}
	if len(sink.docs) != 3 || sink.docs[1].ID != 1 {
		t.Fatalf("sink did not see every raw document: %+v", sink.docs)
	}
	stats, ok := idx.Stats("dog")
	if !ok || stats.DocumentFrequency != 2 || stats.CollectionFrequency != 3 {
		t.Fatalf("unexpected dog stats %+v", stats)
	}
}

func TestTokenStreamValidates(t *testing.T) {
	input := `{"id": -3, "text": "x"}`
	pipeline := tokenizer.Pipeline{Tokenizer: tokenizer.Simple{}, Processor: tokenizer.NewProcessor(tokenizer.Options{})}
	stream := NewTokenStream(NewWebReader(strings.NewReader(input)), pipeline, nil)
	_, err := stream.Next(context.Background())
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError got %v", err)
	}
	if !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatal("validation errors must unwrap to ErrInvalidInput")
	}
	if _, ok := verr.Fields["id"]; !ok {
		t.Fatalf("expected id field error, got %v", verr.Fields)
	}
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{
		"tdt":      FormatTDT,
		"":         FormatTDT,
		"JSONL":    FormatJSONL,
		"web":      FormatJSONL,
		"postgres": FormatPostgres,
		"pg":       FormatPostgres,
	}
	for in, want := range tests {
		if got := ParseFormat(in); got != want {
			t.Errorf("ParseFormat(%q) = %q, want %q", in, got, want)
		}
	}
}
