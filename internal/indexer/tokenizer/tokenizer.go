// Package tokenizer turns raw text into the processed tokens the index is
// built from. Splitting (Tokenizer) and normalization (Processor) are
// separate steps so documents and queries go through the same pipeline
// with the same settings.
package tokenizer

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/kljensen/snowball"
)

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {},
	"be": {}, "by": {}, "for": {}, "from": {}, "has": {}, "he": {},
	"in": {}, "is": {}, "it": {}, "its": {}, "of": {}, "on": {},
	"or": {}, "that": {}, "the": {}, "to": {}, "was": {}, "were": {},
	"will": {}, "with": {}, "this": {}, "but": {}, "they": {},
	"have": {}, "had": {}, "what": {}, "when": {}, "where": {},
	"who": {}, "which": {}, "their": {}, "if": {}, "each": {},
	"do": {}, "not": {}, "no": {}, "so": {}, "can": {},
}

// Tokenizer splits raw text into tokens.
type Tokenizer interface {
	Tokenize(text string) []string
}

// Simple splits on every rune that is neither a letter nor a digit. Case
// is preserved; folding is the Processor's job.
type Simple struct{}

func (Simple) Tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Whitespace splits on white space only and keeps punctuation attached.
type Whitespace struct{}

func (Whitespace) Tokenize(text string) []string {
	return strings.Fields(text)
}

// ByName returns the tokenizer configured as tokens.tokenizer: "simple"
// (the default when name is empty) or "whitespace".
func ByName(name string) (Tokenizer, error) {
	switch strings.ToLower(name) {
	case "", "simple":
		return Simple{}, nil
	case "whitespace":
		return Whitespace{}, nil
	default:
		return nil, fmt.Errorf("unknown tokenizer %q: want simple or whitespace", name)
	}
}

// Options selects the normalization steps a Processor applies, in order:
// lower-casing, stop-word removal, stemming.
type Options struct {
	Lowercase       bool
	RemoveStopwords bool
	Stem            bool
}

// Processor normalizes tokens produced by a Tokenizer.
type Processor struct {
	opts Options
}

func NewProcessor(opts Options) *Processor {
	return &Processor{opts: opts}
}

// Process returns the normalized tokens, dropping any that normalize to
// nothing.
func (p *Processor) Process(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if term := p.Term(tok); term != "" {
			out = append(out, term)
		}
	}
	return out
}

// Term normalizes a single token. It returns "" when the token is
// removed.
func (p *Processor) Term(tok string) string {
	if tok == "" {
		return ""
	}
	if p.opts.Lowercase {
		tok = strings.ToLower(tok)
	}
	if p.opts.RemoveStopwords {
		if _, isStop := stopWords[strings.ToLower(tok)]; isStop {
			return ""
		}
	}
	if p.opts.Stem {
		stemmed, err := snowball.Stem(tok, "english", true)
		if err == nil && stemmed != "" {
			tok = stemmed
		}
	}
	return tok
}

// Pipeline runs a Tokenizer and a Processor back to back.
type Pipeline struct {
	Tokenizer Tokenizer
	Processor *Processor
}

// Analyze tokenizes and processes text.
func (pl Pipeline) Analyze(text string) []string {
	return pl.Processor.Process(pl.Tokenizer.Tokenize(text))
}
