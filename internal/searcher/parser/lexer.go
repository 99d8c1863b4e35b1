package parser

import (
	"unicode"
	"unicode/utf8"
)

type tokenKind int

const (
	tokTerm tokenKind = iota
	tokAnd
	tokOr
	tokNot
	tokEOF
)

func (k tokenKind) String() string {
	switch k {
	case tokTerm:
		return "term"
	case tokAnd:
		return "AND"
	case tokOr:
		return "OR"
	case tokNot:
		return "!"
	default:
		return "end of query"
	}
}

type token struct {
	kind tokenKind
	text string
	pos  int
}

// lex splits a boolean expression on white space. AND and OR are
// operators only when written in upper case as whole words. Each leading
// '!' of a word is a NOT and must be followed by more of the same word.
func lex(input string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(input) {
		r, size := utf8.DecodeRuneInString(input[i:])
		if unicode.IsSpace(r) {
			i += size
			continue
		}
		start := i
		for i < len(input) {
			r, size = utf8.DecodeRuneInString(input[i:])
			if unicode.IsSpace(r) {
				break
			}
			i += size
		}
		word := input[start:i]
		switch word {
		case "AND":
			tokens = append(tokens, token{kind: tokAnd, text: word, pos: start})
			continue
		case "OR":
			tokens = append(tokens, token{kind: tokOr, text: word, pos: start})
			continue
		}
		j := 0
		for j < len(word) && word[j] == '!' {
			tokens = append(tokens, token{kind: tokNot, text: "!", pos: start + j})
			j++
		}
		if j == len(word) {
			return nil, &SyntaxError{Pos: start + j, Msg: "'!' must immediately precede a term"}
		}
		tokens = append(tokens, token{kind: tokTerm, text: word[j:], pos: start + j})
	}
	tokens = append(tokens, token{kind: tokEOF, pos: len(input)})
	return tokens, nil
}
