package parser

import (
	"fmt"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/vector-space-search/pkg/errors"
)

// SyntaxError reports a malformed boolean expression.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s at position %d: %s", apperrors.ErrQuerySyntax, e.Pos, e.Msg)
}

func (e *SyntaxError) Unwrap() error {
	return apperrors.ErrQuerySyntax
}

// Parse builds the expression tree of a boolean query. NOT binds tighter
// than AND, which binds tighter than OR:
//
//	expr  := and { "OR" and }
//	and   := unary { "AND" unary }
//	unary := "!" unary | term
func Parse(query string) (*Query, error) {
	tokens, err := lex(query)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	if p.peek().kind == tokEOF {
		return nil, &SyntaxError{Pos: 0, Msg: "empty expression"}
	}
	root, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, &SyntaxError{Pos: tok.pos, Msg: fmt.Sprintf("expected AND or OR before %q", tok.text)}
	}
	return &Query{Root: root, RawQuery: query}, nil
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) parseOr() (Node, error) {
	first, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	children := []Node{first}
	for p.peek().kind == tokOr {
		p.next()
		child, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	if len(children) == 1 {
		return first, nil
	}
	return &Or{Children: children}, nil
}

func (p *parser) parseAnd() (Node, error) {
	first, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	children := []Node{first}
	for p.peek().kind == tokAnd {
		p.next()
		child, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	if len(children) == 1 {
		return first, nil
	}
	return &And{Children: children}, nil
}

func (p *parser) parseUnary() (Node, error) {
	tok := p.next()
	switch tok.kind {
	case tokNot:
		child, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Not{Child: child}, nil
	case tokTerm:
		return &Term{Text: tok.text}, nil
	default:
		return nil, &SyntaxError{Pos: tok.pos, Msg: fmt.Sprintf("expected a term, found %s", tok.kind)}
	}
}

// Query is a parsed boolean expression.
type Query struct {
	Root     Node
	RawQuery string
}

func (q *Query) String() string {
	return q.Root.String()
}

// Terms returns the raw text of every term in the expression, negated or
// not, in order of appearance.
func (q *Query) Terms() []string {
	var terms []string
	Walk(q.Root, func(n Node) {
		if t, ok := n.(*Term); ok {
			terms = append(terms, t.Text)
		}
	})
	return terms
}

// IsBoolean reports whether raw query text looks like a boolean
// expression: it contains '!', "AND" or "OR" anywhere.
func IsBoolean(raw string) bool {
	return strings.Contains(raw, "!") ||
		strings.Contains(raw, "AND") ||
		strings.Contains(raw, "OR")
}
