package parser

import "strings"

// Node is a boolean expression tree node: *Term, *Not, *And or *Or.
type Node interface {
	String() string
}

// Term is a bare query word, not yet tokenized or processed.
type Term struct {
	Text string
}

type Not struct {
	Child Node
}

type And struct {
	Children []Node
}

type Or struct {
	Children []Node
}

func (t *Term) String() string { return t.Text }

func (n *Not) String() string { return "!" + n.Child.String() }

func (a *And) String() string { return join(a.Children, " AND ") }

func (o *Or) String() string { return join(o.Children, " OR ") }

func join(children []Node, sep string) string {
	parts := make([]string, len(children))
	for i, c := range children {
		parts[i] = c.String()
		if _, nested := c.(*Or); nested {
			parts[i] = "(" + parts[i] + ")"
		}
	}
	return strings.Join(parts, sep)
}

// Walk visits n and its descendants depth first.
func Walk(n Node, fn func(Node)) {
	fn(n)
	switch v := n.(type) {
	case *Not:
		Walk(v.Child, fn)
	case *And:
		for _, c := range v.Children {
			Walk(c, fn)
		}
	case *Or:
		for _, c := range v.Children {
			Walk(c, fn)
		}
	}
}
