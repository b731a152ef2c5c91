package douceuradapter

import (
	"github.com/gorilla/css/scanner"
)

// douceur loops forever on a ';' where it expects the prelude of a
// qualified rule, e.g. "a { b: c }; d { e: f }". stall walks the token
// stream the way douceur does and returns the offset of the first such
// ';', or -1.
//
// Where douceur would stop with an error, the walk simply goes on. A ';'
// found after that point is reported as well, which is harmless: the text
// is rejected either way.
func stall(toks []token) int {
	g := &guard{toks: toks}
	return g.rules(false)
}

type guard struct {
	toks []token
	pos  int
}

// next returns the current token, or nil at the end of input and on a
// tokenizer error.
func (g *guard) next() *token {
	if g.pos >= len(g.toks) || g.toks[g.pos].Type == scanner.TokenError {
		return nil
	}
	return &g.toks[g.pos]
}

func ignorable(t *token) bool {
	switch t.Type {
	case scanner.TokenS, scanner.TokenComment, scanner.TokenCDO, scanner.TokenCDC:
		return true
	}
	return false
}

// rules follows a list of rules. For a nested list, the opening brace has
// been consumed.
func (g *guard) rules(nested bool) int {
	for t := g.next(); t != nil; t = g.next() {
		switch {
		case ignorable(t):
			g.pos++
		case isChar(t, "}"):
			if nested {
				g.pos++
			}
			return -1 // end of block, or an error at top level
		case t.Type == scanner.TokenAtKeyword:
			if at := g.atRule(); at >= 0 {
				return at
			}
		default:
			if at := g.qualifiedRule(); at >= 0 {
				return at
			}
		}
	}
	return -1
}

// embedsRules lists the at-rules douceur parses a block of rules for.
// Names are compared as douceur does, including case.
var embedsRules = map[string]bool{
	"@document": true, "@font-feature-values": true, "@keyframes": true,
	"@media": true, "@supports": true,
}

func (g *guard) atRule() int {
	name := g.toks[g.pos].Value
	g.pos++
	for t := g.next(); t != nil; t = g.next() {
		switch {
		case isChar(t, ";"):
			g.pos++
			return -1
		case isChar(t, "{"):
			if embedsRules[name] {
				g.pos++
				return g.rules(true)
			}
			g.declarations()
			return -1
		default:
			g.prelude()
		}
	}
	return -1
}

func (g *guard) qualifiedRule() int {
	for t := g.next(); t != nil; t = g.next() {
		if isChar(t, "{") {
			g.declarations()
			return -1
		}
		if g.prelude() == 0 {
			return t.start // a ';' douceur will never consume
		}
	}
	return -1
}

// prelude consumes tokens up to a ';' or '{' and returns their number.
func (g *guard) prelude() int {
	n := 0
	for t := g.next(); t != nil && !isChar(t, ";") && !isChar(t, "{"); t = g.next() {
		g.pos++
		n++
	}
	return n
}

// declarations consumes a declaration block. douceur ends it at the first
// '}', nested braces are not counted.
func (g *guard) declarations() {
	g.pos++
	for t := g.next(); t != nil; t = g.next() {
		g.pos++
		if isChar(t, "}") {
			return
		}
	}
}
