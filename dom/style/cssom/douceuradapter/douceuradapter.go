/*
Package douceuradapter is a concrete implementation of interface cssom.Parser.

Rules and declarations are parsed with douceur, selectors are validated with
cascadia, and source data (byte ranges of rule headers, bodies and properties)
is computed from the token stream of the gorilla/css scanner, which is the
tokenizer douceur itself is built on.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/
package douceuradapter

import (
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/webinspect/dom/style/cssom"
)

// tracer traces with key 'webinspect.cssom'.
func tracer() tracing.Trace {
	return tracing.Select("webinspect.cssom")
}

// Parser is an adapter for interface cssom.Parser.
// For an explanation of the motivation behind this design, please refer
// to documentation for interface cssom.Parser.
type Parser struct{}

// New creates a CSS parser.
func New() *Parser {
	return &Parser{}
}

var _ cssom.Parser = &Parser{}

// ParseSheet parses a complete style sheet into unattached rules.
//
// Interface cssom.Parser
func (p *Parser) ParseSheet(text string) ([]*cssom.Rule, error) {
	if strings.TrimSpace(text) == "" {
		return []*cssom.Rule{}, nil
	}
	if at := stall(tokenize(text)); at >= 0 {
		tracer().Debugf("douceur: stray ';' at offset %d", at)
		return nil, fmt.Errorf("css syntax: unexpected ';' at offset %d", at)
	}
	sheet, err := parser.Parse(text)
	if err != nil {
		tracer().Debugf("douceur: cannot parse style sheet: %v", err)
		return nil, fmt.Errorf("css syntax: %w", err)
	}
	return convertRules(sheet.Rules), nil
}

// ParseDeclaration parses the body of a declaration block. The last
// property need not be terminated by a semicolon.
//
// Interface cssom.Parser
func (p *Parser) ParseDeclaration(text string) ([]cssom.Property, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return []cssom.Property{}, nil
	}
	if !strings.HasSuffix(text, ";") {
		text += ";" // douceur drops the value of an unterminated last property
	}
	decls, err := parser.ParseDeclarations(text)
	if err != nil {
		tracer().Debugf("douceur: cannot parse declaration: %v", err)
		return nil, fmt.Errorf("css syntax: %w", err)
	}
	return convertDeclarations(decls), nil
}

// ValidateSelector checks the syntax of a selector group, e.g. "p, .a > b".
//
// Interface cssom.Parser
func (p *Parser) ValidateSelector(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("css syntax: empty selector")
	}
	if strings.ContainsAny(text, "{}") {
		return fmt.Errorf("css syntax: invalid character in selector %q", text)
	}
	if _, err := cascadia.ParseGroup(text); err != nil {
		return fmt.Errorf("css syntax: %w", err)
	}
	return nil
}

// SourceData computes byte ranges for all style rules of a sheet text.
//
// Interface cssom.Parser
func (p *Parser) SourceData(text string) (cssom.SourceDataList, error) {
	sp := newSourceParser(text)
	sp.parseRules(false)
	return sp.rules, nil
}

// DeclarationSourceData computes byte ranges for the properties of a
// standalone declaration text. Parsing stops at an unbalanced closing brace.
//
// Interface cssom.Parser
func (p *Parser) DeclarationSourceData(text string) []cssom.PropertySourceData {
	sp := newSourceParser(text)
	return sp.parseDeclarations()
}

// --- Conversion from douceur -----------------------------------------------

func convertRules(rules []*css.Rule) []*cssom.Rule {
	converted := make([]*cssom.Rule, 0, len(rules))
	for _, r := range rules {
		if c := convertRule(r); c != nil {
			converted = append(converted, c)
		}
	}
	return converted
}

func convertRule(r *css.Rule) *cssom.Rule {
	switch r.Kind {
	case css.QualifiedRule:
		return cssom.NewStyleRule(r.Prelude, convertDeclarations(r.Declarations))
	case css.AtRule:
		name := strings.TrimPrefix(r.Name, "@")
		if cssom.IsGroupingName(name) {
			return cssom.NewGroupingRule(name, r.Prelude, convertRules(r.Rules))
		}
		var props []cssom.Property
		if len(r.Declarations) > 0 {
			props = convertDeclarations(r.Declarations)
		}
		var children []*cssom.Rule
		if len(r.Rules) > 0 {
			children = convertRules(r.Rules)
		}
		return cssom.NewAtRule(name, r.Prelude, props, children)
	}
	return nil
}

func convertDeclarations(decls []*css.Declaration) []cssom.Property {
	props := make([]cssom.Property, 0, len(decls))
	for _, d := range decls {
		props = append(props, cssom.Property{
			Name:      d.Property,
			Value:     d.Value,
			Important: d.Important,
		})
	}
	return props
}
