package cssagent

import (
	"strings"

	"github.com/npillmayer/webinspect/dom/style/cssom"
	"github.com/npillmayer/webinspect/inspector/protocol"
	"github.com/npillmayer/webinspect/inspector/stylesync"
)

func sourceRange(r *cssom.SourceRange) *protocol.SourceRange {
	if r == nil {
		return nil
	}
	return &protocol.SourceRange{Start: r.Start, End: r.End}
}

func property(p stylesync.Property) protocol.CSSProperty {
	prop := protocol.CSSProperty{
		Name:     p.Name,
		Value:    p.Value,
		Text:     p.Text,
		ParsedOK: p.ParsedOK,
		Status:   p.Status,
		Range:    sourceRange(p.Range),
	}
	if p.Important {
		prop.Priority = "important"
	}
	return prop
}

func (a *Agent) buildStyle(e *entry, ordinal int) (*protocol.CSSStyle, error) {
	props, err := e.sheet.AllProperties(ordinal)
	if err != nil {
		return nil, err
	}
	text, err := e.sheet.StyleText(ordinal)
	if err != nil {
		return nil, err
	}
	rsd, err := e.sheet.RuleSourceData(ordinal)
	if err != nil {
		return nil, err
	}
	style := &protocol.CSSStyle{
		StyleID:       &protocol.CSSID{StyleSheetID: e.id, Ordinal: ordinal},
		CSSProperties: make([]protocol.CSSProperty, 0, len(props)),
		CSSText:       text,
		Range:         sourceRange(&rsd.BodyRange),
	}
	for _, p := range props {
		style.CSSProperties = append(style.CSSProperties, property(p))
	}
	return style, nil
}

func (a *Agent) buildRule(e *entry, ordinal int) (*protocol.CSSRule, error) {
	r := e.sheet.Rule(ordinal)
	if r == nil {
		return nil, protocol.Errorf(protocol.NotFound, "style sheet %q has no rule %d", e.id, ordinal)
	}
	style, err := a.buildStyle(e, ordinal)
	if err != nil {
		return nil, err
	}
	rsd, _ := e.sheet.RuleSourceData(ordinal)
	rule := &protocol.CSSRule{
		RuleID:       &protocol.CSSID{StyleSheetID: e.id, Ordinal: ordinal},
		SelectorText: r.Selector(),
		Selectors:    splitSelectors(r.Selector()),
		Style:        style,
		Range:        sourceRange(&rsd.HeaderRange),
	}
	if e.live != nil {
		h := a.header(e)
		rule.Origin, rule.SourceURL = h.Origin, h.SourceURL
	}
	for p := r.Parent(); p != nil; p = p.Parent() {
		if p.Kind() == cssom.GroupingRule && p.Name() == "media" {
			rule.Media = append(rule.Media, p.Selector())
		}
	}
	return rule, nil
}

// splitSelectors splits a selector list at top-level commas.
func splitSelectors(list string) []string {
	var selectors []string
	depth, start := 0, 0
	var quote rune
	for i, c := range list {
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '(' || c == '[':
			depth++
		case c == ')' || c == ']':
			depth--
		case c == ',' && depth == 0:
			selectors = append(selectors, strings.TrimSpace(list[start:i]))
			start = i + 1
		}
	}
	if s := strings.TrimSpace(list[start:]); s != "" || len(selectors) > 0 {
		selectors = append(selectors, s)
	}
	return selectors
}
