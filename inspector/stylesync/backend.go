package stylesync

import (
	"github.com/npillmayer/webinspect/dom/style/cssom"
	"github.com/npillmayer/webinspect/dom/w3cdom"
	"github.com/npillmayer/webinspect/inspector/protocol"
	"golang.org/x/net/html"
)

// Backend is the live model behind a Sheet. Style rules are addressed by
// ordinal, in the order of cssom.StyleSheet.FlatRules.
type Backend interface {
	OriginalText() (string, error)                       // text to start from when nothing is cached
	Rules() []*cssom.Rule                                // live style rules
	SourceData(text string) (cssom.SourceDataList, error) // ranges for every style rule of text
	CommitText(text string) error                        // replace everything
	CommitStyle(ordinal int, body string) error          // replace the declarations of one rule
	SetSelector(ordinal int, selector string) error
	AppendRule(selector string) error
	DeleteRule(ordinal int) error
	Inline() bool
}

// --- Style sheets ----------------------------------------------------------

// TextSource returns the text a style sheet has been loaded from.
// dom.Page.OriginalStyleSheetText is a TextSource.
type TextSource func(*cssom.StyleSheet) (string, error)

// SheetBackend connects a Sheet to a live cssom.StyleSheet.
type SheetBackend struct {
	sheet  *cssom.StyleSheet
	source TextSource
}

// NewSheetBackend creates a backend for a live style sheet.
func NewSheetBackend(sheet *cssom.StyleSheet, source TextSource) *SheetBackend {
	return &SheetBackend{sheet: sheet, source: source}
}

// StyleSheet returns the live style sheet.
func (b *SheetBackend) StyleSheet() *cssom.StyleSheet {
	return b.sheet
}

// OriginalText is part of interface Backend.
func (b *SheetBackend) OriginalText() (string, error) {
	if b.source == nil {
		return "", protocol.Errorf(protocol.NotModifiable, "style sheet has no text source")
	}
	return b.source(b.sheet)
}

// Rules is part of interface Backend.
func (b *SheetBackend) Rules() []*cssom.Rule {
	return b.sheet.FlatRules()
}

// SourceData is part of interface Backend.
func (b *SheetBackend) SourceData(text string) (cssom.SourceDataList, error) {
	if b.sheet.Parser() == nil {
		return nil, cssom.ErrNoParser
	}
	return b.sheet.Parser().SourceData(text)
}

// CommitText is part of interface Backend.
func (b *SheetBackend) CommitText(text string) error {
	if err := b.sheet.ReplaceContents(text); err != nil {
		return protocol.Errorf(protocol.Syntax, "cannot parse style sheet text: %v", err)
	}
	return nil
}

func (b *SheetBackend) rule(ordinal int) (*cssom.Rule, error) {
	rules := b.sheet.FlatRules()
	if ordinal < 0 || ordinal >= len(rules) {
		return nil, protocol.Errorf(protocol.NotFound, "no style rule with ordinal %d", ordinal)
	}
	return rules[ordinal], nil
}

// CommitStyle is part of interface Backend.
func (b *SheetBackend) CommitStyle(ordinal int, body string) error {
	r, err := b.rule(ordinal)
	if err != nil {
		return err
	}
	return r.Style().SetCSSText(body)
}

// SetSelector is part of interface Backend.
func (b *SheetBackend) SetSelector(ordinal int, selector string) error {
	r, err := b.rule(ordinal)
	if err != nil {
		return err
	}
	return r.SetSelectorText(selector)
}

// AppendRule is part of interface Backend.
func (b *SheetBackend) AppendRule(selector string) error {
	_, err := b.sheet.AppendStyleRule(selector)
	return err
}

// DeleteRule is part of interface Backend.
func (b *SheetBackend) DeleteRule(ordinal int) error {
	r, err := b.rule(ordinal)
	if err != nil {
		return err
	}
	return b.sheet.Remove(r)
}

// Inline is part of interface Backend.
func (b *SheetBackend) Inline() bool {
	return false
}

// --- Inline styles ---------------------------------------------------------

// AttributeSetter changes attributes of the live tree. dom.Page is an
// AttributeSetter.
type AttributeSetter interface {
	SetAttribute(element *html.Node, name, value string) error
}

// InlineBackend connects a Sheet to the style attribute of an element. The
// sheet has a single rule without a selector, whose body is the attribute
// value. Writes go through the engine, so they are seen as attribute
// modifications.
type InlineBackend struct {
	element *html.Node
	setter  AttributeSetter
	parser  cssom.Parser
}

// NewInlineBackend creates a backend for the inline style of an element.
func NewInlineBackend(element *html.Node, setter AttributeSetter, parser cssom.Parser) *InlineBackend {
	return &InlineBackend{element: element, setter: setter, parser: parser}
}

// Element returns the styled element.
func (b *InlineBackend) Element() *html.Node {
	return b.element
}

// OriginalText is part of interface Backend.
func (b *InlineBackend) OriginalText() (string, error) {
	text, _ := w3cdom.Attr(b.element, "style")
	return text, nil
}

// Rules is part of interface Backend.
func (b *InlineBackend) Rules() []*cssom.Rule {
	text, _ := w3cdom.Attr(b.element, "style")
	props, err := b.parser.ParseDeclaration(text)
	if err != nil {
		props = nil
	}
	return []*cssom.Rule{cssom.NewStyleRule("", props)}
}

// SourceData is part of interface Backend.
func (b *InlineBackend) SourceData(text string) (cssom.SourceDataList, error) {
	return cssom.SourceDataList{{
		BodyRange:  cssom.SourceRange{Start: 0, End: len(text)},
		Properties: b.parser.DeclarationSourceData(text),
	}}, nil
}

// CommitText is part of interface Backend.
func (b *InlineBackend) CommitText(text string) error {
	return b.setter.SetAttribute(b.element, "style", text)
}

// CommitStyle is part of interface Backend.
func (b *InlineBackend) CommitStyle(ordinal int, body string) error {
	if ordinal != 0 {
		return protocol.Errorf(protocol.NotFound, "inline style has no rule %d", ordinal)
	}
	return b.CommitText(body)
}

var errInlineStructure = protocol.Errorf(protocol.NotModifiable, "inline styles have no rules to change")

// SetSelector is part of interface Backend.
func (b *InlineBackend) SetSelector(int, string) error {
	return errInlineStructure
}

// AppendRule is part of interface Backend.
func (b *InlineBackend) AppendRule(string) error {
	return errInlineStructure
}

// DeleteRule is part of interface Backend.
func (b *InlineBackend) DeleteRule(int) error {
	return errInlineStructure
}

// Inline is part of interface Backend.
func (b *InlineBackend) Inline() bool {
	return true
}
