package cssom

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Parser is an interface to abstract away a CSS parser implementation.
// In order to de-couple the parsing of CSS from the object model and from
// clients editing style text, we access parsers through this interface only.
// Clients will have to provide a concrete implementation (e.g., see
// package douceuradapter).
type Parser interface {
	ParseSheet(text string) ([]*Rule, error)              // parse style sheet text into unattached rules
	ParseDeclaration(text string) ([]Property, error)     // parse the body of a declaration block
	ValidateSelector(text string) error                   // check selector (group) syntax
	SourceData(text string) (SourceDataList, error)       // byte ranges for every style rule
	DeclarationSourceData(text string) []PropertySourceData // byte ranges of a standalone declaration
}

// Errors reported by the object model.
var (
	// ErrIndexOutOfRange is flagged for rule indices outside a rule list.
	ErrIndexOutOfRange = errors.New("rule index out of range")

	// ErrNotInSheet is flagged if a rule does not belong to a style sheet.
	ErrNotInSheet = errors.New("rule is not part of this style sheet")

	// ErrNoParser is flagged if a sheet has to parse text but has no parser.
	ErrNoParser = errors.New("style sheet has no CSS parser")

	// ErrNotAStyleRule is flagged for selector operations on non-style rules.
	ErrNotAStyleRule = errors.New("rule is not a style rule")
)

// Origin tells where a style sheet comes from.
type Origin int

// Style sheet origins.
const (
	OriginAuthor    Origin = iota // <style> element or linked resource
	OriginInspector               // created by an inspector front end
	OriginInline                  // style attribute of an element
)

func (o Origin) String() string {
	switch o {
	case OriginInspector:
		return "inspector"
	case OriginInline:
		return "inline"
	}
	return "regular"
}

// StyleSheet is a live CSS style sheet.
type StyleSheet struct {
	rules    []*Rule
	owner    *html.Node // <style>, <link> or styled element, may be nil
	href     string
	origin   Origin
	parser   Parser
	observer func(*StyleSheet)
	modified bool // mutated through the object model since last load
}

// NewStyleSheet creates an empty style sheet owned by an HTML node (which may be nil).
func NewStyleSheet(owner *html.Node, href string, origin Origin, parser Parser) *StyleSheet {
	return &StyleSheet{owner: owner, href: href, origin: origin, parser: parser}
}

// Owner returns the owner node of a sheet.
func (sheet *StyleSheet) Owner() *html.Node {
	return sheet.owner
}

// Href returns the URL a sheet has been loaded from, if any.
func (sheet *StyleSheet) Href() string {
	return sheet.href
}

// Origin returns the origin of a sheet.
func (sheet *StyleSheet) Origin() Origin {
	return sheet.origin
}

// Parser returns the parser a sheet uses to parse rule and declaration text.
func (sheet *StyleSheet) Parser() Parser {
	return sheet.parser
}

// SetObserver installs a function which will be called after every mutation.
// Only one observer is supported; nil removes it.
func (sheet *StyleSheet) SetObserver(f func(*StyleSheet)) {
	sheet.observer = f
}

// Modified is true if the sheet has been changed through the object model
// after it has last been loaded with Load.
func (sheet *StyleSheet) Modified() bool {
	return sheet.modified
}

// Empty checks if this stylesheet contains any rules.
func (sheet *StyleSheet) Empty() bool {
	return len(sheet.rules) == 0
}

// Rules returns the top-level rules of a stylesheet.
func (sheet *StyleSheet) Rules() []*Rule {
	r := make([]*Rule, len(sheet.rules))
	copy(r, sheet.rules)
	return r
}

// FlatRules returns all style rules in document order, descending into
// grouping rules.
func (sheet *StyleSheet) FlatRules() []*Rule {
	var flat []*Rule
	var collect func([]*Rule)
	collect = func(rules []*Rule) {
		for _, r := range rules {
			switch r.kind {
			case StyleRule:
				flat = append(flat, r)
			case GroupingRule:
				collect(r.rules)
			}
		}
	}
	collect(sheet.rules)
	return flat
}

// Load replaces all rules with the result of parsing text, without marking
// the sheet as modified. Engines call this when a sheet's source changes.
func (sheet *StyleSheet) Load(text string) error {
	if err := sheet.replace(text); err != nil {
		return err
	}
	sheet.modified = false
	sheet.notify()
	return nil
}

// ReplaceContents replaces all rules with the result of parsing text.
func (sheet *StyleSheet) ReplaceContents(text string) error {
	if err := sheet.replace(text); err != nil {
		return err
	}
	sheet.modified = true
	sheet.notify()
	return nil
}

func (sheet *StyleSheet) replace(text string) error {
	if sheet.parser == nil {
		return ErrNoParser
	}
	rules, err := sheet.parser.ParseSheet(text)
	if err != nil {
		return err
	}
	for _, r := range rules {
		r.attach(sheet, nil)
	}
	sheet.rules = rules
	tracer().Debugf("cssom: sheet %q reloaded with %d rules", sheet.href, len(rules))
	return nil
}

// InsertRule parses text as a single rule and inserts it at top-level
// position index. It returns the inserted rule.
func (sheet *StyleSheet) InsertRule(text string, index int) (*Rule, error) {
	if index < 0 || index > len(sheet.rules) {
		return nil, ErrIndexOutOfRange
	}
	if sheet.parser == nil {
		return nil, ErrNoParser
	}
	rules, err := sheet.parser.ParseSheet(text)
	if err != nil {
		return nil, err
	}
	if len(rules) != 1 {
		return nil, fmt.Errorf("cssom: expected exactly one rule, have %d", len(rules))
	}
	r := rules[0]
	r.attach(sheet, nil)
	sheet.rules = append(sheet.rules, nil)
	copy(sheet.rules[index+1:], sheet.rules[index:])
	sheet.rules[index] = r
	sheet.touch()
	return r, nil
}

// AppendStyleRule appends an empty style rule for selector at the end of the
// top-level rule list.
func (sheet *StyleSheet) AppendStyleRule(selector string) (*Rule, error) {
	if sheet.parser != nil {
		if err := sheet.parser.ValidateSelector(selector); err != nil {
			return nil, err
		}
	}
	r := NewStyleRule(selector, nil)
	r.attach(sheet, nil)
	sheet.rules = append(sheet.rules, r)
	sheet.touch()
	return r, nil
}

// DeleteRule removes the top-level rule at position index.
func (sheet *StyleSheet) DeleteRule(index int) error {
	if index < 0 || index >= len(sheet.rules) {
		return ErrIndexOutOfRange
	}
	sheet.rules[index].attach(nil, nil)
	sheet.rules = append(sheet.rules[:index], sheet.rules[index+1:]...)
	sheet.touch()
	return nil
}

// Remove removes a rule from wherever it lives in the sheet, including
// nested rule lists of grouping rules.
func (sheet *StyleSheet) Remove(r *Rule) error {
	if r == nil || r.sheet != sheet {
		return ErrNotInSheet
	}
	list := &sheet.rules
	if r.parent != nil {
		list = &r.parent.rules
	}
	for i, x := range *list {
		if x == r {
			*list = append((*list)[:i], (*list)[i+1:]...)
			r.attach(nil, nil)
			sheet.touch()
			return nil
		}
	}
	return ErrNotInSheet
}

// CSSText serializes the sheet from the object model.
func (sheet *StyleSheet) CSSText() string {
	var b strings.Builder
	for i, r := range sheet.rules {
		if i > 0 {
			b.WriteByte('\n')
		}
		r.serialize(&b)
	}
	return b.String()
}

func (sheet *StyleSheet) touch() {
	sheet.modified = true
	sheet.notify()
}

func (sheet *StyleSheet) notify() {
	if sheet != nil && sheet.observer != nil {
		sheet.observer(sheet)
	}
}

// --- Rules -----------------------------------------------------------------

// RuleKind discriminates rules.
type RuleKind int

// Rule kinds.
const (
	StyleRule    RuleKind = iota // selector { declarations }
	GroupingRule                 // @media, @supports, @document with nested rules
	AtRule                       // any other at-rule, kept opaque
)

// Rule is the type stylesheets consists of.
type Rule struct {
	kind    RuleKind
	name    string // at-keyword without '@', lower case
	prelude string // selector text or at-rule prelude
	style   *Declaration
	rules   []*Rule
	parent  *Rule
	sheet   *StyleSheet
}

// NewStyleRule creates an unattached style rule.
func NewStyleRule(selector string, props []Property) *Rule {
	r := &Rule{kind: StyleRule, prelude: strings.TrimSpace(selector)}
	r.style = &Declaration{props: props, rule: r}
	return r
}

// NewGroupingRule creates an unattached grouping rule (@media etc.).
func NewGroupingRule(name, prelude string, children []*Rule) *Rule {
	r := &Rule{kind: GroupingRule, name: strings.ToLower(name), prelude: strings.TrimSpace(prelude)}
	r.rules = children
	return r
}

// NewAtRule creates an unattached opaque at-rule. Either props or children
// (or none of them) may be given.
func NewAtRule(name, prelude string, props []Property, children []*Rule) *Rule {
	r := &Rule{kind: AtRule, name: strings.ToLower(name), prelude: strings.TrimSpace(prelude)}
	if props != nil {
		r.style = &Declaration{props: props, rule: r}
	}
	r.rules = children
	return r
}

// IsGroupingName is true for at-rule names whose blocks contain style rules
// addressed through FlatRules.
func IsGroupingName(name string) bool {
	switch strings.ToLower(strings.TrimPrefix(name, "@")) {
	case "media", "supports", "document":
		return true
	}
	return false
}

func (r *Rule) attach(sheet *StyleSheet, parent *Rule) {
	r.sheet = sheet
	r.parent = parent
	for _, ch := range r.rules {
		ch.attach(sheet, r)
	}
}

// Kind returns the kind of a rule.
func (r *Rule) Kind() RuleKind {
	return r.kind
}

// Name returns the at-keyword (without '@') for at-rules.
func (r *Rule) Name() string {
	return r.name
}

// Selector returns the prelude / selectors of the rule.
func (r *Rule) Selector() string {
	return r.prelude
}

// Style returns the declaration block of a rule, if any.
func (r *Rule) Style() *Declaration {
	return r.style
}

// Rules returns nested rules.
func (r *Rule) Rules() []*Rule {
	return r.rules
}

// Parent returns the enclosing grouping rule or nil.
func (r *Rule) Parent() *Rule {
	return r.parent
}

// StyleSheet returns the sheet a rule is attached to.
func (r *Rule) StyleSheet() *StyleSheet {
	return r.sheet
}

// SetSelectorText changes the selector of a style rule.
func (r *Rule) SetSelectorText(selector string) error {
	if r.kind != StyleRule {
		return ErrNotAStyleRule
	}
	if r.sheet != nil && r.sheet.parser != nil {
		if err := r.sheet.parser.ValidateSelector(selector); err != nil {
			return err
		}
	}
	r.prelude = strings.TrimSpace(selector)
	if r.sheet != nil {
		r.sheet.touch()
	}
	return nil
}

func (r *Rule) serialize(b *strings.Builder) {
	switch r.kind {
	case StyleRule:
		b.WriteString(r.prelude)
		b.WriteString(" {")
		if txt := r.style.CSSText(); txt != "" {
			b.WriteString(" " + txt + " ")
		}
		b.WriteString("}")
	default:
		b.WriteString("@" + r.name)
		if r.prelude != "" {
			b.WriteString(" " + r.prelude)
		}
		switch {
		case r.rules != nil || r.kind == GroupingRule:
			b.WriteString(" {")
			for _, ch := range r.rules {
				b.WriteString("\n  ")
				ch.serialize(b)
			}
			b.WriteString("\n}")
		case r.style != nil:
			b.WriteString(" { " + r.style.CSSText() + " }")
		default:
			b.WriteString(";")
		}
	}
}

// --- Declarations ----------------------------------------------------------

// Property is a single CSS property of a declaration block.
type Property struct {
	Name      string
	Value     string
	Important bool
}

func (p Property) String() string {
	if p.Important {
		return p.Name + ": " + p.Value + " !important;"
	}
	return p.Name + ": " + p.Value + ";"
}

// Declaration is a live declaration block.
type Declaration struct {
	props []Property
	rule  *Rule
}

// Len returns the number of properties.
func (d *Declaration) Len() int {
	if d == nil {
		return 0
	}
	return len(d.props)
}

// Properties returns a copy of the properties, in order.
func (d *Declaration) Properties() []Property {
	if d == nil {
		return nil
	}
	p := make([]Property, len(d.props))
	copy(p, d.props)
	return p
}

// PropertyValue returns the value of the last property named name.
func (d *Declaration) PropertyValue(name string) (string, bool) {
	if d == nil {
		return "", false
	}
	for i := len(d.props) - 1; i >= 0; i-- {
		if strings.EqualFold(d.props[i].Name, name) {
			return d.props[i].Value, true
		}
	}
	return "", false
}

// IsImportant returns true if a property is marked as important ("!").
func (d *Declaration) IsImportant(name string) bool {
	if d == nil {
		return false
	}
	for i := len(d.props) - 1; i >= 0; i-- {
		if strings.EqualFold(d.props[i].Name, name) {
			return d.props[i].Important
		}
	}
	return false
}

// SetProperty sets a property, replacing an existing one of the same name or
// appending a new one.
func (d *Declaration) SetProperty(name, value string, important bool) {
	for i := range d.props {
		if strings.EqualFold(d.props[i].Name, name) {
			d.props[i].Value = value
			d.props[i].Important = important
			d.touch()
			return
		}
	}
	d.props = append(d.props, Property{Name: name, Value: value, Important: important})
	d.touch()
}

// RemoveProperty removes all properties named name and returns the value of
// the last one removed.
func (d *Declaration) RemoveProperty(name string) string {
	var old string
	props := d.props[:0]
	for _, p := range d.props {
		if strings.EqualFold(p.Name, name) {
			old = p.Value
			continue
		}
		props = append(props, p)
	}
	d.props = props
	d.touch()
	return old
}

// CSSText serializes the declaration block.
func (d *Declaration) CSSText() string {
	if d == nil {
		return ""
	}
	s := make([]string, len(d.props))
	for i, p := range d.props {
		s[i] = p.String()
	}
	return strings.Join(s, " ")
}

// SetCSSText replaces all properties with the result of parsing text.
func (d *Declaration) SetCSSText(text string) error {
	p := d.parser()
	if p == nil {
		return ErrNoParser
	}
	props, err := p.ParseDeclaration(text)
	if err != nil {
		return err
	}
	d.props = props
	d.touch()
	return nil
}

func (d *Declaration) parser() Parser {
	if d.rule == nil || d.rule.sheet == nil {
		return nil
	}
	return d.rule.sheet.parser
}

func (d *Declaration) touch() {
	if d.rule != nil && d.rule.sheet != nil {
		d.rule.sheet.touch()
	}
}
