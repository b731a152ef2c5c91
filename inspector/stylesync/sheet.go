package stylesync

import (
	"errors"
	"sort"
	"strings"

	"github.com/npillmayer/webinspect/dom/style/cssom"
	"github.com/npillmayer/webinspect/inspector/protocol"
)

// State tells how much a Sheet knows about its text.
type State int

// States of a Sheet. They advance lazily and fall back to NoText whenever
// the text is replaced from outside.
const (
	NoText          State = iota // nothing cached
	TextCached                   // text known, source data not yet computed
	SourceDataReady              // text and source ranges known
)

func (s State) String() string {
	switch s {
	case TextCached:
		return "text-cached"
	case SourceDataReady:
		return "source-data-ready"
	}
	return "no-text"
}

// DisabledProperty is a property which has been taken out of the live
// declaration by toggling it off. Offset is the position of its text
// relative to the start of the declaration body it has been removed from.
type DisabledProperty struct {
	Name      string
	Value     string
	Important bool
	RawText   string
	Offset    int
}

// DefaultIndent is the indentation of properties inserted into a
// declaration without properties.
const DefaultIndent = "    "

// Sheet keeps the text of a style sheet in sync with its live model.
type Sheet struct {
	id       string
	backend  Backend
	parser   cssom.Parser
	state    State
	text     string
	source   cssom.SourceDataList
	disabled map[int][]DisabledProperty // by rule ordinal
	indent   string
	onChange func(*Sheet)
}

// Option configures a Sheet.
type Option func(*Sheet)

// WithIndent sets the indentation used when a declaration body gives no
// hint of its formatting.
func WithIndent(indent string) Option {
	return func(s *Sheet) {
		s.indent = indent
	}
}

// OnChange installs a function to call after every change of the text.
func OnChange(f func(*Sheet)) Option {
	return func(s *Sheet) {
		s.onChange = f
	}
}

// NewSheet creates a Sheet with id for a backend. parser is used to check
// property text.
func NewSheet(id string, backend Backend, parser cssom.Parser, opts ...Option) *Sheet {
	s := &Sheet{
		id:       id,
		backend:  backend,
		parser:   parser,
		disabled: make(map[int][]DisabledProperty),
		indent:   DefaultIndent,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the id of a sheet.
func (s *Sheet) ID() string {
	return s.id
}

// Backend returns the backend of a sheet.
func (s *Sheet) Backend() Backend {
	return s.backend
}

// State returns the current state.
func (s *Sheet) State() State {
	return s.state
}

func (s *Sheet) changed() {
	if s.onChange != nil {
		s.onChange(s)
	}
}

// --- Text ------------------------------------------------------------------

func (s *Sheet) ensureText() error {
	if s.state != NoText {
		return nil
	}
	text, err := s.backend.OriginalText()
	if err != nil {
		if protocol.KindOf(err) == protocol.NotModifiable {
			return err
		}
		return protocol.Errorf(protocol.NotModifiable, "style sheet text is not available: %v", err)
	}
	s.text = text
	s.state = TextCached
	return nil
}

// Text returns the text of a sheet.
func (s *Sheet) Text() (string, error) {
	if err := s.ensureText(); err != nil {
		return "", err
	}
	return s.text, nil
}

// EnsureParsedDataReady makes sure text and source ranges are known.
func (s *Sheet) EnsureParsedDataReady() error {
	if err := s.ensureText(); err != nil {
		return err
	}
	if s.state == SourceDataReady {
		return nil
	}
	source, err := s.backend.SourceData(s.text)
	if err != nil {
		return protocol.Errorf(protocol.NotModifiable, "style sheet text cannot be mapped: %v", err)
	}
	s.source = source
	s.state = SourceDataReady
	tracer().P("sheet", s.id).Debugf("stylesync: source data for %d rules", len(source))
	return nil
}

// SourceData returns the source ranges of all style rules.
func (s *Sheet) SourceData() (cssom.SourceDataList, error) {
	if err := s.EnsureParsedDataReady(); err != nil {
		return nil, err
	}
	return s.source, nil
}

// SetText replaces the text of a sheet, and the live model with it.
// Disabled properties are dropped.
func (s *Sheet) SetText(text string) error {
	if err := s.backend.CommitText(text); err != nil {
		return asInternal(err)
	}
	s.setCachedText(text)
	s.disabled = make(map[int][]DisabledProperty)
	s.changed()
	return nil
}

func (s *Sheet) setCachedText(text string) {
	s.text = text
	s.state = TextCached
	s.source = nil
}

// Resync forgets what a sheet knows after its live model has been changed
// from outside. If the live model has been changed through the object
// model, its serialization becomes the new text, otherwise the text is
// fetched again when needed.
func (s *Sheet) Resync(modified bool, serialized string) {
	s.disabled = make(map[int][]DisabledProperty)
	s.source = nil
	if modified {
		s.text = serialized
		s.state = TextCached
	} else {
		s.text = ""
		s.state = NoText
	}
	tracer().P("sheet", s.id).Debugf("stylesync: resynced, state %s", s.state)
}

// Snapshot captures the text and disabled properties of a sheet.
type Snapshot struct {
	Text     string
	disabled map[int][]DisabledProperty
}

// Snapshot captures the current state, for Restore.
func (s *Sheet) Snapshot() (Snapshot, error) {
	if err := s.ensureText(); err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Text: s.text, disabled: copyDisabled(s.disabled)}, nil
}

// Restore brings a sheet back to a snapshot, live model included.
func (s *Sheet) Restore(snap Snapshot) error {
	if err := s.backend.CommitText(snap.Text); err != nil {
		return asInternal(err)
	}
	s.setCachedText(snap.Text)
	s.disabled = copyDisabled(snap.disabled)
	s.changed()
	return nil
}

func copyDisabled(m map[int][]DisabledProperty) map[int][]DisabledProperty {
	c := make(map[int][]DisabledProperty, len(m))
	for k, v := range m {
		if len(v) > 0 {
			c[k] = append([]DisabledProperty(nil), v...)
		}
	}
	return c
}

// --- Rules -----------------------------------------------------------------

// RuleCount returns the number of style rules of the live model.
func (s *Sheet) RuleCount() int {
	return len(s.backend.Rules())
}

// Rule returns the live style rule at ordinal, or nil.
func (s *Sheet) Rule(ordinal int) *cssom.Rule {
	rules := s.backend.Rules()
	if ordinal < 0 || ordinal >= len(rules) {
		return nil
	}
	return rules[ordinal]
}

// RuleSourceData returns the source ranges of the style rule at ordinal.
func (s *Sheet) RuleSourceData(ordinal int) (*cssom.RuleSourceData, error) {
	if err := s.EnsureParsedDataReady(); err != nil {
		return nil, err
	}
	if ordinal < 0 || ordinal >= s.RuleCount() {
		return nil, protocol.Errorf(protocol.NotFound, "no style rule with ordinal %d", ordinal)
	}
	if ordinal >= len(s.source) {
		return nil, protocol.Errorf(protocol.NotModifiable, "no source data for style rule %d", ordinal)
	}
	return s.source[ordinal], nil
}

// StyleText returns the declaration body of the style rule at ordinal.
func (s *Sheet) StyleText(ordinal int) (string, error) {
	rsd, err := s.RuleSourceData(ordinal)
	if err != nil {
		return "", err
	}
	return s.text[rsd.BodyRange.Start:rsd.BodyRange.End], nil
}

// SetStyleText replaces the declaration body of the style rule at ordinal
// and returns the old body. Disabled properties of the rule are dropped.
func (s *Sheet) SetStyleText(ordinal int, body string) (string, error) {
	rsd, err := s.RuleSourceData(ordinal)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(body) != "" {
		if _, _, err := s.checkPropertyText(body, false); err != nil {
			return "", err
		}
	}
	old := s.text[rsd.BodyRange.Start:rsd.BodyRange.End]
	if err := s.applyStyle(ordinal, rsd, body, nil); err != nil {
		return "", err
	}
	return old, nil
}

// applyStyle commits a new declaration body for a rule and patches the
// text. The disabled properties of the rule are replaced by disabled.
func (s *Sheet) applyStyle(ordinal int, rsd *cssom.RuleSourceData, body string, disabled []DisabledProperty) error {
	if err := s.backend.CommitStyle(ordinal, body); err != nil {
		return asInternal(err)
	}
	s.setCachedText(s.text[:rsd.BodyRange.Start] + body + s.text[rsd.BodyRange.End:])
	if len(disabled) == 0 {
		delete(s.disabled, ordinal)
	} else {
		sort.SliceStable(disabled, func(i, j int) bool { return disabled[i].Offset < disabled[j].Offset })
		s.disabled[ordinal] = disabled
	}
	s.changed()
	return nil
}

// Disabled returns the disabled properties of the style rule at ordinal.
func (s *Sheet) Disabled(ordinal int) []DisabledProperty {
	return append([]DisabledProperty(nil), s.disabled[ordinal]...)
}

func asInternal(err error) error {
	var perr *protocol.Error
	if errors.As(err, &perr) {
		return err
	}
	return protocol.Errorf(protocol.Internal, "live style sheet refused change: %v", err)
}
