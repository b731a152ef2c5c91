package stylesync

import (
	"sort"

	"github.com/npillmayer/webinspect/dom/style/cssom"
	"github.com/npillmayer/webinspect/inspector/protocol"
)

// SetRuleSelector changes the selector of the style rule at ordinal and
// returns the old selector text.
func (s *Sheet) SetRuleSelector(ordinal int, selector string) (string, error) {
	if err := s.validateSelector(selector); err != nil {
		return "", err
	}
	rsd, err := s.RuleSourceData(ordinal)
	if err != nil {
		return "", err
	}
	if err := s.backend.SetSelector(ordinal, selector); err != nil {
		return "", asInternal(err)
	}
	h := rsd.HeaderRange
	old := s.text[h.Start:h.End]
	s.setCachedText(s.text[:h.Start] + selector + s.text[h.End:])
	tracer().P("sheet", s.id).Debugf("stylesync: selector of rule %d %q → %q", ordinal, old, selector)
	s.changed()
	return old, nil
}

// AddRule appends an empty style rule on a new line and returns its ordinal.
func (s *Sheet) AddRule(selector string) (int, error) {
	if err := s.validateSelector(selector); err != nil {
		return -1, err
	}
	if err := s.ensureText(); err != nil {
		return -1, err
	}
	if err := s.backend.AppendRule(selector); err != nil {
		return -1, asInternal(err)
	}
	text := s.text
	if text != "" {
		text += "\n"
	}
	s.setCachedText(text + selector + " {}")
	s.reconcile()
	s.changed()
	return s.RuleCount() - 1, nil
}

// DeleteRule removes the style rule at ordinal, together with its text. The
// last rule of a sheet takes the line break in front of it along, so that
// deleting a rule just added restores the previous text.
func (s *Sheet) DeleteRule(ordinal int) error {
	rsd, err := s.RuleSourceData(ordinal)
	if err != nil {
		return err
	}
	if err := s.backend.DeleteRule(ordinal); err != nil {
		return asInternal(err)
	}
	from, to := rsd.HeaderRange.Start, rsd.BodyRange.End+1
	if to >= len(s.text) {
		to = len(s.text)
		if from > 0 && s.text[from-1] == '\n' {
			from-- // the line break AddRule puts in front of a new last rule
		}
	}
	s.setCachedText(s.text[:from] + s.text[to:])
	s.dropDisabled(ordinal)
	s.reconcile()
	tracer().P("sheet", s.id).Debugf("stylesync: deleted rule %d", ordinal)
	s.changed()
	return nil
}

func (s *Sheet) validateSelector(selector string) error {
	if s.parser == nil {
		return cssom.ErrNoParser
	}
	if err := s.parser.ValidateSelector(selector); err != nil {
		return protocol.Errorf(protocol.Syntax, "invalid selector %q: %v", selector, err)
	}
	return nil
}

// dropDisabled forgets the disabled properties of a deleted rule and
// renumbers those of the rules following it.
func (s *Sheet) dropDisabled(ordinal int) {
	keys := make([]int, 0, len(s.disabled))
	for k := range s.disabled {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	moved := make(map[int][]DisabledProperty, len(s.disabled))
	for _, k := range keys {
		switch {
		case k < ordinal:
			moved[k] = s.disabled[k]
		case k > ordinal:
			moved[k-1] = s.disabled[k]
		}
	}
	s.disabled = moved
}

// reconcile re-parses the text after a structural change. If text and live
// model no longer agree on the number of style rules, the text is committed
// to the live model.
func (s *Sheet) reconcile() {
	if err := s.EnsureParsedDataReady(); err != nil {
		return
	}
	if len(s.source) == s.RuleCount() {
		return
	}
	tracer().P("sheet", s.id).Infof("stylesync: text has %d rules, live model %d; committing text",
		len(s.source), s.RuleCount())
	if err := s.backend.CommitText(s.text); err != nil {
		tracer().P("sheet", s.id).Errorf("stylesync: cannot commit text: %v", err)
	}
	s.source = nil
	s.state = TextCached
}
