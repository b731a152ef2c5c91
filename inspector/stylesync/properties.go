package stylesync

import (
	"math"
	"strings"

	"github.com/npillmayer/webinspect/dom/style/cssom"
	"github.com/npillmayer/webinspect/inspector/protocol"
)

// Property is a property of a declaration, merged from the source text, the
// disabled properties and the live model.
type Property struct {
	Name      string
	Value     string
	Important bool
	ParsedOK  bool
	Text      string             // raw text, empty for properties of the live model only
	Status    string             // one of the protocol.Status… values
	Range     *cssom.SourceRange // absolute range in the sheet text, if present in source
	HasSource bool               // present in the source text
	Disabled  bool

	offset   int // relative to body start
	end      int
	disabled int // index into the disabled list, or -1
}

const whitespace = " \t\r\n\f"

// AllProperties returns the properties of the style rule at ordinal, in the
// order a client sees them. Disabled properties are placed where their text
// has been, properties known only to the live model come last.
func (s *Sheet) AllProperties(ordinal int) ([]Property, error) {
	rsd, err := s.RuleSourceData(ordinal)
	if err != nil {
		return nil, err
	}
	base := rsd.BodyRange.Start
	disabled := s.disabled[ordinal]
	seen := make(map[string]bool)
	props := make([]Property, 0, len(rsd.Properties)+len(disabled))
	di := 0
	emitDisabled := func(limit int) {
		for ; di < len(disabled) && disabled[di].Offset <= limit; di++ {
			d := disabled[di]
			seen[strings.ToLower(d.Name)] = true
			props = append(props, Property{
				Name:      d.Name,
				Value:     d.Value,
				Important: d.Important,
				ParsedOK:  true,
				Text:      d.RawText,
				Status:    protocol.StatusDisabled,
				Disabled:  true,
				offset:    d.Offset,
				end:       d.Offset,
				disabled:  di,
			})
		}
	}
	for _, sp := range rsd.Properties {
		rel := sp.Range.Start - base
		emitDisabled(rel)
		r := sp.Range
		seen[strings.ToLower(sp.Name)] = true
		props = append(props, Property{
			Name:      sp.Name,
			Value:     sp.Value,
			Important: sp.Important,
			ParsedOK:  sp.ParsedOK,
			Text:      s.text[r.Start:r.End],
			Status:    protocol.StatusActive,
			Range:     &r,
			HasSource: true,
			offset:    rel,
			end:       sp.Range.End - base,
			disabled:  -1,
		})
	}
	emitDisabled(math.MaxInt)
	if rule := s.Rule(ordinal); rule != nil && rule.Style() != nil {
		for _, p := range rule.Style().Properties() {
			if seen[strings.ToLower(p.Name)] {
				continue
			}
			seen[strings.ToLower(p.Name)] = true
			props = append(props, Property{
				Name:      p.Name,
				Value:     p.Value,
				Important: p.Important,
				ParsedOK:  true,
				Status:    protocol.StatusStyle,
				disabled:  -1,
			})
		}
	}
	// an active property is shadowed by a later well-formed one of the same name
	later := make(map[string]bool)
	for i := len(props) - 1; i >= 0; i-- {
		p := &props[i]
		if p.Status != protocol.StatusActive {
			continue
		}
		name := strings.ToLower(p.Name)
		if later[name] {
			p.Status = protocol.StatusInactive
		} else if p.ParsedOK {
			later[name] = true
		}
	}
	return props, nil
}

// --- Editing ---------------------------------------------------------------

// SetPropertyText inserts a property in front of the property at index, or
// replaces it if overwrite is set. Index len(properties) appends. An empty
// text with overwrite set removes the property. The old property text is
// returned.
func (s *Sheet) SetPropertyText(ordinal, index int, text string, overwrite bool) (string, error) {
	props, err := s.AllProperties(ordinal)
	if err != nil {
		return "", err
	}
	n := len(props)
	if index < 0 || index > n || (overwrite && index == n) {
		return "", protocol.Errorf(protocol.InvalidArgument, "property index %d out of range", index)
	}
	var normalized string
	var parsed []cssom.PropertySourceData
	if strings.TrimSpace(text) != "" {
		if normalized, parsed, err = s.checkPropertyText(text, true); err != nil {
			return "", err
		}
	}
	if overwrite && props[index].Disabled {
		return s.editDisabled(ordinal, props[index], normalized, parsed), nil
	}
	if overwrite && !props[index].HasSource {
		return "", protocol.Errorf(protocol.InvalidArgument, "property %q has no source text", props[index].Name)
	}
	rsd, err := s.RuleSourceData(ordinal)
	if err != nil {
		return "", err
	}
	body := s.text[rsd.BodyRange.Start:rsd.BodyRange.End]
	disabled := append([]DisabledProperty(nil), s.disabled[ordinal]...)
	var newBody, old string
	switch {
	case overwrite && normalized == "":
		target := props[index]
		old = target.Text
		newBody, disabled = removeProperty(body, target, disabled)
	case overwrite:
		target := props[index]
		old = target.Text
		newBody = body[:target.offset] + normalized + body[target.end:]
		delta := len(normalized) - (target.end - target.offset)
		for i := range disabled {
			if disabled[i].Offset >= target.end {
				disabled[i].Offset += delta
			}
		}
	case normalized == "":
		return "", nil // inserting nothing
	case index < n && (props[index].HasSource || props[index].Disabled):
		target := props[index]
		_, _, sep := s.format(body, props)
		chunk := normalized + sep
		pos := target.offset
		newBody = body[:pos] + chunk + body[pos:]
		for i := range disabled {
			d := &disabled[i]
			if d.Offset > pos || (target.Disabled && d.Offset == pos && i >= target.disabled) {
				d.Offset += len(chunk)
			}
		}
	default:
		newBody, disabled = s.appendProperty(body, normalized, props, disabled)
	}
	tracer().P("sheet", s.id).Debugf("stylesync: rule %d body %q → %q", ordinal, body, newBody)
	if err := s.applyStyle(ordinal, rsd, newBody, disabled); err != nil {
		return "", err
	}
	return old, nil
}

func (s *Sheet) appendProperty(body, text string, props []Property, disabled []DisabledProperty) (string, []DisabledProperty) {
	lf, indent, sep := s.format(body, props)
	end := len(strings.TrimRight(body, whitespace))
	pos := end
	for _, d := range disabled {
		if d.Offset > pos {
			pos = d.Offset
		}
	}
	var chunk string
	if end == 0 {
		chunk = lf + indent + text
		if !strings.Contains(body[pos:], "\n") {
			chunk += lf
		}
	} else {
		chunk = sep + text
		if pos == end && body[end-1] != ';' {
			chunk = ";" + chunk
		}
	}
	for i := range disabled {
		if disabled[i].Offset > pos {
			disabled[i].Offset += len(chunk)
		}
	}
	return body[:pos] + chunk + body[pos:], disabled
}

// removeProperty cuts a property out of a body, together with the
// whitespace following it or, for the last property, preceding it.
func removeProperty(body string, target Property, disabled []DisabledProperty) (string, []DisabledProperty) {
	from, to := target.offset, target.end
	rest := body[to:]
	trail := len(rest) - len(strings.TrimLeft(rest, whitespace))
	if trail < len(rest) {
		to += trail
	} else {
		from = len(strings.TrimRight(body[:from], whitespace))
	}
	for i := range disabled {
		d := &disabled[i]
		if d.Offset >= to {
			d.Offset -= to - from
		} else if d.Offset > from {
			d.Offset = from
		}
	}
	return body[:from] + body[to:], disabled
}

// editDisabled changes the text of a disabled property. The sheet text is
// not touched.
func (s *Sheet) editDisabled(ordinal int, target Property, text string, parsed []cssom.PropertySourceData) string {
	list := s.disabled[ordinal]
	old := list[target.disabled].RawText
	if text == "" {
		s.disabled[ordinal] = append(list[:target.disabled:target.disabled], list[target.disabled+1:]...)
		if len(s.disabled[ordinal]) == 0 {
			delete(s.disabled, ordinal)
		}
	} else {
		d := &list[target.disabled]
		d.RawText = text
		d.Name, d.Value, d.Important = parsed[0].Name, parsed[0].Value, parsed[0].Important
	}
	tracer().P("sheet", s.id).Debugf("stylesync: edited disabled property of rule %d", ordinal)
	s.changed()
	return old
}

// ToggleProperty disables or enables the property at index. Disabling
// removes exactly the property text, enabling puts it back where it has
// been. Toggling to the current state has no effect.
func (s *Sheet) ToggleProperty(ordinal, index int, disable bool) error {
	props, err := s.AllProperties(ordinal)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(props) {
		return protocol.Errorf(protocol.InvalidArgument, "property index %d out of range", index)
	}
	target := props[index]
	if target.Disabled == disable {
		return nil
	}
	if !target.HasSource && !target.Disabled {
		return protocol.Errorf(protocol.InvalidArgument, "property %q has no source text", target.Name)
	}
	rsd, err := s.RuleSourceData(ordinal)
	if err != nil {
		return err
	}
	body := s.text[rsd.BodyRange.Start:rsd.BodyRange.End]
	old := s.disabled[ordinal]
	var newBody string
	var disabled []DisabledProperty
	if disable {
		l := target.end - target.offset
		newBody = body[:target.offset] + body[target.end:]
		entry := DisabledProperty{
			Name:      target.Name,
			Value:     target.Value,
			Important: target.Important,
			RawText:   target.Text,
			Offset:    target.offset,
		}
		inserted := false
		for _, d := range old {
			if !inserted && d.Offset > target.offset {
				disabled = append(disabled, entry)
				inserted = true
			}
			if d.Offset >= target.end {
				d.Offset -= l
			}
			disabled = append(disabled, d)
		}
		if !inserted {
			disabled = append(disabled, entry)
		}
	} else {
		entry := old[target.disabled]
		pos, l := entry.Offset, len(entry.RawText)
		newBody = body[:pos] + entry.RawText + body[pos:]
		for i, d := range old {
			if i == target.disabled {
				continue
			}
			if d.Offset > pos || (d.Offset == pos && i > target.disabled) {
				d.Offset += l
			}
			disabled = append(disabled, d)
		}
	}
	tracer().P("sheet", s.id).Debugf("stylesync: toggled property %d of rule %d, disabled=%v", index, ordinal, disable)
	return s.applyStyle(ordinal, rsd, newBody, disabled)
}

// --- Formatting and checks -------------------------------------------------

// format samples line ending and indentation from the whitespace in front
// of the first property of a body. sep is what separates two properties.
func (s *Sheet) format(body string, props []Property) (lf, indent, sep string) {
	for _, p := range props {
		if !p.HasSource {
			continue
		}
		ws := body[len(strings.TrimRight(body[:p.offset], whitespace)):p.offset]
		i := strings.LastIndexByte(ws, '\n')
		if i < 0 {
			return "", "", " "
		}
		lf = "\n"
		if i > 0 && ws[i-1] == '\r' {
			lf = "\r\n"
		}
		indent = ws[i+1:]
		return lf, indent, lf + indent
	}
	return "\n", s.indent, "\n" + s.indent
}

const sentinel = "-inspector-sentinel"

// checkPropertyText checks that text is a sequence of properties which
// cannot escape from a declaration body. A sentinel property is appended;
// if a comment, string or brace in text swallows it, text is rejected.
// With strict set, every property must be well-formed. The text is
// returned with a terminating semicolon.
func (s *Sheet) checkPropertyText(text string, strict bool) (string, []cssom.PropertySourceData, error) {
	if s.parser == nil {
		return "", nil, cssom.ErrNoParser
	}
	normalized := strings.TrimSpace(text)
	if !strings.HasSuffix(normalized, ";") {
		normalized += ";"
	}
	props := s.parser.DeclarationSourceData(normalized + " " + sentinel + ": none")
	k := len(props) - 1
	if k < 0 || props[k].Name != sentinel || !props[k].ParsedOK {
		return "", nil, protocol.Errorf(protocol.Syntax, "property text %q is not closed", text)
	}
	if strict {
		if k == 0 {
			return "", nil, protocol.Errorf(protocol.Syntax, "no property in %q", text)
		}
		for _, p := range props[:k] {
			if !p.ParsedOK {
				return "", nil, protocol.Errorf(protocol.Syntax, "malformed property %q", p.Name)
			}
		}
	}
	return normalized, props[:k], nil
}
