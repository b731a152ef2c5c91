package douceuradapter

import (
	"strings"
	"unicode/utf8"

	"github.com/gorilla/css/scanner"
	"github.com/npillmayer/webinspect/dom/style/cssom"
)

// token is a scanner token together with its byte range in the source text.
type token struct {
	*scanner.Token
	start, end int
}

// sourceParser maps CSS source text to rule and property ranges. It follows
// CSS error recovery closely enough to stay in sync with douceur: rules are
// delimited by balanced braces, properties by semicolons at nesting depth 0,
// and an unclosed string or comment swallows the rest of the input.
type sourceParser struct {
	text  string
	toks  []token
	pos   int
	rules cssom.SourceDataList
}

func newSourceParser(text string) *sourceParser {
	return &sourceParser{text: text, toks: tokenize(text)}
}

// tokenize runs the gorilla scanner and records byte offsets. The scanner
// normalizes CRLF line ends, so we hand it a copy of the text where CR is
// replaced by a space, which keeps offsets aligned.
func tokenize(text string) []token {
	scanned := strings.ReplaceAll(text, "\r\n", " \n")
	s := scanner.New(scanned)
	var toks []token
	offset := 0
	for offset < len(text) {
		t := s.Next()
		if t.Type == scanner.TokenEOF {
			break
		}
		if t.Type == scanner.TokenError {
			toks = append(toks, token{t, offset, len(text)})
			break
		}
		n := len(t.Value)
		if !strings.HasPrefix(scanned[offset:], t.Value) {
			_, n = utf8.DecodeRuneInString(scanned[offset:])
		}
		if n == 0 {
			n = 1
		}
		toks = append(toks, token{t, offset, offset + n})
		offset += n
	}
	return toks
}

func (sp *sourceParser) peek() *token {
	if sp.pos >= len(sp.toks) {
		return nil
	}
	return &sp.toks[sp.pos]
}

func (sp *sourceParser) skipTrivia() {
	for sp.pos < len(sp.toks) {
		switch sp.toks[sp.pos].Type {
		case scanner.TokenS, scanner.TokenComment, scanner.TokenCDO, scanner.TokenCDC, scanner.TokenBOM:
			sp.pos++
		default:
			return
		}
	}
}

func isChar(t *token, c string) bool {
	return t != nil && t.Type == scanner.TokenChar && t.Value == c
}

func isTrivia(t *token) bool {
	return t.Type == scanner.TokenS || t.Type == scanner.TokenComment
}

func opens(t *token) bool {
	return t.Type == scanner.TokenFunction || isChar(t, "(") || isChar(t, "[") || isChar(t, "{")
}

func closes(t *token) bool {
	return isChar(t, ")") || isChar(t, "]") || isChar(t, "}")
}

// --- Rules -----------------------------------------------------------------

func (sp *sourceParser) parseRules(nested bool) {
	for {
		sp.skipTrivia()
		t := sp.peek()
		if t == nil {
			return
		}
		switch {
		case isChar(t, "}"):
			if nested {
				return
			}
			sp.pos++ // stray closing brace at top level
		case t.Type == scanner.TokenError:
			sp.pos = len(sp.toks)
			return
		case t.Type == scanner.TokenAtKeyword:
			sp.parseAtRule()
		default:
			sp.parseStyleRule()
		}
	}
}

func (sp *sourceParser) parseAtRule() {
	name := strings.ToLower(strings.TrimPrefix(sp.toks[sp.pos].Value, "@"))
	sp.pos++
	sp.scanPrelude(true)
	t := sp.peek()
	if t == nil || isChar(t, "}") {
		return
	}
	sp.pos++
	if isChar(t, ";") {
		return
	}
	if cssom.IsGroupingName(name) {
		sp.parseRules(true)
		if sp.peek() != nil {
			sp.pos++ // closing brace of group
		}
		return
	}
	sp.skipBlock()
}

func (sp *sourceParser) parseStyleRule() {
	header := sp.scanPrelude(false)
	t := sp.peek()
	if t == nil || !isChar(t, "{") {
		return // prelude without a block is dropped
	}
	body := cssom.SourceRange{Start: t.end, End: len(sp.text)}
	sp.pos++
	props := sp.parseDeclarations()
	if t := sp.peek(); t != nil && isChar(t, "}") {
		body.End = t.start
		sp.pos++
	}
	sp.rules = append(sp.rules, &cssom.RuleSourceData{
		HeaderRange: header,
		BodyRange:   body,
		Properties:  props,
	})
}

// scanPrelude advances to the next '{' (or ';', if semicolon is set) at
// nesting level 0, without consuming it. It returns the range of the
// prelude, with surrounding whitespace and comments trimmed.
func (sp *sourceParser) scanPrelude(semicolon bool) cssom.SourceRange {
	start, end := -1, -1
	depth := 0
	for sp.pos < len(sp.toks) {
		t := &sp.toks[sp.pos]
		if t.Type == scanner.TokenError {
			sp.pos = len(sp.toks)
			break
		}
		if depth == 0 && (isChar(t, "{") || isChar(t, "}") || (semicolon && isChar(t, ";"))) {
			break
		}
		if opens(t) {
			depth++
		} else if closes(t) && depth > 0 {
			depth--
		}
		if !isTrivia(t) {
			if start < 0 {
				start = t.start
			}
			end = t.end
		}
		sp.pos++
	}
	if start < 0 {
		start = len(sp.text)
		if t := sp.peek(); t != nil {
			start = t.start
		}
		end = start
	}
	return cssom.SourceRange{Start: start, End: end}
}

// skipBlock consumes tokens up to and including the brace closing the current block.
func (sp *sourceParser) skipBlock() {
	depth := 1
	for sp.pos < len(sp.toks) {
		t := &sp.toks[sp.pos]
		sp.pos++
		if opens(t) {
			depth++
		} else if closes(t) {
			depth--
			if depth == 0 {
				return
			}
		}
	}
}

// --- Declarations ----------------------------------------------------------

// parseDeclarations reads properties up to an unbalanced '}' (not consumed)
// or the end of input.
func (sp *sourceParser) parseDeclarations() []cssom.PropertySourceData {
	var props []cssom.PropertySourceData
	for {
		sp.skipTrivia()
		t := sp.peek()
		switch {
		case t == nil, isChar(t, "}"):
			return props
		case isChar(t, ";"):
			sp.pos++
		case t.Type == scanner.TokenError:
			sp.pos = len(sp.toks)
			return props
		default:
			props = append(props, sp.parseProperty())
		}
	}
}

func (sp *sourceParser) parseProperty() cssom.PropertySourceData {
	start := sp.toks[sp.pos].start
	end := start
	name := cssom.SourceRange{Start: -1, End: -1}
	value := cssom.SourceRange{Start: -1, End: -1}
	colon, swallowed := false, false
	depth := 0
loop:
	for sp.pos < len(sp.toks) {
		t := &sp.toks[sp.pos]
		if t.Type == scanner.TokenError {
			swallowed = true
			end = len(sp.text)
			if colon {
				if value.Start < 0 {
					value.Start = t.start
				}
				value.End = end
			}
			sp.pos = len(sp.toks)
			break
		}
		if depth == 0 {
			switch {
			case isChar(t, ";"):
				end = t.end
				sp.pos++
				break loop
			case isChar(t, "}"):
				break loop
			case !colon && isChar(t, ":"):
				colon = true
				end = t.end
				sp.pos++
				continue
			}
		}
		if opens(t) {
			depth++
		} else if closes(t) && depth > 0 {
			depth--
		}
		if !isTrivia(t) {
			r := &name
			if colon {
				r = &value
			}
			if r.Start < 0 {
				r.Start = t.start
			}
			r.End = t.end
			end = t.end
		}
		sp.pos++
	}
	prop := cssom.PropertySourceData{Range: cssom.SourceRange{Start: start, End: end}}
	if name.Start >= 0 {
		prop.Name = sp.text[name.Start:name.End]
	}
	if value.Start >= 0 {
		prop.Value, prop.Important = splitImportant(sp.text[value.Start:value.End])
	}
	prop.ParsedOK = colon && !swallowed && isIdentifier(prop.Name) && prop.Value != ""
	return prop
}

// splitImportant strips a trailing "!important" from a property value.
func splitImportant(v string) (string, bool) {
	v = strings.TrimSpace(v)
	bang := strings.LastIndexByte(v, '!')
	if bang < 0 {
		return v, false
	}
	if strings.EqualFold(strings.TrimSpace(v[bang+1:]), "important") {
		return strings.TrimSpace(v[:bang]), true
	}
	return v, false
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '-' || r == '_' || r >= 0x80:
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
