package cssom

import "fmt"

// SourceRange is a [Start,End) byte offset pair into a style text.
type SourceRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of bytes covered by a range.
func (r SourceRange) Len() int {
	return r.End - r.Start
}

// Contains is true if offset pos is inside [Start,End).
func (r SourceRange) Contains(pos int) bool {
	return pos >= r.Start && pos < r.End
}

// Shift moves a range by delta bytes.
func (r SourceRange) Shift(delta int) SourceRange {
	return SourceRange{r.Start + delta, r.End + delta}
}

func (r SourceRange) String() string {
	return fmt.Sprintf("[%d,%d)", r.Start, r.End)
}

// PropertySourceData describes a single property as written in source text.
// Range covers the complete property text, including a terminating semicolon
// if present.
type PropertySourceData struct {
	Name      string
	Value     string
	Important bool
	ParsedOK  bool // name, colon and value are present and well-formed
	Range     SourceRange
}

// RuleSourceData describes the source text of a style rule. HeaderRange spans
// the selector text, BodyRange the text between the braces.
type RuleSourceData struct {
	HeaderRange SourceRange
	BodyRange   SourceRange
	Properties  []PropertySourceData
}

// SourceDataList holds source data for the style rules of a sheet, in the
// order of (*StyleSheet).FlatRules.
type SourceDataList []*RuleSourceData
