package style

import (
	"fmt"
	"strings"
)

// Property is a raw value for a CSS property. For example, with
//
//	color: black
//
// a property value of "black" is set.
type Property string

// NullStyle is an empty property value.
const NullStyle Property = ""

func (p Property) String() string {
	return string(p)
}

// IsInitial denotes if a property is of inheritance-type "initial".
func (p Property) IsInitial() bool {
	return p == "initial"
}

// IsInherit denotes if a property is of inheritance-type "inherit".
func (p Property) IsInherit() bool {
	return p == "inherit"
}

// IsEmpty checks whether a property is empty, i.e. the null-string.
func (p Property) IsEmpty() bool {
	return p == ""
}

// KeyValue is a container for a style property.
type KeyValue struct {
	Key   string
	Value Property
}

// Declaration is a property declared for an element, in cascade order.
type Declaration struct {
	KeyValue
	Important bool
}

// Inherited returns whether a property not set on an element takes its
// value from the element's parent.
func Inherited(key string) bool {
	if strings.HasPrefix(key, "list-style") || strings.HasPrefix(key, "font") {
		return true
	}
	switch key {
	case "color", "cursor", "direction", "letter-spacing", "line-height",
		"quotes", "text-align", "text-indent", "text-transform", "visibility",
		"white-space", "word-break", "word-spacing", "word-wrap":
		return true
	}
	return false
}

var (
	fourSides   = [4]string{"top", "right", "bottom", "left"}
	fourCorners = [4]string{"top-left", "top-right", "bottom-right", "bottom-left"}
)

// shorthands maps a shorthand to prefix, suffix and the box parts it spans.
var shorthands = map[string]struct {
	pre, suf string
	parts    *[4]string
}{
	"margin":        {"margin", "", &fourSides},
	"padding":       {"padding", "", &fourSides},
	"border-color":  {"border", "color", &fourSides},
	"border-width":  {"border", "width", &fourSides},
	"border-style":  {"border", "style", &fourSides},
	"border-radius": {"border", "radius", &fourCorners},
}

// IsShorthand is a predicate for properties Expand knows how to split.
func IsShorthand(key string) bool {
	_, ok := shorthands[key]
	return ok
}

// Expand splits up a shorthand property into its longhand components.
// Example:
//
//	Expand("padding", "3px 5px")
//
// will return
//
//	padding-top    => 3px
//	padding-right  => 5px
//	padding-bottom => 3px
//	padding-left   => 5px
//
// Properties which are not shorthands are returned unchanged. Global
// keywords like "inherit" are distributed to every component.
func Expand(key string, value Property) ([]KeyValue, error) {
	sh, ok := shorthands[key]
	if !ok {
		return []KeyValue{{key, value}}, nil
	}
	fields := strings.Fields(value.String())
	var pick [4]int
	switch len(fields) {
	case 1:
		pick = [4]int{0, 0, 0, 0}
	case 2:
		pick = [4]int{0, 1, 0, 1}
	case 3:
		pick = [4]int{0, 1, 2, 1}
	case 4:
		pick = [4]int{0, 1, 2, 3}
	default:
		return nil, fmt.Errorf("expecting 1-4 values for %s, have %d", key, len(fields))
	}
	r := make([]KeyValue, 4)
	for i, part := range sh.parts {
		r[i] = KeyValue{longhand(sh.pre, sh.suf, part), Property(fields[pick[i]])}
	}
	return r, nil
}

func longhand(prefix, suffix, part string) string {
	if suffix == "" {
		return prefix + "-" + part
	}
	return prefix + "-" + part + "-" + suffix
}
