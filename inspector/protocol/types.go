package protocol

// NodeID is a session-scoped handle for a live node. 0 means "no node".
type NodeID int

// Node is the wire representation of a DOM node.
type Node struct {
	NodeID          NodeID   `json:"nodeId"`
	NodeType        int      `json:"nodeType"`
	NodeName        string   `json:"nodeName"`
	LocalName       string   `json:"localName"`
	NodeValue       string   `json:"nodeValue"`
	ChildNodeCount  *int     `json:"childNodeCount,omitempty"`
	Children        []*Node  `json:"children,omitempty"`
	Attributes      []string `json:"attributes,omitempty"` // name, value, name, value, …
	DocumentURL     string   `json:"documentURL,omitempty"`
	ContentDocument *Node    `json:"contentDocument,omitempty"`
	ShadowRoots     []*Node  `json:"shadowRoots,omitempty"`
	PseudoElements  []*Node  `json:"pseudoElements,omitempty"`
	PseudoType      string   `json:"pseudoType,omitempty"`
}

// RemoteObject is a handle for a live object, given to the front end by
// resolveNode.
type RemoteObject struct {
	Type        string `json:"type"`
	Subtype     string `json:"subtype,omitempty"`
	ClassName   string `json:"className,omitempty"`
	Description string `json:"description,omitempty"`
	ObjectID    string `json:"objectId,omitempty"`
}

// --- CSS -------------------------------------------------------------------

// StyleSheetID identifies a style sheet within a session.
type StyleSheetID string

// CSSID is a compound id for a rule or style: a style sheet and the ordinal
// of a style rule within it.
type CSSID struct {
	StyleSheetID StyleSheetID `json:"styleSheetId"`
	Ordinal      int          `json:"ordinal"`
}

// SourceRange is a [start,end) byte range into style sheet text.
type SourceRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// CSSProperty is a property of a style, either live or disabled.
type CSSProperty struct {
	Name     string       `json:"name"`
	Value    string       `json:"value"`
	Priority string       `json:"priority,omitempty"`
	Text     string       `json:"text,omitempty"`
	ParsedOK bool         `json:"parsedOk"`
	Status   string       `json:"status"` // active, inactive, disabled or style
	Range    *SourceRange `json:"range,omitempty"`
}

// Property status values.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusDisabled = "disabled"
	StatusStyle    = "style" // present in the object model only
)

// CSSStyle is a declaration block.
type CSSStyle struct {
	StyleID       *CSSID        `json:"styleId,omitempty"`
	CSSProperties []CSSProperty `json:"cssProperties"`
	CSSText       string        `json:"cssText,omitempty"`
	Range         *SourceRange  `json:"range,omitempty"`
}

// CSSRule is a style rule.
type CSSRule struct {
	RuleID       *CSSID       `json:"ruleId,omitempty"`
	SelectorText string       `json:"selectorText"`
	Selectors    []string     `json:"selectors,omitempty"`
	SourceURL    string       `json:"sourceURL,omitempty"`
	Origin       string       `json:"origin"`
	Style        *CSSStyle    `json:"style"`
	Range        *SourceRange `json:"selectorRange,omitempty"`
	Media        []string     `json:"media,omitempty"`
}

// StyleSheetHeader describes a style sheet.
type StyleSheetHeader struct {
	StyleSheetID StyleSheetID `json:"styleSheetId"`
	Origin       string       `json:"origin"`
	SourceURL    string       `json:"sourceURL"`
	Title        string       `json:"title,omitempty"`
	OwnerNode    NodeID       `json:"ownerNode,omitempty"`
	IsInline     bool         `json:"isInline"`
}

// StyleSheetBody is the rule list of a style sheet.
type StyleSheetBody struct {
	StyleSheetID StyleSheetID `json:"styleSheetId"`
	Rules        []*CSSRule   `json:"rules"`
	Text         string       `json:"text,omitempty"`
}

// RuleMatch is a rule matching an element.
type RuleMatch struct {
	Rule              *CSSRule `json:"rule"`
	MatchingSelectors []int    `json:"matchingSelectors"`
}

// ComputedProperty is a property of the computed style of an element.
type ComputedProperty struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}
