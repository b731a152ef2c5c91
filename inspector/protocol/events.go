package protocol

// Event is a message pushed to a front end without having been asked for.
type Event struct {
	Method string      `json:"method"`
	Params interface{} `json:"params,omitempty"`
}

// Frontend receives events. Events are delivered in the order they occur.
type Frontend interface {
	Emit(Event)
}

// FrontendFunc adapts a function to interface Frontend.
type FrontendFunc func(Event)

// Emit is part of interface Frontend.
func (f FrontendFunc) Emit(ev Event) {
	f(ev)
}

// EventLog is a Frontend which collects events.
type EventLog struct {
	Events []Event
}

// Emit is part of interface Frontend.
func (log *EventLog) Emit(ev Event) {
	log.Events = append(log.Events, ev)
}

// Methods returns the method names of all collected events.
func (log *EventLog) Methods() []string {
	m := make([]string, len(log.Events))
	for i, ev := range log.Events {
		m[i] = ev.Method
	}
	return m
}

// Reset drops all collected events.
func (log *EventLog) Reset() {
	log.Events = nil
}

// Event methods.
const (
	EventDocumentUpdated        = "DOM.documentUpdated"
	EventSetChildNodes          = "DOM.setChildNodes"
	EventChildNodeInserted      = "DOM.childNodeInserted"
	EventChildNodeCountUpdated  = "DOM.childNodeCountUpdated"
	EventChildNodeRemoved       = "DOM.childNodeRemoved"
	EventAttributeModified      = "DOM.attributeModified"
	EventAttributeRemoved       = "DOM.attributeRemoved"
	EventCharacterDataModified  = "DOM.characterDataModified"
	EventInlineStyleInvalidated = "DOM.inlineStyleInvalidated"
	EventShadowRootPushed       = "DOM.shadowRootPushed"
	EventShadowRootPopped       = "DOM.shadowRootPopped"
	EventPseudoElementAdded     = "DOM.pseudoElementAdded"
	EventPseudoElementRemoved   = "DOM.pseudoElementRemoved"
	EventStyleSheetChanged      = "CSS.styleSheetChanged"
	EventStyleSheetAdded        = "CSS.styleSheetAdded"
	EventStyleSheetRemoved      = "CSS.styleSheetRemoved"
	EventPaused                 = "Debugger.paused"
)

type SetChildNodesParams struct {
	ParentID NodeID  `json:"parentId"`
	Nodes    []*Node `json:"nodes"`
}

type ChildNodeInsertedParams struct {
	ParentNodeID   NodeID `json:"parentNodeId"`
	PreviousNodeID NodeID `json:"previousNodeId"`
	Node           *Node  `json:"node"`
}

type ChildNodeCountUpdatedParams struct {
	NodeID         NodeID `json:"nodeId"`
	ChildNodeCount int    `json:"childNodeCount"`
}

type ChildNodeRemovedParams struct {
	ParentNodeID NodeID `json:"parentNodeId"`
	NodeID       NodeID `json:"nodeId"`
}

type AttributeModifiedParams struct {
	NodeID NodeID `json:"nodeId"`
	Name   string `json:"name"`
	Value  string `json:"value"`
}

type AttributeRemovedParams struct {
	NodeID NodeID `json:"nodeId"`
	Name   string `json:"name"`
}

type CharacterDataModifiedParams struct {
	NodeID        NodeID `json:"nodeId"`
	CharacterData string `json:"characterData"`
}

type InlineStyleInvalidatedParams struct {
	NodeIDs []NodeID `json:"nodeIds"`
}

type ShadowRootPushedParams struct {
	HostID NodeID `json:"hostId"`
	Root   *Node  `json:"root"`
}

type ShadowRootPoppedParams struct {
	HostID NodeID `json:"hostId"`
	RootID NodeID `json:"rootId"`
}

type PseudoElementAddedParams struct {
	ParentID      NodeID `json:"parentId"`
	PseudoElement *Node  `json:"pseudoElement"`
}

type PseudoElementRemovedParams struct {
	ParentID        NodeID `json:"parentId"`
	PseudoElementID NodeID `json:"pseudoElementId"`
}

type StyleSheetChangedParams struct {
	StyleSheetID StyleSheetID `json:"styleSheetId"`
}

type StyleSheetAddedParams struct {
	Header StyleSheetHeader `json:"header"`
}

type StyleSheetRemovedParams struct {
	StyleSheetID StyleSheetID `json:"styleSheetId"`
}

// PausedParams tells a front end why the page would stop.
type PausedParams struct {
	Reason string                 `json:"reason"`
	Data   map[string]interface{} `json:"data,omitempty"`
}
