package session

import (
	"context"

	"github.com/npillmayer/webinspect/inspector/protocol"
)

// Parameters of commands.

type nodeParams struct {
	NodeID protocol.NodeID `json:"nodeId"`
	Depth  int             `json:"depth"`
}

type attributeParams struct {
	NodeID protocol.NodeID `json:"nodeId"`
	Name   string          `json:"name"`
	Value  string          `json:"value"`
	Text   string          `json:"text"`
}

type outerHTMLParams struct {
	NodeID    protocol.NodeID `json:"nodeId"`
	OuterHTML string          `json:"outerHTML"`
}

type selectorParams struct {
	NodeID   protocol.NodeID `json:"nodeId"`
	Selector string          `json:"selector"`
}

type objectParams struct {
	NodeID      protocol.NodeID `json:"nodeId"`
	ObjectID    string          `json:"objectId"`
	ObjectGroup string          `json:"objectGroup"`
}

type searchParams struct {
	Query     string `json:"query"`
	SearchID  string `json:"searchId"`
	FromIndex int    `json:"fromIndex"`
	ToIndex   int    `json:"toIndex"`
}

type styleSheetParams struct {
	StyleSheetID protocol.StyleSheetID `json:"styleSheetId"`
	Text         string                `json:"text"`
}

type styleParams struct {
	StyleID       protocol.CSSID `json:"styleId"`
	PropertyIndex int            `json:"propertyIndex"`
	Text          string         `json:"text"`
	Overwrite     bool           `json:"overwrite"`
	Disable       bool           `json:"disable"`
}

type ruleParams struct {
	RuleID        protocol.CSSID  `json:"ruleId"`
	ContextNodeID protocol.NodeID `json:"contextNodeId"`
	Selector      string          `json:"selector"`
}

type breakpointParams struct {
	NodeID    protocol.NodeID `json:"nodeId"`
	Type      string          `json:"type"`
	EventName string          `json:"eventName"`
	URL       string          `json:"url"`
	IsRegex   bool            `json:"isRegex"`
}

// exec adapts a command without result.
func exec[P any](f func(P) error) protocol.Handler {
	return protocol.Typed(func(_ context.Context, p P) (protocol.Empty, error) {
		return protocol.Empty{}, f(p)
	})
}

// query adapts a command with a result.
func query[P any, R any](f func(P) (R, error)) protocol.Handler {
	return protocol.Typed(func(_ context.Context, p P) (R, error) {
		return f(p)
	})
}

type none struct{}

func (s *Session) registerHandlers() {
	s.registerDOM()
	s.registerCSS()
	s.registerDOMDebugger()
}

func (s *Session) registerDOM() {
	t, a := s.handlers, s.dom
	t.Register("DOM.getDocument", query(func(none) (interface{}, error) {
		root, err := a.GetDocument()
		return map[string]interface{}{"root": root}, err
	}))
	t.Register("DOM.requestChildNodes", exec(func(p nodeParams) error {
		return a.RequestChildNodes(p.NodeID, p.Depth)
	}))
	t.Register("DOM.setAttributeValue", exec(func(p attributeParams) error {
		return a.SetAttributeValue(p.NodeID, p.Name, p.Value)
	}))
	t.Register("DOM.setAttributesAsText", exec(func(p attributeParams) error {
		return a.SetAttributesAsText(p.NodeID, p.Text, p.Name)
	}))
	t.Register("DOM.removeAttribute", exec(func(p attributeParams) error {
		return a.RemoveAttribute(p.NodeID, p.Name)
	}))
	t.Register("DOM.setNodeValue", exec(func(p attributeParams) error {
		return a.SetNodeValue(p.NodeID, p.Value)
	}))
	t.Register("DOM.removeNode", exec(func(p nodeParams) error {
		return a.RemoveNode(p.NodeID)
	}))
	t.Register("DOM.setOuterHTML", query(func(p outerHTMLParams) (interface{}, error) {
		id, err := a.SetOuterHTML(p.NodeID, p.OuterHTML)
		return map[string]interface{}{"nodeId": id}, err
	}))
	t.Register("DOM.getOuterHTML", query(func(p nodeParams) (interface{}, error) {
		html, err := a.GetOuterHTML(p.NodeID)
		return map[string]interface{}{"outerHTML": html}, err
	}))
	t.Register("DOM.querySelector", query(func(p selectorParams) (interface{}, error) {
		id, err := a.QuerySelector(p.NodeID, p.Selector)
		return map[string]interface{}{"nodeId": id}, err
	}))
	t.Register("DOM.querySelectorAll", query(func(p selectorParams) (interface{}, error) {
		ids, err := a.QuerySelectorAll(p.NodeID, p.Selector)
		return map[string]interface{}{"nodeIds": ids}, err
	}))
	t.Register("DOM.resolveNode", query(func(p objectParams) (interface{}, error) {
		obj, err := a.ResolveNode(p.NodeID, p.ObjectGroup)
		return map[string]interface{}{"object": obj}, err
	}))
	t.Register("DOM.requestNode", query(func(p objectParams) (interface{}, error) {
		id, err := a.RequestNode(p.ObjectID)
		return map[string]interface{}{"nodeId": id}, err
	}))
	t.Register("DOM.releaseObjectGroup", exec(func(p objectParams) error {
		a.ReleaseObjectGroup(p.ObjectGroup)
		return nil
	}))
	t.Register("DOM.performSearch", query(func(p searchParams) (interface{}, error) {
		id, count := a.PerformSearch(p.Query)
		return map[string]interface{}{"searchId": id, "resultCount": count}, nil
	}))
	t.Register("DOM.getSearchResults", query(func(p searchParams) (interface{}, error) {
		ids, err := a.GetSearchResults(p.SearchID, p.FromIndex, p.ToIndex)
		return map[string]interface{}{"nodeIds": ids}, err
	}))
	t.Register("DOM.discardSearchResults", exec(func(p searchParams) error {
		a.DiscardSearchResults(p.SearchID)
		return nil
	}))
	t.Register("DOM.undo", exec(func(none) error { return a.Undo() }))
	t.Register("DOM.redo", exec(func(none) error { return a.Redo() }))
	t.Register("DOM.markUndoableState", exec(func(none) error {
		a.MarkUndoableState()
		return nil
	}))
}

func (s *Session) registerCSS() {
	t, a := s.handlers, s.css
	t.Register("CSS.enable", exec(func(none) error {
		a.Enable()
		return nil
	}))
	t.Register("CSS.disable", exec(func(none) error {
		a.Disable()
		return nil
	}))
	t.Register("CSS.getAllStyleSheets", query(func(none) (interface{}, error) {
		return map[string]interface{}{"headers": a.GetAllStyleSheets()}, nil
	}))
	t.Register("CSS.getStyleSheet", query(func(p styleSheetParams) (interface{}, error) {
		body, err := a.GetStyleSheet(p.StyleSheetID)
		return map[string]interface{}{"styleSheet": body}, err
	}))
	t.Register("CSS.getStyleSheetText", query(func(p styleSheetParams) (interface{}, error) {
		text, err := a.GetStyleSheetText(p.StyleSheetID)
		return map[string]interface{}{"text": text}, err
	}))
	t.Register("CSS.setStyleSheetText", exec(func(p styleSheetParams) error {
		return a.SetStyleSheetText(p.StyleSheetID, p.Text)
	}))
	t.Register("CSS.setStyleText", query(func(p styleParams) (interface{}, error) {
		style, err := a.SetStyleText(p.StyleID, p.Text)
		return map[string]interface{}{"style": style}, err
	}))
	t.Register("CSS.setPropertyText", query(func(p styleParams) (interface{}, error) {
		style, err := a.SetPropertyText(p.StyleID, p.PropertyIndex, p.Text, p.Overwrite)
		return map[string]interface{}{"style": style}, err
	}))
	t.Register("CSS.toggleProperty", query(func(p styleParams) (interface{}, error) {
		style, err := a.ToggleProperty(p.StyleID, p.PropertyIndex, p.Disable)
		return map[string]interface{}{"style": style}, err
	}))
	t.Register("CSS.setRuleSelector", query(func(p ruleParams) (interface{}, error) {
		rule, err := a.SetRuleSelector(p.RuleID, p.Selector)
		return map[string]interface{}{"rule": rule}, err
	}))
	t.Register("CSS.addRule", query(func(p ruleParams) (interface{}, error) {
		rule, err := a.AddRule(p.ContextNodeID, p.Selector)
		return map[string]interface{}{"rule": rule}, err
	}))
	t.Register("CSS.deleteRule", exec(func(p ruleParams) error {
		return a.DeleteRule(p.RuleID)
	}))
	t.Register("CSS.getInlineStylesForNode", query(func(p nodeParams) (interface{}, error) {
		style, err := a.GetInlineStylesForNode(p.NodeID)
		return map[string]interface{}{"inlineStyle": style}, err
	}))
	t.Register("CSS.getMatchedStylesForNode", query(func(p nodeParams) (interface{}, error) {
		matches, err := a.GetMatchedStylesForNode(p.NodeID)
		return map[string]interface{}{"matchedCSSRules": matches}, err
	}))
	t.Register("CSS.getComputedStyleForNode", query(func(p nodeParams) (interface{}, error) {
		props, err := a.GetComputedStyleForNode(p.NodeID)
		return map[string]interface{}{"computedStyle": props}, err
	}))
}

func (s *Session) registerDOMDebugger() {
	t, a := s.handlers, s.debugger
	t.Register("DOMDebugger.setDOMBreakpoint", exec(func(p breakpointParams) error {
		return a.SetDOMBreakpoint(p.NodeID, p.Type)
	}))
	t.Register("DOMDebugger.removeDOMBreakpoint", exec(func(p breakpointParams) error {
		return a.RemoveDOMBreakpoint(p.NodeID, p.Type)
	}))
	t.Register("DOMDebugger.setEventListenerBreakpoint", exec(func(p breakpointParams) error {
		return a.SetEventListenerBreakpoint(p.EventName)
	}))
	t.Register("DOMDebugger.removeEventListenerBreakpoint", exec(func(p breakpointParams) error {
		return a.RemoveEventListenerBreakpoint(p.EventName)
	}))
	t.Register("DOMDebugger.setInstrumentationBreakpoint", exec(func(p breakpointParams) error {
		return a.SetInstrumentationBreakpoint(p.EventName)
	}))
	t.Register("DOMDebugger.removeInstrumentationBreakpoint", exec(func(p breakpointParams) error {
		return a.RemoveInstrumentationBreakpoint(p.EventName)
	}))
	t.Register("DOMDebugger.setXHRBreakpoint", exec(func(p breakpointParams) error {
		return a.SetXHRBreakpoint(p.URL, p.IsRegex)
	}))
	t.Register("DOMDebugger.removeXHRBreakpoint", exec(func(p breakpointParams) error {
		return a.RemoveXHRBreakpoint(p.URL)
	}))
}
