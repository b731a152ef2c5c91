package cssagent

import (
	"errors"
	"sort"

	"github.com/andybalholm/cascadia"
	"github.com/npillmayer/webinspect/inspector/protocol"
	"golang.org/x/net/html"
)

// Enable binds the style sheets of the page and announces them to the
// front end. Sheets attached later are announced as they appear.
func (a *Agent) Enable() {
	if a.enabled {
		return
	}
	a.enabled = true
	for _, live := range a.page.StyleSheets() {
		e := a.bind(live)
		a.frontend.Emit(protocol.Event{
			Method: protocol.EventStyleSheetAdded,
			Params: protocol.StyleSheetAddedParams{Header: a.header(e)},
		})
	}
	tracer().Infof("cssagent: enabled with %d style sheets", len(a.byLive))
}

// Disable stops announcing style sheets.
func (a *Agent) Disable() {
	a.enabled = false
}

// GetAllStyleSheets returns the headers of all style sheets of the page.
func (a *Agent) GetAllStyleSheets() []protocol.StyleSheetHeader {
	sheets := a.page.StyleSheets()
	headers := make([]protocol.StyleSheetHeader, 0, len(sheets))
	for _, live := range sheets {
		headers = append(headers, a.header(a.bind(live)))
	}
	return headers
}

// GetStyleSheet returns the style rules of a sheet.
func (a *Agent) GetStyleSheet(id protocol.StyleSheetID) (*protocol.StyleSheetBody, error) {
	e, err := a.entryFor(id)
	if err != nil {
		return nil, err
	}
	text, err := e.sheet.Text()
	if err != nil {
		return nil, err
	}
	body := &protocol.StyleSheetBody{StyleSheetID: id, Text: text, Rules: []*protocol.CSSRule{}}
	for i := 0; i < e.sheet.RuleCount(); i++ {
		rule, err := a.buildRule(e, i)
		if err != nil {
			return nil, err
		}
		body.Rules = append(body.Rules, rule)
	}
	return body, nil
}

// GetStyleSheetText returns the text of a sheet.
func (a *Agent) GetStyleSheetText(id protocol.StyleSheetID) (string, error) {
	e, err := a.entryFor(id)
	if err != nil {
		return "", err
	}
	return e.sheet.Text()
}

func (a *Agent) perform(act *styleAction) error {
	act.agent = a
	if err := a.history.Perform(act); err != nil {
		var perr *protocol.Error
		if !errors.As(err, &perr) {
			tracer().Errorf("cssagent: %s failed: %v", act.Name(), err)
			return protocol.Errorf(protocol.Internal, "%v", err)
		}
		return err
	}
	tracer().P("sheet", act.entry.id).Debugf("cssagent: performed %s", act.Name())
	return nil
}

func (a *Agent) styleEntry(id protocol.CSSID) (*entry, error) {
	e, err := a.entryFor(id.StyleSheetID)
	if err != nil {
		return nil, err
	}
	if id.Ordinal < 0 || id.Ordinal >= e.sheet.RuleCount() {
		return nil, protocol.Errorf(protocol.NotFound, "style sheet %q has no rule %d", id.StyleSheetID, id.Ordinal)
	}
	return e, nil
}

// SetStyleSheetText replaces the text of a sheet.
func (a *Agent) SetStyleSheetText(id protocol.StyleSheetID, text string) error {
	e, err := a.entryFor(id)
	if err != nil {
		return err
	}
	if e.element != nil {
		return protocol.Errorf(protocol.NotModifiable, "style sheet %q is an inline style", id)
	}
	return a.perform(&styleAction{kind: setStyleSheetTextAction, entry: e, text: text})
}

// SetStyleText replaces the declarations of a style.
func (a *Agent) SetStyleText(styleID protocol.CSSID, text string) (*protocol.CSSStyle, error) {
	e, err := a.styleEntry(styleID)
	if err != nil {
		return nil, err
	}
	act := &styleAction{kind: setStyleTextAction, entry: e, ordinal: styleID.Ordinal, text: text}
	if err := a.perform(act); err != nil {
		return nil, err
	}
	return a.buildStyle(e, styleID.Ordinal)
}

// SetPropertyText replaces property index of a style by text, or inserts
// text in front of it if overwrite is false. An index one past the last
// property appends.
func (a *Agent) SetPropertyText(styleID protocol.CSSID, index int, text string, overwrite bool) (*protocol.CSSStyle, error) {
	e, err := a.styleEntry(styleID)
	if err != nil {
		return nil, err
	}
	act := &styleAction{kind: setPropertyTextAction, entry: e, ordinal: styleID.Ordinal,
		index: index, text: text, overwrite: overwrite}
	if err := a.perform(act); err != nil {
		return nil, err
	}
	return a.buildStyle(e, styleID.Ordinal)
}

// ToggleProperty disables or enables property index of a style.
func (a *Agent) ToggleProperty(styleID protocol.CSSID, index int, disable bool) (*protocol.CSSStyle, error) {
	e, err := a.styleEntry(styleID)
	if err != nil {
		return nil, err
	}
	act := &styleAction{kind: togglePropertyAction, entry: e, ordinal: styleID.Ordinal,
		index: index, disable: disable}
	if err := a.perform(act); err != nil {
		return nil, err
	}
	return a.buildStyle(e, styleID.Ordinal)
}

// SetRuleSelector changes the selector of a rule.
func (a *Agent) SetRuleSelector(ruleID protocol.CSSID, selector string) (*protocol.CSSRule, error) {
	e, err := a.styleEntry(ruleID)
	if err != nil {
		return nil, err
	}
	act := &styleAction{kind: setRuleSelectorAction, entry: e, ordinal: ruleID.Ordinal, text: selector}
	if err := a.perform(act); err != nil {
		return nil, err
	}
	return a.buildRule(e, ruleID.Ordinal)
}

// AddRule appends an empty rule to the inspector style sheet of the
// document a node belongs to. The inspector sheet is created on first use.
func (a *Agent) AddRule(contextNodeID protocol.NodeID, selector string) (*protocol.CSSRule, error) {
	node, err := a.nodes.NodeForID(contextNodeID)
	if err != nil {
		return nil, err
	}
	e, err := a.inspectorSheet(node)
	if err != nil {
		return nil, err
	}
	act := &styleAction{kind: addRuleAction, entry: e, text: selector}
	if err := a.perform(act); err != nil {
		return nil, err
	}
	return a.buildRule(e, act.result)
}

func (a *Agent) inspectorSheet(node *html.Node) (*entry, error) {
	doc := a.page.OwnerDocument(node)
	if doc == nil {
		return nil, protocol.Errorf(protocol.InvalidArgument, "node is not part of a document")
	}
	if e, ok := a.inspector[doc]; ok {
		return e, nil
	}
	live, err := a.page.CreateInspectorStyleSheet(doc)
	if err != nil {
		return nil, protocol.Errorf(protocol.NotModifiable, "cannot create inspector style sheet: %v", err)
	}
	e := a.bind(live)
	a.inspector[doc] = e
	return e, nil
}

// DeleteRule removes a rule from its sheet.
func (a *Agent) DeleteRule(ruleID protocol.CSSID) error {
	e, err := a.styleEntry(ruleID)
	if err != nil {
		return err
	}
	return a.perform(&styleAction{kind: deleteRuleAction, entry: e, ordinal: ruleID.Ordinal})
}

// GetInlineStylesForNode returns the inline style of an element.
func (a *Agent) GetInlineStylesForNode(id protocol.NodeID) (*protocol.CSSStyle, error) {
	el, err := a.element(id)
	if err != nil {
		return nil, err
	}
	return a.buildStyle(a.bindInline(el), 0)
}

func (a *Agent) element(id protocol.NodeID) (*html.Node, error) {
	n, err := a.nodes.NodeForID(id)
	if err != nil {
		return nil, err
	}
	if n.Type != html.ElementNode {
		return nil, protocol.Errorf(protocol.InvalidArgument, "node %d is not an element", id)
	}
	return n, nil
}

type match struct {
	entry       *entry
	ordinal     int
	selectors   []int
	specificity cascadia.Specificity
}

// matchRules finds the rules of all style sheets matching an element, in
// ascending order of specificity. Rules of equal specificity keep the order
// of their sheets.
func (a *Agent) matchRules(el *html.Node) []match {
	var matches []match
	for _, live := range a.page.StyleSheets() {
		e := a.bind(live)
		for i := 0; i < e.sheet.RuleCount(); i++ {
			group, err := cascadia.ParseGroup(e.sheet.Rule(i).Selector())
			if err != nil {
				continue
			}
			m := match{entry: e, ordinal: i}
			for j, sel := range group {
				if !sel.Match(el) {
					continue
				}
				m.selectors = append(m.selectors, j)
				if sp := sel.Specificity(); m.specificity.Less(sp) {
					m.specificity = sp
				}
			}
			if len(m.selectors) > 0 {
				matches = append(matches, m)
			}
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].specificity.Less(matches[j].specificity)
	})
	return matches
}

// GetMatchedStylesForNode returns the rules of all style sheets matching
// an element, in ascending order of specificity.
func (a *Agent) GetMatchedStylesForNode(id protocol.NodeID) ([]protocol.RuleMatch, error) {
	el, err := a.element(id)
	if err != nil {
		return nil, err
	}
	matches := a.matchRules(el)
	result := make([]protocol.RuleMatch, len(matches))
	for i, m := range matches {
		rule, err := a.buildRule(m.entry, m.ordinal)
		if err != nil {
			return nil, err
		}
		result[i] = protocol.RuleMatch{Rule: rule, MatchingSelectors: m.selectors}
	}
	return result, nil
}
