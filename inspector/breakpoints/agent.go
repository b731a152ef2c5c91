package breakpoints

import (
	"strings"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/npillmayer/webinspect/dom/w3cdom"
	"github.com/npillmayer/webinspect/inspector/protocol"
	"golang.org/x/net/html"
)

// Debugger is what breakpoints pause. Pausing and resuming happen elsewhere.
type Debugger interface {
	BreakProgram(reason string, data map[string]interface{})
	SchedulePauseOnNextStatement(reason string, data map[string]interface{})
	CancelPauseOnNextStatement()
}

// NodeResolver translates between nodes and front end ids.
type NodeResolver interface {
	PushNodePathToFrontend(node *html.Node) protocol.NodeID
	NodeForID(id protocol.NodeID) (*html.Node, error)
}

// Pause reasons.
const (
	ReasonDOM           = "DOM"
	ReasonEventListener = "EventListener"
	ReasonXHR           = "XHR"
)

// Prefixes of event breakpoint names.
const (
	listenerCategory        = "listener:"
	instrumentationCategory = "instrumentation:"
)

type xhrBreakpoint struct {
	url     string
	isRegex bool
	re      *regexp2.Regexp
}

func (bp xhrBreakpoint) matches(url string) bool {
	if bp.re != nil {
		ok, err := bp.re.MatchString(url)
		return err == nil && ok
	}
	return strings.Contains(strings.ToLower(url), strings.ToLower(bp.url))
}

// Agent is the DOM debugger of a session. It owns the breakpoint table and
// the flat breakpoint sets, and asks the debugger to pause when the page
// reaches a breakpoint.
type Agent struct {
	tree      w3cdom.Tree
	table     *Table
	nodes     NodeResolver
	debugger  Debugger
	events    map[string]bool
	xhr       []xhrBreakpoint
	pauseAll  bool // empty URL breakpoint
	scheduled bool // we asked for a pause on next statement
}

// NewAgent creates a DOM debugger for a tree.
func NewAgent(tree w3cdom.Tree, nodes NodeResolver, debugger Debugger) *Agent {
	return &Agent{
		tree:     tree,
		table:    NewTable(tree),
		nodes:    nodes,
		debugger: debugger,
		events:   make(map[string]bool),
	}
}

// Table returns the DOM breakpoint table.
func (a *Agent) Table() *Table {
	return a.table
}

// --- Commands --------------------------------------------------------------

// SetDOMBreakpoint sets a breakpoint of a type on a node.
func (a *Agent) SetDOMBreakpoint(id protocol.NodeID, typ string) error {
	kind, err := ParseKind(typ)
	if err != nil {
		return err
	}
	node, err := a.nodes.NodeForID(id)
	if err != nil {
		return err
	}
	a.table.Set(node, kind)
	tracer().P("node", id).Debugf("breakpoints: set %s", kind)
	return nil
}

// RemoveDOMBreakpoint removes a breakpoint of a type from a node.
func (a *Agent) RemoveDOMBreakpoint(id protocol.NodeID, typ string) error {
	kind, err := ParseKind(typ)
	if err != nil {
		return err
	}
	node, err := a.nodes.NodeForID(id)
	if err != nil {
		return err
	}
	a.table.Remove(node, kind)
	return nil
}

// SetEventListenerBreakpoint pauses when an event of a name is dispatched.
func (a *Agent) SetEventListenerBreakpoint(eventName string) error {
	return a.setEvent(listenerCategory, eventName, true)
}

// RemoveEventListenerBreakpoint removes an event breakpoint.
func (a *Agent) RemoveEventListenerBreakpoint(eventName string) error {
	return a.setEvent(listenerCategory, eventName, false)
}

// SetInstrumentationBreakpoint pauses at an instrumentation point:
// setTimer, clearTimer, timerFired or scriptFirstStatement.
func (a *Agent) SetInstrumentationBreakpoint(name string) error {
	return a.setEvent(instrumentationCategory, name, true)
}

// RemoveInstrumentationBreakpoint removes an instrumentation breakpoint.
func (a *Agent) RemoveInstrumentationBreakpoint(name string) error {
	return a.setEvent(instrumentationCategory, name, false)
}

func (a *Agent) setEvent(category, name string, set bool) error {
	if name == "" {
		return protocol.Errorf(protocol.InvalidArgument, "event name is empty")
	}
	if set {
		a.events[category+name] = true
	} else {
		delete(a.events, category+name)
	}
	return nil
}

// SetXHRBreakpoint pauses on requests to URLs containing url, or matching
// url as a regular expression. An empty url pauses on every request.
func (a *Agent) SetXHRBreakpoint(url string, isRegex bool) error {
	if url == "" {
		a.pauseAll = true
		return nil
	}
	bp := xhrBreakpoint{url: url, isRegex: isRegex}
	if isRegex {
		re, err := regexp2.Compile(url, regexp2.ECMAScript|regexp2.IgnoreCase)
		if err != nil {
			return protocol.Errorf(protocol.InvalidArgument, "invalid regular expression %q: %v", url, err)
		}
		bp.re = re
	}
	for i, x := range a.xhr {
		if x.url == url {
			a.xhr[i] = bp
			return nil
		}
	}
	a.xhr = append(a.xhr, bp)
	return nil
}

// RemoveXHRBreakpoint removes a URL breakpoint.
func (a *Agent) RemoveXHRBreakpoint(url string) error {
	if url == "" {
		a.pauseAll = false
		return nil
	}
	for i, x := range a.xhr {
		if x.url == url {
			a.xhr = append(a.xhr[:i], a.xhr[i+1:]...)
			break
		}
	}
	return nil
}

// Clear drops every breakpoint.
func (a *Agent) Clear() {
	a.table.Clear()
	a.events = make(map[string]bool)
	a.xhr = nil
	a.pauseAll = false
	a.cancelPause()
}

// --- DOM hooks -------------------------------------------------------------

// WillInsertDOMNode checks for subtree breakpoints at parent.
func (a *Agent) WillInsertDOMNode(parent *html.Node) {
	if a.table.Has(parent, SubtreeModified) {
		a.breakProgram(ReasonDOM, a.describe(parent, SubtreeModified, true))
	}
}

// DidInsertDOMNode lets the new node inherit breakpoints.
func (a *Agent) DidInsertDOMNode(node *html.Node) {
	a.table.DidInsert(node)
}

// WillRemoveDOMNode checks for removal breakpoints at node and subtree
// breakpoints at its parent.
func (a *Agent) WillRemoveDOMNode(node *html.Node) {
	parent := a.tree.ParentOf(node)
	if a.table.Has(node, NodeRemoved) {
		a.breakProgram(ReasonDOM, a.describe(node, NodeRemoved, false))
	} else if parent != nil && a.table.Has(parent, SubtreeModified) {
		a.breakProgram(ReasonDOM, a.describe(node, SubtreeModified, false))
	}
}

// DidRemoveDOMNode drops the breakpoints of the removed subtree.
func (a *Agent) DidRemoveDOMNode(node *html.Node) {
	a.table.DidRemove(node)
}

// WillModifyDOMAttr checks for attribute breakpoints.
func (a *Agent) WillModifyDOMAttr(element *html.Node) {
	if a.table.Has(element, AttributeModified) {
		a.breakProgram(ReasonDOM, a.describe(element, AttributeModified, false))
	}
}

// DidInvalidateStyleAttr checks for attribute breakpoints.
func (a *Agent) DidInvalidateStyleAttr(element *html.Node) {
	a.WillModifyDOMAttr(element)
}

// DocumentUpdated drops DOM breakpoints. Event and URL breakpoints stay.
func (a *Agent) DocumentUpdated() {
	a.table.Clear()
}

// describe collects pause data. For inherited breakpoints the node owning
// the breakpoint is reported as nodeId, the mutated node as targetNodeId.
func (a *Agent) describe(target *html.Node, kind Kind, insertion bool) map[string]interface{} {
	data := map[string]interface{}{"type": kind.String()}
	owner := target
	if kind.inheritable() {
		data["targetNodeId"] = a.nodes.PushNodePathToFrontend(target)
		if !insertion {
			owner = a.tree.ParentOf(target)
		}
		owner = a.table.Owner(owner, kind)
		data["insertion"] = insertion
	}
	data["nodeId"] = a.nodes.PushNodePathToFrontend(owner)
	return data
}

func (a *Agent) breakProgram(reason string, data map[string]interface{}) {
	tracer().Infof("breakpoints: %s pause, data = %v", reason, data)
	if a.debugger != nil {
		a.debugger.BreakProgram(reason, data)
	}
}

// --- Runtime hooks ---------------------------------------------------------

// WillHandleEvent schedules a pause if an event breakpoint matches.
func (a *Agent) WillHandleEvent(_ *html.Node, eventName string) {
	a.pauseOnNativeEvent(listenerCategory+eventName, false)
}

// DidHandleEvent cancels a scheduled pause.
func (a *Agent) DidHandleEvent() {
	a.cancelPause()
}

// DidInstallTimer pauses at instrumentation breakpoint setTimer.
func (a *Agent) DidInstallTimer(int, time.Duration, bool) {
	a.pauseOnNativeEvent(instrumentationCategory+"setTimer", true)
}

// DidRemoveTimer pauses at instrumentation breakpoint clearTimer.
func (a *Agent) DidRemoveTimer(int) {
	a.pauseOnNativeEvent(instrumentationCategory+"clearTimer", true)
}

// WillFireTimer schedules a pause at instrumentation breakpoint timerFired.
func (a *Agent) WillFireTimer(int) {
	a.pauseOnNativeEvent(instrumentationCategory+"timerFired", false)
}

// DidFireTimer cancels a scheduled pause.
func (a *Agent) DidFireTimer() {
	a.cancelPause()
}

// WillEvaluateScript schedules a pause at instrumentation breakpoint
// scriptFirstStatement.
func (a *Agent) WillEvaluateScript(string, int) {
	a.pauseOnNativeEvent(instrumentationCategory+"scriptFirstStatement", false)
}

// DidEvaluateScript cancels a scheduled pause.
func (a *Agent) DidEvaluateScript() {
	a.cancelPause()
}

// WillSendXMLHttpRequest pauses if a URL breakpoint matches. The first
// matching breakpoint is reported.
func (a *Agent) WillSendXMLHttpRequest(url string) {
	var breakpointURL string
	matched := a.pauseAll
	if !matched {
		for _, bp := range a.xhr {
			if bp.matches(url) {
				breakpointURL, matched = bp.url, true
				break
			}
		}
	}
	if !matched {
		return
	}
	a.breakProgram(ReasonXHR, map[string]interface{}{
		"breakpointURL": breakpointURL,
		"url":           url,
	})
}

func (a *Agent) pauseOnNativeEvent(fullName string, synchronous bool) {
	if !a.events[fullName] {
		return
	}
	data := map[string]interface{}{"eventName": fullName}
	if synchronous {
		a.breakProgram(ReasonEventListener, data)
		return
	}
	if a.debugger != nil {
		a.debugger.SchedulePauseOnNextStatement(ReasonEventListener, data)
	}
	a.scheduled = true
}

func (a *Agent) cancelPause() {
	if !a.scheduled {
		return
	}
	a.scheduled = false
	if a.debugger != nil {
		a.debugger.CancelPauseOnNextStatement()
	}
}
