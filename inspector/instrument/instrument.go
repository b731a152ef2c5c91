/*
Package instrument routes the hooks of a page to the inspector agents
currently enabled for it.

Agents of a page are kept in a Registry. A Dispatcher is installed as the
dom.Hooks of a page and forwards each hook to the agents which are present
at the time of the call. Agents which are absent are not told anything, and
nothing is queued for them. Within one hook the order of forwarding is
fixed and given at each method.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/
package instrument

import (
	"sync"
	"time"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/webinspect/dom"
	"github.com/npillmayer/webinspect/dom/style/cssom"
	"golang.org/x/net/html"
)

// tracer traces with key 'webinspect.instrument'.
func tracer() tracing.Trace {
	return tracing.Select("webinspect.instrument")
}

// MutationSink mirrors live tree mutations to a front end.
type MutationSink interface {
	DidInsertDOMNode(node *html.Node)
	DidRemoveDOMNode(node *html.Node)
	DidModifyDOMAttr(element *html.Node, name, value string)
	DidRemoveDOMAttr(element *html.Node, name string)
	CharacterDataModified(node *html.Node)
	DidInvalidateStyleAttr(element *html.Node)
	DidPushShadowRoot(host, root *html.Node)
	WillPopShadowRoot(host, root *html.Node)
	PseudoElementCreated(pseudo *html.Node)
	PseudoElementDestroyed(pseudo *html.Node)
	FrameDocumentUpdated(owner *html.Node)
	DocumentUpdated()
}

// MutationGuard checks live tree mutations against breakpoints.
type MutationGuard interface {
	WillInsertDOMNode(parent *html.Node)
	DidInsertDOMNode(node *html.Node)
	WillRemoveDOMNode(node *html.Node)
	DidRemoveDOMNode(node *html.Node)
	WillModifyDOMAttr(element *html.Node)
	DidInvalidateStyleAttr(element *html.Node)
	DocumentUpdated()
}

// StyleSink keeps style sheet records in sync with the page.
type StyleSink interface {
	StyleSheetAdded(sheet *cssom.StyleSheet)
	StyleSheetRemoved(sheet *cssom.StyleSheet)
	DidMutateStyleSheet(sheet *cssom.StyleSheet)
	DidInvalidateStyleAttr(element *html.Node)
	DocumentUpdated()
}

// RuntimeGuard checks script activity against breakpoints.
type RuntimeGuard interface {
	WillHandleEvent(target *html.Node, eventName string)
	DidHandleEvent()
	DidInstallTimer(timerID int, timeout time.Duration, singleShot bool)
	DidRemoveTimer(timerID int)
	WillFireTimer(timerID int)
	DidFireTimer()
	WillSendXMLHttpRequest(url string)
	WillEvaluateScript(url string, line int)
	DidEvaluateScript()
}

// Agents are the agents enabled for a page. Every one of them is optional.
type Agents struct {
	DOM         MutationSink
	DOMDebugger MutationGuard
	CSS         StyleSink
	Runtime     RuntimeGuard
}

func (a Agents) empty() bool {
	return a.DOM == nil && a.DOMDebugger == nil && a.CSS == nil && a.Runtime == nil
}

// --- Registry --------------------------------------------------------------

// Registry knows the agents of every inspected page of a process. It is
// safe for concurrent use; pages and their agents are not.
type Registry struct {
	mx     sync.RWMutex
	agents map[*dom.Page]Agents
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{agents: make(map[*dom.Page]Agents)}
}

// Update changes the agents of a page. If no agent is left afterwards, the
// page is dropped.
func (r *Registry) Update(page *dom.Page, f func(*Agents)) {
	r.mx.Lock()
	defer r.mx.Unlock()
	a := r.agents[page]
	f(&a)
	if a.empty() {
		delete(r.agents, page)
		tracer().Debugf("instrument: page has no agents left")
		return
	}
	r.agents[page] = a
}

// Unregister drops all agents of a page.
func (r *Registry) Unregister(page *dom.Page) {
	r.mx.Lock()
	defer r.mx.Unlock()
	delete(r.agents, page)
}

// Lookup returns the agents of a page.
func (r *Registry) Lookup(page *dom.Page) (Agents, bool) {
	r.mx.RLock()
	defer r.mx.RUnlock()
	a, ok := r.agents[page]
	return a, ok
}

// Len returns the number of pages with agents.
func (r *Registry) Len() int {
	r.mx.RLock()
	defer r.mx.RUnlock()
	return len(r.agents)
}
