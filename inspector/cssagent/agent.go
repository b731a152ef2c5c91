/*
Package cssagent implements the CSS domain of an inspector session.

Every style sheet the front end learns about is bound to a
stylesync.Sheet, which keeps the text shown to the user and the live
CSSOM in step. Inline styles of elements are bound the same way, keyed by
their element. Edits are performed as undoable actions on the edit
history the agent shares with the DOM agent of the session.

Sheet ids are of the form "<token>.<n>", with a token unique to the
session; ids issued by one session are unknown to every other.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/
package cssagent

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/webinspect/dom"
	"github.com/npillmayer/webinspect/dom/style/cssom"
	"github.com/npillmayer/webinspect/inspector/history"
	"github.com/npillmayer/webinspect/inspector/nodereg"
	"github.com/npillmayer/webinspect/inspector/protocol"
	"github.com/npillmayer/webinspect/inspector/stylesync"
	"golang.org/x/net/html"
)

// tracer traces with key 'webinspect.cssagent'.
func tracer() tracing.Trace {
	return tracing.Select("webinspect.cssagent")
}

// Agent is the CSS agent of a session.
type Agent struct {
	page      *dom.Page
	nodes     *nodereg.Registry
	history   *history.History
	frontend  protocol.Frontend
	token     string
	indent    string
	enabled   bool
	muted     int
	lastID    int
	sheets    map[protocol.StyleSheetID]*entry
	byLive    map[*cssom.StyleSheet]*entry
	inline    map[*html.Node]*entry
	inspector map[*html.Node]*entry // inspector style sheet per document
}

// entry binds a sheet id to a synchronizer.
type entry struct {
	id      protocol.StyleSheetID
	sheet   *stylesync.Sheet
	live    *cssom.StyleSheet // nil for inline styles
	element *html.Node        // styled element of an inline style
}

// New creates a CSS agent for a page. The agent listens to the node
// registry for bindings going away.
func New(page *dom.Page, nodes *nodereg.Registry, h *history.History, frontend protocol.Frontend, token string) *Agent {
	a := &Agent{
		page:     page,
		nodes:    nodes,
		history:  h,
		frontend: frontend,
		token:    token,
		indent:   stylesync.DefaultIndent,
	}
	a.clear()
	nodes.SetListener(a)
	return a
}

// SetIndent sets the indentation of properties written into empty rules.
func (a *Agent) SetIndent(indent string) {
	a.indent = indent
}

func (a *Agent) clear() {
	a.sheets = make(map[protocol.StyleSheetID]*entry)
	a.byLive = make(map[*cssom.StyleSheet]*entry)
	a.inline = make(map[*html.Node]*entry)
	a.inspector = make(map[*html.Node]*entry)
}

// mute runs f while changes of the live model are known to originate from
// the agent itself.
func (a *Agent) mute(f func() error) error {
	a.muted++
	defer func() { a.muted-- }()
	return f()
}

func (a *Agent) nextID() protocol.StyleSheetID {
	a.lastID++
	return protocol.StyleSheetID(fmt.Sprintf("%s.%d", a.token, a.lastID))
}

// bind returns the entry of a live style sheet, creating it if needed.
func (a *Agent) bind(live *cssom.StyleSheet) *entry {
	if e, ok := a.byLive[live]; ok {
		return e
	}
	id := a.nextID()
	backend := stylesync.NewSheetBackend(live, a.page.OriginalStyleSheetText)
	e := &entry{id: id, live: live}
	e.sheet = stylesync.NewSheet(string(id), backend, a.page.Parser(),
		stylesync.WithIndent(a.indent), stylesync.OnChange(a.sheetChanged))
	a.sheets[id] = e
	a.byLive[live] = e
	tracer().P("sheet", id).Debugf("cssagent: bound style sheet %q", live.Href())
	return e
}

// bindInline returns the entry of the inline style of an element.
func (a *Agent) bindInline(element *html.Node) *entry {
	if e, ok := a.inline[element]; ok {
		return e
	}
	id := a.nextID()
	backend := stylesync.NewInlineBackend(element, a.page, a.page.Parser())
	e := &entry{id: id, element: element}
	e.sheet = stylesync.NewSheet(string(id), backend, a.page.Parser(), stylesync.WithIndent(a.indent))
	a.sheets[id] = e
	a.inline[element] = e
	return e
}

func (a *Agent) unbind(e *entry) {
	delete(a.sheets, e.id)
	if e.live != nil {
		delete(a.byLive, e.live)
		for doc, insp := range a.inspector {
			if insp == e {
				delete(a.inspector, doc)
			}
		}
	}
	if e.element != nil {
		delete(a.inline, e.element)
	}
}

func (a *Agent) entryFor(id protocol.StyleSheetID) (*entry, error) {
	e, ok := a.sheets[id]
	if !ok {
		return nil, protocol.Errorf(protocol.NotFound, "no style sheet with id %q", id)
	}
	return e, nil
}

func (a *Agent) sheetChanged(s *stylesync.Sheet) {
	a.frontend.Emit(protocol.Event{
		Method: protocol.EventStyleSheetChanged,
		Params: protocol.StyleSheetChangedParams{StyleSheetID: protocol.StyleSheetID(s.ID())},
	})
}

func (a *Agent) header(e *entry) protocol.StyleSheetHeader {
	h := protocol.StyleSheetHeader{
		StyleSheetID: e.id,
		Origin:       e.live.Origin().String(),
		SourceURL:    e.live.Href(),
	}
	if owner := e.live.Owner(); owner != nil {
		h.OwnerNode = a.nodes.ID(owner)
		h.IsInline = owner.Data == "style"
		if h.SourceURL == "" {
			h.SourceURL = a.page.DocumentURL(a.page.OwnerDocument(owner))
		}
	}
	return h
}

// --- Instrumentation -------------------------------------------------------

// StyleSheetAdded is called by the instrumentation when a sheet has been
// attached. Enabled agents announce it to the front end.
func (a *Agent) StyleSheetAdded(live *cssom.StyleSheet) {
	if !a.enabled {
		return
	}
	e := a.bind(live)
	a.frontend.Emit(protocol.Event{
		Method: protocol.EventStyleSheetAdded,
		Params: protocol.StyleSheetAddedParams{Header: a.header(e)},
	})
}

// StyleSheetRemoved is called by the instrumentation when a sheet has been
// detached.
func (a *Agent) StyleSheetRemoved(live *cssom.StyleSheet) {
	e, ok := a.byLive[live]
	if !ok {
		return
	}
	a.unbind(e)
	a.frontend.Emit(protocol.Event{
		Method: protocol.EventStyleSheetRemoved,
		Params: protocol.StyleSheetRemovedParams{StyleSheetID: e.id},
	})
}

// DidMutateStyleSheet is called by the instrumentation after the live
// model of a sheet has changed. Changes not made by the agent invalidate
// what the synchronizer knows.
func (a *Agent) DidMutateStyleSheet(live *cssom.StyleSheet) {
	if a.muted > 0 {
		return
	}
	e, ok := a.byLive[live]
	if !ok {
		return
	}
	e.sheet.Resync(live.Modified(), live.CSSText())
	a.sheetChanged(e.sheet)
}

// DidInvalidateStyleAttr is called by the instrumentation after the inline
// style of an element has changed.
func (a *Agent) DidInvalidateStyleAttr(element *html.Node) {
	a.resyncInline(element)
}

// DocumentUpdated is called by the instrumentation after navigation.
func (a *Agent) DocumentUpdated() {
	tracer().Infof("cssagent: document updated, dropping %d style sheets", len(a.sheets))
	a.clear()
}

func (a *Agent) resyncInline(element *html.Node) {
	if a.muted > 0 {
		return
	}
	if e, ok := a.inline[element]; ok {
		e.sheet.Resync(false, "")
	}
}

// --- Node registry ---------------------------------------------------------

// DidUnbindNode is part of interface nodereg.Listener.
func (a *Agent) DidUnbindNode(node *html.Node) {
	if e, ok := a.inline[node]; ok {
		a.unbind(e)
	}
}

// DidModifyDOMAttr is part of interface nodereg.Listener.
func (a *Agent) DidModifyDOMAttr(element *html.Node) {
	a.resyncInline(element)
}

// DidDiscardBindings is part of interface nodereg.Listener.
func (a *Agent) DidDiscardBindings() {
	for _, e := range a.inline {
		a.unbind(e)
	}
}
