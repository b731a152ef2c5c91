package breakpoints

import (
	"testing"
	"time"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/webinspect/dom"
	"github.com/npillmayer/webinspect/dom/w3cdom"
	"github.com/npillmayer/webinspect/inspector/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const markup = `<html><head></head><body>` +
	`<div id="r"><div id="c1"><span id="g1">x</span></div><div id="c2"><span id="g2">y</span></div></div>` +
	`<div id="s"><span id="s1">z</span></div></body></html>`

func byID(n *html.Node, id string) *html.Node {
	if v, ok := w3cdom.Attr(n, "id"); ok && n.Type == html.ElementNode && v == id {
		return n
	}
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		if found := byID(ch, id); found != nil {
			return found
		}
	}
	return nil
}

func newPage(t *testing.T) *dom.Page {
	page, err := dom.NewPage(markup, "test:")
	require.NoError(t, err)
	return page
}

func TestPropagation(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "webinspect.breakpoints")
	defer teardown()
	//
	page := newPage(t)
	doc := page.Document()
	table := NewTable(page)
	r := byID(doc, "r")
	table.Set(r, SubtreeModified)
	for _, id := range []string{"r", "c1", "g1", "c2", "g2"} {
		assert.True(t, table.Has(byID(doc, id), SubtreeModified), "expected %s to have breakpoint", id)
	}
	for _, id := range []string{"s", "s1"} {
		assert.False(t, table.Has(byID(doc, id), SubtreeModified), "expected %s to be free", id)
	}
	assert.False(t, table.Has(r, AttributeModified))
	//
	c2 := byID(doc, "c2")
	table.Set(c2, SubtreeModified)
	table.Remove(r, SubtreeModified)
	for _, id := range []string{"r", "c1", "g1"} {
		assert.False(t, table.Has(byID(doc, id), SubtreeModified), "expected %s to be free after removal", id)
	}
	for _, id := range []string{"c2", "g2"} {
		assert.True(t, table.Has(byID(doc, id), SubtreeModified), "expected %s to keep independent breakpoint", id)
	}
	table.Remove(c2, SubtreeModified)
	assert.Equal(t, 0, table.Len(), "expected masks to decay to zero")
}

func TestNonInheritable(t *testing.T) {
	page := newPage(t)
	table := NewTable(page)
	r := byID(page.Document(), "r")
	table.Set(r, AttributeModified)
	assert.True(t, table.Has(r, AttributeModified))
	assert.False(t, table.Has(byID(r, "c1"), AttributeModified))
	assert.Equal(t, 1, table.Len())
}

func TestInsertRemoveInherit(t *testing.T) {
	page := newPage(t)
	table := NewTable(page)
	doc := page.Document()
	r := byID(doc, "r")
	table.Set(r, SubtreeModified)
	em := &html.Node{Type: html.ElementNode, Data: "em", DataAtom: atom.Em}
	require.NoError(t, page.AppendChild(byID(doc, "c1"), em))
	table.DidInsert(em)
	assert.True(t, table.Has(em, SubtreeModified), "expected inserted node to inherit")
	c1 := byID(doc, "c1")
	table.DidRemove(c1)
	assert.False(t, table.Has(c1, SubtreeModified))
	assert.False(t, table.Has(em, SubtreeModified))
	assert.True(t, table.Has(byID(doc, "g2"), SubtreeModified))
}

// --- Agent -----------------------------------------------------------------

type pause struct {
	reason    string
	data      map[string]interface{}
	scheduled bool
}

type fakeDebugger struct {
	pauses    []pause
	cancelled int
}

func (d *fakeDebugger) BreakProgram(reason string, data map[string]interface{}) {
	d.pauses = append(d.pauses, pause{reason: reason, data: data})
}

func (d *fakeDebugger) SchedulePauseOnNextStatement(reason string, data map[string]interface{}) {
	d.pauses = append(d.pauses, pause{reason: reason, data: data, scheduled: true})
}

func (d *fakeDebugger) CancelPauseOnNextStatement() {
	d.cancelled++
}

type fakeResolver struct {
	ids   map[*html.Node]protocol.NodeID
	nodes map[protocol.NodeID]*html.Node
}

func newResolver() *fakeResolver {
	return &fakeResolver{ids: map[*html.Node]protocol.NodeID{}, nodes: map[protocol.NodeID]*html.Node{}}
}

func (f *fakeResolver) PushNodePathToFrontend(n *html.Node) protocol.NodeID {
	if id, ok := f.ids[n]; ok {
		return id
	}
	id := protocol.NodeID(len(f.ids) + 1)
	f.ids[n], f.nodes[id] = id, n
	return id
}

func (f *fakeResolver) NodeForID(id protocol.NodeID) (*html.Node, error) {
	if n, ok := f.nodes[id]; ok {
		return n, nil
	}
	return nil, protocol.Errorf(protocol.NotFound, "no node %d", id)
}

// guard connects a page to an agent without an instrumentation layer.
type guard struct {
	dom.NopHooks
	a *Agent
}

func (g guard) WillInsertDOMNode(p *html.Node) { g.a.WillInsertDOMNode(p) }
func (g guard) DidInsertDOMNode(n *html.Node) { g.a.DidInsertDOMNode(n) }
func (g guard) WillRemoveDOMNode(n *html.Node) { g.a.WillRemoveDOMNode(n) }
func (g guard) DidRemoveDOMNode(n *html.Node) { g.a.DidRemoveDOMNode(n) }
func (g guard) WillModifyDOMAttr(el *html.Node, _, _, _ string) { g.a.WillModifyDOMAttr(el) }
func (g guard) WillHandleEvent(n *html.Node, name string) { g.a.WillHandleEvent(n, name) }
func (g guard) DidHandleEvent() { g.a.DidHandleEvent() }
func (g guard) DidInstallTimer(id int, d time.Duration, s bool) { g.a.DidInstallTimer(id, d, s) }
func (g guard) WillFireTimer(id int) { g.a.WillFireTimer(id) }
func (g guard) DidFireTimer() { g.a.DidFireTimer() }
func (g guard) WillSendXMLHttpRequest(url string) { g.a.WillSendXMLHttpRequest(url) }

func newAgent(t *testing.T) (*dom.Page, *Agent, *fakeDebugger, *fakeResolver) {
	page := newPage(t)
	dbg := &fakeDebugger{}
	res := newResolver()
	agent := NewAgent(page, res, dbg)
	page.SetHooks(guard{a: agent})
	return page, agent, dbg, res
}

func TestDOMBreakpointPauses(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "webinspect.breakpoints")
	defer teardown()
	//
	page, agent, dbg, res := newAgent(t)
	doc := page.Document()
	r := byID(doc, "r")
	rID := res.PushNodePathToFrontend(r)
	require.NoError(t, agent.SetDOMBreakpoint(rID, "subtree-modified"))
	assert.Error(t, agent.SetDOMBreakpoint(rID, "node-exploded"))
	assert.Error(t, agent.SetDOMBreakpoint(4711, "node-removed"))
	//
	g1 := byID(doc, "g1")
	require.NoError(t, page.RemoveChild(g1))
	require.Len(t, dbg.pauses, 1)
	p := dbg.pauses[0]
	assert.Equal(t, ReasonDOM, p.reason)
	assert.Equal(t, "subtree-modified", p.data["type"])
	assert.Equal(t, rID, p.data["nodeId"], "expected breakpoint owner to be reported")
	assert.Equal(t, res.ids[g1], p.data["targetNodeId"])
	assert.Equal(t, false, p.data["insertion"])
	//
	require.NoError(t, page.SetAttribute(byID(doc, "s"), "title", "t"))
	assert.Len(t, dbg.pauses, 1, "expected no pause without attribute breakpoint")
	sID := res.PushNodePathToFrontend(byID(doc, "s"))
	require.NoError(t, agent.SetDOMBreakpoint(sID, "attribute-modified"))
	require.NoError(t, page.SetAttribute(byID(doc, "s"), "title", "u"))
	assert.Len(t, dbg.pauses, 2)
	//
	agent.DocumentUpdated()
	assert.Equal(t, 0, agent.Table().Len())
}

func TestEventAndXHRBreakpoints(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "webinspect.breakpoints")
	defer teardown()
	//
	page, agent, dbg, _ := newAgent(t)
	require.NoError(t, agent.SetEventListenerBreakpoint("click"))
	assert.Error(t, agent.SetEventListenerBreakpoint(""))
	page.DispatchEvent(byID(page.Document(), "g1"), "click")
	require.Len(t, dbg.pauses, 1)
	assert.True(t, dbg.pauses[0].scheduled)
	assert.Equal(t, "listener:click", dbg.pauses[0].data["eventName"])
	assert.Equal(t, 1, dbg.cancelled, "expected scheduled pause to be cancelled after dispatch")
	page.DispatchEvent(byID(page.Document(), "g1"), "keydown")
	assert.Len(t, dbg.pauses, 1)
	//
	require.NoError(t, agent.SetInstrumentationBreakpoint("setTimer"))
	page.InstallTimer(time.Second, true, nil)
	require.Len(t, dbg.pauses, 2)
	assert.False(t, dbg.pauses[1].scheduled, "expected setTimer to pause synchronously")
	//
	require.NoError(t, agent.SetXHRBreakpoint("API/", false))
	require.NoError(t, agent.SetXHRBreakpoint(`\.json$`, true))
	assert.Error(t, agent.SetXHRBreakpoint(`(`, true))
	page.SendXMLHttpRequest("https://example.org/static/app.js")
	assert.Len(t, dbg.pauses, 2)
	page.SendXMLHttpRequest("https://example.org/api/data.json")
	require.Len(t, dbg.pauses, 3)
	assert.Equal(t, "API/", dbg.pauses[2].data["breakpointURL"], "expected first match to win")
	require.NoError(t, agent.RemoveXHRBreakpoint("API/"))
	page.SendXMLHttpRequest("https://example.org/api/data.json")
	require.Len(t, dbg.pauses, 4)
	assert.Equal(t, `\.json$`, dbg.pauses[3].data["breakpointURL"])
	require.NoError(t, agent.SetXHRBreakpoint("", false))
	page.SendXMLHttpRequest("https://example.org/anything")
	assert.Len(t, dbg.pauses, 5)
}
