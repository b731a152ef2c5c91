package domagent_test

import (
	"errors"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/webinspect/dom"
	"github.com/npillmayer/webinspect/dom/domdbg"
	"github.com/npillmayer/webinspect/dom/w3cdom"
	"github.com/npillmayer/webinspect/inspector/domagent"
	"github.com/npillmayer/webinspect/inspector/history"
	"github.com/npillmayer/webinspect/inspector/instrument"
	"github.com/npillmayer/webinspect/inspector/nodereg"
	"github.com/npillmayer/webinspect/inspector/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

const markup = `<html><head></head><body>` +
	`<div id="box" class="outer"><span id="a">alpha</span><span id="b">beta</span></div>` +
	`<p id="t">some text</p></body></html>`

type fixture struct {
	page  *dom.Page
	agent *domagent.Agent
	log   *protocol.EventLog
	hist  *history.History
}

func setup(t *testing.T) *fixture {
	page, err := dom.NewPage(markup, "http://example.org/")
	require.NoError(t, err)
	log := &protocol.EventLog{}
	hist := history.New()
	agent := domagent.New(page, nodereg.New(page, log, page.Post), hist, "tok")
	reg := instrument.NewRegistry()
	instrument.Install(reg, page)
	reg.Update(page, func(a *instrument.Agents) { a.DOM = agent })
	_, err = agent.GetDocument()
	require.NoError(t, err)
	log.Reset()
	return &fixture{page: page, agent: agent, log: log, hist: hist}
}

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

// dump prints the page tree, annotated with the node ids of the agent.
func (f *fixture) dump() string {
	reg := f.agent.Nodes()
	return domdbg.Dump(f.page, nil, func(n *html.Node) int { return int(reg.ID(n)) })
}

func (f *fixture) push(id string) protocol.NodeID {
	return f.agent.Nodes().PushNodePathToFrontend(byID(f.page.Document(), id))
}

func TestAttributeEditsUndo(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "webinspect.domagent")
	defer teardown()
	//
	f := setup(t)
	box := f.push("box")
	require.NoError(t, f.agent.SetAttributeValue(box, "title", "hello"))
	require.NoError(t, f.agent.SetAttributeValue(box, "class", "inner"))
	assert.Equal(t, 2, f.hist.Len())
	el := byID(f.page.Document(), "box")
	require.NoError(t, f.agent.Undo())
	_, hasTitle := w3cdom.Attr(el, "title")
	class, _ := w3cdom.Attr(el, "class")
	assert.False(t, hasTitle, "expected added attribute to be removed by undo")
	assert.Equal(t, "outer", class)
	require.NoError(t, f.agent.Redo())
	class, _ = w3cdom.Attr(el, "class")
	assert.Equal(t, "inner", class)
	assert.Contains(t, f.log.Methods(), protocol.EventAttributeRemoved)
	//
	assert.Error(t, f.agent.SetAttributeValue(4711, "x", "y"))
	text := f.agent.Nodes().PushNodePathToFrontend(byID(f.page.Document(), "t").FirstChild)
	err := f.agent.SetAttributeValue(text, "x", "y")
	assert.True(t, errors.Is(err, protocol.ErrInvalidArgument), "expected attribute on text node to be rejected")
}

func TestSetAttributesAsText(t *testing.T) {
	f := setup(t)
	box := f.push("box")
	require.NoError(t, f.agent.SetAttributesAsText(box, `data-x="1" hidden`, "class"))
	el := byID(f.page.Document(), "box")
	v, _ := w3cdom.Attr(el, "data-x")
	assert.Equal(t, "1", v)
	_, hidden := w3cdom.Attr(el, "hidden")
	assert.True(t, hidden)
	_, class := w3cdom.Attr(el, "class")
	assert.False(t, class, "expected replaced attribute to be removed")
}

func TestNodeValueMerges(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "webinspect.domagent")
	defer teardown()
	//
	f := setup(t)
	textNode := byID(f.page.Document(), "t").FirstChild
	id := f.agent.Nodes().PushNodePathToFrontend(textNode)
	for _, v := range []string{"a", "ab", "abc"} {
		require.NoError(t, f.agent.SetNodeValue(id, v))
	}
	assert.Equal(t, 1, f.hist.Len(), "expected typing to be merged into one edit")
	require.NoError(t, f.agent.Undo())
	assert.Equal(t, "some text", textNode.Data)
}

func TestRemoveNodeAndOuterHTML(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "webinspect.domagent")
	defer teardown()
	//
	f := setup(t)
	doc := f.page.Document()
	a := byID(doc, "a")
	aID := f.push("a")
	f.log.Reset()
	require.NoError(t, f.agent.RemoveNode(aID))
	assert.Nil(t, byID(doc, "a"))
	assert.Equal(t, []string{protocol.EventChildNodeRemoved}, f.log.Methods())
	require.NoError(t, f.agent.Undo())
	assert.Same(t, a, byID(doc, "box").FirstChild, "expected undo to restore node at its position:\n%s", f.dump())
	//
	f.agent.MarkUndoableState()
	bID := f.push("b")
	newID, err := f.agent.SetOuterHTML(bID, `<em id="e">e</em><i>i</i>`)
	require.NoError(t, err)
	assert.NotZero(t, newID)
	assert.Nil(t, byID(doc, "b"), f.dump())
	assert.NotNil(t, byID(doc, "e"), f.dump())
	s, err := f.agent.GetOuterHTML(f.push("box"))
	require.NoError(t, err)
	assert.Equal(t, `<div id="box" class="outer"><span id="a">alpha</span><em id="e">e</em><i>i</i></div>`, s)
	require.NoError(t, f.agent.Undo())
	assert.NotNil(t, byID(doc, "b"), f.dump())
	assert.Nil(t, byID(doc, "e"), f.dump())
	doc2, _ := f.agent.Nodes().NodeForID(1)
	assert.Same(t, doc, doc2)
}

func TestQuerySelector(t *testing.T) {
	f := setup(t)
	id, err := f.agent.QuerySelector(1, "#box > span:last-child")
	require.NoError(t, err)
	n, _ := f.agent.Nodes().NodeForID(id)
	assert.Same(t, byID(f.page.Document(), "b"), n)
	ids, err := f.agent.QuerySelectorAll(1, "span")
	require.NoError(t, err)
	assert.Len(t, ids, 2)
	none, err := f.agent.QuerySelector(1, "table")
	require.NoError(t, err)
	assert.Zero(t, none)
	_, err = f.agent.QuerySelector(1, "span[")
	assert.True(t, errors.Is(err, protocol.ErrInvalidArgument))
}

func TestSearch(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "webinspect.domagent")
	defer teardown()
	//
	f := setup(t)
	searchID, count := f.agent.PerformSearch("SPAN")
	assert.Equal(t, 2, count)
	ids, err := f.agent.GetSearchResults(searchID, 0, 2)
	require.NoError(t, err)
	assert.Len(t, ids, 2)
	_, err = f.agent.GetSearchResults(searchID, 1, 1)
	assert.True(t, errors.Is(err, protocol.ErrInvalidArgument))
	_, err = f.agent.GetSearchResults(searchID, 0, 3)
	assert.True(t, errors.Is(err, protocol.ErrInvalidArgument))
	_, count = f.agent.PerformSearch("beta")
	assert.Equal(t, 1, count, "expected text to be searched")
	_, count = f.agent.PerformSearch(".outer")
	assert.Equal(t, 1, count, "expected selector to be matched")
	f.agent.DiscardSearchResults(searchID)
	_, err = f.agent.GetSearchResults(searchID, 0, 1)
	assert.True(t, errors.Is(err, protocol.ErrNotFound))
}

func TestRemoteObjects(t *testing.T) {
	f := setup(t)
	box := f.push("box")
	obj, err := f.agent.ResolveNode(box, "console")
	require.NoError(t, err)
	assert.Equal(t, "node", obj.Subtype)
	assert.Equal(t, "DIV", obj.Description)
	id, err := f.agent.RequestNode(obj.ObjectID)
	require.NoError(t, err)
	assert.Equal(t, box, id)
	f.agent.ReleaseObjectGroup("console")
	_, err = f.agent.RequestNode(obj.ObjectID)
	assert.True(t, errors.Is(err, protocol.ErrNotFound))
}

func TestNavigationResets(t *testing.T) {
	f := setup(t)
	require.NoError(t, f.agent.SetAttributeValue(f.push("box"), "title", "x"))
	f.log.Reset()
	require.NoError(t, f.page.Navigate(`<html><body></body></html>`, "http://example.org/2"))
	assert.Equal(t, []string{protocol.EventDocumentUpdated}, f.log.Methods())
	assert.False(t, f.hist.CanUndo(), "expected history to be dropped")
	_, err := f.agent.Nodes().NodeForID(1)
	assert.Error(t, err)
}
