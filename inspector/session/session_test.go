package session_test

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/webinspect/dom"
	"github.com/npillmayer/webinspect/inspector/instrument"
	"github.com/npillmayer/webinspect/inspector/protocol"
	"github.com/npillmayer/webinspect/inspector/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const markup = `<html><head><style>.a { color: red; }</style></head><body>` +
	`<div id="box" class="a"><span>one</span></div></body></html>`

type fixture struct {
	page       *dom.Page
	agents     *instrument.Registry
	sess       *session.Session
	transcript []string
	lastID     int
}

func setup(t *testing.T) *fixture {
	page, err := dom.NewPage(markup, "http://example.org/")
	require.NoError(t, err)
	f := &fixture{page: page, agents: instrument.NewRegistry()}
	fe := protocol.FrontendFunc(func(ev protocol.Event) {
		f.transcript = append(f.transcript, ev.Method)
	})
	f.sess = session.New(page, f.agents, fe)
	return f
}

// call dispatches a command and returns the parsed response.
func (f *fixture) call(t *testing.T, method string, params interface{}) gjson.Result {
	f.lastID++
	msg := map[string]interface{}{"id": f.lastID, "method": method}
	if params != nil {
		msg["params"] = params
	}
	b, err := json.Marshal(msg)
	require.NoError(t, err)
	resp := f.sess.Dispatch(context.Background(), b)
	f.transcript = append(f.transcript, "response")
	r := gjson.ParseBytes(resp)
	require.Equal(t, int64(f.lastID), r.Get("id").Int(), "response id must echo request id")
	return r
}

func (f *fixture) boxID(t *testing.T) int64 {
	f.call(t, "DOM.getDocument", nil)
	r := f.call(t, "DOM.querySelector", map[string]interface{}{"nodeId": 1, "selector": "#box"})
	id := r.Get("result.nodeId").Int()
	require.NotZero(t, id)
	return id
}

func TestDispatchRoundTrip(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "webinspect.session")
	defer teardown()
	//
	f := setup(t)
	r := f.call(t, "DOM.getDocument", nil)
	assert.Equal(t, int64(1), r.Get("result.root.nodeId").Int())
	assert.False(t, r.Get("error").Exists())
	r = f.call(t, "DOM.markUndoableState", nil)
	assert.Equal(t, "{}", r.Get("result").Raw)
}

func TestErrorResponses(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "webinspect.session")
	defer teardown()
	//
	f := setup(t)
	resp := gjson.ParseBytes(f.sess.Dispatch(context.Background(), []byte(`{"id": 1, "method": `)))
	assert.Equal(t, int64(protocol.ParseError.Code()), resp.Get("error.code").Int())
	r := f.call(t, "DOM.noSuchCommand", nil)
	assert.Equal(t, int64(protocol.MethodNotFound.Code()), r.Get("error.code").Int())
	r = f.call(t, "DOM.setAttributeValue", map[string]interface{}{"nodeId": "x"})
	assert.Equal(t, int64(protocol.InvalidArgument.Code()), r.Get("error.code").Int())
	r = f.call(t, "CSS.getStyleSheetText", map[string]interface{}{"styleSheetId": "nope.1"})
	assert.Equal(t, int64(protocol.NotFound.Code()), r.Get("error.code").Int())
	assert.NotEmpty(t, r.Get("error.message").String())
	assert.False(t, r.Get("result").Exists())
}

func TestPanicBecomesInternalError(t *testing.T) {
	f := setup(t)
	f.sess.Handlers().Register("Test.panic", func(context.Context, json.RawMessage) (interface{}, error) {
		panic("boom")
	})
	r := f.call(t, "Test.panic", nil)
	assert.Equal(t, int64(protocol.Internal.Code()), r.Get("error.code").Int())
	r = f.call(t, "DOM.getDocument", nil)
	assert.True(t, r.Get("result.root").Exists(), "expected session to survive a panicking handler")
}

func TestEventsPrecedeResponse(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "webinspect.session")
	defer teardown()
	//
	f := setup(t)
	box := f.boxID(t)
	f.transcript = nil
	f.call(t, "DOM.setAttributeValue", map[string]interface{}{"nodeId": box, "name": "title", "value": "x"})
	f.sess.Handlers().Register("Test.deferred", func(context.Context, json.RawMessage) (interface{}, error) {
		f.page.Post(func() { f.transcript = append(f.transcript, "deferred") })
		return nil, nil
	})
	f.call(t, "Test.deferred", nil)
	want := []string{protocol.EventAttributeModified, "response", "deferred", "response"}
	if diff := cmp.Diff(want, f.transcript); diff != "" {
		t.Errorf("unexpected message order (-want +have):\n%s", diff)
	}
}

func TestStyleEditThroughProtocol(t *testing.T) {
	f := setup(t)
	r := f.call(t, "CSS.getAllStyleSheets", nil)
	id := r.Get("result.headers.0.styleSheetId").String()
	require.NotEmpty(t, id)
	assert.Contains(t, id, f.sess.Token())
	styleID := map[string]interface{}{"styleSheetId": id, "ordinal": 0}
	r = f.call(t, "CSS.setPropertyText", map[string]interface{}{
		"styleId": styleID, "propertyIndex": 0, "text": "color: blue", "overwrite": true,
	})
	assert.Equal(t, "blue", r.Get("result.style.cssProperties.0.value").String())
	r = f.call(t, "CSS.getStyleSheetText", map[string]interface{}{"styleSheetId": id})
	assert.Equal(t, ".a { color: blue; }", r.Get("result.text").String())
	f.call(t, "DOM.undo", nil)
	r = f.call(t, "CSS.getStyleSheetText", map[string]interface{}{"styleSheetId": id})
	assert.Equal(t, ".a { color: red; }", r.Get("result.text").String())
	r = f.call(t, "CSS.getComputedStyleForNode", map[string]interface{}{"nodeId": f.boxID(t)})
	color := r.Get(`result.computedStyle.#(name=="color").value`)
	assert.Equal(t, "red", color.String())
}

func TestMalformedStyleSheetText(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "webinspect.session")
	defer teardown()
	//
	f := setup(t)
	r := f.call(t, "CSS.getAllStyleSheets", nil)
	id := r.Get("result.headers.0.styleSheetId").String()
	r = f.call(t, "CSS.setStyleSheetText", map[string]interface{}{
		"styleSheetId": id, "text": ".a { color: red; }; .b { color: blue }",
	})
	assert.Equal(t, int64(protocol.Syntax.Code()), r.Get("error.code").Int())
	r = f.call(t, "CSS.getStyleSheetText", map[string]interface{}{"styleSheetId": id})
	assert.Equal(t, ".a { color: red; }", r.Get("result.text").String(), "expected rejected text to leave the sheet alone")
}

func TestSessionsDoNotShareIDs(t *testing.T) {
	f := setup(t)
	g := setup(t)
	r := f.call(t, "CSS.getAllStyleSheets", nil)
	id := r.Get("result.headers.0.styleSheetId").String()
	r = g.call(t, "CSS.getStyleSheetText", map[string]interface{}{"styleSheetId": id})
	assert.Equal(t, int64(protocol.NotFound.Code()), r.Get("error.code").Int())
	assert.NotEqual(t, f.sess.Token(), g.sess.Token())
}

func TestBreakpointsAndClose(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "webinspect.session")
	defer teardown()
	//
	f := setup(t)
	box := f.boxID(t)
	r := f.call(t, "DOMDebugger.setDOMBreakpoint", map[string]interface{}{"nodeId": box, "type": "attribute-modified"})
	require.False(t, r.Get("error").Exists(), r.Raw)
	f.call(t, "DOMDebugger.setXHRBreakpoint", map[string]interface{}{"url": "/api/"})
	f.transcript = nil
	f.page.SendXMLHttpRequest("http://example.org/api/items")
	f.call(t, "DOM.setAttributeValue", map[string]interface{}{"nodeId": box, "name": "title", "value": "x"})
	assert.Equal(t, []string{protocol.EventPaused, protocol.EventPaused, protocol.EventAttributeModified, "response"},
		f.transcript)
	//
	f.sess.Close()
	assert.Zero(t, f.agents.Len(), "expected agents to be unregistered")
	assert.Zero(t, f.sess.DOMDebugger().Table().Len(), "expected breakpoints to be cleared")
	f.transcript = nil
	f.page.SendXMLHttpRequest("http://example.org/api/items")
	assert.Empty(t, f.transcript)
	r = f.call(t, "DOM.getDocument", nil)
	assert.True(t, r.Get("error").Exists(), fmt.Sprintf("expected closed session to refuse commands, have %s", r.Raw))
}
