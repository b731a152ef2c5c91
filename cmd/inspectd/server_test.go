package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/webinspect/dom"
	"github.com/npillmayer/webinspect/inspector/instrument"
	"github.com/npillmayer/webinspect/inspector/protocol"
	"github.com/npillmayer/webinspect/inspector/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestServeStdio(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "webinspect.inspectd")
	defer teardown()
	//
	page, err := dom.NewPage(`<html><body><p id="x">x</p></body></html>`, "test:")
	require.NoError(t, err)
	agents := instrument.NewRegistry()
	srv := &server{
		page:   page,
		agents: agents,
		open: func(page *dom.Page, agents *instrument.Registry, fe protocol.Frontend) *session.Session {
			return session.New(page, agents, fe)
		},
	}
	in := strings.NewReader(`{"id":1,"method":"DOM.getDocument"}` + "\n\n" +
		`{"id":2,"method":"DOM.querySelector","params":{"nodeId":1,"selector":"#x"}}` + "\n" +
		`{"id":3,"method":"DOM.setAttributeValue","params":{"nodeId":4711,"name":"a","value":"b"}}` + "\n")
	var out bytes.Buffer
	require.NoError(t, srv.serve(context.Background(), newStdioConn(in, &out)))
	var responses, events []gjson.Result
	for _, line := range strings.Split(strings.TrimSpace(out.String()), "\n") {
		msg := gjson.Parse(line)
		if msg.Get("method").Exists() {
			events = append(events, msg)
		} else {
			responses = append(responses, msg)
		}
	}
	require.Len(t, responses, 3)
	assert.Equal(t, int64(1), responses[0].Get("result.root.nodeId").Int())
	assert.NotZero(t, responses[1].Get("result.nodeId").Int())
	assert.Equal(t, int64(protocol.NotFound.Code()), responses[2].Get("error.code").Int())
	assert.NotEmpty(t, events, "expected setChildNodes events for the selector query")
	assert.Zero(t, agents.Len(), "expected session to be closed at end of input")
}
