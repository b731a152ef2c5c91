/*
Package session binds the agents of an inspector to a page and speaks the
command/event protocol with a front end.

A session owns a node registry, an edit history shared by its DOM and CSS
agents, and a DOM debugger. Commands arrive as JSON messages

	{"id": 7, "method": "DOM.getDocument", "params": {}}

and are answered with either a result or an error object. Events produced
while a command executes reach the front end before the command's
response.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/
package session

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/webinspect/dom"
	"github.com/npillmayer/webinspect/inspector/breakpoints"
	"github.com/npillmayer/webinspect/inspector/cssagent"
	"github.com/npillmayer/webinspect/inspector/domagent"
	"github.com/npillmayer/webinspect/inspector/history"
	"github.com/npillmayer/webinspect/inspector/instrument"
	"github.com/npillmayer/webinspect/inspector/nodereg"
	"github.com/npillmayer/webinspect/inspector/protocol"
	"github.com/tidwall/gjson"
)

// tracer traces with key 'webinspect.session'.
func tracer() tracing.Trace {
	return tracing.Select("webinspect.session")
}

// Session is an inspector session for a page.
type Session struct {
	mu        sync.Mutex
	token     string
	page      *dom.Page
	agents    *instrument.Registry
	frontend  protocol.Frontend
	history   *history.History
	nodes     *nodereg.Registry
	dom       *domagent.Agent
	css       *cssagent.Agent
	debugger  *breakpoints.Agent
	handlers  protocol.HandlerTable
	closed    bool
	depth     int
	indent    string
	pauseSink breakpoints.Debugger
}

// Option configures a session.
type Option func(*Session)

// WithDebugger sets the debugger breakpoints pause. Without it, pauses
// are reported to the front end as Debugger.paused events.
func WithDebugger(d breakpoints.Debugger) Option {
	return func(s *Session) {
		s.pauseSink = d
	}
}

// WithInitialDepth sets the depth of the tree returned by DOM.getDocument.
func WithInitialDepth(depth int) Option {
	return func(s *Session) {
		s.depth = depth
	}
}

// WithIndent sets the indentation of properties written into empty rules.
func WithIndent(indent string) Option {
	return func(s *Session) {
		s.indent = indent
	}
}

// New creates a session for a page and registers its agents for the
// page's instrumentation. Events go to frontend.
func New(page *dom.Page, agents *instrument.Registry, frontend protocol.Frontend, opts ...Option) *Session {
	s := &Session{
		token:    uuid.NewString(),
		page:     page,
		agents:   agents,
		frontend: frontend,
		history:  history.New(),
		handlers: make(protocol.HandlerTable),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.pauseSink == nil {
		s.pauseSink = &PauseReporter{Frontend: frontend}
	}
	s.nodes = nodereg.New(page, frontend, page.Post)
	if s.depth > 0 {
		s.nodes.SetInitialDepth(s.depth)
	}
	s.dom = domagent.New(page, s.nodes, s.history, s.token)
	s.css = cssagent.New(page, s.nodes, s.history, frontend, s.token)
	if s.indent != "" {
		s.css.SetIndent(s.indent)
	}
	s.debugger = breakpoints.NewAgent(page, s.nodes, s.pauseSink)
	instrument.Install(agents, page)
	agents.Update(page, func(a *instrument.Agents) {
		a.DOM = s.dom
		a.CSS = s.css
		a.DOMDebugger = s.debugger
		a.Runtime = s.debugger
	})
	s.registerHandlers()
	tracer().P("session", s.token).Infof("session: opened for %s", page.URL())
	return s
}

// Token returns the unique token of a session. Ids handed out by the
// session are prefixed with it.
func (s *Session) Token() string {
	return s.token
}

// DOM returns the DOM agent.
func (s *Session) DOM() *domagent.Agent {
	return s.dom
}

// CSS returns the CSS agent.
func (s *Session) CSS() *cssagent.Agent {
	return s.css
}

// DOMDebugger returns the breakpoint agent.
func (s *Session) DOMDebugger() *breakpoints.Agent {
	return s.debugger
}

// Handlers returns the command table of a session. Clients may register
// additional commands.
func (s *Session) Handlers() protocol.HandlerTable {
	return s.handlers
}

// Close ends a session. Its agents are removed from the instrumentation,
// the front end's bindings are discarded and all breakpoints cleared.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.agents.Unregister(s.page)
	s.css.Disable()
	s.nodes.DiscardBindings()
	s.debugger.Clear()
	s.history.Reset()
	tracer().P("session", s.token).Infof("session: closed")
}

// Dispatch executes a command message and returns the encoded response.
// Dispatch never panics on behalf of a handler; panics are reported as
// internal errors.
func (s *Session) Dispatch(ctx context.Context, msg []byte) []byte {
	resp := s.dispatch(ctx, msg)
	out, err := protocol.Encode(resp)
	if err != nil {
		tracer().Errorf("session: %v", err)
		out, _ = protocol.Encode(&protocol.Response{
			ID:    resp.ID,
			Error: protocol.NewErrorObject(protocol.Errorf(protocol.Internal, "%v", err)),
		})
	}
	return out
}

func (s *Session) dispatch(ctx context.Context, msg []byte) *protocol.Response {
	if !gjson.ValidBytes(msg) {
		return errorResponse(0, protocol.Errorf(protocol.ParseError, "message is not well-formed JSON"))
	}
	envelope := gjson.ParseBytes(msg)
	id := envelope.Get("id").Int()
	method := envelope.Get("method")
	if method.Type != gjson.String {
		return errorResponse(id, protocol.Errorf(protocol.InvalidArgument, "message has no method"))
	}
	h, err := s.handlers.Lookup(method.String())
	if err != nil {
		return errorResponse(id, err)
	}
	var params json.RawMessage
	if p := envelope.Get("params"); p.Exists() {
		params = json.RawMessage(p.Raw)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errorResponse(id, protocol.Errorf(protocol.Internal, "session is closed"))
	}
	if err := ctx.Err(); err != nil {
		return errorResponse(id, protocol.Errorf(protocol.Internal, "%v", err))
	}
	tracer().P("method", method.String()).Debugf("session: dispatch #%d", id)
	result, err := s.call(ctx, h, params)
	s.page.RunPending() // deferred events precede the response
	if err != nil {
		tracer().P("method", method.String()).Debugf("session: #%d failed: %v", id, err)
		return errorResponse(id, err)
	}
	if result == nil {
		result = protocol.Empty{}
	}
	return &protocol.Response{ID: id, Result: result}
}

func (s *Session) call(ctx context.Context, h protocol.Handler, params json.RawMessage) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			tracer().Errorf("session: handler panicked: %v", r)
			result, err = nil, protocol.Errorf(protocol.Internal, "internal error: %v", r)
		}
	}()
	return h(ctx, params)
}

func errorResponse(id int64, err error) *protocol.Response {
	return &protocol.Response{ID: id, Error: protocol.NewErrorObject(err)}
}
