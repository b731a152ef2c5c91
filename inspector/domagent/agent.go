/*
Package domagent implements the DOM domain of an inspector session.

The agent answers DOM commands of a front end. Nodes are reported through
a node registry (package nodereg), edits are performed as undoable actions
on an edit history (package history), which the agent shares with the CSS
agent of the session.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/
package domagent

import (
	"errors"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/webinspect/dom"
	"github.com/npillmayer/webinspect/inspector/history"
	"github.com/npillmayer/webinspect/inspector/nodereg"
	"github.com/npillmayer/webinspect/inspector/protocol"
	"golang.org/x/net/html"
)

// tracer traces with key 'webinspect.domagent'.
func tracer() tracing.Trace {
	return tracing.Select("webinspect.domagent")
}

// Agent is the DOM agent of a session.
type Agent struct {
	page     *dom.Page
	nodes    *nodereg.Registry
	history  *history.History
	token    string
	objects  map[string]remoteNode
	groups   map[string][]string
	lastObj  int
	searches map[string][]*html.Node
	lastSrch int
}

type remoteNode struct {
	node  *html.Node
	group string
}

// New creates a DOM agent for a page. Object and search ids are prefixed
// with token.
func New(page *dom.Page, nodes *nodereg.Registry, h *history.History, token string) *Agent {
	a := &Agent{
		page:    page,
		nodes:   nodes,
		history: h,
		token:   token,
	}
	a.clear()
	return a
}

func (a *Agent) clear() {
	a.objects = make(map[string]remoteNode)
	a.groups = make(map[string][]string)
	a.searches = make(map[string][]*html.Node)
}

// Nodes returns the node registry of an agent.
func (a *Agent) Nodes() *nodereg.Registry {
	return a.nodes
}

// History returns the edit history of an agent.
func (a *Agent) History() *history.History {
	return a.history
}

// Reset forgets everything the front end knows.
func (a *Agent) Reset() {
	a.nodes.DiscardBindings()
	a.history.Reset()
	a.clear()
}

// nodeForID resolves a node id, optionally checking its type.
func (a *Agent) nodeForID(id protocol.NodeID, types ...html.NodeType) (*html.Node, error) {
	n, err := a.nodes.NodeForID(id)
	if err != nil {
		return nil, err
	}
	if len(types) == 0 {
		return n, nil
	}
	for _, t := range types {
		if n.Type == t {
			return n, nil
		}
	}
	return nil, protocol.Errorf(protocol.InvalidArgument, "node %d has wrong type for this operation", id)
}

// engineError maps errors of the live tree to protocol errors.
func engineError(err error) error {
	if err == nil {
		return nil
	}
	var perr *protocol.Error
	if errors.As(err, &perr) {
		return err
	}
	switch {
	case errors.Is(err, dom.ErrHierarchy), errors.Is(err, dom.ErrNotAChild), errors.Is(err, dom.ErrNodeType):
		return protocol.Errorf(protocol.InvalidArgument, "%v", err)
	}
	tracer().Errorf("domagent: live tree refused mutation: %v", err)
	return protocol.Errorf(protocol.Internal, "%v", err)
}

// --- Mutations -------------------------------------------------------------

// The agent is the mutation sink of its page. Mutations go to the node
// registry.

func (a *Agent) DidInsertDOMNode(node *html.Node) { a.nodes.DidInsertDOMNode(node) }
func (a *Agent) DidRemoveDOMNode(node *html.Node) { a.nodes.DidRemoveDOMNode(node) }
func (a *Agent) DidModifyDOMAttr(element *html.Node, name, value string) {
	a.nodes.DidModifyDOMAttr(element, name, value)
}
func (a *Agent) DidRemoveDOMAttr(element *html.Node, name string) {
	a.nodes.DidRemoveDOMAttr(element, name)
}
func (a *Agent) CharacterDataModified(node *html.Node) { a.nodes.CharacterDataModified(node) }
func (a *Agent) DidInvalidateStyleAttr(element *html.Node) { a.nodes.DidInvalidateStyleAttr(element) }
func (a *Agent) DidPushShadowRoot(host, root *html.Node) { a.nodes.DidPushShadowRoot(host, root) }
func (a *Agent) WillPopShadowRoot(host, root *html.Node) { a.nodes.WillPopShadowRoot(host, root) }
func (a *Agent) PseudoElementCreated(pseudo *html.Node) { a.nodes.PseudoElementCreated(pseudo) }
func (a *Agent) PseudoElementDestroyed(pseudo *html.Node) { a.nodes.PseudoElementDestroyed(pseudo) }
func (a *Agent) FrameDocumentUpdated(owner *html.Node) { a.nodes.FrameDocumentUpdated(owner) }

// DocumentUpdated resets the agent after navigation. The history is
// dropped as well, as its actions refer to nodes of the old document.
func (a *Agent) DocumentUpdated() {
	a.nodes.Reset()
	a.history.Reset()
	a.clear()
}
