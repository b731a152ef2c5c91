package domagent

import (
	"strings"

	"github.com/npillmayer/webinspect/dom/w3cdom"
	"github.com/npillmayer/webinspect/inspector/protocol"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// GetDocument returns the document, to the initial depth of the registry.
func (a *Agent) GetDocument() (*protocol.Node, error) {
	a.clear()
	return a.nodes.GetDocument()
}

// RequestChildNodes sends children of a node with setChildNodes events.
func (a *Agent) RequestChildNodes(id protocol.NodeID, depth int) error {
	return a.nodes.RequestChildNodes(id, depth)
}

func (a *Agent) perform(act *domAction) error {
	act.page = a.page
	if err := a.history.Perform(act); err != nil {
		return engineError(err)
	}
	tracer().P("action", act.Name()).Debugf("domagent: performed")
	return nil
}

// SetAttributeValue sets an attribute of an element.
func (a *Agent) SetAttributeValue(id protocol.NodeID, name, value string) error {
	el, err := a.nodeForID(id, html.ElementNode)
	if err != nil {
		return err
	}
	return a.perform(&domAction{kind: setAttributeAction, node: el, name: name, value: value})
}

// SetAttributesAsText sets attributes of an element from markup text, as
// in `a="1" b`. If name is given and not part of text, attribute name is
// removed.
func (a *Agent) SetAttributesAsText(id protocol.NodeID, text, name string) error {
	el, err := a.nodeForID(id, html.ElementNode)
	if err != nil {
		return err
	}
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	parsed, err := html.ParseFragment(strings.NewReader("<span "+text+"></span>"), context)
	if err != nil || len(parsed) != 1 || parsed[0].Type != html.ElementNode {
		return protocol.Errorf(protocol.InvalidArgument, "could not parse attributes %q", text)
	}
	found := false
	for _, attr := range parsed[0].Attr {
		found = found || attr.Key == name
		act := &domAction{kind: setAttributeAction, node: el, name: attr.Key, value: attr.Val}
		if err := a.perform(act); err != nil {
			return err
		}
	}
	if name != "" && !found {
		return a.RemoveAttribute(id, name)
	}
	return nil
}

// RemoveAttribute removes an attribute from an element.
func (a *Agent) RemoveAttribute(id protocol.NodeID, name string) error {
	el, err := a.nodeForID(id, html.ElementNode)
	if err != nil {
		return err
	}
	if _, ok := w3cdom.Attr(el, name); !ok {
		return nil
	}
	return a.perform(&domAction{kind: removeAttributeAction, node: el, name: name})
}

// SetNodeValue sets the text of a text or comment node.
func (a *Agent) SetNodeValue(id protocol.NodeID, value string) error {
	n, err := a.nodeForID(id, html.TextNode, html.CommentNode)
	if err != nil {
		return err
	}
	return a.perform(&domAction{kind: setNodeValueAction, node: n, value: value})
}

// RemoveNode removes a node from its parent.
func (a *Agent) RemoveNode(id protocol.NodeID) error {
	n, err := a.nodeForID(id)
	if err != nil {
		return err
	}
	if a.nodes.Tree().ParentOf(n) == nil || n.Parent == nil {
		return protocol.Errorf(protocol.InvalidArgument, "cannot remove node %d", id)
	}
	return a.perform(&domAction{kind: removeNodeAction, node: n})
}

// SetOuterHTML replaces a node by the nodes parsed from markup. It returns
// the id of the first new node, if the front end knows it.
func (a *Agent) SetOuterHTML(id protocol.NodeID, markup string) (protocol.NodeID, error) {
	n, err := a.nodeForID(id)
	if err != nil {
		return 0, err
	}
	if n.Type == html.DocumentNode {
		return 0, protocol.Errorf(protocol.InvalidArgument, "cannot replace the document")
	}
	act := &domAction{kind: setOuterHTMLAction, node: n, value: markup}
	if err := a.perform(act); err != nil {
		return 0, err
	}
	if len(act.newNodes) == 0 {
		return 0, nil
	}
	return a.nodes.ID(act.newNodes[0]), nil
}

// GetOuterHTML returns the markup of a node.
func (a *Agent) GetOuterHTML(id protocol.NodeID) (string, error) {
	n, err := a.nodeForID(id)
	if err != nil {
		return "", err
	}
	s, err := a.page.OuterHTML(n)
	return s, engineError(err)
}

// --- History ---------------------------------------------------------------

// Undo reverts the edits back to the last undoable state.
func (a *Agent) Undo() error {
	if err := a.history.Undo(); err != nil {
		return protocol.Errorf(protocol.KindOf(err), "%v", err)
	}
	return nil
}

// Redo re-applies the edits up to the next undoable state.
func (a *Agent) Redo() error {
	if err := a.history.Redo(); err != nil {
		return protocol.Errorf(protocol.KindOf(err), "%v", err)
	}
	return nil
}

// MarkUndoableState ends a group of edits.
func (a *Agent) MarkUndoableState() {
	a.history.MarkUndoableState()
}
