package nodereg

import (
	"github.com/npillmayer/webinspect/dom/w3cdom"
	"github.com/npillmayer/webinspect/inspector/protocol"
	"golang.org/x/net/html"
)

// The methods in this file are called for mutations of the live tree.
// Nothing is reported for nodes the front end does not know.

// DidInsertDOMNode reports a node which has been inserted.
func (r *Registry) DidInsertDOMNode(node *html.Node) {
	if r.tree.IsWhitespace(node) {
		return
	}
	// node may be a subtree we have seen before; its old bindings are stale
	r.unbindAll(node)
	parent := r.tree.ParentOf(node)
	parentID := r.ID(parent)
	if parentID == 0 {
		return
	}
	if !r.requested[parentID] {
		r.emit(protocol.EventChildNodeCountUpdated, protocol.ChildNodeCountUpdatedParams{
			NodeID:         parentID,
			ChildNodeCount: w3cdom.ChildCount(r.tree, parent),
		})
		return
	}
	prevID := r.ID(r.tree.PreviousSibling(node))
	value := r.BuildObjectForNode(node, 0, r.main)
	tracer().P("node", value.NodeID).Debugf("nodereg: inserted into %d after %d", parentID, prevID)
	r.emit(protocol.EventChildNodeInserted, protocol.ChildNodeInsertedParams{
		ParentNodeID:   parentID,
		PreviousNodeID: prevID,
		Node:           value,
	})
}

// DidRemoveDOMNode reports a node which is about to be removed. The node is
// still attached to its parent.
func (r *Registry) DidRemoveDOMNode(node *html.Node) {
	if r.tree.IsWhitespace(node) {
		return
	}
	parent := r.tree.ParentOf(node)
	parentID := r.ID(parent)
	if parentID == 0 {
		return
	}
	if !r.requested[parentID] {
		r.emit(protocol.EventChildNodeCountUpdated, protocol.ChildNodeCountUpdatedParams{
			NodeID:         parentID,
			ChildNodeCount: w3cdom.ChildCount(r.tree, parent) - 1,
		})
	} else {
		r.emit(protocol.EventChildNodeRemoved, protocol.ChildNodeRemovedParams{
			ParentNodeID: parentID,
			NodeID:       r.ID(node),
		})
	}
	r.Unbind(node, r.main)
}

// DidModifyDOMAttr reports a changed attribute.
func (r *Registry) DidModifyDOMAttr(element *html.Node, name, value string) {
	id := r.ID(element)
	if id == 0 {
		return
	}
	if r.listener != nil {
		r.listener.DidModifyDOMAttr(element)
	}
	r.emit(protocol.EventAttributeModified, protocol.AttributeModifiedParams{
		NodeID: id,
		Name:   name,
		Value:  value,
	})
}

// DidRemoveDOMAttr reports a removed attribute.
func (r *Registry) DidRemoveDOMAttr(element *html.Node, name string) {
	id := r.ID(element)
	if id == 0 {
		return
	}
	if r.listener != nil {
		r.listener.DidModifyDOMAttr(element)
	}
	r.emit(protocol.EventAttributeRemoved, protocol.AttributeRemovedParams{NodeID: id, Name: name})
}

// CharacterDataModified reports changed text.
func (r *Registry) CharacterDataModified(node *html.Node) {
	id := r.ID(node)
	if id == 0 {
		return
	}
	r.emit(protocol.EventCharacterDataModified, protocol.CharacterDataModifiedParams{
		NodeID:        id,
		CharacterData: node.Data,
	})
}

// DidInvalidateStyleAttr collects elements whose inline style has changed
// without an attribute mutation. They are reported together, from a
// deferred task.
func (r *Registry) DidInvalidateStyleAttr(element *html.Node) {
	if r.ID(element) == 0 {
		return
	}
	r.invalidated.Add(element)
}

// FlushInvalidated reports collected style invalidations now.
func (r *Registry) FlushInvalidated() {
	r.invalidated.Flush()
}

func (r *Registry) flushInvalidated(elements []*html.Node) {
	ids := make([]protocol.NodeID, 0, len(elements))
	for _, el := range elements {
		if id := r.ID(el); id != 0 { // may have been unbound meanwhile
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return
	}
	r.emit(protocol.EventInlineStyleInvalidated, protocol.InlineStyleInvalidatedParams{NodeIDs: ids})
}

// DidPushShadowRoot reports a shadow root attached to a known host.
func (r *Registry) DidPushShadowRoot(host, root *html.Node) {
	hostID := r.ID(host)
	if hostID == 0 {
		return
	}
	r.emit(protocol.EventShadowRootPushed, protocol.ShadowRootPushedParams{
		HostID: hostID,
		Root:   r.BuildObjectForNode(root, 0, r.main),
	})
}

// WillPopShadowRoot reports a shadow root about to be detached.
func (r *Registry) WillPopShadowRoot(host, root *html.Node) {
	hostID, rootID := r.ID(host), r.ID(root)
	if hostID == 0 || rootID == 0 {
		return
	}
	r.emit(protocol.EventShadowRootPopped, protocol.ShadowRootPoppedParams{HostID: hostID, RootID: rootID})
	r.Unbind(root, r.main)
}

// PseudoElementCreated reports new generated content of a known element.
func (r *Registry) PseudoElementCreated(pseudo *html.Node) {
	parent := r.tree.ParentOf(pseudo)
	parentID := r.ID(parent)
	if parentID == 0 {
		return
	}
	r.PushChildNodesToFrontend(parentID, 1)
	r.emit(protocol.EventPseudoElementAdded, protocol.PseudoElementAddedParams{
		ParentID:      parentID,
		PseudoElement: r.BuildObjectForNode(pseudo, 0, r.main),
	})
}

// PseudoElementDestroyed reports generated content about to go away.
func (r *Registry) PseudoElementDestroyed(pseudo *html.Node) {
	pseudoID := r.ID(pseudo)
	if pseudoID == 0 {
		return
	}
	parentID := r.ID(r.tree.ParentOf(pseudo))
	r.Unbind(pseudo, r.main)
	r.emit(protocol.EventPseudoElementRemoved, protocol.PseudoElementRemovedParams{
		ParentID:        parentID,
		PseudoElementID: pseudoID,
	})
}

// FrameDocumentUpdated re-sends a frame owner after its content document
// has been replaced.
func (r *Registry) FrameDocumentUpdated(owner *html.Node) {
	ownerID := r.ID(owner)
	if ownerID == 0 {
		return
	}
	parent := r.tree.ParentOf(owner)
	parentID := r.ID(parent)
	r.emit(protocol.EventChildNodeRemoved, protocol.ChildNodeRemovedParams{
		ParentNodeID: parentID,
		NodeID:       ownerID,
	})
	r.Unbind(owner, r.main)
	value := r.BuildObjectForNode(owner, 0, r.main)
	r.emit(protocol.EventChildNodeInserted, protocol.ChildNodeInsertedParams{
		ParentNodeID:   parentID,
		PreviousNodeID: r.ID(r.tree.PreviousSibling(owner)),
		Node:           value,
	})
}
