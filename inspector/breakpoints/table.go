package breakpoints

import (
	"github.com/npillmayer/webinspect/dom/w3cdom"
	"github.com/npillmayer/webinspect/inspector/protocol"
	"golang.org/x/net/html"
)

// Kind is a type of DOM breakpoint.
type Kind int

// DOM breakpoint kinds. The values are bit positions in a breakpoint mask.
const (
	SubtreeModified   Kind = iota // insertion or removal of a descendant; inherited by descendants
	AttributeModified             // attribute change, including inline style invalidation
	NodeRemoved                   // removal of the node itself
)

func (k Kind) String() string {
	switch k {
	case SubtreeModified:
		return "subtree-modified"
	case AttributeModified:
		return "attribute-modified"
	case NodeRemoved:
		return "node-removed"
	}
	return "unknown"
}

// ParseKind reads a breakpoint kind from its protocol name.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "subtree-modified":
		return SubtreeModified, nil
	case "attribute-modified":
		return AttributeModified, nil
	case "node-removed":
		return NodeRemoved, nil
	}
	return 0, protocol.Errorf(protocol.InvalidArgument, "unknown DOM breakpoint type %q", s)
}

// derivedShift separates the bit plane of breakpoints set on a node (root
// bits) from the plane of breakpoints inherited from an ancestor (derived
// bits).
const derivedShift = 16

const inheritable uint32 = 1 << SubtreeModified

func (k Kind) bit() uint32 {
	return 1 << uint(k)
}

func (k Kind) inheritable() bool {
	return k.bit()&inheritable != 0
}

// Table holds the breakpoint masks of nodes. Nodes without breakpoints have
// no entry.
type Table struct {
	tree  w3cdom.Tree
	masks map[*html.Node]uint32
}

// NewTable creates an empty breakpoint table for a tree.
func NewTable(tree w3cdom.Tree) *Table {
	return &Table{tree: tree, masks: make(map[*html.Node]uint32)}
}

// Len returns the number of nodes with a non-zero mask.
func (t *Table) Len() int {
	return len(t.masks)
}

// Mask returns the breakpoint mask of a node.
func (t *Table) Mask(node *html.Node) uint32 {
	return t.masks[node]
}

func (t *Table) store(node *html.Node, mask uint32) {
	if mask == 0 {
		delete(t.masks, node)
		return
	}
	t.masks[node] = mask
}

// Has is true if a breakpoint of kind is set on node or inherited from
// an ancestor.
func (t *Table) Has(node *html.Node, kind Kind) bool {
	root := kind.bit()
	return t.masks[node]&(root|root<<derivedShift) != 0
}

// Set sets a breakpoint on a node. Inheritable breakpoints are propagated
// down the tree, up to nodes which already carry them.
func (t *Table) Set(node *html.Node, kind Kind) {
	root := kind.bit()
	t.store(node, t.masks[node]|root)
	if root&inheritable != 0 {
		for ch := t.tree.FirstChild(node); ch != nil; ch = t.tree.NextSibling(ch) {
			t.updateSubtree(ch, root, true)
		}
	}
}

// Remove removes a breakpoint from a node. Descendants keep an
// inheritable breakpoint if the node still inherits it from an ancestor;
// below nodes with a breakpoint of their own, nothing changes.
func (t *Table) Remove(node *html.Node, kind Kind) {
	root := kind.bit()
	mask := t.masks[node] &^ root
	t.store(node, mask)
	if root&inheritable != 0 && mask&(root<<derivedShift) == 0 {
		for ch := t.tree.FirstChild(node); ch != nil; ch = t.tree.NextSibling(ch) {
			t.updateSubtree(ch, root, false)
		}
	}
}

func (t *Table) updateSubtree(node *html.Node, rootMask uint32, set bool) {
	old := t.masks[node]
	derived := rootMask << derivedShift
	var mask uint32
	if set {
		mask = old | derived
	} else {
		mask = old &^ derived
	}
	t.store(node, mask)
	if set && mask == old {
		return // subtree carries the bits already
	}
	next := rootMask &^ mask // stop at nodes with a breakpoint of their own
	if next == 0 {
		return
	}
	for ch := t.tree.FirstChild(node); ch != nil; ch = t.tree.NextSibling(ch) {
		t.updateSubtree(ch, next, set)
	}
}

// DidInsert lets an inserted node inherit breakpoints from its new parent.
func (t *Table) DidInsert(node *html.Node) {
	if len(t.masks) == 0 {
		return
	}
	mask := t.masks[t.tree.ParentOf(node)]
	if m := (mask | mask>>derivedShift) & inheritable; m != 0 {
		t.updateSubtree(node, m, true)
	}
}

// DidRemove drops the breakpoints of a subtree which is about to be
// removed.
func (t *Table) DidRemove(node *html.Node) {
	if len(t.masks) == 0 {
		return
	}
	delete(t.masks, node)
	stack := []*html.Node{t.tree.FirstChild(node)}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == nil {
			continue
		}
		delete(t.masks, n)
		stack = append(stack, t.tree.FirstChild(n), t.tree.NextSibling(n))
	}
}

// Owner walks up from node to the closest node which has a breakpoint of
// kind set on itself.
func (t *Table) Owner(node *html.Node, kind Kind) *html.Node {
	owner := node
	for t.masks[owner]&kind.bit() == 0 {
		parent := t.tree.ParentOf(owner)
		if parent == nil {
			break
		}
		owner = parent
	}
	return owner
}

// Clear drops all breakpoints.
func (t *Table) Clear() {
	t.masks = make(map[*html.Node]uint32)
}
