/*
Package w3cdom defines the narrow view of a live document the inspector works with.

The inspector never owns nodes. It navigates the engine's tree through interface Tree,
which hides frame boundaries, shadow roots, generated content and the policy for
skipping whitespace-only text. Nodes are plain *html.Node values, used as lookup keys.

See also https://www.w3schools.com/XML/dom_intro.asp

Status

Early draft, API may change frequently. Please stay patient.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package w3cdom

import (
	"strings"

	"golang.org/x/net/html"
)

// Tree is the engine-side collaborator for walking a live document.
//
// Children as seen through Tree are "inner" children: the content document of
// a frame owner is its only child, and whitespace-only text nodes may be
// skipped, depending on the engine's policy.
type Tree interface {
	ParentOf(*html.Node) *html.Node             // inner parent, crossing frame and shadow boundaries
	FirstChild(*html.Node) *html.Node           // first inner child or nil
	NextSibling(*html.Node) *html.Node          // next inner sibling or nil
	PreviousSibling(*html.Node) *html.Node      // previous inner sibling or nil
	ContentDocument(*html.Node) *html.Node      // document node embedded by a frame owner
	ShadowRoots(*html.Node) []*html.Node        // shadow roots attached to a host
	PseudoElements(*html.Node) []*html.Node     // generated ::before/::after nodes, in that order
	PseudoType(*html.Node) string               // "before", "after" or ""
	IsShadowRoot(*html.Node) bool               // is this node a shadow root?
	IsWhitespace(*html.Node) bool               // is this an ignorable whitespace text node?
	DocumentURL(*html.Node) string              // URL of a document node
	Document() *html.Node                       // root of the inspected document
}

// ChildCount returns the number of inner children of n.
func ChildCount(t Tree, n *html.Node) int {
	count := 0
	for ch := t.FirstChild(n); ch != nil; ch = t.NextSibling(ch) {
		count++
	}
	return count
}

// IsContainer is true for nodes which may carry children.
func IsContainer(n *html.Node) bool {
	return n.Type == html.ElementNode || n.Type == html.DocumentNode
}

// NodeType returns the W3C numeric node type.
func NodeType(t Tree, n *html.Node) int {
	switch n.Type {
	case html.ElementNode:
		return 1
	case html.TextNode:
		return 3
	case html.CommentNode:
		return 8
	case html.DocumentNode:
		if t.IsShadowRoot(n) {
			return 11
		}
		return 9
	case html.DoctypeNode:
		return 10
	}
	return 0
}

// NodeName returns the W3C node name for n.
func NodeName(t Tree, n *html.Node) string {
	switch n.Type {
	case html.ElementNode:
		if p := t.PseudoType(n); p != "" {
			return "::" + p
		}
		return strings.ToUpper(n.Data)
	case html.TextNode:
		return "#text"
	case html.CommentNode:
		return "#comment"
	case html.DocumentNode:
		if t.IsShadowRoot(n) {
			return "#document-fragment"
		}
		return "#document"
	case html.DoctypeNode:
		return n.Data
	}
	return ""
}

// Attr returns the value of attribute key and whether it is present.
func Attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}
