package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// NodeIsText is a predicate to match text-nodes of a DOM.
func NodeIsText(n *html.Node) bool {
	return n != nil && n.Type == html.TextNode
}

// NodeIsWhitespace is a predicate to match text-nodes consisting of HTML
// whitespace only.
func NodeIsWhitespace(n *html.Node) bool {
	return NodeIsText(n) && strings.Trim(n.Data, " \t\n\f\r") == ""
}

// NodeIsStyleSheetOwner is a predicate to match <style> elements and
// <link rel="stylesheet"> elements.
func NodeIsStyleSheetOwner(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	switch n.DataAtom {
	case atom.Style:
		return true
	case atom.Link:
		for _, a := range n.Attr {
			if a.Key == "rel" {
				for _, rel := range strings.Fields(strings.ToLower(a.Val)) {
					if rel == "stylesheet" {
						return true
					}
				}
			}
		}
	}
	return false
}

// NodeIsFrameOwner is a predicate to match elements which may embed a
// content document.
func NodeIsFrameOwner(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	return n.DataAtom == atom.Iframe || n.DataAtom == atom.Frame || n.DataAtom == atom.Object
}

// TextContent concatenates the data of all text nodes below n.
func TextContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			if ch.Type == html.TextNode {
				b.WriteString(ch.Data)
			} else {
				collect(ch)
			}
		}
	}
	collect(n)
	return b.String()
}

// findElement returns the first element of type a below n, in document order.
func findElement(n *html.Node, a atom.Atom) *html.Node {
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		if ch.Type == html.ElementNode && ch.DataAtom == a {
			return ch
		}
		if found := findElement(ch, a); found != nil {
			return found
		}
	}
	return nil
}
