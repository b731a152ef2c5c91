package dom

import (
	"fmt"
	"strings"

	"github.com/npillmayer/webinspect/dom/style/cssom"
	"github.com/npillmayer/webinspect/dom/w3cdom"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// InsertBefore inserts node as a child of parent, in front of ref. If ref is
// nil, node is appended. A node which is attached elsewhere is removed from
// its old position first.
func (p *Page) InsertBefore(parent, node, ref *html.Node) error {
	if err := p.checkInsert(parent, node, ref); err != nil {
		return err
	}
	if node.Parent != nil {
		if err := p.RemoveChild(node); err != nil {
			return err
		}
	}
	p.hooks.WillInsertDOMNode(parent)
	parent.InsertBefore(node, ref)
	p.hooks.DidInsertDOMNode(node)
	if p.IsConnected(parent) {
		p.attachSubtree(node, true)
	}
	p.childrenChanged(parent)
	return nil
}

// AppendChild appends node as the last child of parent.
func (p *Page) AppendChild(parent, node *html.Node) error {
	return p.InsertBefore(parent, node, nil)
}

func (p *Page) checkInsert(parent, node, ref *html.Node) error {
	if parent == nil || node == nil || node == ref {
		return ErrHierarchy
	}
	if !w3cdom.IsContainer(parent) || node.Type == html.DocumentNode || p.outOfTree(node) {
		return ErrHierarchy
	}
	if _, isPseudo := p.pseudoHosts[parent]; isPseudo {
		return ErrHierarchy
	}
	for a := parent; a != nil; a = p.ParentOf(a) {
		if a == node {
			return ErrHierarchy
		}
	}
	if ref != nil && ref.Parent != parent {
		return ErrNotAChild
	}
	return nil
}

// RemoveChild removes a node from its parent.
func (p *Page) RemoveChild(node *html.Node) error {
	parent := node.Parent
	if parent == nil {
		return ErrDetached
	}
	connected := p.IsConnected(parent)
	p.hooks.WillRemoveDOMNode(node)
	p.hooks.DidRemoveDOMNode(node)
	parent.RemoveChild(node)
	if connected {
		p.detachSubtree(node)
	}
	p.childrenChanged(parent)
	return nil
}

func (p *Page) childrenChanged(parent *html.Node) {
	if parent != nil && parent.DataAtom == atom.Style {
		p.reloadSheet(parent)
	}
}

// SetAttribute sets an attribute of an element.
func (p *Page) SetAttribute(element *html.Node, name, value string) error {
	if element == nil || element.Type != html.ElementNode || p.outOfTree(element) {
		return ErrNodeType
	}
	if name == "" || strings.ContainsAny(name, " \t\n\f\r/>=\"'") {
		return fmt.Errorf("dom: invalid attribute name %q: %w", name, ErrNodeType)
	}
	old, _ := w3cdom.Attr(element, name)
	p.hooks.WillModifyDOMAttr(element, name, old, value)
	setAttr(element, name, value)
	p.hooks.DidModifyDOMAttr(element, name, value)
	return nil
}

// RemoveAttribute removes an attribute from an element. Removing an absent
// attribute is a no-op.
func (p *Page) RemoveAttribute(element *html.Node, name string) error {
	if element == nil || element.Type != html.ElementNode {
		return ErrNodeType
	}
	old, ok := w3cdom.Attr(element, name)
	if !ok {
		return nil
	}
	p.hooks.WillModifyDOMAttr(element, name, old, "")
	attrs := element.Attr[:0]
	for _, a := range element.Attr {
		if a.Namespace == "" && a.Key == name {
			continue
		}
		attrs = append(attrs, a)
	}
	element.Attr = attrs
	p.hooks.DidRemoveDOMAttr(element, name)
	return nil
}

func setAttr(element *html.Node, name, value string) {
	for i, a := range element.Attr {
		if a.Namespace == "" && a.Key == name {
			element.Attr[i].Val = value
			return
		}
	}
	element.Attr = append(element.Attr, html.Attribute{Key: name, Val: value})
}

// SetNodeValue replaces the character data of a text or comment node.
func (p *Page) SetNodeValue(node *html.Node, value string) error {
	if node == nil || (node.Type != html.TextNode && node.Type != html.CommentNode) {
		return ErrNodeType
	}
	node.Data = value
	p.hooks.CharacterDataModified(node)
	p.childrenChanged(node.Parent)
	return nil
}

// SetOuterHTML replaces a node by the nodes parsed from markup and returns
// the new nodes.
func (p *Page) SetOuterHTML(node *html.Node, markup string) ([]*html.Node, error) {
	parent := node.Parent
	if parent == nil {
		return nil, ErrDetached
	}
	if parent.Type == html.DocumentNode && node.Type == html.ElementNode && !p.IsShadowRoot(parent) {
		return nil, ErrHierarchy // document element
	}
	context := parent
	if parent.Type != html.ElementNode {
		context = &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	}
	nodes, err := html.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		return nil, fmt.Errorf("dom: cannot parse markup: %w", err)
	}
	for _, n := range nodes {
		if err := p.InsertBefore(parent, n, node); err != nil {
			return nil, err
		}
	}
	if err := p.RemoveChild(node); err != nil {
		return nil, err
	}
	return nodes, nil
}

// SetInlineStyleProperty changes a property of an element's inline style the
// way style recalculation does: the style attribute changes without
// attribute notifications, and hooks are told through DidInvalidateStyleAttr.
func (p *Page) SetInlineStyleProperty(element *html.Node, name, value string) error {
	if element == nil || element.Type != html.ElementNode {
		return ErrNodeType
	}
	current, _ := w3cdom.Attr(element, "style")
	props, err := p.parser.ParseDeclaration(current)
	if err != nil {
		return err
	}
	decl := cssom.NewStyleRule("", props).Style()
	if value == "" {
		decl.RemoveProperty(name)
	} else {
		decl.SetProperty(name, value, false)
	}
	setAttr(element, "style", decl.CSSText())
	p.hooks.DidInvalidateStyleAttr(element)
	return nil
}

// --- Shadow trees, generated content and frames ----------------------------

// AttachShadowRoot creates a new shadow root for a host element.
func (p *Page) AttachShadowRoot(host *html.Node) (*html.Node, error) {
	if host == nil || host.Type != html.ElementNode || p.outOfTree(host) {
		return nil, ErrNodeType
	}
	root := &html.Node{Type: html.DocumentNode}
	p.shadows[host] = append(p.shadows[host], root)
	p.shadowHosts[root] = host
	p.hooks.DidPushShadowRoot(host, root)
	return root, nil
}

// DetachShadowRoot removes a shadow root from its host.
func (p *Page) DetachShadowRoot(root *html.Node) error {
	host, ok := p.shadowHosts[root]
	if !ok {
		return ErrNotAChild
	}
	p.hooks.WillPopShadowRoot(host, root)
	if p.IsConnected(root) {
		p.detachSubtree(root)
	}
	roots := p.shadows[host]
	for i, r := range roots {
		if r == root {
			p.shadows[host] = append(roots[:i], roots[i+1:]...)
			break
		}
	}
	if len(p.shadows[host]) == 0 {
		delete(p.shadows, host)
	}
	delete(p.shadowHosts, root)
	return nil
}

// SetPseudoElement creates or destroys generated content of kind "before"
// or "after" for a host element.
func (p *Page) SetPseudoElement(host *html.Node, kind string, present bool) error {
	if host == nil || host.Type != html.ElementNode || p.outOfTree(host) {
		return ErrNodeType
	}
	if kind != "before" && kind != "after" {
		return fmt.Errorf("dom: unknown pseudo element %q: %w", kind, ErrNodeType)
	}
	pair := p.pseudos[host]
	current := pair.get(kind)
	if present == (current != nil) {
		return nil
	}
	if pair == nil {
		pair = &pseudoPair{}
		p.pseudos[host] = pair
	}
	if present {
		pseudo := &html.Node{Type: html.ElementNode, Data: kind}
		p.pseudoHosts[pseudo] = host
		p.pseudoKinds[pseudo] = kind
		if kind == "before" {
			pair.before = pseudo
		} else {
			pair.after = pseudo
		}
		p.hooks.PseudoElementCreated(pseudo)
		return nil
	}
	p.hooks.PseudoElementDestroyed(current)
	if kind == "before" {
		pair.before = nil
	} else {
		pair.after = nil
	}
	delete(p.pseudoHosts, current)
	delete(p.pseudoKinds, current)
	if pair.before == nil && pair.after == nil {
		delete(p.pseudos, host)
	}
	return nil
}

// SetContentDocument loads a new content document into a frame owner.
func (p *Page) SetContentDocument(owner *html.Node, markup string, url string) (*html.Node, error) {
	if !NodeIsFrameOwner(owner) {
		return nil, ErrNodeType
	}
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("dom: cannot parse document: %w", err)
	}
	connected := p.IsConnected(owner)
	if old := p.frames[owner]; old != nil && connected {
		p.detachSubtree(old)
	}
	p.setFrame(owner, doc, url)
	if connected {
		p.attachSubtree(doc, true)
	}
	p.hooks.FrameDocumentUpdated(owner)
	return doc, nil
}
