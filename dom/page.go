package dom

import (
	"fmt"
	"strings"

	"github.com/npillmayer/webinspect/dom/style/cssom"
	"github.com/npillmayer/webinspect/dom/style/cssom/douceuradapter"
	"github.com/npillmayer/webinspect/dom/w3cdom"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Page is a live document, together with embedded content documents,
// shadow trees, generated content and style sheets.
type Page struct {
	doc            *html.Node
	url            string
	hooks          Hooks
	parser         cssom.Parser
	loader         ResourceLoader
	skipWhitespace bool
	frames         map[*html.Node]*html.Node // frame owner → content document
	frameOwners    map[*html.Node]*html.Node // content document → frame owner
	docURLs        map[*html.Node]string
	shadows        map[*html.Node][]*html.Node // host → shadow roots
	shadowHosts    map[*html.Node]*html.Node
	pseudos        map[*html.Node]*pseudoPair // host → generated content
	pseudoHosts    map[*html.Node]*html.Node
	pseudoKinds    map[*html.Node]string
	sheets         []*sheetEntry
	sheetByOwner   map[*html.Node]*sheetEntry
	inspectorOwner map[*html.Node]bool
	tasks          []func()
	listeners      map[*html.Node]map[string][]func()
	timers         map[int]*timer
	lastTimer      int
}

type pseudoPair struct {
	before, after *html.Node
}

func (pp *pseudoPair) get(kind string) *html.Node {
	if pp == nil {
		return nil
	}
	if kind == "before" {
		return pp.before
	}
	return pp.after
}

// Option configures a page.
type Option func(*Page)

// WithLoader sets the loader for linked resources.
func WithLoader(l ResourceLoader) Option {
	return func(p *Page) {
		p.loader = l
	}
}

// WithParser sets the CSS parser for the style sheets of a page.
func WithParser(parser cssom.Parser) Option {
	return func(p *Page) {
		p.parser = parser
	}
}

// WithHooks sets the hooks to call for mutations. Hooks may be changed
// later with SetHooks.
func WithHooks(h Hooks) Option {
	return func(p *Page) {
		p.hooks = h
	}
}

// SkipWhitespace tells the tree view of a page to hide (or show) text nodes
// consisting of whitespace only. The default is to hide them.
func SkipWhitespace(skip bool) Option {
	return func(p *Page) {
		p.skipWhitespace = skip
	}
}

// NewPage parses an HTML document and creates a page for it.
func NewPage(markup string, url string, opts ...Option) (*Page, error) {
	p := &Page{
		hooks:          NopHooks{},
		skipWhitespace: true,
		listeners:      make(map[*html.Node]map[string][]func()),
		timers:         make(map[int]*timer),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.parser == nil {
		p.parser = douceuradapter.New()
	}
	if p.loader == nil {
		p.loader = MapLoader{}
	}
	if err := p.load(markup, url); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Page) load(markup string, url string) error {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return fmt.Errorf("dom: cannot parse document: %w", err)
	}
	p.doc = doc
	p.url = url
	p.frames = make(map[*html.Node]*html.Node)
	p.frameOwners = make(map[*html.Node]*html.Node)
	p.docURLs = map[*html.Node]string{doc: url}
	p.shadows = make(map[*html.Node][]*html.Node)
	p.shadowHosts = make(map[*html.Node]*html.Node)
	p.pseudos = make(map[*html.Node]*pseudoPair)
	p.pseudoHosts = make(map[*html.Node]*html.Node)
	p.pseudoKinds = make(map[*html.Node]string)
	p.sheets = nil
	p.sheetByOwner = make(map[*html.Node]*sheetEntry)
	p.inspectorOwner = make(map[*html.Node]bool)
	p.attachSubtree(doc, false)
	tracer().Debugf("dom: loaded document %q with %d style sheets", url, len(p.sheets))
	return nil
}

// Navigate replaces the document of a page. Hooks are informed with
// DocumentUpdated.
func (p *Page) Navigate(markup string, url string) error {
	if err := p.load(markup, url); err != nil {
		return err
	}
	p.listeners = make(map[*html.Node]map[string][]func())
	p.hooks.DocumentUpdated(p.doc)
	return nil
}

// SetHooks replaces the hooks of a page. nil installs NopHooks.
func (p *Page) SetHooks(h Hooks) {
	if h == nil {
		h = NopHooks{}
	}
	p.hooks = h
}

// URL returns the URL of the main document.
func (p *Page) URL() string {
	return p.url
}

// Parser returns the CSS parser of a page.
func (p *Page) Parser() cssom.Parser {
	return p.parser
}

// OuterHTML serializes a node and its subtree.
func (p *Page) OuterHTML(n *html.Node) (string, error) {
	var b strings.Builder
	if err := html.Render(&b, n); err != nil {
		return "", fmt.Errorf("dom: cannot render node: %w", err)
	}
	return b.String(), nil
}

// OwnerDocument returns the document (or shadow root) a node belongs to.
func (p *Page) OwnerDocument(n *html.Node) *html.Node {
	if host, ok := p.pseudoHosts[n]; ok {
		n = host
	}
	for n.Parent != nil {
		n = n.Parent
	}
	if n.Type != html.DocumentNode {
		return nil
	}
	if host, ok := p.shadowHosts[n]; ok {
		return p.OwnerDocument(host)
	}
	return n
}

// IsConnected is true if a node is part of the document tree of the page,
// possibly through frame and shadow boundaries.
func (p *Page) IsConnected(n *html.Node) bool {
	for n != nil {
		if n == p.doc {
			return true
		}
		n = p.ParentOf(n)
	}
	return false
}

// --- Tree view -------------------------------------------------------------

var _ w3cdom.Tree = (*Page)(nil)

// Document is part of interface w3cdom.Tree.
func (p *Page) Document() *html.Node {
	return p.doc
}

// ParentOf is part of interface w3cdom.Tree.
func (p *Page) ParentOf(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	if owner, ok := p.frameOwners[n]; ok {
		return owner
	}
	if host, ok := p.shadowHosts[n]; ok {
		return host
	}
	if host, ok := p.pseudoHosts[n]; ok {
		return host
	}
	return n.Parent
}

// FirstChild is part of interface w3cdom.Tree.
func (p *Page) FirstChild(n *html.Node) *html.Node {
	if doc, ok := p.frames[n]; ok {
		return doc
	}
	ch := n.FirstChild
	for ch != nil && p.IsWhitespace(ch) {
		ch = ch.NextSibling
	}
	return ch
}

// NextSibling is part of interface w3cdom.Tree.
func (p *Page) NextSibling(n *html.Node) *html.Node {
	if p.outOfTree(n) {
		return nil
	}
	ch := n.NextSibling
	for ch != nil && p.IsWhitespace(ch) {
		ch = ch.NextSibling
	}
	return ch
}

// PreviousSibling is part of interface w3cdom.Tree.
func (p *Page) PreviousSibling(n *html.Node) *html.Node {
	if p.outOfTree(n) {
		return nil
	}
	ch := n.PrevSibling
	for ch != nil && p.IsWhitespace(ch) {
		ch = ch.PrevSibling
	}
	return ch
}

func (p *Page) outOfTree(n *html.Node) bool {
	_, isDoc := p.frameOwners[n]
	_, isShadow := p.shadowHosts[n]
	_, isPseudo := p.pseudoHosts[n]
	return isDoc || isShadow || isPseudo
}

// ContentDocument is part of interface w3cdom.Tree.
func (p *Page) ContentDocument(n *html.Node) *html.Node {
	return p.frames[n]
}

// ShadowRoots is part of interface w3cdom.Tree.
func (p *Page) ShadowRoots(n *html.Node) []*html.Node {
	roots := p.shadows[n]
	if len(roots) == 0 {
		return nil
	}
	r := make([]*html.Node, len(roots))
	copy(r, roots)
	return r
}

// PseudoElements is part of interface w3cdom.Tree.
func (p *Page) PseudoElements(n *html.Node) []*html.Node {
	pair := p.pseudos[n]
	if pair == nil {
		return nil
	}
	var r []*html.Node
	if pair.before != nil {
		r = append(r, pair.before)
	}
	if pair.after != nil {
		r = append(r, pair.after)
	}
	return r
}

// PseudoType is part of interface w3cdom.Tree.
func (p *Page) PseudoType(n *html.Node) string {
	return p.pseudoKinds[n]
}

// IsShadowRoot is part of interface w3cdom.Tree.
func (p *Page) IsShadowRoot(n *html.Node) bool {
	_, ok := p.shadowHosts[n]
	return ok
}

// IsWhitespace is part of interface w3cdom.Tree.
func (p *Page) IsWhitespace(n *html.Node) bool {
	return p.skipWhitespace && NodeIsWhitespace(n)
}

// DocumentURL is part of interface w3cdom.Tree.
func (p *Page) DocumentURL(n *html.Node) string {
	return p.docURLs[n]
}

// walk visits a subtree in document order, descending into content
// documents and shadow roots. It reads side structures after calling
// visit, so visit may create them.
func (p *Page) walk(n *html.Node, visit func(*html.Node)) {
	visit(n)
	if doc, ok := p.frames[n]; ok {
		p.walk(doc, visit)
	}
	for _, root := range p.shadows[n] {
		p.walk(root, visit)
	}
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		p.walk(ch, visit)
	}
}

// attachSubtree sets up style sheets and srcdoc frames for a subtree which
// has become part of the document.
func (p *Page) attachSubtree(root *html.Node, notify bool) {
	p.walk(root, func(n *html.Node) {
		if n.Type != html.ElementNode {
			return
		}
		if NodeIsStyleSheetOwner(n) {
			p.registerSheet(n, notify)
		} else if n.DataAtom == atom.Iframe {
			if _, ok := p.frames[n]; ok {
				return
			}
			if srcdoc, ok := w3cdom.Attr(n, "srcdoc"); ok {
				if doc, err := html.Parse(strings.NewReader(srcdoc)); err == nil {
					p.setFrame(n, doc, "about:srcdoc")
				}
			}
		}
	})
}

// detachSubtree drops the style sheets of a subtree which has been taken out
// of the document.
func (p *Page) detachSubtree(root *html.Node) {
	p.walk(root, func(n *html.Node) {
		if entry, ok := p.sheetByOwner[n]; ok {
			p.unregisterSheet(entry)
		}
	})
}

func (p *Page) setFrame(owner, doc *html.Node, url string) {
	if old := p.frames[owner]; old != nil {
		delete(p.frameOwners, old)
		delete(p.docURLs, old)
	}
	p.frames[owner] = doc
	p.frameOwners[doc] = owner
	p.docURLs[doc] = url
}
