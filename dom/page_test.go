package dom_test

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/webinspect/dom"
	"github.com/npillmayer/webinspect/dom/style/cssom"
	"github.com/npillmayer/webinspect/dom/w3cdom"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// recorder logs hook calls as short strings.
type recorder struct {
	dom.NopHooks
	calls []string
}

func (r *recorder) log(format string, args ...interface{}) {
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

func name(n *html.Node) string {
	if n.Type == html.TextNode {
		return "#" + strings.TrimSpace(n.Data)
	}
	return n.Data
}

func (r *recorder) WillInsertDOMNode(parent *html.Node) { r.log("will-insert %s", name(parent)) }
func (r *recorder) DidInsertDOMNode(node *html.Node) { r.log("did-insert %s", name(node)) }
func (r *recorder) WillRemoveDOMNode(node *html.Node) { r.log("will-remove %s", name(node)) }
func (r *recorder) DidRemoveDOMNode(node *html.Node) {
	r.log("did-remove %s attached=%v", name(node), node.Parent != nil)
}
func (r *recorder) WillModifyDOMAttr(el *html.Node, attr, old, value string) {
	r.log("will-attr %s %s %q→%q", name(el), attr, old, value)
}
func (r *recorder) DidModifyDOMAttr(el *html.Node, attr, value string) {
	r.log("did-attr %s %s", name(el), attr)
}
func (r *recorder) DidRemoveDOMAttr(el *html.Node, attr string) { r.log("removed-attr %s %s", name(el), attr) }
func (r *recorder) CharacterDataModified(n *html.Node) { r.log("chardata %s", name(n)) }
func (r *recorder) DidInvalidateStyleAttr(el *html.Node) { r.log("style-invalidated %s", name(el)) }
func (r *recorder) StyleSheetAdded(s *cssom.StyleSheet) { r.log("sheet-added %s", s.Origin()) }
func (r *recorder) StyleSheetRemoved(s *cssom.StyleSheet) { r.log("sheet-removed") }
func (r *recorder) DidMutateStyleSheet(s *cssom.StyleSheet) { r.log("sheet-mutated %d", len(s.Rules())) }
func (r *recorder) WillHandleEvent(t *html.Node, event string) { r.log("event %s", event) }
func (r *recorder) DidInstallTimer(id int, _ time.Duration, _ bool) { r.log("timer %d", id) }
func (r *recorder) WillFireTimer(id int) { r.log("fire %d", id) }
func (r *recorder) DidFireTimer() { r.log("fired") }

func (r *recorder) reset() {
	r.calls = nil
}

func (r *recorder) expect(t *testing.T, calls ...string) {
	t.Helper()
	if strings.Join(r.calls, "\n") != strings.Join(calls, "\n") {
		t.Errorf("unexpected hook calls:\n%s\nexpected:\n%s", strings.Join(r.calls, "\n"),
			strings.Join(calls, "\n"))
	}
}

const testPage = `<!DOCTYPE html>
<html><head>
  <style>.a { color: red; }</style>
  <link rel="stylesheet" href="main.css">
</head><body>
  <div id="x" class="a">Hello</div>
  <iframe srcdoc="<p>inner</p>"></iframe>
</body></html>`

func newTestPage(t *testing.T) (*dom.Page, *recorder) {
	r := &recorder{}
	loader := dom.MapLoader{"main.css": "p { margin: 0 }"}
	page, err := dom.NewPage(testPage, "http://test/", dom.WithLoader(loader), dom.WithHooks(r))
	if err != nil {
		t.Fatal(err)
	}
	return page, r
}

func find(t *testing.T, n *html.Node, a atom.Atom) *html.Node {
	t.Helper()
	var found *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for ch := n.FirstChild; ch != nil && found == nil; ch = ch.NextSibling {
			if ch.Type == html.ElementNode && ch.DataAtom == a {
				found = ch
				return
			}
			walk(ch)
		}
	}
	walk(n)
	if found == nil {
		t.Fatalf("no element %s in document", a)
	}
	return found
}

func TestPageTreeView(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "webinspect.dom")
	defer teardown()
	//
	page, _ := newTestPage(t)
	body := find(t, page.Document(), atom.Body)
	first := page.FirstChild(body)
	if first == nil || first.DataAtom != atom.Div {
		t.Fatalf("expected whitespace to be skipped and first child to be <div>, is %v", first)
	}
	iframe := page.NextSibling(first)
	if iframe == nil || iframe.DataAtom != atom.Iframe {
		t.Fatalf("expected <iframe> to follow <div>, have %v", iframe)
	}
	if page.PreviousSibling(iframe) != first {
		t.Errorf("expected previous sibling of <iframe> to be <div>")
	}
	doc := page.FirstChild(iframe)
	if doc == nil || doc != page.ContentDocument(iframe) {
		t.Fatalf("expected first inner child of <iframe> to be its content document")
	}
	if page.ParentOf(doc) != iframe || page.NextSibling(doc) != nil {
		t.Errorf("expected content document to be the only child of its owner")
	}
	if page.DocumentURL(doc) != "about:srcdoc" || page.DocumentURL(page.Document()) != "http://test/" {
		t.Errorf("unexpected document URLs %q, %q", page.DocumentURL(doc), page.DocumentURL(page.Document()))
	}
	if w3cdom.ChildCount(page, body) != 2 {
		t.Errorf("expected <body> to have 2 inner children, has %d", w3cdom.ChildCount(page, body))
	}
	if w3cdom.NodeName(page, first) != "DIV" || w3cdom.NodeType(page, doc) != 9 {
		t.Errorf("unexpected W3C name/type for nodes")
	}
}

func TestPageStyleSheets(t *testing.T) {
	page, r := newTestPage(t)
	sheets := page.StyleSheets()
	if len(sheets) != 2 {
		t.Fatalf("expected 2 style sheets, have %d", len(sheets))
	}
	if text, _ := page.OriginalStyleSheetText(sheets[1]); text != "p { margin: 0 }" {
		t.Errorf("expected linked sheet text to be loaded, is %q", text)
	}
	// changing the text of a <style> element reloads its sheet
	style := sheets[0].Owner()
	if err := page.SetNodeValue(style.FirstChild, ".a{} .b{}"); err != nil {
		t.Fatal(err)
	}
	r.expect(t, "chardata #.a{} .b{}", "sheet-mutated 2")
	if text, _ := page.OriginalStyleSheetText(sheets[0]); text != ".a{} .b{}" {
		t.Errorf("expected source text to follow element text, is %q", text)
	}
	// inspector style sheets go into <head>
	r.reset()
	sheet, err := page.CreateInspectorStyleSheet(page.Document())
	if err != nil {
		t.Fatal(err)
	}
	if sheet.Origin() != cssom.OriginInspector || sheet.Owner().Parent.DataAtom != atom.Head {
		t.Errorf("expected inspector sheet in <head>, have origin %v", sheet.Origin())
	}
	r.expect(t, "will-insert head", "did-insert style", "sheet-added inspector")
	// removing the owner removes the sheet
	r.reset()
	if err := page.RemoveChild(style); err != nil {
		t.Fatal(err)
	}
	r.expect(t, "will-remove style", "did-remove style attached=true", "sheet-removed")
	if len(page.StyleSheets()) != 2 {
		t.Errorf("expected 2 style sheets after removal, have %d", len(page.StyleSheets()))
	}
}

func TestPageMutationHooks(t *testing.T) {
	page, r := newTestPage(t)
	body := find(t, page.Document(), atom.Body)
	div := page.FirstChild(body)
	span := &html.Node{Type: html.ElementNode, Data: "span", DataAtom: atom.Span}
	if err := page.InsertBefore(body, span, div); err != nil {
		t.Fatal(err)
	}
	if err := page.SetAttribute(span, "title", "t"); err != nil {
		t.Fatal(err)
	}
	if err := page.RemoveAttribute(span, "title"); err != nil {
		t.Fatal(err)
	}
	if err := page.RemoveAttribute(span, "missing"); err != nil {
		t.Fatal(err)
	}
	// moving div into span removes it first
	if err := page.AppendChild(span, div); err != nil {
		t.Fatal(err)
	}
	r.expect(t,
		"will-insert body", "did-insert span",
		`will-attr span title ""→"t"`, "did-attr span title",
		`will-attr span title "t"→""`, "removed-attr span title",
		"will-remove div", "did-remove div attached=true",
		"will-insert span", "did-insert div",
	)
	if err := page.AppendChild(div, span); err == nil {
		t.Error("expected cycle to be rejected")
	}
	if err := page.InsertBefore(body, &html.Node{Type: html.ElementNode, Data: "b"}, div); err != dom.ErrNotAChild {
		t.Errorf("expected ErrNotAChild, have %v", err)
	}
}

func TestPageSetOuterHTML(t *testing.T) {
	page, r := newTestPage(t)
	body := find(t, page.Document(), atom.Body)
	div := page.FirstChild(body)
	nodes, err := page.SetOuterHTML(div, `<p>a</p><p>b</p>`)
	if err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 2 || page.FirstChild(body) != nodes[0] {
		t.Fatalf("expected two new paragraphs at the start of <body>, have %v", nodes)
	}
	r.expect(t,
		"will-insert body", "did-insert p",
		"will-insert body", "did-insert p",
		"will-remove div", "did-remove div attached=true",
	)
	markup, _ := page.OuterHTML(nodes[1])
	if markup != "<p>b</p>" {
		t.Errorf("expected outer HTML <p>b</p>, is %q", markup)
	}
}

func TestPageInlineStyleInvalidation(t *testing.T) {
	page, r := newTestPage(t)
	div := page.FirstChild(find(t, page.Document(), atom.Body))
	if err := page.SetInlineStyleProperty(div, "color", "red"); err != nil {
		t.Fatal(err)
	}
	if v, _ := w3cdom.Attr(div, "style"); v != "color: red;" {
		t.Errorf("expected style attribute 'color: red;', is %q", v)
	}
	r.expect(t, "style-invalidated div")
}

func TestPageInlineStyleKeepsLastProperty(t *testing.T) {
	page, _ := newTestPage(t)
	div := page.FirstChild(find(t, page.Document(), atom.Body))
	if err := page.SetAttribute(div, "style", "color: red"); err != nil {
		t.Fatal(err)
	}
	if err := page.SetInlineStyleProperty(div, "margin", "0"); err != nil {
		t.Fatal(err)
	}
	if v, _ := w3cdom.Attr(div, "style"); v != "color: red; margin: 0;" {
		t.Errorf("expected style attribute 'color: red; margin: 0;', is %q", v)
	}
}

func TestPageShadowAndPseudo(t *testing.T) {
	page, _ := newTestPage(t)
	div := page.FirstChild(find(t, page.Document(), atom.Body))
	root, err := page.AttachShadowRoot(div)
	if err != nil {
		t.Fatal(err)
	}
	if !page.IsShadowRoot(root) || page.ParentOf(root) != div || w3cdom.NodeType(page, root) != 11 {
		t.Errorf("expected shadow root to be attached to host")
	}
	if err := page.SetPseudoElement(div, "before", true); err != nil {
		t.Fatal(err)
	}
	pseudos := page.PseudoElements(div)
	if len(pseudos) != 1 || w3cdom.NodeName(page, pseudos[0]) != "::before" {
		t.Fatalf("expected ::before for host, have %v", pseudos)
	}
	if err := page.AppendChild(div, pseudos[0]); err == nil {
		t.Error("expected pseudo element to be rejected as child")
	}
	if err := page.DetachShadowRoot(root); err != nil || len(page.ShadowRoots(div)) != 0 {
		t.Errorf("expected shadow root to be detached, error is %v", err)
	}
	if page.OwnerDocument(pseudos[0]) != page.Document() {
		t.Errorf("expected pseudo element to belong to main document")
	}
}

func TestPageRuntime(t *testing.T) {
	page, r := newTestPage(t)
	div := page.FirstChild(find(t, page.Document(), atom.Body))
	clicked := 0
	page.AddEventListener(page.Document(), "click", func() { clicked++ })
	if n := page.DispatchEvent(div, "click"); n != 1 || clicked != 1 {
		t.Errorf("expected click to bubble to document, %d listeners called", n)
	}
	id := page.InstallTimer(10*time.Millisecond, true, nil)
	if err := page.FireTimer(id); err != nil {
		t.Fatal(err)
	}
	if err := page.FireTimer(id); err != dom.ErrNoTimer {
		t.Errorf("expected single-shot timer to be gone, have %v", err)
	}
	r.expect(t, "event click", "timer 1", "fire 1", "fired")
	ran := []int{}
	page.Post(func() {
		ran = append(ran, 1)
		page.Post(func() { ran = append(ran, 2) })
	})
	if page.RunPending() != 2 || len(ran) != 2 {
		t.Errorf("expected nested task to run, ran %v", ran)
	}
}

func TestPageNavigate(t *testing.T) {
	page, _ := newTestPage(t)
	var updated *html.Node
	page.SetHooks(&navRecorder{updated: &updated})
	if err := page.Navigate("<p>new</p>", "http://test/2"); err != nil {
		t.Fatal(err)
	}
	if updated != page.Document() || page.URL() != "http://test/2" {
		t.Errorf("expected DocumentUpdated with new document")
	}
	if len(page.StyleSheets()) != 0 {
		t.Errorf("expected new document to have no style sheets")
	}
}

type navRecorder struct {
	dom.NopHooks
	updated **html.Node
}

func (n *navRecorder) DocumentUpdated(doc *html.Node) { *n.updated = doc }
