package dom

import (
	"fmt"

	"github.com/npillmayer/webinspect/dom/style/cssom"
	"github.com/npillmayer/webinspect/dom/w3cdom"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// sheetEntry is a style sheet of the page, together with the text it has
// last been loaded from.
type sheetEntry struct {
	sheet  *cssom.StyleSheet
	owner  *html.Node
	source string
}

// StyleSheets returns the style sheets of all documents of a page, in the
// order they have been attached.
func (p *Page) StyleSheets() []*cssom.StyleSheet {
	sheets := make([]*cssom.StyleSheet, len(p.sheets))
	for i, entry := range p.sheets {
		sheets[i] = entry.sheet
	}
	return sheets
}

// StyleSheetFor returns the style sheet owned by a <style> or <link> element.
func (p *Page) StyleSheetFor(owner *html.Node) *cssom.StyleSheet {
	if entry, ok := p.sheetByOwner[owner]; ok {
		return entry.sheet
	}
	return nil
}

// OriginalStyleSheetText returns the source text a sheet has last been loaded
// from. For sheets created by CreateInspectorStyleSheet this is the empty string.
func (p *Page) OriginalStyleSheetText(sheet *cssom.StyleSheet) (string, error) {
	for _, entry := range p.sheets {
		if entry.sheet == sheet {
			return entry.source, nil
		}
	}
	return "", fmt.Errorf("%w: style sheet is not part of this page", ErrNoResource)
}

// CreateInspectorStyleSheet appends an empty <style> element to the head of
// a document and returns its style sheet, which carries origin
// cssom.OriginInspector.
func (p *Page) CreateInspectorStyleSheet(doc *html.Node) (*cssom.StyleSheet, error) {
	if doc == nil || doc.Type != html.DocumentNode {
		return nil, ErrNodeType
	}
	target := findElement(doc, atom.Head)
	if target == nil {
		if target = findElement(doc, atom.Html); target == nil {
			target = doc
		}
	}
	el := &html.Node{Type: html.ElementNode, Data: "style", DataAtom: atom.Style}
	p.inspectorOwner[el] = true
	if err := p.AppendChild(target, el); err != nil {
		delete(p.inspectorOwner, el)
		return nil, err
	}
	sheet := p.StyleSheetFor(el)
	if sheet == nil { // target is not connected
		delete(p.inspectorOwner, el)
		return nil, ErrDetached
	}
	return sheet, nil
}

func (p *Page) registerSheet(owner *html.Node, notify bool) {
	if _, ok := p.sheetByOwner[owner]; ok {
		return
	}
	origin := cssom.OriginAuthor
	if p.inspectorOwner[owner] {
		origin = cssom.OriginInspector
	}
	var href, text string
	if owner.DataAtom == atom.Link {
		href, _ = w3cdom.Attr(owner, "href")
		t, err := p.loader.Load(href)
		if err != nil {
			tracer().Errorf("dom: cannot load style sheet %q: %v", href, err)
		}
		text = t
	} else {
		text = TextContent(owner)
	}
	sheet := cssom.NewStyleSheet(owner, href, origin, p.parser)
	if err := sheet.Load(text); err != nil {
		tracer().Errorf("dom: style sheet %q has syntax errors: %v", href, err)
	}
	sheet.SetObserver(func(s *cssom.StyleSheet) {
		p.hooks.DidMutateStyleSheet(s)
	})
	entry := &sheetEntry{sheet: sheet, owner: owner, source: text}
	p.sheets = append(p.sheets, entry)
	p.sheetByOwner[owner] = entry
	tracer().P("href", href).Debugf("dom: style sheet added with %d rules", len(sheet.Rules()))
	if notify {
		p.hooks.StyleSheetAdded(sheet)
	}
}

func (p *Page) unregisterSheet(entry *sheetEntry) {
	for i, e := range p.sheets {
		if e == entry {
			p.sheets = append(p.sheets[:i], p.sheets[i+1:]...)
			break
		}
	}
	delete(p.sheetByOwner, entry.owner)
	delete(p.inspectorOwner, entry.owner)
	entry.sheet.SetObserver(nil)
	p.hooks.StyleSheetRemoved(entry.sheet)
}

// reloadSheet re-reads the text of a <style> element after its children
// have changed.
func (p *Page) reloadSheet(owner *html.Node) {
	entry, ok := p.sheetByOwner[owner]
	if !ok || owner.DataAtom != atom.Style {
		return
	}
	entry.source = TextContent(owner)
	if err := entry.sheet.Load(entry.source); err != nil {
		tracer().Errorf("dom: style sheet has syntax errors: %v", err)
	}
}
