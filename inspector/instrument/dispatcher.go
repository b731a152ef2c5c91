package instrument

import (
	"time"

	"github.com/npillmayer/webinspect/dom"
	"github.com/npillmayer/webinspect/dom/style/cssom"
	"golang.org/x/net/html"
)

// Dispatcher is the dom.Hooks of a page. Every hook looks up the agents of
// the page in a registry and forwards to those present.
type Dispatcher struct {
	registry *Registry
	page     *dom.Page
}

var _ dom.Hooks = &Dispatcher{}

// Install creates a dispatcher for a page and sets it as the page's hooks.
func Install(registry *Registry, page *dom.Page) *Dispatcher {
	d := &Dispatcher{registry: registry, page: page}
	page.SetHooks(d)
	return d
}

// Page returns the page a dispatcher serves.
func (d *Dispatcher) Page() *dom.Page {
	return d.page
}

func (d *Dispatcher) agents() Agents {
	a, _ := d.registry.Lookup(d.page)
	return a
}

// WillInsertDOMNode goes to the DOM debugger.
func (d *Dispatcher) WillInsertDOMNode(parent *html.Node) {
	if g := d.agents().DOMDebugger; g != nil {
		g.WillInsertDOMNode(parent)
	}
}

// DidInsertDOMNode goes to the DOM debugger, then to the DOM agent.
func (d *Dispatcher) DidInsertDOMNode(node *html.Node) {
	a := d.agents()
	if a.DOMDebugger != nil {
		a.DOMDebugger.DidInsertDOMNode(node)
	}
	if a.DOM != nil {
		a.DOM.DidInsertDOMNode(node)
	}
}

// WillRemoveDOMNode goes to the DOM debugger.
func (d *Dispatcher) WillRemoveDOMNode(node *html.Node) {
	if g := d.agents().DOMDebugger; g != nil {
		g.WillRemoveDOMNode(node)
	}
}

// DidRemoveDOMNode goes to the DOM debugger, then to the DOM agent. The
// node is still attached.
func (d *Dispatcher) DidRemoveDOMNode(node *html.Node) {
	a := d.agents()
	if a.DOMDebugger != nil {
		a.DOMDebugger.DidRemoveDOMNode(node)
	}
	if a.DOM != nil {
		a.DOM.DidRemoveDOMNode(node)
	}
}

// WillModifyDOMAttr goes to the DOM debugger.
func (d *Dispatcher) WillModifyDOMAttr(element *html.Node, name, oldValue, newValue string) {
	if g := d.agents().DOMDebugger; g != nil {
		g.WillModifyDOMAttr(element)
	}
}

// DidModifyDOMAttr goes to the DOM agent.
func (d *Dispatcher) DidModifyDOMAttr(element *html.Node, name, value string) {
	if s := d.agents().DOM; s != nil {
		s.DidModifyDOMAttr(element, name, value)
	}
}

// DidRemoveDOMAttr goes to the DOM agent.
func (d *Dispatcher) DidRemoveDOMAttr(element *html.Node, name string) {
	if s := d.agents().DOM; s != nil {
		s.DidRemoveDOMAttr(element, name)
	}
}

// CharacterDataModified goes to the DOM agent.
func (d *Dispatcher) CharacterDataModified(node *html.Node) {
	if s := d.agents().DOM; s != nil {
		s.CharacterDataModified(node)
	}
}

// DidInvalidateStyleAttr goes to the DOM agent, the DOM debugger and the
// CSS agent, in this order.
func (d *Dispatcher) DidInvalidateStyleAttr(element *html.Node) {
	a := d.agents()
	if a.DOM != nil {
		a.DOM.DidInvalidateStyleAttr(element)
	}
	if a.DOMDebugger != nil {
		a.DOMDebugger.DidInvalidateStyleAttr(element)
	}
	if a.CSS != nil {
		a.CSS.DidInvalidateStyleAttr(element)
	}
}

// DidPushShadowRoot goes to the DOM agent.
func (d *Dispatcher) DidPushShadowRoot(host, root *html.Node) {
	if s := d.agents().DOM; s != nil {
		s.DidPushShadowRoot(host, root)
	}
}

// WillPopShadowRoot goes to the DOM agent.
func (d *Dispatcher) WillPopShadowRoot(host, root *html.Node) {
	if s := d.agents().DOM; s != nil {
		s.WillPopShadowRoot(host, root)
	}
}

// PseudoElementCreated goes to the DOM agent.
func (d *Dispatcher) PseudoElementCreated(pseudo *html.Node) {
	if s := d.agents().DOM; s != nil {
		s.PseudoElementCreated(pseudo)
	}
}

// PseudoElementDestroyed goes to the DOM agent.
func (d *Dispatcher) PseudoElementDestroyed(pseudo *html.Node) {
	if s := d.agents().DOM; s != nil {
		s.PseudoElementDestroyed(pseudo)
	}
}

// FrameDocumentUpdated goes to the DOM agent.
func (d *Dispatcher) FrameDocumentUpdated(owner *html.Node) {
	if s := d.agents().DOM; s != nil {
		s.FrameDocumentUpdated(owner)
	}
}

// DocumentUpdated goes to the DOM agent, the CSS agent and the DOM
// debugger, in this order.
func (d *Dispatcher) DocumentUpdated(document *html.Node) {
	a := d.agents()
	tracer().Infof("instrument: document of page %q updated", d.page.URL())
	if a.DOM != nil {
		a.DOM.DocumentUpdated()
	}
	if a.CSS != nil {
		a.CSS.DocumentUpdated()
	}
	if a.DOMDebugger != nil {
		a.DOMDebugger.DocumentUpdated()
	}
}

// StyleSheetAdded goes to the CSS agent.
func (d *Dispatcher) StyleSheetAdded(sheet *cssom.StyleSheet) {
	if s := d.agents().CSS; s != nil {
		s.StyleSheetAdded(sheet)
	}
}

// StyleSheetRemoved goes to the CSS agent.
func (d *Dispatcher) StyleSheetRemoved(sheet *cssom.StyleSheet) {
	if s := d.agents().CSS; s != nil {
		s.StyleSheetRemoved(sheet)
	}
}

// DidMutateStyleSheet goes to the CSS agent.
func (d *Dispatcher) DidMutateStyleSheet(sheet *cssom.StyleSheet) {
	if s := d.agents().CSS; s != nil {
		s.DidMutateStyleSheet(sheet)
	}
}

// --- Runtime ---------------------------------------------------------------

// The runtime hooks go to the runtime guard only.

func (d *Dispatcher) WillHandleEvent(target *html.Node, eventName string) {
	if g := d.agents().Runtime; g != nil {
		g.WillHandleEvent(target, eventName)
	}
}

func (d *Dispatcher) DidHandleEvent() {
	if g := d.agents().Runtime; g != nil {
		g.DidHandleEvent()
	}
}

func (d *Dispatcher) DidInstallTimer(timerID int, timeout time.Duration, singleShot bool) {
	if g := d.agents().Runtime; g != nil {
		g.DidInstallTimer(timerID, timeout, singleShot)
	}
}

func (d *Dispatcher) DidRemoveTimer(timerID int) {
	if g := d.agents().Runtime; g != nil {
		g.DidRemoveTimer(timerID)
	}
}

func (d *Dispatcher) WillFireTimer(timerID int) {
	if g := d.agents().Runtime; g != nil {
		g.WillFireTimer(timerID)
	}
}

func (d *Dispatcher) DidFireTimer() {
	if g := d.agents().Runtime; g != nil {
		g.DidFireTimer()
	}
}

func (d *Dispatcher) WillSendXMLHttpRequest(url string) {
	if g := d.agents().Runtime; g != nil {
		g.WillSendXMLHttpRequest(url)
	}
}

func (d *Dispatcher) WillEvaluateScript(url string, line int) {
	if g := d.agents().Runtime; g != nil {
		g.WillEvaluateScript(url, line)
	}
}

func (d *Dispatcher) DidEvaluateScript() {
	if g := d.agents().Runtime; g != nil {
		g.DidEvaluateScript()
	}
}
