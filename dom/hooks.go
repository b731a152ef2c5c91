package dom

import (
	"time"

	"github.com/npillmayer/webinspect/dom/style/cssom"
	"golang.org/x/net/html"
)

// Hooks is called by a page at every point where the live model changes or
// where page script would run. Calls are synchronous; a hook may not mutate
// the page it has been called from.
//
// Removal hooks are called while the node is still attached, so receivers
// may still look at its parent and siblings.
type Hooks interface {
	// --- Nodes and attributes
	WillInsertDOMNode(parent *html.Node)
	DidInsertDOMNode(node *html.Node)
	WillRemoveDOMNode(node *html.Node)
	DidRemoveDOMNode(node *html.Node)
	WillModifyDOMAttr(element *html.Node, name, oldValue, newValue string)
	DidModifyDOMAttr(element *html.Node, name, value string)
	DidRemoveDOMAttr(element *html.Node, name string)
	CharacterDataModified(node *html.Node)
	DidInvalidateStyleAttr(element *html.Node)
	DidPushShadowRoot(host, root *html.Node)
	WillPopShadowRoot(host, root *html.Node)
	PseudoElementCreated(pseudo *html.Node)
	PseudoElementDestroyed(pseudo *html.Node)
	FrameDocumentUpdated(owner *html.Node)
	DocumentUpdated(document *html.Node)
	// --- Style sheets
	StyleSheetAdded(sheet *cssom.StyleSheet)
	StyleSheetRemoved(sheet *cssom.StyleSheet)
	DidMutateStyleSheet(sheet *cssom.StyleSheet)
	// --- Runtime
	WillHandleEvent(target *html.Node, eventName string)
	DidHandleEvent()
	DidInstallTimer(timerID int, timeout time.Duration, singleShot bool)
	DidRemoveTimer(timerID int)
	WillFireTimer(timerID int)
	DidFireTimer()
	WillSendXMLHttpRequest(url string)
	WillEvaluateScript(url string, line int)
	DidEvaluateScript()
}

// NopHooks ignores every call. It may be embedded by hook implementations
// interested in a few calls only.
type NopHooks struct{}

var _ Hooks = NopHooks{}

func (NopHooks) WillInsertDOMNode(*html.Node) {}
func (NopHooks) DidInsertDOMNode(*html.Node) {}
func (NopHooks) WillRemoveDOMNode(*html.Node) {}
func (NopHooks) DidRemoveDOMNode(*html.Node) {}
func (NopHooks) WillModifyDOMAttr(*html.Node, string, string, string) {}
func (NopHooks) DidModifyDOMAttr(*html.Node, string, string) {}
func (NopHooks) DidRemoveDOMAttr(*html.Node, string) {}
func (NopHooks) CharacterDataModified(*html.Node) {}
func (NopHooks) DidInvalidateStyleAttr(*html.Node) {}
func (NopHooks) DidPushShadowRoot(*html.Node, *html.Node) {}
func (NopHooks) WillPopShadowRoot(*html.Node, *html.Node) {}
func (NopHooks) PseudoElementCreated(*html.Node) {}
func (NopHooks) PseudoElementDestroyed(*html.Node) {}
func (NopHooks) FrameDocumentUpdated(*html.Node) {}
func (NopHooks) DocumentUpdated(*html.Node) {}
func (NopHooks) StyleSheetAdded(*cssom.StyleSheet) {}
func (NopHooks) StyleSheetRemoved(*cssom.StyleSheet) {}
func (NopHooks) DidMutateStyleSheet(*cssom.StyleSheet) {}
func (NopHooks) WillHandleEvent(*html.Node, string) {}
func (NopHooks) DidHandleEvent() {}
func (NopHooks) DidInstallTimer(int, time.Duration, bool) {}
func (NopHooks) DidRemoveTimer(int) {}
func (NopHooks) WillFireTimer(int) {}
func (NopHooks) DidFireTimer() {}
func (NopHooks) WillSendXMLHttpRequest(string) {}
func (NopHooks) WillEvaluateScript(string, int) {}
func (NopHooks) DidEvaluateScript() {}
