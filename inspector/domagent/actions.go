package domagent

import (
	"fmt"

	"github.com/npillmayer/webinspect/dom"
	"github.com/npillmayer/webinspect/dom/w3cdom"
	"github.com/npillmayer/webinspect/inspector/history"
	"golang.org/x/net/html"
)

type actionKind int

const (
	setAttributeAction actionKind = iota
	removeAttributeAction
	setNodeValueAction
	removeNodeAction
	setOuterHTMLAction
)

var actionNames = [...]string{"SetAttribute", "RemoveAttribute", "SetNodeValue", "RemoveNode", "SetOuterHTML"}

// domAction is an undoable edit of the live tree.
type domAction struct {
	kind  actionKind
	page  *dom.Page
	node  *html.Node
	name  string // attribute name
	value string // new attribute value, node value or markup
	// captured before-state
	hadOld   bool
	old      string
	parent   *html.Node
	next     *html.Node
	newNodes []*html.Node
}

var _ history.Action = &domAction{}

func (a *domAction) Name() string {
	return actionNames[a.kind]
}

func (a *domAction) MergeKey() string {
	if a.kind == setNodeValueAction {
		return fmt.Sprintf("SetNodeValue %p", a.node)
	}
	return ""
}

func (a *domAction) Merge(next history.Action) {
	if n, ok := next.(*domAction); ok {
		a.value = n.value
	}
}

func (a *domAction) Perform() error {
	switch a.kind {
	case setAttributeAction, removeAttributeAction:
		a.old, a.hadOld = w3cdom.Attr(a.node, a.name)
	case setNodeValueAction:
		a.old = a.node.Data
	case removeNodeAction:
		a.parent, a.next = a.node.Parent, a.node.NextSibling
	case setOuterHTMLAction:
		a.parent, a.next = a.node.Parent, a.node.NextSibling
		a.old, _ = a.page.OuterHTML(a.node)
	}
	return a.Redo()
}

func (a *domAction) Undo() error {
	switch a.kind {
	case setAttributeAction, removeAttributeAction:
		if a.hadOld {
			return a.page.SetAttribute(a.node, a.name, a.old)
		}
		return a.page.RemoveAttribute(a.node, a.name)
	case setNodeValueAction:
		return a.page.SetNodeValue(a.node, a.old)
	case removeNodeAction:
		return a.page.InsertBefore(a.parent, a.node, a.next)
	case setOuterHTMLAction:
		if err := a.page.InsertBefore(a.parent, a.node, a.next); err != nil {
			return err
		}
		for _, n := range a.newNodes {
			if n.Parent == a.parent {
				if err := a.page.RemoveChild(n); err != nil {
					return err
				}
			}
		}
		return nil
	}
	return nil
}

func (a *domAction) Redo() error {
	switch a.kind {
	case setAttributeAction:
		return a.page.SetAttribute(a.node, a.name, a.value)
	case removeAttributeAction:
		return a.page.RemoveAttribute(a.node, a.name)
	case setNodeValueAction:
		return a.page.SetNodeValue(a.node, a.value)
	case removeNodeAction:
		return a.page.RemoveChild(a.node)
	case setOuterHTMLAction:
		nodes, err := a.page.SetOuterHTML(a.node, a.value)
		if err != nil {
			return err
		}
		a.newNodes = nodes
		return nil
	}
	return nil
}
