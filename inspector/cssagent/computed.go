package cssagent

import (
	"github.com/npillmayer/webinspect/dom/style"
	"github.com/npillmayer/webinspect/dom/w3cdom"
	"github.com/npillmayer/webinspect/inspector/protocol"
	"github.com/npillmayer/webinspect/inspector/stylesync"
	"golang.org/x/net/html"
)

// GetComputedStyleForNode cascades the matching rules and inline styles of
// an element and its ancestors.
func (a *Agent) GetComputedStyleForNode(id protocol.NodeID) ([]protocol.ComputedProperty, error) {
	el, err := a.element(id)
	if err != nil {
		return nil, err
	}
	var chain []*html.Node
	for n := el; n != nil && n.Type == html.ElementNode; n = n.Parent {
		chain = append(chain, n)
	}
	var computed *style.Computed
	for i := len(chain) - 1; i >= 0; i-- {
		decls, err := a.declarations(chain[i])
		if err != nil {
			return nil, err
		}
		computed = style.Cascade(computed, chain[i], decls)
	}
	props := computed.Properties()
	result := make([]protocol.ComputedProperty, len(props))
	for i, kv := range props {
		result[i] = protocol.ComputedProperty{Name: kv.Key, Value: kv.Value.String()}
	}
	return result, nil
}

// declarations collects the effective properties reaching an element, in
// cascade order.
func (a *Agent) declarations(el *html.Node) ([]style.Declaration, error) {
	var decls []style.Declaration
	collect := func(e *entry, ordinal int) error {
		props, err := e.sheet.AllProperties(ordinal)
		if err != nil {
			return err
		}
		for _, p := range props {
			if effective(p) {
				decls = append(decls, style.Declaration{
					KeyValue:  style.KeyValue{Key: p.Name, Value: style.Property(p.Value)},
					Important: p.Important,
				})
			}
		}
		return nil
	}
	for _, m := range a.matchRules(el) {
		if err := collect(m.entry, m.ordinal); err != nil {
			return nil, err
		}
	}
	if attr, ok := w3cdom.Attr(el, "style"); ok && attr != "" {
		if err := collect(a.bindInline(el), 0); err != nil {
			return nil, err
		}
	}
	return decls, nil
}

func effective(p stylesync.Property) bool {
	return p.ParsedOK && !p.Disabled && p.Status != protocol.StatusInactive
}
