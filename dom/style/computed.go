package style

import (
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// Computed is the computed style of a node. Inherited properties a node
// does not set are looked up along the chain of parents.
type Computed struct {
	Parent *Computed
	node   *html.Node
	props  map[string]Property
}

// Cascade computes the style of a node from its declarations, given in
// cascade order (later declarations win). Important declarations win over
// normal ones. parent may be nil for the root of a tree.
func Cascade(parent *Computed, node *html.Node, decls []Declaration) *Computed {
	c := &Computed{Parent: parent, node: node, props: make(map[string]Property)}
	for _, important := range []bool{false, true} {
		for _, d := range decls {
			if d.Important != important {
				continue
			}
			c.declare(strings.ToLower(d.Key), Property(strings.TrimSpace(string(d.Value))))
		}
	}
	return c
}

func (c *Computed) declare(key string, value Property) {
	kvs, err := Expand(key, value)
	if err != nil {
		tracer().Debugf("style: dropping %s: %v", key, err)
		return
	}
	for _, kv := range kvs {
		switch {
		case kv.Value.IsInherit():
			if c.Parent != nil {
				c.props[kv.Key] = c.Parent.Get(kv.Key)
			} else {
				c.props[kv.Key] = Initial(c.node, kv.Key)
			}
		case kv.Value.IsInitial():
			c.props[kv.Key] = Initial(c.node, kv.Key)
		default:
			c.props[kv.Key] = kv.Value
		}
	}
}

// Node returns the node a style has been computed for.
func (c *Computed) Node() *html.Node {
	return c.node
}

// IsSet is a predicate whether a property is declared for the node itself.
func (c *Computed) IsSet(key string) bool {
	_, ok := c.props[key]
	return ok
}

// Get returns a property's computed value.
func (c *Computed) Get(key string) Property {
	for it := c; it != nil; it = it.Parent {
		if p, ok := it.props[key]; ok {
			return p
		}
		if !Inherited(key) {
			break
		}
	}
	return Initial(c.node, key)
}

// Properties returns all non-empty properties of a computed style, sorted
// by key.
func (c *Computed) Properties() []KeyValue {
	keys := map[string]bool{"display": true}
	for k := range initialValues {
		keys[k] = true
	}
	for it := c; it != nil; it = it.Parent {
		for k := range it.props {
			if it == c || Inherited(k) {
				keys[k] = true
			}
		}
	}
	r := make([]KeyValue, 0, len(keys))
	for k := range keys {
		if v := c.Get(k); !v.IsEmpty() {
			r = append(r, KeyValue{k, v})
		}
	}
	sort.Slice(r, func(i, j int) bool { return r[i].Key < r[j].Key })
	return r
}
