package nodereg

import (
	"math"
	"strings"

	"github.com/npillmayer/webinspect/dom/w3cdom"
	"github.com/npillmayer/webinspect/inspector/microtask"
	"github.com/npillmayer/webinspect/inspector/protocol"
	"golang.org/x/net/html"
)

// IDMap maps live nodes to ids. A registry has one main map for the
// inspected document, and one map for every detached subtree which has
// been pushed to the front end.
type IDMap struct {
	ids  map[*html.Node]protocol.NodeID
	name string
}

func newIDMap(name string) *IDMap {
	return &IDMap{ids: make(map[*html.Node]protocol.NodeID), name: name}
}

// Len returns the number of nodes bound in a map.
func (m *IDMap) Len() int {
	return len(m.ids)
}

// Listener is told about bindings going away and about attribute changes
// of bound elements.
type Listener interface {
	DidUnbindNode(node *html.Node)
	DidModifyDOMAttr(element *html.Node)
	DidDiscardBindings()
}

// Registry mirrors the live tree of a page to a front end. Nodes get ids
// when they are first sent to the front end; from then on every mutation
// the front end needs to know about is reported with events.
type Registry struct {
	tree         w3cdom.Tree
	frontend     protocol.Frontend
	listener     Listener
	document     *html.Node // non-nil after the front end requested the document
	main         *IDMap
	dangling     []*IDMap
	idToNode     map[protocol.NodeID]*html.Node
	idToMap      map[protocol.NodeID]*IDMap
	requested    map[protocol.NodeID]bool // children have been sent
	contentDocs  map[*html.Node]*html.Node
	lastID       protocol.NodeID
	initialDepth int
	invalidated  *microtask.Batch[*html.Node]
}

// DefaultInitialDepth is the depth of the tree returned by GetDocument.
const DefaultInitialDepth = 2

// New creates a registry for a tree. Events go to fe. Style invalidations
// are reported from a deferred task scheduled with sched.
func New(tree w3cdom.Tree, fe protocol.Frontend, sched microtask.Scheduler) *Registry {
	r := &Registry{
		tree:         tree,
		frontend:     fe,
		initialDepth: DefaultInitialDepth,
	}
	r.invalidated = microtask.New(sched, r.flushInvalidated)
	r.clear()
	return r
}

func (r *Registry) clear() {
	r.main = newIDMap("main")
	r.dangling = nil
	r.idToNode = make(map[protocol.NodeID]*html.Node)
	r.idToMap = make(map[protocol.NodeID]*IDMap)
	r.requested = make(map[protocol.NodeID]bool)
	r.contentDocs = make(map[*html.Node]*html.Node)
}

// SetListener installs a listener. nil removes it.
func (r *Registry) SetListener(l Listener) {
	r.listener = l
}

// SetInitialDepth sets the depth of the tree returned by GetDocument.
func (r *Registry) SetInitialDepth(depth int) {
	if depth < 1 {
		depth = 1
	}
	r.initialDepth = depth
}

// Tree returns the live tree a registry mirrors.
func (r *Registry) Tree() w3cdom.Tree {
	return r.tree
}

// Document returns the document the front end has requested, or nil.
func (r *Registry) Document() *html.Node {
	return r.document
}

func (r *Registry) emit(method string, params interface{}) {
	if r.frontend != nil {
		r.frontend.Emit(protocol.Event{Method: method, Params: params})
	}
}

// --- Bindings --------------------------------------------------------------

// Bind returns the id of node in m, binding it if necessary.
func (r *Registry) Bind(node *html.Node, m *IDMap) protocol.NodeID {
	if id, ok := m.ids[node]; ok {
		return id
	}
	r.lastID++
	id := r.lastID
	m.ids[node] = id
	r.idToNode[id] = node
	r.idToMap[id] = m
	return id
}

// Unbind forgets the id of node in m, together with the ids of everything
// the front end may know below it.
func (r *Registry) Unbind(node *html.Node, m *IDMap) {
	id, ok := m.ids[node]
	if !ok {
		return
	}
	delete(m.ids, node)
	delete(r.idToNode, id)
	delete(r.idToMap, id)
	if doc, ok := r.contentDocs[node]; ok {
		delete(r.contentDocs, node)
		r.Unbind(doc, m)
	}
	if doc := r.tree.ContentDocument(node); doc != nil {
		r.Unbind(doc, m)
	}
	for _, root := range r.tree.ShadowRoots(node) {
		r.Unbind(root, m)
	}
	for _, pseudo := range r.tree.PseudoElements(node) {
		r.Unbind(pseudo, m)
	}
	if r.requested[id] {
		delete(r.requested, id)
		for ch := r.tree.FirstChild(node); ch != nil; ch = r.tree.NextSibling(ch) {
			r.Unbind(ch, m)
		}
	}
	if r.listener != nil {
		r.listener.DidUnbindNode(node)
	}
}

// mapOf returns the map node is bound in, or nil.
func (r *Registry) mapOf(node *html.Node) *IDMap {
	if _, ok := r.main.ids[node]; ok {
		return r.main
	}
	for _, d := range r.dangling {
		if _, ok := d.ids[node]; ok {
			return d
		}
	}
	return nil
}

// unbindAll unbinds node from whichever map it is bound in.
func (r *Registry) unbindAll(node *html.Node) {
	r.Unbind(node, r.main)
	for _, d := range r.dangling {
		r.Unbind(node, d)
	}
}

// MainMap returns the map for the inspected document.
func (r *Registry) MainMap() *IDMap {
	return r.main
}

// DanglingMaps returns the number of maps for detached subtrees.
func (r *Registry) DanglingMaps() int {
	return len(r.dangling)
}

// ID returns the id of a node in the main map, or 0.
func (r *Registry) ID(node *html.Node) protocol.NodeID {
	if node == nil {
		return 0
	}
	return r.main.ids[node]
}

// NodeForID finds the node bound to id in any map.
func (r *Registry) NodeForID(id protocol.NodeID) (*html.Node, error) {
	node, ok := r.idToNode[id]
	if !ok {
		return nil, protocol.Errorf(protocol.NotFound, "could not find node with id %d", id)
	}
	return node, nil
}

// IsRequested is true if the children of node id have been sent.
func (r *Registry) IsRequested(id protocol.NodeID) bool {
	return r.requested[id]
}

// DiscardBindings forgets every binding. Ids are not reused afterwards.
func (r *Registry) DiscardBindings() {
	r.clear()
	r.invalidated.Cancel()
	if r.listener != nil {
		r.listener.DidDiscardBindings()
	}
	tracer().Debugf("nodereg: bindings discarded, next id is %d", r.lastID+1)
}

// Reset discards all bindings after the inspected document has been
// replaced. If the front end had requested the old document, it is told
// with documentUpdated.
func (r *Registry) Reset() {
	requested := r.document != nil
	r.document = nil
	r.DiscardBindings()
	if requested {
		r.emit(protocol.EventDocumentUpdated, protocol.Empty{})
	}
}

// --- Pushing nodes ---------------------------------------------------------

// GetDocument starts mirroring the document. Earlier bindings are
// discarded.
func (r *Registry) GetDocument() (*protocol.Node, error) {
	doc := r.tree.Document()
	if doc == nil {
		return nil, protocol.Errorf(protocol.Internal, "document is not available")
	}
	r.DiscardBindings()
	r.document = doc
	root := r.BuildObjectForNode(doc, r.initialDepth, r.main)
	tracer().P("nodes", r.main.Len()).Infof("nodereg: document requested")
	return root, nil
}

// RequestChildNodes sends the children of a node to the front end. Depth 0
// means 1, depth -1 means the complete subtree.
func (r *Registry) RequestChildNodes(id protocol.NodeID, depth int) error {
	switch {
	case depth == 0:
		depth = 1
	case depth == -1:
		depth = math.MaxInt32
	case depth < 0:
		return protocol.Errorf(protocol.InvalidArgument, "please provide a positive integer as a depth or -1 for entire subtree")
	}
	if _, err := r.NodeForID(id); err != nil {
		return err
	}
	r.PushChildNodesToFrontend(id, depth)
	return nil
}

// PushChildNodesToFrontend sends the children of node id to the front end,
// unless they have been sent already. For depth > 1 descendants are sent
// as well.
func (r *Registry) PushChildNodesToFrontend(id protocol.NodeID, depth int) {
	node := r.idToNode[id]
	if node == nil || !w3cdom.IsContainer(node) {
		return
	}
	m := r.idToMap[id]
	if r.requested[id] {
		if depth <= 1 {
			return
		}
		depth--
		for ch := r.tree.FirstChild(node); ch != nil; ch = r.tree.NextSibling(ch) {
			if chID := m.ids[ch]; chID != 0 {
				r.PushChildNodesToFrontend(chID, depth)
			}
		}
		return
	}
	children := r.buildArrayForContainerChildren(node, depth, m)
	r.emit(protocol.EventSetChildNodes, protocol.SetChildNodesParams{ParentID: id, Nodes: children})
}

// PushNodePathToFrontend makes sure the front end knows a node, together
// with all its ancestors, and returns its id. Parents are always sent
// before their children. A node outside the document is sent as part of
// its detached subtree, which gets a map of its own and is reported with
// parent id 0.
//
// Returns 0 if the front end has not requested the document.
func (r *Registry) PushNodePathToFrontend(node *html.Node) protocol.NodeID {
	if node == nil || r.document == nil || r.main.ids[r.document] == 0 {
		return 0
	}
	if m := r.mapOf(node); m != nil {
		return m.ids[node]
	}
	var path []*html.Node
	var m *IDMap
	for n := node; ; {
		parent := r.tree.ParentOf(n)
		if parent == nil {
			m = newIDMap("dangling")
			r.dangling = append(r.dangling, m)
			root := r.BuildObjectForNode(n, 0, m)
			r.emit(protocol.EventSetChildNodes, protocol.SetChildNodesParams{Nodes: []*protocol.Node{root}})
			tracer().Debugf("nodereg: pushed detached subtree %d", root.NodeID)
			break
		}
		path = append(path, parent)
		if m = r.mapOf(parent); m != nil {
			break
		}
		n = parent
	}
	for i := len(path) - 1; i >= 0; i-- {
		r.PushChildNodesToFrontend(m.ids[path[i]], 1)
	}
	return m.ids[node]
}

// --- Protocol objects ------------------------------------------------------

// BuildObjectForNode binds a node into m and returns its protocol
// representation, including children down to depth.
func (r *Registry) BuildObjectForNode(node *html.Node, depth int, m *IDMap) *protocol.Node {
	id := r.Bind(node, m)
	value := &protocol.Node{
		NodeID:   id,
		NodeType: w3cdom.NodeType(r.tree, node),
		NodeName: w3cdom.NodeName(r.tree, node),
	}
	switch node.Type {
	case html.ElementNode:
		if r.tree.PseudoType(node) == "" {
			value.LocalName = strings.ToLower(node.Data)
		}
		value.Attributes = buildArrayForElementAttributes(node)
		if doc := r.tree.ContentDocument(node); doc != nil {
			r.contentDocs[node] = doc
			value.ContentDocument = r.BuildObjectForNode(doc, 0, m)
		}
		for _, root := range r.tree.ShadowRoots(node) {
			value.ShadowRoots = append(value.ShadowRoots, r.BuildObjectForNode(root, 0, m))
		}
		for _, pseudo := range r.tree.PseudoElements(node) {
			value.PseudoElements = append(value.PseudoElements, r.BuildObjectForNode(pseudo, 0, m))
		}
		value.PseudoType = r.tree.PseudoType(node)
	case html.TextNode, html.CommentNode:
		value.NodeValue = node.Data
	case html.DocumentNode:
		value.DocumentURL = r.tree.DocumentURL(node)
	}
	if w3cdom.IsContainer(node) {
		count := w3cdom.ChildCount(r.tree, node)
		value.ChildNodeCount = &count
		if children := r.buildArrayForContainerChildren(node, depth, m); len(children) > 0 {
			value.Children = children
		}
	}
	return value
}

func (r *Registry) buildArrayForContainerChildren(container *html.Node, depth int, m *IDMap) []*protocol.Node {
	children := []*protocol.Node{}
	if depth == 0 {
		// A lone text child is sent right away; the container then counts
		// as requested.
		first := r.tree.FirstChild(container)
		if first != nil && first.Type == html.TextNode && r.tree.NextSibling(first) == nil {
			children = append(children, r.BuildObjectForNode(first, 0, m))
			r.requested[r.Bind(container, m)] = true
		}
		return children
	}
	depth--
	r.requested[r.Bind(container, m)] = true
	for ch := r.tree.FirstChild(container); ch != nil; ch = r.tree.NextSibling(ch) {
		children = append(children, r.BuildObjectForNode(ch, depth, m))
	}
	return children
}

func buildArrayForElementAttributes(element *html.Node) []string {
	attrs := make([]string, 0, 2*len(element.Attr))
	for _, a := range element.Attr {
		name := a.Key
		if a.Namespace != "" {
			name = a.Namespace + ":" + a.Key
		}
		attrs = append(attrs, name, a.Val)
	}
	return attrs
}
