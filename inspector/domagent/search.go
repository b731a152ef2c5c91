package domagent

import (
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/npillmayer/webinspect/dom/w3cdom"
	"github.com/npillmayer/webinspect/inspector/protocol"
	"golang.org/x/net/html"
)

func compileSelector(selector string) (cascadia.SelectorGroup, error) {
	sel, err := cascadia.ParseGroup(selector)
	if err != nil {
		return nil, protocol.Errorf(protocol.InvalidArgument, "invalid selector %q: %v", selector, err)
	}
	return sel, nil
}

func (a *Agent) queryRoot(id protocol.NodeID) (*html.Node, error) {
	return a.nodeForID(id, html.ElementNode, html.DocumentNode)
}

// QuerySelector returns the id of the first descendant of a node matching
// selector, or 0.
func (a *Agent) QuerySelector(id protocol.NodeID, selector string) (protocol.NodeID, error) {
	root, err := a.queryRoot(id)
	if err != nil {
		return 0, err
	}
	sel, err := compileSelector(selector)
	if err != nil {
		return 0, err
	}
	if n := cascadia.Query(root, sel); n != nil {
		return a.nodes.PushNodePathToFrontend(n), nil
	}
	return 0, nil
}

// QuerySelectorAll returns the ids of all descendants of a node matching
// selector, in document order.
func (a *Agent) QuerySelectorAll(id protocol.NodeID, selector string) ([]protocol.NodeID, error) {
	root, err := a.queryRoot(id)
	if err != nil {
		return nil, err
	}
	sel, err := compileSelector(selector)
	if err != nil {
		return nil, err
	}
	found := cascadia.QueryAll(root, sel)
	ids := make([]protocol.NodeID, 0, len(found))
	for _, n := range found {
		ids = append(ids, a.nodes.PushNodePathToFrontend(n))
	}
	return ids, nil
}

// --- Remote objects --------------------------------------------------------

// ResolveNode hands out an object handle for a node. Handles belong to an
// object group and live until the group is released.
func (a *Agent) ResolveNode(id protocol.NodeID, group string) (*protocol.RemoteObject, error) {
	n, err := a.nodeForID(id)
	if err != nil {
		return nil, err
	}
	a.lastObj++
	objectID := fmt.Sprintf("%s.node.%d", a.token, a.lastObj)
	a.objects[objectID] = remoteNode{node: n, group: group}
	a.groups[group] = append(a.groups[group], objectID)
	return &protocol.RemoteObject{
		Type:        "object",
		Subtype:     "node",
		ClassName:   className(n),
		Description: w3cdom.NodeName(a.nodes.Tree(), n),
		ObjectID:    objectID,
	}, nil
}

func className(n *html.Node) string {
	switch n.Type {
	case html.DocumentNode:
		return "HTMLDocument"
	case html.TextNode:
		return "Text"
	case html.CommentNode:
		return "Comment"
	case html.DoctypeNode:
		return "DocumentType"
	}
	return "HTMLElement"
}

// RequestNode pushes the node behind an object handle to the front end.
func (a *Agent) RequestNode(objectID string) (protocol.NodeID, error) {
	obj, ok := a.objects[objectID]
	if !ok {
		return 0, protocol.Errorf(protocol.NotFound, "no object with id %q", objectID)
	}
	id := a.nodes.PushNodePathToFrontend(obj.node)
	if id == 0 {
		return 0, protocol.Errorf(protocol.NotFound, "node of object %q is not part of the inspected document", objectID)
	}
	return id, nil
}

// ReleaseObjectGroup invalidates the object handles of a group.
func (a *Agent) ReleaseObjectGroup(group string) {
	for _, objectID := range a.groups[group] {
		delete(a.objects, objectID)
	}
	delete(a.groups, group)
}

// --- Search ----------------------------------------------------------------

// PerformSearch searches the document for nodes matching query, and
// returns a search id together with the number of results. A node matches
// if its name, an attribute or its text contains query, ignoring case, or
// if query is a selector the node matches.
func (a *Agent) PerformSearch(query string) (string, int) {
	query = strings.TrimSpace(query)
	lower := strings.ToLower(query)
	tagQuery := ""
	if strings.HasPrefix(lower, "<") {
		tagQuery = strings.TrimSuffix(strings.TrimPrefix(lower, "<"), ">")
	}
	sel, _ := cascadia.ParseGroup(query)
	var results []*html.Node
	tree := a.nodes.Tree()
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n == nil {
			return
		}
		if query != "" && matches(n, lower, tagQuery, sel) {
			results = append(results, n)
		}
		if doc := tree.ContentDocument(n); doc != nil {
			walk(doc)
		}
		for _, root := range tree.ShadowRoots(n) {
			walk(root)
		}
		for ch := tree.FirstChild(n); ch != nil; ch = tree.NextSibling(ch) {
			walk(ch)
		}
	}
	walk(tree.Document())
	a.lastSrch++
	searchID := fmt.Sprintf("%s.search.%d", a.token, a.lastSrch)
	a.searches[searchID] = results
	tracer().P("search", searchID).Debugf("domagent: %q found %d nodes", query, len(results))
	return searchID, len(results)
}

func matches(n *html.Node, lower, tagQuery string, sel cascadia.SelectorGroup) bool {
	switch n.Type {
	case html.ElementNode:
		name := strings.ToLower(n.Data)
		if tagQuery != "" && strings.HasPrefix(name, tagQuery) {
			return true
		}
		if strings.Contains(name, lower) {
			return true
		}
		for _, attr := range n.Attr {
			if strings.Contains(strings.ToLower(attr.Key), lower) || strings.Contains(strings.ToLower(attr.Val), lower) {
				return true
			}
		}
		return sel != nil && sel.Match(n)
	case html.TextNode, html.CommentNode:
		return strings.Contains(strings.ToLower(n.Data), lower)
	}
	return false
}

// GetSearchResults returns the ids of search results [from,to).
func (a *Agent) GetSearchResults(searchID string, from, to int) ([]protocol.NodeID, error) {
	results, ok := a.searches[searchID]
	if !ok {
		return nil, protocol.Errorf(protocol.NotFound, "no search session with id %q", searchID)
	}
	if from < 0 || to > len(results) || from >= to {
		return nil, protocol.Errorf(protocol.InvalidArgument, "invalid search result range [%d,%d)", from, to)
	}
	ids := make([]protocol.NodeID, 0, to-from)
	for _, n := range results[from:to] {
		ids = append(ids, a.nodes.PushNodePathToFrontend(n))
	}
	return ids, nil
}

// DiscardSearchResults forgets a search.
func (a *Agent) DiscardSearchResults(searchID string) {
	delete(a.searches, searchID)
}
