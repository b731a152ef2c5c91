/*
Package domdbg implements helpers to debug a live DOM tree.

Trees are printed as seen through a w3cdom.Tree, i.e., including frame
documents, shadow roots and pseudo elements, and with whitespace text
skipped if the tree view does so. Nodes may be annotated with the ids an
inspector front end knows them by.

______________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/
package domdbg

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"testing"
	"text/template"

	"github.com/npillmayer/webinspect/dom/w3cdom"
	tp "github.com/xlab/treeprint"
	"golang.org/x/net/html"
)

// IDs returns the front end id of a node, or 0. nodereg.Registry.ID is a
// suitable function, wrapped to return int.
type IDs func(*html.Node) int

func label(tree w3cdom.Tree, n *html.Node, ids IDs) string {
	var b strings.Builder
	b.WriteString(w3cdom.NodeName(tree, n))
	switch n.Type {
	case html.ElementNode:
		if id, ok := w3cdom.Attr(n, "id"); ok {
			b.WriteString("#" + id)
		}
	case html.TextNode, html.CommentNode:
		b.WriteString(" " + shortText(n.Data, 20))
	}
	if ids != nil {
		if id := ids(n); id != 0 {
			fmt.Fprintf(&b, " [%d]", id)
		}
	}
	return b.String()
}

// kid is a child in the tree view, together with the kind of edge leading
// to it.
type kid struct {
	node *html.Node
	via  string // "", "frame", "shadow" or a pseudo element type
}

func kids(tree w3cdom.Tree, n *html.Node) []kid {
	var ks []kid
	if doc := tree.ContentDocument(n); doc != nil {
		ks = append(ks, kid{doc, "frame"})
	}
	for _, root := range tree.ShadowRoots(n) {
		ks = append(ks, kid{root, "shadow"})
	}
	for _, p := range tree.PseudoElements(n) {
		ks = append(ks, kid{p, tree.PseudoType(p)})
	}
	for ch := tree.FirstChild(n); ch != nil; ch = tree.NextSibling(ch) {
		ks = append(ks, kid{node: ch})
	}
	return ks
}

// Dump prints the tree below root (the document if root is nil).
func Dump(tree w3cdom.Tree, root *html.Node, ids IDs) string {
	if root == nil {
		root = tree.Document()
	}
	p := tp.NewWithRoot(label(tree, root, ids))
	dump(tree, p, root, ids)
	return p.String()
}

func dump(tree w3cdom.Tree, p tp.Tree, n *html.Node, ids IDs) {
	for _, k := range kids(tree, n) {
		text := label(tree, k.node, ids)
		if k.via != "" {
			text = "(" + k.via + ") " + text
		}
		if len(kids(tree, k.node)) == 0 {
			p.AddNode(text)
			continue
		}
		dump(tree, p.AddBranch(text), k.node, ids)
	}
}

// --- GraphViz --------------------------------------------------------------

type graphParamsType struct {
	Fontname string
	NodeTmpl *template.Template
	EdgeTmpl *template.Template
}

type dotNode struct {
	Name  string
	Label string
	Text  bool
}

type dotEdge struct {
	From, To string
	Via      string
}

// ToGraphViz outputs a diagram of a tree in GraphViz (DOT) format.
func ToGraphViz(tree w3cdom.Tree, w io.Writer, ids IDs) error {
	gparams := graphParamsType{Fontname: "Helvetica"}
	head := template.Must(template.New("dom").Parse(graphHeadTmpl))
	gparams.NodeTmpl = template.Must(template.New("domnode").Parse(domNodeTmpl))
	gparams.EdgeTmpl = template.Must(template.New("domedge").Parse(domEdgeTmpl))
	if err := head.Execute(w, gparams); err != nil {
		return err
	}
	dict := make(map[*html.Node]string, 256)
	if err := dotNodes(tree, tree.Document(), w, dict, ids, &gparams); err != nil {
		return err
	}
	_, err := io.WriteString(w, "}\n")
	return err
}

func dotName(n *html.Node, dict map[*html.Node]string) string {
	name := dict[n]
	if name == "" {
		name = fmt.Sprintf("node%05d", len(dict)+1)
		dict[n] = name
	}
	return name
}

func dotNodes(tree w3cdom.Tree, n *html.Node, w io.Writer, dict map[*html.Node]string, ids IDs,
	gparams *graphParamsType) error {
	//
	dn := dotNode{
		Name:  dotName(n, dict),
		Label: label(tree, n, ids),
		Text:  n.Type == html.TextNode || n.Type == html.CommentNode,
	}
	if err := gparams.NodeTmpl.Execute(w, dn); err != nil {
		return err
	}
	for _, k := range kids(tree, n) {
		if err := dotNodes(tree, k.node, w, dict, ids, gparams); err != nil {
			return err
		}
		e := dotEdge{From: dn.Name, To: dotName(k.node, dict), Via: k.via}
		if err := gparams.EdgeTmpl.Execute(w, e); err != nil {
			return err
		}
	}
	return nil
}

// Dotty is a helper for testing. Given a tree and a testing.T, it will
// create a GraphViz image of the tree and write it to a file in the
// current folder, choosing a unique file name. The image is in SVG format.
//
// If an error occurs, t.Error(…) will be set, causing the test to fail.
func Dotty(tree w3cdom.Tree, ids IDs, t *testing.T) {
	tmpfile, err := os.CreateTemp(".", "dom.*.dot")
	if err != nil {
		t.Error(err)
		return
	}
	defer func() {
		tmpfile.Close()
		os.Remove(tmpfile.Name())
	}()
	t.Logf("writing DOM digraph to %s\n", tmpfile.Name())
	if err := ToGraphViz(tree, tmpfile, ids); err != nil {
		t.Error(err)
		return
	}
	outOption := fmt.Sprintf("-o%s.svg", tmpfile.Name())
	cmd := exec.Command("dot", "-Tsvg", outOption, tmpfile.Name())
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		t.Error(err.Error())
	}
}

func shortText(s string, max int) string {
	if len(s) > max {
		s = s[:max] + "..."
	}
	s = strings.ReplaceAll(s, "\n", `\n`)
	s = strings.ReplaceAll(s, "\t", `\t`)
	return fmt.Sprintf("%q", s)
}

// --- Templates --------------------------------------------------------

const graphHeadTmpl = `digraph g {
  graph [labelloc="t" label="" splines=true overlap=false rankdir = "LR"];
  node [fontname = "{{ .Fontname }}" fontsize=14] ;
  edge [fontname = "{{ .Fontname }}" fontsize=14] ;
`

const domNodeTmpl = `{{ if .Text -}}
{{ .Name }}	[ label={{ printf "%q" .Label }} shape=box style=filled fillcolor=grey95 fontname="Courier" fontsize=11.0 ] ;
{{ else -}}
{{ .Name }}	[ label={{ printf "%q" .Label }} shape=ellipse style=filled fillcolor=lightblue3 ] ;
{{ end -}}
`

const domEdgeTmpl = `{{ .From }} -> {{ .To }} [weight=1{{ if .Via }} style="dashed" label={{ printf "%q" .Via }}{{ end }}] ;
`
