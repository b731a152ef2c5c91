package domdbg

import (
	"bytes"
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/webinspect/dom"
	"golang.org/x/net/html"
)

func TestDump(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "webinspect.dom")
	defer teardown()
	//
	page, err := dom.NewPage(`<html><body><div id="a">hello</div> </body></html>`, "test:")
	if err != nil {
		t.Fatal(err)
	}
	ids := func(n *html.Node) int {
		if n == page.Document() {
			return 1
		}
		return 0
	}
	s := Dump(page, nil, ids)
	t.Logf("\n%s", s)
	for _, want := range []string{"#document [1]", "DIV#a", `#text "hello"`} {
		if !strings.Contains(s, want) {
			t.Errorf("expected dump to contain %q", want)
		}
	}
	if strings.Count(s, "#text") != 1 {
		t.Errorf("expected whitespace text to be skipped")
	}
}

func TestGraphViz(t *testing.T) {
	page, err := dom.NewPage(`<html><body><p>x</p></body></html>`, "test:")
	if err != nil {
		t.Fatal(err)
	}
	var b bytes.Buffer
	if err := ToGraphViz(page, &b, nil); err != nil {
		t.Fatal(err)
	}
	out := b.String()
	if !strings.HasPrefix(out, "digraph g {") || !strings.HasSuffix(out, "}\n") {
		t.Errorf("output is not a digraph:\n%s", out)
	}
	if !strings.Contains(out, "node00001 -> node00002") {
		t.Errorf("expected an edge from the document to its element:\n%s", out)
	}
}
