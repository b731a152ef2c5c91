package stylesync

import (
	"errors"
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/webinspect/dom"
	"github.com/npillmayer/webinspect/dom/w3cdom"
	"github.com/npillmayer/webinspect/inspector/protocol"
	"golang.org/x/net/html"
)

func pageWithStyle(t *testing.T, css string) (*dom.Page, *Sheet) {
	page, err := dom.NewPage(`<html><head><style>`+css+`</style></head><body><div id="d" style="color: red"></div></body></html>`, "test:")
	if err != nil {
		t.Fatal(err)
	}
	sheets := page.StyleSheets()
	if len(sheets) != 1 {
		t.Fatalf("expected 1 style sheet, have %d", len(sheets))
	}
	backend := NewSheetBackend(sheets[0], page.OriginalStyleSheetText)
	return page, NewSheet("s.1", backend, page.Parser())
}

func mustText(t *testing.T, s *Sheet) string {
	text, err := s.Text()
	if err != nil {
		t.Fatal(err)
	}
	return text
}

func styleValue(s *Sheet, ordinal int, name string) (string, bool) {
	return s.Rule(ordinal).Style().PropertyValue(name)
}

func TestOverwriteProperty(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "webinspect.stylesync")
	defer teardown()
	//
	_, sheet := pageWithStyle(t, `.a { color: red; }`)
	changes := 0
	sheet.onChange = func(*Sheet) { changes++ }
	snap, err := sheet.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	old, err := sheet.SetPropertyText(0, 0, "color: blue;", true)
	if err != nil {
		t.Fatal(err)
	}
	if old != "color: red;" {
		t.Errorf("expected old text to be exact source text, have %q", old)
	}
	if text := mustText(t, sheet); text != `.a { color: blue; }` {
		t.Errorf("unexpected text %q", text)
	}
	if v, _ := styleValue(sheet, 0, "color"); v != "blue" {
		t.Errorf("expected live model to follow text, have color=%q", v)
	}
	if err := sheet.Restore(snap); err != nil {
		t.Fatal(err)
	}
	if text := mustText(t, sheet); text != `.a { color: red; }` {
		t.Errorf("expected restore to bring back original text, have %q", text)
	}
	if v, _ := styleValue(sheet, 0, "color"); v != "red" {
		t.Errorf("expected restore to reach live model, have color=%q", v)
	}
	if changes != 2 {
		t.Errorf("expected 2 change notifications, have %d", changes)
	}
}

func TestAppendAndInsert(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "webinspect.stylesync")
	defer teardown()
	//
	_, sheet := pageWithStyle(t, `.a { color: red; }`)
	if _, err := sheet.SetPropertyText(0, 1, "margin: 0", false); err != nil {
		t.Fatal(err)
	}
	if text := mustText(t, sheet); text != `.a { color: red; margin: 0; }` {
		t.Errorf("unexpected text after append: %q", text)
	}
	if _, err := sheet.SetPropertyText(0, 0, "top: 1px;", false); err != nil {
		t.Fatal(err)
	}
	if text := mustText(t, sheet); text != `.a { top: 1px; color: red; margin: 0; }` {
		t.Errorf("unexpected text after insert: %q", text)
	}
	if _, err := sheet.SetPropertyText(0, 4, "left: 0;", false); err == nil {
		t.Errorf("expected index beyond end to be rejected")
	}
	if _, err := sheet.SetPropertyText(0, 3, "left: 0;", true); !errors.Is(err, protocol.ErrInvalidArgument) {
		t.Errorf("expected overwrite at end to be an invalid argument, have %v", err)
	}
}

func TestMultiLineFormatting(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "webinspect.stylesync")
	defer teardown()
	//
	css := ".x {\n  /* c */\n  top: 1px;\n  left: 2px;\n}\n"
	_, sheet := pageWithStyle(t, css)
	if _, err := sheet.SetPropertyText(0, 2, "right: 3px", false); err != nil {
		t.Fatal(err)
	}
	want := ".x {\n  /* c */\n  top: 1px;\n  left: 2px;\n  right: 3px;\n}\n"
	if text := mustText(t, sheet); text != want {
		t.Errorf("expected indentation to be sampled, have %q", text)
	}
	old, err := sheet.SetPropertyText(0, 0, "", true)
	if err != nil {
		t.Fatal(err)
	}
	if old != "top: 1px;" {
		t.Errorf("unexpected old text %q", old)
	}
	want = ".x {\n  /* c */\n  left: 2px;\n  right: 3px;\n}\n"
	if text := mustText(t, sheet); text != want {
		t.Errorf("unexpected text after removal: %q", text)
	}
	if _, ok := styleValue(sheet, 0, "top"); ok {
		t.Errorf("expected top to be gone from live model")
	}
}

func TestToggleRestoresExactText(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "webinspect.stylesync")
	defer teardown()
	//
	css := `.a { color: red; margin: 0; }`
	_, sheet := pageWithStyle(t, css)
	if err := sheet.ToggleProperty(0, 0, true); err != nil {
		t.Fatal(err)
	}
	if text := mustText(t, sheet); text != `.a {  margin: 0; }` {
		t.Errorf("expected exactly the property text to be removed, have %q", text)
	}
	if _, ok := styleValue(sheet, 0, "color"); ok {
		t.Errorf("expected disabled property to be gone from live model")
	}
	props, err := sheet.AllProperties(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(props) != 2 || !props[0].Disabled || props[0].Status != protocol.StatusDisabled || props[1].Name != "margin" {
		t.Fatalf("expected disabled color in front of margin, have %+v", props)
	}
	if err := sheet.ToggleProperty(0, 0, true); err != nil {
		t.Errorf("expected toggling to same state to be a no-op, have %v", err)
	}
	if err := sheet.ToggleProperty(0, 0, false); err != nil {
		t.Fatal(err)
	}
	if text := mustText(t, sheet); text != css {
		t.Errorf("expected enable to restore original text, have %q", text)
	}
	if len(sheet.Disabled(0)) != 0 {
		t.Errorf("expected no disabled properties left")
	}
}

func TestToggleKeepsUnterminatedProperty(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "webinspect.stylesync")
	defer teardown()
	//
	css := `.a { color: red; margin: 0 }`
	_, sheet := pageWithStyle(t, css)
	if err := sheet.ToggleProperty(0, 0, true); err != nil {
		t.Fatal(err)
	}
	if v, ok := styleValue(sheet, 0, "margin"); !ok || v != "0" {
		t.Errorf("expected live margin to survive toggling color, have %q", v)
	}
	if err := sheet.ToggleProperty(0, 0, false); err != nil {
		t.Fatal(err)
	}
	if text := mustText(t, sheet); text != css {
		t.Errorf("expected enable to restore original text, have %q", text)
	}
	for name, want := range map[string]string{"color": "red", "margin": "0"} {
		if v, _ := styleValue(sheet, 0, name); v != want {
			t.Errorf("expected live %s=%q after enabling, have %q", name, want, v)
		}
	}
}

func TestDisabledSurvivesEdits(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "webinspect.stylesync")
	defer teardown()
	//
	css := `.a { color: red; margin: 0; }`
	_, sheet := pageWithStyle(t, css)
	if err := sheet.ToggleProperty(0, 1, true); err != nil {
		t.Fatal(err)
	}
	if _, err := sheet.SetPropertyText(0, 0, "color: green;", true); err != nil {
		t.Fatal(err)
	}
	if _, err := sheet.SetPropertyText(0, 2, "top: 0", false); err != nil {
		t.Fatal(err)
	}
	props, _ := sheet.AllProperties(0)
	names := []string{}
	for _, p := range props {
		names = append(names, p.Name)
	}
	if len(names) != 3 || names[0] != "color" || names[1] != "margin" || names[2] != "top" {
		t.Errorf("unexpected property order %v", names)
	}
	if err := sheet.ToggleProperty(0, 1, false); err != nil {
		t.Fatal(err)
	}
	if text := mustText(t, sheet); text != `.a { color: green; margin: 0; top: 0; }` {
		t.Errorf("unexpected text %q", text)
	}
}

func TestInactiveStatus(t *testing.T) {
	_, sheet := pageWithStyle(t, `.a { color: red; color: blue; }`)
	props, err := sheet.AllProperties(0)
	if err != nil {
		t.Fatal(err)
	}
	if props[0].Status != protocol.StatusInactive || props[1].Status != protocol.StatusActive {
		t.Errorf("expected first color to be shadowed, have %s, %s", props[0].Status, props[1].Status)
	}
	if props[0].Range == nil || props[0].Range.Start != 5 {
		t.Errorf("expected absolute source range, have %v", props[0].Range)
	}
}

func TestRejectEscapingText(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "webinspect.stylesync")
	defer teardown()
	//
	_, sheet := pageWithStyle(t, `.a { color: red; }`)
	for _, text := range []string{
		"color: blue; /* open",
		"color: blue; } .evil { top: 0",
		`content: "unclosed`,
		"nonsense",
	} {
		if _, err := sheet.SetPropertyText(0, 0, text, true); !errors.Is(err, protocol.ErrSyntax) {
			t.Errorf("expected %q to be rejected as syntax error, have %v", text, err)
		}
	}
	if text := mustText(t, sheet); text != `.a { color: red; }` {
		t.Errorf("expected text to be unchanged, have %q", text)
	}
}

func TestRulesOnInspectorSheet(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "webinspect.stylesync")
	defer teardown()
	//
	page, err := dom.NewPage(`<html><head></head><body></body></html>`, "test:")
	if err != nil {
		t.Fatal(err)
	}
	live, err := page.CreateInspectorStyleSheet(page.Document())
	if err != nil {
		t.Fatal(err)
	}
	sheet := NewSheet("s.2", NewSheetBackend(live, page.OriginalStyleSheetText), page.Parser())
	if _, err := sheet.AddRule(".b {"); !errors.Is(err, protocol.ErrSyntax) {
		t.Errorf("expected invalid selector to be rejected, have %v", err)
	}
	ordinal, err := sheet.AddRule(".b")
	if err != nil {
		t.Fatal(err)
	}
	if ordinal != 0 || mustText(t, sheet) != ".b {}" {
		t.Errorf("unexpected rule %d with text %q", ordinal, mustText(t, sheet))
	}
	if _, err := sheet.SetPropertyText(0, 0, "color: red", false); err != nil {
		t.Fatal(err)
	}
	if text := mustText(t, sheet); text != ".b {\n    color: red;\n}" {
		t.Errorf("unexpected text %q", text)
	}
	old, err := sheet.SetRuleSelector(0, "p > .b")
	if err != nil || old != ".b" {
		t.Errorf("expected old selector .b, have %q, %v", old, err)
	}
	if sel := sheet.Rule(0).Selector(); sel != "p > .b" {
		t.Errorf("expected live selector to change, have %q", sel)
	}
	if err := sheet.DeleteRule(0); err != nil {
		t.Fatal(err)
	}
	if text := mustText(t, sheet); text != "" || sheet.RuleCount() != 0 {
		t.Errorf("expected empty sheet, have %q with %d rules", text, sheet.RuleCount())
	}
	if err := sheet.DeleteRule(0); !errors.Is(err, protocol.ErrNotFound) {
		t.Errorf("expected deleting a missing rule to fail, have %v", err)
	}
}

func TestInlineStyle(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "webinspect.stylesync")
	defer teardown()
	//
	page, _ := pageWithStyle(t, ``)
	var div *html.Node
	var find func(*html.Node)
	find = func(n *html.Node) {
		if id, _ := w3cdom.Attr(n, "id"); id == "d" {
			div = n
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			find(c)
		}
	}
	find(page.Document())
	sheet := NewSheet("inline", NewInlineBackend(div, page, page.Parser()), page.Parser())
	if _, err := sheet.SetPropertyText(0, 1, "margin: 0", false); err != nil {
		t.Fatal(err)
	}
	if style, _ := w3cdom.Attr(div, "style"); style != "color: red; margin: 0;" {
		t.Errorf("expected edit to reach style attribute, have %q", style)
	}
	if _, err := sheet.AddRule(".x"); !errors.Is(err, protocol.ErrNotModifiable) {
		t.Errorf("expected inline style to refuse rules, have %v", err)
	}
	sheet.Resync(false, "")
	if sheet.State() != NoText {
		t.Errorf("expected resync to drop cached text")
	}
	if text := mustText(t, sheet); text != "color: red; margin: 0;" {
		t.Errorf("expected text to be read from attribute again, have %q", text)
	}
}

func TestMalformedSheetText(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "webinspect.stylesync")
	defer teardown()
	//
	for _, text := range []string{
		"; a { b: c }",
		".a { color: red; }; .b { color: blue }",
		"a { x: y } b c d; e { f: g }",
		"@media screen { ; p { margin: 0 } }",
		".a { color: red",
		".a { color: red } }",
		"} .a { color: red }",
		"@media print { .a { color: red }",
		"@unknown foo; .a { color: red }",
		"@unknown { x } .a { color: red }",
		".a { b { c } d; }",
		".a { content: \"open",
	} {
		_, sheet := pageWithStyle(t, `.z { top: 0; }`)
		err := sheet.SetText(text)
		if err != nil {
			if !errors.Is(err, protocol.ErrSyntax) {
				t.Errorf("expected syntax error for %q, have %v", text, err)
			}
			continue
		}
		data, err := sheet.SourceData()
		if err != nil {
			t.Errorf("expected source data for %q, have %v", text, err)
			continue
		}
		if len(data) != sheet.RuleCount() {
			t.Errorf("live model of %q has %d rules, source text %d", text, sheet.RuleCount(), len(data))
		}
	}
}

func TestAddDeleteRoundTrip(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "webinspect.stylesync")
	defer teardown()
	//
	for _, css := range []string{`.a { color: red; }`, ".a { color: red; }\n", ""} {
		_, sheet := pageWithStyle(t, css)
		ordinal, err := sheet.AddRule(".b")
		if err != nil {
			t.Fatal(err)
		}
		if err := sheet.DeleteRule(ordinal); err != nil {
			t.Fatal(err)
		}
		if text := mustText(t, sheet); text != css {
			t.Errorf("expected add and delete to restore %q, have %q", css, text)
		}
		if want := strings.Count(css, "{"); sheet.RuleCount() != want {
			t.Errorf("expected %d rules after add and delete, have %d", want, sheet.RuleCount())
		}
	}
}
