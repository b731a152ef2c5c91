package cssom_test

import (
	"errors"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/webinspect/dom/style/cssom"
	"github.com/npillmayer/webinspect/dom/style/cssom/douceuradapter"
)

func newSheet(t *testing.T, text string) *cssom.StyleSheet {
	sheet := cssom.NewStyleSheet(nil, "test.css", cssom.OriginAuthor, douceuradapter.New())
	if err := sheet.Load(text); err != nil {
		t.Fatalf("cannot load sheet: %v", err)
	}
	return sheet
}

func TestSheetLoadIsNotModification(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "webinspect.cssom")
	defer teardown()
	//
	sheet := newSheet(t, ".a { color: red; }")
	if sheet.Modified() {
		t.Error("expected freshly loaded sheet to be unmodified")
	}
	sheet.Rules()[0].Style().SetProperty("color", "blue", false)
	if !sheet.Modified() {
		t.Error("expected sheet to be modified after property change")
	}
	if v, _ := sheet.Rules()[0].Style().PropertyValue("COLOR"); v != "blue" {
		t.Errorf("expected color to be blue, is %q", v)
	}
}

func TestSheetObserver(t *testing.T) {
	sheet := newSheet(t, ".a { color: red; }")
	calls := 0
	sheet.SetObserver(func(*cssom.StyleSheet) { calls++ })
	if _, err := sheet.AppendStyleRule(".b"); err != nil {
		t.Fatal(err)
	}
	if err := sheet.DeleteRule(0); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("expected observer to be called twice, was called %d times", calls)
	}
	if sheet.CSSText() != ".b {}" {
		t.Errorf("expected serialized sheet '.b {}', is %q", sheet.CSSText())
	}
}

func TestSheetFlatRules(t *testing.T) {
	sheet := newSheet(t, "a {} @media print { b {} @font-face { font-family: x; } } c {}")
	flat := sheet.FlatRules()
	if len(flat) != 3 {
		t.Fatalf("expected 3 flat style rules, have %d", len(flat))
	}
	if flat[1].Selector() != "b" || flat[1].Parent() == nil {
		t.Errorf("expected second flat rule to be nested 'b', is %q", flat[1].Selector())
	}
	if err := sheet.Remove(flat[1]); err != nil {
		t.Fatal(err)
	}
	if len(sheet.FlatRules()) != 2 {
		t.Errorf("expected nested rule to be removed")
	}
	if err := sheet.Remove(flat[1]); !errors.Is(err, cssom.ErrNotInSheet) {
		t.Errorf("expected ErrNotInSheet for detached rule, have %v", err)
	}
}

func TestRuleSelector(t *testing.T) {
	sheet := newSheet(t, ".a { color: red; }")
	r := sheet.Rules()[0]
	if err := r.SetSelectorText("p >"); err == nil {
		t.Error("expected invalid selector to be rejected")
	}
	if err := r.SetSelectorText(" div.x "); err != nil {
		t.Fatal(err)
	}
	if r.Selector() != "div.x" {
		t.Errorf("expected selector 'div.x', is %q", r.Selector())
	}
	if _, err := sheet.InsertRule("p { margin: 0 }", 5); !errors.Is(err, cssom.ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange, have %v", err)
	}
}

func TestDeclarationCSSText(t *testing.T) {
	sheet := newSheet(t, ".a { color: red; margin: 0 !important }")
	d := sheet.Rules()[0].Style()
	if d.CSSText() != "color: red; margin: 0 !important;" {
		t.Errorf("unexpected declaration text %q", d.CSSText())
	}
	if err := d.SetCSSText("width: 1px"); err != nil {
		t.Fatal(err)
	}
	if d.Len() != 1 || d.IsImportant("margin") {
		t.Errorf("expected properties to be replaced, have %v", d.Properties())
	}
	if old := d.RemoveProperty("width"); old != "1px" || d.Len() != 0 {
		t.Errorf("expected width to be removed, old value is %q", old)
	}
}

func TestSourceRange(t *testing.T) {
	r := cssom.SourceRange{Start: 2, End: 5}
	if r.Len() != 3 || !r.Contains(4) || r.Contains(5) {
		t.Errorf("unexpected range behaviour for %v", r)
	}
	if s := r.Shift(3); s.Start != 5 || s.End != 8 {
		t.Errorf("expected shifted range [5,8), is %v", s)
	}
}
