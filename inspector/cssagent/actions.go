package cssagent

import (
	"fmt"

	"github.com/npillmayer/webinspect/inspector/history"
	"github.com/npillmayer/webinspect/inspector/stylesync"
)

type actionKind int

const (
	setStyleSheetTextAction actionKind = iota
	setStyleTextAction
	setPropertyTextAction
	togglePropertyAction
	setRuleSelectorAction
	addRuleAction
	deleteRuleAction
)

var actionNames = [...]string{"SetStyleSheetText", "SetStyleText", "SetPropertyText",
	"ToggleProperty", "SetRuleSelector", "AddRule", "DeleteRule"}

// styleAction is an undoable edit of a style sheet. Undo and redo restore
// snapshots of the sheet taken around the edit.
type styleAction struct {
	kind      actionKind
	agent     *Agent
	entry     *entry
	ordinal   int
	index     int
	text      string // sheet text, style text, property text or selector
	overwrite bool
	disable   bool
	before    stylesync.Snapshot
	after     stylesync.Snapshot
	result    int // ordinal of an added rule
}

var _ history.Action = &styleAction{}

func (a *styleAction) Name() string {
	return actionNames[a.kind]
}

func (a *styleAction) MergeKey() string {
	switch a.kind {
	case setStyleSheetTextAction:
		return fmt.Sprintf("SetStyleSheetText %s", a.entry.id)
	case setStyleTextAction:
		return fmt.Sprintf("SetStyleText %s:%d", a.entry.id, a.ordinal)
	case setPropertyTextAction:
		return fmt.Sprintf("SetPropertyText %s:%d:%d:%t", a.entry.id, a.ordinal, a.index, a.overwrite)
	}
	return ""
}

func (a *styleAction) Merge(next history.Action) {
	if n, ok := next.(*styleAction); ok {
		a.text = n.text
		a.after = n.after
	}
}

func (a *styleAction) Perform() error {
	return a.agent.mute(func() error {
		sheet := a.entry.sheet
		before, err := sheet.Snapshot()
		if err != nil {
			return err
		}
		if err := a.apply(sheet); err != nil {
			return err
		}
		a.before = before
		a.after, err = sheet.Snapshot()
		return err
	})
}

func (a *styleAction) apply(sheet *stylesync.Sheet) (err error) {
	switch a.kind {
	case setStyleSheetTextAction:
		err = sheet.SetText(a.text)
	case setStyleTextAction:
		_, err = sheet.SetStyleText(a.ordinal, a.text)
	case setPropertyTextAction:
		_, err = sheet.SetPropertyText(a.ordinal, a.index, a.text, a.overwrite)
	case togglePropertyAction:
		err = sheet.ToggleProperty(a.ordinal, a.index, a.disable)
	case setRuleSelectorAction:
		_, err = sheet.SetRuleSelector(a.ordinal, a.text)
	case addRuleAction:
		a.result, err = sheet.AddRule(a.text)
	case deleteRuleAction:
		err = sheet.DeleteRule(a.ordinal)
	}
	return err
}

func (a *styleAction) Undo() error {
	return a.agent.mute(func() error {
		return a.entry.sheet.Restore(a.before)
	})
}

func (a *styleAction) Redo() error {
	return a.agent.mute(func() error {
		return a.entry.sheet.Restore(a.after)
	})
}
