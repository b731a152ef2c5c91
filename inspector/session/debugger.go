package session

import (
	"github.com/npillmayer/webinspect/inspector/breakpoints"
	"github.com/npillmayer/webinspect/inspector/protocol"
)

// PauseReporter is a breakpoints.Debugger for pages without a script
// debugger. Pauses are not carried out but reported to the front end. A
// scheduled pause is reported once, until it is cancelled.
type PauseReporter struct {
	Frontend protocol.Frontend
	pending  bool
}

var _ breakpoints.Debugger = (*PauseReporter)(nil)

// BreakProgram is part of interface breakpoints.Debugger.
func (r *PauseReporter) BreakProgram(reason string, data map[string]interface{}) {
	r.report(reason, data)
}

// SchedulePauseOnNextStatement is part of interface breakpoints.Debugger.
func (r *PauseReporter) SchedulePauseOnNextStatement(reason string, data map[string]interface{}) {
	if r.pending {
		return
	}
	r.pending = true
	r.report(reason, data)
}

// CancelPauseOnNextStatement is part of interface breakpoints.Debugger.
func (r *PauseReporter) CancelPauseOnNextStatement() {
	r.pending = false
}

func (r *PauseReporter) report(reason string, data map[string]interface{}) {
	tracer().P("reason", reason).Infof("session: paused")
	if r.Frontend == nil {
		return
	}
	r.Frontend.Emit(protocol.Event{
		Method: protocol.EventPaused,
		Params: protocol.PausedParams{Reason: reason, Data: data},
	})
}
