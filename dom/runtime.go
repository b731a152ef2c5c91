package dom

import (
	"time"

	"golang.org/x/net/html"
)

// Post queues a task for deferred execution. Tasks run in the order they
// have been posted, when the owner of the page calls RunPending.
func (p *Page) Post(task func()) {
	p.tasks = append(p.tasks, task)
}

// RunPending runs queued tasks until the queue is empty, including tasks
// posted while running. It returns the number of tasks run.
func (p *Page) RunPending() int {
	n := 0
	for len(p.tasks) > 0 {
		task := p.tasks[0]
		p.tasks = p.tasks[1:]
		task()
		n++
	}
	return n
}

// Pending returns the number of queued tasks.
func (p *Page) Pending() int {
	return len(p.tasks)
}

// --- Events ----------------------------------------------------------------

// AddEventListener registers a listener for events of a given name at a node.
func (p *Page) AddEventListener(target *html.Node, eventName string, listener func()) {
	m := p.listeners[target]
	if m == nil {
		m = make(map[string][]func())
		p.listeners[target] = m
	}
	m[eventName] = append(m[eventName], listener)
}

// DispatchEvent fires an event at a target node. The event bubbles up the
// tree. DispatchEvent returns the number of listeners called.
func (p *Page) DispatchEvent(target *html.Node, eventName string) int {
	p.hooks.WillHandleEvent(target, eventName)
	defer p.hooks.DidHandleEvent()
	count := 0
	for n := target; n != nil; n = p.ParentOf(n) {
		for _, listener := range p.listeners[n][eventName] {
			listener()
			count++
		}
	}
	return count
}

// --- Timers ----------------------------------------------------------------

type timer struct {
	timeout    time.Duration
	singleShot bool
	callback   func()
}

// InstallTimer arms a timer and returns its ID. Pages have no clock; timers
// fire when their owner calls FireTimer.
func (p *Page) InstallTimer(timeout time.Duration, singleShot bool, callback func()) int {
	p.lastTimer++
	p.timers[p.lastTimer] = &timer{timeout: timeout, singleShot: singleShot, callback: callback}
	p.hooks.DidInstallTimer(p.lastTimer, timeout, singleShot)
	return p.lastTimer
}

// RemoveTimer disarms a timer.
func (p *Page) RemoveTimer(id int) error {
	if _, ok := p.timers[id]; !ok {
		return ErrNoTimer
	}
	delete(p.timers, id)
	p.hooks.DidRemoveTimer(id)
	return nil
}

// FireTimer runs the callback of a timer. Single-shot timers are removed.
func (p *Page) FireTimer(id int) error {
	t, ok := p.timers[id]
	if !ok {
		return ErrNoTimer
	}
	if t.singleShot {
		delete(p.timers, id)
	}
	p.hooks.WillFireTimer(id)
	defer p.hooks.DidFireTimer()
	if t.callback != nil {
		t.callback()
	}
	return nil
}

// --- Network and script ----------------------------------------------------

// SendXMLHttpRequest is called by page script issuing a request for url.
func (p *Page) SendXMLHttpRequest(url string) {
	p.hooks.WillSendXMLHttpRequest(url)
	tracer().Debugf("dom: XHR to %s", url)
}

// EvaluateScript runs a script, represented by a Go function.
func (p *Page) EvaluateScript(url string, line int, script func()) {
	p.hooks.WillEvaluateScript(url, line)
	defer p.hooks.DidEvaluateScript()
	if script != nil {
		script()
	}
}
