/*
Package dom hosts the live documents an inspector front end looks at.

Status

Early draft, API may change frequently. Please stay patient.

Overview

A Page owns a tree of *html.Node values (package golang.org/x/net/html),
together with everything HTML parsing alone does not give us: content
documents of frames, shadow roots attached to host elements, generated
::before/::after nodes and the style sheets of the page. Clients never get
ownership of nodes; they may use them as lookup keys only.

All mutation of a page goes through its methods (InsertBefore, SetAttribute,
SetNodeValue, …). Each of them calls into a Hooks implementation at fixed
points, before and after the live tree changes. This is the only way
observers learn about changes, so code which wants to stay consistent
with a page must not touch the html.Node values directly.

A page is single-threaded. It owns a queue of deferred tasks (see Post and
RunPending), which stands in for the event loop of a real engine.

Page implements interface w3cdom.Tree, which is what inspection code uses
to walk the document. Whitespace-only text nodes are skipped by the tree
view if the page is configured to do so.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>

*/
package dom

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer will return a tracer. We are tracing to 'webinspect.dom'
func tracer() tracing.Trace {
	return tracing.Select("webinspect.dom")
}
