/*
Package breakpoints implements DOM mutation breakpoints and the flat
breakpoint sets for events, instrumentation points and URLs.

Every node with breakpoints has a mask in a Table. The low 16 bits hold
breakpoint kinds set on the node itself, the high 16 bits hold kinds it
inherits from an ancestor. Only SubtreeModified is inherited. Setting and
removing breakpoints touches no more of the tree than it has to: propagation
stops at nodes which already carry the bit, or which carry a breakpoint of
their own.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/
package breakpoints

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'webinspect.breakpoints'.
func tracer() tracing.Trace {
	return tracing.Select("webinspect.breakpoints")
}
