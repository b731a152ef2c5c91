/*
Package stylesync keeps the text of a style sheet and its live object model
in agreement while a client edits either of them.

A Sheet caches the text of a sheet and the source ranges of its style rules
and properties. Every edit is performed on both: the live model is changed
through a Backend, and the text is patched at the affected range, leaving
all other text (comments, formatting, unparsable rules) alone.

Properties may be disabled. A disabled property is removed from text and
live model, but remembered together with its position, so that enabling it
again restores the exact text it has been removed from.

Inline styles are Sheets with a single rule without a selector, backed by
the style attribute of an element.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/
package stylesync

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'webinspect.stylesync'.
func tracer() tracing.Trace {
	return tracing.Select("webinspect.stylesync")
}
