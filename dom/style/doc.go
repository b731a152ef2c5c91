/*
Package style computes the style of elements from declared properties.

Declarations reaching an element (from matching rules and its style
attribute) are cascaded into a Computed style. Properties an element does not
set are either inherited from its parent's computed style or take their
initial value, depending on the property. Shorthands for the four sides or
corners of a box are expanded into their longhand properties.

This is an approximation for display in an inspector front end, not a CSS
engine. Values are not resolved to used values and unknown properties are
carried as they are declared.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/
package style

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'webinspect.style'.
func tracer() tracing.Trace {
	return tracing.Select("webinspect.style")
}
