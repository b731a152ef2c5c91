/*
Package cssom provides a mutable CSS object model for live style sheets.

Status

This is a very first draft. It is unstable and the API will change without
notice. Please be patient.

Overview

CSSOM is the "CSS Object Model", similar to the DOM for HTML. A StyleSheet
holds a list of rules; style rules carry a selector and a Declaration,
grouping rules (@media, @supports, @document) carry nested rules, and all
other at-rules are kept opaque. Clients addressing style rules by position
use the flat list of style rules in document order (see FlatRules), which
descends into grouping rules only.

Parsing is not done here. Clients provide an implementation of interface
Parser (e.g., see package douceuradapter), which also computes source data:
byte ranges of rule headers, rule bodies and properties within a style sheet
text. Source data is what an inspector needs to patch style text without
re-serialising a sheet.

Every mutation of a sheet, a rule or a declaration is reported to an optional
observer function, so that an engine can forward CSSOM changes to interested
parties.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/
package cssom

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'webinspect.cssom'.
func tracer() tracing.Trace {
	return tracing.Select("webinspect.cssom")
}
