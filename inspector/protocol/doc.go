/*
Package protocol defines what travels between an inspector and its front end.

Commands arrive as requests with an id, a method name and parameters, and are
answered by exactly one response carrying a result or an error. Events are
pushed without request, in the order the inspected page changes. Node ids,
style sheet ids and compound rule ids are scoped to one session.

Errors are classified by Kind. Whatever goes wrong within a command is
reported to the front end as an error object with the kind's code and a
message; nothing panics across the protocol boundary.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/
package protocol
