/*
Package nodereg maps live nodes to the integer ids a front end knows them by.

Overview

A front end never sees the live tree. It sees a mirror, built from the nodes
and events it has been sent, in which every node carries an id. The registry
keeps track of this mirror: which nodes have ids, and whose children have
been sent ("requested"). Ids come from one counter per registry and are never
reused, not even after bindings have been discarded.

The registry holds to one rule: a node is never reported as a child of a
node the front end has not received. Pushing a node (PushNodePathToFrontend)
sends every ancestor first; mutations below unknown nodes are not reported
at all, and mutations below nodes whose children have not been sent are
reported as changes of the child count only.

Nodes outside the document may be pushed as well, e.g. a subtree which has
just been removed. Such a subtree gets an id map of its own, a "dangling"
map, and its root is sent with parent id 0.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/
package nodereg

import "github.com/npillmayer/schuko/tracing"

// tracer traces with key 'webinspect.nodereg'.
func tracer() tracing.Trace {
	return tracing.Select("webinspect.nodereg")
}
