/*
Package microtask implements a coalescing, single-shot deferred task.

Notifications which are triggered indirectly (by style recalculation rather
than by script) are collected in a Batch and delivered together, by one
deferred callback. Adding to a batch while its callback is pending just adds
to the set. The callback clears the batch before delivering, so a consumer
may add to the batch again while being called.

___________________________________________________________________________

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2022 Norbert Pillmayer <norbert@pillmayer.com>
*/
package microtask

// Scheduler runs a task later, on the same thread. dom.Page.Post is a
// Scheduler.
type Scheduler func(task func())

// Batch collects distinct items and delivers them to a flush function from
// a deferred task.
type Batch[T comparable] struct {
	schedule   Scheduler
	flush      func([]T)
	items      []T
	seen       map[T]struct{}
	pending    bool
	generation int // invalidates tasks scheduled before Cancel
}

// New creates a batch which schedules with sched and delivers to flush.
func New[T comparable](sched Scheduler, flush func([]T)) *Batch[T] {
	return &Batch[T]{
		schedule: sched,
		flush:    flush,
		seen:     make(map[T]struct{}),
	}
}

// Add puts an item into the batch and schedules delivery, if not already
// pending. Items are delivered in the order they have first been added.
func (b *Batch[T]) Add(item T) {
	if _, ok := b.seen[item]; !ok {
		b.seen[item] = struct{}{}
		b.items = append(b.items, item)
	}
	if b.pending {
		return
	}
	b.pending = true
	gen := b.generation
	b.schedule(func() {
		if gen != b.generation {
			return
		}
		b.run()
	})
}

// Pending is true if a delivery is scheduled.
func (b *Batch[T]) Pending() bool {
	return b.pending
}

// Len returns the number of items waiting for delivery.
func (b *Batch[T]) Len() int {
	return len(b.items)
}

// Flush delivers waiting items now. A scheduled task will find nothing to do.
func (b *Batch[T]) Flush() {
	if b.pending {
		b.generation++
		b.run()
	}
}

// Cancel drops waiting items. A scheduled task will find nothing to do.
func (b *Batch[T]) Cancel() {
	b.generation++
	b.pending = false
	b.items = nil
	b.seen = make(map[T]struct{})
}

func (b *Batch[T]) run() {
	items := b.items
	b.items = nil
	b.seen = make(map[T]struct{})
	b.pending = false
	if len(items) > 0 {
		b.flush(items)
	}
}
