package store

import "sync"

// notifier fans table change notifications out to subscribers.
// Notifications identify the affected table only; subscribers are
// expected to re-derive whatever they need from the store.
type notifier struct {
	mu   sync.Mutex
	next int
	subs map[int]func(Table)
}

func (n *notifier) subscribe(fn func(Table)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.subs == nil {
		n.subs = make(map[int]func(Table))
	}
	id := n.next
	n.next++
	n.subs[id] = fn
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subs, id)
	}
}

// emit calls every subscriber synchronously. Callers must have already
// committed the corresponding write: the notification contract is that
// a reader woken by emit always observes the committed state.
func (n *notifier) emit(table Table) {
	n.mu.Lock()
	fns := make([]func(Table), 0, len(n.subs))
	for _, fn := range n.subs {
		fns = append(fns, fn)
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn(table)
	}
}
