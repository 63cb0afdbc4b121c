package swr

// Subscription is a long-lived reader of one key. Updates are delivered on a
// buffered channel with latest-wins semantics: a slow consumer only misses
// intermediate states, never the latest one.
type Subscription struct {
	store *Store
	entry *entry
	ch    chan State
	key   string
	last  State
	done  bool
}

// Key returns the subscribed key.
func (sub *Subscription) Key() string {
	return sub.key
}

// State returns the latest state of the key.
func (sub *Subscription) State() State {
	sub.store.mu.Lock()
	defer sub.store.mu.Unlock()

	if sub.done || sub.entry == nil {
		return sub.last
	}
	return sub.entry.state()
}

// Updates returns the channel of state changes. It is closed by Close or
// when the store is closed.
func (sub *Subscription) Updates() <-chan State {
	return sub.ch
}

// Close detaches the subscription. When it was the last reader of the key,
// an in-flight fetch is canceled and pending retries are stopped.
func (sub *Subscription) Close() {
	s := sub.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if sub.done {
		return
	}
	e := sub.entry
	delete(e.subs, sub)
	sub.detach()

	if s.entries[e.key] != e || len(e.subs) > 0 {
		return
	}
	e.stopRetry()
	s.releaseIfUnused(e)
}

// deliver replaces any undelivered state with st. Caller holds the store lock.
func (sub *Subscription) deliver(st State) {
	if sub.done {
		return
	}
	sub.last = st
	select {
	case <-sub.ch:
	default:
	}
	select {
	case sub.ch <- st:
	default:
	}
}

// detach discards any undelivered state and closes the channel, so a reader
// observes the close on its next receive. Caller holds the store lock.
func (sub *Subscription) detach() {
	if sub.done {
		return
	}
	sub.done = true
	select {
	case <-sub.ch:
	default:
	}
	close(sub.ch)
}
