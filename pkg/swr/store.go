package swr

import (
	"container/list"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dmitrymomot/sitekit/pkg/apiclient"
	"github.com/dmitrymomot/sitekit/pkg/logger"
)

// Sentinel errors.
var (
	// ErrClosed is returned by reads on a closed store.
	ErrClosed = errors.New("swr: store closed")

	// ErrFetcherPanic wraps a panic raised inside a fetcher.
	ErrFetcherPanic = errors.New("swr: fetcher panicked")

	// ErrNoFetcher is returned when a key is read for the first time without a fetcher.
	ErrNoFetcher = errors.New("swr: fetcher is required")
)

// Fetcher loads the value of one key. The context is owned by the store
// and is canceled when every reader of the key has detached.
type Fetcher func(ctx context.Context) (any, error)

// State is a snapshot of one key.
type State struct {
	Data any
	Err  error

	// IsLoading is true while the first fetch of a key is in flight.
	IsLoading bool

	// IsValidating is true while any fetch of the key is in flight.
	IsValidating bool
}

// UnauthorizedEvent is published when a fetch fails with an auth-denied error.
type UnauthorizedEvent struct {
	Err error
	Key string
}

// UnauthorizedHandler observes auth-denied failures.
type UnauthorizedHandler interface {
	HandleUnauthorized(UnauthorizedEvent)
}

// UnauthorizedFunc adapts a function to UnauthorizedHandler.
type UnauthorizedFunc func(UnauthorizedEvent)

func (f UnauthorizedFunc) HandleUnauthorized(ev UnauthorizedEvent) { f(ev) }

// Option configures the Store.
type Option func(*Store)

// WithPolicy sets the store-wide default policy.
func WithPolicy(p Policy) Option {
	return func(s *Store) {
		s.policy = p.normalize()
	}
}

// WithClock sets the clock. Used by tests.
func WithClock(c Clock) Option {
	return func(s *Store) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Store) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMaxEntries bounds the number of cached keys. When a new key would
// exceed the bound, the least recently used idle keys are evicted. Keys with
// subscribers, an in-flight fetch or a pending retry are never evicted, so
// the store may briefly exceed the bound while they are busy.
// Zero means unbounded.
func WithMaxEntries(n int) Option {
	return func(s *Store) {
		if n >= 0 {
			s.maxEntries = n
		}
	}
}

// WithUnauthorizedHandler registers an auth-denied observer at construction.
func WithUnauthorizedHandler(h UnauthorizedHandler) Option {
	return func(s *Store) {
		if h != nil {
			s.handlers[s.nextHandler] = h
			s.nextHandler++
		}
	}
}

// Store caches keyed fetch results, deduplicates concurrent fetches and
// revalidates stale entries. It is safe for concurrent use.
type Store struct {
	ctx      context.Context
	cancel   context.CancelFunc
	clock    Clock
	recorder Recorder
	logger   *slog.Logger
	entries  map[string]*entry
	handlers map[int]UnauthorizedHandler
	lru      *list.List
	policy   Policy

	mu          sync.Mutex
	maxEntries  int
	nextHandler int
	closed      bool
}

type entry struct {
	value     any
	err       error
	fetchedAt time.Time
	call      *call
	retry     Timer
	fetcher   Fetcher
	subs      map[*Subscription]struct{}
	elem      *list.Element
	key       string
	policy    Policy
	attempts  int
	retrySeq  uint64
	hasValue  bool
}

// call is one in-flight fetch.
type call struct {
	done    chan struct{}
	cancel  context.CancelFunc
	value   any
	err     error
	waiters int
}

// New creates a store.
//
// Example:
//
//	store := swr.New(
//	    swr.WithLogger(log),
//	    swr.WithRecorder(metrics.NewSWRRecorder(reg)),
//	)
//	defer store.Close()
func New(opts ...Option) *Store {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Store{
		ctx:      ctx,
		cancel:   cancel,
		clock:    realClock{},
		recorder: Noop{},
		logger:   logger.NewNope(),
		entries:  make(map[string]*entry),
		handlers: make(map[int]UnauthorizedHandler),
		lru:      list.New(),
		policy:   DefaultPolicy(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Policy returns the store-wide default policy.
func (s *Store) Policy() Policy {
	return s.policy
}

// OnUnauthorized registers h and returns a function that removes it.
func (s *Store) OnUnauthorized(h UnauthorizedHandler) (remove func()) {
	s.mu.Lock()
	id := s.nextHandler
	s.nextHandler++
	s.handlers[id] = h
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.handlers, id)
		s.mu.Unlock()
	}
}

// Read returns the current state of key without blocking.
// It starts a fetch when the key is missing or stale.
// An empty key is idle: nothing is fetched and the zero State is returned.
func (s *Store) Read(ctx context.Context, key string, fetcher Fetcher, opts ...ReadOption) State {
	if key == "" {
		return State{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return State{Err: ErrClosed}
	}

	e, err := s.entryFor(key, fetcher, opts)
	if err != nil {
		return State{Err: err}
	}
	if ctx.Err() != nil {
		return e.state()
	}

	s.lookup(e)
	return e.state()
}

// Fetch returns the value of key, blocking only when no value is cached yet.
// A cached value outside the dedup window is returned immediately while a
// revalidation runs in the background.
// Canceling ctx detaches this caller; the fetch itself is canceled only when
// no other reader remains.
func (s *Store) Fetch(ctx context.Context, key string, fetcher Fetcher, opts ...ReadOption) (any, error) {
	if key == "" {
		return nil, nil
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, ErrClosed
	}

	e, err := s.entryFor(key, fetcher, opts)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		s.mu.Unlock()
		return nil, err
	}

	fresh := s.lookup(e)
	if fresh || e.hasValue || e.call == nil {
		value, err := e.value, e.err
		s.mu.Unlock()
		return value, err
	}

	c := e.call
	c.waiters++
	s.mu.Unlock()

	select {
	case <-c.done:
		s.mu.Lock()
		c.waiters--
		s.mu.Unlock()
		return c.value, c.err
	case <-ctx.Done():
		s.mu.Lock()
		c.waiters--
		if e.call == c {
			s.releaseIfUnused(e)
		}
		s.mu.Unlock()
		return nil, ctx.Err()
	}
}

// Subscribe attaches a long-lived reader to key. The subscription receives
// every state change until Close. An empty key yields an idle subscription.
func (s *Store) Subscribe(key string, fetcher Fetcher, opts ...ReadOption) *Subscription {
	sub := &Subscription{
		store: s,
		key:   key,
		ch:    make(chan State, 1),
	}
	if key == "" {
		sub.done = true
		close(sub.ch)
		return sub
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		sub.last = State{Err: ErrClosed}
		sub.done = true
		close(sub.ch)
		return sub
	}

	e, err := s.entryFor(key, fetcher, opts)
	if err != nil {
		sub.last = State{Err: err}
		sub.done = true
		close(sub.ch)
		return sub
	}

	e.subs[sub] = struct{}{}
	sub.entry = e

	s.lookup(e)
	sub.deliver(e.state())
	return sub
}

// Peek returns the cached state of key without triggering a fetch.
func (s *Store) Peek(key string) (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return State{}, false
	}
	return e.state(), true
}

// Mutate sets the value of key without any network call. An in-flight fetch
// of the key is discarded and every subscriber receives the new value.
func (s *Store) Mutate(key string, value any) {
	if key == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	e, ok := s.entries[key]
	if ok {
		s.lru.MoveToFront(e.elem)
	} else {
		e = s.newEntry(key, nil, s.policy)
	}

	e.dropCall()
	e.stopRetry()
	e.value = value
	e.err = nil
	e.hasValue = true
	e.attempts = 0
	e.fetchedAt = s.clock.Now()
	e.notify()
}

// Invalidate expires key. If the key has subscribers it is refetched at once,
// otherwise it is dropped.
func (s *Store) Invalidate(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok {
		s.invalidate(e)
	}
}

// InvalidatePrefix invalidates every key starting with prefix.
// It returns the number of keys affected.
func (s *Store) InvalidatePrefix(prefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for key, e := range s.entries {
		if strings.HasPrefix(key, prefix) {
			s.invalidate(e)
			n++
		}
	}
	return n
}

// Reconnected revalidates every subscribed key whose policy enables
// revalidation on reconnect.
func (s *Store) Reconnected() int {
	return s.revalidateWhere(func(p Policy) bool { return p.RevalidateOnReconnect })
}

// Focused revalidates every subscribed key whose policy enables
// revalidation on focus.
func (s *Store) Focused() int {
	return s.revalidateWhere(func(p Policy) bool { return p.RevalidateOnFocus })
}

// Len returns the number of cached keys.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Close cancels every in-flight fetch, stops retry timers and closes all
// subscriptions. It is safe to call more than once.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.cancel()

	for _, e := range s.entries {
		e.stopRetry()
		e.dropCall()
		for sub := range e.subs {
			sub.detach()
		}
		e.subs = nil
	}
	s.entries = make(map[string]*entry)
	s.lru.Init()
}

// entryFor returns the entry for key, creating it if needed.
// The latest fetcher and policy replace the previous ones. Caller holds s.mu.
func (s *Store) entryFor(key string, fetcher Fetcher, opts []ReadOption) (*entry, error) {
	policy := s.policyFor(opts)
	e, ok := s.entries[key]
	if !ok {
		if fetcher == nil {
			return nil, ErrNoFetcher
		}
		return s.newEntry(key, fetcher, policy), nil
	}
	if fetcher != nil {
		e.fetcher = fetcher
	}
	e.policy = policy
	s.lru.MoveToFront(e.elem)
	return e, nil
}

// newEntry adds an entry for key and evicts idle entries over the bound.
// Caller holds s.mu.
func (s *Store) newEntry(key string, fetcher Fetcher, policy Policy) *entry {
	e := &entry{
		key:     key,
		fetcher: fetcher,
		policy:  policy,
		subs:    make(map[*Subscription]struct{}),
	}
	s.entries[key] = e
	e.elem = s.lru.PushFront(e)
	s.evict(e)
	return e
}

// evict drops least recently used idle entries until the store is within
// maxEntries. keep is never evicted. Caller holds s.mu.
func (s *Store) evict(keep *entry) {
	if s.maxEntries <= 0 {
		return
	}
	for elem := s.lru.Back(); elem != nil && len(s.entries) > s.maxEntries; {
		e := elem.Value.(*entry)
		elem = elem.Prev()
		if e == keep || !e.idle() {
			continue
		}
		s.remove(e)
		s.logger.Debug("swr entry evicted", slog.String("key", e.key))
	}
}

// remove deletes e from the store. Caller holds s.mu.
func (s *Store) remove(e *entry) {
	delete(s.entries, e.key)
	if e.elem != nil {
		s.lru.Remove(e.elem)
		e.elem = nil
	}
}

// lookup applies the read algorithm to e and reports whether the cached
// result is fresh. Caller holds s.mu.
func (s *Store) lookup(e *entry) bool {
	switch {
	case e.call != nil:
		s.recorder.Lookup(OutcomeDedup)
		return false
	case e.fetchedAt.IsZero():
		if e.fetcher == nil {
			return true
		}
		s.recorder.Lookup(OutcomeMiss)
		s.start(e, false)
		return false
	case s.clock.Now().Sub(e.fetchedAt) < e.policy.DedupInterval:
		s.recorder.Lookup(OutcomeHit)
		return true
	case e.fetcher == nil:
		return true
	default:
		s.recorder.Lookup(OutcomeStale)
		s.start(e, false)
		return false
	}
}

// start launches a fetch for e. Caller holds s.mu.
func (s *Store) start(e *entry, retry bool) {
	e.stopRetry()
	if !retry {
		e.attempts = 0
	}

	ctx, cancel := context.WithCancel(s.ctx)
	c := &call{done: make(chan struct{}), cancel: cancel}
	e.call = c
	e.notify()

	go s.run(ctx, e, c, e.fetcher)
}

func (s *Store) run(ctx context.Context, e *entry, c *call, fetcher Fetcher) {
	started := s.clock.Now()
	value, err := safeFetch(ctx, fetcher)
	s.recorder.Fetch(s.clock.Now().Sub(started), err)
	c.cancel()

	c.value, c.err = value, err

	var notify []UnauthorizedHandler
	var event UnauthorizedEvent

	s.mu.Lock()
	if e.call == c && s.entries[e.key] == e && !s.closed {
		e.call = nil
		e.fetchedAt = s.clock.Now()

		if err == nil {
			e.value = value
			e.err = nil
			e.hasValue = true
			e.attempts = 0
		} else {
			e.err = err
			switch {
			case apiclient.IsUnauthorized(err):
				s.recorder.Unauthorized()
				event = UnauthorizedEvent{Key: e.key, Err: err}
				notify = make([]UnauthorizedHandler, 0, len(s.handlers))
				for _, h := range s.handlers {
					notify = append(notify, h)
				}
			default:
				s.scheduleRetry(e)
			}
			s.logger.Debug("swr fetch failed",
				slog.String("key", e.key),
				slog.Int("attempt", e.attempts),
				slog.Any("error", err),
			)
		}
		e.notify()
	}
	close(c.done)
	s.mu.Unlock()

	for _, h := range notify {
		h.HandleUnauthorized(event)
	}
}

// scheduleRetry arms the retry timer when the policy and subscribers allow it.
// Caller holds s.mu.
func (s *Store) scheduleRetry(e *entry) {
	p := e.policy
	if !p.ShouldRetryOnError || len(e.subs) == 0 || e.attempts >= p.ErrorRetryCount {
		return
	}
	e.attempts++
	e.retrySeq++
	seq := e.retrySeq
	e.retry = s.clock.AfterFunc(p.ErrorRetryInterval, func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		if s.closed || s.entries[e.key] != e || e.retrySeq != seq || e.call != nil || len(e.subs) == 0 {
			return
		}
		e.retry = nil
		s.recorder.Retry()
		s.start(e, true)
	})
}

// invalidate expires e. Caller holds s.mu.
func (s *Store) invalidate(e *entry) {
	e.dropCall()
	e.stopRetry()
	e.fetchedAt = time.Time{}

	if len(e.subs) == 0 {
		s.remove(e)
		return
	}
	if e.fetcher != nil {
		s.start(e, false)
	}
}

func (s *Store) revalidateWhere(match func(Policy) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0
	}

	now := s.clock.Now()
	n := 0
	for _, e := range s.entries {
		if len(e.subs) == 0 || e.call != nil || e.fetcher == nil || !match(e.policy) {
			continue
		}
		if !e.fetchedAt.IsZero() && now.Sub(e.fetchedAt) < e.policy.DedupInterval {
			continue
		}
		s.start(e, false)
		n++
	}
	return n
}

// releaseIfUnused cancels the in-flight fetch of e when nobody waits for it.
// Caller holds s.mu.
func (s *Store) releaseIfUnused(e *entry) {
	if e.call == nil || len(e.subs) > 0 || e.call.waiters > 0 {
		return
	}
	e.call.cancel()
	e.call = nil
	e.stopRetry()
}

// idle reports whether nothing depends on e staying cached.
func (e *entry) idle() bool {
	return len(e.subs) == 0 && e.call == nil && e.retry == nil
}

func (e *entry) state() State {
	return State{
		Data:         e.value,
		Err:          e.err,
		IsLoading:    e.call != nil && !e.hasValue,
		IsValidating: e.call != nil,
	}
}

// notify delivers the current state to every subscriber. Caller holds s.mu.
func (e *entry) notify() {
	st := e.state()
	for sub := range e.subs {
		sub.deliver(st)
	}
}

func (e *entry) stopRetry() {
	e.retrySeq++
	if e.retry != nil {
		e.retry.Stop()
		e.retry = nil
	}
}

// dropCall detaches the in-flight fetch so its result is discarded.
// The fetch is canceled when nobody waits for its result.
func (e *entry) dropCall() {
	if e.call == nil {
		return
	}
	if e.call.waiters == 0 {
		e.call.cancel()
	}
	e.call = nil
}

func safeFetch(ctx context.Context, fetcher Fetcher) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			value = nil
			err = fmt.Errorf("%w: %v", ErrFetcherPanic, r)
		}
	}()
	return fetcher(ctx)
}
