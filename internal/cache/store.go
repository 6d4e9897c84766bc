// Package cache provides the keyed in-memory cache that keeps derived
// financial views consistent with the remote record set.
//
// Each Store holds fetched values under string keys with two independent
// time windows: a freshness window (values younger than this are served
// without a refetch) and a retention window (values older than this are
// dropped entirely, never served even as a stale fallback). Stores are
// explicitly constructed and passed by handle; there is no package-level
// instance.
package cache

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	EventSet EventKind = iota
	EventInvalidate
)

type (
	EventKind int

	// Event notifies subscribers that a key's value changed or was
	// invalidated, so dependent views can re-read.
	Event struct {
		Key  string
		Kind EventKind
	}

	// Options tunes a Store. Zero fields fall back to defaults.
	Options struct {
		// FreshFor is the freshness window: values younger than
		// this are served without invoking the loader.
		FreshFor time.Duration
		// RetainFor is the retention window: values older than
		// this are evicted rather than served as stale fallbacks.
		RetainFor time.Duration
		// MaxEntries bounds the store; the least recently written
		// entries are evicted first once exceeded.
		MaxEntries int
	}
)

// Defaults applied when an Options field is zero.
const (
	DefaultFreshFor   = 30 * time.Second
	DefaultRetainFor  = 5 * time.Minute
	DefaultMaxEntries = 128
)

// Store is a keyed cache of values of type T.
//
// Concurrent FetchOrUse calls for the same key share a single loader
// invocation. Writes carry a start-order sequence: a fetch that started
// earlier never overwrites the result of one that started later, and
// invalidation raises a barrier so in-flight results started before it
// cannot resurrect removed data.
type Store[T any] struct {
	mu      sync.Mutex
	opts    Options
	entries map[string]*entry[T]
	byWrite *list.List // front = most recently written
	barrier map[string]uint64
	floor   uint64 // minimum sequence allowed to write any key
	subs    map[int]chan Event
	nextSub int

	seq   atomic.Uint64
	group singleflight.Group
}

type entry[T any] struct {
	key       string
	value     T
	fetchedAt time.Time
	seq       uint64
	elem      *list.Element
}

func New[T any](opts Options) *Store[T] {
	if opts.FreshFor <= 0 {
		opts.FreshFor = DefaultFreshFor
	}
	if opts.RetainFor <= 0 {
		opts.RetainFor = DefaultRetainFor
	}
	if opts.RetainFor < opts.FreshFor {
		opts.RetainFor = opts.FreshFor
	}
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = DefaultMaxEntries
	}
	return &Store[T]{
		opts:    opts,
		entries: make(map[string]*entry[T]),
		byWrite: list.New(),
		barrier: make(map[string]uint64),
		subs:    make(map[int]chan Event),
	}
}

// Get returns the cached value only if it is within the freshness
// window. It never invokes a loader.
func (s *Store[T]) Get(key string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	e, ok := s.entries[key]
	if !ok {
		return zero, false
	}
	age := time.Since(e.fetchedAt)
	if age >= s.opts.RetainFor {
		s.removeLocked(e)
		return zero, false
	}
	if age >= s.opts.FreshFor {
		return zero, false
	}
	return e.value, true
}

// Last returns the most recent retained value regardless of freshness.
// It is the stale fallback used when a refetch fails.
func (s *Store[T]) Last(key string) (T, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var zero T
	e, ok := s.entries[key]
	if !ok {
		return zero, false
	}
	if time.Since(e.fetchedAt) >= s.opts.RetainFor {
		s.removeLocked(e)
		return zero, false
	}
	return e.value, true
}

// FetchOrUse returns the fresh cached value when present, otherwise
// invokes loader, stores the result and returns it. Concurrent calls
// for the same key share one loader invocation.
//
// When the loader fails and a previous value is still retained, that
// value is returned instead of the error: stale-but-present beats empty
// on transient failures.
func (s *Store[T]) FetchOrUse(ctx context.Context, key string, loader func(context.Context) (T, error)) (T, error) {
	if v, ok := s.Get(key); ok {
		return v, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		// Another caller may have completed while this one queued.
		if v, ok := s.Get(key); ok {
			return v, nil
		}
		seq := s.seq.Add(1)
		val, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		s.set(key, val, seq)
		return val, nil
	})
	if err != nil {
		if prev, ok := s.Last(key); ok {
			return prev, nil
		}
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// set stores value under key if no later-started write or invalidation
// supersedes it.
func (s *Store[T]) set(key string, value T, seq uint64) {
	s.mu.Lock()
	if seq < s.floor {
		s.mu.Unlock()
		return
	}
	if min, ok := s.barrier[key]; ok {
		if seq < min {
			s.mu.Unlock()
			return
		}
		delete(s.barrier, key)
	}
	now := time.Now()
	if e, ok := s.entries[key]; ok {
		if seq < e.seq {
			// An earlier-started fetch completed after a later
			// one; the later result stands.
			s.mu.Unlock()
			return
		}
		e.value, e.fetchedAt, e.seq = value, now, seq
		s.byWrite.MoveToFront(e.elem)
	} else {
		e := &entry[T]{key: key, value: value, fetchedAt: now, seq: seq}
		e.elem = s.byWrite.PushFront(e)
		s.entries[key] = e
		for s.byWrite.Len() > s.opts.MaxEntries {
			oldest := s.byWrite.Back()
			if oldest == nil {
				break
			}
			s.removeLocked(oldest.Value.(*entry[T]))
		}
	}
	s.notifyLocked(Event{Key: key, Kind: EventSet})
	s.mu.Unlock()
}

// Invalidate removes the key immediately. The next Get or FetchOrUse
// treats it as a full miss, and any fetch already in flight for the key
// cannot write its result back.
func (s *Store[T]) Invalidate(key string) {
	s.mu.Lock()
	s.barrier[key] = s.seq.Add(1)
	if e, ok := s.entries[key]; ok {
		s.removeLocked(e)
	}
	s.notifyLocked(Event{Key: key, Kind: EventInvalidate})
	s.mu.Unlock()
	s.group.Forget(key)
}

// InvalidateAll drops every entry and blocks all in-flight writes that
// started before the call.
func (s *Store[T]) InvalidateAll() {
	s.mu.Lock()
	s.floor = s.seq.Add(1)
	keys := make([]string, 0, len(s.entries))
	for k, e := range s.entries {
		keys = append(keys, k)
		s.byWrite.Remove(e.elem)
	}
	s.entries = make(map[string]*entry[T])
	s.barrier = make(map[string]uint64)
	for _, k := range keys {
		s.notifyLocked(Event{Key: k, Kind: EventInvalidate})
	}
	s.mu.Unlock()
	for _, k := range keys {
		s.group.Forget(k)
	}
}

// InvalidateMatching removes every key the predicate accepts.
func (s *Store[T]) InvalidateMatching(pred func(key string) bool) {
	s.mu.Lock()
	var matched []string
	for k := range s.entries {
		if pred(k) {
			matched = append(matched, k)
		}
	}
	barrier := s.seq.Add(1)
	for _, k := range matched {
		s.barrier[k] = barrier
		s.removeLocked(s.entries[k])
		s.notifyLocked(Event{Key: k, Kind: EventInvalidate})
	}
	s.mu.Unlock()
	for _, k := range matched {
		s.group.Forget(k)
	}
}

// CleanExpired removes entries past the retention window and returns
// how many were dropped.
func (s *Store[T]) CleanExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	var expired []*entry[T]
	for e := s.byWrite.Front(); e != nil; e = e.Next() {
		it := e.Value.(*entry[T])
		if now.Sub(it.fetchedAt) >= s.opts.RetainFor {
			expired = append(expired, it)
		}
	}
	for _, it := range expired {
		s.removeLocked(it)
	}
	return len(expired)
}

// Len returns the current number of retained entries.
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Subscribe registers for change events. The returned cancel func must
// be called when the subscriber goes away. Slow subscribers miss events
// rather than blocking cache writes.
func (s *Store[T]) Subscribe() (<-chan Event, func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	ch := make(chan Event, 16)
	s.subs[id] = ch
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Store[T]) notifyLocked(ev Event) {
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (s *Store[T]) removeLocked(e *entry[T]) {
	delete(s.entries, e.key)
	s.byWrite.Remove(e.elem)
}
