package scope

import (
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/dispose/errors"
	"github.com/wippyai/dispose/resource"
)

// Options configures a Scope.
type Options struct {
	// Logger overrides the package logger for this scope.
	Logger *zap.Logger
	// Name tags log entries, events and errors.
	Name string
	// Observers are subscribed at construction.
	Observers []Observer
}

// DefaultOptions returns default scope configuration.
func DefaultOptions() Options {
	return Options{}
}

// Scope is a reusable container that releases everything registered in it
// when drained, then keeps accepting registrations.
//
// A Scope holds two batches. One is active and receives Add; Drain swaps the
// roles under the lock and releases the previously active batch without the
// lock held, so release actions may call back into the scope. Registrations
// made during a sweep land in the new active batch and are released by a
// later Drain.
//
// The zero Scope is empty and ready to use. Thread-safe.
type Scope struct {
	logger    *zap.Logger
	name      string
	observers []Observer
	stats     counters
	batches   [2]Batch
	obsMu     sync.RWMutex
	mu        sync.Mutex
	active    int
	draining  bool
}

// New creates a Scope with the given options.
func New(opts Options) *Scope {
	s := &Scope{
		logger: opts.Logger,
		name:   opts.Name,
	}
	s.observers = append(s.observers, opts.Observers...)
	return s
}

// NewWithDefaults creates a Scope with default options.
func NewWithDefaults() *Scope {
	return New(DefaultOptions())
}

// Name returns the configured scope name.
func (s *Scope) Name() string {
	return s.name
}

// Add registers r for release by a future Drain. It never fails, even while
// a drain is in progress.
func (s *Scope) Add(r resource.Resource) {
	s.mu.Lock()
	s.batches[s.active].Append(r)
	s.mu.Unlock()

	s.stats.added.Inc()
	s.notify(Event{Type: EventAdded, Resource: r, Count: 1})
}

// AddFunc registers fn as a release callback and returns the wrapping
// Resource so it can be removed later.
func (s *Scope) AddFunc(fn func()) resource.Resource {
	r := resource.Func(fn)
	s.Add(r)
	return r
}

// Remove unregisters r from the active batch and reports whether it was
// found. Responsibility for releasing r returns to the caller.
//
// Resources already swapped out by an in-progress Drain are not removable.
func (s *Scope) Remove(r resource.Resource) bool {
	s.mu.Lock()
	found := s.batches[s.active].Remove(r)
	s.mu.Unlock()

	if found {
		s.stats.removed.Inc()
		s.notify(Event{Type: EventRemoved, Resource: r, Count: 1})
	}
	return found
}

// Contains reports whether r is registered in either batch.
func (s *Scope) Contains(r resource.Resource) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.batches[0].Contains(r) || s.batches[1].Contains(r)
}

// Len returns the number of registered resources across both batches.
func (s *Scope) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.batches[0].Len() + s.batches[1].Len()
}

// Draining reports whether a drain cycle is in progress.
func (s *Scope) Draining() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draining
}

// Clear discards every registration without releasing anything.
//
// Callers that expect Clear to release resources will leak them; use Drain
// for that. If a drain is in progress its sweep still completes over the
// entries it already took.
func (s *Scope) Clear() {
	s.mu.Lock()
	n := s.batches[0].Len() + s.batches[1].Len()
	active, previous := &s.batches[s.active], &s.batches[s.active^1]
	active.Clear()
	if s.draining {
		previous.detach()
	} else {
		previous.Clear()
	}
	s.mu.Unlock()

	s.stats.discarded.Add(int64(n))
	s.notify(Event{Type: EventCleared, Count: n})
}

// CopyTo writes every registration, active batch first, into dst starting
// at offset and returns the number written. Nothing is written when dst
// lacks room.
func (s *Scope) CopyTo(dst []resource.Resource, offset int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.batches[0].Len() + s.batches[1].Len()
	if offset < 0 || offset > len(dst) {
		return 0, errors.OutOfBounds(errors.PhaseInspect, offset, len(dst))
	}
	if len(dst)-offset < n {
		return 0, errors.New(errors.PhaseInspect, errors.KindOutOfBounds).
			Scope(s.name).
			Value(n).
			Detail("need room for %d resources at offset %d (length %d)", n, offset, len(dst)).
			Build()
	}

	out := dst[offset:offset]
	out = s.batches[s.active].AppendTo(out)
	out = s.batches[s.active^1].AppendTo(out)
	return len(out), nil
}

// Snapshot returns a copy of every registration, active batch first.
func (s *Scope) Snapshot() []resource.Resource {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]resource.Resource, 0, s.batches[0].Len()+s.batches[1].Len())
	out = s.batches[s.active].AppendTo(out)
	return s.batches[s.active^1].AppendTo(out)
}

// AsResource returns a Resource whose release drains s, so a scope can be
// registered in a parent scope. Each call returns a distinct identity.
func (s *Scope) AsResource() resource.Resource {
	return resource.FuncErr(s.Drain)
}

// Drain releases every resource registered before the call and leaves the
// scope ready for reuse.
//
// If another Drain is already in progress, including a reentrant call from
// a release action, Drain returns nil immediately without releasing
// anything. Release failures do not stop the sweep; they are returned
// combined with multierr.
func (s *Scope) Drain() error {
	s.mu.Lock()
	if s.draining {
		s.mu.Unlock()
		s.stats.skippedDrains.Inc()
		s.log().Debug("drain already in progress", zap.String("scope", s.name))
		s.notify(Event{Type: EventDrainSkipped})
		return nil
	}
	s.draining = true
	previous := &s.batches[s.active]
	s.active ^= 1
	items := previous.items
	s.mu.Unlock()

	s.notify(Event{Type: EventDrainStarted, Count: len(items)})

	released, err := releaseAll(items)

	s.mu.Lock()
	// Contains and CopyTo read entries during the sweep; zero them under the lock.
	clear(items)
	previous.items = previous.items[:0]
	s.draining = false
	s.mu.Unlock()

	failures := s.reportFailures(err)
	s.stats.drains.Inc()
	s.stats.released.Add(int64(released))
	s.log().Debug("drain completed",
		zap.String("scope", s.name),
		zap.Int("released", released),
		zap.Int("failures", failures))
	s.notify(Event{Type: EventDrainCompleted, Count: released, Err: err})

	return err
}

func (s *Scope) reportFailures(err error) int {
	errs := multierr.Errors(err)
	for _, e := range errs {
		fields := []zap.Field{zap.String("scope", s.name), zap.Error(e)}
		var rerr *errors.Error
		if errors.As(e, &rerr) {
			rerr.Scope = s.name
			fields = append(fields, zap.Any("index", rerr.Value), zap.String("type", rerr.Type))
		}
		s.log().Warn("resource release failed", fields...)
		s.notify(Event{Type: EventReleaseFailed, Err: e})
	}
	s.stats.failures.Add(int64(len(errs)))
	return len(errs)
}

// Subscribe adds an observer for lifecycle events.
func (s *Scope) Subscribe(o Observer) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	s.observers = append(s.observers, o)
}

// Unsubscribe removes an observer.
func (s *Scope) Unsubscribe(o Observer) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	for i, obs := range s.observers {
		if sameObserver(obs, o) {
			s.observers = append(s.observers[:i], s.observers[i+1:]...)
			return
		}
	}
}

// Stats returns a snapshot of the scope's counters.
func (s *Scope) Stats() Stats {
	return s.stats.snapshot()
}

func (s *Scope) notify(e Event) {
	s.obsMu.RLock()
	if len(s.observers) == 0 {
		s.obsMu.RUnlock()
		return
	}
	observers := append([]Observer(nil), s.observers...)
	s.obsMu.RUnlock()

	e.Scope = s.name
	for _, o := range observers {
		o.OnScopeEvent(e)
	}
}

func (s *Scope) log() *zap.Logger {
	if s.logger != nil {
		return s.logger
	}
	return Logger()
}

func sameObserver(a, b Observer) (same bool) {
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return a == b
}
