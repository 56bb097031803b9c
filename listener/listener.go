package listener

import (
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/dispose/errors"
	"github.com/wippyai/dispose/scope"
)

// Subscriber registers its subscriptions in the given scope.
// Everything added to s is released when the listener unsubscribes.
type Subscriber interface {
	OnSubscribe(s *scope.Scope) error
}

// SubscriberFunc adapts a function to the Subscriber interface.
type SubscriberFunc func(s *scope.Scope) error

// OnSubscribe calls f(s).
func (f SubscriberFunc) OnSubscribe(s *scope.Scope) error {
	return f(s)
}

// Unsubscriber is optionally implemented by subscribers that need a hook
// before their scope is drained.
type Unsubscriber interface {
	OnUnsubscribe(s *scope.Scope)
}

// Options configures a Listener.
type Options struct {
	// Logger overrides the package logger.
	Logger *zap.Logger
	// Name tags the listener's scope and log entries.
	Name string
	// Disabled starts the listener disabled; Bind then waits for Enable.
	Disabled bool
}

// DefaultOptions returns default listener configuration.
func DefaultOptions() Options {
	return Options{}
}

// Listener drives a Subscriber through bind/enable/disable cycles, owning
// the scope its subscriptions live in.
//
// A listener subscribes when it is both bound and enabled and unsubscribes,
// draining its scope, when disabled while bound. The scope is reused across
// any number of cycles.
//
// Thread-safe. Bind, Enable, Disable and Release are serialized, so a
// transition started while a subscriber hook runs waits for the hook to
// return; hooks must not call them. Accessors never wait on hooks.
type Listener struct {
	sub        Subscriber
	scope      *scope.Scope
	logger     *zap.Logger
	name       string
	transition sync.Mutex
	mu         sync.Mutex
	bound      bool
	enabled    bool
	subscribed bool
}

// New creates a Listener for sub.
func New(sub Subscriber, opts Options) *Listener {
	return &Listener{
		sub:     sub,
		scope:   scope.New(scope.Options{Name: opts.Name, Logger: opts.Logger}),
		logger:  opts.Logger,
		name:    opts.Name,
		enabled: !opts.Disabled,
	}
}

// Bind marks the listener bound and subscribes if it is enabled.
func (l *Listener) Bind() error {
	if l.sub == nil {
		return errors.NilPointer(errors.PhaseRegister, "listener.Subscriber")
	}
	l.transition.Lock()
	defer l.transition.Unlock()

	l.mu.Lock()
	l.bound = true
	start := l.claimSubscribe()
	l.mu.Unlock()

	if start {
		return l.subscribe()
	}
	return nil
}

// Enable enables the listener, subscribing if it is bound.
func (l *Listener) Enable() error {
	l.transition.Lock()
	defer l.transition.Unlock()

	l.mu.Lock()
	l.enabled = true
	start := l.claimSubscribe()
	l.mu.Unlock()

	if start {
		return l.subscribe()
	}
	return nil
}

// Disable disables the listener. A bound, subscribed listener unsubscribes
// and its scope is drained.
func (l *Listener) Disable() error {
	l.transition.Lock()
	defer l.transition.Unlock()

	l.mu.Lock()
	l.enabled = false
	stop := l.bound && l.subscribed
	if stop {
		l.subscribed = false
	}
	l.mu.Unlock()

	if stop {
		return l.unsubscribe()
	}
	return nil
}

// Release unbinds the listener. Subscriptions are not drained; disable the
// listener first to release them.
func (l *Listener) Release() {
	l.transition.Lock()
	defer l.transition.Unlock()

	l.mu.Lock()
	l.bound = false
	l.subscribed = false
	l.mu.Unlock()
}

// Bound reports whether Bind was called since the last Release.
func (l *Listener) Bound() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.bound
}

// Subscribed reports whether the subscriber is currently subscribed.
func (l *Listener) Subscribed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.subscribed
}

// Scope returns the scope subscriptions are registered in.
func (l *Listener) Scope() *scope.Scope {
	return l.scope
}

// claimSubscribe must be called with l.mu held.
func (l *Listener) claimSubscribe() bool {
	if !l.bound || !l.enabled || l.subscribed {
		return false
	}
	l.subscribed = true
	return true
}

func (l *Listener) subscribe() error {
	err := l.sub.OnSubscribe(l.scope)
	if err == nil {
		l.log().Debug("listener subscribed",
			zap.String("listener", l.name),
			zap.Int("subscriptions", l.scope.Len()))
		return nil
	}

	// roll back whatever was registered before the failure
	l.mu.Lock()
	l.subscribed = false
	l.mu.Unlock()
	err = multierr.Append(err, l.scope.Drain())
	l.log().Warn("listener subscribe failed", zap.String("listener", l.name), zap.Error(err))
	return err
}

func (l *Listener) unsubscribe() error {
	if u, ok := l.sub.(Unsubscriber); ok {
		u.OnUnsubscribe(l.scope)
	}
	n := l.scope.Len()
	err := l.scope.Drain()
	l.log().Debug("listener unsubscribed",
		zap.String("listener", l.name),
		zap.Int("released", n))
	return err
}

func (l *Listener) log() *zap.Logger {
	if l.logger != nil {
		return l.logger
	}
	return Logger()
}
