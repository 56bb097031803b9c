package listener

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wippyai/dispose/resource"
	"github.com/wippyai/dispose/scope"
)

// bus is a minimal event bus whose subscriptions are resources.
type bus struct {
	handlers map[int]func(string)
	mu       sync.Mutex
	next     int
}

func newBus() *bus {
	return &bus{handlers: make(map[int]func(string))}
}

func (b *bus) On(fn func(string)) resource.Resource {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	b.handlers[id] = fn
	return resource.Func(func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers, id)
	})
}

func (b *bus) Publish(msg string) {
	b.mu.Lock()
	handlers := make([]func(string), 0, len(b.handlers))
	for _, h := range b.handlers {
		handlers = append(handlers, h)
	}
	b.mu.Unlock()
	for _, h := range handlers {
		h(msg)
	}
}

func (b *bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers)
}

type hud struct {
	bus          *bus
	received     []string
	subscribes   int
	unsubscribes int
	fail         error
}

func (h *hud) OnSubscribe(s *scope.Scope) error {
	h.subscribes++
	scope.Attach(s, h.bus.On(func(m string) { h.received = append(h.received, "a:"+m) }))
	scope.Attach(s, h.bus.On(func(m string) { h.received = append(h.received, "b:"+m) }))
	return h.fail
}

func (h *hud) OnUnsubscribe(s *scope.Scope) {
	h.unsubscribes++
}

func TestListener_BindSubscribes(t *testing.T) {
	b := newBus()
	h := &hud{bus: b}
	l := New(h, DefaultOptions())

	assert.False(t, l.Bound())
	require.NoError(t, l.Bind())
	assert.True(t, l.Bound())
	assert.True(t, l.Subscribed())
	assert.Equal(t, 2, b.Len())
	assert.Equal(t, 2, l.Scope().Len())

	b.Publish("hit")
	assert.ElementsMatch(t, []string{"a:hit", "b:hit"}, h.received)

	// binding twice does not subscribe twice
	require.NoError(t, l.Bind())
	assert.Equal(t, 1, h.subscribes)
}

func TestListener_EnableDisableCycles(t *testing.T) {
	b := newBus()
	h := &hud{bus: b}
	l := New(h, DefaultOptions())
	require.NoError(t, l.Bind())

	for i := 0; i < 5; i++ {
		require.NoError(t, l.Disable())
		assert.False(t, l.Subscribed())
		assert.Equal(t, 0, b.Len())
		assert.Equal(t, 0, l.Scope().Len())

		require.NoError(t, l.Enable())
		assert.True(t, l.Subscribed())
		assert.Equal(t, 2, b.Len())
	}

	assert.Equal(t, 6, h.subscribes)
	assert.Equal(t, 5, h.unsubscribes)
	assert.Equal(t, int64(5), l.Scope().Stats().Drains)
}

func TestListener_StartsDisabled(t *testing.T) {
	b := newBus()
	h := &hud{bus: b}
	l := New(h, Options{Disabled: true})

	require.NoError(t, l.Bind())
	assert.False(t, l.Subscribed())
	assert.Equal(t, 0, b.Len())

	require.NoError(t, l.Enable())
	assert.Equal(t, 2, b.Len())
}

func TestListener_EnableBeforeBind(t *testing.T) {
	b := newBus()
	h := &hud{bus: b}
	l := New(h, Options{Disabled: true})

	require.NoError(t, l.Enable())
	assert.Equal(t, 0, h.subscribes)
	require.NoError(t, l.Disable())
	assert.Equal(t, 0, h.unsubscribes)
}

func TestListener_ReleaseKeepsSubscriptions(t *testing.T) {
	b := newBus()
	h := &hud{bus: b}
	l := New(h, DefaultOptions())
	require.NoError(t, l.Bind())

	l.Release()
	assert.False(t, l.Bound())
	assert.Equal(t, 2, b.Len())

	// disabling an unbound listener does not drain
	require.NoError(t, l.Disable())
	assert.Equal(t, 2, b.Len())

	require.NoError(t, l.Scope().Drain())
	assert.Equal(t, 0, b.Len())
}

func TestListener_SubscribeFailureRollsBack(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	b := newBus()
	want := errors.New("bus unavailable")
	h := &hud{bus: b, fail: want}
	l := New(h, Options{Name: "hud", Logger: zap.New(core)})

	err := l.Bind()
	require.ErrorIs(t, err, want)
	assert.False(t, l.Subscribed())
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, 1, logs.FilterMessage("listener subscribe failed").Len())

	h.fail = nil
	require.NoError(t, l.Enable())
	assert.Equal(t, 2, b.Len())
}

func TestListener_NilSubscriber(t *testing.T) {
	l := New(nil, DefaultOptions())
	assert.Error(t, l.Bind())
}

func TestListener_ConcurrentToggle(t *testing.T) {
	b := newBus()
	l := New(SubscriberFunc(func(s *scope.Scope) error {
		scope.Attach(s, b.On(func(string) {}))
		return nil
	}), DefaultOptions())
	require.NoError(t, l.Bind())

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				_ = l.Disable()
				_ = l.Enable()
			}
		}()
	}
	wg.Wait()

	require.NoError(t, l.Disable())
	assert.Equal(t, 0, l.Scope().Len())
	assert.Equal(t, 0, b.Len())
}

func TestListener_DisableWaitsForSubscribe(t *testing.T) {
	b := newBus()
	entered := make(chan struct{})
	proceed := make(chan struct{})
	var calls int
	l := New(SubscriberFunc(func(s *scope.Scope) error {
		calls++
		scope.Attach(s, b.On(func(string) {}))
		if calls == 1 {
			close(entered)
			<-proceed
		}
		scope.Attach(s, b.On(func(string) {}))
		return nil
	}), DefaultOptions())

	bound := make(chan error, 1)
	go func() { bound <- l.Bind() }()
	<-entered

	disabled := make(chan error, 1)
	go func() { disabled <- l.Disable() }()

	select {
	case <-disabled:
		t.Fatal("Disable returned while OnSubscribe was still running")
	case <-time.After(50 * time.Millisecond):
	}
	assert.True(t, l.Subscribed())

	close(proceed)
	require.NoError(t, <-bound)
	require.NoError(t, <-disabled)

	assert.False(t, l.Subscribed())
	assert.Equal(t, 0, l.Scope().Len())
	assert.Equal(t, 0, b.Len())

	require.NoError(t, l.Enable())
	assert.Equal(t, 2, b.Len())
	assert.Equal(t, 2, calls)
}
