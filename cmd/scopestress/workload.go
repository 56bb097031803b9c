package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/wippyai/dispose/resource"
	"github.com/wippyai/dispose/scope"
)

type config struct {
	producers   int
	drainers    int
	ops         int
	reentrant   float64
	remove      float64
	rate        float64
	verbose     bool
	interactive bool
}

func (c config) validate() error {
	switch {
	case c.producers <= 0:
		return fmt.Errorf("-producers must be positive")
	case c.drainers <= 0:
		return fmt.Errorf("-drainers must be positive")
	case c.ops <= 0:
		return fmt.Errorf("-ops must be positive")
	case c.reentrant < 0 || c.reentrant > 1:
		return fmt.Errorf("-reentrant must be within [0,1]")
	case c.remove < 0 || c.remove > 1:
		return fmt.Errorf("-remove must be within [0,1]")
	case c.rate < 0:
		return fmt.Errorf("-rate must not be negative")
	}
	return nil
}

func (c config) total() int {
	return c.producers * c.ops
}

// workload drives producers that add (and sometimes remove) resources while
// drainers drain the same scope, then checks every resource was released
// exactly as often as it should have been.
type workload struct {
	cfg      config
	scope    *scope.Scope
	releases []atomic.Int32
	removed  []atomic.Bool
	spawned  []atomic.Bool
	produced atomic.Int64
}

type violation struct {
	id       int
	child    bool
	want     int32
	releases int32
}

func (v violation) String() string {
	kind := "resource"
	if v.child {
		kind = "child"
	}
	return fmt.Sprintf("%s %d released %d times, want %d", kind, v.id, v.releases, v.want)
}

type result struct {
	elapsed    time.Duration
	stats      scope.Stats
	violations []violation
}

func newWorkload(cfg config, log *zap.Logger) *workload {
	n := cfg.total()
	return &workload{
		cfg:      cfg,
		scope:    scope.New(scope.Options{Name: "stress", Logger: log}),
		releases: make([]atomic.Int32, 2*n),
		removed:  make([]atomic.Bool, n),
		spawned:  make([]atomic.Bool, n),
	}
}

// progress returns how many resources producers have added so far.
func (w *workload) progress() float64 {
	return float64(w.produced.Load()) / float64(w.cfg.total())
}

func (w *workload) run(ctx context.Context) (result, error) {
	start := time.Now()

	producers, pctx := errgroup.WithContext(ctx)
	for p := 0; p < w.cfg.producers; p++ {
		producers.Go(func() error {
			return w.produce(pctx, p)
		})
	}

	var done atomic.Bool
	drainers, _ := errgroup.WithContext(ctx)
	for d := 0; d < w.cfg.drainers; d++ {
		drainers.Go(func() error {
			for !done.Load() {
				// release failures are impossible here; every resource is a plain callback
				if err := w.scope.Drain(); err != nil {
					return err
				}
			}
			return nil
		})
	}

	perr := producers.Wait()
	done.Store(true)
	if err := drainers.Wait(); err != nil {
		return result{}, err
	}
	if perr != nil {
		return result{}, perr
	}

	// children added by late releases need further cycles
	for w.scope.Len() > 0 {
		if err := w.scope.Drain(); err != nil {
			return result{}, err
		}
	}

	return result{
		elapsed:    time.Since(start),
		stats:      w.scope.Stats(),
		violations: w.verify(),
	}, nil
}

func (w *workload) produce(ctx context.Context, p int) error {
	var limiter *rate.Limiter
	if w.cfg.rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(w.cfg.rate), 1)
	}

	for i := 0; i < w.cfg.ops; i++ {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				return err
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		id := p*w.cfg.ops + i
		r := resource.Func(func() { w.release(id) })
		w.scope.Add(r)
		w.produced.Inc()

		if w.cfg.remove > 0 && rand.Float64() < w.cfg.remove && w.scope.Remove(r) {
			w.removed[id].Store(true)
		}
	}
	return nil
}

func (w *workload) release(id int) {
	w.releases[id].Inc()
	if w.cfg.reentrant > 0 && rand.Float64() < w.cfg.reentrant {
		w.spawned[id].Store(true)
		child := w.cfg.total() + id
		w.scope.Add(resource.Func(func() { w.releases[child].Inc() }))
	}
}

func (w *workload) verify() []violation {
	var out []violation
	n := w.cfg.total()
	for id := 0; id < n; id++ {
		want := int32(1)
		if w.removed[id].Load() {
			want = 0
		}
		if got := w.releases[id].Load(); got != want {
			out = append(out, violation{id: id, want: want, releases: got})
		}

		want = 0
		if w.spawned[id].Load() {
			want = 1
		}
		if got := w.releases[n+id].Load(); got != want {
			out = append(out, violation{id: id, child: true, want: want, releases: got})
		}
	}
	return out
}
