package aggregator

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/angelmondragon/storefront-pricing/internal/cart"
	"github.com/angelmondragon/storefront-pricing/pkg/logger"
	"github.com/angelmondragon/storefront-pricing/pkg/metrics"
)

const (
	TriggerInitial     = "initial"
	TriggerCartChanged = "cart_changed"
	TriggerRequest     = "request"
)

// Display receives published aggregation results.
type Display interface {
	Show(ctx context.Context, res Result)
}

type cartSource interface {
	Get(ctx context.Context) (cart.Cart, error)
	OnChange(fn func()) (func(), error)
}

// Runner re-aggregates the cart on load and after every cart-changed signal. Passes
// are numbered as they start; a result reaches the display only if no later pass has
// been published already, so the newest aggregation always wins.
type Runner struct {
	agg     *Aggregator
	carts   cartSource
	display Display
	logg    *logger.Logger
	metrics *metrics.AggregationMetrics

	issued atomic.Uint64

	mu          sync.Mutex
	published   uint64
	unsubscribe func()
}

// RunnerOptions configures a Runner.
type RunnerOptions struct {
	Aggregator *Aggregator
	Carts      cart.Store
	Display    Display
	Logger     *logger.Logger
	Metrics    *metrics.AggregationMetrics
}

// NewRunner validates options and builds the runner.
func NewRunner(opts RunnerOptions) (*Runner, error) {
	if opts.Aggregator == nil {
		return nil, fmt.Errorf("aggregator required")
	}
	if opts.Carts == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if opts.Display == nil {
		return nil, fmt.Errorf("display required")
	}
	return &Runner{
		agg:     opts.Aggregator,
		carts:   opts.Carts,
		display: opts.Display,
		logg:    opts.Logger,
		metrics: opts.Metrics,
	}, nil
}

// Start runs the initial pass and subscribes to cart changes. Passes triggered by a
// later cart-changed signal keep ctx's values but not its cancellation, so a shutdown
// signal cannot turn them into empty-cart results.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.unsubscribe != nil {
		r.mu.Unlock()
		return fmt.Errorf("aggregation runner already started")
	}
	r.mu.Unlock()

	r.Run(ctx, TriggerInitial)

	passCtx := context.WithoutCancel(ctx)
	unsubscribe, err := r.carts.OnChange(func() {
		r.Run(passCtx, TriggerCartChanged)
	})
	if err != nil {
		return fmt.Errorf("subscribe to cart changes: %w", err)
	}
	r.mu.Lock()
	r.unsubscribe = unsubscribe
	r.mu.Unlock()
	return nil
}

// Stop detaches from cart changes.
func (r *Runner) Stop() {
	r.mu.Lock()
	unsubscribe := r.unsubscribe
	r.unsubscribe = nil
	r.mu.Unlock()

	// Detach outside r.mu: a notification in flight holds the bus and waits on r.mu.
	if unsubscribe != nil {
		unsubscribe()
	}
}

// Run performs one pass over a fresh cart snapshot and publishes the result unless
// it has been superseded or ctx ended during the pass. The result is returned either way.
func (r *Runner) Run(ctx context.Context, trigger string) Result {
	seq := r.issued.Add(1)
	started := time.Now()

	snapshot, err := r.carts.Get(ctx)
	if err != nil {
		r.logg.Warn(r.logg.WithPass(ctx, seq, trigger), fmt.Sprintf("reading cart failed, aggregating an empty cart: %v", err))
		snapshot = cart.Cart{}
	}

	res := r.agg.Aggregate(ctx, snapshot)
	r.metrics.ObserveDuration(trigger, time.Since(started))
	if ctx.Err() != nil {
		// Reads failed with the context, so res undercounts the cart.
		r.metrics.IncSuperseded()
		return res
	}
	r.publish(ctx, seq, res)
	return res
}

func (r *Runner) publish(ctx context.Context, seq uint64, res Result) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if seq < r.published {
		r.metrics.IncSuperseded()
		return false
	}
	r.published = seq
	r.display.Show(ctx, res)
	r.metrics.SetLastTotals(res.Subtotal.InexactFloat64(), res.Savings.InexactFloat64())
	return true
}

// Latest holds the most recently published result.
type Latest struct {
	mu     sync.RWMutex
	result Result
	set    bool
}

// NewLatest builds an empty holder.
func NewLatest() *Latest {
	return &Latest{}
}

func (l *Latest) Show(_ context.Context, res Result) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.result = res
	l.set = true
}

// Get returns the last result and whether one has been published.
func (l *Latest) Get() (Result, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.result, l.set
}

// LogDisplay writes a summary line per published result.
type LogDisplay struct {
	Logger *logger.Logger
}

func (d LogDisplay) Show(ctx context.Context, res Result) {
	if d.Logger == nil {
		return
	}
	summary := res.Display()
	ctx = d.Logger.WithFields(ctx, map[string]any{
		"subtotal": summary.Subtotal,
		"savings":  summary.Savings,
		"total":    summary.Total,
		"lines":    len(summary.Lines),
	})
	d.Logger.Info(ctx, "cart aggregated")
}

// MultiDisplay fans a result out to several displays in order.
type MultiDisplay []Display

func (m MultiDisplay) Show(ctx context.Context, res Result) {
	for _, d := range m {
		if d != nil {
			d.Show(ctx, res)
		}
	}
}
