package aggregator

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/angelmondragon/storefront-pricing/internal/cart"
	"github.com/angelmondragon/storefront-pricing/internal/events"
	"github.com/angelmondragon/storefront-pricing/pkg/logger"
	"github.com/angelmondragon/storefront-pricing/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

func newRunnerFixture(t *testing.T) (*Runner, *cart.PersistentStore, *Latest) {
	t.Helper()
	store, err := cart.NewPersistentStore(cart.StoreOptions{Blobs: cart.NewMemoryBlob(), Bus: events.NewBus()})
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	latest := NewLatest()
	runner, err := NewRunner(RunnerOptions{
		Aggregator: newTestAggregator(t, testCatalog(), contractor()),
		Carts:      store,
		Display:    latest,
		Metrics:    metrics.NewAggregationMetrics(prometheus.NewRegistry()),
	})
	if err != nil {
		t.Fatalf("runner: %v", err)
	}
	return runner, store, latest
}

func TestRunnerPublishesInitialAndOnChange(t *testing.T) {
	runner, store, latest := newRunnerFixture(t)
	ctx := context.Background()

	if err := runner.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer runner.Stop()

	res, ok := latest.Get()
	if !ok || !res.Total.IsZero() {
		t.Fatalf("expected initial empty aggregation, got %+v %v", res, ok)
	}

	if err := store.Set(ctx, cart.Cart{Items: []cart.LineItem{cart.Product("WIDGET", 5)}}); err != nil {
		t.Fatalf("set: %v", err)
	}
	res, _ = latest.Get()
	if !res.Subtotal.Equal(d("40")) || !res.Savings.Equal(d("10")) {
		t.Fatalf("expected re-aggregation after cart change, got %+v", res)
	}

	if err := runner.Start(ctx); err == nil {
		t.Fatal("expected second start to fail")
	}
}

func TestRunnerStopDetaches(t *testing.T) {
	runner, store, latest := newRunnerFixture(t)
	ctx := context.Background()
	if err := runner.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	runner.Stop()

	if err := store.Set(ctx, cart.Cart{Items: []cart.LineItem{cart.Product("WIDGET", 1)}}); err != nil {
		t.Fatalf("set: %v", err)
	}
	res, _ := latest.Get()
	if !res.Total.IsZero() {
		t.Fatalf("stopped runner should not re-aggregate, got %+v", res)
	}
}

func TestRunnerLastAggregationWins(t *testing.T) {
	runner, _, latest := newRunnerFixture(t)
	ctx := context.Background()

	newer := Result{Total: d("2"), Subtotal: d("2")}
	stale := Result{Total: d("1"), Subtotal: d("1")}

	if !runner.publish(ctx, 2, newer) {
		t.Fatal("expected newer pass to publish")
	}
	if runner.publish(ctx, 1, stale) {
		t.Fatal("stale pass must not publish over a newer one")
	}
	res, _ := latest.Get()
	if !res.Total.Equal(d("2")) {
		t.Fatalf("expected newer result to remain, got %s", res.Total)
	}
}

type brokenCarts struct{}

func (brokenCarts) Get(context.Context) (cart.Cart, error) {
	return cart.Cart{Items: []cart.LineItem{cart.Product("WIDGET", 1)}}, errors.New("disk on fire")
}

func (brokenCarts) Set(context.Context, cart.Cart) error { return nil }

func (brokenCarts) OnChange(func()) (func(), error) { return func() {}, nil }

func TestRunnerTreatsUnreadableCartAsEmpty(t *testing.T) {
	buf := &bytes.Buffer{}
	latest := NewLatest()
	runner, err := NewRunner(RunnerOptions{
		Aggregator: newTestAggregator(t, testCatalog(), contractor()),
		Carts:      brokenCarts{},
		Display:    MultiDisplay{latest, LogDisplay{Logger: logger.New(logger.Options{ServiceName: "test", Output: buf})}},
		Logger:     logger.New(logger.Options{ServiceName: "test", Output: buf}),
	})
	if err != nil {
		t.Fatalf("runner: %v", err)
	}

	res := runner.Run(context.Background(), TriggerRequest)
	if !res.Total.IsZero() {
		t.Fatalf("expected empty aggregation, got %+v", res)
	}
	if _, ok := latest.Get(); !ok {
		t.Fatal("expected result to be published")
	}
	if !bytes.Contains(buf.Bytes(), []byte("cart aggregated")) || !bytes.Contains(buf.Bytes(), []byte(`"total":"0.00"`)) {
		t.Fatalf("expected log display summary, got %s", buf.String())
	}
}

func TestNewRunnerValidatesOptions(t *testing.T) {
	if _, err := NewRunner(RunnerOptions{}); err == nil {
		t.Fatal("expected aggregator requirement")
	}
	agg := newTestAggregator(t, testCatalog(), contractor())
	if _, err := NewRunner(RunnerOptions{Aggregator: agg}); err == nil {
		t.Fatal("expected cart store requirement")
	}
	if _, err := NewRunner(RunnerOptions{Aggregator: agg, Carts: brokenCarts{}}); err == nil {
		t.Fatal("expected display requirement")
	}
}

func TestRunnerOutlivesStartContext(t *testing.T) {
	runner, store, latest := newRunnerFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	if err := runner.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer runner.Stop()
	cancel()

	if err := store.Set(context.Background(), cart.Cart{Items: []cart.LineItem{cart.Product("WIDGET", 5)}}); err != nil {
		t.Fatalf("set: %v", err)
	}
	res, _ := latest.Get()
	if !res.Subtotal.Equal(d("40")) {
		t.Fatalf("expected pass after cancellation to price the cart, got subtotal %s", res.Subtotal)
	}
}

func TestRunnerDoesNotPublishCancelledPass(t *testing.T) {
	runner, store, latest := newRunnerFixture(t)
	ctx := context.Background()
	if err := runner.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer runner.Stop()
	if err := store.Set(ctx, cart.Cart{Items: []cart.LineItem{cart.Product("WIDGET", 5)}}); err != nil {
		t.Fatalf("set: %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	runner.Run(cancelled, TriggerRequest)

	res, _ := latest.Get()
	if !res.Subtotal.Equal(d("40")) {
		t.Fatalf("cancelled pass must not replace the published result, got %s", res.Subtotal)
	}
}
