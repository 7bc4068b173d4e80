package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
)

type stubContext struct {
	tier  string
	calls int
}

func (s *stubContext) CurrentPricingContext() Context {
	s.calls++
	return Context{Tier: s.tier}
}

func contractorSchedule() Schedule {
	return Schedule{
		BaseTier: Scalar(d("10")),
		"contractor": Breakpoints(
			NewBreakpoint("1-9", d("9")),
			NewBreakpoint("10+", d("8")),
		),
		"wholesale": Scalar(d("7.25")),
	}
}

func TestResolveUsesContextTier(t *testing.T) {
	t.Parallel()

	ctx := &stubContext{tier: "contractor"}
	resolver := NewResolver(ctx)

	price, ok := resolver.Resolve(contractorSchedule(), 12)
	if !ok || !price.Equal(d("8")) {
		t.Fatalf("expected 8, got %s (ok=%v)", price, ok)
	}

	res, ok := resolver.ResolveDetail(contractorSchedule(), 3)
	if !ok || res.Tier != "contractor" || !res.Price.Equal(d("9")) {
		t.Fatalf("unexpected resolution %+v", res)
	}
	if res.Match.Breakpoint == nil || res.Match.Breakpoint.Key != "1-9" {
		t.Fatalf("expected 1-9 breakpoint, got %+v", res.Match.Breakpoint)
	}
}

func TestResolveScalarTierIgnoresQuantity(t *testing.T) {
	t.Parallel()

	resolver := NewResolver(&stubContext{tier: "wholesale"})
	for _, qty := range []int{1, 5, 50, 5000} {
		price, ok := resolver.Resolve(contractorSchedule(), qty)
		if !ok || !price.Equal(d("7.25")) {
			t.Fatalf("qty %d: expected 7.25, got %s", qty, price)
		}
	}
}

func TestResolveFallsBackToBase(t *testing.T) {
	t.Parallel()

	for _, tier := range []string{"", "  ", "unknown"} {
		resolver := NewResolver(&stubContext{tier: tier})
		res, ok := resolver.ResolveDetail(contractorSchedule(), 3)
		if !ok || res.Tier != BaseTier || !res.Price.Equal(d("10")) {
			t.Fatalf("tier %q: expected base price 10, got %+v ok=%v", tier, res, ok)
		}
	}

	price, ok := NewResolver(nil).Resolve(contractorSchedule(), 3)
	if !ok || !price.Equal(d("10")) {
		t.Fatalf("nil context should resolve base, got %s", price)
	}
}

func TestResolveFailures(t *testing.T) {
	t.Parallel()

	resolver := NewResolver(&stubContext{tier: "contractor"})
	if _, ok := resolver.Resolve(nil, 1); ok {
		t.Fatal("nil schedule must not resolve")
	}
	if _, ok := resolver.Resolve(Schedule{}, 1); ok {
		t.Fatal("empty schedule must not resolve")
	}
	noBase := Schedule{"wholesale": Scalar(d("5"))}
	if _, ok := resolver.Resolve(noBase, 1); ok {
		t.Fatal("missing tier and missing base must not resolve")
	}
}

func TestResolveReadsContextEveryCall(t *testing.T) {
	t.Parallel()

	ctx := &stubContext{tier: "contractor"}
	resolver := NewResolver(ctx)
	schedule := contractorSchedule()

	first, _ := resolver.Resolve(schedule, 1)
	ctx.tier = "wholesale"
	second, _ := resolver.Resolve(schedule, 1)

	if !first.Equal(d("9")) || !second.Equal(d("7.25")) {
		t.Fatalf("context switch not observed: %s then %s", first, second)
	}
	if ctx.calls != 2 {
		t.Fatalf("expected context read per call, got %d reads", ctx.calls)
	}
}

func TestResolveBase(t *testing.T) {
	t.Parallel()

	price, ok := ResolveBase(contractorSchedule(), 100)
	if !ok || !price.Equal(d("10")) {
		t.Fatalf("expected base 10, got %s", price)
	}
	tiered := Schedule{BaseTier: Breakpoints(NewBreakpoint("1-9", d("10")), NewBreakpoint("10+", d("9.5")))}
	price, ok = ResolveBase(tiered, 10)
	if !ok || !price.Equal(d("9.5")) {
		t.Fatalf("expected tiered base 9.5, got %s", price)
	}
	if _, ok := ResolveBase(Schedule{"x": Scalar(decimal.Zero)}, 1); ok {
		t.Fatal("schedule without base must not resolve a base price")
	}
}
