package pricing

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func TestScalarTableReturnsPriceForEveryQuantity(t *testing.T) {
	t.Parallel()

	table := Scalar(d("12.50"))
	for _, qty := range []int{1, 2, 9, 10, 100, 10_000} {
		price, ok := table.PriceFor(qty)
		require.True(t, ok)
		assert.True(t, price.Equal(d("12.50")), "qty %d got %s", qty, price)
	}
}

func TestBreakpointsGapFreeTable(t *testing.T) {
	t.Parallel()

	table := Breakpoints(
		NewBreakpoint("1-9", d("10")),
		NewBreakpoint("10-49", d("9")),
		NewBreakpoint("50+", d("8")),
	)

	cases := map[int]string{1: "10", 9: "10", 10: "9", 49: "9", 50: "8", 500: "8"}
	for qty, want := range cases {
		m, ok := table.Lookup(qty)
		require.True(t, ok)
		assert.False(t, m.Fallback, "qty %d should match a declared range", qty)
		assert.True(t, m.Price.Equal(d(want)), "qty %d: got %s want %s", qty, m.Price, want)
	}
}

func TestBreakpointsOverlapPrefersHighestMinimum(t *testing.T) {
	t.Parallel()

	table := Breakpoints(
		NewBreakpoint("1+", d("10")),
		NewBreakpoint("5-20", d("9")),
		NewBreakpoint("10-15", d("7")),
	)

	cases := map[int]string{3: "10", 5: "9", 9: "9", 10: "7", 15: "7", 16: "9", 21: "10"}
	for qty, want := range cases {
		price, ok := table.PriceFor(qty)
		require.True(t, ok)
		assert.True(t, price.Equal(d(want)), "qty %d: got %s want %s", qty, price, want)
	}
}

func TestBreakpointsEqualMinimumKeepsDeclarationOrder(t *testing.T) {
	t.Parallel()

	table := Breakpoints(
		NewBreakpoint("5-10", d("6")),
		NewBreakpoint("5+", d("4")),
	)
	price, ok := table.PriceFor(7)
	require.True(t, ok)
	assert.True(t, price.Equal(d("6")))
}

// The first-declared fallback is preserved as shipped behaviour; it is not the
// cheapest or the closest breakpoint.
func TestBreakpointsGapFallsBackToFirstDeclaredEntry(t *testing.T) {
	t.Parallel()

	table := Breakpoints(
		NewBreakpoint("10-19", d("9")),
		NewBreakpoint("1-4", d("12")),
		NewBreakpoint("20+", d("8")),
	)

	m, ok := table.Lookup(7)
	require.True(t, ok)
	assert.True(t, m.Fallback)
	assert.True(t, m.Price.Equal(d("9")), "expected first declared price, got %s", m.Price)
	require.NotNil(t, m.Breakpoint)
	assert.Equal(t, "10-19", m.Breakpoint.Key)
}

func TestBreakpointsMalformedKeyNeverMatches(t *testing.T) {
	t.Parallel()

	table := Breakpoints(
		NewBreakpoint("lots", d("3")),
		NewBreakpoint("1-9", d("10")),
	)

	price, ok := table.PriceFor(5)
	require.True(t, ok)
	assert.True(t, price.Equal(d("10")))

	// Out of every valid range: the malformed entry is still the first declared one.
	m, ok := table.Lookup(50)
	require.True(t, ok)
	assert.True(t, m.Fallback)
	assert.True(t, m.Price.Equal(d("3")))
}

func TestEmptyAndZeroTables(t *testing.T) {
	t.Parallel()

	if _, ok := Breakpoints().PriceFor(1); ok {
		t.Fatal("empty breakpoint table must not resolve")
	}
	if _, ok := (Table{}).PriceFor(1); ok {
		t.Fatal("zero table must not resolve")
	}

	schedule := Schedule{BaseTier: Scalar(d("10")), "pro": Breakpoints()}
	if _, ok := schedule.Table("pro"); ok {
		t.Fatal("tier with an empty breakpoint table must count as absent")
	}
}

func TestUnpricedEntryKeepsFirstDeclaredPosition(t *testing.T) {
	t.Parallel()

	var table Table
	require.NoError(t, json.Unmarshal([]byte(`{"1-9": "call us", "10-19": 9, "20+": 8}`), &table))

	entries := table.Entries()
	require.Len(t, entries, 3)
	assert.False(t, entries[0].Priced)

	price, ok := table.PriceFor(25)
	require.True(t, ok)
	assert.True(t, price.Equal(d("8")))

	// Inside the unpriced range: never matched, and the fallback lands on it.
	if _, ok := table.PriceFor(3); ok {
		t.Fatal("unpriced first entry must not hand the fallback to the next entry")
	}

	out, err := json.Marshal(table)
	require.NoError(t, err)
	assert.JSONEq(t, `{"1-9": null, "10-19": 9, "20+": 8}`, string(out))
}

func TestTableUnmarshalPreservesDeclarationOrder(t *testing.T) {
	t.Parallel()

	var table Table
	require.NoError(t, json.Unmarshal([]byte(`{"50+": 8, "1-9": "10.00", "10-49": 9.5}`), &table))
	require.Equal(t, KindBreakpoints, table.Kind())

	entries := table.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "50+", entries[0].Key)
	assert.Equal(t, "1-9", entries[1].Key)
	assert.Equal(t, "10-49", entries[2].Key)

	price, ok := table.PriceFor(12)
	require.True(t, ok)
	assert.True(t, price.Equal(d("9.5")))
}

func TestTableUnmarshalShapes(t *testing.T) {
	t.Parallel()

	var scalar Table
	require.NoError(t, json.Unmarshal([]byte(`19.99`), &scalar))
	price, ok := scalar.ScalarPrice()
	require.True(t, ok)
	assert.True(t, price.Equal(d("19.99")))

	var list Table
	require.NoError(t, json.Unmarshal([]byte(`[{"range":"1-4","price":5},{"range":"5+","price":"4.25"}]`), &list))
	price, ok = list.PriceFor(6)
	require.True(t, ok)
	assert.True(t, price.Equal(d("4.25")))

	var unpriced Table
	require.NoError(t, json.Unmarshal([]byte(`[{"range":"1-4","price":"n/a"},{"range":"5+","price":3}]`), &unpriced))
	require.Len(t, unpriced.Entries(), 2)
	assert.False(t, unpriced.Entries()[0].Priced)

	var null Table
	require.NoError(t, json.Unmarshal([]byte(`null`), &null))
	assert.True(t, null.IsZero())

	var bad Table
	assert.Error(t, json.Unmarshal([]byte(`"abc"`), &bad))
}

func TestTableMarshalRoundTripKeepsOrder(t *testing.T) {
	t.Parallel()

	table := Breakpoints(NewBreakpoint("10+", d("7")), NewBreakpoint("1-9", d("8.5")))
	raw, err := json.Marshal(table)
	require.NoError(t, err)
	assert.Equal(t, `{"10+":7,"1-9":8.5}`, string(raw))

	raw, err = json.Marshal(Scalar(d("3.10")))
	require.NoError(t, err)
	assert.Equal(t, `3.1`, string(raw))
}

func TestScheduleUnmarshal(t *testing.T) {
	t.Parallel()

	var schedule Schedule
	require.NoError(t, json.Unmarshal([]byte(`{"base": 10, "contractor": {"1-4": 9, "5+": 8}}`), &schedule))

	base, ok := schedule.Base()
	require.True(t, ok)
	assert.Equal(t, KindScalar, base.Kind())

	contractor, ok := schedule.Table("contractor")
	require.True(t, ok)
	assert.Equal(t, KindBreakpoints, contractor.Kind())
	assert.Equal(t, []string{"base", "contractor"}, schedule.Tiers())

	_, ok = schedule.Table("unknown")
	assert.False(t, ok)
}
