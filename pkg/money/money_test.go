package money

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormatTwoPlaces(t *testing.T) {
	cases := map[string]string{
		"0":        "0.00",
		"40":       "40.00",
		"12.5":     "12.50",
		"0.1":      "0.10",
		"19.999":   "20.00",
		"1234.565": "1234.57",
	}
	for in, want := range cases {
		if got := Format(decimal.RequireFromString(in)); got != want {
			t.Fatalf("Format(%s) = %s, want %s", in, got, want)
		}
	}
}

func TestParseAcceptsDecodedShapes(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{in: json.Number("12.99"), want: "12.99"},
		{in: "  $8.50 ", want: "8.5"},
		{in: 10, want: "10"},
		{in: float64(2.25), want: "2.25"},
		{in: decimal.NewFromInt(7), want: "7"},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if err != nil {
			t.Fatalf("Parse(%v) error: %v", tt.in, err)
		}
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Fatalf("Parse(%v) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestParseRejectsNonNumeric(t *testing.T) {
	for _, in := range []any{nil, "", "abc", true, map[string]any{}} {
		if _, err := Parse(in); err == nil {
			t.Fatalf("expected error for %#v", in)
		}
	}
}

func TestParseOptionalNil(t *testing.T) {
	got, err := ParseOptional(nil)
	if err != nil || got != nil {
		t.Fatalf("expected nil, nil; got %v, %v", got, err)
	}
}
