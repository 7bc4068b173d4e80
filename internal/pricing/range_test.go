package pricing

import "testing"

func TestParseRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key     string
		want    Range
		wantErr bool
	}{
		{key: "1-9", want: Range{Min: 1, Max: 9}},
		{key: " 10 - 49 ", want: Range{Min: 10, Max: 49}},
		{key: "50+", want: Range{Min: 50, Unbounded: true}},
		{key: "5-5", want: Range{Min: 5, Max: 5}},
		{key: "", wantErr: true},
		{key: "abc", wantErr: true},
		{key: "10", wantErr: true},
		{key: "9-1", wantErr: true},
		{key: "-5", wantErr: true},
		{key: "+", wantErr: true},
		{key: "x+", wantErr: true},
		{key: "1-y", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseRange(tt.key)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("ParseRange(%q) expected error, got %+v", tt.key, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseRange(%q) unexpected error: %v", tt.key, err)
		}
		if got != tt.want {
			t.Fatalf("ParseRange(%q) = %+v, want %+v", tt.key, got, tt.want)
		}
	}
}

func TestRangeContains(t *testing.T) {
	t.Parallel()

	closed := Range{Min: 10, Max: 49}
	if closed.Contains(9) || !closed.Contains(10) || !closed.Contains(49) || closed.Contains(50) {
		t.Fatalf("closed range bounds are inclusive on both ends")
	}

	open := Range{Min: 50, Unbounded: true}
	if open.Contains(49) || !open.Contains(50) || !open.Contains(1_000_000) {
		t.Fatalf("open range must contain everything from its minimum upward")
	}
}

func TestRangeString(t *testing.T) {
	if got := (Range{Min: 1, Max: 9}).String(); got != "1-9" {
		t.Fatalf("unexpected closed range string %q", got)
	}
	if got := (Range{Min: 50, Unbounded: true}).String(); got != "50+" {
		t.Fatalf("unexpected open range string %q", got)
	}
}
