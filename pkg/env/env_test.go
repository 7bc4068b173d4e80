package env

import "testing"

func TestGetPrefersPrefixedVariable(t *testing.T) {
	t.Setenv("LOG_FORMAT", "console")
	if got := Get("LOG_FORMAT", "json"); got != "console" {
		t.Fatalf("expected bare variable, got %q", got)
	}

	t.Setenv("STOREFRONT_LOG_FORMAT", "json")
	if got := Get("LOG_FORMAT", "console"); got != "json" {
		t.Fatalf("expected prefixed variable to win, got %q", got)
	}
	if got := Get("STOREFRONT_LOG_FORMAT", "console"); got != "json" {
		t.Fatalf("expected prefixed key to be accepted, got %q", got)
	}
}

func TestGetFallback(t *testing.T) {
	t.Setenv("STOREFRONT_UNSET_FOR_TEST", " ")
	if got := Get("UNSET_FOR_TEST", "fallback"); got != "fallback" {
		t.Fatalf("expected fallback, got %q", got)
	}
}
