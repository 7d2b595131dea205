package id

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestGenerate(t *testing.T) {
	got := Generate()

	if !strings.HasPrefix(got, Prefix) {
		t.Fatalf("expected prefix %q, got %q", Prefix, got)
	}
	if _, err := uuid.Parse(strings.TrimPrefix(got, Prefix)); err != nil {
		t.Errorf("suffix is not a UUID: %v", err)
	}
}

func TestGenerate_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		got := Generate()
		if seen[got] {
			t.Fatalf("duplicate ID %s", got)
		}
		seen[got] = true
	}
}
