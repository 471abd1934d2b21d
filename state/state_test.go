package state

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestState_MergeKeepsInputs(t *testing.T) {
	base := State{"a": 1}
	merged := base.Merge(State{"b": 2})

	if len(base) != 1 {
		t.Fatalf("expected base unchanged, got %v", base)
	}
	if merged["a"] != 1 || merged["b"] != 2 {
		t.Fatalf("expected merged state, got %v", merged)
	}
}

func TestKey_Typed(t *testing.T) {
	count := Key[int]("count")
	s := State{"count": 3, "name": "x"}

	if got := count.Get(s); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
	if _, ok := Key[int]("name").Lookup(s); ok {
		t.Fatalf("expected type mismatch to report false")
	}
	if got := Key[string]("missing").Get(s); got != "" {
		t.Fatalf("expected zero value, got %q", got)
	}

	store := NewStore(s)
	store.Set(count.Set(4))
	if got := count.Get(store.State()); got != 4 {
		t.Fatalf("expected 4 after keyed set, got %d", got)
	}
}

func TestDecodeYAML(t *testing.T) {
	src := `
count: 2
user:
  name: ada
  admin: true
tags: [a, b]
`
	s, err := DecodeYAML(strings.NewReader(src))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s["count"] != 2 {
		t.Fatalf("expected count 2, got %#v", s["count"])
	}
	user, ok := s["user"].(State)
	if !ok {
		t.Fatalf("expected nested mapping as State, got %T", s["user"])
	}
	if user["name"] != "ada" || user["admin"] != true {
		t.Fatalf("unexpected nested state %v", user)
	}
}

func TestDecodeYAML_Empty(t *testing.T) {
	s, err := DecodeYAML(strings.NewReader(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s) != 0 {
		t.Fatalf("expected empty state, got %v", s)
	}
}

func TestDecodeYAML_Invalid(t *testing.T) {
	if _, err := DecodeYAML(strings.NewReader("- just\n- a list\n")); err == nil {
		t.Fatalf("expected error for non-mapping document")
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yaml")
	if err := os.WriteFile(path, []byte("mode: auto\n"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	s, err := LoadYAML(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s["mode"] != "auto" {
		t.Fatalf("expected mode auto, got %v", s["mode"])
	}
	if _, err := LoadYAML(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
