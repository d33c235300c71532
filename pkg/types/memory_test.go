package types

import (
	"errors"
	"strings"
	"testing"
)

// TestNewMemory_Defaults verifies the fixed Fact/Never defaults and that a
// fresh id and timestamp are assigned.
func TestNewMemory_Defaults(t *testing.T) {
	m, err := NewMemory("favorite color", "blue")
	if err != nil {
		t.Fatalf("NewMemory() failed: %v", err)
	}

	if m.Type != MemoryTypeFact {
		t.Errorf("Type = %q, want %q", m.Type, MemoryTypeFact)
	}
	if m.Expires != ExpiresNever {
		t.Errorf("Expires = %q, want %q", m.Expires, ExpiresNever)
	}
	if m.ID == "" {
		t.Error("ID is empty")
	}
	if !strings.Contains(m.ID, "-") {
		t.Errorf("ID %q missing time-suffix separator", m.ID)
	}
	if m.CreatedAt.IsZero() {
		t.Error("CreatedAt is zero")
	}
}

// TestNewMemory_TrimsFields verifies surrounding whitespace is stripped.
func TestNewMemory_TrimsFields(t *testing.T) {
	m, err := NewMemory("  favorite food  ", "  pizza  ")
	if err != nil {
		t.Fatalf("NewMemory() failed: %v", err)
	}
	if m.What != "favorite food" || m.Value != "pizza" {
		t.Errorf("got what=%q value=%q, want trimmed fields", m.What, m.Value)
	}
}

// TestNewMemory_Validation verifies empty and whitespace-only fields are rejected.
func TestNewMemory_Validation(t *testing.T) {
	cases := []struct{ what, value string }{
		{"", "blue"},
		{"favorite color", ""},
		{"   ", "blue"},
		{"favorite color", "   "},
	}
	for _, tc := range cases {
		if _, err := NewMemory(tc.what, tc.value); !errors.Is(err, ErrValidation) {
			t.Errorf("NewMemory(%q, %q) = %v, want ErrValidation", tc.what, tc.value, err)
		}
	}
}

// TestNewFact_FallsBackToDefaults verifies empty type and expires from the
// extractor are replaced with the fixed defaults.
func TestNewFact_FallsBackToDefaults(t *testing.T) {
	m, err := NewFact("", "favorite food", "pizza", "")
	if err != nil {
		t.Fatalf("NewFact() failed: %v", err)
	}
	if m.Type != MemoryTypeFact || m.Expires != ExpiresNever {
		t.Errorf("got type=%q expires=%q, want defaults", m.Type, m.Expires)
	}
}

// TestNewID_Unique verifies ids stay unique even when generated within the
// same millisecond.
func TestNewID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		id := NewID()
		if seen[id] {
			t.Fatalf("duplicate id generated: %s", id)
		}
		seen[id] = true
	}
}
