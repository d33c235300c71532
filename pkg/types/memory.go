// Package types defines the core data types shared across mnemo.
package types

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MemoryTypeFact is the only memory kind the extractor produces.
const MemoryTypeFact = "Fact"

// ExpiresNever marks a memory that never expires. Expiry is recorded on every
// memory but never evaluated or enforced.
const ExpiresNever = "Never"

// ErrValidation is returned when a create or edit would leave a memory with an
// empty what or value.
var ErrValidation = errors.New("what and value must be non-empty")

// ErrNotFound is returned when an edit targets an id that is not in the store.
var ErrNotFound = errors.New("memory not found")

// Memory is a single stored fact: a short label (what) naming the fact and its
// content (value), plus identity and creation metadata.
type Memory struct {
	ID        string    `json:"id"`        // Unique identifier, stable for the record's lifetime
	Type      string    `json:"type"`      // Memory kind (always "Fact")
	What      string    `json:"what"`      // Short label naming the fact (e.g., "favorite color")
	Value     string    `json:"value"`     // The fact's content (e.g., "blue")
	Expires   string    `json:"expires"`   // Recorded but never enforced (always "Never")
	CreatedAt time.Time `json:"createdAt"` // Set at creation, never modified after
}

// NewID generates a memory identifier from the current unix-millisecond time
// plus a short random suffix, so two memories created within the same
// millisecond still get distinct ids.
func NewID() string {
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

// NewMemory constructs a Fact memory with a fresh id and the current timestamp.
// It trims what and value and returns ErrValidation if either is empty.
func NewMemory(what, value string) (Memory, error) {
	return NewFact(MemoryTypeFact, what, value, ExpiresNever)
}

// NewFact constructs a memory from extractor output. Empty memType and expires
// fall back to their fixed defaults; what and value must be non-empty after
// trimming.
func NewFact(memType, what, value, expires string) (Memory, error) {
	what = strings.TrimSpace(what)
	value = strings.TrimSpace(value)
	if what == "" || value == "" {
		return Memory{}, ErrValidation
	}
	if memType == "" {
		memType = MemoryTypeFact
	}
	if expires == "" {
		expires = ExpiresNever
	}
	return Memory{
		ID:        NewID(),
		Type:      memType,
		What:      what,
		Value:     value,
		Expires:   expires,
		CreatedAt: time.Now().UTC(),
	}, nil
}

