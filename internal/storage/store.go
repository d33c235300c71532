package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/scrypster/mnemo/pkg/types"
)

// Store owns the ordered memory sequence and its persistence. Mutating
// operations build a fresh snapshot, swap it in under the lock, and signal the
// background saver; readers always see either the old or the new snapshot,
// never a partially-updated one.
//
// Persistence is write-through but asynchronous: the saver coalesces bursts of
// mutations through a rate limiter, so an import followed by a string of edits
// produces a bounded number of disk writes. Save failures do not fail the
// mutation; they are reported through the save-error hook.
type Store struct {
	kv          KV
	limiter     *rate.Limiter
	onSaveError func(error)

	mu       sync.RWMutex
	memories []types.Memory

	dirty   chan struct{}
	stop    chan struct{}
	done    chan struct{}
	started bool
}

// Option configures a Store.
type Option func(*Store)

// WithSaveErrorHook sets the callback invoked when an asynchronous save fails.
// The default logs a warning that the latest change may not survive a restart.
func WithSaveErrorHook(hook func(error)) Option {
	return func(s *Store) { s.onSaveError = hook }
}

// WithSaveRate overrides the persistence rate limit (default: one write per
// 250ms, burst 1).
func WithSaveRate(r rate.Limit, burst int) Option {
	return func(s *Store) { s.limiter = rate.NewLimiter(r, burst) }
}

// NewStore creates a Store over the given KV engine. Call Load to read the
// persisted state and Start to launch the background saver.
func NewStore(kv KV, opts ...Option) *Store {
	s := &Store{
		kv:      kv,
		limiter: rate.NewLimiter(rate.Every(250*time.Millisecond), 1),
		onSaveError: func(err error) {
			log.Printf("storage: warning: save failed, latest change may not survive restart: %v", err)
		},
		dirty: make(chan struct{}, 1),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the persisted blob into memory. A missing or unparsable blob
// degrades to an empty sequence with a logged diagnostic; Load never fails the
// caller for that. The initial load does not trigger a write.
func (s *Store) Load(ctx context.Context) {
	data, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			log.Printf("storage: no persisted memories found, starting empty")
		} else {
			log.Printf("storage: failed to load memories, starting empty: %v", err)
		}
		s.setSnapshot(nil, false)
		return
	}

	var memories []types.Memory
	if err := json.Unmarshal(data, &memories); err != nil {
		log.Printf("storage: persisted blob is unparsable, starting empty: %v", err)
		s.setSnapshot(nil, false)
		return
	}

	s.setSnapshot(memories, false)
}

// Start launches the background saver. The saver runs until Close is called
// or ctx is cancelled.
func (s *Store) Start(ctx context.Context) {
	s.started = true
	go s.run(ctx)
}

// Close stops the saver, performs a final synchronous flush, and closes the
// underlying engine.
func (s *Store) Close() error {
	if s.started {
		close(s.stop)
		<-s.done
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Flush(ctx); err != nil {
		s.onSaveError(err)
	}

	return s.kv.Close()
}

// run is the saver loop: each dirty signal is paced through the rate limiter
// and flushed. A signal arriving while a flush is pending is absorbed by the
// single-slot dirty channel, which is what coalesces bursts.
func (s *Store) run(ctx context.Context) {
	defer close(s.done)
	for {
		select {
		case <-s.stop:
			return
		case <-ctx.Done():
			return
		case <-s.dirty:
			if err := s.limiter.Wait(ctx); err != nil {
				return
			}
			if err := s.Flush(ctx); err != nil {
				s.onSaveError(err)
			}
		}
	}
}

// Flush serializes the current snapshot and writes it under the fixed key.
func (s *Store) Flush(ctx context.Context) error {
	data, err := json.Marshal(s.List())
	if err != nil {
		return fmt.Errorf("storage: failed to serialize memories: %w", err)
	}
	if err := s.kv.Put(ctx, StorageKey, data); err != nil {
		return fmt.Errorf("storage: failed to persist memories: %w", err)
	}
	return nil
}

// List returns a copy of the current snapshot in append order.
func (s *Store) List() []types.Memory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]types.Memory, len(s.memories))
	copy(out, s.memories)
	return out
}

// Len returns the number of stored memories.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.memories)
}

// Add validates and appends a new Fact memory, returning the created record.
func (s *Store) Add(what, value string) (types.Memory, error) {
	return s.AddFact(types.MemoryTypeFact, what, value, types.ExpiresNever)
}

// AddFact appends a memory built from extractor output. It returns
// types.ErrValidation when what or value trims empty; the sequence is
// unchanged in that case.
func (s *Store) AddFact(memType, what, value, expires string) (types.Memory, error) {
	m, err := types.NewFact(memType, what, value, expires)
	if err != nil {
		return types.Memory{}, err
	}

	s.mu.Lock()
	next := make([]types.Memory, len(s.memories), len(s.memories)+1)
	copy(next, s.memories)
	next = append(next, m)
	s.memories = next
	s.mu.Unlock()

	s.markDirty()
	return m, nil
}

// Edit replaces the what and value of the memory with the given id, leaving
// id, type, expires, and createdAt untouched. It returns types.ErrValidation
// if either field trims empty and types.ErrNotFound if the id is absent; the
// sequence is unchanged on any error.
func (s *Store) Edit(id, what, value string) error {
	what = strings.TrimSpace(what)
	value = strings.TrimSpace(value)
	if what == "" || value == "" {
		return types.ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i, m := range s.memories {
		if m.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return types.ErrNotFound
	}

	next := make([]types.Memory, len(s.memories))
	copy(next, s.memories)
	next[idx].What = what
	next[idx].Value = value
	s.memories = next

	s.markDirty()
	return nil
}

// Delete removes the memory with the given id without reordering the
// remaining entries. Deleting an absent id is a no-op, so Delete is
// idempotent.
func (s *Store) Delete(id string) {
	s.mu.Lock()

	idx := -1
	for i, m := range s.memories {
		if m.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		s.mu.Unlock()
		return
	}

	next := make([]types.Memory, 0, len(s.memories)-1)
	next = append(next, s.memories[:idx]...)
	next = append(next, s.memories[idx+1:]...)
	s.memories = next
	s.mu.Unlock()

	s.markDirty()
}

// ExportAll returns the full sequence as pretty-printed JSON.
func (s *Store) ExportAll() ([]byte, error) {
	data, err := json.MarshalIndent(s.List(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("storage: failed to serialize export: %w", err)
	}
	return data, nil
}

// ExportFilename returns the export file name for the given time, stamped
// with the ISO date: memories-2006-01-02.json.
func ExportFilename(t time.Time) string {
	return fmt.Sprintf("memories-%s.json", t.Format("2006-01-02"))
}

// ImportAll replaces the entire sequence with the decoded payload. This is a
// full destructive overwrite: no merge, no id-collision checking against
// existing data. It returns ErrImport (store unchanged) when the payload is
// not a JSON array of memories, otherwise the number of imported records.
func (s *Store) ImportAll(data []byte) (int, error) {
	var memories []types.Memory
	if err := json.Unmarshal(data, &memories); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrImport, err)
	}
	// The literal null unmarshals into a nil slice without an error; accepting
	// it would silently replace the store with nothing.
	if memories == nil {
		return 0, fmt.Errorf("%w: payload is null", ErrImport)
	}

	s.setSnapshot(memories, true)
	return len(memories), nil
}

// setSnapshot swaps in a new snapshot, optionally marking the store dirty.
func (s *Store) setSnapshot(memories []types.Memory, persist bool) {
	s.mu.Lock()
	s.memories = memories
	s.mu.Unlock()
	if persist {
		s.markDirty()
	}
}

// markDirty signals the saver without blocking; a pending signal already
// covers this change.
func (s *Store) markDirty() {
	select {
	case s.dirty <- struct{}{}:
	default:
	}
}
