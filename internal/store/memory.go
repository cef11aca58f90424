package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemStore is an in-memory Store with the same optimistic-concurrency
// semantics as the MySQL-backed implementation: every document carries a
// version counter, transaction commits verify that all versions observed by
// the body are still current, and a losing attempt is retried against a
// fresh snapshot.  It backs the test suite, where real write races are
// exercised with goroutines.
type MemStore struct {
	mu          sync.Mutex
	collections map[string]map[string]memDoc
}

type memDoc struct {
	data    Doc
	version uint64
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{collections: make(map[string]map[string]memDoc)}
}

func (s *MemStore) coll(name string) map[string]memDoc {
	c, ok := s.collections[name]
	if !ok {
		c = make(map[string]memDoc)
		s.collections[name] = c
	}
	return c
}

// Get returns a copy of the document or ErrNotFound.
func (s *MemStore) Get(ctx context.Context, collection, id string) (Doc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.coll(collection)[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneDoc(d.data), nil
}

// Add stores data under a freshly minted ID and returns it.
func (s *MemStore) Add(ctx context.Context, collection string, data Doc) (string, error) {
	id := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.coll(collection)[id] = memDoc{data: cloneDoc(data), version: 1}
	return id, nil
}

// Set replaces the document, creating it when absent.
func (s *MemStore) Set(ctx context.Context, collection, id string, data Doc) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.coll(collection)
	c[id] = memDoc{data: cloneDoc(data), version: c[id].version + 1}
	return nil
}

// Delete removes the document; deleting an absent document is a no-op.
func (s *MemStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.coll(collection), id)
	return nil
}

// List returns all documents of a collection ordered by ID.
func (s *MemStore) List(ctx context.Context, collection string) ([]Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.coll(collection)
	out := make([]Document, 0, len(c))
	for id, d := range c {
		out = append(out, Document{ID: id, Data: cloneDoc(d.data)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// RunTransaction executes fn with snapshot reads and CAS commit, retrying a
// bounded number of times on conflict.
func (s *MemStore) RunTransaction(ctx context.Context, fn func(tx *Tx) error) error {
	return runTransaction(ctx, fn, s.attempt)
}

func (s *MemStore) attempt(ctx context.Context, fn func(tx *Tx) error) error {
	tx := newTx(func(k docKey) (Doc, uint64, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		d, ok := s.coll(k.collection)[k.id]
		if !ok {
			return nil, 0, nil
		}
		return cloneDoc(d.data), d.version, nil
	})
	if err := fn(tx); err != nil {
		return err
	}
	return s.commit(tx)
}

// commit verifies every observed version and applies the buffered writes
// atomically under the store lock.
func (s *MemStore) commit(tx *Tx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, seen := range tx.reads {
		cur := s.coll(k.collection)[k.id].version
		if cur != seen {
			return ErrConflict
		}
	}
	for _, w := range tx.writes {
		c := s.coll(w.key.collection)
		cur, exists := c[w.key.id]
		switch {
		case w.create:
			if exists {
				return ErrConflict
			}
			c[w.key.id] = memDoc{data: w.data, version: 1}
		case w.data != nil:
			c[w.key.id] = memDoc{data: w.data, version: cur.version + 1}
		default:
			c[w.key.id] = memDoc{
				data:    applyUpdates(cur.data, w.updates),
				version: cur.version + 1,
			}
		}
	}
	return nil
}
