package store

import (
	"context"
	"testing"
)

func runUpdate(t *testing.T, s *MemStore, updates ...FieldUpdate) Doc {
	t.Helper()
	ctx := context.Background()
	err := s.RunTransaction(ctx, func(tx *Tx) error {
		if _, err := tx.Get("docs", "d"); err != nil {
			return err
		}
		tx.Update("docs", "d", updates...)
		return nil
	})
	if err != nil {
		t.Fatalf("RunTransaction: %v", err)
	}
	doc, err := s.Get(ctx, "docs", "d")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	return doc
}

func TestArrayUnionSkipsStructuralDuplicates(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	if err := s.Set(ctx, "docs", "d", Doc{
		"entries": []any{Doc{"name": "Jane", "addedBy": "u1"}},
	}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	doc := runUpdate(t, s,
		ArrayUnion("entries",
			Doc{"addedBy": "u1", "name": "Jane"}, // same entry, different key order
			Doc{"name": "Jane", "addedBy": "u2"}, // same name, different owner
		),
	)
	entries := doc["entries"].([]any)
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2: %v", len(entries), entries)
	}
}

func TestArrayRemoveMatchesStructurally(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	if err := s.Set(ctx, "docs", "d", Doc{
		"entries": []any{
			Doc{"name": "Jane", "addedBy": "u1"},
			Doc{"name": "Jane", "addedBy": "u2"},
		},
	}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	doc := runUpdate(t, s, ArrayRemove("entries", Doc{"name": "Jane", "addedBy": "u1"}))
	entries := doc["entries"].([]any)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	left := entries[0].(map[string]any)
	if left["addedBy"] != "u2" {
		t.Fatalf("removed the wrong entry: %v", left)
	}
}

func TestArrayOpsOnAbsentField(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	if err := s.Set(ctx, "docs", "d", Doc{}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	doc := runUpdate(t, s, ArrayUnion("tags", "a", "b"), ArrayRemove("missing", "x"))
	tags := doc["tags"].([]any)
	if len(tags) != 2 {
		t.Fatalf("got tags=%v, want [a b]", tags)
	}
	if missing := doc["missing"].([]any); len(missing) != 0 {
		t.Fatalf("got missing=%v, want empty array", missing)
	}
}

func TestIncrementOnAbsentFieldStartsAtZero(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	if err := s.Set(ctx, "docs", "d", Doc{}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	doc := runUpdate(t, s, Increment("n", 3), Increment("n", -1))
	if got := AsInt64(doc["n"]); got != 2 {
		t.Fatalf("got n=%d, want 2", got)
	}
}

func TestSetFieldOverwrites(t *testing.T) {
	ctx := context.Background()
	s := NewMemStore()
	if err := s.Set(ctx, "docs", "d", Doc{"status": "confirmed"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	doc := runUpdate(t, s, Set("status", "cancelled"), Set("cancelledAt", "2026-08-28T00:00:00Z"))
	if doc["status"] != "cancelled" {
		t.Fatalf("got status=%v", doc["status"])
	}
	if doc["cancelledAt"] == nil {
		t.Fatal("Set did not add the new field")
	}
}
