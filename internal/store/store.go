// Package store provides the document-store adapter used by the rest of the
// application.  Documents are schemaless JSON maps grouped into named
// collections and addressed by string IDs.  Mutations of shared documents go
// through RunTransaction, which gives snapshot reads plus a compare-and-swap
// style commit: when another writer commits to a document read inside the
// transaction, the whole attempt is discarded and the body is re-executed
// against a fresh snapshot.  Transaction bodies must therefore be pure
// functions of their reads and call parameters; they may run more than once
// per logical call.
package store

import (
	"context"
	"errors"
	"fmt"
)

// Doc is the raw document shape as stored: a JSON-compatible map.  Typed
// records in the model package are mapped to and from this shape explicitly.
type Doc = map[string]any

// Document pairs a document ID with its data, used by List results.
type Document struct {
	ID   string
	Data Doc
}

// Sentinel errors shared by all store implementations.  Handlers and the
// ledger use errors.Is against these to classify failures.
var (
	// ErrNotFound is returned when a requested document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrConflict signals that a transaction attempt lost a write race and
	// should be retried against a fresh snapshot.
	ErrConflict = errors.New("transaction conflict")
	// ErrTxExhausted is returned by RunTransaction when the bounded retry
	// budget is spent without a clean commit.  Callers surface it as a
	// transient server error; no partial write has occurred.
	ErrTxExhausted = errors.New("transaction retries exhausted")
)

// txMaxAttempts bounds the optimistic retry loop of RunTransaction.
const txMaxAttempts = 5

// Store is the document-store interface consumed by repositories and the
// capacity ledger.  Get/Add/Set/Delete/List operate on single documents
// outside any transaction.  RunTransaction executes fn with snapshot-read +
// CAS-commit semantics and transparent bounded retry on conflict.
type Store interface {
	Get(ctx context.Context, collection, id string) (Doc, error)
	Add(ctx context.Context, collection string, data Doc) (string, error)
	Set(ctx context.Context, collection, id string, data Doc) error
	Delete(ctx context.Context, collection, id string) error
	List(ctx context.Context, collection string) ([]Document, error)
	RunTransaction(ctx context.Context, fn func(tx *Tx) error) error
}

// runTransaction is the shared retry loop.  attempt runs the body once
// against a fresh snapshot and returns ErrConflict when the commit loses a
// race.  Any other error (business rule failures included) aborts
// immediately without retry.
func runTransaction(ctx context.Context, fn func(tx *Tx) error, attempt func(ctx context.Context, fn func(tx *Tx) error) error) error {
	var err error
	for i := 0; i < txMaxAttempts; i++ {
		if err = ctx.Err(); err != nil {
			return err
		}
		err = attempt(ctx, fn)
		if errors.Is(err, ErrConflict) {
			continue
		}
		return err
	}
	return fmt.Errorf("%w (%d attempts): %v", ErrTxExhausted, txMaxAttempts, err)
}
