package store

import "github.com/google/uuid"

// docKey addresses one document inside a transaction's bookkeeping.
type docKey struct {
	collection string
	id         string
}

// write records one buffered mutation.  Exactly one of create/set/updates is
// populated.  Writes are applied in order at commit time.
type write struct {
	key     docKey
	create  bool
	data    Doc // full document for create/set
	updates []FieldUpdate
}

// Tx collects the reads and buffered writes of a single transaction attempt.
// Reads record the version of every document observed (version 0 means the
// document was absent) so the commit can verify that no concurrent writer
// got in between.  Writes are not visible to subsequent Gets inside the same
// transaction; bodies read first, decide, then write, mirroring how the
// underlying snapshot semantics work.
type Tx struct {
	read   func(k docKey) (Doc, uint64, error)
	reads  map[docKey]uint64
	cached map[docKey]Doc
	writes []write
}

// newTx builds a transaction shell around an implementation-provided
// snapshot read function.
func newTx(read func(k docKey) (Doc, uint64, error)) *Tx {
	return &Tx{
		read:   read,
		reads:  make(map[docKey]uint64),
		cached: make(map[docKey]Doc),
	}
}

// Get reads a document inside the transaction.  Repeated Gets of the same
// document return the same snapshot.  ErrNotFound is returned for absent
// documents; the absence itself is still validated at commit time.
func (t *Tx) Get(collection, id string) (Doc, error) {
	k := docKey{collection, id}
	if v, ok := t.reads[k]; ok {
		if v == 0 {
			return nil, ErrNotFound
		}
		return cloneDoc(t.cached[k]), nil
	}
	data, version, err := t.read(k)
	if err != nil {
		return nil, err
	}
	t.reads[k] = version
	if version == 0 {
		return nil, ErrNotFound
	}
	t.cached[k] = data
	return cloneDoc(data), nil
}

// Create buffers the insertion of a new document and returns its freshly
// minted ID.  The insert fails the whole transaction with a conflict if the
// ID already exists at commit time.
func (t *Tx) Create(collection string, data Doc) string {
	id := uuid.NewString()
	t.writes = append(t.writes, write{
		key:    docKey{collection, id},
		create: true,
		data:   cloneDoc(data),
	})
	return id
}

// Set buffers a full replacement of the document's data.
func (t *Tx) Set(collection, id string, data Doc) {
	t.writes = append(t.writes, write{
		key:  docKey{collection, id},
		data: cloneDoc(data),
	})
}

// Update buffers a partial mutation expressed as field updates (plain set,
// increment, array union, array remove).  Updates are applied to the
// committed document state at commit time, after version verification.
func (t *Tx) Update(collection, id string, updates ...FieldUpdate) {
	t.writes = append(t.writes, write{
		key:     docKey{collection, id},
		updates: updates,
	})
}
