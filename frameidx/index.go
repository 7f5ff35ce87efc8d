package frameidx

import (
	"fmt"

	"github.com/scenewire/scenewire/internal/nlog"
	"github.com/tidwall/buntdb"
)

// Index is an on-disk (or in-memory, for tests) map from frame number to
// Entry, backed by buntdb. A recording server writes an Entry each time it
// emits a Control/Frame packet; a file-stream reader uses Nearest to honor
// a Control/Keyframe seek request without replaying from byte zero.
type Index struct {
	db *buntdb.DB
}

// Open creates or opens the index database at path. Pass ":memory:" for a
// transient, non-persisted index.
func Open(path string) (*Index, error) {
	db, err := buntdb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("frameidx: open %s: %w", path, err)
	}
	return &Index{db: db}, nil
}

// Close closes the underlying database.
func (x *Index) Close() error { return x.db.Close() }

// Put records e, keyed by its frame number. A later Put for the same frame
// number overwrites the earlier one (spec.md's Reset/Keyframe semantics
// permit a frame number to be reissued after a stream reset).
func (x *Index) Put(e Entry) error {
	buf, err := e.MarshalMsg(nil)
	if err != nil {
		return fmt.Errorf("frameidx: marshal entry %d: %w", e.FrameNumber, err)
	}
	return x.db.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(key(e.FrameNumber), string(buf), nil)
		return err
	})
}

// Get returns the exact entry for frame, if present.
func (x *Index) Get(frame uint32) (Entry, bool, error) {
	var e Entry
	found := false
	err := x.db.View(func(tx *buntdb.Tx) error {
		val, err := tx.Get(key(frame))
		if err == buntdb.ErrNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		if _, uerr := e.UnmarshalMsg([]byte(val)); uerr != nil {
			return uerr
		}
		found = true
		return nil
	})
	if err != nil {
		return Entry{}, false, err
	}
	return e, found, nil
}

// Nearest returns the last entry at or before frame, for resuming a replay
// at the closest available keyframe. It returns false if the index holds
// no entry at or before frame (e.g. an empty or freshly-reset index).
func (x *Index) Nearest(frame uint32) (Entry, bool, error) {
	var e Entry
	found := false
	target := key(frame)
	err := x.db.View(func(tx *buntdb.Tx) error {
		return tx.DescendLessOrEqual("", target, func(k, v string) bool {
			if _, uerr := e.UnmarshalMsg([]byte(v)); uerr != nil {
				return false
			}
			found = true
			return false
		})
	})
	if err != nil {
		return Entry{}, false, err
	}
	return e, found, nil
}

// OpenAdvisory opens the index at path and logs a warning instead of
// failing when the file exists but cannot be opened (e.g. truncated by a
// crash mid-write). A caller receiving ok == false should fall back to
// linear replay rather than treating the recording itself as unusable.
func OpenAdvisory(path string) (idx *Index, ok bool) {
	x, err := Open(path)
	if err != nil {
		nlog.Warningf("frameidx: index at %s unusable, falling back to linear replay: %v", path, err)
		return nil, false
	}
	return x, true
}
