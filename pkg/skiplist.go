package dircachededup

import (
	"strings"

	zcsl "github.com/mattkeenan/zerocopyskiplist"
)

// skiplistWrapper wraps the generic zerocopyskiplist with context support.
// Records are keyed by Path, so iteration order is byte-wise path order.
type skiplistWrapper struct {
	skiplist *zcsl.ZeroCopySkiplist[FileRecord, string, string]
}

// newSkiplistWrapper creates a new skiplist wrapper with context tracking
func newSkiplistWrapper(maxLevels int) *skiplistWrapper {
	if maxLevels < 8 {
		maxLevels = 16
	}

	getKeyFromItem := func(rec *FileRecord) string {
		return rec.Path
	}

	// Size is the serialised JSON weight, close enough for the skiplist's accounting
	getItemSize := func(rec *FileRecord) int {
		return len(rec.Path) + 64
	}

	cmpKey := func(a, b string) int {
		return strings.Compare(a, b)
	}

	skiplist := zcsl.MakeZeroCopySkiplist[FileRecord, string, string](
		maxLevels,
		getKeyFromItem,
		getItemSize,
		cmpKey,
	)

	return &skiplistWrapper{
		skiplist: skiplist,
	}
}

// Insert adds a record with a specific context. The skiplist keeps the
// pointer, so callers must not reuse rec for another path.
func (sw *skiplistWrapper) Insert(rec *FileRecord, context string) bool {
	return sw.skiplist.Insert(rec, context)
}

// Find searches for a record by path and returns it with its context
func (sw *skiplistWrapper) Find(path string) (*FileRecord, string) {
	itemPtr, context := sw.skiplist.Find(path)
	if itemPtr != nil {
		return itemPtr.Item(), context
	}
	return nil, ""
}

// Delete removes a record by path
func (sw *skiplistWrapper) Delete(path string) bool {
	return sw.skiplist.Delete(path)
}

// UpdateContext updates the context for an existing record
func (sw *skiplistWrapper) UpdateContext(path string, newContext string) bool {
	return sw.skiplist.UpdateContext(path, newContext)
}

// ForEach iterates through all records in path order
func (sw *skiplistWrapper) ForEach(callback func(*FileRecord, string) bool) {
	for current := sw.skiplist.First(); current != nil; current = current.Next() {
		if !callback(current.Item(), current.Context()) {
			break
		}
	}
}

// ForEachContext iterates through records matching a specific context
func (sw *skiplistWrapper) ForEachContext(context string, callback func(*FileRecord) bool) {
	sw.ForEach(func(rec *FileRecord, recContext string) bool {
		if recContext == context {
			return callback(rec)
		}
		return true
	})
}

// Length returns the number of records in the skiplist
func (sw *skiplistWrapper) Length() int {
	return sw.skiplist.Length()
}

// Stats returns the number of records in each context
func (sw *skiplistWrapper) Stats() (stored, cached, hashed int) {
	sw.ForEach(func(rec *FileRecord, context string) bool {
		switch context {
		case StoredContext:
			stored++
		case CachedContext:
			cached++
		case HashedContext:
			hashed++
		}
		return true
	})
	return stored, cached, hashed
}
