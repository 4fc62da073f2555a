package dircachededup

import "path/filepath"

// FileRecord describes one physical file. Date is the modification time in
// whole seconds since the Unix epoch; Hash is the content fingerprint.
type FileRecord struct {
	Path string `json:"path"`
	Size uint64 `json:"size"`
	Date uint64 `json:"date"`
	Hash uint64 `json:"hash"`
}

// Name returns the file name without its directory
func (fr *FileRecord) Name() string {
	return filepath.Base(fr.Path)
}

// sameMeta reports whether the cached fingerprint can be trusted for the
// given on-disk size and modification time
func (fr *FileRecord) sameMeta(size, date uint64) bool {
	return fr.Size == size && fr.Date == date
}

// DirectoryIndex is the ordered set of records for one directory.
// Paths are unique; iteration is in path order.
type DirectoryIndex struct {
	Dir     string
	records *skiplistWrapper
}

// NewDirectoryIndex creates an empty index for dir
func NewDirectoryIndex(dir string) *DirectoryIndex {
	return &DirectoryIndex{
		Dir:     dir,
		records: newSkiplistWrapper(16),
	}
}

// Len returns the number of records
func (di *DirectoryIndex) Len() int {
	return di.records.Length()
}

// Get returns the record stored under path, or nil
func (di *DirectoryIndex) Get(path string) *FileRecord {
	rec, _ := di.records.Find(path)
	return rec
}

// Put stores a copy of rec, replacing any record with the same path
func (di *DirectoryIndex) Put(rec FileRecord) {
	di.put(rec, HashedContext)
}

func (di *DirectoryIndex) put(rec FileRecord, context string) {
	if existing, _ := di.records.Find(rec.Path); existing != nil {
		di.records.Delete(rec.Path)
	}
	stored := rec
	di.records.Insert(&stored, context)
}

// Remove deletes the record for path, returning true if one existed
func (di *DirectoryIndex) Remove(path string) bool {
	return di.records.Delete(path)
}

// Records returns copies of all records in index order
func (di *DirectoryIndex) Records() []FileRecord {
	out := make([]FileRecord, 0, di.records.Length())
	di.records.ForEach(func(rec *FileRecord, context string) bool {
		out = append(out, *rec)
		return true
	})
	return out
}

// ForEach iterates records in index order until fn returns false
func (di *DirectoryIndex) ForEach(fn func(*FileRecord) bool) {
	di.records.ForEach(func(rec *FileRecord, context string) bool {
		return fn(rec)
	})
}

// markAllStored resets every record to the stored context ahead of a scan
func (di *DirectoryIndex) markAllStored() {
	var paths []string
	di.records.ForEach(func(rec *FileRecord, context string) bool {
		paths = append(paths, rec.Path)
		return true
	})
	for _, path := range paths {
		di.records.UpdateContext(path, StoredContext)
	}
}

// markSeen records that path was found on disk during the current scan
func (di *DirectoryIndex) markSeen(path, context string) {
	di.records.UpdateContext(path, context)
}

// unseen returns the paths of records not observed during the current scan
func (di *DirectoryIndex) unseen() []string {
	var paths []string
	di.records.ForEachContext(StoredContext, func(rec *FileRecord) bool {
		paths = append(paths, rec.Path)
		return true
	})
	return paths
}
