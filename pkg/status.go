package dircachededup

import (
	"path/filepath"
	"sort"
)

// StatusResult lists the files an Update would touch
type StatusResult struct {
	Modified []string
	Added    []string
	Deleted  []string
}

// HasChanges returns true if any changes were detected
func (sr *StatusResult) HasChanges() bool {
	return len(sr.Modified) > 0 || len(sr.Added) > 0 || len(sr.Deleted) > 0
}

// Status compares the directory with its stored index using metadata only.
// Nothing is hashed and the sidecar is not rewritten.
func (dc *DirectoryCache) Status() (*StatusResult, error) {
	defer VerboseEnter()()

	idx, err := LoadIndex(dc.RootDir)
	if err != nil {
		Warnf("%v", err)
	}

	candidates, err := dc.listCandidates()
	if err != nil {
		return nil, &DirectoryError{Dir: dc.RootDir, Op: "read", Err: err}
	}

	result := &StatusResult{}
	seen := make(map[string]bool, len(candidates))

	for _, name := range candidates {
		path := filepath.Join(dc.RootDir, name)
		seen[path] = true

		prior := idx.Get(path)
		if prior == nil {
			result.Added = append(result.Added, path)
			continue
		}

		st, err := statFile(path)
		if err != nil {
			if isGone(err) {
				result.Deleted = append(result.Deleted, path)
			}
			continue
		}
		if !prior.sameMeta(st.Size, st.Date) {
			result.Modified = append(result.Modified, path)
		}
	}

	idx.ForEach(func(rec *FileRecord) bool {
		if !seen[rec.Path] {
			result.Deleted = append(result.Deleted, rec.Path)
		}
		return true
	})

	sort.Strings(result.Deleted)
	return result, nil
}
