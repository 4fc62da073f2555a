package dircachededup

import (
	"fmt"
	"io"
)

// Collision records two files sharing a fingerprint whose content is known
// to differ. Neither file is deleted.
type Collision struct {
	Hash   uint64
	Kept   string
	Other  string
	Reason string
}

// RunReport accumulates everything that happened during a run, including
// every non-fatal failure, so it can be summarised at the end.
type RunReport struct {
	FileErrors      []*FileAccessError
	DeletionErrors  []*DeletionError
	DirectoryErrors []*DirectoryError
	IndexWarnings   []*IndexCorruptionError
	Collisions      []Collision
	Deleted         []string
	WouldDelete     []string

	FilesHashed int
	CacheHits   int
	Pruned      int
}

// NewRunReport creates an empty report
func NewRunReport() *RunReport {
	return &RunReport{
		FileErrors:      make([]*FileAccessError, 0),
		DeletionErrors:  make([]*DeletionError, 0),
		DirectoryErrors: make([]*DirectoryError, 0),
		IndexWarnings:   make([]*IndexCorruptionError, 0),
		Collisions:      make([]Collision, 0),
		Deleted:         make([]string, 0),
	}
}

func (r *RunReport) addFileError(err *FileAccessError) {
	if r == nil {
		return
	}
	Errorf("%v", err)
	r.FileErrors = append(r.FileErrors, err)
}

func (r *RunReport) addDeletionError(err *DeletionError) {
	if r == nil {
		return
	}
	Errorf("%v", err)
	r.DeletionErrors = append(r.DeletionErrors, err)
}

func (r *RunReport) addDirectoryError(err *DirectoryError) {
	if r == nil {
		return
	}
	Errorf("%v", err)
	r.DirectoryErrors = append(r.DirectoryErrors, err)
}

func (r *RunReport) addIndexWarning(err *IndexCorruptionError) {
	if r == nil {
		return
	}
	Warnf("%v", err)
	r.IndexWarnings = append(r.IndexWarnings, err)
}

func (r *RunReport) addCollision(c Collision) {
	if r == nil {
		return
	}
	Warnf("fingerprint %016x shared by %s and %s but %s; keeping both", c.Hash, c.Kept, c.Other, c.Reason)
	r.Collisions = append(r.Collisions, c)
}

// HasErrors returns true if any non-fatal failure was recorded
func (r *RunReport) HasErrors() bool {
	return r.TotalErrors() > 0
}

// TotalErrors returns the number of recorded failures needing attention
func (r *RunReport) TotalErrors() int {
	return len(r.FileErrors) + len(r.DeletionErrors) + len(r.DirectoryErrors)
}

// WriteSummary writes the end-of-run summary in human-readable form
func (r *RunReport) WriteSummary(w io.Writer) {
	fmt.Fprintf(w, "Summary: %d hashed, %d cached, %d pruned, %d deleted\n",
		r.FilesHashed, r.CacheHits, r.Pruned, len(r.Deleted))
	if r.HasErrors() {
		fmt.Fprintf(w, "%d problem(s) need attention\n", r.TotalErrors())
	}

	if len(r.WouldDelete) > 0 {
		fmt.Fprintf(w, "Dry run, %d file(s) would be deleted:\n", len(r.WouldDelete))
		for _, path := range r.WouldDelete {
			fmt.Fprintf(w, "  %s\n", path)
		}
	}

	if len(r.DeletionErrors) > 0 {
		fmt.Fprintf(w, "%d duplicate(s) could not be deleted and need manual attention:\n", len(r.DeletionErrors))
		for _, err := range r.DeletionErrors {
			fmt.Fprintf(w, "  %v\n", err)
		}
	}

	if len(r.FileErrors) > 0 {
		fmt.Fprintf(w, "%d file(s) skipped:\n", len(r.FileErrors))
		for _, err := range r.FileErrors {
			fmt.Fprintf(w, "  %v\n", err)
		}
	}

	if len(r.DirectoryErrors) > 0 {
		fmt.Fprintf(w, "%d directory error(s):\n", len(r.DirectoryErrors))
		for _, err := range r.DirectoryErrors {
			fmt.Fprintf(w, "  %v\n", err)
		}
	}

	if len(r.IndexWarnings) > 0 {
		fmt.Fprintf(w, "%d index file(s) rebuilt from scratch:\n", len(r.IndexWarnings))
		for _, err := range r.IndexWarnings {
			fmt.Fprintf(w, "  %v\n", err)
		}
	}

	if len(r.Collisions) > 0 {
		fmt.Fprintf(w, "%d fingerprint collision(s), both files kept:\n", len(r.Collisions))
		for _, c := range r.Collisions {
			fmt.Fprintf(w, "  %016x %s <> %s (%s)\n", c.Hash, c.Kept, c.Other, c.Reason)
		}
	}
}
