package dircachededup

import (
	"fmt"
	"os"

	"github.com/tidwall/btree"
)

// ReconcileOptions controls duplicate removal
type ReconcileOptions struct {
	DryRun        bool // report losers without removing them
	VerifyContent bool // byte-compare both files before removing one
	BufferSize    int  // read chunk size for VerifyContent
}

// ReconcileOptions builds reconciliation options from the configuration
func (c *Config) ReconcileOptions() ReconcileOptions {
	bufferSize, _ := c.HashBufferSize()
	return ReconcileOptions{
		DryRun:        c.DryRun,
		VerifyContent: c.VerifyContent,
		BufferSize:    bufferSize,
	}
}

// ReconcileResult is the outcome of one reconciliation pass
type ReconcileResult struct {
	// fingerprint -> surviving records; more than one only when files
	// sharing the fingerprint are known to differ
	Kept        *btree.Map[uint64, []FileRecord]
	Deleted     []string // removed, or attempted and retired
	WouldDelete []string // dry run only
	Collisions  []Collision
}

// Reconcile walks every record of every index, in directory order then index
// order, and keeps one file per fingerprint and size: the one with the later
// Date, or on equal Date the one with the lexically smaller Path. Every other
// copy is removed from disk and retired from its index.
//
// A fingerprint is a 64-bit non-cryptographic digest. Two different files can
// share one; when that happens and the sizes match, the older file is still
// deleted unless VerifyContent is set.
func Reconcile(indices []*DirectoryIndex, opts ReconcileOptions, report *RunReport) *ReconcileResult {
	defer VerboseEnter()()
	if report == nil {
		report = NewRunReport()
	}

	result := &ReconcileResult{
		Kept:        btree.NewMap[uint64, []FileRecord](0),
		Deleted:     make([]string, 0),
		WouldDelete: make([]string, 0),
		Collisions:  make([]Collision, 0),
	}

	for _, idx := range indices {
		if idx == nil {
			continue
		}
		idx.ForEach(func(rec *FileRecord) bool {
			result.consider(*rec, opts, report)
			return true
		})
	}

	if !opts.DryRun {
		for _, idx := range indices {
			if idx == nil {
				continue
			}
			for _, path := range result.Deleted {
				idx.Remove(path)
			}
		}
	}

	if IsDebugEnabled("reconcile") {
		VerboseLog(3, "Reconcile: %d fingerprints kept, %d deleted, %d collisions",
			result.Kept.Len(), len(result.Deleted), len(result.Collisions))
	}
	return result
}

// consider folds one record into the kept table. The candidate is a
// duplicate of the first kept record with its fingerprint that is not proven
// different; if there is none it is kept alongside them.
func (rr *ReconcileResult) consider(candidate FileRecord, opts ReconcileOptions, report *RunReport) {
	kept, _ := rr.Kept.Get(candidate.Hash)

	// The same directory listed twice yields the same file twice
	for _, existing := range kept {
		if existing.Path == candidate.Path {
			return
		}
	}

	var collisions []Collision
	for i, existing := range kept {
		winner, loser := pickSurvivor(existing, candidate)

		if reason := provenDifferent(winner, loser, opts); reason != "" {
			collisions = append(collisions, Collision{Hash: candidate.Hash, Kept: existing.Path, Other: candidate.Path, Reason: reason})
			continue
		}

		rr.remove(loser, winner, opts, report)
		kept[i] = winner
		rr.Kept.Set(candidate.Hash, kept)
		return
	}

	for _, c := range collisions {
		rr.Collisions = append(rr.Collisions, c)
		report.addCollision(c)
	}
	rr.Kept.Set(candidate.Hash, append(kept, candidate))
}

// pickSurvivor orders two records sharing a fingerprint as (kept, deleted)
func pickSurvivor(a, b FileRecord) (FileRecord, FileRecord) {
	switch {
	case b.Date > a.Date:
		return b, a
	case a.Date > b.Date:
		return a, b
	case b.Path < a.Path:
		return b, a
	default:
		return a, b
	}
}

// provenDifferent returns a reason when the two files are known not to be
// copies of each other, or "" when they may be treated as duplicates
func provenDifferent(winner, loser FileRecord, opts ReconcileOptions) string {
	if winner.Size != loser.Size {
		return fmt.Sprintf("sizes differ (%d vs %d)", winner.Size, loser.Size)
	}
	if !opts.VerifyContent {
		return ""
	}

	same, err := sameContent(winner.Path, loser.Path, opts.BufferSize)
	if err != nil {
		return fmt.Sprintf("content check failed: %v", err)
	}
	if !same {
		return "content differs"
	}
	return ""
}

// remove deletes the losing file. A failed removal is reported and the loser
// is retired anyway so the rest of the pass sees a consistent table.
func (rr *ReconcileResult) remove(loser, winner FileRecord, opts ReconcileOptions, report *RunReport) {
	if opts.DryRun {
		Progressf("Would delete %s (duplicate of %s)", loser.Path, winner.Path)
		rr.WouldDelete = append(rr.WouldDelete, loser.Path)
		report.WouldDelete = append(report.WouldDelete, loser.Path)
		return
	}

	rr.Deleted = append(rr.Deleted, loser.Path)

	if err := os.Remove(loser.Path); err != nil {
		report.addDeletionError(&DeletionError{Path: loser.Path, KeptAs: winner.Path, Err: err})
		return
	}

	Progressf("Deleted %s (duplicate of %s)", loser.Path, winner.Path)
	report.Deleted = append(report.Deleted, loser.Path)
}
