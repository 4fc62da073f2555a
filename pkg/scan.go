package dircachededup

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// fileStat is the subset of lstat(2) the index cares about
type fileStat struct {
	Size    uint64
	Date    uint64
	Regular bool
}

// statFile lstats path without following symlinks
func statFile(path string) (fileStat, error) {
	var st unix.Stat_t
	if err := unix.Lstat(path, &st); err != nil {
		return fileStat{}, &os.PathError{Op: "lstat", Path: path, Err: err}
	}
	return fileStat{
		Size:    uint64(st.Size),
		Date:    epochSeconds(int64(st.Mtim.Sec)),
		Regular: st.Mode&unix.S_IFMT == unix.S_IFREG,
	}, nil
}

// isGone reports whether a stat error means the path does not exist
func isGone(err error) bool {
	return errors.Is(err, fs.ErrNotExist) || errors.Is(err, unix.ENOTDIR)
}

// Update reconciles the directory's files with its stored index and persists
// the result. Per-file failures are recorded in report and never abort the
// scan. The returned index is nil only when the directory itself could not be
// read; a failed save still returns the in-memory index alongside the error.
func (dc *DirectoryCache) Update(report *RunReport) (*DirectoryIndex, error) {
	defer VerboseEnter()()
	if report == nil {
		report = NewRunReport()
	}

	idx, err := LoadIndex(dc.RootDir)
	if err != nil {
		var corrupt *IndexCorruptionError
		if errors.As(err, &corrupt) {
			report.addIndexWarning(corrupt)
		} else {
			report.addIndexWarning(&IndexCorruptionError{Dir: dc.RootDir, Err: err})
		}
	}

	candidates, err := dc.listCandidates()
	if err != nil {
		dirErr := &DirectoryError{Dir: dc.RootDir, Op: "read", Err: err}
		report.addDirectoryError(dirErr)
		return nil, dirErr
	}

	idx.markAllStored()

	total := len(candidates)
	for i, name := range candidates {
		Progressf("Processing %d of %d in %s", i+1, total, dc.RootDir)
		dc.checkFile(idx, filepath.Join(dc.RootDir, name), report)
	}

	dc.pruneUnseen(idx, report)

	if IsDebugEnabled("scan") {
		stored, cached, hashed := idx.records.Stats()
		VerboseLog(3, "Update: %s stored=%d cached=%d hashed=%d", dc.RootDir, stored, cached, hashed)
	}

	if err := SaveIndex(dc.RootDir, idx); err != nil {
		dirErr := &DirectoryError{Dir: dc.RootDir, Op: "save", Err: err}
		report.addDirectoryError(dirErr)
		return idx, dirErr
	}

	return idx, nil
}

// listCandidates returns the names of the directory's immediate regular
// files in enumeration order, minus the sidecar and excluded names
func (dc *DirectoryCache) listCandidates() ([]string, error) {
	entries, err := os.ReadDir(dc.RootDir)
	if err != nil {
		return nil, err
	}
	if patterns := dc.ignoreManager.Patterns(); len(patterns) > 0 {
		VerboseLog(2, "Exclude patterns for %s: %v", dc.RootDir, patterns)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if dc.ignoreManager.ShouldIgnore(entry.Name()) {
			VerboseLog(2, "Ignoring %s", filepath.Join(dc.RootDir, entry.Name()))
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

// checkFile brings the record for one candidate up to date. The stored
// fingerprint is reused when size and mtime are unchanged.
func (dc *DirectoryCache) checkFile(idx *DirectoryIndex, path string, report *RunReport) {
	prior := idx.Get(path)

	st, err := statFile(path)
	if err != nil {
		report.addFileError(&FileAccessError{Path: path, Op: "stat", Err: err})
		if prior != nil && !isGone(err) {
			idx.markSeen(path, SkippedContext)
		}
		return
	}
	if !st.Regular {
		// Replaced since enumeration; leave it to pruning
		return
	}

	if prior != nil && prior.sameMeta(st.Size, st.Date) {
		idx.markSeen(path, CachedContext)
		report.CacheHits++
		return
	}

	hash, err := FingerprintFile(path, dc.digester, dc.bufferSize)
	if err != nil {
		report.addFileError(&FileAccessError{Path: path, Op: "hash", Err: err})
		if prior != nil {
			idx.markSeen(path, SkippedContext)
		}
		return
	}

	if IsDebugEnabled("scan") {
		VerboseLog(3, "checkFile: %s size=%d date=%d hash=%016x", path, st.Size, st.Date, hash)
	}

	idx.put(FileRecord{
		Path: path,
		Size: st.Size,
		Date: st.Date,
		Hash: hash,
	}, HashedContext)
	report.FilesHashed++
}

// pruneUnseen drops records that were not observed during this scan. A record
// survives only if its path cannot be checked for a reason other than absence.
func (dc *DirectoryCache) pruneUnseen(idx *DirectoryIndex, report *RunReport) {
	for _, path := range idx.unseen() {
		if _, err := statFile(path); err != nil && !isGone(err) {
			report.addFileError(&FileAccessError{Path: path, Op: "stat", Err: err})
			idx.markSeen(path, SkippedContext)
			continue
		}

		idx.Remove(path)
		report.Pruned++
		VerboseLog(2, "Pruned %s from index", path)
	}
}
