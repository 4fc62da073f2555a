package dircachededup

import "fmt"

// ConfigurationError reports a missing, unreadable or invalid run
// configuration. It is the only error that stops a run.
type ConfigurationError struct {
	Path string
	Err  error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration %s: %v", e.Path, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// IndexCorruptionError reports a sidecar that exists but could not be read
// or parsed. The directory is indexed from scratch.
type IndexCorruptionError struct {
	Dir string
	Err error
}

func (e *IndexCorruptionError) Error() string {
	return fmt.Sprintf("index for %s unusable, starting fresh: %v", e.Dir, e.Err)
}

func (e *IndexCorruptionError) Unwrap() error { return e.Err }

// FileAccessError reports a per-file stat or read failure during indexing.
// The file is skipped for the current pass.
type FileAccessError struct {
	Path string
	Op   string // "stat" or "hash"
	Err  error
}

func (e *FileAccessError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileAccessError) Unwrap() error { return e.Err }

// DeletionError reports a duplicate that could not be removed. The operator
// has to deal with it by hand.
type DeletionError struct {
	Path   string
	KeptAs string
	Err    error
}

func (e *DeletionError) Error() string {
	return fmt.Sprintf("remove %s (duplicate of %s): %v", e.Path, e.KeptAs, e.Err)
}

func (e *DeletionError) Unwrap() error { return e.Err }

// DirectoryError reports a failure affecting a whole directory: it could not
// be enumerated or its sidecar could not be written.
type DirectoryError struct {
	Dir string
	Op  string // "read" or "save"
	Err error
}

func (e *DirectoryError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Dir, e.Err)
}

func (e *DirectoryError) Unwrap() error { return e.Err }
