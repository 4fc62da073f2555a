package dircachededup

import (
	"fmt"
	"os"
)

// ScanOptions controls how a directory is indexed
type ScanOptions struct {
	Digester   Digester       // Fingerprint algorithm (default xxhash64)
	BufferSize int            // Read chunk size in bytes (default 1M)
	Ignore     *IgnoreManager // Extra file names to skip
}

// ScanOptions builds indexing options from the configuration
func (c *Config) ScanOptions() (*ScanOptions, error) {
	algorithm, err := c.DigestAlgorithm()
	if err != nil {
		return nil, err
	}
	bufferSize, err := c.HashBufferSize()
	if err != nil {
		return nil, fmt.Errorf("invalid hash_buffer: %w", err)
	}
	ignore, err := NewIgnoreManager(c.Exclude)
	if err != nil {
		return nil, err
	}
	return &ScanOptions{
		Digester:   algorithm,
		BufferSize: bufferSize,
		Ignore:     ignore,
	}, nil
}

// DirectoryCache manages the fingerprint index for one directory
type DirectoryCache struct {
	RootDir       string
	IndexFile     string
	digester      Digester
	bufferSize    int
	ignoreManager *IgnoreManager
}

// NewDirectoryCache creates a new directory cache instance for rootDir.
// A nil opts, or zero fields within it, select the defaults.
func NewDirectoryCache(rootDir string, opts *ScanOptions) *DirectoryCache {
	dc := &DirectoryCache{
		RootDir:   rootDir,
		IndexFile: SidecarPath(rootDir),
	}

	if opts != nil {
		dc.digester = opts.Digester
		dc.bufferSize = opts.BufferSize
		dc.ignoreManager = opts.Ignore
	}

	if dc.digester == nil {
		algorithm, err := GetDigestAlgorithm(DefaultDigest)
		if err != nil {
			// Built-in algorithm, cannot fail
			panic(err)
		}
		dc.digester = algorithm
	}
	if dc.bufferSize <= 0 {
		size, _ := ParseHumanSize(DefaultHashBuffer)
		dc.bufferSize = size
	}

	return dc
}

// Digester returns the fingerprint algorithm in use
func (dc *DirectoryCache) Digester() Digester {
	return dc.digester
}

// Load returns the persisted index for the directory without scanning
func (dc *DirectoryCache) Load() (*DirectoryIndex, error) {
	return LoadIndex(dc.RootDir)
}

// Stats returns the number of indexed files and their total size, as persisted
func (dc *DirectoryCache) Stats() (int, uint64, error) {
	if _, err := os.Stat(dc.IndexFile); err != nil {
		return 0, 0, err
	}

	idx, err := dc.Load()
	if err != nil {
		return 0, 0, err
	}

	var totalSize uint64
	idx.ForEach(func(rec *FileRecord) bool {
		totalSize += rec.Size
		return true
	})
	return idx.Len(), totalSize, nil
}
