package dircachededup

// Run performs a complete deduplication run over cfg.Dirs:
//
//  1. index every directory (pre-process),
//  2. reconcile fingerprints across all of them, deleting older copies,
//  3. index every directory again (post-process) so the persisted indices
//     reflect the deletions.
//
// Only configuration problems are returned as errors; everything else is
// recorded in the returned report.
func Run(cfg *Config) (*RunReport, error) {
	defer VerboseEnter()()

	opts, err := cfg.ScanOptions()
	if err != nil {
		return nil, &ConfigurationError{Path: cfg.Path(), Err: err}
	}

	report := NewRunReport()

	Progressf("start pre-process")
	indices := indexAll(cfg.Dirs, opts, report)

	result := Reconcile(indices, cfg.ReconcileOptions(), report)
	VerboseLog(1, "Reconciled %d fingerprint(s), %d duplicate(s) retired", result.Kept.Len(), len(result.Deleted))

	Progressf("start post-process")
	indexAll(cfg.Dirs, opts, report)

	return report, nil
}

// RunFile loads the configuration at configPath, applies its logging
// settings and runs it
func RunFile(configPath string) (*RunReport, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	ApplyLogging(cfg)
	return Run(cfg)
}

// indexAll updates every directory in order. A directory that cannot be read
// contributes a nil index, which reconciliation skips.
func indexAll(dirs []string, opts *ScanOptions, report *RunReport) []*DirectoryIndex {
	indices := make([]*DirectoryIndex, 0, len(dirs))
	for _, dir := range dirs {
		dc := NewDirectoryCache(dir, opts)
		idx, _ := dc.Update(report)
		indices = append(indices, idx)
	}
	return indices
}
