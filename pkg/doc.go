// Package dircachededup removes duplicate files across a set of directories,
// keeping the most recently modified copy of each.
//
// # Core API
//
// Each configured directory carries a sidecar index, results.json, recording
// path, size, modification time and a 64-bit content fingerprint for every
// top-level regular file. DirectoryCache brings one directory's index up to
// date, reusing a stored fingerprint whenever size and modification time are
// unchanged:
//
//	dc := dircachededup.NewDirectoryCache("/srv/photos", nil)
//	idx, err := dc.Update(report)
//
// Reconcile compares the indices of all directories and deletes every file
// whose fingerprint was already seen, except the newest:
//
//	result := dircachededup.Reconcile(indices, opts, report)
//
// Run ties both together the way the dcdedup command does: index all
// directories, reconcile, then index again so the sidecars reflect the
// deletions.
//
//	cfg, err := dircachededup.LoadConfig("config.json")
//	report, err := dircachededup.Run(cfg)
//	report.WriteSummary(os.Stderr)
//
// # Fingerprints
//
// The default fingerprint is xxHash64, chosen for speed. It is not
// cryptographic: two different files can share a fingerprint, and if they
// also share a size the older one is deleted as a duplicate. Set
// verify_content to byte-compare before every deletion, or choose the sha256
// digest to make deliberate collisions impractical. The probability of an
// accidental collision among n files is roughly n²/2⁶⁵.
//
// # Errors
//
// Only a bad configuration stops a run (ConfigurationError). Unreadable
// files (FileAccessError), unusable sidecars (IndexCorruptionError), failed
// deletions (DeletionError) and unreadable directories (DirectoryError) are
// logged as they happen and collected in the RunReport.
package dircachededup
