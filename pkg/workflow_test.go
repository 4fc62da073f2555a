package dircachededup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func TestRunFile_EndToEnd(t *testing.T) {
	dirA, dirB := t.TempDir(), t.TempDir()
	f1 := writeTestFile(t, dirA, "f1", "abc", 100)
	f2 := writeTestFile(t, dirB, "f2", "abc", 200)
	unique := writeTestFile(t, dirA, "unique", "only here", 150)

	report, err := RunFile(configFor(t, []string{dirA, dirB}, nil))
	if err != nil {
		t.Fatalf("RunFile failed: %v", err)
	}

	if fileExists(f1) {
		t.Error("Expected f1 deleted")
	}
	if !fileExists(f2) || !fileExists(unique) {
		t.Error("Expected f2 and unique to survive")
	}
	if len(report.Deleted) != 1 || report.Deleted[0] != f1 {
		t.Errorf("Expected report to list %s deleted, got %v", f1, report.Deleted)
	}
	if report.HasErrors() {
		t.Errorf("Unexpected errors: %d", report.TotalErrors())
	}

	digester := defaultDigester(t)
	wantA := fmt.Sprintf("{\n  \"files\": [\n    {\"path\":%q,\"size\":9,\"date\":150,\"hash\":%d}\n  ]\n}\n",
		unique, fingerprintString("only here", digester))
	if got := readSidecar(t, dirA); got != wantA {
		t.Errorf("Unexpected sidecar in A:\nwant:\n%s\ngot:\n%s", wantA, got)
	}
	wantB := fmt.Sprintf("{\n  \"files\": [\n    {\"path\":%q,\"size\":3,\"date\":200,\"hash\":%d}\n  ]\n}\n",
		f2, fingerprintString("abc", digester))
	if got := readSidecar(t, dirB); got != wantB {
		t.Errorf("Unexpected sidecar in B:\nwant:\n%s\ngot:\n%s", wantB, got)
	}
}

func TestRun_Idempotent(t *testing.T) {
	dirA, dirB := t.TempDir(), t.TempDir()
	writeTestFile(t, dirA, "one", "1", 100)
	writeTestFile(t, dirA, "two", "22", 100)
	writeTestFile(t, dirB, "one-copy", "1", 300)
	writeTestFile(t, dirB, "three", "333", 100)

	cfg, err := LoadConfig(configFor(t, []string{dirA, dirB}, nil))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if _, err := Run(cfg); err != nil {
		t.Fatalf("First run failed: %v", err)
	}
	firstA, firstB := readSidecar(t, dirA), readSidecar(t, dirB)

	report, err := Run(cfg)
	if err != nil {
		t.Fatalf("Second run failed: %v", err)
	}
	if len(report.Deleted) != 0 {
		t.Errorf("Second run deleted %v", report.Deleted)
	}
	if report.FilesHashed != 0 {
		t.Errorf("Second run hashed %d files, expected all cached", report.FilesHashed)
	}
	if readSidecar(t, dirA) != firstA || readSidecar(t, dirB) != firstB {
		t.Error("Second run changed a sidecar")
	}
}

func TestRun_DryRunLeavesFiles(t *testing.T) {
	dirA, dirB := t.TempDir(), t.TempDir()
	f1 := writeTestFile(t, dirA, "f1", "abc", 100)
	writeTestFile(t, dirB, "f2", "abc", 200)

	cfg, err := LoadConfig(configFor(t, []string{dirA, dirB}, map[string]interface{}{"dry_run": true}))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	report, err := Run(cfg)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !fileExists(f1) {
		t.Error("Dry run deleted f1")
	}
	if len(report.WouldDelete) != 1 || report.WouldDelete[0] != f1 {
		t.Errorf("Expected WouldDelete [%s], got %v", f1, report.WouldDelete)
	}

	idx, err := LoadIndex(dirA)
	if err != nil {
		t.Fatalf("Failed to load sidecar: %v", err)
	}
	if idx.Get(f1) == nil {
		t.Error("Dry run must keep f1 indexed")
	}
}

func TestRun_UnreadableDirectoryContinues(t *testing.T) {
	good := t.TempDir()
	missing := filepath.Join(t.TempDir(), "gone")
	path := writeTestFile(t, good, "a", "a", 100)

	cfg, err := LoadConfig(configFor(t, []string{missing, good}, nil))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	report, err := Run(cfg)
	if err != nil {
		t.Fatalf("Run must not fail on an unreadable directory: %v", err)
	}
	if len(report.DirectoryErrors) == 0 {
		t.Error("Expected directory error in report")
	}
	for _, de := range report.DirectoryErrors {
		if de.Dir != missing {
			t.Errorf("Unexpected directory error for %s", de.Dir)
		}
	}
	if !fileExists(path) {
		t.Error("File in readable directory must survive")
	}
	if _, err := LoadIndex(good); err != nil {
		t.Errorf("Readable directory should have a valid sidecar: %v", err)
	}
}

func TestRun_BadDigest(t *testing.T) {
	cfg := &Config{Dirs: []string{t.TempDir()}, Digest: "md5", HashBuffer: "1M"}

	_, err := Run(cfg)
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Expected *ConfigurationError, got %T: %v", err, err)
	}
}

func TestRunFile_MissingConfig(t *testing.T) {
	_, err := RunFile(filepath.Join(t.TempDir(), "config.json"))
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Expected *ConfigurationError, got %T: %v", err, err)
	}
}

func TestRun_EmptyDirList(t *testing.T) {
	cfg, err := LoadConfig(configFor(t, []string{}, nil))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	report, err := Run(cfg)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.FilesHashed != 0 || len(report.Deleted) != 0 {
		t.Error("Expected nothing to happen with no directories")
	}
}

func TestRun_TwoDirectoryScenario(t *testing.T) {
	root := t.TempDir()
	dirA, dirB := filepath.Join(root, "A"), filepath.Join(root, "B")
	for _, dir := range []string{dirA, dirB} {
		if err := os.Mkdir(dir, 0755); err != nil {
			t.Fatalf("Failed to create %s: %v", dir, err)
		}
	}
	f1 := writeTestFile(t, dirA, "f1", "abc", 100)
	f2 := writeTestFile(t, dirB, "f2", "abc", 200)

	if _, err := RunFile(configFor(t, []string{dirA, dirB}, nil)); err != nil {
		t.Fatalf("RunFile failed: %v", err)
	}

	entries, err := os.ReadDir(dirA)
	if err != nil {
		t.Fatalf("Failed to read A: %v", err)
	}
	for _, e := range entries {
		if e.Name() != SidecarName {
			t.Errorf("Expected A to hold only its sidecar, found %s", e.Name())
		}
	}
	if fileExists(f1) {
		t.Error("Expected f1 deleted")
	}

	idxA, err := LoadIndex(dirA)
	if err != nil || idxA.Len() != 0 {
		t.Errorf("Expected empty sidecar in A, got %d records (%v)", idxA.Len(), err)
	}

	idxB, err := LoadIndex(dirB)
	if err != nil {
		t.Fatalf("Failed to load B: %v", err)
	}
	rec := idxB.Get(f2)
	if rec == nil {
		t.Fatal("Expected f2 in B's sidecar")
	}
	if rec.Size != 3 || rec.Date != 200 || rec.Hash != fingerprintString("abc", defaultDigester(t)) {
		t.Errorf("Unexpected record for f2: %+v", rec)
	}
}
