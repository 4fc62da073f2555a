package dircachededup

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

func TestDirectoryIndex_PutGetRemove(t *testing.T) {
	idx := NewDirectoryIndex("/data")

	idx.Put(FileRecord{Path: "/data/b", Size: 2, Date: 20, Hash: 0xb})
	idx.Put(FileRecord{Path: "/data/a", Size: 1, Date: 10, Hash: 0xa})
	idx.Put(FileRecord{Path: "/data/c", Size: 3, Date: 30, Hash: 0xc})

	if idx.Len() != 3 {
		t.Fatalf("Expected 3 records, got %d", idx.Len())
	}

	records := idx.Records()
	for i, want := range []string{"/data/a", "/data/b", "/data/c"} {
		if records[i].Path != want {
			t.Errorf("records[%d]: expected %s, got %s", i, want, records[i].Path)
		}
	}

	// Replacing keeps paths unique
	idx.Put(FileRecord{Path: "/data/b", Size: 5, Date: 50, Hash: 0xbb})
	if idx.Len() != 3 {
		t.Errorf("Expected 3 records after replace, got %d", idx.Len())
	}
	rec := idx.Get("/data/b")
	if rec == nil || rec.Hash != 0xbb || rec.Size != 5 {
		t.Errorf("Expected replaced record, got %+v", rec)
	}
	if rec.Name() != "b" {
		t.Errorf("Expected name b, got %s", rec.Name())
	}

	if !idx.Remove("/data/a") {
		t.Error("Expected Remove to report an existing record")
	}
	if idx.Remove("/data/a") {
		t.Error("Expected second Remove to report nothing removed")
	}
	if idx.Get("/data/a") != nil {
		t.Error("Expected removed record to be gone")
	}
}

func TestDirectoryIndex_UnseenTracking(t *testing.T) {
	idx := NewDirectoryIndex("/data")
	idx.put(FileRecord{Path: "/data/a", Hash: 1}, StoredContext)
	idx.put(FileRecord{Path: "/data/b", Hash: 2}, StoredContext)
	idx.put(FileRecord{Path: "/data/c", Hash: 3}, StoredContext)

	idx.markSeen("/data/a", CachedContext)
	idx.markSeen("/data/c", SkippedContext)

	unseen := idx.unseen()
	if len(unseen) != 1 || unseen[0] != "/data/b" {
		t.Errorf("Expected only /data/b unseen, got %v", unseen)
	}

	stored, cached, hashed := idx.records.Stats()
	if stored != 1 || cached != 1 || hashed != 0 {
		t.Errorf("Expected stats 1/1/0, got %d/%d/%d", stored, cached, hashed)
	}

	idx.markAllStored()
	if got := len(idx.unseen()); got != 3 {
		t.Errorf("Expected all 3 unseen after reset, got %d", got)
	}
}

func TestDirectoryIndex_ForEachStops(t *testing.T) {
	idx := NewDirectoryIndex("/data")
	for _, name := range []string{"a", "b", "c", "d"} {
		idx.Put(FileRecord{Path: "/data/" + name})
	}

	visited := 0
	idx.ForEach(func(rec *FileRecord) bool {
		visited++
		return visited < 2
	})
	if visited != 2 {
		t.Errorf("Expected iteration to stop after 2 records, visited %d", visited)
	}
}

func TestLoadIndex_Missing(t *testing.T) {
	dir := t.TempDir()

	idx, err := LoadIndex(dir)
	if err != nil {
		t.Fatalf("Expected no error for missing sidecar, got %v", err)
	}
	if idx == nil || idx.Len() != 0 {
		t.Errorf("Expected empty index, got %v", idx)
	}
	if idx.Dir != dir {
		t.Errorf("Expected index dir %s, got %s", dir, idx.Dir)
	}
}

func TestSaveLoadIndex_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	idx := NewDirectoryIndex(dir)
	want := []FileRecord{
		{Path: filepath.Join(dir, "alpha.txt"), Size: 3, Date: 100, Hash: 0x44bc2cf5ad770999},
		{Path: filepath.Join(dir, "beta.txt"), Size: 0, Date: 0, Hash: 0},
		{Path: filepath.Join(dir, "gamma \"quoted\".txt"), Size: 1 << 40, Date: 1700000000, Hash: 0xffffffffffffffff},
	}
	for _, rec := range want {
		idx.Put(rec)
	}

	if err := SaveIndex(dir, idx); err != nil {
		t.Fatalf("Failed to save index: %v", err)
	}

	loaded, err := LoadIndex(dir)
	if err != nil {
		t.Fatalf("Failed to load index: %v", err)
	}

	got := loaded.Records()
	if len(got) != len(want) {
		t.Fatalf("Expected %d records, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("records[%d]: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestSaveIndex_Format(t *testing.T) {
	dir := t.TempDir()

	if err := SaveIndex(dir, NewDirectoryIndex(dir)); err != nil {
		t.Fatalf("Failed to save empty index: %v", err)
	}
	if got := readSidecar(t, dir); got != "{\n  \"files\": []\n}\n" {
		t.Errorf("Unexpected empty sidecar:\n%s", got)
	}

	idx := NewDirectoryIndex(dir)
	idx.Put(FileRecord{Path: "/x/b", Size: 2, Date: 200, Hash: 7})
	idx.Put(FileRecord{Path: "/x/a", Size: 1, Date: 100, Hash: 5})
	if err := SaveIndex(dir, idx); err != nil {
		t.Fatalf("Failed to save index: %v", err)
	}

	want := "{\n  \"files\": [\n" +
		"    {\"path\":\"/x/a\",\"size\":1,\"date\":100,\"hash\":5},\n" +
		"    {\"path\":\"/x/b\",\"size\":2,\"date\":200,\"hash\":7}\n" +
		"  ]\n}\n"
	if got := readSidecar(t, dir); got != want {
		t.Errorf("Unexpected sidecar:\nwant:\n%s\ngot:\n%s", want, got)
	}
}

func TestSaveIndex_Deterministic(t *testing.T) {
	dir := t.TempDir()

	build := func(order []string) *DirectoryIndex {
		idx := NewDirectoryIndex(dir)
		for i, name := range order {
			idx.Put(FileRecord{Path: filepath.Join(dir, name), Size: uint64(len(name)), Date: uint64(i), Hash: uint64(len(name)) * 31})
		}
		return idx
	}

	first := build([]string{"a", "bb", "ccc"})
	if err := SaveIndex(dir, first); err != nil {
		t.Fatalf("Failed to save index: %v", err)
	}
	before := readSidecar(t, dir)

	loaded, err := LoadIndex(dir)
	if err != nil {
		t.Fatalf("Failed to load index: %v", err)
	}
	if err := SaveIndex(dir, loaded); err != nil {
		t.Fatalf("Failed to re-save index: %v", err)
	}
	if after := readSidecar(t, dir); after != before {
		t.Errorf("Re-saving a loaded index changed the sidecar:\nbefore:\n%s\nafter:\n%s", before, after)
	}
}

func TestSaveIndex_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	idx := NewDirectoryIndex(dir)
	idx.Put(FileRecord{Path: filepath.Join(dir, "f"), Size: 1, Date: 1, Hash: 1})

	for i := 0; i < 3; i++ {
		if err := SaveIndex(dir, idx); err != nil {
			t.Fatalf("Failed to save index: %v", err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Failed to read dir: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != SidecarName {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("Expected only %s, got %v", SidecarName, names)
	}
}

func TestSaveIndex_ManyRecords(t *testing.T) {
	dir := t.TempDir()
	idx := NewDirectoryIndex(dir)

	// More pieces than a single writev call accepts
	for i := 0; i < iovMax; i++ {
		idx.Put(FileRecord{Path: filepath.Join(dir, strings.Repeat("x", i%7+1)+string(rune('a'+i%26))+"-"+strconv.Itoa(i)), Size: uint64(i), Date: uint64(i), Hash: uint64(i)})
	}
	if err := SaveIndex(dir, idx); err != nil {
		t.Fatalf("Failed to save index: %v", err)
	}

	loaded, err := LoadIndex(dir)
	if err != nil {
		t.Fatalf("Failed to load index: %v", err)
	}
	if loaded.Len() != idx.Len() {
		t.Errorf("Expected %d records, got %d", idx.Len(), loaded.Len())
	}
}

func TestLoadIndex_Corrupt(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "this is not json"},
		{"truncated", "{\n  \"files\": [\n    {\"path\":\"/x/a\""},
		{"missing files", "{}"},
		{"record missing hash", `{"files":[{"path":"/x/a","size":1,"date":1}]}`},
		{"negative size", `{"files":[{"path":"/x/a","size":-1,"date":1,"hash":1}]}`},
		{"wrong type", `{"files":"nope"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if err := os.WriteFile(SidecarPath(dir), []byte(tt.content), 0644); err != nil {
				t.Fatalf("Failed to write sidecar: %v", err)
			}

			idx, err := LoadIndex(dir)
			if err == nil {
				t.Fatal("Expected error for corrupt sidecar")
			}
			var corrupt *IndexCorruptionError
			if !errors.As(err, &corrupt) {
				t.Errorf("Expected *IndexCorruptionError, got %T: %v", err, err)
			} else if corrupt.Dir != dir {
				t.Errorf("Expected error for %s, got %s", dir, corrupt.Dir)
			}
			if idx == nil || idx.Len() != 0 {
				t.Errorf("Expected usable empty index, got %v", idx)
			}
		})
	}
}

func TestIsSidecarName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{SidecarName, true},
		{".results-123-456.tmp", true},
		{"results.json.bak", false},
		{".results-123", false},
		{"photo.jpg", false},
	}
	for _, tt := range tests {
		if got := isSidecarName(tt.name); got != tt.want {
			t.Errorf("isSidecarName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}

	generated := filepath.Base(generateTempSidecarName("/tmp"))
	if !isSidecarName(generated) {
		t.Errorf("Generated temp name %s not recognised as sidecar", generated)
	}
}
