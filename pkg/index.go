package dircachededup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/google/vectorio"
	"golang.org/x/sys/unix"
)

// iovMax bounds the iovecs handed to a single writev call
const iovMax = 1024

// sidecarFile is the on-disk shape of results.json
type sidecarFile struct {
	Files []FileRecord `json:"files"`
}

// SidecarPath returns the path of the sidecar index for dir
func SidecarPath(dir string) string {
	return filepath.Join(dir, SidecarName)
}

// LoadIndex loads the persisted index for dir.
// A missing sidecar yields an empty index and no error. A sidecar that cannot
// be read, parsed or validated yields an empty index together with an
// *IndexCorruptionError; the index is always usable.
func LoadIndex(dir string) (*DirectoryIndex, error) {
	defer VerboseEnter()()
	idx := NewDirectoryIndex(dir)
	sidecar := SidecarPath(dir)

	data, err := os.ReadFile(sidecar)
	if err != nil {
		if os.IsNotExist(err) {
			VerboseLog(2, "No index in %s, starting empty", dir)
			return idx, nil
		}
		return idx, &IndexCorruptionError{Dir: dir, Err: fmt.Errorf("failed to read %s: %w", sidecar, err)}
	}

	if err := validateJSON(data, SidecarSchema); err != nil {
		return idx, &IndexCorruptionError{Dir: dir, Err: fmt.Errorf("%s %w", sidecar, err)}
	}

	var parsed sidecarFile
	if err := json.Unmarshal(data, &parsed); err != nil {
		return idx, &IndexCorruptionError{Dir: dir, Err: fmt.Errorf("failed to parse %s: %w", sidecar, err)}
	}

	for _, rec := range parsed.Files {
		idx.put(rec, StoredContext)
	}

	if IsDebugEnabled("index") {
		VerboseLog(3, "LoadIndex: %s has %d records", dir, idx.Len())
	}
	return idx, nil
}

// SaveIndex atomically replaces the sidecar for dir with the contents of idx
func SaveIndex(dir string, idx *DirectoryIndex) error {
	defer VerboseEnter()()

	buffers, err := renderSidecar(idx)
	if err != nil {
		return err
	}

	tempPath := generateTempSidecarName(dir)
	if err := writeBuffersWithVectorIO(tempPath, buffers); err != nil {
		os.Remove(tempPath)
		return err
	}

	// Atomic replace
	if err := os.Rename(tempPath, SidecarPath(dir)); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename index file: %w", err)
	}

	if err := syncDir(dir); err != nil {
		VerboseLog(1, "Failed to sync directory %s: %v", dir, err)
	}
	return nil
}

// renderSidecar renders the index as indented JSON, one buffer per piece,
// so identical indices always produce identical bytes
func renderSidecar(idx *DirectoryIndex) ([][]byte, error) {
	records := idx.Records()
	if len(records) == 0 {
		return [][]byte{[]byte("{\n  \"files\": []\n}\n")}, nil
	}

	buffers := make([][]byte, 0, 2*len(records)+2)
	buffers = append(buffers, []byte("{\n  \"files\": ["))
	for i := range records {
		encoded, err := json.Marshal(&records[i])
		if err != nil {
			return nil, fmt.Errorf("failed to encode record %s: %w", records[i].Path, err)
		}
		if i == 0 {
			buffers = append(buffers, []byte("\n    "))
		} else {
			buffers = append(buffers, []byte(",\n    "))
		}
		buffers = append(buffers, encoded)
	}
	buffers = append(buffers, []byte("\n  ]\n}\n"))
	return buffers, nil
}

// writeBuffersWithVectorIO writes buffers to a new file with writev and syncs it
func writeBuffersWithVectorIO(outputPath string, buffers [][]byte) error {
	file, err := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create temp index file %s: %w", outputPath, err)
	}
	defer file.Close()

	iovecs := make([]syscall.Iovec, 0, len(buffers))
	expected := 0
	for _, buf := range buffers {
		if len(buf) == 0 {
			continue
		}
		iovec := syscall.Iovec{Base: &buf[0]}
		iovec.SetLen(len(buf))
		iovecs = append(iovecs, iovec)
		expected += len(buf)
	}

	totalWritten := 0
	for offset := 0; offset < len(iovecs); offset += iovMax {
		end := offset + iovMax
		if end > len(iovecs) {
			end = len(iovecs)
		}

		nw, err := vectorio.WritevRaw(uintptr(file.Fd()), iovecs[offset:end])
		if err != nil {
			return fmt.Errorf("failed to write index chunk with vectorio: %w", err)
		}
		totalWritten += nw
	}

	if totalWritten != expected {
		return fmt.Errorf("index write incomplete: wrote %d bytes, expected %d", totalWritten, expected)
	}

	if err := file.Sync(); err != nil {
		return fmt.Errorf("failed to sync temp index: %w", err)
	}
	return nil
}

// syncDir flushes the directory entry so the rename survives a crash
func syncDir(dir string) error {
	fd, err := unix.Open(dir, unix.O_RDONLY|unix.O_DIRECTORY|unix.O_CLOEXEC, 0)
	if err != nil {
		return err
	}
	defer unix.Close(fd)
	return unix.Fsync(fd)
}
