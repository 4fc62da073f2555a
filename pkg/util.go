package dircachededup

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// generateTempSidecarName generates a temporary sidecar filename with PID and timestamp
func generateTempSidecarName(dir string) string {
	pid := os.Getpid()
	timestamp := time.Now().UnixNano()
	return filepath.Join(dir, fmt.Sprintf(SidecarTemp, pid, timestamp))
}

// isSidecarName reports whether a directory entry name belongs to the index
// itself rather than to the files being indexed
func isSidecarName(name string) bool {
	if name == SidecarName {
		return true
	}
	return strings.HasPrefix(name, SidecarTempPfx) && strings.HasSuffix(name, ".tmp")
}

// epochSeconds converts a Unix seconds value to the stored unsigned form.
// Timestamps before 1970 clamp to zero.
func epochSeconds(sec int64) uint64 {
	if sec < 0 {
		return 0
	}
	return uint64(sec)
}

// ParseHumanSize parses a whole number of bytes with an optional binary
// K, M or G suffix, e.g. "512", "64k", "1M" or "2MB"
func ParseHumanSize(sizeStr string) (int, error) {
	s := strings.TrimSuffix(strings.ToUpper(strings.TrimSpace(sizeStr)), "B")

	shift := 0
	if n := len(s); n > 0 {
		switch s[n-1] {
		case 'K':
			shift = 10
		case 'M':
			shift = 20
		case 'G':
			shift = 30
		}
		if shift > 0 {
			s = s[:n-1]
		}
	}

	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("invalid size %q", sizeStr)
	}
	if n > math.MaxInt>>shift {
		return 0, fmt.Errorf("size too large: %q", sizeStr)
	}
	return int(n << shift), nil
}
