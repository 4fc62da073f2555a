package dircachededup

import "strings"

// Context constants for skiplist operations
const (
	StoredContext  = "stored"  // loaded from the sidecar, not yet seen on disk
	CachedContext  = "cached"  // seen on disk, size and mtime unchanged
	HashedContext  = "hashed"  // seen on disk, fingerprint (re)computed
	SkippedContext = "skipped" // seen on disk but unreadable this pass, record kept as is
)

// File constants
const (
	SidecarName    = "results.json"
	SidecarTemp    = ".results-%d-%d.tmp"
	SidecarTempPfx = ".results-"
	DefaultConfig  = "config.json"
)

// Digest type constants
const (
	DigestXXHash64 uint16 = 1 // xxHash64, default
	DigestFNV64a   uint16 = 2 // FNV-1a 64
	DigestCRC64    uint16 = 3 // CRC-64 (ECMA)
	DigestSHA256   uint16 = 4 // SHA-256 truncated to 64 bits
)

// Defaults
const (
	DefaultDigest     = "xxhash64"
	DefaultHashBuffer = "1M"
	MaxVerboseLevel   = 3
)

// DigestTypeName returns the human-readable name for a digest type
func DigestTypeName(digestType uint16) string {
	switch digestType {
	case DigestXXHash64:
		return "xxhash64"
	case DigestFNV64a:
		return "fnv64a"
	case DigestCRC64:
		return "crc64"
	case DigestSHA256:
		return "sha256"
	default:
		return "unknown"
	}
}

// DigestTypeFromName returns the digest type constant from a name (case-insensitive)
func DigestTypeFromName(name string) (uint16, bool) {
	switch strings.ToLower(name) {
	case "xxhash64", "xxhash":
		return DigestXXHash64, true
	case "fnv64a", "fnv":
		return DigestFNV64a, true
	case "crc64":
		return DigestCRC64, true
	case "sha256":
		return DigestSHA256, true
	default:
		return 0, false
	}
}
