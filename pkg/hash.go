package dircachededup

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"hash"
	"hash/crc64"
	"hash/fnv"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
)

// Digester produces the 64-bit fingerprint hash used to identify file content.
// Indexing and reconciliation only ever see the uint64 result, so a stronger
// digest can be swapped in here without touching either.
type Digester interface {
	Name() string
	New() hash.Hash64
}

// DigestAlgorithm represents a digest algorithm configuration
type DigestAlgorithm struct {
	name    string
	TypeID  uint16
	NewFunc func() hash.Hash64
}

// Name returns the configured name of the algorithm
func (da *DigestAlgorithm) Name() string {
	return da.name
}

// New returns a fresh hasher
func (da *DigestAlgorithm) New() hash.Hash64 {
	return da.NewFunc()
}

var crc64Table = crc64.MakeTable(crc64.ECMA)

// GetDigestAlgorithm returns the digest algorithm configuration for the given name
func GetDigestAlgorithm(name string) (*DigestAlgorithm, error) {
	typeID, ok := DigestTypeFromName(name)
	if !ok {
		return nil, fmt.Errorf("unsupported digest algorithm: %s", name)
	}
	return GetDigestAlgorithmByType(typeID)
}

// GetDigestAlgorithmByType returns the digest algorithm configuration for the given type ID
func GetDigestAlgorithmByType(typeID uint16) (*DigestAlgorithm, error) {
	switch typeID {
	case DigestXXHash64:
		return &DigestAlgorithm{
			name:    DigestTypeName(DigestXXHash64),
			TypeID:  DigestXXHash64,
			NewFunc: func() hash.Hash64 { return xxhash.New() },
		}, nil
	case DigestFNV64a:
		return &DigestAlgorithm{
			name:    DigestTypeName(DigestFNV64a),
			TypeID:  DigestFNV64a,
			NewFunc: func() hash.Hash64 { return fnv.New64a() },
		}, nil
	case DigestCRC64:
		return &DigestAlgorithm{
			name:    DigestTypeName(DigestCRC64),
			TypeID:  DigestCRC64,
			NewFunc: func() hash.Hash64 { return crc64.New(crc64Table) },
		}, nil
	case DigestSHA256:
		return &DigestAlgorithm{
			name:    DigestTypeName(DigestSHA256),
			TypeID:  DigestSHA256,
			NewFunc: func() hash.Hash64 { return &truncatedHash{Hash: sha256.New()} },
		}, nil
	default:
		return nil, fmt.Errorf("unsupported digest type ID: %d", typeID)
	}
}

// ValidateDigestAlgorithm validates that a digest algorithm is supported
func ValidateDigestAlgorithm(name string) error {
	if _, ok := DigestTypeFromName(name); !ok {
		return fmt.Errorf("unsupported digest algorithm: %s (supported: xxhash64, fnv64a, crc64, sha256)", name)
	}
	return nil
}

// truncatedHash exposes the first 8 bytes of a wider hash as a Hash64
type truncatedHash struct {
	hash.Hash
}

func (th *truncatedHash) Sum64() uint64 {
	return binary.BigEndian.Uint64(th.Hash.Sum(nil)[:8])
}

// FingerprintFile computes the fingerprint of a file's full content, reading
// it in bufferSize chunks. Only the bytes actually read are fed to the hasher,
// so the result does not depend on the chunk size.
func FingerprintFile(filePath string, digester Digester, bufferSize int) (uint64, error) {
	if bufferSize <= 0 {
		bufferSize = 32 * 1024
	}

	file, err := os.Open(filePath)
	if err != nil {
		return 0, fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	hasher := digester.New()
	buffer := make([]byte, bufferSize)

	for {
		n, err := file.Read(buffer)
		if n > 0 {
			hasher.Write(buffer[:n])
		}

		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("failed to read from file %s: %w", filePath, err)
		}
	}

	return hasher.Sum64(), nil
}

// sameContent reports whether two files have byte-identical content
func sameContent(pathA, pathB string, bufferSize int) (bool, error) {
	if bufferSize <= 0 {
		bufferSize = 32 * 1024
	}

	a, err := os.Open(pathA)
	if err != nil {
		return false, fmt.Errorf("failed to open file %s: %w", pathA, err)
	}
	defer a.Close()

	b, err := os.Open(pathB)
	if err != nil {
		return false, fmt.Errorf("failed to open file %s: %w", pathB, err)
	}
	defer b.Close()

	bufA := make([]byte, bufferSize)
	bufB := make([]byte, bufferSize)
	for {
		na, errA := io.ReadFull(a, bufA)
		nb, errB := io.ReadFull(b, bufB)
		if na != nb || !bytes.Equal(bufA[:na], bufB[:nb]) {
			return false, nil
		}

		endA := errA == io.EOF || errA == io.ErrUnexpectedEOF
		endB := errB == io.EOF || errB == io.ErrUnexpectedEOF
		if errA != nil && !endA {
			return false, fmt.Errorf("failed to read from file %s: %w", pathA, errA)
		}
		if errB != nil && !endB {
			return false, fmt.Errorf("failed to read from file %s: %w", pathB, errB)
		}
		if endA || endB {
			return endA && endB, nil
		}
	}
}
