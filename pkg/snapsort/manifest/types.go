package manifest

import (
	"crypto/md5"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"strings"
)

// Algorithm identifies the digest algorithm of a manifest.
type Algorithm int

// Supported digest algorithms.
const (
	MD5 Algorithm = iota
	SHA256
	SHA512
)

// String returns the lowercase name of the algorithm.
func (a Algorithm) String() string {
	switch a {
	case MD5:
		return "md5"
	case SHA256:
		return "sha256"
	case SHA512:
		return "sha512"
	default:
		return "unknown"
	}
}

// Sum returns the lowercase hex digest of data under the algorithm.
func (a Algorithm) Sum(data []byte) string {
	switch a {
	case MD5:
		sum := md5.Sum(data)
		return hex.EncodeToString(sum[:])
	case SHA512:
		sum := sha512.Sum512(data)
		return hex.EncodeToString(sum[:])
	default:
		sum := sha256.Sum256(data)
		return hex.EncodeToString(sum[:])
	}
}

// ParseAlgorithm parses an algorithm name.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(s) {
	case "md5":
		return MD5, nil
	case "sha256":
		return SHA256, nil
	case "sha512":
		return SHA512, nil
	default:
		return SHA256, fmt.Errorf("unknown digest algorithm: %s", s)
	}
}

// DetectAlgorithm inspects a manifest filename for an algorithm marker.
// Markers are checked in order (md5, sha256, sha512); the first substring
// match wins. The boolean reports whether a marker was recognized; when it
// is false the returned algorithm is the SHA256 default.
func DetectAlgorithm(filename string) (Algorithm, bool) {
	switch {
	case strings.Contains(filename, "md5"):
		return MD5, true
	case strings.Contains(filename, "sha256"):
		return SHA256, true
	case strings.Contains(filename, "sha512"):
		return SHA512, true
	default:
		return SHA256, false
	}
}

// Manifest holds the expected digests of files considered already archived,
// together with the algorithm that produced them. A Manifest is immutable
// after Load and safe to share across an entire copy operation.
type Manifest struct {
	Checksums []string
	Algorithm Algorithm
}
