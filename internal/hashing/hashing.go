package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"regexp"
)

var digestPattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

// IsDigest reports whether value has the exact shape of a lowercase hex
// SHA-256 digest.
func IsDigest(value string) bool {
	return digestPattern.MatchString(value)
}

// HashFile computes the SHA-256 digest of the file at path, streaming the
// content so files larger than memory hash correctly. The digest is returned
// as 64 lowercase hex characters.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Verification is the outcome of comparing a destination file to its source.
type Verification struct {
	Verified        bool
	SourceHash      string
	DestinationHash string
}

// VerifyCopy compares the file at destPath against sourceOrHash. When
// sourceOrHash already looks like a digest it is used directly and the source
// is never read; otherwise it is treated as a path and hashed.
func VerifyCopy(sourceOrHash, destPath string) (Verification, error) {
	sourceHash := sourceOrHash
	if !IsDigest(sourceOrHash) {
		var err error
		sourceHash, err = HashFile(sourceOrHash)
		if err != nil {
			return Verification{}, fmt.Errorf("hash source: %w", err)
		}
	}

	destHash, err := HashFile(destPath)
	if err != nil {
		return Verification{}, fmt.Errorf("hash destination: %w", err)
	}

	return Verification{
		Verified:        sourceHash == destHash,
		SourceHash:      sourceHash,
		DestinationHash: destHash,
	}, nil
}
