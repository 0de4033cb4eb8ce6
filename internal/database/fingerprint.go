package database

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/sha3"
)

// Fingerprint returns the hex encoded SHA3-256 digest of a file. Two runs
// with the same fingerprint were generated from identical project files.
func Fingerprint(path string) (string, error) {
	f, err := os.Open(path) //nolint:gosec // project path supplied by the user
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	defer func() { _ = f.Close() }()

	h := sha3.New256()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("fingerprint %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
