// file: internal/fileops/fileops.go
// version: 1.1.0
// guid: 4b3a2918-7f6e-5d4c-3b2a-19088f7e6d5c

package fileops

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// CopyFile copies src to dst, creating dst's directory if needed, syncing
// the destination to disk and carrying over the source's permissions.
func CopyFile(src, dst string) error {
	sourceFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}

	destFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}
	if err := destFile.Sync(); err != nil {
		return err
	}

	sourceInfo, err := os.Stat(src)
	if err != nil {
		return err
	}
	return os.Chmod(dst, sourceInfo.Mode())
}

// Checksum computes the SHA256 hash of a file.
func Checksum(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// FileSize returns the size of a file in bytes.
func FileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// VerifyIntegrity checks whether a file matches its expected checksum.
func VerifyIntegrity(path, expectedHash string) (bool, error) {
	actual, err := Checksum(path)
	if err != nil {
		return false, err
	}
	return actual == expectedHash, nil
}

// SameChecksum reports whether two files have identical contents.
func SameChecksum(a, b string) (bool, error) {
	ha, err := Checksum(a)
	if err != nil {
		return false, fmt.Errorf("checksum %s: %w", a, err)
	}
	hb, err := Checksum(b)
	if err != nil {
		return false, fmt.Errorf("checksum %s: %w", b, err)
	}
	return ha == hb, nil
}
