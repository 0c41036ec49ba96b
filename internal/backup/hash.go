package backup

import (
	"crypto/md5" //nolint:gosec // md5 is offered for compatibility with existing backups, not for security
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

// Algorithm names a digest algorithm.
type Algorithm string

// Supported digest algorithms.
const (
	SHA256 Algorithm = "sha256"
	MD5    Algorithm = "md5"
)

// DefaultAlgorithm is used when none is configured.
const DefaultAlgorithm = SHA256

// chunkSize is the read size used when streaming file contents.
const chunkSize = 4096

// maxHashDepth bounds directory recursion when symlinks form a cycle.
const maxHashDepth = 64

// ParseAlgorithm returns the Algorithm named by s, case-insensitively.
// An empty string selects DefaultAlgorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return DefaultAlgorithm, nil
	case SHA256:
		return SHA256, nil
	case MD5:
		return MD5, nil
	default:
		return "", errors.Newf("unsupported hash algorithm %q (want sha256 or md5)", s)
	}
}

// Hasher computes content digests of files and directory trees.
type Hasher struct {
	algo Algorithm
	new  func() hash.Hash
}

// NewHasher returns a Hasher for algo. An unknown algorithm falls back to
// DefaultAlgorithm.
func NewHasher(algo Algorithm) *Hasher {
	switch algo {
	case MD5:
		return &Hasher{algo: MD5, new: md5.New}
	default:
		return &Hasher{algo: SHA256, new: sha256.New}
	}
}

// Algorithm returns the algorithm in use.
func (h *Hasher) Algorithm() Algorithm {
	return h.algo
}

// HashFile returns the hex digest of the regular file at path.
func (h *Hasher) HashFile(path string) (string, error) {
	sum, err := h.fileSum(path)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(sum), nil
}

// HashDirectory returns the hex digest of the directory tree at path.
//
// Children are visited in lexical order. Each child contributes its name
// followed by its own digest; children that are neither files nor
// directories contribute only their name. Symlinks are followed.
func (h *Hasher) HashDirectory(path string) (string, error) {
	sum, err := h.dirSum(path, 0)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(sum), nil
}

// Hash dispatches to HashFile or HashDirectory based on what path is.
func (h *Hasher) Hash(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", errors.Wrapf(err, "stat %s", path)
	}
	if info.IsDir() {
		return h.HashDirectory(path)
	}
	return h.HashFile(path)
}

func (h *Hasher) fileSum(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(err, "stat %s", path)
	}
	if !info.Mode().IsRegular() {
		return nil, errors.Wrapf(ErrNotAFile, "hashing %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	d := h.new()
	buf := make([]byte, chunkSize)
	if _, err := io.CopyBuffer(d, f, buf); err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return d.Sum(nil), nil
}

func (h *Hasher) dirSum(path string, depth int) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(err, "stat %s", path)
	}
	if !info.IsDir() {
		return nil, errors.Wrapf(ErrNotADirectory, "hashing %s", path)
	}
	if depth > maxHashDepth {
		return nil, errors.Newf("hashing %s: directory nesting exceeds %d levels", path, maxHashDepth)
	}

	// os.ReadDir returns entries sorted by name.
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, errors.Wrapf(err, "listing %s", path)
	}

	d := h.new()
	for _, e := range entries {
		child := filepath.Join(path, e.Name())
		_, _ = io.WriteString(d, e.Name())

		ci, err := os.Stat(child)
		if err != nil {
			// Dangling symlink.
			continue
		}

		var sum []byte
		switch {
		case ci.Mode().IsRegular():
			sum, err = h.fileSum(child)
		case ci.IsDir():
			sum, err = h.dirSum(child, depth+1)
		default:
			continue
		}
		if err != nil {
			return nil, err
		}
		_, _ = d.Write(sum)
	}
	return d.Sum(nil), nil
}
