package fileutil

import (
	"io"
	"os"

	"github.com/thoreinstein/mimeo/internal/errors"
)

// MaxFileSize is the default maximum size ReadFileWithLimit will read (1MB).
// Rule files are small; anything larger is almost certainly the wrong file.
const MaxFileSize = 1024 * 1024

// ErrFileTooLarge indicates that a file exceeded the read limit.
var ErrFileTooLarge = errors.New("file exceeds maximum size")

// ReadFileWithLimit reads a file of at most MaxFileSize bytes.
func ReadFileWithLimit(path string) ([]byte, error) {
	return ReadFileLimited(path, MaxFileSize)
}

// ReadFileLimited reads a file of at most limit bytes. It returns an error
// wrapping ErrFileTooLarge if the file is larger, without reading all of it.
func ReadFileLimited(path string, limit int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening file")
	}
	defer f.Close()

	// fail fast on the size reported by stat; the reader limit below covers
	// files that grow or report a bogus size
	if info, err := f.Stat(); err == nil && info.Size() > limit {
		return nil, errors.Wrapf(ErrFileTooLarge, "%s is %d bytes (limit %d)", path, info.Size(), limit)
	}

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, errors.Wrap(err, "reading file")
	}
	if int64(len(data)) > limit {
		return nil, errors.Wrapf(ErrFileTooLarge, "%s exceeds %d bytes", path, limit)
	}

	return data, nil
}
