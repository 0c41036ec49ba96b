package backup

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
)

// copyFileFunc is the file copier used by RecentRule; tests replace it.
var copyFileFunc = copyFile

// copyFile copies the regular file src to dst, preserving permission bits
// and modification time. It returns the number of bytes written.
//
// The destination is created with 0600 permissions initially, then updated
// to match the source once the contents are in place.
func copyFile(src, dst string) (int64, error) {
	srcFile, err := os.Open(src)
	if err != nil {
		return 0, errors.Wrap(err, "opening source file")
	}
	defer srcFile.Close()

	info, err := srcFile.Stat()
	if err != nil {
		return 0, errors.Wrap(err, "stat source file")
	}
	if !info.Mode().IsRegular() {
		return 0, errors.Wrapf(ErrNotAFile, "copying %s", src)
	}

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return 0, errors.Wrap(err, "creating destination file")
	}

	n, err := io.Copy(dstFile, srcFile)
	if err != nil {
		dstFile.Close()
		return n, errors.Wrap(err, "copying file")
	}

	if err := dstFile.Close(); err != nil {
		return n, errors.Wrap(err, "closing destination file")
	}

	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return n, errors.Wrap(err, "setting permissions")
	}

	// A zero atime is left unchanged.
	if err := os.Chtimes(dst, time.Time{}, info.ModTime()); err != nil {
		return n, errors.Wrap(err, "setting modification time")
	}

	return n, nil
}

// treeStats summarizes a copyTree call.
type treeStats struct {
	Files int
	Bytes int64
}

type dirMeta struct {
	path    string
	mode    fs.FileMode
	modTime time.Time
}

// copyTree copies the directory tree rooted at src into dst, which must
// already exist. Symlinks are followed; dangling links are recreated as
// links. The returned error names the first entry that failed.
func copyTree(src, dst string) (treeStats, error) {
	var (
		stats treeStats
		dirs  []dirMeta
	)

	err := copyTreeInto(src, dst, 0, &stats, &dirs)

	// Directory permissions and times are applied last so that copying
	// children neither fails on a read-only directory nor bumps its mtime.
	for i := len(dirs) - 1; i >= 0; i-- {
		d := dirs[i]
		if cerr := os.Chmod(d.path, d.mode.Perm()); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "setting permissions on %s", d.path)
		}
		if cerr := os.Chtimes(d.path, time.Time{}, d.modTime); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "setting modification time on %s", d.path)
		}
	}

	return stats, err
}

func copyTreeInto(src, dst string, depth int, stats *treeStats, dirs *[]dirMeta) error {
	if depth > maxHashDepth {
		return errors.Newf("copying %s: directory nesting exceeds %d levels", src, maxHashDepth)
	}

	// WalkDir does not descend into a symlinked root.
	root, err := filepath.EvalSymlinks(src)
	if err != nil {
		return errors.Wrapf(err, "resolving %s", src)
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.Wrapf(err, "reading %s", path)
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return errors.Wrapf(err, "resolving %s", path)
		}
		target := filepath.Join(dst, rel)

		info, err := os.Stat(path)
		if err != nil {
			if d.Type()&fs.ModeSymlink == 0 {
				return errors.Wrapf(err, "stat %s", path)
			}
			link, lerr := os.Readlink(path)
			if lerr != nil {
				return errors.Wrapf(lerr, "reading link %s", path)
			}
			if lerr := os.Symlink(link, target); lerr != nil {
				return errors.Wrapf(lerr, "copying link %s", path)
			}
			return nil
		}

		switch {
		case info.IsDir():
			if rel != "." {
				if err := os.Mkdir(target, 0o700); err != nil {
					return errors.Wrapf(err, "creating %s", target)
				}
			}
			*dirs = append(*dirs, dirMeta{path: target, mode: info.Mode(), modTime: info.ModTime()})
			if d.Type()&fs.ModeSymlink != 0 {
				return copyTreeInto(path, target, depth+1, stats, dirs)
			}
			return nil

		case info.Mode().IsRegular():
			n, err := copyFile(path, target)
			if err != nil {
				return errors.Wrapf(err, "copying %s", path)
			}
			stats.Files++
			stats.Bytes += n
			return nil

		default:
			return errors.Newf("copying %s: unsupported file type %s", path, info.Mode().Type())
		}
	})
}
