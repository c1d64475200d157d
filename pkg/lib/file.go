package lib

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// IsExecutable tells whether the current user can execute path. Symlinks are
// followed.
func IsExecutable(path string) bool {
	return unix.Access(path, unix.X_OK) == nil
}

// IsRegularFile tells whether path names a regular file, following symlinks.
func IsRegularFile(path string) (bool, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return false, errors.Wrapf(err, "couldn't stat %s", path)
	}

	return fi.Mode().IsRegular(), nil
}

// FindExecutables walks dir and returns the canonical absolute paths of the
// regular executable files below it for which keep returns true. keep
// receives the path relative to dir, before any symlink resolution. The walk
// is lexical, so the result order is deterministic. Dangling symlinks and
// entries whose targets are not regular files are skipped.
func FindExecutables(dir string, keep func(rel string) bool) ([]string, error) {
	var paths []string

	visit := func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		// Note symlinks are not followed by walk implementation, so a
		// symlinked subtree is never descended into.
		if info.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return errors.WithStack(err)
		}

		if !keep(rel) {
			return nil
		}

		fi, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}

			return errors.Wrapf(err, "couldn't stat %s", path)
		}

		if !fi.Mode().IsRegular() || !IsExecutable(path) {
			return nil
		}

		resolved, err := filepath.EvalSymlinks(path)
		if err != nil {
			return errors.Wrapf(err, "couldn't resolve %s", path)
		}

		paths = append(paths, resolved)
		return nil
	}

	err := filepath.Walk(dir, visit)
	return paths, err
}
