package backend

import (
	"errors"
	"io/fs"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
)

// walkDir is the shared Walk implementation. The root is described with
// Lstat so a symlinked root is reported, not entered.
func walkDir(bfs billy.Filesystem, root string, walkFn fs.WalkDirFunc) error {
	info, err := bfs.Lstat(root)
	if err != nil {
		err = walkFn(root, nil, err)
	} else {
		err = walk(bfs, root, &dirEntry{info: info}, walkFn)
	}
	if errors.Is(err, fs.SkipDir) || errors.Is(err, fs.SkipAll) {
		return nil
	}
	return err
}

func walk(bfs billy.Filesystem, path string, d fs.DirEntry, walkFn fs.WalkDirFunc) error {
	if err := walkFn(path, d, nil); err != nil || !d.IsDir() {
		if errors.Is(err, fs.SkipDir) && d.IsDir() {
			err = nil
		}
		return err
	}

	entries, err := bfs.ReadDir(path)
	if err != nil {
		// Second call for the same directory reports the read failure.
		if err = walkFn(path, d, err); err != nil {
			if errors.Is(err, fs.SkipDir) {
				err = nil
			}
			return err
		}
	}

	for _, entry := range entries {
		next := normalize(filepath.Join(path, entry.Name()))
		if err := walk(bfs, next, &dirEntry{info: entry}, walkFn); err != nil {
			// SkipDir from a file skips its remaining siblings.
			if errors.Is(err, fs.SkipDir) {
				return nil
			}
			return err
		}
	}
	return nil
}
