//go:build unix && !linux && !darwin

package backend

import "os"

// statTimes falls back to the modification time on platforms whose stat
// layout is not mapped.
func statTimes(path string) (Times, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Times{}, err
	}
	mt := info.ModTime()
	return Times{Atime: mt, Mtime: mt, Ctime: mt}, nil
}
