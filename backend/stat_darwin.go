//go:build darwin

package backend

import (
	"io/fs"
	"time"

	"golang.org/x/sys/unix"
)

func statTimes(path string) (Times, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return Times{}, &fs.PathError{Op: "stat", Path: path, Err: err}
	}
	return Times{
		Atime: time.Unix(st.Atimespec.Unix()),
		Mtime: time.Unix(st.Mtimespec.Unix()),
		Ctime: time.Unix(st.Ctimespec.Unix()),
	}, nil
}
