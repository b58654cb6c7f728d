// Package backend provides the filesystem providers the pa package runs on.
//
// A Backend is a core.FS from github.com/jmgilman/go/fs/core extended with
// the POSIX metadata calls pa forwards: lstat, links, ownership, modes,
// timestamps, inode identity and access checks.
//
// Two implementations are provided:
//
//   - LocalFS: the host filesystem. File I/O goes through go-billy's osfs;
//     metadata, rename and link calls go directly to the operating system
//     so errno values (EXDEV, EACCES, ...) survive.
//   - BillyFS: any billy.Filesystem, such as memfs. Capabilities the
//     filesystem does not offer return ErrUnsupported.
//
// Example usage:
//
//	local := backend.NewLocal()
//	info, err := local.Lstat("/etc/hosts")
//
//	mem := backend.NewMemory()
//	err = mem.WriteFile("/a.txt", []byte("data"), 0o644)
package backend
