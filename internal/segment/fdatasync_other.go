//go:build !linux

package segment

import "os"

// fdatasync falls back to a full fsync on platforms without a distinct
// data-only sync syscall exposed through golang.org/x/sys/unix.
func fdatasync(file *os.File) error {
	return file.Sync()
}
