//go:build linux

package segment

import (
	"os"

	"golang.org/x/sys/unix"
)

// fdatasync flushes file content and length metadata to stable storage
// without necessarily flushing unrelated directory-entry metadata, matching
// the durability contract's "data-fsync" requirement.
func fdatasync(file *os.File) error {
	if err := unix.Fdatasync(int(file.Fd())); err != nil {
		return &os.PathError{Op: "fdatasync", Path: file.Name(), Err: err}
	}
	return nil
}
