//go:build linux

package platform

import (
	"os"

	"golang.org/x/sys/unix"
)

// preallocate reserves disk space for the destination ahead of the
// copy. fallocate is advisory here: filesystems that lack it (FAT32,
// exFAT) just skip ahead.
func preallocate(fd *os.File, size int64) {
	if size <= 0 {
		return
	}
	_ = unix.Fallocate(int(fd.Fd()), 0, 0, size)
}
