//go:build linux || darwin

package platform

import (
	"os"

	"golang.org/x/sys/unix"
)

// copyReadWrite copies size bytes using pread/pwrite with a pooled
// buffer. Explicit offsets keep the loop restartable and leave the fd
// positions untouched.
func copyReadWrite(src, dst *os.File, size int64) (int64, error) {
	bufp := bufPool.Get().(*[]byte)
	defer bufPool.Put(bufp)
	buf := *bufp

	srcFd := int(src.Fd())
	dstFd := int(dst.Fd())

	var offset, total int64
	remaining := size
	for remaining > 0 {
		toRead := int(remaining)
		if toRead > bufferSize {
			toRead = bufferSize
		}

		n, err := unix.Pread(srcFd, buf[:toRead], offset)
		if err != nil {
			return total, err
		}
		if n == 0 {
			break
		}

		written := 0
		for written < n {
			w, err := unix.Pwrite(dstFd, buf[written:n], offset+int64(written))
			if err != nil {
				return total + int64(written), err
			}
			written += w
		}

		offset += int64(n)
		remaining -= int64(n)
		total += int64(n)
	}
	return total, nil
}
