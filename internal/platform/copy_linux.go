//go:build linux

package platform

import (
	"os"

	"golang.org/x/sys/unix"
)

// CopyFile tries the most efficient copy method available on Linux,
// falling through on unsupported/cross-device errors.
func CopyFile(params CopyFileParams) (CopyResult, error) {
	src, err := os.Open(params.SrcPath)
	if err != nil {
		return CopyResult{}, err
	}
	defer src.Close()

	dst, err := os.OpenFile(params.DstPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, params.perm())
	if err != nil {
		return CopyResult{}, err
	}
	preallocate(dst, params.SrcSize)

	result, err := copyBest(src, dst, params.SrcSize)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	return result, err
}

// copyBest walks the strategy chain: copy_file_range, then sendfile,
// then plain read/write. Each strategy restarts from offset zero, so a
// partial write by one is overwritten by the next.
func copyBest(src, dst *os.File, size int64) (CopyResult, error) {
	n, err := copyFileRange(src, dst, size)
	if err == nil {
		return CopyResult{BytesWritten: n, Method: CopyFileRange}, nil
	}
	if !isFallbackErr(err) {
		return CopyResult{BytesWritten: n, Method: CopyFileRange}, err
	}

	n, err = copySendfile(src, dst, size)
	if err == nil {
		return CopyResult{BytesWritten: n, Method: Sendfile}, nil
	}
	if !isFallbackErr(err) {
		return CopyResult{BytesWritten: n, Method: Sendfile}, err
	}

	n, err = copyReadWrite(src, dst, size)
	return CopyResult{BytesWritten: n, Method: ReadWrite}, err
}

func copyFileRange(src, dst *os.File, size int64) (int64, error) {
	var roff, woff int64
	remaining := size

	var total int64
	for remaining > 0 {
		n, err := unix.CopyFileRange(int(src.Fd()), &roff, int(dst.Fd()), &woff, int(remaining), 0)
		if err != nil {
			return total, err
		}
		if n == 0 {
			break
		}
		remaining -= int64(n)
		total += int64(n)
	}
	return total, nil
}

func copySendfile(src, dst *os.File, size int64) (int64, error) {
	var offset int64
	remaining := size

	var total int64
	for remaining > 0 {
		n, err := unix.Sendfile(int(dst.Fd()), int(src.Fd()), &offset, int(remaining))
		if err != nil {
			return total, err
		}
		if n == 0 {
			break
		}
		remaining -= int64(n)
		total += int64(n)
	}
	return total, nil
}

// isFallbackErr returns true if err should trigger the next copy strategy.
func isFallbackErr(err error) bool {
	switch err {
	case unix.ENOSYS, unix.EXDEV, unix.EINVAL, unix.ENOTSUP:
		return true
	}
	if e, ok := err.(*os.PathError); ok {
		return isFallbackErr(e.Err)
	}
	return false
}
