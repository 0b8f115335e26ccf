//go:build darwin

package platform

import (
	"os"

	"golang.org/x/sys/unix"
)

// CopyFile tries clonefile first (CoW whole-file copy, APFS only), then
// falls back to read/write on macOS.
func CopyFile(params CopyFileParams) (CopyResult, error) {
	// clonefile requires the destination to not exist yet.
	err := unix.Clonefile(params.SrcPath, params.DstPath, 0)
	if err == nil {
		return CopyResult{BytesWritten: params.SrcSize, Method: Clonefile}, nil
	}
	if !isFallbackCloneErr(err) {
		return CopyResult{}, err
	}

	src, err := os.Open(params.SrcPath)
	if err != nil {
		return CopyResult{}, err
	}
	defer src.Close()

	dst, err := os.OpenFile(params.DstPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, params.perm())
	if err != nil {
		return CopyResult{}, err
	}

	n, err := copyReadWrite(src, dst, params.SrcSize)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	return CopyResult{BytesWritten: n, Method: ReadWrite}, err
}

// Cross-filesystem clones and non-APFS sources land here, not in the
// caller's error path.
func isFallbackCloneErr(err error) bool {
	switch err {
	case unix.ENOTSUP, unix.EXDEV, unix.EEXIST, unix.EINVAL:
		return true
	}
	return false
}
