//go:build !linux && !darwin

package platform

import (
	"io"
	"os"
)

// CopyFile is a portable read/write copy for platforms without a
// kernel-assisted path.
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

	bufp := bufPool.Get().(*[]byte)
	n, err := io.CopyBuffer(dst, io.LimitReader(src, params.SrcSize), *bufp)
	bufPool.Put(bufp)

	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	return CopyResult{BytesWritten: n, Method: ReadWrite}, err
}
