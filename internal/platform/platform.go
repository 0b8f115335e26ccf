// Package platform holds the per-OS file copy primitives. Each OS gets
// the fastest whole-file copy path it supports, falling back to a
// buffered read/write loop when the kernel declines.
package platform

import (
	"os"
	"sync"
)

// CopyMethod identifies which syscall/strategy performed a copy.
type CopyMethod int

const (
	ReadWrite     CopyMethod = iota
	CopyFileRange            // Linux copy_file_range(2)
	Sendfile                 // Linux sendfile(2)
	Clonefile                // macOS clonefile(2)
)

func (m CopyMethod) String() string {
	switch m {
	case ReadWrite:
		return "read_write"
	case CopyFileRange:
		return "copy_file_range"
	case Sendfile:
		return "sendfile"
	case Clonefile:
		return "clonefile"
	default:
		return "unknown"
	}
}

// CopyResult reports the outcome of a copy operation.
type CopyResult struct {
	BytesWritten int64
	Method       CopyMethod
}

// CopyFileParams describes a whole-file copy. DstPath must not exist;
// CopyFile creates it with Mode's permission bits.
type CopyFileParams struct {
	SrcPath string
	DstPath string
	SrcSize int64
	Mode    os.FileMode
}

func (p CopyFileParams) perm() os.FileMode {
	if p.Mode == 0 {
		return 0o644
	}
	return p.Mode.Perm()
}

const bufferSize = 1 << 20 // 1 MiB

var bufPool = sync.Pool{
	New: func() any {
		b := make([]byte, bufferSize)
		return &b
	},
}
