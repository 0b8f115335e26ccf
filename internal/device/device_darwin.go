//go:build darwin

package device

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

const volumesDir = "/Volumes"

func list() ([]Device, error) {
	entries, err := os.ReadDir(volumesDir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", volumesDir, err)
	}

	var devs []Device
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		// The boot volume appears as a symlink back to /.
		if entry.Type()&os.ModeSymlink != 0 {
			continue
		}

		mountPoint := filepath.Join(volumesDir, name)
		var st unix.Statfs_t
		if err := unix.Statfs(mountPoint, &st); err != nil {
			continue
		}

		fstype := cstring(st.Fstypename[:])
		devs = append(devs, Device{
			Name:       name,
			MountPoint: mountPoint,
			Filesystem: fstype,
			TotalBytes: st.Blocks * uint64(st.Bsize),
			FreeBytes:  st.Bavail * uint64(st.Bsize),
			Removable:  removableFilesystem(fstype),
		})
	}
	return devs, nil
}

// removableFilesystem treats card and stick formats as removable.
// Cameras format cards as FAT32 or exFAT without exception.
func removableFilesystem(fstype string) bool {
	switch strings.ToLower(fstype) {
	case "msdos", "exfat", "ntfs":
		return true
	}
	return false
}

func cstring(b []byte) string {
	if i := strings.IndexByte(string(b), 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}
