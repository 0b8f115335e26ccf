//go:build linux

package device

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

const mountsPath = "/proc/self/mounts"

// mountEntry is one parsed line of /proc/self/mounts.
type mountEntry struct {
	Source     string
	MountPoint string
	Filesystem string
}

func list() ([]Device, error) {
	f, err := os.Open(mountsPath)
	if err != nil {
		return nil, fmt.Errorf("read mount table: %w", err)
	}
	defer f.Close()

	var devs []Device
	for _, m := range parseMounts(f) {
		d := Device{
			Name:       volumeName(m),
			MountPoint: m.MountPoint,
			Filesystem: m.Filesystem,
			Removable:  isRemovable(m.Source),
		}
		var st unix.Statfs_t
		if err := unix.Statfs(m.MountPoint, &st); err != nil {
			// A vanished or unreadable mount is not worth failing the
			// whole listing over.
			continue
		}
		bsize := uint64(st.Bsize) //nolint:gosec // block size is never negative
		d.TotalBytes = st.Blocks * bsize
		d.FreeBytes = st.Bavail * bsize
		devs = append(devs, d)
	}
	return devs, nil
}

// parseMounts extracts block-device mounts from mounts(5) formatted
// text. Pseudo filesystems and non-/dev sources are dropped.
func parseMounts(r io.Reader) []mountEntry {
	var entries []mountEntry
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 3 {
			continue
		}
		m := mountEntry{
			Source:     unescapeMount(fields[0]),
			MountPoint: unescapeMount(fields[1]),
			Filesystem: fields[2],
		}
		if !strings.HasPrefix(m.Source, "/dev/") {
			continue
		}
		if pseudoFilesystems[m.Filesystem] {
			continue
		}
		entries = append(entries, m)
	}
	return entries
}

var pseudoFilesystems = map[string]bool{
	"devtmpfs": true,
	"tmpfs":    true,
	"squashfs": true,
	"overlay":  true,
	"ramfs":    true,
}

// unescapeMount decodes the octal escapes mounts(5) uses for spaces,
// tabs, newlines, and backslashes in paths.
func unescapeMount(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+3 < len(s) && isOctal(s[i+1]) && isOctal(s[i+2]) && isOctal(s[i+3]) {
			b.WriteByte((s[i+1]-'0')<<6 | (s[i+2]-'0')<<3 | (s[i+3] - '0'))
			i += 3
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func isOctal(c byte) bool { return c >= '0' && c <= '7' }

// volumeName labels the volume after its mount point, the way desktop
// automounters name card mounts (/media/user/EOS_DIGITAL). The root
// filesystem falls back to the device name.
func volumeName(m mountEntry) string {
	if m.MountPoint == "/" {
		return filepath.Base(m.Source)
	}
	return filepath.Base(m.MountPoint)
}

// isRemovable consults the sysfs removable flag for the device backing
// a mount. Partitions are resolved to their parent disk.
func isRemovable(source string) bool {
	name := filepath.Base(source)
	for _, candidate := range []string{name, partitionBase(name)} {
		data, err := os.ReadFile(filepath.Join("/sys/block", candidate, "removable"))
		if err != nil {
			continue
		}
		return strings.TrimSpace(string(data)) == "1"
	}
	return false
}

// partitionBase strips a partition suffix from a kernel block-device
// name: sda1 -> sda, mmcblk0p1 -> mmcblk0, nvme0n1p2 -> nvme0n1.
func partitionBase(name string) string {
	trimmed := strings.TrimRight(name, "0123456789")
	if trimmed == name {
		return name
	}
	// mmcblk0p1 and nvme0n1p2 keep a trailing 'p' after the partition
	// number comes off; drop it when a disk number precedes it.
	if strings.HasSuffix(trimmed, "p") && len(trimmed) > 1 && isDigit(trimmed[len(trimmed)-2]) {
		return trimmed[:len(trimmed)-1]
	}
	return trimmed
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
