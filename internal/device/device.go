// Package device enumerates mounted volumes so the CLI can offer
// memory cards for backup without the user hunting for mount points.
package device

import (
	"errors"
	"sort"
)

// ErrUnsupported is returned on platforms without an enumerator.
var ErrUnsupported = errors.New("device enumeration not supported")

// Device is one mounted volume.
type Device struct {
	// Name is the volume label, derived from the mount point.
	Name string
	// MountPoint is where the volume is mounted.
	MountPoint string
	// Filesystem is the mounted filesystem type (vfat, exfat, apfs...).
	Filesystem string
	// TotalBytes is the volume capacity.
	TotalBytes uint64
	// FreeBytes is the space still available.
	FreeBytes uint64
	// Removable marks media the OS reports as removable. Memory cards
	// and USB readers set this; internal disks do not.
	Removable bool
}

// List returns the mounted volumes visible to the user, removable
// media first. Volumes that cannot be inspected are skipped rather
// than failing the whole listing.
func List() ([]Device, error) {
	devs, err := list()
	if err != nil {
		return nil, err
	}
	sortDevices(devs)
	return devs, nil
}

// Removables filters a listing down to removable volumes.
func Removables(devs []Device) []Device {
	var out []Device
	for _, d := range devs {
		if d.Removable {
			out = append(out, d)
		}
	}
	return out
}

func sortDevices(devs []Device) {
	sort.SliceStable(devs, func(i, j int) bool {
		if devs[i].Removable != devs[j].Removable {
			return devs[i].Removable
		}
		return devs[i].MountPoint < devs[j].MountPoint
	})
}
