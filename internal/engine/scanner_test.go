package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitrook/offload/internal/event"
	"github.com/bitrook/offload/internal/filter"
)

func scan(t *testing.T, root string, f *filter.Chain) *Inventory {
	t.Helper()
	sc := NewScanner(ScannerConfig{Root: root, Filter: f})
	inv, err := sc.Scan(context.Background())
	require.NoError(t, err)
	return inv
}

func TestScanInventory(t *testing.T) {
	root := t.TempDir()
	makeCardTree(t, root)

	inv := scan(t, root, nil)

	rels := make([]string, len(inv.Files))
	for i, f := range inv.Files {
		rels[i] = f.RelPath
	}
	assert.Equal(t, []string{
		"DCIM/100CANON/IMG_0001.CR3",
		"DCIM/100CANON/IMG_0002.CR3",
		"DCIM/100CANON/MVI_0003.MP4",
		"MISC/settings.dat",
	}, rels)

	var total int64
	for _, f := range inv.Files {
		total += f.Size
		assert.NotZero(t, f.ModTime)
		assert.Equal(t, filepath.Join(root, filepath.FromSlash(f.RelPath)), f.AbsPath)
	}
	assert.Equal(t, total, inv.TotalBytes)
	assert.Empty(t, inv.Issues)
}

func TestScanEmptyRoot(t *testing.T) {
	inv := scan(t, t.TempDir(), nil)
	assert.Empty(t, inv.Files)
	assert.Zero(t, inv.TotalBytes)
}

func TestScanIgnoresSymlinks(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "real.txt"), []byte("data"), 0644))
	require.NoError(t, os.Symlink("real.txt", filepath.Join(root, "alias.txt")))

	inv := scan(t, root, nil)
	require.Len(t, inv.Files, 1)
	assert.Equal(t, "real.txt", inv.Files[0].RelPath)
}

func TestScanAppliesFilter(t *testing.T) {
	root := t.TempDir()
	makeCardTree(t, root)
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".Trashes"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".Trashes", "junk"), []byte("x"), 0644))

	f := filter.NewChain()
	require.NoError(t, f.AddExclude(".Trashes/"))
	require.NoError(t, f.AddExclude("*.dat"))

	inv := scan(t, root, f)

	for _, entry := range inv.Files {
		assert.NotContains(t, entry.RelPath, ".Trashes")
		assert.NotContains(t, entry.RelPath, ".dat")
	}
	assert.Len(t, inv.Files, 3)
}

func TestScanExcludedDirNotDescended(t *testing.T) {
	root := t.TempDir()
	deep := filepath.Join(root, "skipme", "a", "b")
	require.NoError(t, os.MkdirAll(deep, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(deep, "hidden.bin"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "keep.bin"), []byte("y"), 0644))

	f := filter.NewChain()
	require.NoError(t, f.AddExclude("skipme/"))

	inv := scan(t, root, f)
	require.Len(t, inv.Files, 1)
	assert.Equal(t, "keep.bin", inv.Files[0].RelPath)
}

func TestScanManyFilesStableOrder(t *testing.T) {
	root := t.TempDir()
	for i := range 250 {
		name := filepath.Join(root, fmt.Sprintf("clip_%03d.mov", i))
		require.NoError(t, os.WriteFile(name, []byte{byte(i)}, 0644))
	}

	first := scan(t, root, nil)
	second := scan(t, root, nil)

	require.Len(t, first.Files, 250)
	for i := range first.Files {
		assert.Equal(t, first.Files[i].RelPath, second.Files[i].RelPath)
	}
}

func TestScanUnreadableDirRecordedNotFatal(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not bind as root")
	}

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "ok.txt"), []byte("fine"), 0644))
	locked := filepath.Join(root, "locked")
	require.NoError(t, os.MkdirAll(locked, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(locked, "secret"), []byte("x"), 0644))
	require.NoError(t, os.Chmod(locked, 0000))
	t.Cleanup(func() { _ = os.Chmod(locked, 0755) })

	inv := scan(t, root, nil)

	require.Len(t, inv.Files, 1)
	assert.Equal(t, "ok.txt", inv.Files[0].RelPath)
	assert.NotEmpty(t, inv.Issues)
}

func TestScanCancellation(t *testing.T) {
	root := t.TempDir()
	makeCardTree(t, root)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sc := NewScanner(ScannerConfig{Root: root})
	_, err := sc.Scan(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScanEmitsLifecycleEvents(t *testing.T) {
	root := t.TempDir()
	makeCardTree(t, root)

	ch, events := collectEvents(t)
	sc := NewScanner(ScannerConfig{Root: root, Events: ch})
	inv, err := sc.Scan(context.Background())
	require.NoError(t, err)

	got := events()
	require.NotEmpty(t, got)
	assert.Equal(t, event.ScanStarted, got[0].Type)

	last := got[len(got)-1]
	assert.Equal(t, event.ScanComplete, last.Type)
	assert.Equal(t, int64(len(inv.Files)), last.Total)
	assert.Equal(t, inv.TotalBytes, last.TotalSize)
	assert.False(t, last.Timestamp.IsZero())
}
