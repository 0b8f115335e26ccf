package engine

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bitrook/offload/internal/event"
)

// makeCardTree populates root with a small memory-card layout:
//
//	DCIM/100CANON/IMG_0001.CR3 (1010 bytes)
//	DCIM/100CANON/IMG_0002.CR3 (2048 bytes)
//	DCIM/100CANON/MVI_0003.MP4 (64 KiB)
//	MISC/settings.dat          (24 bytes)
func makeCardTree(t *testing.T, root string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Join(root, "DCIM", "100CANON"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "MISC"), 0o755))

	writeSized(t, filepath.Join(root, "DCIM", "100CANON", "IMG_0001.CR3"), 1010, 0xA1)
	writeSized(t, filepath.Join(root, "DCIM", "100CANON", "IMG_0002.CR3"), 2048, 0xB2)
	writeSized(t, filepath.Join(root, "DCIM", "100CANON", "MVI_0003.MP4"), 64*1024, 0xC3)

	require.NoError(t, os.WriteFile(
		filepath.Join(root, "MISC", "settings.dat"),
		[]byte("camera settings blob\x00\x01\x02\x03"),
		0o644,
	))
}

// writeSized writes n bytes of a repeating marker so corruption in any
// copy shows up as a digest difference.
func writeSized(t *testing.T, path string, n int, marker byte) {
	t.Helper()
	data := make([]byte, n)
	for i := range data {
		data[i] = marker ^ byte(i)
	}
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

// verifyTreeCopy checks that every regular file under srcRoot has a
// byte-identical counterpart under dstRoot.
func verifyTreeCopy(t *testing.T, srcRoot, dstRoot string) {
	t.Helper()
	err := filepath.WalkDir(srcRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || !d.Type().IsRegular() {
			return err
		}
		rel, err := filepath.Rel(srcRoot, path)
		require.NoError(t, err)

		srcData, err := os.ReadFile(path)
		require.NoError(t, err, "read src %s", rel)
		dstData, err := os.ReadFile(filepath.Join(dstRoot, rel))
		require.NoError(t, err, "read dst %s", rel)
		require.Equal(t, srcData, dstData, "content mismatch: %s", rel)
		return nil
	})
	require.NoError(t, err)
}

// drainEvents creates a buffered event channel, spawns a goroutine to
// drain it, and registers cleanup.
func drainEvents(t *testing.T) chan<- event.Event {
	t.Helper()
	ch := make(chan event.Event, 1024)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for range ch { //nolint:revive // draining
		}
	}()
	t.Cleanup(func() {
		close(ch)
		<-done
	})
	return ch
}

// collectEvents creates a buffered event channel that records all
// events. The getter closes the channel and waits for the drain
// goroutine, so the returned slice is safe to read. It may be called
// at most once; if never called, cleanup closes the channel.
func collectEvents(t *testing.T) (chan<- event.Event, func() []event.Event) {
	t.Helper()
	ch := make(chan event.Event, 4096)
	var collected []event.Event
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range ch {
			collected = append(collected, ev)
		}
	}()
	var once sync.Once
	drain := func() {
		once.Do(func() { close(ch) })
		<-done
	}
	t.Cleanup(drain)
	return ch, func() []event.Event {
		drain()
		return collected
	}
}

// findTmpFiles returns any .offload-tmp files left under root.
func findTmpFiles(t *testing.T, root string) []string {
	t.Helper()
	var found []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if strings.HasSuffix(d.Name(), ".offload-tmp") {
			found = append(found, path)
		}
		return nil
	})
	require.NoError(t, err)
	return found
}
