package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bitrook/offload/internal/config"
	"github.com/bitrook/offload/internal/device"
	"github.com/bitrook/offload/internal/ui"
)

// stdin is shared across prompts so buffered input is not lost between
// consecutive reads.
var stdin = bufio.NewReader(os.Stdin)

// pickRemovable enumerates mounted volumes and asks the user to choose
// a removable one.
func pickRemovable() (device.Device, error) {
	devs, err := device.List()
	if err != nil {
		return device.Device{}, fmt.Errorf("enumerate volumes: %w", err)
	}
	removables := device.Removables(devs)
	if len(removables) == 0 {
		return device.Device{}, errors.New("no removable volumes found; pass a source path instead")
	}
	return ui.PickDevice(removables)
}

// defaultDestRoot resolves where backups land when no destination is
// given: the config default if set, otherwise ~/MemoryCardBackups.
func defaultDestRoot(defaults config.Defaults) string {
	if defaults.DestRoot != nil && *defaults.DestRoot != "" {
		return expandHome(*defaults.DestRoot)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "MemoryCardBackups"
	}
	return filepath.Join(home, "MemoryCardBackups")
}

// expandHome rewrites a leading ~ or ~/ to the user's home directory.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// promptDestRoot asks for the destination root, offering def as the
// accept-with-enter default.
func promptDestRoot(def string) (string, error) {
	fmt.Fprintf(os.Stderr, "Destination root [%s]: ", def)
	line, err := readLine()
	if err != nil {
		return "", err
	}
	if line == "" {
		return def, nil
	}
	return expandHome(line), nil
}

// confirm asks a yes/no question on stderr. Enter means yes.
func confirm(question string) (bool, error) {
	fmt.Fprintf(os.Stderr, "%s [Y/n] ", question)
	line, err := readLine()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(line) {
	case "", "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

func readLine() (string, error) {
	line, err := stdin.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
