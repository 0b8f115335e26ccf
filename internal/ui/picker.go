package ui

import (
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/bitrook/offload/internal/device"
)

// ErrPickerAborted is returned when the user quits the picker without
// choosing a volume.
var ErrPickerAborted = errors.New("no volume selected")

// pickerModel is the Bubble Tea model for interactive volume selection.
type pickerModel struct {
	devices []device.Device
	cursor  int
	choice  int // index of the chosen device, -1 until enter
	aborted bool
}

func newPickerModel(devs []device.Device) pickerModel {
	return pickerModel{devices: devs, choice: -1}
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "q", "esc", "ctrl+c":
			m.aborted = true
			return m, tea.Quit

		case "j", "down":
			if m.cursor < len(m.devices)-1 {
				m.cursor++
			}

		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}

		case "enter":
			m.choice = m.cursor
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m pickerModel) View() string {
	var sb strings.Builder
	sb.WriteString(styleTitle.Render("Select a volume to back up"))
	sb.WriteString("\n\n")

	for i, d := range m.devices {
		marker := "  "
		nameStyle := styleDeviceName
		if i == m.cursor {
			marker = styleCursor.Render("> ")
			nameStyle = styleSelected
		}

		meta := fmt.Sprintf("%s  %s  %s free",
			d.MountPoint, d.Filesystem, humanize.IBytes(d.FreeBytes))

		sb.WriteString(marker)
		sb.WriteString(nameStyle.Render(d.Name))
		if d.Removable {
			sb.WriteString(styleRemovable.Render(" ●"))
		}
		sb.WriteString("  ")
		sb.WriteString(styleDeviceMeta.Render(meta))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(styleKeyHint.Render("↑/↓ move · enter select · q quit"))
	sb.WriteString("\n")
	return sb.String()
}

// PickDevice runs an interactive volume picker on stderr and returns the
// selected device. Callers should pass devices sorted removable-first.
func PickDevice(devs []device.Device) (device.Device, error) {
	if len(devs) == 0 {
		return device.Device{}, errors.New("no volumes detected")
	}

	prog := tea.NewProgram(newPickerModel(devs), tea.WithOutput(os.Stderr))
	final, err := prog.Run()
	if err != nil {
		return device.Device{}, fmt.Errorf("volume picker: %w", err)
	}

	m, ok := final.(pickerModel)
	if !ok || m.aborted || m.choice < 0 {
		return device.Device{}, ErrPickerAborted
	}
	return m.devices[m.choice], nil
}
