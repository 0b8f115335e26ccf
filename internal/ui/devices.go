package ui

import (
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/bitrook/offload/internal/device"
)

// RenderDeviceTable renders detected volumes as an aligned table with
// styled columns. Removable volumes are highlighted since they are the
// usual backup sources.
func RenderDeviceTable(devs []device.Device) string {
	if len(devs) == 0 {
		return styleDeviceMeta.Render("no volumes detected") + "\n"
	}

	headers := []string{"NAME", "MOUNT", "TYPE", "SIZE", "FREE", "REMOVABLE"}
	rows := make([][]string, 0, len(devs))
	for _, d := range devs {
		removable := "-"
		if d.Removable {
			removable = "yes"
		}
		rows = append(rows, []string{
			d.Name,
			d.MountPoint,
			d.Filesystem,
			humanize.IBytes(d.TotalBytes),
			humanize.IBytes(d.FreeBytes),
			removable,
		})
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var sb strings.Builder
	for i, h := range headers {
		cell := h
		if i < len(headers)-1 {
			cell = padRight(h, widths[i]) + "  "
		}
		sb.WriteString(styleTableHeader.Render(cell))
	}
	sb.WriteString("\n")

	for _, row := range rows {
		for i, cell := range row {
			padded := cell
			if i < len(row)-1 {
				padded = padRight(cell, widths[i]) + "  "
			}
			switch {
			case i == 0:
				sb.WriteString(styleDeviceName.Render(padded))
			case i == len(row)-1 && cell == "yes":
				sb.WriteString(styleRemovable.Render(padded))
			default:
				sb.WriteString(styleDeviceMeta.Render(padded))
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// padRight pads a string with spaces on the right to the desired width.
func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
