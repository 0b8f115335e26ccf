package safepath

import (
	"strings"
	"time"
)

const maxNameLen = 255

// reservedNames are device names Windows refuses as file names, upper-cased.
var reservedNames = map[string]struct{}{
	"CON": {}, "PRN": {}, "AUX": {}, "NUL": {},
	"COM1": {}, "COM2": {}, "COM3": {}, "COM4": {}, "COM5": {},
	"COM6": {}, "COM7": {}, "COM8": {}, "COM9": {},
	"LPT1": {}, "LPT2": {}, "LPT3": {}, "LPT4": {}, "LPT5": {},
	"LPT6": {}, "LPT7": {}, "LPT8": {}, "LPT9": {},
}

// SanitizeName turns an arbitrary volume name into a string safe to use as
// a single path component on any filesystem. Separator and shell-hostile
// characters become underscores, control characters are dropped, trailing
// dots and spaces are trimmed, and reserved Windows device names get a
// prefix. An empty result becomes "card".
func SanitizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r < 0x20 || r == 0x7f:
			// drop control characters
		case strings.ContainsRune(`<>:"/\|?*`, r):
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}

	out := strings.Trim(b.String(), " .")
	if out == "" {
		return "card"
	}

	if _, reserved := reservedNames[strings.ToUpper(out)]; reserved {
		out = "card_" + out
	}

	if len(out) > maxNameLen {
		out = out[:maxNameLen]
	}
	return out
}

// BackupDirName builds the deterministic backup folder name for a volume:
// <sanitized-name>_backup_<YYYYMMDD_HHMMSS>.
func BackupDirName(volumeName string, t time.Time) string {
	return SanitizeName(volumeName) + "_backup_" + t.Format("20060102_150405")
}
