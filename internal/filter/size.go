package filter

import (
	"fmt"
	"strconv"
	"strings"
)

// Size suffixes use powers of 1024 whether written bare ("100K"),
// metric ("100KB"), or IEC ("100KiB"), matching rsync's convention.
var sizeSuffixes = map[string]int64{
	"": 1, "B": 1,
	"K": 1 << 10, "KB": 1 << 10, "KIB": 1 << 10,
	"M": 1 << 20, "MB": 1 << 20, "MIB": 1 << 20,
	"G": 1 << 30, "GB": 1 << 30, "GIB": 1 << 30,
	"T": 1 << 40, "TB": 1 << 40, "TIB": 1 << 40,
}

// ParseSize parses a human-readable size string into bytes.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty size string")
	}

	cut := len(s)
	for i, r := range s {
		if (r < '0' || r > '9') && r != '.' {
			cut = i
			break
		}
	}
	numStr := s[:cut]
	suffix := strings.ToUpper(strings.TrimSpace(s[cut:]))

	mult, ok := sizeSuffixes[suffix]
	if !ok {
		return 0, fmt.Errorf("invalid size %q: unknown suffix %q", s, s[cut:])
	}
	if numStr == "" {
		return 0, fmt.Errorf("invalid size: %q", s)
	}

	if n, err := strconv.ParseInt(numStr, 10, 64); err == nil {
		return n * mult, nil
	}

	f, err := strconv.ParseFloat(numStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size: %q", s)
	}
	return int64(f * float64(mult)), nil
}
