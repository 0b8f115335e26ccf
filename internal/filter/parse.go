package filter

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LoadFile reads filter rules from a file and appends them to the chain.
// Lines use rsync exclude-file syntax:
//
//	- pattern  → exclude
//	+ pattern  → include
//	# comment  → skipped
//	blank      → skipped
//	bare       → exclude
func (c *Chain) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open filter file: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	lineNum := 0
	for sc.Scan() {
		lineNum++
		pattern, include, ok := parseLine(sc.Text())
		if !ok {
			continue
		}

		var addErr error
		if include {
			addErr = c.AddInclude(pattern)
		} else {
			addErr = c.AddExclude(pattern)
		}
		if addErr != nil {
			return fmt.Errorf("filter file %s line %d: %w", path, lineNum, addErr)
		}
	}
	return sc.Err()
}

// parseLine splits one filter-file line into its pattern and polarity.
// ok is false for blank lines and comments.
func parseLine(line string) (pattern string, include, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return "", false, false
	}
	switch {
	case strings.HasPrefix(line, "+ "):
		return strings.TrimSpace(line[2:]), true, true
	case strings.HasPrefix(line, "- "):
		return strings.TrimSpace(line[2:]), false, true
	default:
		return line, false, true
	}
}
