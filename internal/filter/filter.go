// Package filter decides which files a backup run copies. Rules are
// rsync-flavored glob patterns evaluated in order, first match wins,
// with optional size bounds applied to regular files.
package filter

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Rule is a single compiled include or exclude pattern.
type Rule struct {
	pattern string
	dirOnly bool
	include bool
}

// Chain holds an ordered list of filter rules plus size bounds.
type Chain struct {
	rules   []Rule
	minSize int64
	maxSize int64
}

// NewChain creates an empty filter chain.
func NewChain() *Chain {
	return &Chain{}
}

// DefaultExcludes returns patterns for the filesystem noise removable
// media accumulate: macOS and Windows index/trash directories and
// AppleDouble sidecar files. None of it is card payload.
func DefaultExcludes() []string {
	return []string{
		".Trashes/",
		".Spotlight-V100/",
		".fseventsd/",
		".TemporaryItems/",
		"System Volume Information/",
		"$RECYCLE.BIN/",
		"._*",
		".DS_Store",
		"Thumbs.db",
	}
}

// AddExclude adds an exclude rule for the given pattern.
func (c *Chain) AddExclude(pattern string) error {
	return c.add(pattern, false)
}

// AddInclude adds an include rule for the given pattern.
func (c *Chain) AddInclude(pattern string) error {
	return c.add(pattern, true)
}

func (c *Chain) add(pattern string, include bool) error {
	r, err := compileRule(pattern, include)
	if err != nil {
		return err
	}
	c.rules = append(c.rules, r)
	return nil
}

// compileRule normalizes a pattern into doublestar form. A trailing slash
// restricts the rule to directories. A pattern containing a slash is
// anchored to the scan root; one without matches at any depth.
func compileRule(pattern string, include bool) (Rule, error) {
	r := Rule{include: include}

	p := strings.TrimSpace(pattern)
	if strings.HasSuffix(p, "/") {
		r.dirOnly = true
		p = strings.TrimSuffix(p, "/")
	}
	anchored := strings.HasPrefix(p, "/")
	p = strings.TrimPrefix(p, "/")
	if p == "" {
		return Rule{}, fmt.Errorf("empty filter pattern %q", pattern)
	}
	// A bare name floats: it may match at any depth.
	if !anchored && !strings.Contains(p, "/") {
		p = "**/" + p
	}
	if !doublestar.ValidatePattern(p) {
		return Rule{}, fmt.Errorf("invalid filter pattern %q: %w", pattern, doublestar.ErrBadPattern)
	}
	r.pattern = p
	return r, nil
}

// match tests a slash-separated relative path against this rule.
func (r Rule) match(relPath string, isDir bool) bool {
	if r.dirOnly && !isDir {
		return false
	}
	ok, err := doublestar.Match(r.pattern, relPath)
	return err == nil && ok
}

// SetMinSize sets the minimum file size bound.
func (c *Chain) SetMinSize(n int64) {
	c.minSize = n
}

// SetMaxSize sets the maximum file size bound.
func (c *Chain) SetMaxSize(n int64) {
	c.maxSize = n
}

// Empty reports whether the chain has no rules and no size bounds.
func (c *Chain) Empty() bool {
	return c == nil || (len(c.rules) == 0 && c.minSize == 0 && c.maxSize == 0)
}

// Match returns true if the path should be copied. relPath is
// slash-separated and relative to the scan root; size is ignored for
// directories.
func (c *Chain) Match(relPath string, isDir bool, size int64) bool {
	if c == nil {
		return true
	}

	// Size bounds apply only to regular files.
	if !isDir {
		if c.minSize > 0 && size < c.minSize {
			return false
		}
		if c.maxSize > 0 && size > c.maxSize {
			return false
		}
	}

	for _, rule := range c.rules {
		if rule.match(relPath, isDir) {
			return rule.include
		}
	}

	// No rule matched: include.
	return true
}
