package brd

import (
	"strings"
	"time"
	"unicode/utf8"
)

// check accumulates violations for one record.
type check struct {
	ValidationError
}

// text enforces a required field with a minimum and maximum rune length.
func (c *check) text(field, v string, min, max int) {
	if strings.TrimSpace(v) == "" {
		c.add(field, "is required")
		return
	}
	n := utf8.RuneCountInString(v)
	if n < min {
		c.add(field, "must be at least %d characters", min)
	}
	if max > 0 && n > max {
		c.add(field, "must be at most %d characters", max)
	}
}

func (c *check) required(field, v string, max int) {
	c.text(field, v, 1, max)
}

func (c *check) optional(field, v string, max int) {
	if utf8.RuneCountInString(v) > max {
		c.add(field, "must be at most %d characters", max)
	}
}

func (c *check) oneOf(field string, ok bool, v string, opts []string) {
	if ok {
		return
	}
	if v == "" {
		c.add(field, "is required")
		return
	}
	c.add(field, "must be one of: %s (got %q)", strings.Join(opts, ", "), v)
}

func (c *check) between(field string, v, lo, hi float64) {
	if !(v >= lo && v <= hi) {
		c.add(field, "must be between %g and %g", lo, hi)
	}
}

func (c *check) date(field, v string) {
	if v == "" {
		return
	}
	if _, err := time.Parse(time.DateOnly, v); err != nil {
		c.add(field, "must be a date in YYYY-MM-DD form")
	}
}

func (c *check) prefix(field, v, p string) {
	if strings.TrimSpace(v) == "" {
		c.add(field, "is required")
		return
	}
	if !strings.HasPrefix(v, p) {
		c.add(field, "must start with %s", p)
	}
}
