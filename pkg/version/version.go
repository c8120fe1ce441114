// Package version orders Trino release numbers.
package version

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Compare compares two dotted numeric versions. Missing parts count as zero,
// so "401" == "401.0". Non-numeric parts also count as zero.
func Compare(a, b string) int {
	ap := parts(a)
	bp := parts(b)
	for i := 0; i < max(len(ap), len(bp)); i++ {
		var x, y int
		if i < len(ap) {
			x = ap[i]
		}
		if i < len(bp) {
			y = bp[i]
		}
		if c := cmp.Compare(x, y); c != 0 {
			return c
		}
	}
	return 0
}

func parts(v string) []int {
	fields := strings.Split(strings.TrimSpace(v), ".")
	out := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			n = 0
		}
		out = append(out, n)
	}
	return out
}

// Normalize returns the pair in chronological order.
func Normalize(from, to string) (string, string, bool) {
	if Compare(from, to) > 0 {
		return to, from, true
	}
	return from, to, false
}

// MaxSpan bounds the number of releases a single Range may cover.
const MaxSpan = 1000

var (
	// ErrInvalidVersion reports a release number that is not a non-negative integer.
	ErrInvalidVersion = errors.New("invalid version")
	// ErrSpanTooLarge reports a pair of releases more than MaxSpan apart.
	ErrSpanTooLarge = errors.New("version range too large")
)

// Range lists the releases after from up to and including to.
// Both ends must be plain non-negative integers, which is how Trino numbers
// its releases, and at most MaxSpan apart.
func Range(from, to string) ([]string, error) {
	lo, err := release(from)
	if err != nil {
		return nil, err
	}
	hi, err := release(to)
	if err != nil {
		return nil, err
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	if hi-lo > MaxSpan {
		return nil, fmt.Errorf("%w: %d releases between %d and %d, limit is %d", ErrSpanTooLarge, hi-lo, lo, hi, MaxSpan)
	}
	versions := make([]string, 0, hi-lo)
	for v := lo + 1; v <= hi; v++ {
		versions = append(versions, strconv.Itoa(v))
	}
	return versions, nil
}

func release(v string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%w %q", ErrInvalidVersion, v)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w %q: must not be negative", ErrInvalidVersion, v)
	}
	return n, nil
}

// SortDescending orders versions newest first.
func SortDescending(versions []string) {
	slices.SortFunc(versions, func(a, b string) int {
		return -Compare(a, b)
	})
}
