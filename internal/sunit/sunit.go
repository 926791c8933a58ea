// Copyright 2026 The ahdl Authors.
// Licensed under the MIT license. See license text in the LICENSE file.

// Package sunit converts between float64 values and the engineering
// notation used in circuit decks: a number followed by an optional
// scale suffix, e.g. "0.5u" or "3p". Suffixes follow the usual deck
// conventions and are case-insensitive, with "meg" for 1e6 since "m"
// means milli.
package sunit

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var scales = []struct {
	suffix string
	mult   float64
}{
	// longest suffix first so "meg" is not read as milli
	{"meg", 1e6},
	{"t", 1e12},
	{"g", 1e9},
	{"k", 1e3},
	{"m", 1e-3},
	{"u", 1e-6},
	{"n", 1e-9},
	{"p", 1e-12},
	{"f", 1e-15},
}

// Parse reads a number with an optional scale suffix. Trailing unit
// letters after the suffix are ignored, so "10pF" and "1kOhm" parse the
// way deck readers treat them.
//
func Parse(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty number")
	}
	low := strings.ToLower(s)
	end := len(low)
	for end > 0 {
		c := low[end-1]
		if c >= '0' && c <= '9' || c == '.' {
			break
		}
		end--
	}
	num, rest := low[:end], low[end:]
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, errors.Errorf("malformed number %q", s)
	}
	for _, sc := range scales {
		if strings.HasPrefix(rest, sc.suffix) {
			return v * sc.mult, nil
		}
	}
	// exponent forms like 1e-6 keep their suffix inside num; anything
	// left over that is not a known scale is a plain unit name.
	return v, nil
}

// Format renders v in the shortest engineering form, preferring a scale
// suffix when the value lands on one: Format(3e-12) == "3p".
//
func Format(v float64) string {
	if v == 0 {
		return "0"
	}
	abs := v
	if abs < 0 {
		abs = -abs
	}
	for _, sc := range scales {
		q := abs / sc.mult
		if q >= 1 && q < 1000 {
			return trim(v/sc.mult) + sc.suffix
		}
	}
	return trim(v)
}

// trim rounds to 12 significant digits so the binary error of the
// scale division (5e-7/1e-9 = 499.99...) does not leak into decks.
//
func trim(v float64) string {
	return strconv.FormatFloat(v, 'g', 12, 64)
}
