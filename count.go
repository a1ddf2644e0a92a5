package ytcomments

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// approxCountPattern matches a rounded UI count: an optionally
// comma-grouped number with an optional fractional part and an optional
// case-insensitive K/M/B magnitude suffix, e.g. "1,234", "1.2K", "45K".
var approxCountPattern = regexp.MustCompile(`(\d+(?:,\d{3})*(?:\.\d+)?)\s*([KkMmBb])?`)

// ParseApproxCount decodes a rounded count string such as "234", "1,234",
// "1.2K" or "2.5M" into an absolute value. The second return value is
// false when the string does not start with a number.
func ParseApproxCount(s string) (int64, bool) {
	trimmed := strings.TrimSpace(s)
	loc := approxCountPattern.FindStringIndex(trimmed)
	if loc == nil || loc[0] != 0 {
		return 0, false
	}
	return decodeApproxCount(approxCountPattern.FindStringSubmatch(trimmed))
}

// ExtractApproxCount decodes the first rounded count found anywhere in a
// sentence-style label, e.g. "742 Replies" or "like this comment along
// with 1.2K other people".
func ExtractApproxCount(s string) (int64, bool) {
	m := approxCountPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	return decodeApproxCount(m)
}

func decodeApproxCount(m []string) (int64, bool) {
	num, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil {
		return 0, false
	}

	multiplier := float64(1)
	switch strings.ToUpper(m[2]) {
	case "K":
		multiplier = 1e3
	case "M":
		multiplier = 1e6
	case "B":
		multiplier = 1e9
	}

	// Round instead of truncating: 1.2 is not exactly representable, so
	// 1.2*1000 can land a hair below 1200.
	return int64(math.Round(num * multiplier)), true
}
