package util

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	// multiSpacePattern matches runs of whitespace, including full-width spaces.
	multiSpacePattern = regexp.MustCompile(`[\s\x{3000}]+`)
	// leadingNumberPattern matches the numeric prefix parseFloat-style parsers accept.
	leadingNumberPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?`)
)

// NormalizeKey maps a sheet column header to its canonical lower_snake_case key.
// "Age Group", " age group " and "AGE_GROUP" all become "age_group".
func NormalizeKey(key string) string {
	key = strings.TrimSpace(key)
	key = multiSpacePattern.ReplaceAllString(key, "_")
	return strings.ToLower(key)
}

// CleanField trims a free-text value and collapses inner whitespace.
func CleanField(s string) string {
	if s == "" {
		return ""
	}
	s = multiSpacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// ParseLeadingFloat parses the numeric prefix of s ("100", " 88.5 ", "500元").
// Thousands separators are dropped first. ok is false when s has no numeric prefix.
func ParseLeadingFloat(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimPrefix(s, "HK$")
	m := leadingNumberPattern.FindString(s)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
