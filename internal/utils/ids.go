package utils

import (
	"regexp"
	"strings"
)

var (
	trailingDigits = regexp.MustCompile(`(\d+)\n?$`)
	nonAlnum       = regexp.MustCompile(`[^a-zA-Z0-9]`)
	nonAlnumRun    = regexp.MustCompile(`[^a-z0-9]+`)
)

// DayID derives a day identifier from its label: "Day 1" -> "1".
// Labels without a trailing number fall back to the label with every
// non-alphanumeric character removed, lowercased.
func DayID(label string) string {
	if m := trailingDigits.FindStringSubmatch(label); m != nil {
		return m[1]
	}
	return strings.ToLower(nonAlnum.ReplaceAllString(label, ""))
}

// Slugify lowercases s and collapses every run of non-alphanumeric
// characters into a single hyphen, trimming hyphens at both ends.
func Slugify(s string) string {
	slug := nonAlnumRun.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(slug, "-")
}

// EventID derives an event identifier from its day and name:
// ("2", "Bible Study") -> "2-bible-study".
func EventID(dayID, name string) string {
	return dayID + "-" + Slugify(name)
}
