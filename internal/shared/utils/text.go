package utils

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"expopanel/internal/shared/constants"
)

var (
	stripPolicy = bluemonday.StrictPolicy()
	spaces      = regexp.MustCompile(`\s+`)
	hasMinutes  = regexp.MustCompile(`\d{2}:\d{2}$`)
	hasSeconds  = regexp.MustCompile(`\d{2}:\d{2}:\d{2}$`)
)

// Display returns s or the empty-cell placeholder.
func Display(s string) string {
	if strings.TrimSpace(s) == "" {
		return constants.EmptyCell
	}
	return s
}

// FirstNonEmpty returns the first argument that is not blank.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// PlainText strips markup from rich descriptions so table cells stay
// searchable text.
func PlainText(s string) string {
	out := html.UnescapeString(stripPolicy.Sanitize(s))
	return strings.TrimSpace(spaces.ReplaceAllString(out, " "))
}

// Clip shortens text for a table cell, appending an ellipsis when cut.
// Blank input renders as the placeholder.
func Clip(s string, n int) string {
	s = PlainText(s)
	if s == "" {
		return constants.EmptyCell
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n])) + "…"
}

// DisplayDateTime renders "YYYY-MM-DD HH:mm" from backend or form values.
func DisplayDateTime(s string) string {
	s = strings.Replace(strings.TrimSpace(s), "T", " ", 1)
	if s == "" {
		return constants.EmptyCell
	}
	if len(s) >= 16 {
		return s[:16]
	}
	return s
}

// ToSQLDateTime normalizes "YYYY-MM-DDTHH:mm" or "YYYY-MM-DD HH:mm" to
// "YYYY-MM-DD HH:mm:00". Other shapes pass through untouched.
func ToSQLDateTime(s string) string {
	base := strings.Replace(strings.TrimSpace(s), "T", " ", 1)
	switch {
	case base == "":
		return ""
	case hasSeconds.MatchString(base):
		return base
	case hasMinutes.MatchString(base):
		return base + ":00"
	default:
		return base
	}
}

// ImageURL resolves a stored image file name against base. Absolute URLs
// pass through; a blank name yields "".
func ImageURL(base, name string) string {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return ""
	case strings.HasPrefix(name, "http://"), strings.HasPrefix(name, "https://"):
		return name
	case base == "":
		return name
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(name, "/")
}
