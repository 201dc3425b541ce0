package util

import (
	"regexp"
	"strings"

	"github.com/gta-invest/propertymap/pkg/model"
)

var (
	// htmlTagPattern matches HTML tags like <span>, </span>, <wbr>.
	htmlTagPattern = regexp.MustCompile(`<[^>]*>`)
	// multiSpacePattern matches runs of whitespace.
	multiSpacePattern = regexp.MustCompile(`\s+`)
	// countrySuffixPattern matches a trailing ", Canada" left by geocoders.
	countrySuffixPattern = regexp.MustCompile(`(?i),?\s*canada\s*$`)
)

// CleanProperty normalizes the address fields of a property. Other fields are untouched.
func CleanProperty(p model.Property) model.Property {
	p.Address = CleanAddress(p.Address)
	p.City = CleanAddress(p.City)
	p.State = strings.ToUpper(CleanAddress(p.State))
	p.ZipCode = strings.ToUpper(CleanAddress(p.ZipCode))
	return p
}

// CleanLocationScore normalizes the address used as the join key.
func CleanLocationScore(s model.LocationScore) model.LocationScore {
	s.Address = CleanAddress(s.Address)
	return s
}

// CleanAddress removes HTML remnants, decodes common entities and collapses whitespace.
// Case is preserved because the property/score join and the region keywords are case-sensitive.
func CleanAddress(s string) string {
	if s == "" {
		return ""
	}

	s = strings.ReplaceAll(s, `<\/`, `</`)
	s = strings.ReplaceAll(s, `\/`, `/`)
	s = htmlTagPattern.ReplaceAllString(s, "")

	s = strings.ReplaceAll(s, "&amp;", "&")
	s = strings.ReplaceAll(s, "&lt;", "<")
	s = strings.ReplaceAll(s, "&gt;", ">")
	s = strings.ReplaceAll(s, "&quot;", `"`)
	s = strings.ReplaceAll(s, "&#39;", "'")
	s = strings.ReplaceAll(s, "&nbsp;", " ")

	s = multiSpacePattern.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	s = countrySuffixPattern.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// NeedsCleanup reports whether CleanAddress would change the value.
func NeedsCleanup(s string) bool {
	return CleanAddress(s) != s
}
