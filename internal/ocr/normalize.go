package ocr

import (
	"regexp"
	"strings"
)

var (
	reBoxNoise   = regexp.MustCompile(`(?m)^\s*[_\-=*]{3,}\s*$`)
	reWhitespace = regexp.MustCompile(`\s+`)
)

// Text is normalized OCR output: Original keeps the caller's casing, Lower is used for matching.
type Text struct {
	Original string
	Lower    string
}

// Empty reports whether nothing readable survived normalization.
func (t Text) Empty() bool { return t.Original == "" }

// Normalize drops ruler lines ("-----", "_____"), collapses every whitespace run
// (newlines included) to a single space and trims. Empty input yields an empty Text.
func Normalize(raw string) Text {
	if raw == "" {
		return Text{}
	}
	s := reBoxNoise.ReplaceAllString(raw, " ")
	s = strings.TrimSpace(reWhitespace.ReplaceAllString(s, " "))
	return Text{Original: s, Lower: strings.ToLower(s)}
}
