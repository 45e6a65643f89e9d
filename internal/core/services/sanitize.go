package services

import (
	"regexp"
	"strings"
)

// DefaultBaseName is used when a title sanitizes to nothing.
const DefaultBaseName = "youtube_video"

var (
	unsafeChars        = regexp.MustCompile(`[^a-zA-Z0-9_\-]`)
	repeatedUnderscore = regexp.MustCompile(`_{2,}`)
)

// SanitizeTitle turns a video title into a file base name made only of
// [A-Za-z0-9_-] with no run of more than one underscore.
func SanitizeTitle(title string) string {
	name := unsafeChars.ReplaceAllString(strings.TrimSpace(title), "_")
	name = repeatedUnderscore.ReplaceAllString(name, "_")
	name = strings.Trim(name, "_")
	if name == "" {
		return DefaultBaseName
	}
	return name
}
