package client

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultBaseName names downloads whose response carries no usable filename.
const DefaultBaseName = "youtube_video"

// filenameParser returns the filename found in a Content-Disposition value.
type filenameParser func(header string) (string, bool)

// Tried in order, first match wins. The server only sends the quoted form;
// the RFC 5987 form is accepted as well.
var filenameParsers = []filenameParser{
	parseExtendedFilename,
	parseQuotedFilename,
}

var (
	extendedFilename = regexp.MustCompile(`(?i)filename\*\s*=\s*UTF-8''([^;]*)`)
	quotedFilename   = regexp.MustCompile(`(?i)filename\s*=\s*"([^"]+)"`)
)

// ExtractFilename recovers the download name from a Content-Disposition
// header value, defaulting to youtube_video.<fallbackExt>.
func ExtractFilename(header, fallbackExt string) string {
	if strings.TrimSpace(header) != "" {
		for _, parse := range filenameParsers {
			if name, ok := parse(header); ok {
				return name
			}
		}
	}
	return DefaultFilename(fallbackExt)
}

func DefaultFilename(ext string) string {
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		return DefaultBaseName
	}
	return DefaultBaseName + "." + ext
}

func parseExtendedFilename(header string) (string, bool) {
	m := extendedFilename.FindStringSubmatch(header)
	if m == nil {
		return "", false
	}
	encoded := strings.Trim(strings.TrimSpace(m[1]), `"`)
	name, err := url.PathUnescape(encoded)
	if err != nil || name == "" || !utf8.ValidString(name) {
		return "", false
	}
	return name, true
}

func parseQuotedFilename(header string) (string, bool) {
	m := quotedFilename.FindStringSubmatch(header)
	if m == nil {
		return "", false
	}
	return m[1], true
}
