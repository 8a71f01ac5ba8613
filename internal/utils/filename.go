// Package utils holds small helpers shared by the exporters.
package utils

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxFilenameLength leaves room for an extension within the usual
// 255 byte limit.
const MaxFilenameLength = 200

var (
	invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)
	multipleSpaces       = regexp.MustCompile(`\s+`)
)

// SanitizeFilename turns a site name or title into a single safe path
// element. The result never contains a separator, never starts with a dot
// and is never empty.
func SanitizeFilename(name string) string {
	name = multipleSpaces.ReplaceAllString(name, " ")
	name = invalidFilenameChars.ReplaceAllString(name, "")
	name = multipleSpaces.ReplaceAllString(name, " ")

	name = strings.ReplaceAll(name, "#", "")
	name = strings.ReplaceAll(name, "[", "(")
	name = strings.ReplaceAll(name, "]", ")")

	name = strings.TrimLeft(strings.TrimSpace(name), ".")
	name = strings.TrimSpace(name)

	if len(name) > MaxFilenameLength {
		cut := MaxFilenameLength
		for cut > 0 && !utf8.RuneStart(name[cut]) {
			cut--
		}
		name = strings.TrimSpace(name[:cut])
	}

	if name == "" {
		name = "Untitled"
	}
	return name
}
