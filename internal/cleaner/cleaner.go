// Package cleaner projects rich-text and HTML-flavoured note payloads onto
// plain text.
//
// The rich-text stripper is intentionally minimal: it is a two-state
// machine that drops control words and group braces and keeps everything
// else. Control word parameters (the digits in \fs24) and unusual escapes
// are not interpreted and leak into the output as literal characters.
package cleaner

import (
	"log"
	"regexp"
	"strings"
	"unicode"
)

const richTextSignature = `{\rtf`

var (
	tagPattern             = regexp.MustCompile(`<[^>]+>`)
	horizontalSpacePattern = regexp.MustCompile(`[^\S\n]+`)
	newlinePattern         = regexp.MustCompile(`\s*\n\s*`)
)

// Only these entities are decoded. Anything else is left as-is.
// &amp; must stay last so that "&amp;lt;" decodes to "&lt;" and not "<".
var entityReplacer = []struct{ entity, text string }{
	{"&nbsp;", " "},
	{"&lt;", "<"},
	{"&gt;", ">"},
	{"&amp;", "&"},
}

// Clean returns the plain-text projection of raw. It never panics; an
// internal fault yields the empty string, which callers treat as "no
// usable content".
func Clean(raw string) (text string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("WARNING: cleaner recovered from panic: %v", r)
			text = ""
		}
	}()

	if raw == "" {
		return ""
	}

	switch {
	case IsRichText(raw):
		raw = StripRichText(raw)
	case IsMarkup(raw):
		raw = StripMarkup(raw)
	}

	return CollapseWhitespace(raw)
}

// IsRichText reports whether raw starts with the rich-text signature.
func IsRichText(raw string) bool {
	return strings.HasPrefix(strings.TrimLeftFunc(raw, unicode.IsSpace), richTextSignature)
}

// IsMarkup reports whether raw contains at least one <...> tag.
func IsMarkup(raw string) bool {
	return tagPattern.MatchString(raw)
}

type stripState int

const (
	stateNormal stripState = iota
	stateControlWord
)

// StripRichText removes control words and group delimiters from a
// rich-text payload.
func StripRichText(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))

	state := stateNormal
	for _, r := range raw {
		if state == stateControlWord {
			if isASCIILetter(r) {
				continue
			}
			state = stateNormal
		}

		switch r {
		case '\\':
			state = stateControlWord
		case '{', '}':
		default:
			b.WriteRune(r)
		}
	}

	return b.String()
}

// StripMarkup removes tags and decodes the fixed entity set.
func StripMarkup(raw string) string {
	text := tagPattern.ReplaceAllString(raw, "")
	for _, e := range entityReplacer {
		text = strings.ReplaceAll(text, e.entity, e.text)
	}
	return text
}

// CollapseWhitespace squeezes runs of spaces and tabs to one space and runs
// of line breaks (with any surrounding blanks) to one newline, then trims.
// Line structure is kept so that labels and titles can still be found by
// line.
func CollapseWhitespace(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = horizontalSpacePattern.ReplaceAllString(text, " ")
	text = newlinePattern.ReplaceAllString(text, "\n")
	return strings.TrimSpace(text)
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
