// Package segmenter splits unstructured note text into discrete units.
//
// Three strategies are tried in a fixed order and the first one that finds
// anything wins; they are never combined within one document:
//
//  1. markdown-style headers ("# Title" .. "###### Title")
//  2. bullet ("- item") or numbered ("3. item") list lines
//  3. blocks separated by blank lines
//
// List items are captured one line at a time: a bullet that continues on
// the following line is truncated to its first line.
package segmenter

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/mrlokans/notecompiler/internal/entities"
)

// MaxTitleLength is the number of characters kept from a derived title
// before an ellipsis is appended.
const MaxTitleLength = 50

var (
	headerPattern     = regexp.MustCompile(`(?m)^(#{1,6})[ \t]+(.+)$`)
	listItemPattern   = regexp.MustCompile(`(?m)^(?:- |\d+\. )(.+)$`)
	blankLinesPattern = regexp.MustCompile(`\n(?:[ \t]*\n)+`)
)

// Unit is one candidate note found in a document.
type Unit struct {
	Title   string
	Content string
	// Level is the header depth for header-delimited units, zero otherwise.
	Level int
	// Source is set for units produced by the blank-line fallback.
	Source string
}

// Strategy is a single segmentation heuristic.
type Strategy interface {
	Name() string
	Segment(text string) []Unit
}

// Strategies returns the segmentation strategies in priority order.
func Strategies() []Strategy {
	return []Strategy{headerStrategy{}, listItemStrategy{}, blockStrategy{}}
}

// Segment splits text into units using the first strategy that yields
// any. It returns nil when no structure is found, in which case the caller
// should treat the whole text as a single opaque note.
func Segment(text string) []Unit {
	text = normalizeNewlines(text)
	for _, strategy := range Strategies() {
		if units := strategy.Segment(text); len(units) > 0 {
			return units
		}
	}
	return nil
}

// ClipTitle truncates title to MaxTitleLength characters, appending an
// ellipsis when anything was cut.
func ClipTitle(title string) string {
	if utf8.RuneCountInString(title) <= MaxTitleLength {
		return title
	}
	runes := []rune(title)
	return string(runes[:MaxTitleLength]) + "..."
}

// FirstLine returns the first line of text, trimmed.
func FirstLine(text string) string {
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

func normalizeNewlines(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

type headerStrategy struct{}

func (headerStrategy) Name() string { return "headers" }

// Segment starts a new unit at every header line. Content runs up to the
// next header or the end of the document; text before the first header is
// not part of any unit.
func (headerStrategy) Segment(text string) []Unit {
	matches := headerPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	units := make([]Unit, 0, len(matches))
	for i, m := range matches {
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}

		units = append(units, Unit{
			Title:   strings.TrimSpace(text[m[4]:m[5]]),
			Content: strings.TrimSpace(text[m[1]:end]),
			Level:   m[3] - m[2],
		})
	}
	return units
}

type listItemStrategy struct{}

func (listItemStrategy) Name() string { return "list-items" }

func (listItemStrategy) Segment(text string) []Unit {
	matches := listItemPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	units := make([]Unit, 0, len(matches))
	for i, m := range matches {
		units = append(units, Unit{
			Title:   fmt.Sprintf("Note %d", i+1),
			Content: strings.TrimSpace(m[1]),
		})
	}
	return units
}

type blockStrategy struct{}

func (blockStrategy) Name() string { return "blank-lines" }

// Segment splits on blank lines. A document with a single block has no
// structure and yields nothing.
func (blockStrategy) Segment(text string) []Unit {
	blocks := blankLinesPattern.Split(text, -1)
	if len(blocks) < 2 {
		return nil
	}

	var units []Unit
	for _, block := range blocks {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		units = append(units, Unit{
			Title:   ClipTitle(FirstLine(block)),
			Content: block,
			Source:  entities.SourceTextExtraction,
		})
	}
	return units
}
