// Package quran defines the page layout schema served by the backend and
// the derivations the client needs from it (word ranges, preview words,
// ayah-end markers).
package quran

import (
	"fmt"
	"sort"
)

// LineType classifies a visual line on a Mushaf page.
type LineType string

const (
	LineTypeSurahName LineType = "surah_name"
	LineTypeBasmallah LineType = "basmallah"
	LineTypeAyah      LineType = "ayah"
)

// Basmallah is the single-glyph ligature rendered for basmallah lines.
const Basmallah = "﷽"

// ayahMarkerBase is the code point the backend's glyph font reserves for
// ayah-end markers. Marker for ayah N is ayahMarkerBase + N.
const ayahMarkerBase = 0xF500

// PageLayoutLine is one visual line of a page as served by
// GET /api/quran/page-layout/{page}.
type PageLayoutLine struct {
	LineNumber  int      `json:"line_number"`
	LineType    LineType `json:"line_type"`
	IsCentered  bool     `json:"is_centered"`
	FirstWordID *int     `json:"first_word_id"`
	LastWordID  *int     `json:"last_word_id"`
	PageNumber  int      `json:"page_number"`
	SurahNumber *int     `json:"surah_number"`
	AyahNumber  *int     `json:"ayah_number"`
}

// HasWordRange reports whether the line carries a usable word id range.
func (l PageLayoutLine) HasWordRange() bool {
	return l.LineType == LineTypeAyah && l.FirstWordID != nil && l.LastWordID != nil
}

// Page is a validated page layout plus its page-scoped word table.
type Page struct {
	Number int
	Lines  []PageLayoutLine
	Words  map[int]string
}

// NewPage validates the raw layout and word table fetched from the backend
// and normalizes it into a Page. Lines are sorted by line number. Unknown
// line types and inverted word ranges are rejected rather than papered over.
func NewPage(pageNumber int, lines []PageLayoutLine, words map[int]string) (*Page, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("page %d has no layout lines", pageNumber)
	}

	seen := make(map[int]bool, len(lines))
	for _, line := range lines {
		if line.LineNumber < 1 {
			return nil, fmt.Errorf("page %d: line number %d is not 1-based", pageNumber, line.LineNumber)
		}
		if seen[line.LineNumber] {
			return nil, fmt.Errorf("page %d: duplicate line number %d", pageNumber, line.LineNumber)
		}
		seen[line.LineNumber] = true

		switch line.LineType {
		case LineTypeSurahName, LineTypeBasmallah, LineTypeAyah:
		default:
			return nil, fmt.Errorf("page %d line %d: unknown line type %q", pageNumber, line.LineNumber, line.LineType)
		}

		if line.HasWordRange() && *line.FirstWordID > *line.LastWordID {
			return nil, fmt.Errorf("page %d line %d: word range %d-%d is inverted",
				pageNumber, line.LineNumber, *line.FirstWordID, *line.LastWordID)
		}
	}

	sorted := make([]PageLayoutLine, len(lines))
	copy(sorted, lines)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].LineNumber < sorted[j].LineNumber
	})

	if words == nil {
		words = map[int]string{}
	}
	return &Page{Number: pageNumber, Lines: sorted, Words: words}, nil
}

// ContainsWord reports whether the word id falls inside any ayah line's
// range on this page.
func (p *Page) ContainsWord(wordID int) bool {
	for _, line := range p.Lines {
		if line.HasWordRange() && wordID >= *line.FirstWordID && wordID <= *line.LastWordID {
			return true
		}
	}
	return false
}

// PreviewWords returns the word ids rendered at preview opacity while the
// page is hidden: the first three word ids of the first ayah line on the
// page, and nothing else. Lines preceding the first ayah line (surah name,
// basmallah) do not shift the preview onto a later ayah line.
func (p *Page) PreviewWords() map[int]bool {
	preview := map[int]bool{}
	for _, line := range p.Lines {
		if !line.HasWordRange() {
			continue
		}
		for id := *line.FirstWordID; id <= *line.LastWordID && id < *line.FirstWordID+3; id++ {
			preview[id] = true
		}
		break
	}
	return preview
}

// AyahMarker returns the marker glyph appended after an ayah's last word.
func AyahMarker(ayahNumber int) string {
	return string(rune(ayahMarkerBase + ayahNumber))
}
