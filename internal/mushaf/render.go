package mushaf

import (
	"hifztrack/internal/quran"
)

// Tier is a word's visual opacity tier. Exactly one tier applies per word.
type Tier int

const (
	// TierHidden is the near-zero opacity used while the page is hidden.
	TierHidden Tier = iota
	// TierPreview marks the first few words of the page's first ayah line,
	// shown faintly as a starting anchor.
	TierPreview
	// TierHoverPreview lifts the words of the hovered line while hidden.
	TierHoverPreview
	// TierFull is normal visibility when the page is revealed.
	TierFull
)

// Word is one rendered word with its tier, mistake marking, and optional
// ayah-end marker glyph (which shares the word's tier).
type Word struct {
	ID         int
	Text       string
	Tier       Tier
	Mistake    bool
	AyahMarker string
}

// Line is one rendered visual line in display order.
type Line struct {
	Number     int
	Type       quran.LineType
	Centered   bool
	Dimmed     bool
	SurahLabel string
	Glyph      string
	Words      []Word
}

// Render produces the structured rendering of the view's current page.
// Returns nil unless the view is Ready.
func (v *View) Render(names quran.SurahNames) []Line {
	if v.state != StateReady {
		return nil
	}
	return RenderPage(v.page, names, v.revealed, v.hovered, v.mistakes)
}

// RenderPage renders a page's lines in ascending line order.
//
// While hidden, words in the preview set (the first three word ids of the
// first ayah line) render at preview tier, words on the hovered line at
// hover-preview tier, and everything else at hidden tier. Revealed pages
// render everything at full tier. Mistake marking is independent of tier.
func RenderPage(page *quran.Page, names quran.SurahNames, revealed bool, hovered *int, mistakes []int) []Line {
	mistakeSet := make(map[int]bool, len(mistakes))
	for _, id := range mistakes {
		mistakeSet[id] = true
	}
	preview := page.PreviewWords()

	lines := make([]Line, 0, len(page.Lines))
	for _, layoutLine := range page.Lines {
		line := Line{
			Number:   layoutLine.LineNumber,
			Type:     layoutLine.LineType,
			Centered: layoutLine.IsCentered,
			Dimmed:   !revealed,
		}

		switch layoutLine.LineType {
		case quran.LineTypeSurahName:
			line.SurahLabel = surahLabel(layoutLine, names)
		case quran.LineTypeBasmallah:
			line.Glyph = quran.Basmallah
		case quran.LineTypeAyah:
			if layoutLine.HasWordRange() {
				line.Words = renderWords(page, layoutLine, revealed, hovered, preview, mistakeSet)
			}
		}
		lines = append(lines, line)
	}
	return lines
}

func surahLabel(line quran.PageLayoutLine, names quran.SurahNames) string {
	if line.SurahNumber == nil {
		return "Surah"
	}
	return names.DisplayName(*line.SurahNumber)
}

func renderWords(
	page *quran.Page,
	line quran.PageLayoutLine,
	revealed bool,
	hovered *int,
	preview map[int]bool,
	mistakeSet map[int]bool,
) []Word {
	words := make([]Word, 0, *line.LastWordID-*line.FirstWordID+1)
	for id := *line.FirstWordID; id <= *line.LastWordID; id++ {
		text, ok := page.Words[id]
		if !ok {
			// No text for this id on this page; render nothing for it.
			continue
		}

		word := Word{
			ID:      id,
			Text:    text,
			Tier:    wordTier(id, line.LineNumber, revealed, hovered, preview),
			Mistake: mistakeSet[id],
		}
		if id == *line.LastWordID && line.AyahNumber != nil {
			word.AyahMarker = quran.AyahMarker(*line.AyahNumber)
		}
		words = append(words, word)
	}
	return words
}

func wordTier(wordID, lineNumber int, revealed bool, hovered *int, preview map[int]bool) Tier {
	if revealed {
		return TierFull
	}
	if preview[wordID] {
		return TierPreview
	}
	if hovered != nil && *hovered == lineNumber {
		return TierHoverPreview
	}
	return TierHidden
}
