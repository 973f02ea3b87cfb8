package quran

import "fmt"

// MinPage and MaxPage bound the Indopak 15-line Mushaf pagination.
const (
	MinPage = 1
	MaxPage = 604
)

// SurahNames maps a surah number to its display name, as served by
// GET /api/quran/surah-names.
type SurahNames map[int]string

// DisplayName resolves a surah number to a name, falling back to a generic
// label when the table is missing or incomplete.
func (n SurahNames) DisplayName(surahNumber int) string {
	if name, ok := n[surahNumber]; ok && name != "" {
		return name
	}
	return fmt.Sprintf("Surah %d", surahNumber)
}

// JuzFromPage approximates the juz for a page with the fixed twenty-pages-
// per-juz division the backend also uses. Intentionally approximate.
func JuzFromPage(pageNumber int) int {
	return (pageNumber + 19) / 20
}

type surahRange struct {
	name      string
	startPage int
	endPage   int
}

// surahRanges mirrors the backend's short placeholder table, including the
// overlap at page 106 and the catch-all bucket. Kept as-is on purpose.
var surahRanges = []surahRange{
	{"Al-Fatiha", 1, 1},
	{"Al-Baqarah", 2, 49},
	{"Ali Imran", 50, 76},
	{"An-Nisa", 77, 106},
	{"Al-Maidah", 106, 128},
	{"Generic", 129, 604},
}

// SurahFromPage approximates the surah a page belongs to using the fixed
// range table. Pages outside every range resolve to "Unknown".
func SurahFromPage(pageNumber int) string {
	for _, r := range surahRanges {
		if pageNumber >= r.startPage && pageNumber <= r.endPage {
			return r.name
		}
	}
	return "Unknown"
}

// ClampPage clamps a page number into the valid Mushaf range.
func ClampPage(pageNumber int) int {
	if pageNumber < MinPage {
		return MinPage
	}
	if pageNumber > MaxPage {
		return MaxPage
	}
	return pageNumber
}
