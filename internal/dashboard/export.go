package dashboard

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

var exportHeader = []string{
	"id", "page_number", "surah_name", "juz", "rating",
	"mistake_count", "notes", "recitation_date", "fixed_it_date", "prev_rating",
}

// ExportCSV writes the full fetched result set (all pages, current filters
// and sort) as CSV.
func (b *Browser) ExportCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeader); err != nil {
		return fmt.Errorf("writer.Write > %w", err)
	}
	for _, record := range b.records {
		row := []string{
			strconv.FormatInt(record.ID, 10),
			strconv.Itoa(record.PageNumber),
			record.SurahName,
			strconv.Itoa(record.Juz),
			record.Rating,
			strconv.Itoa(len(record.ManualMistakes)),
			record.Notes,
			record.RecitationDate,
			stringOrEmpty(record.FixedItDate),
			stringOrEmpty(record.PrevRating),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writer.Write > %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("writer.Flush > %w", err)
	}
	return nil
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
