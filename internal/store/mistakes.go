package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// Mistakes loads the persisted mistake word ids for a page. A page with no
// saved set yields an empty slice, not an error.
func (s *Store) Mistakes(pageNumber int) ([]int, error) {
	var raw string
	err := s.db.Get(&raw, "SELECT word_ids FROM page_mistakes WHERE page_number = ?", pageNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return []int{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db.Get(page_mistakes) > %w", err)
	}

	var wordIDs []int
	if err := json.Unmarshal([]byte(raw), &wordIDs); err != nil {
		return nil, fmt.Errorf("json.Unmarshal(page_mistakes) > %w", err)
	}
	if wordIDs == nil {
		wordIDs = []int{}
	}
	return wordIDs, nil
}

// SaveMistakes replaces the persisted mistake set for a page.
func (s *Store) SaveMistakes(pageNumber int, wordIDs []int) error {
	if wordIDs == nil {
		wordIDs = []int{}
	}
	raw, err := json.Marshal(wordIDs)
	if err != nil {
		return fmt.Errorf("json.Marshal(mistakes) > %w", err)
	}

	if _, err := s.db.Exec(
		`INSERT INTO page_mistakes (page_number, word_ids) VALUES (?, ?)
		ON CONFLICT(page_number) DO UPDATE SET word_ids = excluded.word_ids`,
		pageNumber, string(raw),
	); err != nil {
		return fmt.Errorf("db.Exec(upsert page_mistakes) > %w", err)
	}
	return nil
}
