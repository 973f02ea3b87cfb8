// Package dashboard implements the historical-session browser: server-driven
// filtering and sorting, client-side pagination over the fetched result set,
// inline field edits, and bulk deletion.
package dashboard

import (
	"context"
	"fmt"
	"strings"

	"hifztrack/internal/api"
)

// Client is the slice of the backend API the dashboard needs.
type Client interface {
	ListRecitations(ctx context.Context, params map[string]string) ([]api.Recitation, error)
	UpdateRecitation(ctx context.Context, id int64, update api.RecitationUpdate) (*api.Recitation, error)
	DeleteRecitation(ctx context.Context, id int64) error
	GetStats(ctx context.Context) (*api.Stats, error)
}

// Filters are combined into the list query; empty fields are omitted.
type Filters struct {
	Rating     string
	SurahName  string
	PageNumber string
	DateFrom   string
	DateTo     string
}

// Sort holds the column and direction delegated to the server's order_by.
type Sort struct {
	Key       string
	Direction string // "asc" or "desc"
}

// Toggle switches direction on a repeated key and resets to ascending on a
// new key.
func (s *Sort) Toggle(key string) {
	if s.Key == key && s.Direction == "asc" {
		s.Direction = "desc"
		return
	}
	s.Key = key
	s.Direction = "asc"
}

// OrderBy renders the order_by query parameter, e.g. "recitation_date DESC".
func (s Sort) OrderBy() string {
	return s.Key + " " + strings.ToUpper(s.Direction)
}

// Browser drives the dashboard view over the backend's recitation records.
type Browser struct {
	client   Client
	filters  Filters
	sort     Sort
	records  []api.Recitation
	page     int
	pageSize int
	selected map[int64]bool
}

// NewBrowser creates a dashboard browser sorted by most recent session
// first.
func NewBrowser(client Client, pageSize int) *Browser {
	if pageSize <= 0 {
		pageSize = 25
	}
	return &Browser{
		client:   client,
		sort:     Sort{Key: "recitation_date", Direction: "desc"},
		page:     1,
		pageSize: pageSize,
		selected: map[int64]bool{},
	}
}

// queryParams combines filters and sorting into the list query.
func (b *Browser) queryParams() map[string]string {
	return map[string]string{
		"rating":      b.filters.Rating,
		"surah_name":  b.filters.SurahName,
		"page_number": b.filters.PageNumber,
		"date_from":   b.filters.DateFrom,
		"date_to":     b.filters.DateTo,
		"order_by":    b.sort.OrderBy(),
	}
}

// Load fetches the filtered, server-sorted result set.
func (b *Browser) Load(ctx context.Context) error {
	records, err := b.client.ListRecitations(ctx, b.queryParams())
	if err != nil {
		return fmt.Errorf("client.ListRecitations > %w", err)
	}
	b.records = records
	if b.page > b.TotalPages() {
		b.page = b.TotalPages()
	}
	return nil
}

// SetFilters replaces the filters and jumps back to the first page. The
// caller reloads afterwards.
func (b *Browser) SetFilters(filters Filters) {
	b.filters = filters
	b.page = 1
}

func (b *Browser) Filters() Filters { return b.filters }

// ToggleSort toggles the sort on a column. The caller reloads afterwards.
func (b *Browser) ToggleSort(key string) {
	b.sort.Toggle(key)
}

func (b *Browser) Sort() Sort { return b.sort }

// Records returns the full fetched result set.
func (b *Browser) Records() []api.Recitation { return b.records }

// PageRows returns the slice of records visible on the current page.
func (b *Browser) PageRows() []api.Recitation {
	start := (b.page - 1) * b.pageSize
	if start >= len(b.records) {
		return nil
	}
	end := start + b.pageSize
	if end > len(b.records) {
		end = len(b.records)
	}
	return b.records[start:end]
}

// TotalPages is at least 1 even for an empty result set.
func (b *Browser) TotalPages() int {
	pages := (len(b.records) + b.pageSize - 1) / b.pageSize
	if pages < 1 {
		pages = 1
	}
	return pages
}

func (b *Browser) Page() int     { return b.page }
func (b *Browser) PageSize() int { return b.pageSize }

// SetPage clamps into [1, TotalPages].
func (b *Browser) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	if page > b.TotalPages() {
		page = b.TotalPages()
	}
	b.page = page
}

func (b *Browser) NextPage() { b.SetPage(b.page + 1) }
func (b *Browser) PrevPage() { b.SetPage(b.page - 1) }

// SetPageSize changes the page size and jumps back to the first page.
func (b *Browser) SetPageSize(size int) {
	if size <= 0 {
		return
	}
	b.pageSize = size
	b.page = 1
}

// ToggleSelected flips a row's membership in the bulk selection.
func (b *Browser) ToggleSelected(id int64) {
	if b.selected[id] {
		delete(b.selected, id)
		return
	}
	b.selected[id] = true
}

// SelectAllOnPage selects every row on the current page, or clears the
// selection if all of them were already selected.
func (b *Browser) SelectAllOnPage() {
	rows := b.PageRows()
	all := len(rows) > 0
	for _, row := range rows {
		if !b.selected[row.ID] {
			all = false
			break
		}
	}
	if all {
		b.selected = map[int64]bool{}
		return
	}
	for _, row := range rows {
		b.selected[row.ID] = true
	}
}

// SelectedIDs returns the selected row ids in record order.
func (b *Browser) SelectedIDs() []int64 {
	ids := make([]int64, 0, len(b.selected))
	for _, record := range b.records {
		if b.selected[record.ID] {
			ids = append(ids, record.ID)
		}
	}
	return ids
}

// ClearSelection empties the bulk selection.
func (b *Browser) ClearSelection() {
	b.selected = map[int64]bool{}
}

// Editable columns for inline edits.
const (
	ColumnNotes       = "notes"
	ColumnFixedItDate = "fixed_it_date"
	ColumnPrevRating  = "prev_rating"
)

// UpdateField commits a single-field inline edit and patches the local
// record on success.
func (b *Browser) UpdateField(ctx context.Context, id int64, column, value string) error {
	var update api.RecitationUpdate
	switch column {
	case ColumnNotes:
		update.Notes = &value
	case ColumnFixedItDate:
		update.FixedItDate = &value
	case ColumnPrevRating:
		update.PrevRating = &value
	default:
		return fmt.Errorf("column %q is not editable", column)
	}

	if _, err := b.client.UpdateRecitation(ctx, id, update); err != nil {
		return fmt.Errorf("client.UpdateRecitation(%d) > %w", id, err)
	}

	for i := range b.records {
		if b.records[i].ID != id {
			continue
		}
		switch column {
		case ColumnNotes:
			b.records[i].Notes = value
		case ColumnFixedItDate:
			b.records[i].FixedItDate = &value
		case ColumnPrevRating:
			b.records[i].PrevRating = &value
		}
		break
	}
	return nil
}

// DeleteMany deletes each selected record with an independent call. A
// failure on one row does not stop or roll back the others; rows that did
// delete are removed locally and the first failure is returned for display.
func (b *Browser) DeleteMany(ctx context.Context, ids []int64) (int, error) {
	var firstErr error
	deleted := map[int64]bool{}
	for _, id := range ids {
		if err := b.client.DeleteRecitation(ctx, id); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("client.DeleteRecitation(%d) > %w", id, err)
			}
			continue
		}
		deleted[id] = true
		delete(b.selected, id)
	}

	if len(deleted) > 0 {
		kept := b.records[:0]
		for _, record := range b.records {
			if !deleted[record.ID] {
				kept = append(kept, record)
			}
		}
		b.records = kept
		if b.page > b.TotalPages() {
			b.page = b.TotalPages()
		}
	}
	return len(deleted), firstErr
}

// Stats fetches the aggregate statistics view.
func (b *Browser) Stats(ctx context.Context) (*api.Stats, error) {
	stats, err := b.client.GetStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("client.GetStats > %w", err)
	}
	return stats, nil
}
