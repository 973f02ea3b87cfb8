package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"hifztrack/internal/dashboard"
)

// DashboardCLI is the interactive browser over past recitation sessions.
type DashboardCLI struct {
	*InteractiveCLI
	browser  *dashboard.Browser
	debounce *dashboard.Debouncer
}

// NewDashboardCLI creates the dashboard session and loads the initial
// result set.
func NewDashboardCLI(ctx context.Context, browser *dashboard.Browser, debounceDelay time.Duration) (*DashboardCLI, error) {
	if err := browser.Load(ctx); err != nil {
		return nil, fmt.Errorf("browser.Load > %w", err)
	}
	return &DashboardCLI{
		InteractiveCLI: newInteractiveCLI(),
		browser:        browser,
		debounce:       dashboard.NewDebouncer(debounceDelay),
	}, nil
}

func (r *DashboardCLI) Session(ctx context.Context) error {
	if err := r.renderTable(); err != nil {
		return err
	}

	input, err := r.prompt("dashboard> ")
	if err != nil {
		return err
	}
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return nil
	}

	switch fields[0] {
	case "f":
		return r.editFilters(ctx)
	case "o":
		if len(fields) != 2 {
			return r.printHelp()
		}
		r.browser.ToggleSort(fields[1])
		return r.reload(ctx)
	case "n":
		r.browser.NextPage()
	case "p":
		r.browser.PrevPage()
	case "size":
		if len(fields) != 2 {
			return r.printHelp()
		}
		size, err := strconv.Atoi(fields[1])
		if err != nil {
			return r.printHelp()
		}
		r.browser.SetPageSize(size)
	case "sel":
		if len(fields) != 2 {
			return r.printHelp()
		}
		if fields[1] == "all" {
			r.browser.SelectAllOnPage()
			return nil
		}
		id, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return r.printHelp()
		}
		r.browser.ToggleSelected(id)
	case "e":
		if len(fields) < 3 {
			return r.printHelp()
		}
		return r.editField(ctx, fields[1], fields[2], strings.Join(fields[3:], " "))
	case "del":
		return r.deleteSelected(ctx)
	case "stats":
		return r.showStats(ctx)
	case "export":
		if len(fields) != 2 {
			return r.printHelp()
		}
		return r.export(fields[1])
	case "q", "quit", "exit":
		r.debounce.Stop()
		return errEnd
	default:
		return r.printHelp()
	}
	return nil
}

func (r *DashboardCLI) reload(ctx context.Context) error {
	if err := r.browser.Load(ctx); err != nil {
		if _, err := fmt.Fprintf(r.stdoutWriter, "Failed to load sessions: %v\n", err); err != nil {
			return fmt.Errorf("failed to write to stdout: %w", err)
		}
	}
	return nil
}

// editFilters walks the filter prompts. Text filters are applied through
// the debouncer so a burst of edits collapses into one reload.
func (r *DashboardCLI) editFilters(ctx context.Context) error {
	current := r.browser.Filters()

	rating, err := r.prompt(fmt.Sprintf("Rating filter [%s]: ", current.Rating))
	if err != nil {
		return err
	}
	surah, err := r.prompt(fmt.Sprintf("Surah filter [%s]: ", current.SurahName))
	if err != nil {
		return err
	}
	page, err := r.prompt(fmt.Sprintf("Page filter [%s]: ", current.PageNumber))
	if err != nil {
		return err
	}
	dateFrom, err := r.prompt(fmt.Sprintf("Date from (YYYY-MM-DD) [%s]: ", current.DateFrom))
	if err != nil {
		return err
	}
	dateTo, err := r.prompt(fmt.Sprintf("Date to (YYYY-MM-DD) [%s]: ", current.DateTo))
	if err != nil {
		return err
	}

	r.browser.SetFilters(dashboard.Filters{
		Rating:     rating,
		SurahName:  surah,
		PageNumber: page,
		DateFrom:   dateFrom,
		DateTo:     dateTo,
	})

	done := make(chan error, 1)
	r.debounce.Trigger(func() {
		done <- r.browser.Load(ctx)
	})
	if err := <-done; err != nil {
		if _, err := fmt.Fprintf(r.stdoutWriter, "Failed to load sessions: %v\n", err); err != nil {
			return fmt.Errorf("failed to write to stdout: %w", err)
		}
	}
	return nil
}

func (r *DashboardCLI) editField(ctx context.Context, idField, column, value string) error {
	id, err := strconv.ParseInt(idField, 10, 64)
	if err != nil {
		return r.printHelp()
	}
	if err := r.browser.UpdateField(ctx, id, column, value); err != nil {
		if _, err := fmt.Fprintf(r.stdoutWriter, "❌ Edit failed: %v\n", err); err != nil {
			return fmt.Errorf("failed to write to stdout: %w", err)
		}
		return nil
	}
	if _, err := fmt.Fprintf(r.stdoutWriter, "✅ Updated %s on session %d\n", column, id); err != nil {
		return fmt.Errorf("failed to write to stdout: %w", err)
	}
	return nil
}

func (r *DashboardCLI) deleteSelected(ctx context.Context) error {
	ids := r.browser.SelectedIDs()
	if len(ids) == 0 {
		if _, err := fmt.Fprintln(r.stdoutWriter, "No sessions selected."); err != nil {
			return fmt.Errorf("failed to write to stdout: %w", err)
		}
		return nil
	}

	confirm, err := r.prompt(fmt.Sprintf("Delete %d session(s)? (y/n): ", len(ids)))
	if err != nil {
		return err
	}
	if confirm != "y" {
		return nil
	}

	deleted, deleteErr := r.browser.DeleteMany(ctx, ids)
	if _, err := fmt.Fprintf(r.stdoutWriter, "Deleted %d of %d session(s)\n", deleted, len(ids)); err != nil {
		return fmt.Errorf("failed to write to stdout: %w", err)
	}
	if deleteErr != nil {
		if _, err := fmt.Fprintf(r.stdoutWriter, "❌ %v\n", deleteErr); err != nil {
			return fmt.Errorf("failed to write to stdout: %w", err)
		}
	}
	return nil
}

func (r *DashboardCLI) showStats(ctx context.Context) error {
	stats, err := r.browser.Stats(ctx)
	if err != nil {
		if _, err := fmt.Fprintf(r.stdoutWriter, "Failed to load statistics: %v\n", err); err != nil {
			return fmt.Errorf("failed to write to stdout: %w", err)
		}
		return nil
	}

	writer := table.NewWriter()
	writer.SetOutputMirror(r.stdoutWriter)
	writer.AppendHeader(table.Row{"Metric", "Value"})
	writer.AppendRow(table.Row{"Total recitations", stats.TotalRecitations})
	writer.AppendRow(table.Row{"Pages covered", stats.PagesCovered})
	writer.AppendRow(table.Row{"Surahs covered", stats.SurahsCovered})
	writer.AppendRow(table.Row{"Sessions in last 7 days", stats.RecentActivity7Days})
	for rating, count := range stats.RatingDistribution {
		writer.AppendRow(table.Row{"Rated " + rating, count})
	}
	writer.Render()
	return nil
}

func (r *DashboardCLI) export(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("os.Create(%s) > %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	if err := r.browser.ExportCSV(file); err != nil {
		return fmt.Errorf("browser.ExportCSV > %w", err)
	}
	if _, err := fmt.Fprintf(r.stdoutWriter, "Exported %d session(s) to %s\n", len(r.browser.Records()), path); err != nil {
		return fmt.Errorf("failed to write to stdout: %w", err)
	}
	return nil
}

func (r *DashboardCLI) renderTable() error {
	writer := table.NewWriter()
	writer.SetOutputMirror(r.stdoutWriter)
	writer.AppendHeader(table.Row{"", "ID", "Date", "Page", "Surah", "Juz", "Rating", "Mistakes", "Notes"})

	selected := map[int64]bool{}
	for _, id := range r.browser.SelectedIDs() {
		selected[id] = true
	}

	for _, record := range r.browser.PageRows() {
		marker := ""
		if selected[record.ID] {
			marker = "*"
		}
		writer.AppendRow(table.Row{
			marker,
			record.ID,
			record.RecitationDate,
			record.PageNumber,
			record.SurahName,
			record.Juz,
			record.Rating,
			len(record.ManualMistakes),
			truncate(record.Notes, 40),
		})
	}
	writer.Render()

	sort := r.browser.Sort()
	if _, err := fmt.Fprintf(r.stdoutWriter, "Page %d/%d | %d session(s) | sort: %s %s | %d selected\n",
		r.browser.Page(), r.browser.TotalPages(), len(r.browser.Records()),
		sort.Key, sort.Direction, len(r.browser.SelectedIDs())); err != nil {
		return fmt.Errorf("failed to write to stdout: %w", err)
	}
	return nil
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func (r *DashboardCLI) printHelp() error {
	help := `Commands:
  f                    edit filters (rating, surah, page, date range)
  o <column>           toggle sort on a column (e.g. o recitation_date)
  n / p                next / previous page
  size <n>             set the page size
  sel <id> | sel all   toggle row selection
  e <id> <col> <val>   edit a field (notes, fixed_it_date, prev_rating)
  del                  delete the selected sessions
  stats                show aggregate statistics
  export <file>        export the filtered sessions as CSV
  q                    quit`
	if _, err := fmt.Fprintln(r.stdoutWriter, help); err != nil {
		return fmt.Errorf("failed to write to stdout: %w", err)
	}
	return nil
}
