package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"hifztrack/internal/api"
	"hifztrack/internal/mushaf"
	"hifztrack/internal/quran"
	"hifztrack/internal/session"
)

// PageSessionCLI is the interactive Mushaf page viewer: words are hidden
// for self-testing, mistakes are toggled per word, and the session ends in
// a submission (delivered or queued).
type PageSessionCLI struct {
	*InteractiveCLI
	view    *mushaf.View
	service *session.Service
	names   quran.SurahNames
}

// NewPageSessionCLI creates the page viewer and loads the starting page.
func NewPageSessionCLI(
	ctx context.Context,
	view *mushaf.View,
	service *session.Service,
	names quran.SurahNames,
	startPage int,
) (*PageSessionCLI, error) {
	cli := &PageSessionCLI{
		InteractiveCLI: newInteractiveCLI(),
		view:           view,
		service:        service,
		names:          names,
	}
	if err := cli.goToPage(ctx, startPage); err != nil {
		return nil, err
	}
	return cli, nil
}

func (r *PageSessionCLI) Session(ctx context.Context) error {
	if err := r.renderPage(); err != nil {
		return err
	}

	input, err := r.prompt("> ")
	if err != nil {
		return err
	}
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return nil
	}

	switch fields[0] {
	case "r":
		r.view.ToggleReveal()
	case "m":
		// Bare "m" mirrors the reset shortcut; "m <id>" toggles one word.
		if len(fields) == 1 {
			r.view.ResetMistakes()
			return nil
		}
		wordID, err := strconv.Atoi(fields[1])
		if err != nil {
			return r.printHelp()
		}
		r.view.ToggleMistake(wordID)
	case "h":
		if len(fields) == 1 {
			r.view.SetHovered(nil)
			return nil
		}
		lineNumber, err := strconv.Atoi(fields[1])
		if err != nil {
			return r.printHelp()
		}
		r.view.SetHovered(&lineNumber)
	case "reset":
		r.view.ResetMistakes()
	case "n":
		return r.goToPage(ctx, r.view.PageNumber()+1)
	case "p":
		return r.goToPage(ctx, r.view.PageNumber()-1)
	case "g":
		if len(fields) != 2 {
			return r.printHelp()
		}
		pageNumber, err := strconv.Atoi(fields[1])
		if err != nil {
			return r.printHelp()
		}
		return r.goToPage(ctx, pageNumber)
	case "s":
		return r.submit(ctx)
	case "q", "quit", "exit":
		return errEnd
	default:
		return r.printHelp()
	}
	return nil
}

// goToPage clamps into the valid page range and loads. A load failure keeps
// the session alive; the failed state stays visible with a retry hint.
func (r *PageSessionCLI) goToPage(ctx context.Context, pageNumber int) error {
	pageNumber = quran.ClampPage(pageNumber)
	err := r.view.SetPage(ctx, pageNumber)
	if err == nil || errors.Is(err, mushaf.ErrSuperseded) {
		return nil
	}
	if _, err := fmt.Fprintf(r.stdoutWriter, "Failed to load page %d: %v\n", pageNumber, err); err != nil {
		return fmt.Errorf("failed to write to stdout: %w", err)
	}
	return nil
}

func (r *PageSessionCLI) renderPage() error {
	switch r.view.State() {
	case mushaf.StateLoading:
		_, err := fmt.Fprintln(r.stdoutWriter, "Loading...")
		return err
	case mushaf.StateFailed:
		if _, err := fmt.Fprintf(r.stdoutWriter, "Page %d failed to load (g %d to retry)\n",
			r.view.PageNumber(), r.view.PageNumber()); err != nil {
			return fmt.Errorf("failed to write to stdout: %w", err)
		}
		return nil
	}

	connection := "online"
	if !r.service.Online() {
		connection = "offline"
	}
	pageNumber := r.view.PageNumber()
	header := fmt.Sprintf("Page %d | %s | Juz %d | mistakes: %d | %s",
		pageNumber,
		quran.SurahFromPage(pageNumber),
		quran.JuzFromPage(pageNumber),
		len(r.view.Mistakes()),
		connection,
	)
	if _, err := r.bold.Fprintln(r.stdoutWriter, header); err != nil {
		return fmt.Errorf("failed to write to stdout: %w", err)
	}

	for _, line := range r.view.Render(r.names) {
		if err := r.renderLine(line); err != nil {
			return err
		}
	}
	return nil
}

func (r *PageSessionCLI) renderLine(line mushaf.Line) error {
	var rendered string
	switch line.Type {
	case quran.LineTypeSurahName:
		rendered = r.bold.Sprintf("== %s ==", line.SurahLabel)
	case quran.LineTypeBasmallah:
		rendered = line.Glyph
	case quran.LineTypeAyah:
		parts := make([]string, 0, len(line.Words))
		for _, word := range line.Words {
			parts = append(parts, r.renderWord(word))
		}
		rendered = strings.Join(parts, " ")
	}

	if _, err := fmt.Fprintf(r.stdoutWriter, "%3d  %s\n", line.Number, rendered); err != nil {
		return fmt.Errorf("failed to write to stdout: %w", err)
	}
	return nil
}

func (r *PageSessionCLI) renderWord(word mushaf.Word) string {
	text := word.Text
	if word.AyahMarker != "" {
		text += word.AyahMarker
	}

	var rendered string
	switch word.Tier {
	case mushaf.TierFull:
		rendered = text
	case mushaf.TierPreview:
		rendered = r.faint.Sprintf("%s", text)
	case mushaf.TierHoverPreview:
		rendered = r.hoverStyle.Sprintf("%s", text)
	default:
		rendered = r.hidden.Sprintf("%s", text)
	}

	if word.Mistake {
		rendered += r.mistakeStyle.Sprintf("[%d]", word.ID)
	}
	return rendered
}

// submit walks the rating and notes prompts, confirms, and hands the
// payload to the submission service. A queued outcome is a success.
func (r *PageSessionCLI) submit(ctx context.Context) error {
	rating, err := r.prompt(fmt.Sprintf("Rating (%s): ", strings.Join(api.Ratings, "/")))
	if err != nil {
		return err
	}
	notes, err := r.prompt("Notes (optional): ")
	if err != nil {
		return err
	}

	submission := r.service.Collect(session.CollectParams{
		PageNumber: r.view.PageNumber(),
		Mistakes:   r.view.Mistakes(),
		Rating:     rating,
		Notes:      notes,
	})

	if _, err := fmt.Fprintf(r.stdoutWriter, "Page %d | %s | Juz %d | %s | %d mistakes\n",
		submission.PageNumber, submission.SurahName, submission.Juz,
		submission.Rating, len(submission.ManualMistakes)); err != nil {
		return fmt.Errorf("failed to write to stdout: %w", err)
	}
	confirm, err := r.prompt("Submit? (y/n): ")
	if err != nil {
		return err
	}
	if confirm != "y" {
		if _, err := fmt.Fprintln(r.stdoutWriter, "Submission cancelled."); err != nil {
			return fmt.Errorf("failed to write to stdout: %w", err)
		}
		return nil
	}

	result, err := r.service.Submit(ctx, submission)
	if err != nil {
		var validationErr *session.ValidationError
		if errors.As(err, &validationErr) {
			for _, reason := range validationErr.Reasons {
				if _, err := fmt.Fprintf(r.stdoutWriter, "❌ %s\n", reason); err != nil {
					return fmt.Errorf("failed to write to stdout: %w", err)
				}
			}
			return nil
		}
		if api.IsApplicationError(err) {
			if _, err := fmt.Fprintf(r.stdoutWriter, "❌ Server rejected the submission: %v\n", err); err != nil {
				return fmt.Errorf("failed to write to stdout: %w", err)
			}
			return nil
		}
		return fmt.Errorf("service.Submit > %w", err)
	}

	switch {
	case result.Delivered:
		if _, err := fmt.Fprintf(r.stdoutWriter, "✅ Recitation saved (id %d)\n", result.Record.ID); err != nil {
			return fmt.Errorf("failed to write to stdout: %w", err)
		}
	case result.Queued:
		if _, err := fmt.Fprintln(r.stdoutWriter, "📥 Offline: submission queued for delivery"); err != nil {
			return fmt.Errorf("failed to write to stdout: %w", err)
		}
	}

	r.view.ResetMistakes()
	return nil
}

func (r *PageSessionCLI) printHelp() error {
	help := `Commands:
  r          reveal/hide the page
  m <id>     toggle a word mistake (m alone clears them all)
  h <line>   preview one line while hidden (h alone clears)
  reset      clear the page's mistakes
  n / p      next / previous page
  g <page>   go to a page (1-604)
  s          submit this session
  q          quit`
	if _, err := fmt.Fprintln(r.stdoutWriter, help); err != nil {
		return fmt.Errorf("failed to write to stdout: %w", err)
	}
	return nil
}
