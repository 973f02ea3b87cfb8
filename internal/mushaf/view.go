// Package mushaf renders Mushaf pages for self-testing: words are hidden by
// default, a small preview anchors the reciter, and per-word mistakes are
// tracked and persisted across sessions.
package mushaf

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"hifztrack/internal/quran"
)

// State is the page view's lifecycle state, re-entered fresh on every page
// change.
type State int

const (
	StateLoading State = iota
	StateReady
	StateFailed
)

// ErrSuperseded is returned by SetPage when a newer page change replaced
// this load before it finished; its result has been discarded.
var ErrSuperseded = errors.New("page load superseded")

var errViewClosed = errors.New("view is closed")

// MistakeStore persists per-page mistake sets.
type MistakeStore interface {
	Mistakes(pageNumber int) ([]int, error)
	SaveMistakes(pageNumber int, wordIDs []int) error
}

// View owns the state for one page's viewing session: the loaded layout,
// the mistake set, and the reveal/hover flags. Not safe for concurrent use;
// the interactive session drives it from a single loop.
type View struct {
	loader     *Loader
	store      MistakeStore
	onMistakes func(wordIDs []int)

	epoch  atomic.Int64
	cancel context.CancelFunc
	closed bool

	state      State
	lastErr    error
	pageNumber int
	page       *quran.Page

	mistakes []int
	revealed bool
	hovered  *int
}

// NewView creates a page view. onMistakes receives the full mistake set
// after every change, including the initial set restored on page load; it
// may be nil.
func NewView(loader *Loader, store MistakeStore, onMistakes func(wordIDs []int)) *View {
	return &View{
		loader:     loader,
		store:      store,
		onMistakes: onMistakes,
		mistakes:   []int{},
	}
}

// SetPage loads a page and resets the per-page state: persisted mistakes
// are restored, reveal is switched off, and hover is cleared. Calling
// SetPage again before a prior load finishes cancels the prior load; the
// stale result never overwrites state for the newer page.
func (v *View) SetPage(ctx context.Context, pageNumber int) error {
	if v.closed {
		return errViewClosed
	}
	if v.cancel != nil {
		v.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	v.cancel = cancel

	epoch := v.epoch.Add(1)
	v.state = StateLoading
	v.pageNumber = pageNumber

	page, err := v.loader.Load(ctx, pageNumber)
	if v.epoch.Load() != epoch {
		return ErrSuperseded
	}
	if err != nil {
		v.state = StateFailed
		v.lastErr = err
		return fmt.Errorf("loader.Load(%d) > %w", pageNumber, err)
	}

	v.page = page
	v.state = StateReady
	v.revealed = false
	v.hovered = nil

	mistakes, err := v.store.Mistakes(pageNumber)
	if err != nil {
		slog.Default().Warn("failed to restore mistakes, starting empty",
			"pageNumber", pageNumber,
			"error", err)
		mistakes = []int{}
	}
	v.mistakes = mistakes
	v.notify()
	return nil
}

// Close tears the view down: the in-flight load is cancelled and further
// operations become no-ops. The controller handle stops working too, so no
// stale reference can mutate a dead view.
func (v *View) Close() {
	v.closed = true
	if v.cancel != nil {
		v.cancel()
	}
}

func (v *View) State() State       { return v.state }
func (v *View) LastErr() error     { return v.lastErr }
func (v *View) PageNumber() int    { return v.pageNumber }
func (v *View) Page() *quran.Page  { return v.page }
func (v *View) Revealed() bool     { return v.revealed }
func (v *View) Hovered() *int      { return v.hovered }

// Mistakes returns a copy of the current mistake set in insertion order.
func (v *View) Mistakes() []int {
	out := make([]int, len(v.mistakes))
	copy(out, v.mistakes)
	return out
}

// ToggleReveal flips the reveal flag and clears the hovered line, which is
// meaningless while the page is revealed.
func (v *View) ToggleReveal() {
	if v.closed || v.state != StateReady {
		return
	}
	v.revealed = !v.revealed
	v.hovered = nil
}

// ToggleMistake adds the word id to the mistake set if absent and removes
// it if present. Ids outside the page's word ranges are a no-op. Every
// mutation is persisted and reported.
func (v *View) ToggleMistake(wordID int) {
	if v.closed || v.state != StateReady {
		return
	}
	if !v.page.ContainsWord(wordID) {
		return
	}

	removed := false
	for i, id := range v.mistakes {
		if id == wordID {
			v.mistakes = append(v.mistakes[:i], v.mistakes[i+1:]...)
			removed = true
			break
		}
	}
	if !removed {
		v.mistakes = append(v.mistakes, wordID)
	}
	v.persist()
	v.notify()
}

// ResetMistakes clears the mistake set, persists, and reports.
func (v *View) ResetMistakes() {
	if v.closed || v.state != StateReady {
		return
	}
	v.mistakes = []int{}
	v.persist()
	v.notify()
}

// SetHovered marks a line as hovered for the partial-preview affordance.
// A nil line clears the hover. No-op while revealed.
func (v *View) SetHovered(lineNumber *int) {
	if v.closed || v.state != StateReady || v.revealed {
		return
	}
	v.hovered = lineNumber
}

func (v *View) persist() {
	if err := v.store.SaveMistakes(v.pageNumber, v.mistakes); err != nil {
		slog.Default().Warn("failed to persist mistakes",
			"pageNumber", v.pageNumber,
			"error", err)
	}
}

func (v *View) notify() {
	if v.onMistakes != nil {
		v.onMistakes(v.Mistakes())
	}
}

// Controller is an explicit handle for cross-component access to the
// view's reveal and mistake controls, created per view lifetime. After the
// view closes the handle's methods are no-ops.
type Controller struct {
	view *View
}

// Controller returns the view's control handle.
func (v *View) Controller() *Controller {
	return &Controller{view: v}
}

func (c *Controller) Mistakes() []int { return c.view.Mistakes() }
func (c *Controller) ResetMistakes()  { c.view.ResetMistakes() }
func (c *Controller) ToggleReveal()   { c.view.ToggleReveal() }
func (c *Controller) IsRevealed() bool {
	return c.view.revealed
}
