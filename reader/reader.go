// Package reader tracks which page of a chapter is on screen.
//
// A Controller owns the page sequence of one chapter and a zero-based cursor
// into it. Pages come from a Source; the controller never caches across
// chapters and never retries a failed load.
package reader

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrSuperseded is returned by Load when a newer Load started before this
// one finished. The older result is discarded.
var ErrSuperseded = errors.New("reader: load superseded by a newer request")

// Page is one image of a chapter.
type Page struct {
	ID       string `json:"id"`
	Number   *int   `json:"page_number"`
	ImageURL string `json:"image_url"`
}

// Source fetches the pages of a chapter ordered by page number ascending.
type Source interface {
	ListPages(ctx context.Context, chapterID string) ([]Page, error)
}

// SourceFunc adapts a plain function to Source.
type SourceFunc func(ctx context.Context, chapterID string) ([]Page, error)

// ListPages calls f.
func (f SourceFunc) ListPages(ctx context.Context, chapterID string) ([]Page, error) {
	return f(ctx, chapterID)
}

// Controller holds the view state of the reader.
// The zero value is not usable; call New.
type Controller struct {
	src Source

	mu        sync.Mutex
	latest    uint64
	chapterID string
	pages     []Page
	cursor    int
	err       error
}

// New returns a Controller that loads pages from src.
func New(src Source) *Controller {
	return &Controller{src: src}
}

// Load replaces the page sequence with the pages of chapterID and resets the
// cursor to 0. On failure the sequence is left empty and the error is kept
// until the next Load. A Load that is overtaken by a later Load returns
// ErrSuperseded without touching the state.
func (c *Controller) Load(ctx context.Context, chapterID string) error {
	c.mu.Lock()
	c.latest++
	token := c.latest
	c.mu.Unlock()

	pages, err := c.src.ListPages(ctx, chapterID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if token != c.latest {
		return ErrSuperseded
	}
	c.chapterID = chapterID
	c.cursor = 0
	if err != nil {
		c.pages = nil
		c.err = fmt.Errorf("load chapter %s: %w", chapterID, err)
		return c.err
	}
	c.pages = sortPages(pages)
	c.err = nil
	return nil
}

// sortPages orders pages by number ascending with unnumbered pages last.
// The sort is stable so sources that already order rows keep their order.
func sortPages(pages []Page) []Page {
	out := make([]Page, len(pages))
	copy(out, pages)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Number, out[j].Number
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a < *b
		}
	})
	return out
}

// Next advances the cursor by one. It is a no-op on the last page.
func (c *Controller) Next() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cursor < len(c.pages)-1 {
		c.cursor++
	}
}

// Previous moves the cursor back by one. It is a no-op on the first page.
func (c *Controller) Previous() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cursor > 0 {
		c.cursor--
	}
}

// Seek moves the cursor to i, clamped to the page range.
func (c *Controller) Seek(i int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case len(c.pages) == 0 || i < 0:
		c.cursor = 0
	case i > len(c.pages)-1:
		c.cursor = len(c.pages) - 1
	default:
		c.cursor = i
	}
}

// Current returns the page under the cursor. ok is false when the chapter
// has no pages.
func (c *Controller) Current() (page Page, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.pages) == 0 {
		return Page{}, false
	}
	return c.pages[c.cursor], true
}

// Cursor returns the zero-based index of the current page.
func (c *Controller) Cursor() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cursor
}

// Len returns the number of loaded pages.
func (c *Controller) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pages)
}

// HasNext reports whether Next would move the cursor.
func (c *Controller) HasNext() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cursor < len(c.pages)-1
}

// HasPrevious reports whether Previous would move the cursor.
func (c *Controller) HasPrevious() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cursor > 0
}

// Pages returns a copy of the loaded sequence.
func (c *Controller) Pages() []Page {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Page, len(c.pages))
	copy(out, c.pages)
	return out
}

// ChapterID returns the chapter of the last applied Load.
func (c *Controller) ChapterID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.chapterID
}

// Err returns the error of the last applied Load, if any.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// State is a point-in-time copy of the controller, convenient for views.
type State struct {
	ChapterID   string
	Page        Page
	HasPage     bool
	Index       int // zero-based cursor
	Total       int
	HasNext     bool
	HasPrevious bool
	Err         error
}

// Snapshot captures the current state under a single lock.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := State{
		ChapterID:   c.chapterID,
		Index:       c.cursor,
		Total:       len(c.pages),
		HasNext:     c.cursor < len(c.pages)-1,
		HasPrevious: c.cursor > 0,
		Err:         c.err,
	}
	if len(c.pages) > 0 {
		s.Page = c.pages[c.cursor]
		s.HasPage = true
	}
	return s
}
