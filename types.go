package comicshelf

import (
	"strconv"
	"time"

	"github.com/eringen/comicshelf/reader"
)

// MaxRating is the highest score a reader can give a comic.
const MaxRating = 5

// Comic is a title in the catalog.
type Comic struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Author      string `json:"author,omitempty"`
	Description string `json:"description,omitempty"`
	CoverURL    string `json:"cover_url,omitempty"`
	ComingSoon  bool   `json:"coming_soon"`
}

// Chapter is an ordered grouping of pages belonging to a comic.
type Chapter struct {
	ID        string    `json:"id"`
	ComicID   string    `json:"comic_id"`
	Title     string    `json:"title,omitempty"`
	Number    *int      `json:"number"`
	CreatedAt time.Time `json:"created_at"`
}

// Label renders "Chapter 3 · Title", falling back to "Chapter" when the
// number is missing.
func (ch Chapter) Label() string {
	label := "Chapter"
	if ch.Number != nil && *ch.Number != 0 {
		label = "Chapter " + strconv.Itoa(*ch.Number)
	}
	if ch.Title != "" {
		label += " · " + ch.Title
	}
	return label
}

// Page is one chapter image. The reader package owns the type so the store
// can serve as its data source directly.
type Page = reader.Page

// Favorite links a user to a comic.
type Favorite struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	ComicID   string    `json:"comic_id"`
	CreatedAt time.Time `json:"created_at"`
	Comic     *Comic    `json:"comic"`
}

// User is a registered reader.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// PageMeta carries per-page title and description into the <head> template.
type PageMeta struct {
	SiteName    string
	Title       string
	Description string
	URL         string
}
