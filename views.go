package comicshelf

import (
	"github.com/a-h/templ"

	"github.com/eringen/comicshelf/reader"
)

// CatalogView is the data behind the home page.
type CatalogView struct {
	Viewer
	Meta       PageMeta
	Available  []Comic
	ComingSoon []Comic
	Error      string
}

// Empty reports whether the catalog has nothing to show.
func (v CatalogView) Empty() bool {
	return len(v.Available) == 0 && len(v.ComingSoon) == 0
}

// ComicView is the data behind a comic detail page.
type ComicView struct {
	Viewer
	Meta      PageMeta
	Comic     Comic
	Chapters  []Chapter
	Favorited bool
	Rating    int
	MaxRating int
	Error     string
}

// RatingSteps lists 1..MaxRating for the rating picker.
func (v ComicView) RatingSteps() []int {
	steps := make([]int, v.MaxRating)
	for i := range steps {
		steps[i] = i + 1
	}
	return steps
}

// ReaderView is the data behind the chapter reader.
type ReaderView struct {
	Viewer
	Meta    PageMeta
	Chapter Chapter
	Comic   Comic
	State   reader.State
	Error   string
}

// PageNumber is the 1-based position of the current page, 0 when empty.
func (v ReaderView) PageNumber() int {
	if v.State.Total == 0 {
		return 0
	}
	return v.State.Index + 1
}

// FavoritesView is the data behind the favorites page.
type FavoritesView struct {
	Viewer
	Meta      PageMeta
	Favorites []Favorite
	Error     string
}

// AuthView is the data behind the sign-in and registration forms.
type AuthView struct {
	Viewer
	Meta  PageMeta
	Email string
	Next  string
	Error string
}

// ViewFuncs holds the components the handlers render. Sites supply their
// own; package views provides a default set.
type ViewFuncs struct {
	Catalog       func(v CatalogView) templ.Component
	Comic         func(v ComicView) templ.Component
	Reader        func(v ReaderView) templ.Component
	ReaderPartial func(v ReaderView) templ.Component
	Favorites     func(v FavoritesView) templ.Component
	Login         func(v AuthView) templ.Component
	Register      func(v AuthView) templ.Component
	NotFound      func() templ.Component
	ServerError   func() templ.Component
}
