// Package views is the default set of page templates for comicshelf. Pages
// are html/template files embedded in the binary and exposed as templ
// components, so sites can mix them with their own templ views.
package views

import (
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"strconv"
	"time"

	"github.com/a-h/templ"

	"github.com/eringen/comicshelf"
)

//go:embed templates/*.html
var files embed.FS

var funcs = template.FuncMap{
	"pathEscape": url.PathEscape,
	"readerURL":  ReaderURL,
	"isoDate":    func(t time.Time) string { return t.UTC().Format(time.RFC3339) },
	"shortDate":  func(t time.Time) string { return t.Format("Jan 2, 2006") },
}

// ReaderURL links to the reader at the 1-based page, optionally stepping with
// nav ("next" or "prev"). partial asks for just the page fragment.
func ReaderURL(chapterID string, page int, nav string, partial bool) string {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	if nav != "" {
		q.Set("nav", nav)
	}
	if partial {
		q.Set("partial", "page")
	}
	u := "/reader/" + url.PathEscape(chapterID) + "/"
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

func parse(page string) *template.Template {
	return template.Must(template.New(page).Funcs(funcs).ParseFS(files,
		"templates/layout.html", fmt.Sprintf("templates/%s.html", page)))
}

var (
	catalogTmpl     = parse("catalog")
	comicTmpl       = parse("comic")
	readerTmpl      = parse("reader")
	favoritesTmpl   = parse("favorites")
	loginTmpl       = parse("login")
	registerTmpl    = parse("register")
	notFoundTmpl    = parse("notfound")
	serverErrorTmpl = parse("servererror")
)

// staticPage is the data for pages that carry no request state.
type staticPage struct {
	comicshelf.Viewer
	Meta comicshelf.PageMeta
}

func page(t *template.Template, data any) templ.Component {
	return templ.FromGoHTML(t.Lookup("layout"), data)
}

// New returns the default views. siteName labels the error pages, which are
// rendered without a request.
func New(siteName string) comicshelf.ViewFuncs {
	return comicshelf.ViewFuncs{
		Catalog:   func(v comicshelf.CatalogView) templ.Component { return page(catalogTmpl, v) },
		Comic:     func(v comicshelf.ComicView) templ.Component { return page(comicTmpl, v) },
		Reader:    func(v comicshelf.ReaderView) templ.Component { return page(readerTmpl, v) },
		Favorites: func(v comicshelf.FavoritesView) templ.Component { return page(favoritesTmpl, v) },
		Login:     func(v comicshelf.AuthView) templ.Component { return page(loginTmpl, v) },
		Register:  func(v comicshelf.AuthView) templ.Component { return page(registerTmpl, v) },
		ReaderPartial: func(v comicshelf.ReaderView) templ.Component {
			return templ.FromGoHTML(readerTmpl.Lookup("reader-page"), v)
		},
		NotFound: func() templ.Component {
			return page(notFoundTmpl, staticPage{Meta: comicshelf.PageMeta{SiteName: siteName, Title: "Not found · " + siteName}})
		},
		ServerError: func() templ.Component {
			return page(serverErrorTmpl, staticPage{Meta: comicshelf.PageMeta{SiteName: siteName, Title: "Error · " + siteName}})
		},
	}
}
