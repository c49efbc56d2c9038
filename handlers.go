package comicshelf

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"

	"github.com/eringen/comicshelf/reader"
)

func (a *App) handleCatalog(c echo.Context) error {
	view := CatalogView{Viewer: viewerFrom(c), Meta: a.meta("", "")}
	comics, err := a.Catalog.ListComics(c.Request().Context())
	if err != nil {
		c.Logger().Errorf("list comics: %v", err)
		view.Error = "Could not load comics: " + err.Error()
		return RenderStatus(c, http.StatusInternalServerError, a.Views.Catalog(view))
	}
	view.Available, view.ComingSoon = Sections(comics)
	return Render(c, a.Views.Catalog(view))
}

// comicDetail is everything the detail page shows about one comic.
type comicDetail struct {
	comic     Comic
	chapters  []Chapter
	favorited bool
	rating    int
}

// loadComicDetail fetches the comic, its chapters and, for a signed-in user,
// their favorite and rating concurrently.
func (a *App) loadComicDetail(ctx context.Context, comicID, userID string) (comicDetail, error) {
	var d comicDetail
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		comic, err := a.Store.GetComic(gctx, comicID)
		d.comic = comic
		return err
	})
	g.Go(func() error {
		chapters, err := a.Store.ListChapters(gctx, comicID)
		d.chapters = chapters
		return err
	})
	if userID != "" {
		g.Go(func() error {
			_, err := a.Store.FindFavorite(gctx, userID, comicID)
			if errors.Is(err, ErrNotFound) {
				return nil
			}
			d.favorited = err == nil
			return err
		})
		g.Go(func() error {
			rating, err := a.Store.GetRating(gctx, userID, comicID)
			d.rating = rating
			return err
		})
	}
	return d, g.Wait()
}

func (a *App) handleComic(c echo.Context) error {
	v := viewerFrom(c)
	id := c.Param("id")
	d, err := a.loadComicDetail(c.Request().Context(), id, v.UserID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		}
		c.Logger().Errorf("load comic %s: %v", id, err)
		view := ComicView{Viewer: v, Meta: a.meta("", ""), MaxRating: MaxRating, Error: err.Error()}
		return RenderStatus(c, http.StatusInternalServerError, a.Views.Comic(view))
	}
	return Render(c, a.Views.Comic(ComicView{
		Viewer:    v,
		Meta:      a.meta(d.comic.Title, d.comic.Description),
		Comic:     d.comic,
		Chapters:  d.chapters,
		Favorited: d.favorited,
		Rating:    d.rating,
		MaxRating: MaxRating,
	}))
}

func (a *App) handleFavoriteToggle(c echo.Context) error {
	id := c.Param("id")
	back := "/comic/" + id + "/"
	userID, err := CurrentUser(c)
	if err != nil {
		return c.Redirect(http.StatusSeeOther, loginURL(back))
	}
	ctx := c.Request().Context()
	if _, err := a.Store.GetComic(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		}
		return err
	}
	if _, err := a.Store.ToggleFavorite(ctx, userID, id); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, back)
}

func (a *App) handleRating(c echo.Context) error {
	id := c.Param("id")
	back := "/comic/" + id + "/"
	userID, err := CurrentUser(c)
	if err != nil {
		return c.Redirect(http.StatusSeeOther, loginURL(back))
	}
	value, err := strconv.Atoi(c.FormValue("rating"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "rating must be a number")
	}
	ctx := c.Request().Context()
	if _, err := a.Store.GetComic(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		}
		return err
	}
	if err := a.Store.SetRating(ctx, userID, id, value); err != nil {
		if errors.Is(err, ErrInvalidRating) {
			return echo.NewHTTPError(http.StatusBadRequest, "rating out of range")
		}
		return err
	}
	return c.Redirect(http.StatusSeeOther, back)
}

func (a *App) handleFavorites(c echo.Context) error {
	view := FavoritesView{Viewer: viewerFrom(c), Meta: a.meta("Favorites", "")}
	if !view.SignedIn() {
		view.Error = "Sign in required."
		return RenderStatus(c, http.StatusUnauthorized, a.Views.Favorites(view))
	}
	favorites, err := a.Store.ListFavorites(c.Request().Context(), view.UserID)
	if err != nil {
		c.Logger().Errorf("list favorites: %v", err)
		view.Error = err.Error()
		return RenderStatus(c, http.StatusInternalServerError, a.Views.Favorites(view))
	}
	view.Favorites = favorites
	return Render(c, a.Views.Favorites(view))
}

// handleReader serves one page of a chapter. The page query parameter is the
// 1-based page to show; nav=next or nav=prev steps from there.
func (a *App) handleReader(c echo.Context) error {
	ctx := c.Request().Context()
	chapterID := c.Param("chapterId")
	chapter, err := a.Store.GetChapter(ctx, chapterID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		}
		return err
	}
	comic, err := a.Store.GetComic(ctx, chapter.ComicID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	ctrl := reader.New(a.Store)
	view := ReaderView{
		Viewer:  viewerFrom(c),
		Meta:    a.meta(strings.TrimSpace(comic.Title+" "+chapter.Label()), ""),
		Chapter: chapter,
		Comic:   comic,
	}
	status := http.StatusOK
	if err := ctrl.Load(ctx, chapterID); err != nil {
		c.Logger().Errorf("load pages: %v", err)
		view.Error = err.Error()
		status = http.StatusInternalServerError
	} else {
		if n, err := strconv.Atoi(c.QueryParam("page")); err == nil && n > 0 {
			ctrl.Seek(n - 1)
		}
		switch c.QueryParam("nav") {
		case "next":
			ctrl.Next()
		case "prev":
			ctrl.Previous()
		}
	}
	view.State = ctrl.Snapshot()

	if c.Request().Header.Get("HX-Request") == "true" && c.QueryParam("partial") == "page" {
		return RenderStatus(c, status, a.Views.ReaderPartial(view))
	}
	return RenderStatus(c, status, a.Views.Reader(view))
}

func (a *App) handleRobots(c echo.Context) error {
	body := "User-agent: *\nAllow: /\nDisallow: /api/\nDisallow: /login/\nDisallow: /register/\n\nSitemap: " +
		a.Config.URL + "/sitemap.xml\n"
	return c.String(http.StatusOK, body)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	if isAPIPath(c.Request().URL.Path) {
		a.apiErrorHandler(err, c)
		return
	}
	he, ok := err.(*echo.HTTPError)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		_ = RenderStatus(c, code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
