package comicshelf

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

func isAPIPath(path string) bool {
	return path == "/api" || strings.HasPrefix(path, "/api/")
}

type apiError struct {
	Error string `json:"error"`
}

func (a *App) apiErrorHandler(err error, c echo.Context) {
	code := http.StatusInternalServerError
	msg := http.StatusText(code)
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		} else {
			msg = http.StatusText(code)
		}
	case errors.Is(err, ErrNotFound):
		code = http.StatusNotFound
		msg = "not found"
	case errors.Is(err, ErrAuthRequired):
		code = http.StatusUnauthorized
		msg = ErrAuthRequired.Error()
	}
	if code >= 500 {
		c.Logger().Errorf("api error: %v", err)
	}
	_ = c.JSON(code, apiError{Error: msg})
}

func (a *App) apiListComics(c echo.Context) error {
	comics, err := a.Catalog.ListComics(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, comics)
}

type comicResponse struct {
	Comic
	Chapters  []Chapter `json:"chapters"`
	Favorited *bool     `json:"favorited,omitempty"`
	Rating    *int      `json:"rating,omitempty"`
}

func (a *App) apiGetComic(c echo.Context) error {
	userID, _ := CurrentUser(c)
	d, err := a.loadComicDetail(c.Request().Context(), c.Param("id"), userID)
	if err != nil {
		return err
	}
	resp := comicResponse{Comic: d.comic, Chapters: d.chapters}
	if resp.Chapters == nil {
		resp.Chapters = []Chapter{}
	}
	if userID != "" {
		resp.Favorited = &d.favorited
		resp.Rating = &d.rating
	}
	return c.JSON(http.StatusOK, resp)
}

func (a *App) apiListPages(c echo.Context) error {
	pages, err := a.Store.ListPages(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if pages == nil {
		pages = []Page{}
	}
	return c.JSON(http.StatusOK, pages)
}

type favoriteResponse struct {
	ComicID   string `json:"comic_id"`
	Favorited bool   `json:"favorited"`
}

func (a *App) apiToggleFavorite(c echo.Context) error {
	userID, err := CurrentUser(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	id := c.Param("id")
	if _, err := a.Store.GetComic(ctx, id); err != nil {
		return err
	}
	on, err := a.Store.ToggleFavorite(ctx, userID, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, favoriteResponse{ComicID: id, Favorited: on})
}

type meResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

func apiMe(c echo.Context) error {
	v := viewerFrom(c)
	if !v.SignedIn() {
		return ErrAuthRequired
	}
	return c.JSON(http.StatusOK, meResponse{UserID: v.UserID, Email: v.Email})
}
