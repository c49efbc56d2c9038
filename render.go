package comicshelf

import (
	"bytes"
	"net/http"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a templ component with a specific HTTP status code.
// The component is rendered into a buffer first so a template failure still
// reaches the error handler with nothing committed.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	var buf bytes.Buffer
	if err := cmp.Render(c.Request().Context(), &buf); err != nil {
		return err
	}
	return c.HTMLBlob(code, buf.Bytes())
}

// meta builds page metadata with the site name appended to title.
func (a *App) meta(title, description string) PageMeta {
	full := a.Config.Name
	if title != "" {
		full = title + " · " + a.Config.Name
	}
	if description == "" {
		description = a.Config.Description
	}
	return PageMeta{SiteName: a.Config.Name, Title: full, Description: description, URL: a.Config.URL}
}
