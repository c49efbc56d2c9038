package comicshelf

import (
	"encoding/xml"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// absURL joins base and the escaped path segments into a canonical URL with
// a trailing slash.
func absURL(base string, segments ...string) string {
	var b strings.Builder
	b.WriteString(strings.TrimSuffix(base, "/"))
	b.WriteByte('/')
	for _, seg := range segments {
		b.WriteString(url.PathEscape(seg))
		b.WriteByte('/')
	}
	return b.String()
}

// handleSitemap lists the home page, every comic and every chapter reader.
func (a *App) handleSitemap(c echo.Context) error {
	ctx := c.Request().Context()
	comics, err := a.Catalog.ListComics(ctx)
	if err != nil {
		return err
	}
	base := a.Config.URL
	urls := []sitemapURL{
		{Loc: absURL(base)},
	}
	for _, comic := range comics {
		urls = append(urls, sitemapURL{Loc: absURL(base, "comic", comic.ID)})
		if comic.ComingSoon {
			continue
		}
		chapters, err := a.Store.ListChapters(ctx, comic.ID)
		if err != nil {
			return err
		}
		for _, ch := range chapters {
			u := sitemapURL{Loc: absURL(base, "reader", ch.ID)}
			if !ch.CreatedAt.IsZero() {
				u.LastMod = ch.CreatedAt.Format("2006-01-02")
			}
			urls = append(urls, u)
		}
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(sitemap)
}
