package comicshelf

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type rssXML struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title       string    `xml:"title"`
	Link        string    `xml:"link"`
	Description string    `xml:"description"`
	Items       []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
	GUID        string `xml:"guid"`
}

// handleFeed publishes the newest chapters as RSS.
func (a *App) handleFeed(c echo.Context) error {
	releases, err := a.Store.RecentChapters(c.Request().Context(), a.Config.FeedSize)
	if err != nil {
		return err
	}
	base := a.Config.URL
	items := make([]rssItem, 0, len(releases))
	for _, r := range releases {
		link := absURL(base, "reader", r.ID)
		pubDate := ""
		if !r.CreatedAt.IsZero() {
			pubDate = r.CreatedAt.Format(time.RFC1123Z)
		}
		items = append(items, rssItem{
			Title:       r.ComicTitle + ": " + r.Label(),
			Link:        link,
			Description: "New chapter of " + r.ComicTitle,
			PubDate:     pubDate,
			GUID:        link,
		})
	}
	feed := rssXML{
		Version: "2.0",
		Channel: rssChannel{
			Title:       a.Config.Name,
			Link:        base,
			Description: a.Config.Description,
			Items:       items,
		},
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/rss+xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	c.Response().Write([]byte(xml.Header))
	return xml.NewEncoder(c.Response()).Encode(feed)
}
