package comicshelf

import (
	"strings"
	"time"

	"github.com/labstack/gommon/log"
)

// SiteConfig holds all configuration for a comicshelf site.
type SiteConfig struct {
	Name        string // Site name (default "Comic Reader")
	URL         string // Canonical URL (default "http://localhost:3000")
	Description string // Site description for RSS and meta tags

	Addr         string // Listen address (default ":3000")
	DatabasePath string // SQLite path (default "data/comics.db")
	LogLevel     string // debug, info, warn, error or off (default "info")

	SessionSecret string // Required: session encryption secret
	CookieSecure  bool   // Set true for HTTPS

	CatalogCacheTTL time.Duration // Comic list cache TTL (default 5min)
	LoginAttempts   int           // Failed logins allowed per LoginWindow (default 5)
	LoginWindow     time.Duration // (default 1min)
	FeedSize        int           // Chapters in feed.xml (default 20)

	MaxPageWidth int // Imported pages wider than this are downscaled (default 1600)
	CoverWidth   int // Cover width after import (default 480)
	JPEGQuality  int // Quality of imported JPEGs (default 85)
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Comic Reader"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	c.URL = strings.TrimSuffix(c.URL, "/")
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/comics.db"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.CatalogCacheTTL == 0 {
		c.CatalogCacheTTL = 5 * time.Minute
	}
	if c.LoginAttempts == 0 {
		c.LoginAttempts = 5
	}
	if c.LoginWindow == 0 {
		c.LoginWindow = time.Minute
	}
	if c.FeedSize == 0 {
		c.FeedSize = 20
	}
	if c.MaxPageWidth == 0 {
		c.MaxPageWidth = 1600
	}
	if c.CoverWidth == 0 {
		c.CoverWidth = 480
	}
	if c.JPEGQuality == 0 {
		c.JPEGQuality = 85
	}
}

// logLevel maps LogLevel onto echo's logger levels.
func (c *SiteConfig) logLevel() log.Lvl {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return log.DEBUG
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithStaticDir sets the directory for static assets and uploads (default "public").
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.staticDir = dir
	}
}

// WithStore makes the App use an already opened store instead of opening
// DatabasePath. The caller keeps ownership; Close will not close it.
func WithStore(s *Store) Option {
	return func(a *App) {
		a.Store = s
		a.sharedStore = true
	}
}
