// Package comicshelf is a comic-reading web application built with Go,
// Echo, and templ. It serves a catalog of comics, comic detail pages with
// chapters, per-user favorites and ratings, and a paginated chapter reader.
//
// Sites provide their templates via the ViewFuncs struct; package views
// ships a default set.
package comicshelf

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"
)

// App is the central comicshelf application. It wires together the store,
// catalog cache, handlers, middleware, and templates.
type App struct {
	Config  SiteConfig
	Echo    *echo.Echo
	Store   *Store
	Catalog *CatalogCache
	Views   ViewFuncs

	loginLimiter *LoginLimiter
	staticDir    string
	sharedStore  bool
	ready        bool
}

// New creates a new comicshelf App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:    cfg,
		Echo:      echo.New(),
		Views:     views,
		staticDir: "public",
	}
	a.Echo.HideBanner = true
	a.Echo.Logger.SetLevel(cfg.logLevel())

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Init opens the store and registers middleware and routes. Start calls it;
// tests call it directly and drive a.Echo with httptest.
func (a *App) Init() error {
	if a.ready {
		return nil
	}
	if a.Config.SessionSecret == "" {
		return errors.New("comicshelf: SessionSecret is required")
	}

	if a.Store == nil {
		store, err := NewStore(a.Config.DatabasePath)
		if err != nil {
			return fmt.Errorf("comicshelf: init store: %w", err)
		}
		a.Store = store
	}

	a.Catalog = NewCatalogCache(a.Store, a.Config.CatalogCacheTTL)
	a.loginLimiter = NewLoginLimiter(a.Config.LoginAttempts, a.Config.LoginWindow)

	a.setupMiddleware()
	a.setupRoutes()
	a.ready = true
	return nil
}

// Start initializes the app and serves HTTP until the server stops.
func (a *App) Start() error {
	if err := a.Init(); err != nil {
		return err
	}
	a.Echo.Logger.Infof("comicshelf listening on %s", a.Config.Addr)
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (a *App) setupRoutes() {
	e := a.Echo

	assets, _ := fs.Sub(EmbeddedAssets, "embedded")
	assetHandler := echo.WrapHandler(http.StripPrefix("/public/", http.FileServer(http.FS(assets))))
	e.GET("/public/styles.css", assetHandler)
	e.GET("/public/reader.js", assetHandler)
	e.Static("/public", a.staticDir)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)

	e.GET("/", a.handleCatalog)
	e.GET("/comic/:id/", a.handleComic)
	e.POST("/comic/:id/favorite/", a.handleFavoriteToggle)
	e.POST("/comic/:id/rating/", a.handleRating)
	e.GET("/favorites/", a.handleFavorites)
	e.GET("/reader/:chapterId/", a.handleReader)

	e.GET("/login/", a.handleLoginForm)
	e.POST("/login/", a.handleLogin)
	e.GET("/register/", a.handleRegisterForm)
	e.POST("/register/", a.handleRegister)
	e.POST("/logout/", handleLogout)

	api := e.Group("/api")
	api.GET("/comics", a.apiListComics)
	api.GET("/comics/:id", a.apiGetComic)
	api.POST("/comics/:id/favorite", a.apiToggleFavorite)
	api.GET("/chapters/:id/pages", a.apiListPages)
	api.GET("/me", apiMe)
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.Store != nil && !a.sharedStore {
		return a.Store.Close()
	}
	return nil
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// MustEnv returns the value of the environment variable key, or fatally exits if empty.
func MustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("comicshelf: required environment variable %s is not set", key)
	}
	return v
}
