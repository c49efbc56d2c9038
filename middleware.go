package comicshelf

import (
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const (
	sessionName = "comicshelf_session"
	viewerKey   = "comicshelf.viewer"
)

// feedPaths are served verbatim: no trailing slash, shared caching allowed.
var feedPaths = map[string]bool{
	"/sitemap.xml": true,
	"/feed.xml":    true,
	"/robots.txt":  true,
}

func isAssetPath(path string) bool {
	return strings.HasPrefix(path, "/public/")
}

func (a *App) setupMiddleware() {
	e := a.Echo
	e.HTTPErrorHandler = a.httpErrorHandler
	e.IPExtractor = echo.ExtractIPFromXFFHeader(
		echo.TrustLoopback(true),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(true),
	)

	e.Use(middleware.RequestID())
	e.Use(requestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level:   5,
		Skipper: func(c echo.Context) bool { return isAssetPath(c.Request().URL.Path) },
	}))
	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
		ContentSecurityPolicy: "default-src 'self'; script-src 'self'; style-src 'self'; img-src 'self' https: data:; connect-src 'self'",
		HSTSMaxAge:            31536000,
	}))
	e.Use(session.Middleware(a.newSessionStore()))
	e.Use(a.csrf())
	e.Use(viewerMiddleware)
	e.Use(middleware.AddTrailingSlashWithConfig(middleware.TrailingSlashConfig{
		RedirectCode: http.StatusMovedPermanently,
		Skipper: func(c echo.Context) bool {
			p := c.Request().URL.Path
			return isAssetPath(p) || isAPIPath(p) || feedPaths[p]
		},
	}))
	e.Use(cacheControl)
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			c.Logger().Infof("%s %s -> %d (%s) id=%s", v.Method, v.URI, v.Status, v.Latency, v.RequestID)
			return nil
		},
	})
}

// csrf guards every unsafe request. Forms post the token as _csrf, scripts
// and API clients send X-CSRF-Token.
func (a *App) csrf() echo.MiddlewareFunc {
	return middleware.CSRFWithConfig(middleware.CSRFConfig{
		TokenLookup:    "header:X-CSRF-Token,form:_csrf",
		CookieName:     "_csrf",
		CookiePath:     "/",
		CookieHTTPOnly: true,
		CookieSameSite: http.SameSiteLaxMode,
		CookieSecure:   a.Config.CookieSecure,
		ErrorHandler: func(err error, c echo.Context) error {
			if isAPIPath(c.Request().URL.Path) {
				return c.JSON(http.StatusForbidden, apiError{Error: "invalid csrf token"})
			}
			return c.String(http.StatusForbidden, "Forbidden")
		},
	})
}

// viewerMiddleware resolves the session once per request.
func viewerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		v := Viewer{CSRFToken: CsrfToken(c)}
		if sess, err := session.Get(sessionName, c); err == nil {
			v.UserID, _ = sess.Values["user_id"].(string)
			v.Email, _ = sess.Values["email"].(string)
		}
		c.Set(viewerKey, v)
		return next(c)
	}
}

// cacheControl lets shared caches keep assets and feeds; everything else can
// depend on the session.
func cacheControl(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		p := c.Request().URL.Path
		h := c.Response().Header()
		switch {
		case isAssetPath(p):
			h.Set("Cache-Control", "public, max-age=31536000, immutable")
		case feedPaths[p]:
			h.Set("Cache-Control", "public, max-age=3600")
		default:
			h.Set("Cache-Control", "private, no-cache")
		}
		return next(c)
	}
}

func (a *App) newSessionStore() *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(a.Config.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   60 * 60 * 24 * 30,
		HttpOnly: true,
		Secure:   a.Config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// CsrfToken extracts the CSRF token from the Echo context.
func CsrfToken(c echo.Context) string {
	token, _ := c.Get(middleware.DefaultCSRFConfig.ContextKey).(string)
	return token
}
