package comicshelf

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 8

// validationError is a user-facing message about rejected form input.
type validationError string

func (e validationError) Error() string { return string(e) }

// RegisterUser validates the credentials, hashes the password and stores a
// new user.
func RegisterUser(ctx context.Context, s *Store, email, password string) (User, error) {
	email = normalizeEmail(email)
	if !strings.Contains(email, "@") || strings.ContainsAny(email, " \t") {
		return User{}, validationError("Enter a valid email address.")
	}
	if len(password) < minPasswordLen {
		return User{}, validationError("Password must be at least 8 characters.")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}
	return s.CreateUser(ctx, email, string(hash))
}

// Authenticate returns the user matching email and password, or
// ErrInvalidCredentials.
func Authenticate(ctx context.Context, s *Store, email, password string) (User, error) {
	u, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

// CurrentUser returns the id of the signed-in user, or ErrAuthRequired.
func CurrentUser(c echo.Context) (string, error) {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return "", ErrAuthRequired
	}
	id, ok := sess.Values["user_id"].(string)
	if !ok || id == "" {
		return "", ErrAuthRequired
	}
	return id, nil
}

// Viewer describes who is looking at a page.
type Viewer struct {
	UserID    string
	Email     string
	CSRFToken string
}

// SignedIn reports whether the viewer has a session.
func (v Viewer) SignedIn() bool {
	return v.UserID != ""
}

// viewerFrom returns the Viewer stashed by viewerMiddleware.
func viewerFrom(c echo.Context) Viewer {
	v, _ := c.Get(viewerKey).(Viewer)
	return v
}

func setUserSession(c echo.Context, u User) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	sess.Values["user_id"] = u.ID
	sess.Values["email"] = u.Email
	return sess.Save(c.Request(), c.Response())
}

func clearUserSession(c echo.Context) error {
	sess, err := session.Get(sessionName, c)
	if err != nil {
		return err
	}
	delete(sess.Values, "user_id")
	delete(sess.Values, "email")
	sess.Options.MaxAge = -1
	return sess.Save(c.Request(), c.Response())
}

// safeNext keeps post-login redirects on this site.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return "/"
	}
	return next
}

func loginURL(next string) string {
	return "/login/?next=" + url.QueryEscape(next)
}

func (a *App) handleLoginForm(c echo.Context) error {
	return Render(c, a.Views.Login(AuthView{
		Viewer: viewerFrom(c),
		Meta:   a.meta("Sign in", ""),
		Next:   safeNext(c.QueryParam("next")),
	}))
}

func (a *App) handleLogin(c echo.Context) error {
	ip := c.RealIP()
	next := safeNext(c.FormValue("next"))
	email := c.FormValue("email")
	view := AuthView{
		Viewer: viewerFrom(c),
		Meta:   a.meta("Sign in", ""),
		Email:  email,
		Next:   next,
	}
	if !a.loginLimiter.Check(ip) {
		view.Error = "Too many login attempts. Try again later."
		return RenderStatus(c, http.StatusTooManyRequests, a.Views.Login(view))
	}
	u, err := Authenticate(c.Request().Context(), a.Store, email, c.FormValue("password"))
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			a.loginLimiter.Record(ip)
			view.Error = "Invalid email or password."
			return RenderStatus(c, http.StatusUnauthorized, a.Views.Login(view))
		}
		return err
	}
	if err := setUserSession(c, u); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, next)
}

func (a *App) handleRegisterForm(c echo.Context) error {
	return Render(c, a.Views.Register(AuthView{
		Viewer: viewerFrom(c),
		Meta:   a.meta("Create account", ""),
		Next:   safeNext(c.QueryParam("next")),
	}))
}

func (a *App) handleRegister(c echo.Context) error {
	next := safeNext(c.FormValue("next"))
	email := c.FormValue("email")
	view := AuthView{
		Viewer: viewerFrom(c),
		Meta:   a.meta("Create account", ""),
		Email:  email,
		Next:   next,
	}
	if c.FormValue("password") != c.FormValue("confirm") {
		view.Error = "Passwords do not match."
		return RenderStatus(c, http.StatusBadRequest, a.Views.Register(view))
	}
	u, err := RegisterUser(c.Request().Context(), a.Store, email, c.FormValue("password"))
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			view.Error = "An account with that email already exists."
			return RenderStatus(c, http.StatusConflict, a.Views.Register(view))
		}
		var ve validationError
		if errors.As(err, &ve) {
			view.Error = ve.Error()
			return RenderStatus(c, http.StatusBadRequest, a.Views.Register(view))
		}
		return err
	}
	if err := setUserSession(c, u); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, next)
}

func handleLogout(c echo.Context) error {
	if err := clearUserSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/")
}
