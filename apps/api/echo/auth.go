package echoapi

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/college/core"
	"github.com/trezcool/college/core/dashboard"
	"github.com/trezcool/college/core/user"
)

const (
	contextViewerKey = "viewer"
	sessionUserKey   = "user_id"
	tokenAudience    = "college"
	loginPath        = "/login"
	defaultNextPath  = "/dashboard"
)

var (
	errUnauthorized = echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
	errBadToken     = errors.New("unexpected token signing method")
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username,omitempty"`
}

func newSessionStore(conf *core.Config) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(conf.SecretKey))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(conf.Server.SessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   !(conf.Debug || conf.TestMode),
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

func (s *Server) newClaims(usr user.User) *Claims {
	now := time.Now()
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.Conf.AppName,
			Subject:   usr.ID,
			Audience:  jwt.ClaimStrings{tokenAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(s.Conf.Server.JWTExpirationDelta)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Username: usr.Username,
	}
}

// GenerateToken generates a signed JWT token string for the user.
func (s *Server) GenerateToken(usr user.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, s.newClaims(usr))
	ss, err := token.SignedString([]byte(s.Conf.SecretKey))
	return ss, errors.Wrap(err, "signing token")
}

func (s *Server) parseToken(tokenStr string) (*Claims, error) {
	claims := new(Claims)
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errBadToken
		}
		return []byte(s.Conf.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if !claims.VerifyAudience(tokenAudience, true) {
		return nil, errUnauthorized
	}
	return claims, nil
}

// requestUserID reads the identity from a Bearer token, else from the session cookie.
func (s *Server) requestUserID(ctx echo.Context) (string, error) {
	if auth := ctx.Request().Header.Get(echo.HeaderAuthorization); auth != "" {
		tokenStr := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer"))
		if tokenStr == "" || tokenStr == auth {
			return "", errUnauthorized
		}
		claims, err := s.parseToken(tokenStr)
		if err != nil {
			return "", errUnauthorized
		}
		return claims.Subject, nil
	}

	// a cookie that cannot be decoded yields a new, empty session
	sess, _ := s.sessions.Get(ctx.Request(), s.Conf.Server.SessionName)
	userID, _ := sess.Values[sessionUserKey].(string)
	return userID, nil
}

func (s *Server) loadViewer(ctx context.Context, userID string) (dashboard.Viewer, error) {
	usr, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return dashboard.Viewer{}, err
	}
	if !usr.IsActive {
		return dashboard.Viewer{}, user.ErrAccountDeactivated
	}
	profiles, err := s.Profiles.Lookup(ctx, usr.ID)
	if err != nil {
		return dashboard.Viewer{}, errors.Wrap(err, "looking up profiles")
	}
	return dashboard.Viewer{User: usr, Profiles: profiles}, nil
}

// identify attaches the authenticated viewer, if any, to the context.
// Unknown and deactivated identities are treated as anonymous.
func (s *Server) identify(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		userID, err := s.requestUserID(ctx)
		if err != nil {
			return err
		}
		if userID != "" {
			viewer, err := s.loadViewer(ctx.Request().Context(), userID)
			switch {
			case err == nil:
				ctx.Set(contextViewerKey, &viewer)
			case core.IsNotFound(err) || errors.Cause(err) == user.ErrAccountDeactivated:
			default:
				return errors.Wrap(err, "loading viewer")
			}
		}
		return next(ctx)
	}
}

// requireAuth redirects anonymous requests to the login page.
func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		if contextViewer(ctx) == nil {
			return ctx.Redirect(http.StatusSeeOther, loginPath+"?next="+url.QueryEscape(ctx.Request().URL.RequestURI()))
		}
		return next(ctx)
	}
}

func contextViewer(ctx echo.Context) *dashboard.Viewer {
	viewer, _ := ctx.Get(contextViewerKey).(*dashboard.Viewer)
	return viewer
}

// safeNext only allows local redirects.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return defaultNextPath
	}
	return next
}

// Handlers

type loginForm struct {
	Username string `form:"username"`
	Password string `form:"password"`
	Next     string `form:"next"`
	Error    string `form:"-"`
}

func (s *Server) loginPage(ctx echo.Context) error {
	next := safeNext(ctx.QueryParam("next"))
	if contextViewer(ctx) != nil {
		return ctx.Redirect(http.StatusSeeOther, next)
	}
	return s.render(ctx, http.StatusOK, "login", loginForm{Next: next})
}

func (s *Server) login(ctx echo.Context) error {
	form := loginForm{
		Username: ctx.FormValue("username"),
		Password: ctx.FormValue("password"),
		Next:     safeNext(ctx.FormValue("next")),
	}

	usr, err := s.Users.Authenticate(ctx.Request().Context(), form.Username, form.Password)
	if err != nil {
		switch errors.Cause(err) {
		case user.ErrAuthenticationFailed, user.ErrAccountDeactivated:
			form.Password = ""
			form.Error = errors.Cause(err).Error()
			return s.render(ctx, http.StatusBadRequest, "login", form)
		}
		return errors.Wrap(err, "authenticating")
	}

	sess, _ := s.sessions.Get(ctx.Request(), s.Conf.Server.SessionName)
	sess.Values[sessionUserKey] = usr.ID
	if err = sess.Save(ctx.Request(), ctx.Response()); err != nil {
		return errors.Wrap(err, "saving session")
	}
	return ctx.Redirect(http.StatusSeeOther, form.Next)
}

func (s *Server) logout(ctx echo.Context) error {
	sess, _ := s.sessions.Get(ctx.Request(), s.Conf.Server.SessionName)
	delete(sess.Values, sessionUserKey)
	sess.Options.MaxAge = -1
	if err := sess.Save(ctx.Request(), ctx.Response()); err != nil {
		return errors.Wrap(err, "clearing session")
	}
	return ctx.Redirect(http.StatusSeeOther, loginPath)
}

type (
	TokenRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	TokenResponse struct {
		Token string `json:"token"`
	}
)

func (tr *TokenRequest) Validate(s *Server) error {
	tr.Username = core.CleanString(tr.Username, true /* lower */)
	return s.Validate.Struct(tr)
}

func (s *Server) token(ctx echo.Context) error {
	var data TokenRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TokenRequest")
	}
	if err := data.Validate(s); err != nil {
		return err
	}

	usr, err := s.Users.Authenticate(ctx.Request().Context(), data.Username, data.Password)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}
	token, err := s.GenerateToken(usr)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, TokenResponse{Token: token})
}
