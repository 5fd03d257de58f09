package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-catalog/internal/config"
	"github.com/iliyamo/movie-catalog/internal/middleware"
	"github.com/iliyamo/movie-catalog/internal/repository"
	"github.com/iliyamo/movie-catalog/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  *repository.UserRepo
	Tokens *repository.TokenRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, t *repository.TokenRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t}
}

// ----- DTOs -----

type registerReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Username string `json:"username"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Username string `json:"username,omitempty"`
}
type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

// establishSession issues an access/refresh pair for a user and persists
// the refresh token hash. Called by Register, Login and Refresh once the
// caller has been verified.
func (h *AuthHandler) establishSession(ctx context.Context, userID string) (utils.AccessToken, utils.RefreshToken, error) {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, userID, h.Cfg.AccessTTLMin)
	if err != nil {
		return utils.AccessToken{}, utils.RefreshToken{}, err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return utils.AccessToken{}, utils.RefreshToken{}, err
	}
	if err := h.Tokens.StoreRefresh(ctx, userID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return utils.AccessToken{}, utils.RefreshToken{}, err
	}
	return access, refresh, nil
}

// Register: create user with an empty saved list and log them in
// immediately. The email existence pre-check gives a friendly 409 fast
// path; the unique index behind ErrEmailExists settles concurrent
// registrations for the same address.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password required"})
	}
	name := strings.TrimSpace(req.Name)
	username := strings.TrimSpace(req.Username)
	if username == "" {
		username = req.Email
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Users.GetByEmail(ctx, req.Email); err == nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "user with this email already exists"})
	} else if err != sql.ErrNoRows {
		c.Logger().Errorf("register: existence check failed for %s: %v", req.Email, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error during registration"})
	}

	uid, err := h.Users.Create(ctx, req.Email, req.Password, name, username, h.Cfg.BcryptCost)
	if err != nil {
		if err == repository.ErrEmailExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "user with this email already exists"})
		}
		c.Logger().Errorf("register: create user failed for %s: %v", req.Email, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error during registration"})
	}

	access, refresh, err := h.establishSession(ctx, uid)
	if err != nil {
		c.Logger().Errorf("register: session setup failed for %s: %v", uid, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error during registration"})
	}

	return c.JSON(http.StatusCreated, authResp{
		User:    userPart{ID: uid, Name: name, Email: req.Email, Username: username},
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
	})
}

// Login: verify credentials and return a fresh pair. Unknown email and
// wrong password produce byte-identical responses so the endpoint cannot
// be used to enumerate accounts.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid email or password"})
		}
		c.Logger().Errorf("login: query failed for %s: %v", req.Email, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error during login"})
	}
	// VerifyPassword also covers a corrupted stored hash: it reports a
	// plain mismatch, which keeps the response identical to a wrong
	// password while the detail lands in the log.
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		c.Logger().Warnf("login: password mismatch for %s", req.Email)
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid email or password"})
	}

	access, refresh, err := h.establishSession(ctx, u.ID)
	if err != nil {
		c.Logger().Errorf("login: session setup failed for %s: %v", u.ID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error during login"})
	}

	name := u.Name
	if name == "" {
		name = u.Username
	}
	return c.JSON(http.StatusOK, authResp{
		User:    userPart{ID: u.ID, Name: name, Email: u.Email, Username: u.Username},
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp},
	})
}

// Refresh: validate by hash, revoke old, issue new pair.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}
	raw := strings.TrimSpace(req.RefreshToken)
	hash := utils.HashRefreshRaw(raw)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
	}
	_ = h.Tokens.RevokeByHash(ctx, hash)

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		if err == sql.ErrNoRows || err == repository.ErrInvalidID {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
		}
		c.Logger().Errorf("refresh: load user %s failed: %v", userID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	access, refresh, err := h.establishSession(ctx, u.ID)
	if err != nil {
		c.Logger().Errorf("refresh: session setup failed for %s: %v", u.ID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}

	name := u.Name
	if name == "" {
		name = u.Username
	}
	return c.JSON(http.StatusOK, authResp{
		User:    userPart{ID: u.ID, Name: name, Email: u.Email, Username: u.Username},
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp},
	})
}

// Logout revokes every refresh token of the current principal. The route
// sits behind JWTAuth + LoadPrincipal, so an unauthenticated call never
// reaches this handler. Revoking an already-empty session is a no-op,
// which makes repeated logouts safe.
func (h *AuthHandler) Logout(c echo.Context) error {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Tokens.RevokeAllForUser(ctx, p.ID); err != nil {
		c.Logger().Errorf("logout: revoke failed for %s: %v", p.ID, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "logout successful"})
}

// Me returns the sanitized profile of the current principal.
func (h *AuthHandler) Me(c echo.Context) error {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user": p})
}
