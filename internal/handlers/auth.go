package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tchasinga/adminjobposter/config"
	"github.com/tchasinga/adminjobposter/internal/limits"
	"github.com/tchasinga/adminjobposter/internal/middleware"
	"github.com/tchasinga/adminjobposter/internal/models"
	"github.com/tchasinga/adminjobposter/internal/repository"
	"github.com/tchasinga/adminjobposter/internal/services"
	"github.com/tchasinga/adminjobposter/internal/utils"
)

const (
	providerEmail  = "email"
	providerGoogle = "google"

	refreshCookiePath = "/api/auth/refresh"
)

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	UpdateRefreshToken(ctx context.Context, userID, refreshToken string) error
	LinkGoogle(ctx context.Context, userID, googleID, picture string) error
	IncrementLoginAttempts(ctx context.Context, userID string) (int, error)
	LockAccount(ctx context.Context, userID string, until time.Time) error
	ResetLoginAttempts(ctx context.Context, userID string) error
}

type SigninLimiter interface {
	Allow(ctx context.Context, key string) (limits.Decision, error)
}

type IdentityProvider interface {
	Exchange(ctx context.Context, code string) (*services.GoogleProfile, error)
}

type AuthHandler struct {
	users   UserStore
	limiter SigninLimiter
	google  IdentityProvider
	lockout limits.LockoutPolicy

	jwtSecret         string
	accessExpiration  time.Duration
	refreshExpiration time.Duration
	cookieDomain      string
	cookieSecure      bool

	now func() time.Time
}

func NewAuthHandler(cfg *config.Config, users UserStore, limiter SigninLimiter, google IdentityProvider) *AuthHandler {
	return &AuthHandler{
		users:   users,
		limiter: limiter,
		google:  google,
		lockout: limits.LockoutPolicy{
			MaxAttempts:  cfg.LoginMaxAttempts,
			LockDuration: cfg.LoginLockDuration,
		},
		jwtSecret:         cfg.JWTSecret,
		accessExpiration:  cfg.JWTAccessExpiration,
		refreshExpiration: cfg.JWTRefreshExpiration,
		cookieDomain:      cfg.CookieDomain,
		cookieSecure:      cfg.CookieSecure,
		now:               time.Now,
	}
}

// Signup godoc
// @Summary Register with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body models.SignupRequest true "Account"
// @Success 201 {object} models.AuthResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}
	if !utils.ValidUsername(req.Username) {
		abortWithError(c, http.StatusBadRequest, "validation_error",
			"Username must be 3-16 characters of letters, digits or underscores")
		return
	}
	if !utils.StrongPassword(req.Password) {
		abortWithError(c, http.StatusBadRequest, "validation_error",
			"Password must be at least 8 characters and include upper and lower case letters, a digit and a special character")
		return
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		serverError(c, err, "password")
		return
	}

	user := &models.User{
		Username: req.Username,
		Email:    normalizeEmail(req.Email),
		Password: hashed,
		Provider: providerEmail,
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.users.Create(ctx, user); err != nil {
		storeError(c, err, "user")
		return
	}

	c.JSON(http.StatusCreated, models.AuthResponse{
		Message: "User created successfully",
		User:    user,
	})
}

// Signin godoc
// @Summary Sign in with email and password
// @Description Sets access_token and refresh_token HTTP-only cookies.
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body models.SigninRequest true "Credentials"
// @Success 200 {object} models.AuthResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 429 {object} models.ErrorResponse
// @Router /auth/signin [post]
func (h *AuthHandler) Signin(c *gin.Context) {
	if !h.allowSignin(c) {
		return
	}

	var req models.SigninRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "validation_error", "Email and password are required")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.users.FindByEmail(ctx, normalizeEmail(req.Email))
	switch {
	case errors.Is(err, repository.ErrNotFound):
		invalidCredentials(c)
		return
	case err != nil:
		slog.Error("signin lookup", "err", err)
		c.Header("Cache-Control", "no-store")
		abortWithError(c, http.StatusServiceUnavailable, "service_unavailable", "Service unavailable")
		return
	}

	now := h.now()
	if locked, remaining := h.lockout.Locked(user.LockedUntil, now); locked {
		abortWithError(c, http.StatusForbidden, "account_locked",
			fmt.Sprintf("Account temporarily locked. Try again in %d minute(s).", limits.RemainingMinutes(remaining)))
		return
	}
	if user.LockedUntil != nil {
		// lock expired: start a fresh count
		if err := h.users.ResetLoginAttempts(ctx, user.ID.Hex()); err != nil {
			serverError(c, err, "signin")
			return
		}
		user.LoginAttempts = 0
		user.LockedUntil = nil
	}

	if user.Password == "" || !utils.CheckPassword(user.Password, req.Password) {
		h.recordFailure(ctx, c, user, now)
		return
	}

	if user.LoginAttempts > 0 {
		if err := h.users.ResetLoginAttempts(ctx, user.ID.Hex()); err != nil {
			serverError(c, err, "signin")
			return
		}
		user.LoginAttempts = 0
	}

	if err := h.issueSession(ctx, c, user); err != nil {
		serverError(c, err, "signin")
		return
	}

	c.JSON(http.StatusOK, models.AuthResponse{
		Message: "Authentication successful",
		User:    user,
	})
}

// allowSignin applies the per-client rate limit. Limiter errors fail open.
func (h *AuthHandler) allowSignin(c *gin.Context) bool {
	d, err := h.limiter.Allow(c.Request.Context(), c.ClientIP())
	if errors.Is(err, limits.ErrLimitExceeded) {
		c.Header("Retry-After", strconv.Itoa(int(d.RetryAfter.Seconds())))
		c.Header("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		c.Header("X-RateLimit-Remaining", "0")
		abortWithError(c, http.StatusTooManyRequests, "rate_limited", "Too many requests. Please try again later.")
		return false
	}
	if err != nil {
		slog.Warn("signin rate limiter unavailable", "err", err)
		return true
	}
	if d.Limit > 0 {
		c.Header("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
	}
	return true
}

func (h *AuthHandler) recordFailure(ctx context.Context, c *gin.Context, user *models.User, now time.Time) {
	attempts, err := h.users.IncrementLoginAttempts(ctx, user.ID.Hex())
	if err != nil {
		serverError(c, err, "signin")
		return
	}

	if lock, until := h.lockout.ShouldLock(attempts, now); lock {
		if err := h.users.LockAccount(ctx, user.ID.Hex(), until); err != nil {
			serverError(c, err, "signin")
			return
		}
		abortWithError(c, http.StatusForbidden, "account_locked",
			fmt.Sprintf("Too many failed attempts. Account locked for %d minutes.", limits.RemainingMinutes(h.lockout.LockDuration)))
		return
	}
	invalidCredentials(c)
}

// Refresh godoc
// @Summary Rotate the session tokens
// @Tags auth
// @Produce json
// @Success 200 {object} models.MessageResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	token, err := c.Cookie(middleware.RefreshTokenCookie)
	if err != nil || token == "" {
		abortWithError(c, http.StatusUnauthorized, "invalid_refresh_token", "Refresh token required")
		return
	}

	claims, err := utils.ValidateToken(token, h.jwtSecret, utils.TokenTypeRefresh)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "invalid_refresh_token", "Invalid or expired refresh token")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrInvalidID) {
			abortWithError(c, http.StatusUnauthorized, "invalid_refresh_token", "User not found")
			return
		}
		serverError(c, err, "refresh")
		return
	}
	if user.RefreshToken == "" || user.RefreshToken != token {
		abortWithError(c, http.StatusUnauthorized, "invalid_refresh_token", "Refresh token not found or revoked")
		return
	}

	if err := h.issueSession(ctx, c, user); err != nil {
		serverError(c, err, "refresh")
		return
	}
	c.JSON(http.StatusOK, models.MessageResponse{Message: "Token refreshed"})
}

// GoogleAuth godoc
// @Summary Sign in with a Google authorization code
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body models.GoogleAuthRequest true "Authorization code"
// @Success 200 {object} models.AuthResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/google [post]
func (h *AuthHandler) GoogleAuth(c *gin.Context) {
	var req models.GoogleAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "validation_error", err.Error())
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	profile, err := h.google.Exchange(ctx, req.Code)
	if err != nil {
		slog.Warn("google sign-in failed", "err", err)
		abortWithError(c, http.StatusUnauthorized, "google_auth_failed", "Google sign-in failed")
		return
	}

	user, err := h.googleUser(ctx, profile)
	if err != nil {
		storeError(c, err, "user")
		return
	}

	if err := h.issueSession(ctx, c, user); err != nil {
		serverError(c, err, "google sign-in")
		return
	}
	c.JSON(http.StatusOK, models.AuthResponse{
		Message: "Authentication successful",
		User:    user,
	})
}

// googleUser finds the account for profile by Google ID, then by email
// (linking it), and creates one otherwise.
func (h *AuthHandler) googleUser(ctx context.Context, profile *services.GoogleProfile) (*models.User, error) {
	user, err := h.users.FindByGoogleID(ctx, profile.ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	email := normalizeEmail(profile.Email)
	user, err = h.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		if err := h.users.LinkGoogle(ctx, user.ID.Hex(), profile.ID, profile.Picture); err != nil {
			return nil, err
		}
		user.GoogleID = profile.ID
		if profile.Picture != "" {
			user.Picture = profile.Picture
		}
		return user, nil
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	user = &models.User{
		Username: profile.Name,
		Email:    email,
		Picture:  profile.Picture,
		Provider: providerGoogle,
		GoogleID: profile.ID,
	}
	if err := h.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Logout godoc
// @Summary Sign out
// @Tags auth
// @Produce json
// @Success 200 {object} models.MessageResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if token, err := c.Cookie(middleware.AccessTokenCookie); err == nil && token != "" {
		if claims, err := utils.ValidateToken(token, h.jwtSecret, utils.TokenTypeAccess); err == nil {
			ctx, cancel := requestContext(c)
			defer cancel()
			if err := h.users.UpdateRefreshToken(ctx, claims.UserID, ""); err != nil {
				slog.Warn("revoke refresh token", "user_id", claims.UserID, "err", err)
			}
		}
	}

	h.clearCookies(c)
	c.JSON(http.StatusOK, models.MessageResponse{Message: "Logged out successfully"})
}

// Me godoc
// @Summary Current user profile
// @Tags auth
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.users.FindByID(ctx, c.GetString(middleware.ContextUserID))
	if err != nil {
		storeError(c, err, "user")
		return
	}
	c.JSON(http.StatusOK, user)
}

// issueSession mints a token pair, stores the refresh token for rotation
// checks and sets both cookies.
func (h *AuthHandler) issueSession(ctx context.Context, c *gin.Context, user *models.User) error {
	sub := utils.TokenSubject{
		UserID:  user.ID.Hex(),
		Email:   user.Email,
		IsAdmin: user.Admin,
	}
	access, err := utils.GenerateAccessToken(sub, h.jwtSecret, h.accessExpiration)
	if err != nil {
		return fmt.Errorf("access token: %w", err)
	}
	refresh, err := utils.GenerateRefreshToken(sub, h.jwtSecret, h.refreshExpiration)
	if err != nil {
		return fmt.Errorf("refresh token: %w", err)
	}
	if err := h.users.UpdateRefreshToken(ctx, sub.UserID, refresh); err != nil {
		return fmt.Errorf("store refresh token: %w", err)
	}
	user.RefreshToken = refresh

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.AccessTokenCookie, access, int(h.accessExpiration.Seconds()), "/", h.cookieDomain, h.cookieSecure, true)
	c.SetCookie(middleware.RefreshTokenCookie, refresh, int(h.refreshExpiration.Seconds()), refreshCookiePath, h.cookieDomain, h.cookieSecure, true)
	return nil
}

func (h *AuthHandler) clearCookies(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(middleware.AccessTokenCookie, "", -1, "/", h.cookieDomain, h.cookieSecure, true)
	c.SetCookie(middleware.RefreshTokenCookie, "", -1, refreshCookiePath, h.cookieDomain, h.cookieSecure, true)
}

func invalidCredentials(c *gin.Context) {
	abortWithError(c, http.StatusUnauthorized, "invalid_credentials", "Invalid credentials")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
