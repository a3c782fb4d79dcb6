package auth

import (
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/edoomio/studio/internal/config"
	"github.com/edoomio/studio/internal/entities"
	"github.com/edoomio/studio/internal/logger"
)

// Auditor records authentication events.
type Auditor interface {
	LogAuth(userID, action, ipAddr string, success bool)
}

// isLocalPath rejects anything that could redirect off-site.
func isLocalPath(path string) bool {
	if path == "" || !strings.HasPrefix(path, "/") {
		return false
	}
	if strings.HasPrefix(path, "//") || strings.Contains(path, "://") {
		return false
	}
	return !strings.Contains(path, "\\")
}

func sanitizeRedirectPath(path string) string {
	if isLocalPath(path) {
		return path
	}
	return "/"
}

// AuthController serves the login, logout, setup and session endpoints.
type AuthController struct {
	service        *Service
	sessionManager *SessionManager
	config         config.Auth
	rateLimiter    *RateLimiter
	audit          Auditor
	log            *logger.Logger

	// serializes first-user setup
	setupMu sync.Mutex
}

// NewAuthController creates a new authentication controller. audit may be nil.
func NewAuthController(service *Service, sessionManager *SessionManager, cfg config.Auth, audit Auditor, log *logger.Logger) *AuthController {
	return &AuthController{
		service:        service,
		sessionManager: sessionManager,
		config:         cfg,
		rateLimiter: NewRateLimiter(RateLimitConfig{
			MaxAttempts:     cfg.MaxLoginAttempts,
			WindowDuration:  cfg.RateLimitWindow,
			LockoutDuration: cfg.LockoutDuration,
		}),
		audit: audit,
		log:   log.With("component", "auth"),
	}
}

// RegisterRoutes registers authentication routes on the router.
func (ac *AuthController) RegisterRoutes(router gin.IRoutes) {
	router.POST("/login", ac.Login)
	router.POST("/logout", ac.Logout)
	router.GET("/setup", ac.SetupStatus)
	router.POST("/setup", ac.Setup)
	router.GET("/api/auth/me", ac.Me)
	router.GET("/api/auth/csrf", ac.CSRFToken)
	router.POST("/api/auth/password", ac.ChangePassword)
}

// Stop releases the rate limiter goroutine.
func (ac *AuthController) Stop() {
	ac.rateLimiter.Stop()
}

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
	Next     string `json:"next" form:"next"`
}

// Login checks credentials and starts a session.
func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	clientIP := c.ClientIP()

	if allowed, retryAfter := ac.rateLimiter.Allow(clientIP, req.Username); !allowed {
		c.Header("Retry-After", retryAfter.String())
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":       "too many login attempts",
			"retry_after": retryAfter.String(),
		})
		return
	}

	user, err := ac.service.Authenticate(req.Username, req.Password)
	if err != nil {
		ac.rateLimiter.RecordFailure(clientIP, req.Username)
		ac.logAuth("", "login", clientIP, false)

		switch {
		case errors.Is(err, ErrAccountLocked):
			c.JSON(http.StatusLocked, gin.H{"error": "account is locked, try again later"})
		case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrInvalidPassword):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
		default:
			ac.log.Error("login failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		}
		return
	}

	ac.rateLimiter.RecordSuccess(clientIP, req.Username)
	if err := ac.sessionManager.CreateSession(c.Request, user); err != nil {
		ac.log.Error("failed to create session", "user_id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}
	ac.logAuth(user.ID, "login", clientIP, true)

	c.JSON(http.StatusOK, gin.H{
		"user":     user,
		"redirect": sanitizeRedirectPath(req.Next),
	})
}

// Logout destroys the session.
func (ac *AuthController) Logout(c *gin.Context) {
	userID := ""
	if ac.sessionManager != nil {
		userID = ac.sessionManager.GetUserID(c.Request)
		_ = ac.sessionManager.DestroySession(c.Request)
	}
	if userID != "" {
		ac.logAuth(userID, "logout", c.ClientIP(), true)
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// SetupStatus reports whether the first admin still has to be created.
func (ac *AuthController) SetupStatus(c *gin.Context) {
	hasUsers, err := ac.service.HasUsers()
	if err != nil {
		ac.log.Error("failed to count users", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"setupRequired": !hasUsers})
}

type setupRequest struct {
	Username        string `json:"username" form:"username"`
	Email           string `json:"email" form:"email"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirmPassword" form:"confirm_password"`
}

// Setup creates the initial admin user. It is only available while no
// user exists.
func (ac *AuthController) Setup(c *gin.Context) {
	ac.setupMu.Lock()
	defer ac.setupMu.Unlock()

	hasUsers, err := ac.service.HasUsers()
	if err != nil {
		ac.log.Error("failed to count users", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
		return
	}
	if hasUsers {
		c.JSON(http.StatusConflict, gin.H{"error": "setup already completed"})
		return
	}

	var req setupRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Password != req.ConfirmPassword {
		c.JSON(http.StatusBadRequest, gin.H{"error": "passwords do not match"})
		return
	}

	user, err := ac.service.CreateUser(req.Username, req.Email, req.Password, entities.UserRoleAdmin)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserExists):
			c.JSON(http.StatusConflict, gin.H{"error": "setup already completed"})
		case isValidationError(err):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			ac.log.Error("failed to create admin", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create user"})
		}
		return
	}

	if err := ac.sessionManager.CreateSession(c.Request, user); err != nil {
		ac.log.Warn("admin created but session failed", "user_id", user.ID, "error", err)
	}
	ac.logAuth(user.ID, "setup", c.ClientIP(), true)
	c.JSON(http.StatusCreated, gin.H{"user": user})
}

func isValidationError(err error) bool {
	for _, target := range []error{
		ErrUsernameRequired, ErrUsernameInvalid, ErrEmailRequired, ErrEmailInvalid,
		ErrPasswordRequired, ErrPasswordTooShort, ErrPasswordTooLong, ErrInvalidRole,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Me describes the caller.
func (ac *AuthController) Me(c *gin.Context) {
	userID := GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": ErrAuthRequired.Error()})
		return
	}

	resp := gin.H{
		"id":       userID,
		"role":     GetUserRole(c),
		"authMode": ac.service.GetAuthMode(),
	}
	if GetAuthType(c) == AuthTypeSession {
		resp["username"] = GetUsername(c)
	}
	c.JSON(http.StatusOK, resp)
}

// CSRFToken hands the current token to script clients.
func (ac *AuthController) CSRFToken(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"csrfToken": GetCSRFToken(c)})
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePassword replaces the caller's password.
func (ac *AuthController) ChangePassword(c *gin.Context) {
	if GetAuthType(c) != AuthTypeSession {
		c.JSON(http.StatusUnauthorized, gin.H{"error": ErrAuthRequired.Error()})
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	userID := GetUserID(c)
	err := ac.service.ChangePassword(userID, req.CurrentPassword, req.NewPassword)
	switch {
	case err == nil:
		ac.logAuth(userID, "password_change", c.ClientIP(), true)
		c.JSON(http.StatusOK, gin.H{"message": "password updated"})
	case errors.Is(err, ErrInvalidPassword):
		ac.logAuth(userID, "password_change", c.ClientIP(), false)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "current password is incorrect"})
	case errors.Is(err, ErrPasswordTooShort), errors.Is(err, ErrPasswordTooLong):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		ac.log.Error("failed to change password", "user_id", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to change password"})
	}
}

func (ac *AuthController) logAuth(userID, action, ip string, success bool) {
	if ac.audit != nil {
		ac.audit.LogAuth(userID, action, ip, success)
	}
}
