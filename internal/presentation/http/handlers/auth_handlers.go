package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/AtRiskMedia/pagegrid-go/internal/application/services"
	"github.com/AtRiskMedia/pagegrid-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/pagegrid-go/internal/infrastructure/observability/performance"
	"github.com/AtRiskMedia/pagegrid-go/internal/infrastructure/security"
	"github.com/gin-gonic/gin"
)

// EditorCookie carries the editor token for browser clients.
const EditorCookie = security.EditorTokenType

const claimsKey = "editorClaims"

// AuthHandlers contains all authentication-related HTTP handlers
type AuthHandlers struct {
	authService *services.AuthService
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewAuthHandlers creates auth handlers with injected dependencies
func NewAuthHandlers(authService *services.AuthService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// PostLogin handles POST /api/v1/auth/login - editor authentication
func (h *AuthHandlers) PostLogin(c *gin.Context) {
	start := time.Now()
	marker := h.perfTracker.StartOperation("auth:login", "")
	defer marker.Complete()

	var loginReq struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&loginReq); err != nil {
		marker.SetError(err)
		respondBadBody(c, err)
		return
	}

	result, err := h.authService.Login(loginReq.Password)
	switch {
	case errors.Is(err, services.ErrAuthDisabled):
		marker.SetError(err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	case errors.Is(err, services.ErrInvalidCredentials):
		marker.SetError(err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	case err != nil:
		marker.SetError(err)
		h.logger.Auth().Error("Login failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
		return
	}

	maxAge := int(time.Until(result.ExpiresAt).Seconds())
	c.SetCookie(EditorCookie, result.Token, maxAge, "/", "", false, true)

	h.logger.Auth().Info("Login successful", "role", result.Role, "duration", time.Since(start))
	c.JSON(http.StatusOK, result)
}

// PostLogout handles POST /api/v1/auth/logout - clears the editor cookie
func (h *AuthHandlers) PostLogout(c *gin.Context) {
	c.SetCookie(EditorCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetAuthStatus handles GET /api/v1/auth/status
func (h *AuthHandlers) GetAuthStatus(c *gin.Context) {
	response := gin.H{"enabled": h.authService.Enabled(), "authenticated": false}
	if token, source := requestToken(c); token != "" {
		if claims, err := h.authService.ValidateToken(token); err == nil {
			response["authenticated"] = true
			response["method"] = source
			response["role"] = claims.Role
			if claims.ExpiresAt != nil {
				response["expiresAt"] = claims.ExpiresAt.Time
			}
		}
	}
	c.JSON(http.StatusOK, response)
}

// AuthMiddleware requires a valid editor token when authentication is
// configured and passes every request through when it is not.
func (h *AuthHandlers) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !h.authService.Enabled() {
			c.Next()
			return
		}

		token, source := requestToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		claims, err := h.authService.ValidateToken(token)
		if err != nil {
			h.logger.Auth().Debug("Rejected editor token", "source", source, "path", c.Request.URL.Path, "error", err.Error())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// requestToken finds the editor token in the Authorization header, the editor
// cookie, or the token query parameter. Browsers cannot set headers on a
// websocket handshake, hence the last two.
func requestToken(c *gin.Context) (string, string) {
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer "), "bearer"
	}
	if cookie, err := c.Cookie(EditorCookie); err == nil && cookie != "" {
		return cookie, "cookie"
	}
	if token := c.Query("token"); token != "" {
		return token, "query"
	}
	return "", ""
}
