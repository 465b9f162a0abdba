package services

import (
	"errors"
	"time"

	"github.com/AtRiskMedia/pagegrid-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/pagegrid-go/internal/infrastructure/security"
)

const editorRole = "editor"

var (
	// ErrAuthDisabled is returned by Login when no JWT secret is configured.
	ErrAuthDisabled = errors.New("editor authentication is not configured")
	// ErrInvalidCredentials is returned for a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// AuthConfig holds the editor credentials.
type AuthConfig struct {
	PasswordHash string
	JWTSecret    string
	TokenTTL     time.Duration
}

// AuthResult holds authentication result data
type AuthResult struct {
	Token     string    `json:"token"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// AuthService handles editor login and token validation.
type AuthService struct {
	config AuthConfig
	logger *logging.ChanneledLogger
}

// NewAuthService creates a new authentication service
func NewAuthService(config AuthConfig, logger *logging.ChanneledLogger) *AuthService {
	if config.TokenTTL <= 0 {
		config.TokenTTL = 12 * time.Hour
	}
	return &AuthService{config: config, logger: logger}
}

// Enabled reports whether routes should require a token.
func (a *AuthService) Enabled() bool {
	return a.config.JWTSecret != ""
}

// Login compares password against the configured bcrypt hash and issues a
// token on success.
func (a *AuthService) Login(password string) (*AuthResult, error) {
	if !a.Enabled() || a.config.PasswordHash == "" {
		return nil, ErrAuthDisabled
	}
	if !security.CheckPassword(a.config.PasswordHash, password) {
		a.logger.LogAuthOperation("login", editorRole, false)
		return nil, ErrInvalidCredentials
	}

	token, err := security.GenerateEditorToken(editorRole, editorRole, a.config.JWTSecret, a.config.TokenTTL)
	if err != nil {
		a.logger.LogError(logging.ChannelAuth, "login", err, nil)
		return nil, err
	}
	a.logger.LogAuthOperation("login", editorRole, true)
	return &AuthResult{
		Token:     token,
		Role:      editorRole,
		ExpiresAt: time.Now().UTC().Add(a.config.TokenTTL),
	}, nil
}

// ValidateToken returns the claims of a valid editor token.
func (a *AuthService) ValidateToken(token string) (*security.EditorClaims, error) {
	if !a.Enabled() {
		return nil, ErrAuthDisabled
	}
	return security.ValidateEditorToken(token, a.config.JWTSecret)
}
