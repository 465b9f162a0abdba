package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// EditorTokenType marks tokens issued by the editor login.
const EditorTokenType = "editor_auth"

// EditorClaims are the claims carried by an editor session token.
type EditorClaims struct {
	Role string `json:"role"`
	Type string `json:"type"`
	jwt.RegisteredClaims
}

// GenerateEditorToken signs an HS256 token for subject valid for ttl.
func GenerateEditorToken(subject, role, jwtSecret string, ttl time.Duration) (string, error) {
	if jwtSecret == "" {
		return "", errors.New("empty jwt secret")
	}
	now := time.Now().UTC()
	claims := EditorClaims{
		Role: role,
		Type: EditorTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        NewID(),
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtSecret))
}

// ValidateEditorToken parses tokenString and rejects anything that is not an
// unexpired HS256 editor token.
func ValidateEditorToken(tokenString, jwtSecret string) (*EditorClaims, error) {
	claims := &EditorClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(jwtSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Type != EditorTokenType {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}
