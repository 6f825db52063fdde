package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stemsi/assessment-backend/internal/config"
	"github.com/stemsi/assessment-backend/internal/ident"
	"golang.org/x/crypto/bcrypt"
)

// Claims are the JWT claims issued by the external identity provider.
// UserID may be a number or a string; Subject is used when it is absent.
type Claims struct {
	jwt.RegisteredClaims
	UserID ident.Ref `json:"user_id"`
}

// Identity returns the user identifier carried by the token, or "" if none.
func (c *Claims) Identity() string {
	if !c.UserID.IsZero() {
		return c.UserID.Key()
	}
	return strings.TrimSpace(c.Subject)
}

// AuthService validates tokens and hashes passwords. Token issuance lives
// with the identity provider.
type AuthService struct {
	cfg *config.Config
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{cfg: cfg}
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// ValidateToken parses and validates an HMAC-signed JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.Identity() == "" {
		return nil, errors.New("token carries no user identity")
	}

	return claims, nil
}
