package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nodeworld/nodeworld-live/internal/core"
)

// Claims represents the visitor session claims minted by the upstream API.
type Claims struct {
	VisitorID string `json:"visitor_id"`
	Name      string `json:"name"`
	jwt.RegisteredClaims
}

// Config holds token verification settings.
type Config struct {
	Secret   []byte
	Issuer   string
	Audience string
}

// Verifier validates visitor session tokens. This service never mints
// production tokens itself; credentials come from the upstream API.
type Verifier struct {
	cfg *Config
}

// NewVerifier creates a token verifier.
func NewVerifier(cfg *Config) *Verifier {
	return &Verifier{cfg: cfg}
}

// Verify parses and validates a visitor session token and returns the
// visitor identity it encodes.
func (v *Verifier) Verify(_ context.Context, tokenString string) (*core.Visitor, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.cfg.Secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, core.ErrInvalidCredential
	}

	if v.cfg.Issuer != "" && claims.Issuer != v.cfg.Issuer {
		return nil, core.ErrInvalidCredential
	}

	if v.cfg.Audience != "" {
		validAudience := false
		for _, aud := range claims.Audience {
			if aud == v.cfg.Audience {
				validAudience = true
				break
			}
		}
		if !validAudience {
			return nil, core.ErrInvalidCredential
		}
	}

	if claims.VisitorID == "" || claims.Name == "" {
		return nil, core.ErrInvalidCredential
	}

	return &core.Visitor{ID: claims.VisitorID, Name: claims.Name}, nil
}

// GenerateToken creates a signed visitor session token. Used by tests and
// the smoke clients; the production issuer is the upstream API.
func GenerateToken(cfg *Config, visitorID, name string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		VisitorID: visitorID,
		Name:      name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Audience:  jwt.ClaimStrings{cfg.Audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(cfg.Secret)
}
