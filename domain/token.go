package domain

import (
	"context"
	"time"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// TokenPair is issued on login.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// TokenClaims are the verified contents of a token.
type TokenClaims struct {
	ID        string
	UserID    int
	Type      string
	ExpiresAt time.Time
}

// BlacklistedToken marks a token id as revoked until the token would have expired anyway.
type BlacklistedToken struct {
	ID        int       `json:"id"`
	JTI       string    `json:"jti" gorm:"not null;size:64;uniqueIndex"`
	UserID    int       `json:"user_id" gorm:"not null;index"`
	ExpiresAt time.Time `json:"expires_at" gorm:"not null;index"`
	CreatedAt time.Time `json:"created_at"`
}

// TokenService issues, verifies and revokes tokens.
type TokenService interface {
	Issue(ctx context.Context, user *User) (*TokenPair, error)
	Refresh(ctx context.Context, refresh string) (string, error)
	Verify(ctx context.Context, token string) (*TokenClaims, error)
	Revoke(ctx context.Context, token string) error
}
