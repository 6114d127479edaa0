package crud

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/lobodInI/API-Social-Media/domain"
	"github.com/lobodInI/API-Social-Media/errs"
)

var (
	errTokenInvalid     = errs.Errorf(errs.EUNAUTHORIZED, "Token is invalid or expired.")
	errTokenBlacklisted = errs.Errorf(errs.EUNAUTHORIZED, "Token is blacklisted.")
	errTokenWrongType   = errs.Errorf(errs.EUNAUTHORIZED, "Token has wrong type.")
)

// TokenConfig holds the settings of the TokenService.
type TokenConfig struct {
	Secret     string        `mapstructure:"secret"`
	AccessTTL  time.Duration `mapstructure:"access_ttl"`
	RefreshTTL time.Duration `mapstructure:"refresh_ttl"`
}

// A Blacklist remembers the ids of revoked tokens until they expire.
type Blacklist interface {
	Add(ctx context.Context, claims *domain.TokenClaims) error
	Contains(ctx context.Context, jti string) (bool, error)
}

// tokenClaims is the payload of every token this service signs.
type tokenClaims struct {
	jwt.RegisteredClaims
	UserID    int    `json:"user_id"`
	TokenType string `json:"token_type"`
}

// TokenService issues HS256 signed access and refresh tokens and keeps track
// of revoked ones. It implements the domain.TokenService interface.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	blacklist  Blacklist
}

// NewTokenService returns an instance of TokenService.
func NewTokenService(cfg TokenConfig, blacklist Blacklist) (*TokenService, error) {
	if len(cfg.Secret) < 16 {
		return nil, errors.New("token secret must have at least 16 characters")
	}
	if cfg.AccessTTL == 0 || cfg.RefreshTTL == 0 {
		return nil, errors.New("token lifetimes must be set")
	}
	return &TokenService{
		secret:     []byte(cfg.Secret),
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		blacklist:  blacklist,
	}, nil
}

// Ensure the TokenService struct properly implements the domain.TokenService interface.
var _ domain.TokenService = &TokenService{}

// Issue creates a new access and refresh token for the user.
func (ts *TokenService) Issue(ctx context.Context, user *domain.User) (*domain.TokenPair, error) {
	access, err := ts.sign(user.ID, domain.TokenTypeAccess, ts.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := ts.sign(user.ID, domain.TokenTypeRefresh, ts.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &domain.TokenPair{Access: access, Refresh: refresh}, nil
}

// Refresh verifies a refresh token and returns a new access token for its user.
func (ts *TokenService) Refresh(ctx context.Context, refresh string) (string, error) {
	claims, err := ts.Verify(ctx, refresh)
	if err != nil {
		return "", err
	}
	if claims.Type != domain.TokenTypeRefresh {
		return "", errTokenWrongType
	}
	return ts.sign(claims.UserID, domain.TokenTypeAccess, ts.accessTTL)
}

// Verify checks signature, expiry and revocation of a token of either type.
func (ts *TokenService) Verify(ctx context.Context, token string) (*domain.TokenClaims, error) {
	var tc tokenClaims
	_, err := jwt.ParseWithClaims(token, &tc, func(t *jwt.Token) (interface{}, error) {
		return ts.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, errTokenInvalid
	}
	if tc.ID == "" || tc.UserID <= 0 {
		return nil, errTokenInvalid
	}
	if tc.TokenType != domain.TokenTypeAccess && tc.TokenType != domain.TokenTypeRefresh {
		return nil, errTokenWrongType
	}

	revoked, err := ts.blacklist.Contains(ctx, tc.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, errTokenBlacklisted
	}

	return &domain.TokenClaims{
		ID:        tc.ID,
		UserID:    tc.UserID,
		Type:      tc.TokenType,
		ExpiresAt: tc.ExpiresAt.Time,
	}, nil
}

// Revoke verifies a token and puts it on the blacklist, so that every
// later verification of it fails.
func (ts *TokenService) Revoke(ctx context.Context, token string) error {
	claims, err := ts.Verify(ctx, token)
	if err != nil {
		return err
	}
	return ts.blacklist.Add(ctx, claims)
}

// sign creates a token of the given type for the user that expires after ttl.
func (ts *TokenService) sign(userID int, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:    userID,
		TokenType: tokenType,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ts.secret)
}
