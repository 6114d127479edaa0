package crud

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lobodInI/API-Social-Media/domain"
)

// GormBlacklist keeps revoked tokens in the blacklisted_tokens table.
type GormBlacklist struct {
	db *gorm.DB
}

// NewGormBlacklist returns an instance of GormBlacklist.
func NewGormBlacklist(db *gorm.DB) *GormBlacklist {
	return &GormBlacklist{db: db}
}

var _ Blacklist = &GormBlacklist{}

// Add stores the token id. Rows of tokens that have expired in the meantime
// are purged on the way, since expired tokens fail verification anyway.
func (gb *GormBlacklist) Add(ctx context.Context, claims *domain.TokenClaims) error {
	db := gb.db.WithContext(ctx)
	err := db.Where("expires_at < ?", time.Now()).Delete(&domain.BlacklistedToken{}).Error
	if err != nil {
		return err
	}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&domain.BlacklistedToken{
		JTI:       claims.ID,
		UserID:    claims.UserID,
		ExpiresAt: claims.ExpiresAt,
	}).Error
}

// Contains reports whether the token id has been revoked.
func (gb *GormBlacklist) Contains(ctx context.Context, jti string) (bool, error) {
	var count int64
	err := gb.db.WithContext(ctx).Model(&domain.BlacklistedToken{}).Where("jti = ?", jti).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// RedisConfig holds the connection settings of the redis blacklist.
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// RedisBlacklist keeps revoked token ids as redis keys that expire together with the token.
type RedisBlacklist struct {
	client *redis.Client
	prefix string
}

// NewRedisBlacklist connects to redis and returns an instance of RedisBlacklist.
func NewRedisBlacklist(ctx context.Context, cfg RedisConfig) (*RedisBlacklist, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisBlacklist{client: client, prefix: "social:blacklist"}, nil
}

var _ Blacklist = &RedisBlacklist{}

func (rb *RedisBlacklist) key(jti string) string {
	return rb.prefix + ":" + jti
}

// Add stores the token id until the token expires.
func (rb *RedisBlacklist) Add(ctx context.Context, claims *domain.TokenClaims) error {
	ttl := time.Until(claims.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := rb.client.Set(ctx, rb.key(claims.ID), claims.UserID, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set in redis: %w", err)
	}
	return nil
}

// Contains reports whether the token id has been revoked.
func (rb *RedisBlacklist) Contains(ctx context.Context, jti string) (bool, error) {
	err := rb.client.Get(ctx, rb.key(jti)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get from redis: %w", err)
	}
	return true, nil
}

// Close closes the redis connection.
func (rb *RedisBlacklist) Close() error {
	return rb.client.Close()
}
