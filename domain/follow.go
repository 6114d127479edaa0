package domain

import (
	"context"
	"time"
)

// Follow represents a directed edge of the social graph. The user with
// FollowerID follows the user with FollowedID. A pair can exist only once,
// and a user can never follow themselves.
type Follow struct {
	ID         int       `json:"id"`
	FollowerID int       `json:"follower_id" gorm:"not null;uniqueIndex:idx_follow_pair;check:chk_follows_not_self,follower_id <> followed_id"`
	Follower   User      `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	FollowedID int       `json:"followed_id" gorm:"not null;uniqueIndex:idx_follow_pair;index"`
	Followed   User      `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	CreatedAt  time.Time `json:"created_at"`
}

// FollowService is a set of methods to manipulate and work with the Follow model.
type FollowService interface {
	Create(ctx context.Context, follow *Follow) error
	Delete(ctx context.Context, follow *Follow) error
	Counts(ctx context.Context, userID int) (followers, following int64, err error)
	Following(ctx context.Context, userID int) ([]User, error)
	Followers(ctx context.Context, userID int) ([]User, error)
}
