package domain

import (
	"context"
	"time"
)

// Like records that a User likes a Post. A user can like a post only once.
type Like struct {
	ID        int       `json:"id"`
	PostID    int       `json:"post" gorm:"not null;uniqueIndex:idx_like_pair"`
	AuthorID  int       `json:"author" gorm:"not null;uniqueIndex:idx_like_pair;index"`
	Author    User      `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	CreatedAt time.Time `json:"created_at"`
}

// LikeService is a set of methods to manipulate and work with the Like model.
type LikeService interface {
	Create(ctx context.Context, like *Like) error
	Delete(ctx context.Context, like *Like) error
}
