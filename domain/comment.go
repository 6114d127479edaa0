package domain

import (
	"context"
	"time"
)

// Comment is a reply of a User to a Post.
type Comment struct {
	ID        int       `json:"id"`
	PostID    int       `json:"post" gorm:"not null;index"`
	AuthorID  int       `json:"author" gorm:"not null;index"`
	Author    User      `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Content   string    `json:"content" gorm:"not null;type:text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`

	// Filled in by listings, never stored.
	PostTitle string `json:"-" gorm:"->;-:migration"`
}

// CommentService is a set of methods to manipulate and work with the Comment model.
type CommentService interface {
	ByID(ctx context.Context, id int) (*Comment, error)
	List(ctx context.Context, filter CommentFilter) ([]Comment, int64, error)
	Create(ctx context.Context, comment *Comment) error
	Update(ctx context.Context, id int, content string) (*Comment, error)
	Delete(ctx context.Context, id int) error
}

// CommentFilter narrows down a comment listing. A zero PostID lists all comments.
type CommentFilter struct {
	PostID int
	Page   PageRequest
}
