package domain

import (
	"context"
	"time"
)

// Post is a piece of content authored by a User. It owns its Comments and
// Likes, which are removed together with it.
type Post struct {
	ID       int    `json:"id"`
	AuthorID int    `json:"author_id" gorm:"not null;index"`
	Author   User   `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Title    string `json:"title" gorm:"not null;size:255"`
	Content  string `json:"content" gorm:"not null;type:text"`
	Hashtag  string `json:"hashtag" gorm:"size:50"`
	// Image is the storage key of the post's image.
	Image string `json:"image" gorm:"size:255"`

	Comments []Comment `json:"-" gorm:"foreignKey:PostID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Likes    []Like    `json:"-" gorm:"foreignKey:PostID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`

	// Computed at query time, never stored.
	LikeCount    int64 `json:"likes_count" gorm:"->;-:migration"`
	CommentCount int64 `json:"comments_count" gorm:"->;-:migration"`
}

// PostService is a set of methods to manipulate and work with the Post model.
type PostService interface {
	ByID(ctx context.Context, id int) (*Post, error)
	Detail(ctx context.Context, id int) (*Post, error)
	List(ctx context.Context, filter PostFilter) ([]Post, int64, error)
	Create(ctx context.Context, post *Post) error
	Update(ctx context.Context, id int, upd *PostUpdate) (*Post, error)
	SetImage(ctx context.Context, id int, key string) (string, error)
	Delete(ctx context.Context, id int) error
}

// PostFilter narrows down a post listing. Search matches the hashtag.
type PostFilter struct {
	Search string
	Page   PageRequest
}

// PostUpdate holds the fields of a partial post update. Nil fields are left untouched.
type PostUpdate struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
	Hashtag *string `json:"hashtag"`
}
