package domain

import (
	"context"
	"time"
)

// User represents a registered account. Users log in with their Email, are
// displayed by their Nickname, and author Posts, Comments and Likes. Every
// record a User authored, and every Follow touching them, is removed together
// with the User.
type User struct {
	ID        int    `json:"id"`
	Email     string `json:"email" gorm:"not null;size:255;uniqueIndex"`
	Nickname  string `json:"nickname" gorm:"not null;size:255;uniqueIndex"`
	FirstName string `json:"first_name" gorm:"not null;size:255"`
	LastName  string `json:"last_name" gorm:"not null;size:255"`

	// Password only exists in memory and is cleared once it has been hashed.
	Password     string `json:"password,omitempty" gorm:"-"`
	PasswordHash string `json:"-" gorm:"not null"`

	// Image is the storage key of the user's profile image.
	Image    string     `json:"user_image" gorm:"size:255"`
	City     string     `json:"city" gorm:"size:255"`
	Bio      string     `json:"bio" gorm:"type:text"`
	Birthday *time.Time `json:"birthday" gorm:"type:date"`
	IsStaff  bool       `json:"is_staff" gorm:"not null;default:false"`

	CreatedAt time.Time `json:"date_registration"`
	UpdatedAt time.Time `json:"-"`

	// Computed at query time by UserService.List, never stored.
	FollowerCount  int64 `json:"count_followers" gorm:"->;-:migration"`
	FollowingCount int64 `json:"count_following" gorm:"->;-:migration"`
}

// UserService is a set of methods to manipulate and work with the User model.
type UserService interface {
	Authenticate(ctx context.Context, email, password string) (*User, error)
	ByID(ctx context.Context, id int) (*User, error)
	List(ctx context.Context, filter UserFilter) ([]User, int64, error)
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, id int, upd *UserUpdate) (*User, error)
	SetImage(ctx context.Context, id int, key string) (string, error)
	Delete(ctx context.Context, id int) ([]string, error)
}

// UserFilter narrows down a user listing. Search matches nickname and city.
type UserFilter struct {
	Search string
	Page   PageRequest
}

// UserUpdate holds the fields of a partial user update. Nil fields are left untouched.
type UserUpdate struct {
	Email     *string
	Nickname  *string
	FirstName *string
	LastName  *string
	Password  *string
	City      *string
	Bio       *string
	Birthday  *time.Time
	// ClearBirthday removes the stored birthday. It wins over Birthday.
	ClearBirthday bool
}
