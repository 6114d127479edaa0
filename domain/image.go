package domain

import (
	"context"
	"io"
)

const (
	// OwnerTypePost expresses that an Image belongs to a Post.
	OwnerTypePost = "posts"
	// OwnerTypeUser expresses that an Image belongs to a User.
	OwnerTypeUser = "users"
	// ImagesBaseDir is the key prefix of every stored image.
	ImagesBaseDir = "uploads/social_media"
	// MaxUploadSize determines the maximum filesize of an image to be uploaded.
	MaxUploadSize int64 = 5 << 20 // 5 Megabyte
)

// Image represents an uploaded image on its way into storage. Images have no
// table of their own: the owning Post or User keeps the storage Key in its
// image column. Keys look like uploads/social_media/posts/<slug>-<uuid>.png,
// where the slug is derived from OwnerName (a post's title or a user's nickname).
type Image struct {
	Key         string
	OwnerType   string
	OwnerName   string
	File        io.ReadSeeker
	Filename    string
	Extension   string
	ContentType string
	Size        int64
}

// ImageService is a set of methods to validate, store and resolve images.
type ImageService interface {
	Create(ctx context.Context, img *Image) error
	Delete(ctx context.Context, key string) error
	URL(ctx context.Context, key string) string
}
