package crud

import (
	"gorm.io/gorm"

	"github.com/lobodInI/API-Social-Media/domain"
	"github.com/lobodInI/API-Social-Media/storage"
)

// A ServicesConfig is any function that takes in a pointer to a Services
// object and returns an error. It's basically just wrapping the constructor
// method of any given crud service. It exists to be able to easily create
// the crud services using functional options in main.go.
type ServicesConfig func(*Services) error

// Services is a container object holding pointers to all the crud services.
// The crud services all share the database connection provided by Services.
type Services struct {
	db      *gorm.DB
	User    *UserService
	Follow  *FollowService
	Post    *PostService
	Comment *CommentService
	Like    *LikeService
	Image   *ImageService
	Token   *TokenService
}

// NewServices returns a new Services object, containing any crud services
// it's told to create by one of the passed in ServicesConfig functions.
// It shares the passed in database connection with any crud service it creates.
func NewServices(db *gorm.DB, cfgs ...ServicesConfig) (*Services, error) {
	s := Services{
		db: db,
	}
	for _, cfg := range cfgs {
		if err := cfg(&s); err != nil {
			return nil, err
		}
	}
	return &s, nil
}

// models lists every model that has a table, in no particular order.
// Gorm sorts them by their foreign key dependencies when migrating.
func models() []interface{} {
	return []interface{}{
		&domain.User{},
		&domain.Follow{},
		&domain.Post{},
		&domain.Comment{},
		&domain.Like{},
		&domain.BlacklistedToken{},
	}
}

// AutoMigrate runs database migrations for all tables.
func (s *Services) AutoMigrate() error {
	return s.db.AutoMigrate(models()...)
}

// DestructiveReset drops all tables and rebuilds them.
func (s *Services) DestructiveReset() error {
	if err := s.db.Migrator().DropTable(models()...); err != nil {
		return err
	}
	return s.AutoMigrate()
}

// WithUser wraps the constructor of UserService, NewUserService.
func WithUser(pepper string) ServicesConfig {
	return func(s *Services) error {
		s.User = NewUserService(s.db, pepper)
		return nil
	}
}

// WithFollow wraps the constructor of FollowService, NewFollowService.
func WithFollow() ServicesConfig {
	return func(s *Services) error {
		s.Follow = NewFollowService(s.db)
		return nil
	}
}

// WithPost wraps the constructor of PostService, NewPostService.
func WithPost() ServicesConfig {
	return func(s *Services) error {
		s.Post = NewPostService(s.db)
		return nil
	}
}

// WithComment wraps the constructor of CommentService, NewCommentService.
func WithComment() ServicesConfig {
	return func(s *Services) error {
		s.Comment = NewCommentService(s.db)
		return nil
	}
}

// WithLike wraps the constructor of LikeService, NewLikeService.
func WithLike() ServicesConfig {
	return func(s *Services) error {
		s.Like = NewLikeService(s.db)
		return nil
	}
}

// WithImage wraps the constructor of ImageService, NewImageService.
// Images larger than maxDimension on either side are scaled down.
func WithImage(store storage.Storage, maxDimension int) ServicesConfig {
	return func(s *Services) error {
		s.Image = NewImageService(store, maxDimension)
		return nil
	}
}

// WithToken wraps the constructor of TokenService, NewTokenService.
// Without a blacklist, revoked tokens are kept in the database.
func WithToken(cfg TokenConfig, blacklist Blacklist) ServicesConfig {
	return func(s *Services) error {
		if blacklist == nil {
			blacklist = NewGormBlacklist(s.db)
		}
		ts, err := NewTokenService(cfg, blacklist)
		if err != nil {
			return err
		}
		s.Token = ts
		return nil
	}
}
