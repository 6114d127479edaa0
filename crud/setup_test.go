package crud

import (
	"context"
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lobodInI/API-Social-Media/domain"
	"github.com/lobodInI/API-Social-Media/errs"
	"github.com/lobodInI/API-Social-Media/storage"
)

const testPassword = "secret1"

// newTestServices returns all crud services backed by a fresh in-memory
// sqlite database and a local storage in a temp dir.
func newTestServices(t *testing.T) *Services {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// Every connection to :memory: is a database of its own.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	store, err := storage.NewLocalStorage(storage.LocalConfig{BasePath: t.TempDir()})
	if err != nil {
		t.Fatalf("storage: %v", err)
	}

	s, err := NewServices(db,
		WithUser("test-pepper"),
		WithFollow(),
		WithPost(),
		WithComment(),
		WithLike(),
		WithImage(store, 64),
		WithToken(TokenConfig{
			Secret:     "0123456789abcdef0123456789abcdef",
			AccessTTL:  5 * time.Minute,
			RefreshTTL: time.Hour,
		}, nil),
	)
	if err != nil {
		t.Fatalf("services: %v", err)
	}
	if err := s.AutoMigrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return s
}

// createUser registers a user whose email is derived from the nickname.
func createUser(t *testing.T, s *Services, nickname string) *domain.User {
	t.Helper()
	user := &domain.User{
		Email:     nickname + "@example.com",
		Nickname:  nickname,
		FirstName: "First",
		LastName:  "Last",
		Password:  testPassword,
	}
	if err := s.User.Create(context.Background(), user); err != nil {
		t.Fatalf("create user %s: %v", nickname, err)
	}
	return user
}

// createPost creates a post by the author.
func createPost(t *testing.T, s *Services, author *domain.User, title, hashtag string) *domain.Post {
	t.Helper()
	post := &domain.Post{
		AuthorID: author.ID,
		Title:    title,
		Content:  fmt.Sprintf("content of %s", title),
		Hashtag:  hashtag,
	}
	if err := s.Post.Create(context.Background(), post); err != nil {
		t.Fatalf("create post %s: %v", title, err)
	}
	return post
}

// assertCode fails the test unless err carries the application error code.
func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	if got := errs.ErrorCode(err); got != code {
		t.Fatalf("error code = %q (err: %v), want %q", got, err, code)
	}
}

// assertMessage fails the test unless err carries the client message.
func assertMessage(t *testing.T, err error, msg string) {
	t.Helper()
	if got := errs.ErrorMessage(err); got != msg {
		t.Fatalf("error message = %q, want %q", got, msg)
	}
}
