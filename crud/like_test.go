package crud

import (
	"context"
	"sync"
	"testing"

	"github.com/lobodInI/API-Social-Media/domain"
	"github.com/lobodInI/API-Social-Media/errs"
)

func TestLikeUnlikeScenario(t *testing.T) {
	ctx := context.Background()
	s := newTestServices(t)
	a := createUser(t, s, "alice")
	b := createUser(t, s, "bob")
	post := createPost(t, s, a, "first", "go")

	if err := s.Like.Create(ctx, &domain.Like{PostID: post.ID, AuthorID: b.ID}); err != nil {
		t.Fatalf("like: %v", err)
	}
	assertLikeCount(t, s, post.ID, 1)

	err := s.Like.Create(ctx, &domain.Like{PostID: post.ID, AuthorID: b.ID})
	assertCode(t, err, errs.EINVALID)
	assertMessage(t, err, "You already liked this post.")
	assertLikeCount(t, s, post.ID, 1)

	// The author may like their own post.
	if err := s.Like.Create(ctx, &domain.Like{PostID: post.ID, AuthorID: a.ID}); err != nil {
		t.Fatalf("like own post: %v", err)
	}
	assertLikeCount(t, s, post.ID, 2)

	if err := s.Like.Delete(ctx, &domain.Like{PostID: post.ID, AuthorID: b.ID}); err != nil {
		t.Fatalf("unlike: %v", err)
	}
	assertLikeCount(t, s, post.ID, 1)

	err = s.Like.Delete(ctx, &domain.Like{PostID: post.ID, AuthorID: b.ID})
	assertCode(t, err, errs.EINVALID)
	assertMessage(t, err, "You have not liked this post.")
	assertLikeCount(t, s, post.ID, 1)
}

func TestLikeMissingPost(t *testing.T) {
	ctx := context.Background()
	s := newTestServices(t)
	a := createUser(t, s, "alice")

	err := s.Like.Create(ctx, &domain.Like{PostID: 42, AuthorID: a.ID})
	assertCode(t, err, errs.ENOTFOUND)
	err = s.Like.Delete(ctx, &domain.Like{PostID: 42, AuthorID: a.ID})
	assertCode(t, err, errs.ENOTFOUND)
}

func TestLikeRequiresAuthor(t *testing.T) {
	s := newTestServices(t)
	a := createUser(t, s, "alice")
	post := createPost(t, s, a, "first", "")

	err := s.Like.Create(context.Background(), &domain.Like{PostID: post.ID})
	assertCode(t, err, errs.EUNAUTHORIZED)
}

func TestLikeConcurrentRequests(t *testing.T) {
	s := newTestServices(t)
	a := createUser(t, s, "alice")
	post := createPost(t, s, a, "first", "")

	const n = 8
	results := make(chan error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- s.Like.Create(context.Background(), &domain.Like{PostID: post.ID, AuthorID: a.ID})
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assertCode(t, err, errs.EINVALID)
	}
	if succeeded != 1 {
		t.Fatalf("%d likes succeeded, want exactly 1", succeeded)
	}
	assertLikeCount(t, s, post.ID, 1)
}

func TestLikePairIsUniqueInStorage(t *testing.T) {
	s := newTestServices(t)
	a := createUser(t, s, "alice")
	post := createPost(t, s, a, "first", "")

	lg := &likeGorm{db: s.db}
	if err := lg.Create(&domain.Like{PostID: post.ID, AuthorID: a.ID}); err != nil {
		t.Fatal(err)
	}
	err := lg.Create(&domain.Like{PostID: post.ID, AuthorID: a.ID})
	assertCode(t, err, errs.EINVALID)
	assertMessage(t, err, "You already liked this post.")
}

func assertLikeCount(t *testing.T, s *Services, postID int, want int64) {
	t.Helper()
	post, err := s.Post.ByID(context.Background(), postID)
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if post.LikeCount != want {
		t.Fatalf("likes_count = %d, want %d", post.LikeCount, want)
	}
}
