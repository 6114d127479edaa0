package crud

import (
	"context"
	"testing"

	"github.com/lobodInI/API-Social-Media/domain"
	"github.com/lobodInI/API-Social-Media/errs"
)

func TestCommentCreate(t *testing.T) {
	ctx := context.Background()
	s := newTestServices(t)
	a := createUser(t, s, "alice")
	post := createPost(t, s, a, "first", "")

	err := s.Comment.Create(ctx, &domain.Comment{PostID: post.ID + 1, AuthorID: a.ID, Content: "hi"})
	assertCode(t, err, errs.EINVALID)
	assertMessage(t, err, "Invalid post 2, object does not exist.")

	err = s.Comment.Create(ctx, &domain.Comment{PostID: post.ID, AuthorID: a.ID, Content: " "})
	assertCode(t, err, errs.EINVALID)

	c := &domain.Comment{PostID: post.ID, AuthorID: a.ID, Content: "hi"}
	if err := s.Comment.Create(ctx, c); err != nil {
		t.Fatal(err)
	}
	got, err := s.Comment.ByID(ctx, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.PostTitle != "first" || got.Author.Nickname != "alice" {
		t.Fatalf("unexpected comment %+v", got)
	}
}

func TestCommentListFiltersByPost(t *testing.T) {
	ctx := context.Background()
	s := newTestServices(t)
	a := createUser(t, s, "alice")
	first := createPost(t, s, a, "first", "")
	second := createPost(t, s, a, "second", "")

	for _, c := range []domain.Comment{
		{PostID: first.ID, AuthorID: a.ID, Content: "one"},
		{PostID: second.ID, AuthorID: a.ID, Content: "two"},
		{PostID: first.ID, AuthorID: a.ID, Content: "three"},
	} {
		c := c
		if err := s.Comment.Create(ctx, &c); err != nil {
			t.Fatal(err)
		}
	}

	page := domain.PageRequest{Page: 1, Size: 10}
	comments, count, err := s.Comment.List(ctx, domain.CommentFilter{PostID: first.ID, Page: page})
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 || comments[0].Content != "three" || comments[1].Content != "one" {
		t.Fatalf("unexpected comments %+v", comments)
	}

	_, count, err = s.Comment.List(ctx, domain.CommentFilter{Page: page})
	if err != nil || count != 3 {
		t.Fatalf("all comments = %d, %v", count, err)
	}
}

func TestCommentUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestServices(t)
	a := createUser(t, s, "alice")
	post := createPost(t, s, a, "first", "")
	c := &domain.Comment{PostID: post.ID, AuthorID: a.ID, Content: "hi"}
	if err := s.Comment.Create(ctx, c); err != nil {
		t.Fatal(err)
	}

	updated, err := s.Comment.Update(ctx, c.ID, "edited")
	if err != nil {
		t.Fatal(err)
	}
	if updated.Content != "edited" || updated.PostID != post.ID {
		t.Fatalf("unexpected update result %+v", updated)
	}
	_, err = s.Comment.Update(ctx, c.ID, "")
	assertCode(t, err, errs.EINVALID)

	if err := s.Comment.Delete(ctx, c.ID); err != nil {
		t.Fatal(err)
	}
	assertCode(t, s.Comment.Delete(ctx, c.ID), errs.ENOTFOUND)
	_, err = s.Comment.ByID(ctx, c.ID)
	assertCode(t, err, errs.ENOTFOUND)
}
