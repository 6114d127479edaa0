package http

import (
	"fmt"
	"net/http"
	"net/url"
	"testing"

	"github.com/lobodInI/API-Social-Media/domain"
)

func TestLikeScenario(t *testing.T) {
	a := newTestApp(t)
	alice := a.register("alice")
	bob := a.register("bob")
	postID := a.createPost(alice, "first", "go")

	rec := a.do("POST", fmt.Sprintf("/posts/%d/like", postID), bob.Access, nil)
	expectStatus(t, rec, http.StatusOK)
	var detail postDetailResponse
	decode(t, rec, &detail)
	if detail.LikesCount != 1 || len(detail.Likes) != 1 || detail.Likes[0].Author != "bob" {
		t.Fatalf("unexpected detail after like %+v", detail)
	}

	rec = a.do("POST", fmt.Sprintf("/posts/%d/like", postID), bob.Access, nil)
	expectError(t, rec, http.StatusBadRequest, "You already liked this post.")

	rec = a.do("POST", fmt.Sprintf("/posts/%d/unlike", postID), bob.Access, nil)
	expectStatus(t, rec, http.StatusOK)
	decode(t, rec, &detail)
	if detail.LikesCount != 0 || len(detail.Likes) != 0 {
		t.Fatalf("unexpected detail after unlike %+v", detail)
	}

	rec = a.do("POST", fmt.Sprintf("/posts/%d/unlike", postID), bob.Access, nil)
	expectError(t, rec, http.StatusBadRequest, "You have not liked this post.")

	rec = a.do("POST", "/posts/999/like", bob.Access, nil)
	expectError(t, rec, http.StatusNotFound, "Post not found.")
}

func TestPostPermissions(t *testing.T) {
	a := newTestApp(t)
	alice := a.register("alice")
	bob := a.register("bob")
	postID := a.createPost(alice, "first", "")
	postPath := fmt.Sprintf("/posts/%d", postID)

	rec := a.do("DELETE", postPath, bob.Access, nil)
	expectError(t, rec, http.StatusForbidden, "You do not have permission to perform this action.")
	rec = a.do("PATCH", postPath, bob.Access, map[string]string{"title": "hijacked"})
	expectStatus(t, rec, http.StatusForbidden)

	rec = a.do("GET", postPath, bob.Access, nil)
	expectStatus(t, rec, http.StatusOK)
	var detail postDetailResponse
	decode(t, rec, &detail)
	if detail.Title != "first" || detail.Author != "alice" {
		t.Fatalf("post changed by a non-author: %+v", detail)
	}

	rec = a.do("PATCH", postPath, alice.Access, map[string]string{"hashtag": "news"})
	expectStatus(t, rec, http.StatusOK)
	var post postResponse
	decode(t, rec, &post)
	if post.Hashtag != "news" || post.Title != "first" {
		t.Fatalf("unexpected post %+v", post)
	}

	expectStatus(t, a.do("DELETE", postPath, alice.Access, nil), http.StatusNoContent)
	expectError(t, a.do("GET", postPath, alice.Access, nil), http.StatusNotFound, "Post not found.")
}

func TestCreatePostValidation(t *testing.T) {
	a := newTestApp(t)
	alice := a.register("alice")

	rec := a.do("POST", "/posts", alice.Access, map[string]string{"content": "no title"})
	expectError(t, rec, http.StatusBadRequest, "A title is required.")

	rec = a.do("POST", "/posts", "", map[string]string{"title": "t", "content": "c"})
	expectStatus(t, rec, http.StatusUnauthorized)
}

func TestListPostsPagination(t *testing.T) {
	a := newTestApp(t)
	alice := a.register("alice")
	for i := 1; i <= 7; i++ {
		hashtag := "odd"
		if i%2 == 0 {
			hashtag = "even"
		}
		a.createPost(alice, fmt.Sprintf("post %d", i), hashtag)
	}

	rec := a.do("GET", "/posts", alice.Access, nil)
	expectStatus(t, rec, http.StatusOK)
	var page domain.PageResult[postListResponse]
	decode(t, rec, &page)
	if page.Count != 7 || len(page.Results) != 5 || page.Previous != nil || page.Next == nil {
		t.Fatalf("unexpected first page %+v", page)
	}
	if page.Results[0].Title != "post 7" || page.Results[0].Author != "alice" {
		t.Fatalf("unexpected first post %+v", page.Results[0])
	}
	next, err := url.Parse(*page.Next)
	if err != nil || next.Query().Get("page") != "2" {
		t.Fatalf("unexpected next link %q", *page.Next)
	}

	rec = a.do("GET", next.RequestURI(), alice.Access, nil)
	expectStatus(t, rec, http.StatusOK)
	decode(t, rec, &page)
	if len(page.Results) != 2 || page.Next != nil || page.Previous == nil {
		t.Fatalf("unexpected second page %+v", page)
	}
	prev, err := url.Parse(*page.Previous)
	if err != nil || prev.Query().Has("page") {
		t.Fatalf("unexpected previous link %q", *page.Previous)
	}

	rec = a.do("GET", "/posts?page=3", alice.Access, nil)
	expectError(t, rec, http.StatusNotFound, "Invalid page.")
	rec = a.do("GET", "/posts?page=abc", alice.Access, nil)
	expectError(t, rec, http.StatusNotFound, "Invalid page.")
	for _, page := range []string{"3689348814741910324", "9223372036854775807", "99999999999999999999"} {
		rec = a.do("GET", "/posts?page="+page, alice.Access, nil)
		expectError(t, rec, http.StatusNotFound, "Invalid page.")
		rec = a.do("GET", "/posts?page_size=50&page="+page, alice.Access, nil)
		expectError(t, rec, http.StatusNotFound, "Invalid page.")
	}

	rec = a.do("GET", "/posts?page_size=100", alice.Access, nil)
	decode(t, rec, &page)
	if len(page.Results) != 7 {
		t.Fatalf("page_size=100 returned %d posts", len(page.Results))
	}

	rec = a.do("GET", "/posts?search=even", alice.Access, nil)
	decode(t, rec, &page)
	if page.Count != 3 {
		t.Fatalf("search even matched %d posts, want 3", page.Count)
	}
}

func TestCommentFlow(t *testing.T) {
	a := newTestApp(t)
	alice := a.register("alice")
	bob := a.register("bob")
	postID := a.createPost(alice, "first", "")
	otherID := a.createPost(alice, "second", "")

	rec := a.do("POST", "/comments", bob.Access, map[string]interface{}{"post": postID, "content": "nice"})
	expectStatus(t, rec, http.StatusCreated)
	var comment commentResponse
	decode(t, rec, &comment)
	if comment.Post != postID || comment.Author != bob.ID || comment.Content != "nice" {
		t.Fatalf("unexpected comment %+v", comment)
	}
	commentPath := fmt.Sprintf("/comments/%d", comment.ID)

	rec = a.do("POST", "/comments", bob.Access, map[string]interface{}{"post": otherID, "content": "also nice"})
	expectStatus(t, rec, http.StatusCreated)
	rec = a.do("POST", "/comments", bob.Access, map[string]interface{}{"post": 999, "content": "lost"})
	expectError(t, rec, http.StatusBadRequest, "Invalid post 999, object does not exist.")

	rec = a.do("GET", fmt.Sprintf("/comments?post=%d", postID), alice.Access, nil)
	expectStatus(t, rec, http.StatusOK)
	var page domain.PageResult[commentListResponse]
	decode(t, rec, &page)
	if page.Count != 1 || page.Results[0].Post != "first" || page.Results[0].Author != "bob" {
		t.Fatalf("unexpected comment list %+v", page)
	}

	rec = a.do("GET", commentPath, alice.Access, nil)
	expectStatus(t, rec, http.StatusOK)
	var detail commentDetailResponse
	decode(t, rec, &detail)
	if detail.Post.ID != postID || detail.Post.Author != "alice" || detail.Author != "bob" {
		t.Fatalf("unexpected comment detail %+v", detail)
	}

	rec = a.do("PATCH", commentPath, alice.Access, map[string]string{"content": "edited"})
	expectStatus(t, rec, http.StatusForbidden)
	rec = a.do("PATCH", commentPath, bob.Access, map[string]string{"content": "edited"})
	expectStatus(t, rec, http.StatusOK)
	decode(t, rec, &comment)
	if comment.Content != "edited" {
		t.Fatalf("unexpected comment %+v", comment)
	}

	rec = a.do("GET", fmt.Sprintf("/posts/%d", postID), alice.Access, nil)
	var post postDetailResponse
	decode(t, rec, &post)
	if post.CommentsCount != 1 || post.Comments[0].Content != "edited" {
		t.Fatalf("unexpected post detail %+v", post)
	}

	expectStatus(t, a.do("DELETE", commentPath, alice.Access, nil), http.StatusForbidden)
	expectStatus(t, a.do("DELETE", commentPath, bob.Access, nil), http.StatusNoContent)
	expectStatus(t, a.do("GET", commentPath, bob.Access, nil), http.StatusNotFound)
}
