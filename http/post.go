package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/lobodInI/API-Social-Media/auth"
	"github.com/lobodInI/API-Social-Media/domain"
	"github.com/lobodInI/API-Social-Media/errs"
	"github.com/lobodInI/API-Social-Media/logging"
)

// registerPostRoutes is a helper for registering all post routes.
func (s *Server) registerPostRoutes(r *mux.Router) {
	r.HandleFunc("/posts", s.requireAuth(s.handleListPosts)).Methods("GET")
	r.HandleFunc("/posts", s.requireAuth(s.handleCreatePost)).Methods("POST")
	r.HandleFunc("/posts/{id:[0-9]+}", s.requireAuth(s.handleGetPost)).Methods("GET")
	r.HandleFunc("/posts/{id:[0-9]+}", s.requireAuth(s.handleUpdatePost)).Methods("PUT", "PATCH")
	r.HandleFunc("/posts/{id:[0-9]+}", s.requireAuth(s.handleDeletePost)).Methods("DELETE")
}

// postRequest is the json body of post creation and updates.
type postRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
	Hashtag *string `json:"hashtag"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// handleListPosts handles the route "GET /posts".
// It returns one page of posts, newest first. The search parameter matches the hashtag.
func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	page, err := s.pageRequest(r)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	posts, count, err := s.ps.List(r.Context(), domain.PostFilter{
		Search: r.URL.Query().Get("search"),
		Page:   page,
	})
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	url := s.imageURL(r)
	results := make([]postListResponse, 0, len(posts))
	for i := range posts {
		results = append(results, newPostListResponse(&posts[i], url))
	}
	writeJSON(w, r, http.StatusOK, newPageResult(r, page, count, results))
}

// handleCreatePost handles the route "POST /posts".
// The authed user becomes the author of the new post.
func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := decodeJSON(r, &req); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	user := auth.GetUser(r.Context())
	post := &domain.Post{
		AuthorID: user.ID,
		Title:    deref(req.Title),
		Content:  deref(req.Content),
		Hashtag:  deref(req.Hashtag),
	}
	if err := s.ps.Create(r.Context(), post); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	logging.Audit(r.Context(), logging.ActionCreatePost, user.ID, post.ID, "post created")

	writeJSON(w, r, http.StatusCreated, newPostResponse(post, s.imageURL(r)))
}

// handleGetPost handles the route "GET /posts/{id}".
// It returns the post with its comments and likes.
func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	s.writePostDetail(w, r, id)
}

// handleUpdatePost handles the route "PUT|PATCH /posts/{id}".
// Only the author may update a post.
func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	post, err := s.authoredPost(r)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	var req postRequest
	if err := decodeJSON(r, &req); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	post, err = s.ps.Update(r.Context(), post.ID, &domain.PostUpdate{
		Title:   req.Title,
		Content: req.Content,
		Hashtag: req.Hashtag,
	})
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newPostResponse(post, s.imageURL(r)))
}

// handleDeletePost handles the route "DELETE /posts/{id}".
// Only the author may delete a post. Its comments, likes and image go with it.
func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	post, err := s.authoredPost(r)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if err := s.ps.Delete(r.Context(), post.ID); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if post.Image != "" {
		s.deleteImage(r.Context(), post.Image)
	}
	logging.Audit(r.Context(), logging.ActionDeletePost, post.AuthorID, post.ID, "post deleted")

	w.WriteHeader(http.StatusNoContent)
}

// authoredPost fetches the post of the route and makes sure the authed user wrote it.
func (s *Server) authoredPost(r *http.Request) (*domain.Post, error) {
	id, err := idParam(r, "id")
	if err != nil {
		return nil, err
	}
	post, err := s.ps.ByID(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != auth.GetUser(r.Context()).ID {
		return nil, errNoPermission
	}
	return post, nil
}

// writePostDetail writes the detail view of the post with the given id.
func (s *Server) writePostDetail(w http.ResponseWriter, r *http.Request, id int) {
	post, err := s.ps.Detail(r.Context(), id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newPostDetailResponse(post, s.imageURL(r)))
}
