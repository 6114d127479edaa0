package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/lobodInI/API-Social-Media/auth"
	"github.com/lobodInI/API-Social-Media/domain"
	"github.com/lobodInI/API-Social-Media/errs"
	"github.com/lobodInI/API-Social-Media/logging"
)

// registerLikeRoutes is a helper for registering all Like routes.
func (s *Server) registerLikeRoutes(r *mux.Router) {
	// Like a post.
	r.HandleFunc("/posts/{id:[0-9]+}/like", s.requireAuth(s.handleCreateLike)).Methods("POST")

	// Take back the like of a post.
	r.HandleFunc("/posts/{id:[0-9]+}/unlike", s.requireAuth(s.handleDeleteLike)).Methods("POST")
}

// handleCreateLike handles the route "POST /posts/{id}/like".
// It creates a like of the authed user and returns the updated post detail.
func (s *Server) handleCreateLike(w http.ResponseWriter, r *http.Request) {
	like, err := likeFromRequest(r)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if err := s.ls.Create(r.Context(), like); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	logging.Audit(r.Context(), logging.ActionLike, like.AuthorID, like.PostID, "post liked")

	s.writePostDetail(w, r, like.PostID)
}

// handleDeleteLike handles the route "POST /posts/{id}/unlike".
// It deletes the like of the authed user and returns the updated post detail.
func (s *Server) handleDeleteLike(w http.ResponseWriter, r *http.Request) {
	like, err := likeFromRequest(r)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if err := s.ls.Delete(r.Context(), like); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	logging.Audit(r.Context(), logging.ActionUnlike, like.AuthorID, like.PostID, "post unliked")

	s.writePostDetail(w, r, like.PostID)
}

// likeFromRequest builds the like of the authed user on the post of the route.
func likeFromRequest(r *http.Request) (*domain.Like, error) {
	id, err := idParam(r, "id")
	if err != nil {
		return nil, err
	}
	return &domain.Like{PostID: id, AuthorID: auth.GetUser(r.Context()).ID}, nil
}
