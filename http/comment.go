package http

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/lobodInI/API-Social-Media/auth"
	"github.com/lobodInI/API-Social-Media/domain"
	"github.com/lobodInI/API-Social-Media/errs"
	"github.com/lobodInI/API-Social-Media/logging"
)

func (s *Server) registerCommentRoutes(r *mux.Router) {
	r.HandleFunc("/comments", s.requireAuth(s.handleListComments)).Methods("GET")
	r.HandleFunc("/comments", s.requireAuth(s.handleCreateComment)).Methods("POST")
	r.HandleFunc("/comments/{id:[0-9]+}", s.requireAuth(s.handleGetComment)).Methods("GET")
	r.HandleFunc("/comments/{id:[0-9]+}", s.requireAuth(s.handleUpdateComment)).Methods("PUT", "PATCH")
	r.HandleFunc("/comments/{id:[0-9]+}", s.requireAuth(s.handleDeleteComment)).Methods("DELETE")
}

// commentRequest is the json body of comment creation and updates.
type commentRequest struct {
	Post    int     `json:"post"`
	Content *string `json:"content"`
}

// handleListComments handles the route "GET /comments".
// It returns one page of comments, newest first, optionally only those of ?post=<id>.
func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	page, err := s.pageRequest(r)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	filter := domain.CommentFilter{Page: page}
	if v := r.URL.Query().Get("post"); v != "" {
		postID, err := strconv.Atoi(v)
		if err != nil || postID <= 0 {
			errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
			return
		}
		filter.PostID = postID
	}

	comments, count, err := s.cs.List(r.Context(), filter)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	results := make([]commentListResponse, 0, len(comments))
	for i := range comments {
		results = append(results, newCommentListResponse(&comments[i]))
	}
	writeJSON(w, r, http.StatusOK, newPageResult(r, page, count, results))
}

// handleCreateComment handles the route "POST /comments".
func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if err := decodeJSON(r, &req); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	comment := &domain.Comment{
		PostID:   req.Post,
		AuthorID: auth.GetUser(r.Context()).ID,
		Content:  deref(req.Content),
	}
	if err := s.cs.Create(r.Context(), comment); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, newCommentResponse(comment))
}

// handleGetComment handles the route "GET /comments/{id}".
// It returns the comment together with a summary of the commented post.
func (s *Server) handleGetComment(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	comment, err := s.cs.ByID(r.Context(), id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	post, err := s.ps.ByID(r.Context(), comment.PostID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newCommentDetailResponse(comment, post))
}

// handleUpdateComment handles the route "PUT|PATCH /comments/{id}".
// Only the author may edit a comment, and only its content can change.
func (s *Server) handleUpdateComment(w http.ResponseWriter, r *http.Request) {
	comment, err := s.authoredComment(r)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	var req commentRequest
	if err := decodeJSON(r, &req); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	content := comment.Content
	if req.Content != nil {
		content = *req.Content
	}

	comment, err = s.cs.Update(r.Context(), comment.ID, content)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newCommentResponse(comment))
}

// handleDeleteComment handles the route "DELETE /comments/{id}".
func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	comment, err := s.authoredComment(r)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if err := s.cs.Delete(r.Context(), comment.ID); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	logging.Audit(r.Context(), logging.ActionDeleteComment, comment.AuthorID, comment.ID, "comment deleted")

	w.WriteHeader(http.StatusNoContent)
}

// authoredComment fetches the comment of the route and makes sure the authed user wrote it.
func (s *Server) authoredComment(r *http.Request) (*domain.Comment, error) {
	id, err := idParam(r, "id")
	if err != nil {
		return nil, err
	}
	comment, err := s.cs.ByID(r.Context(), id)
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != auth.GetUser(r.Context()).ID {
		return nil, errNoPermission
	}
	return comment, nil
}
