package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/lobodInI/API-Social-Media/auth"
	"github.com/lobodInI/API-Social-Media/domain"
	"github.com/lobodInI/API-Social-Media/errs"
	"github.com/lobodInI/API-Social-Media/logging"
)

func (s *Server) registerFollowRoutes(r *mux.Router) {
	r.HandleFunc("/users/follow/{id:[0-9]+}", s.requireAuth(s.handleGetFollowTarget)).Methods("GET")
	r.HandleFunc("/users/follow/{id:[0-9]+}", s.requireAuth(s.handleCreateFollow)).Methods("POST")
	r.HandleFunc("/users/follow/{id:[0-9]+}", s.requireAuth(s.handleDeleteFollow)).Methods("DELETE")
}

// handleGetFollowTarget handles the route "GET /users/follow/{id}".
// It returns the user that would be followed.
func (s *Server) handleGetFollowTarget(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	user, err := s.us.ByID(r.Context(), id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, newUserResponse(user, s.imageURL(r)))
}

// handleCreateFollow handles the route "POST /users/follow/{id}".
// The authed user follows the user with the given id, whose detail view is returned.
func (s *Server) handleCreateFollow(w http.ResponseWriter, r *http.Request) {
	s.changeFollow(w, r, true)
}

// handleDeleteFollow handles the route "DELETE /users/follow/{id}".
// The authed user unfollows the user with the given id, whose detail view is returned.
func (s *Server) handleDeleteFollow(w http.ResponseWriter, r *http.Request) {
	s.changeFollow(w, r, false)
}

func (s *Server) changeFollow(w http.ResponseWriter, r *http.Request, follow bool) {
	id, err := idParam(r, "id")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	follower := auth.GetUser(r.Context())
	edge := &domain.Follow{FollowerID: follower.ID, FollowedID: id}

	action := logging.ActionFollow
	if follow {
		err = s.fs.Create(r.Context(), edge)
	} else {
		action = logging.ActionUnfollow
		err = s.fs.Delete(r.Context(), edge)
	}
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	logging.Audit(r.Context(), action, follower.ID, id, "follow graph changed")

	followed, err := s.us.ByID(r.Context(), id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	res, err := s.userDetail(r, followed)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}
