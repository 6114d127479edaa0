package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/lobodInI/API-Social-Media/auth"
	"github.com/lobodInI/API-Social-Media/domain"
	"github.com/lobodInI/API-Social-Media/errs"
	"github.com/lobodInI/API-Social-Media/logging"
)

func (s *Server) registerUserRoutes(r *mux.Router) {
	// List and search users.
	r.HandleFunc("/users", s.requireAuth(s.handleListUsers)).Methods("GET")

	// Manage the authed user's own profile.
	r.HandleFunc("/users/me", s.requireAuth(s.handleGetMe)).Methods("GET")
	r.HandleFunc("/users/me", s.requireAuth(s.handleUpdateMe)).Methods("PUT", "PATCH")

	// Get, update and delete a specific user.
	r.HandleFunc("/users/{id:[0-9]+}", s.requireAuth(s.handleGetUser)).Methods("GET")
	r.HandleFunc("/users/{id:[0-9]+}", s.requireAuth(s.handleUpdateUser)).Methods("PUT", "PATCH")
	r.HandleFunc("/users/{id:[0-9]+}", s.requireStaff(s.handleDeleteUser)).Methods("DELETE")
}

// userUpdateRequest is the json body of a user update. Omitted fields stay untouched,
// for PUT as well as for PATCH.
type userUpdateRequest struct {
	Email     *string      `json:"email"`
	Password  *string      `json:"password"`
	Nickname  *string      `json:"nickname"`
	FirstName *string      `json:"first_name"`
	LastName  *string      `json:"last_name"`
	City      *string      `json:"city"`
	Bio       *string      `json:"bio"`
	Birthday  nullableDate `json:"birthday"`
}

// nullableDate is a date of a json body that remembers whether it was sent at all,
// so that an explicit null can be told apart from an omitted field.
type nullableDate struct {
	Set   bool
	Value *string
}

func (d *nullableDate) UnmarshalJSON(b []byte) error {
	d.Set = true
	if string(b) == "null" {
		d.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	d.Value = &s
	return nil
}

func (req *userUpdateRequest) toUpdate() (*domain.UserUpdate, error) {
	birthday, err := parseDate(req.Birthday.Value)
	if err != nil {
		return nil, err
	}
	return &domain.UserUpdate{
		Email:     req.Email,
		Password:  req.Password,
		Nickname:  req.Nickname,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		City:      req.City,
		Bio:       req.Bio,
		Birthday:  birthday,

		ClearBirthday: req.Birthday.Set && req.Birthday.Value == nil,
	}, nil
}

// handleListUsers handles the route "GET /users".
// It returns one page of users with their follower and following counts.
// The search parameter matches nickname and city.
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	page, err := s.pageRequest(r)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	users, count, err := s.us.List(r.Context(), domain.UserFilter{
		Search: r.URL.Query().Get("search"),
		Page:   page,
	})
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	url := s.imageURL(r)
	results := make([]userListResponse, 0, len(users))
	for i := range users {
		results = append(results, newUserListResponse(&users[i], url))
	}
	writeJSON(w, r, http.StatusOK, newPageResult(r, page, count, results))
}

// handleGetMe handles the route "GET /users/me".
func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	writeJSON(w, r, http.StatusOK, newUserResponse(user, s.imageURL(r)))
}

// handleUpdateMe handles the route "PUT|PATCH /users/me".
func (s *Server) handleUpdateMe(w http.ResponseWriter, r *http.Request) {
	s.updateUser(w, r, auth.GetUser(r.Context()).ID)
}

// handleGetUser handles the route "GET /users/{id}".
// It returns the user along with the users they follow and are followed by.
func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
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
	res, err := s.userDetail(r, user)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

// handleUpdateUser handles the route "PUT|PATCH /users/{id}".
// Users may update themselves, staff may update anyone.
func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	authed := auth.GetUser(r.Context())
	if authed.ID != id && !authed.IsStaff {
		errs.ReturnError(w, r, errNoPermission)
		return
	}
	s.updateUser(w, r, id)
}

// updateUser applies the update in the request body to the user with the given id.
func (s *Server) updateUser(w http.ResponseWriter, r *http.Request, id int) {
	var req userUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	upd, err := req.toUpdate()
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	user, err := s.us.Update(r.Context(), id, upd)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	logging.Audit(r.Context(), logging.ActionUpdateUser, auth.GetUser(r.Context()).ID, user.ID, "user updated")

	writeJSON(w, r, http.StatusOK, newUserResponse(user, s.imageURL(r)))
}

// handleDeleteUser handles the route "DELETE /users/{id}".
// It deletes the user with everything they authored, then removes their stored images.
func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	keys, err := s.us.Delete(r.Context(), id)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	for _, key := range keys {
		s.deleteImage(r.Context(), key)
	}
	logging.Audit(r.Context(), logging.ActionDeleteUser, auth.GetUser(r.Context()).ID, id, "user deleted")

	w.WriteHeader(http.StatusNoContent)
}

// userDetail builds the detail view of a user, including follow counts and lists.
func (s *Server) userDetail(r *http.Request, user *domain.User) (userDetailResponse, error) {
	ctx := r.Context()
	followers, following, err := s.fs.Counts(ctx, user.ID)
	if err != nil {
		return userDetailResponse{}, err
	}
	user.FollowerCount, user.FollowingCount = followers, following

	followingUsers, err := s.fs.Following(ctx, user.ID)
	if err != nil {
		return userDetailResponse{}, err
	}
	followerUsers, err := s.fs.Followers(ctx, user.ID)
	if err != nil {
		return userDetailResponse{}, err
	}
	return newUserDetailResponse(user, followingUsers, followerUsers, s.imageURL(r)), nil
}

// deleteImage removes a stored image that is no longer referenced. Failures are
// only logged, since the record pointing at the image is already gone.
func (s *Server) deleteImage(ctx context.Context, key string) {
	if err := s.is.Delete(ctx, key); err != nil {
		l := logging.Ctx(ctx)
		l.Warn().Err(err).Str("key", key).Msg("delete stored image")
	}
}
