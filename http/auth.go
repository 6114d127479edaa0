package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/lobodInI/API-Social-Media/auth"
	"github.com/lobodInI/API-Social-Media/domain"
	"github.com/lobodInI/API-Social-Media/errs"
	"github.com/lobodInI/API-Social-Media/logging"
)

var (
	errNotAuthenticated = errs.Errorf(errs.EUNAUTHORIZED, "Authentication credentials were not provided.")
	errNoPermission     = errs.Errorf(errs.EFORBIDDEN, "You do not have permission to perform this action.")
)

// registerAuthRoutes is a helper for registering the routes of the auth system.
func (s *Server) registerAuthRoutes(r *mux.Router) {
	r.HandleFunc("/users/register", s.handleRegister).Methods("POST")
	r.HandleFunc("/users/token", s.handleToken).Methods("POST")
	r.HandleFunc("/users/token/refresh", s.handleTokenRefresh).Methods("POST")
	r.HandleFunc("/users/token/verify", s.handleTokenVerify).Methods("POST")
	r.HandleFunc("/users/logout", s.requireAuth(s.handleLogout)).Methods("POST")
}

// registerRequest is the json body of a registration.
type registerRequest struct {
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	Nickname  string  `json:"nickname"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	City      string  `json:"city"`
	Bio       string  `json:"bio"`
	Birthday  *string `json:"birthday"`
}

// parseDate parses an optional calendar date in the format of dateLayout.
func parseDate(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, strings.TrimSpace(*s))
	if err != nil {
		return nil, errs.Errorf(errs.EINVALID, "Date has wrong format. Use one of these formats instead: YYYY-MM-DD.")
	}
	return &t, nil
}

// handleRegister handles the route "POST /users/register".
// It creates a new user from the json body and returns it.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	birthday, err := parseDate(req.Birthday)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	user := &domain.User{
		Email:     req.Email,
		Password:  req.Password,
		Nickname:  req.Nickname,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		City:      req.City,
		Bio:       req.Bio,
		Birthday:  birthday,
	}
	if err := s.us.Create(r.Context(), user); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	logging.Audit(r.Context(), logging.ActionRegister, user.ID, 0, "user registered")

	writeJSON(w, r, http.StatusCreated, newUserResponse(user, s.imageURL(r)))
}

// handleToken handles the route "POST /users/token".
// It checks the submitted credentials and returns a new access and refresh token.
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	user, err := s.us.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errs.ErrorCode(err) == errs.EUNAUTHORIZED {
			logging.Audit(r.Context(), logging.ActionLoginFailed, 0, 0, "login failed")
		}
		errs.ReturnError(w, r, err)
		return
	}
	pair, err := s.ts.Issue(r.Context(), user)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	logging.Audit(r.Context(), logging.ActionLogin, user.ID, 0, "user logged in")

	writeJSON(w, r, http.StatusOK, pair)
}

// handleTokenRefresh handles the route "POST /users/token/refresh".
func (s *Server) handleTokenRefresh(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Refresh string `json:"refresh"`
	}
	if err := decodeJSON(r, &req); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if req.Refresh == "" {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "A refresh token is required."))
		return
	}

	access, err := s.ts.Refresh(r.Context(), req.Refresh)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"access": access})
}

// handleTokenVerify handles the route "POST /users/token/verify".
// It responds with an empty object if the token is valid.
func (s *Server) handleTokenVerify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := decodeJSON(r, &req); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if req.Token == "" {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "A token is required."))
		return
	}

	if _, err := s.ts.Verify(r.Context(), req.Token); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, struct{}{})
}

// handleLogout handles the route "POST /users/logout".
// It blacklists the submitted refresh token and the access token of the request.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Refresh string `json:"refresh"`
	}
	if err := decodeJSON(r, &req); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if req.Refresh == "" {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "A refresh token is required."))
		return
	}

	// Users may only log themselves out.
	user := auth.GetUser(r.Context())
	claims, err := s.ts.Verify(r.Context(), req.Refresh)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if claims.Type != domain.TokenTypeRefresh {
		errs.ReturnError(w, r, errs.Errorf(errs.EUNAUTHORIZED, "Token has wrong type."))
		return
	}
	if claims.UserID != user.ID {
		errs.ReturnError(w, r, errNoPermission)
		return
	}

	if err := s.ts.Revoke(r.Context(), req.Refresh); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if err := s.ts.Revoke(r.Context(), auth.GetToken(r.Context())); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	logging.Audit(r.Context(), logging.ActionLogout, user.ID, 0, "user logged out")

	writeJSON(w, r, http.StatusOK, map[string]string{"detail": "Logged out successfully"})
}

// authUser checks the bearer token of the request, if there is one, and puts
// the user it belongs to into the request context. Requests without a token
// pass through anonymously, requests with an unusable token are rejected.
func (s *Server) authUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := auth.BearerToken(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := s.ts.Verify(r.Context(), token)
		if err != nil {
			errs.ReturnError(w, r, err)
			return
		}
		if claims.Type != domain.TokenTypeAccess {
			errs.ReturnError(w, r, errs.Errorf(errs.EUNAUTHORIZED, "Given token not valid for any token type."))
			return
		}
		user, err := s.us.ByID(r.Context(), claims.UserID)
		if err != nil {
			if errs.ErrorCode(err) == errs.ENOTFOUND {
				err = errs.Errorf(errs.EUNAUTHORIZED, "User not found.")
			}
			errs.ReturnError(w, r, err)
			return
		}

		ctx := auth.SetUser(r.Context(), user)
		ctx = auth.SetToken(ctx, token)
		ctx = logging.WithUserID(ctx, user.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAuth rejects anonymous requests.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if auth.GetUser(r.Context()) == nil {
			errs.ReturnError(w, r, errNotAuthenticated)
			return
		}
		next(w, r)
	}
}

// requireStaff rejects requests of users that are not staff.
func (s *Server) requireStaff(next http.HandlerFunc) http.HandlerFunc {
	return s.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		if !auth.GetUser(r.Context()).IsStaff {
			errs.ReturnError(w, r, errNoPermission)
			return
		}
		next(w, r)
	})
}
