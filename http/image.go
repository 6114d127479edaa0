package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/lobodInI/API-Social-Media/auth"
	"github.com/lobodInI/API-Social-Media/domain"
	"github.com/lobodInI/API-Social-Media/errs"
	"github.com/lobodInI/API-Social-Media/logging"
)

// registerImageRoutes is a helper for registering all image upload routes.
func (s *Server) registerImageRoutes(r *mux.Router) {
	// Upload the authed user's profile image.
	r.HandleFunc("/users/me/upload_image", s.requireAuth(s.handleUploadUserImage)).Methods("POST")

	// Upload the image of a post of the authed user.
	r.HandleFunc("/posts/{id:[0-9]+}/upload_image", s.requireAuth(s.handleUploadPostImage)).Methods("POST")
}

// handleUploadUserImage handles the route "POST /users/me/upload_image".
// It stores the uploaded image, points the user at it and deletes the previous one.
func (s *Server) handleUploadUserImage(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())

	key, err := s.storeUpload(w, r, domain.OwnerTypeUser, user.Nickname)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	old, err := s.us.SetImage(r.Context(), user.ID, key)
	if err != nil {
		s.deleteImage(r.Context(), key)
		errs.ReturnError(w, r, err)
		return
	}
	if old != "" {
		s.deleteImage(r.Context(), old)
	}
	user.Image = key
	logging.Audit(r.Context(), logging.ActionUploadImage, user.ID, user.ID, "user image uploaded")

	writeJSON(w, r, http.StatusOK, newUserResponse(user, s.imageURL(r)))
}

// handleUploadPostImage handles the route "POST /posts/{id}/upload_image".
// Only the author may upload the image of a post. The previous image is deleted.
func (s *Server) handleUploadPostImage(w http.ResponseWriter, r *http.Request) {
	post, err := s.authoredPost(r)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	key, err := s.storeUpload(w, r, domain.OwnerTypePost, post.Title)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	old, err := s.ps.SetImage(r.Context(), post.ID, key)
	if err != nil {
		s.deleteImage(r.Context(), key)
		errs.ReturnError(w, r, err)
		return
	}
	if old != "" {
		s.deleteImage(r.Context(), old)
	}
	logging.Audit(r.Context(), logging.ActionUploadImage, post.AuthorID, post.ID, "post image uploaded")

	writeJSON(w, r, http.StatusOK, postImageResponse{ID: post.ID, Image: s.imageURL(r)(key)})
}

// storeUpload reads the multipart field "image" of the request, validates it
// and stores it. It returns the key the image was stored under.
func (s *Server) storeUpload(w http.ResponseWriter, r *http.Request, ownerType, ownerName string) (string, error) {
	// Leave some room for the multipart overhead.
	r.Body = http.MaxBytesReader(w, r.Body, domain.MaxUploadSize+1<<20)
	if err := r.ParseMultipartForm(domain.MaxUploadSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return "", errs.Errorf(errs.EINVALID, "The submitted file exceeds the upload size limit of %dMB.", domain.MaxUploadSize>>20)
		}
		return "", errs.Errorf(errs.EINVALID, "The submitted data was not a file. Check the encoding type on the form.")
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("image")
	if err != nil {
		return "", errs.Errorf(errs.EINVALID, "No file was submitted.")
	}
	defer file.Close()

	img := &domain.Image{
		OwnerType: ownerType,
		OwnerName: ownerName,
		File:      file,
		Filename:  header.Filename,
	}
	if err := s.is.Create(r.Context(), img); err != nil {
		return "", err
	}
	return img.Key, nil
}

// imageURL returns a function resolving image keys into URLs for the request.
// URLs of the local storage are relative and get the scheme and host of the request.
func (s *Server) imageURL(r *http.Request) urlFunc {
	return func(key string) string {
		url := s.is.URL(r.Context(), key)
		if !strings.HasPrefix(url, "/") {
			return url
		}
		scheme := "http"
		if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
			scheme = "https"
		}
		return scheme + "://" + r.Host + url
	}
}
