package http

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path"

	"github.com/gorilla/mux"

	"github.com/lobodInI/API-Social-Media/errs"
	"github.com/lobodInI/API-Social-Media/storage"
)

func (s *Server) registerMediaRoutes(r *mux.Router) {
	r.HandleFunc("/media/{key:.+}", s.handleMedia).Methods("GET")
	r.HandleFunc("/health", handleHealth).Methods("GET")
}

// handleMedia handles the route "GET /media/{key}".
// It streams a stored file, which is how images of the local storage are served.
func (s *Server) handleMedia(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	rc, err := s.store.Read(r.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			err = errs.Errorf(errs.ENOTFOUND, "Not found.")
		}
		errs.ReturnError(w, r, err)
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if _, err := io.Copy(w, rc); err != nil {
		errs.LogError(r, err)
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
