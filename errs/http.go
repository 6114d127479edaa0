package errs

import (
	"encoding/json"
	"net/http"

	"github.com/lobodInI/API-Social-Media/logging"
)

// codes maps application error codes to http status codes.
var codes = map[string]int{
	EINVALID:      http.StatusBadRequest,
	EUNAUTHORIZED: http.StatusUnauthorized,
	EFORBIDDEN:    http.StatusForbidden,
	ENOTFOUND:     http.StatusNotFound,
	EINTERNAL:     http.StatusInternalServerError,
}

// StatusCode returns the http status code belonging to an application error code.
func StatusCode(code string) int {
	if v, ok := codes[code]; ok {
		return v
	}
	return http.StatusInternalServerError
}

// ReturnError writes an error as json to the response, using the http status
// code belonging to the error's application error code. Internal errors are
// logged, since their details are hidden from the client.
func ReturnError(w http.ResponseWriter, r *http.Request, err error) {
	code, message := ErrorCode(err), ErrorMessage(err)

	if code == EINTERNAL {
		LogError(r, err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(StatusCode(code))
	if err := json.NewEncoder(w).Encode(&errorResponse{Detail: message}); err != nil {
		LogError(r, err)
	}
}

// LogError logs an error together with the request it occurred in.
func LogError(r *http.Request, err error) {
	l := logging.Ctx(r.Context())
	l.Error().Err(err).Msg("request error")
}

// errorResponse is the json body of every error response.
type errorResponse struct {
	Detail string `json:"detail"`
}
