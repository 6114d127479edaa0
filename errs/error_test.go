package errs

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"gorm.io/gorm"
)

func TestErrorCodeAndMessage(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    string
		message string
	}{
		{"nil", nil, "", ""},
		{"app error", Errorf(EINVALID, "You cannot follow yourself."), EINVALID, "You cannot follow yourself."},
		{"formatted", Errorf(ENOTFOUND, "User %d does not exist.", 7), ENOTFOUND, "User 7 does not exist."},
		{"wrapped app error", fmt.Errorf("follow: %w", Errorf(EFORBIDDEN, "nope")), EFORBIDDEN, "nope"},
		{"record not found", fmt.Errorf("by id: %w", gorm.ErrRecordNotFound), ENOTFOUND, "Not found."},
		{"other", errors.New("connection refused"), EINTERNAL, "Internal error."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorCode(tt.err); got != tt.code {
				t.Fatalf("ErrorCode() = %q, want %q", got, tt.code)
			}
			if got := ErrorMessage(tt.err); got != tt.message {
				t.Fatalf("ErrorMessage() = %q, want %q", got, tt.message)
			}
		})
	}
}

// percentMessage looks like a format string but is passed without arguments,
// as happens with messages built from user-supplied file names.
var percentMessage = "Image 100%.png is invalid."

func TestErrorfKeepsPercentSignsWithoutArgs(t *testing.T) {
	err := Errorf(EINVALID, percentMessage)
	if err.Message != "Image 100%.png is invalid." {
		t.Fatalf("unexpected message %q", err.Message)
	}
}

func TestReturnError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		detail string
	}{
		{Errorf(EINVALID, "bad"), http.StatusBadRequest, "bad"},
		{Errorf(EUNAUTHORIZED, "who"), http.StatusUnauthorized, "who"},
		{Errorf(EFORBIDDEN, "no"), http.StatusForbidden, "no"},
		{Errorf(ENOTFOUND, "gone"), http.StatusNotFound, "gone"},
		{errors.New("boom"), http.StatusInternalServerError, "Internal error."},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		ReturnError(w, r, tt.err)

		if w.Code != tt.status {
			t.Fatalf("status = %d, want %d", w.Code, tt.status)
		}
		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["detail"] != tt.detail {
			t.Fatalf("detail = %q, want %q", body["detail"], tt.detail)
		}
	}
}
