package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/camden-git/seeds/models"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// decodeJSON reads a single JSON object into dst, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		detail := "Invalid request body: " + err.Error()
		if errors.Is(err, io.EOF) {
			detail = "Request body is empty"
		}
		WriteAPIError(w, http.StatusBadRequest, "BAD_REQUEST", detail)
		return false
	}
	return true
}

// currentUser returns the user AuthMiddleware stored on the request.
func currentUser(r *http.Request) (*models.User, bool) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	return user, ok && user != nil
}

// ownerID is the key every record of the current user is scoped by.
func ownerID(r *http.Request) uint {
	if user, ok := currentUser(r); ok {
		return user.ID
	}
	return 0
}

func queryInt(r *http.Request, key string, fallback int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return fallback
	}
	return v
}

// queryBool parses key, returning nil when it is absent or not a boolean.
func queryBool(r *http.Request, key string) *bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(key))
	if err != nil {
		return nil
	}
	return &v
}

type deletedResponse struct {
	Deleted int64 `json:"deleted"`
}
