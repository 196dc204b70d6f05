package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/felixgeelhaar/classtrack/internal/api/middleware"
	"github.com/felixgeelhaar/classtrack/internal/api/respond"
	"github.com/felixgeelhaar/classtrack/internal/domain"
)

// maxBodyBytes bounds request bodies
const maxBodyBytes = 1 << 20

// decodeJSON reads the request body into v. An empty body leaves v untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		respond.BadRequest(w, r, "Invalid request body")
		return false
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return true
	}
	if err := json.Unmarshal(body, v); err != nil {
		respond.BadRequest(w, r, "Invalid request body")
		return false
	}
	return true
}

// identity returns the request identity, writing a 401 when there is none
func identity(w http.ResponseWriter, r *http.Request) (*domain.Identity, bool) {
	id := middleware.GetIdentity(r.Context())
	if id == nil {
		respond.Unauthorized(w, r, "Authentication required")
		return nil, false
	}
	return id, true
}

// queryID parses the id query parameter
func queryID(w http.ResponseWriter, r *http.Request, resource string) (int64, bool) {
	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil || id <= 0 {
		respond.BadRequest(w, r, "Invalid "+resource+" id")
		return 0, false
	}
	return id, true
}

// flexString accepts a JSON string or number
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(strings.TrimSpace(n.String()))
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
