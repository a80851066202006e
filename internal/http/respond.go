package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/elnormous/contenttype"
)

const maxBodyBytes = 1 << 20

var (
	jsonMediaType      = contenttype.NewMediaType("application/json")
	htmlMediaType      = contenttype.NewMediaType("text/html")
	negotiableResponse = []contenttype.MediaType{jsonMediaType, htmlMediaType}
)

func encode[T any](w http.ResponseWriter, _ *http.Request, status int, v T) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

func decode[T any](r *http.Request) (T, error) {
	var v T
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return v, fmt.Errorf("decode json: %w", err)
	}
	return v, nil
}

// wantsJSON reports whether the caller should be answered with the JSON
// envelope instead of redirects and HTML.
func wantsJSON(r *http.Request) bool {
	if hasJSONBody(r) {
		return true
	}
	if r.Header.Get("X-Requested-With") == "XMLHttpRequest" {
		return true
	}

	accepted, _, err := contenttype.GetAcceptableMediaType(r, negotiableResponse)
	if err != nil {
		return false
	}
	return accepted.Matches(jsonMediaType)
}

func hasJSONBody(r *http.Request) bool {
	if r.Header.Get("Content-Type") == "" {
		return false
	}
	ctype, err := contenttype.GetMediaType(r)
	return err == nil && ctype.Matches(jsonMediaType)
}

func writeResult(w http.ResponseWriter, r *http.Request, status int, data any, message string) error {
	return encode(w, r, status, Result{Code: status, Data: data, Message: message})
}

// writeError answers JSON clients with the envelope and everyone else with a
// plain text body. 401 responses always carry a Bearer challenge.
func writeError(w http.ResponseWriter, r *http.Request, status int, message string) error {
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="stateless-auth"`)
	}
	if wantsJSON(r) {
		return writeResult(w, r, status, nil, message)
	}

	http.Error(w, message, status)
	return nil
}
