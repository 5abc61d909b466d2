package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// maxRequestBody bounds browse server request bodies; they only carry view
// state changes.
const maxRequestBody = 1 << 20

// ParseJSON decodes JSON from the request body into the given destination.
// Unknown fields are rejected.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	return nil
}
