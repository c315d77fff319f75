package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// MaxJSONBodyBytes bounds JSON request bodies
const MaxJSONBodyBytes = 10 << 20

// ParseJSON decodes one JSON object from the request body into dest.
// Unknown fields are rejected so that misspelled patch fields fail loudly
// instead of being silently ignored.
func ParseJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	// MaxBytesReader needs w to answer 413 properly
	r.Body = http.MaxBytesReader(w, r.Body, MaxJSONBodyBytes)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	return nil
}
