package httputil

import "encoding/json"

// OptionalString is a PATCH field that tells an absent key apart from an
// explicit null. Present is set only when the key appears in the body;
// Value is nil for null.
type OptionalString struct {
	Present bool
	Value   *string
}

// UnmarshalJSON is only invoked for keys present in the body
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Present = true
	return json.Unmarshal(data, &o.Value)
}
