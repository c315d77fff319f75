package models

// OptionalString is a tri-state field update with no wire format of its own.
// Handlers map it from the JSON PATCH body.
//   - Present=false: leave the field unchanged
//   - Present=true, Value=nil: clear the field
//   - Present=true, Value non-nil: set the field (an empty string included)
type OptionalString struct {
	Present bool
	Value   *string
}

// Set returns an update that sets the field to v, or clears it when v is nil
func Set(v *string) OptionalString {
	return OptionalString{Present: true, Value: v}
}
