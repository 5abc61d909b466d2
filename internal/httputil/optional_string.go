package httputil

import (
	"bytes"
	"encoding/json"
)

// OptionalString tracks presence and value for JSON PATCH semantics (RFC 7396).
// This enables proper tri-state handling that Go's *string cannot express:
//   - Present=false: field absent from JSON (don't change)
//   - Present=true, Value=nil: field is JSON null (clear/set to NULL)
//   - Present=true, Value=&"text": field has value
//
// Use the `omitzero` struct tag so an absent value is left out when encoding.
type OptionalString struct {
	Present bool
	Value   *string
}

// Set returns a present value; nil encodes as JSON null
func Set(value *string) OptionalString {
	if value == nil {
		return OptionalString{Present: true}
	}
	v := *value
	return OptionalString{Present: true, Value: &v}
}

// IsZero reports whether the field is absent
func (o OptionalString) IsZero() bool {
	return !o.Present
}

// MarshalJSON implements json.Marshaler.
func (o OptionalString) MarshalJSON() ([]byte, error) {
	if o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Value)
}

// UnmarshalJSON implements json.Unmarshaler.
// When this method is called, the field was present in the JSON.
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Present = true

	if string(bytes.TrimSpace(data)) == "null" {
		o.Value = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}
