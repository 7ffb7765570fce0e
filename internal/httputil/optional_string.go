package httputil

import (
	"bytes"
	"encoding/json"
)

// OptionalString distinguishes an absent JSON field from an explicit null,
// which *string alone cannot. Update payloads use it so PATCH-style requests
// can clear a column (null), set it (string), or leave it alone (absent).
type OptionalString struct {
	Present bool
	Value   *string
}

// UnmarshalJSON runs only when the field appears in the payload, so Present
// is set unconditionally; a literal null leaves Value nil.
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
