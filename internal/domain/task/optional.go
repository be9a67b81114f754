package task

import (
	"bytes"
	"encoding/json"
)

// OptionalString tells an absent key apart from an explicit null.
// Set is true whenever the key appeared; Value is nil for null.
type OptionalString struct {
	Set   bool
	Value *string
}

func (o *OptionalString) UnmarshalJSON(data []byte) error {
	*o = OptionalString{Set: true}

	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

func Some(s string) OptionalString {
	return OptionalString{Set: true, Value: &s}
}

func Null() OptionalString {
	return OptionalString{Set: true}
}
