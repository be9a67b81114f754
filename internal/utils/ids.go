package utils

import "github.com/google/uuid"

// CanonicalUUID accepts only the 36-character hyphenated form and returns it
// lowercased, which is how postgres renders uuid columns.
func CanonicalUUID(s string) (string, bool) {
	if len(s) != 36 {
		return "", false
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return "", false
	}
	return id.String(), true
}
