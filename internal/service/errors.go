// Package service implements the task, label and account use cases on top of
// a repo.Store. Handlers translate its three error kinds to HTTP statuses.
package service

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

var (
	// ErrNotFound covers both missing rows and rows outside the caller's scope.
	ErrNotFound = errors.New("not found")

	ErrInvalidCredentials = errors.New("invalid credentials")
)

const (
	msgPermissionDenied  = "You do not have permission to perform this action."
	msgTaskOwnerChange   = "You do not have permission to change the owner of this task."
	msgLabelOwnerChange  = "You do not have permission to change the owner of this label."
	msgLabelsNotOwned    = "One or more labels not found or do not belong to the authenticated user."
	msgLabelIDsNotList   = "The format for label_ids must be a list."
	msgLabelIDsItemType  = "Incorrect type. Expected a list of label id strings."
	msgLabelNameTaken    = "A label with this name already exists for this user."
	msgUsernameTaken     = "A user with that username already exists."
	msgBlank             = "This field may not be blank."
	msgTooLongFmt        = "Ensure this field has no more than %d characters."
	msgUnknownOwnerIDFmt = "Invalid pk %q - object does not exist."
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, msg string) *ValidationError {
	return &ValidationError{Field: field, Message: msg}
}

type PermissionError struct {
	Message string
}

func (e *PermissionError) Error() string {
	return e.Message
}

func denied(msg string) *PermissionError {
	return &PermissionError{Message: msg}
}

// requireText trims s and rejects blank or over-long values.
func requireText(field, s string, max int) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", invalid(field, msgBlank)
	}
	if utf8.RuneCountInString(s) > max {
		return "", invalid(field, fmt.Sprintf(msgTooLongFmt, max))
	}
	return s, nil
}

func unknownOwner(id string) *ValidationError {
	return invalid("owner_id", fmt.Sprintf(msgUnknownOwnerIDFmt, id))
}
