package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicateID  = errors.New("duplicate id")
	ErrCycle        = errors.New("cycle")
	ErrConflict     = errors.New("already exists")
	ErrValidation   = errors.New("validation failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrRemote       = errors.New("remote request failed")
)

// NotFoundError indicates an operation on an id absent from the store
type NotFoundError struct {
	ResourceType string // collection, document, session
	ID           string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.ResourceType)
	}
	return fmt.Sprintf("%s %s not found", e.ResourceType, e.ID)
}

func (e *NotFoundError) StatusCode() int      { return http.StatusNotFound }
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// DuplicateIDError indicates an insert collision
type DuplicateIDError struct {
	ResourceType string
	ID           string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("%s %s already exists", e.ResourceType, e.ID)
}

func (e *DuplicateIDError) StatusCode() int { return http.StatusConflict }

// Is matches both ErrDuplicateID and the broader ErrConflict
func (e *DuplicateIDError) Is(target error) bool {
	return target == ErrDuplicateID || target == ErrConflict
}

// CycleError indicates an illegal reparenting: the new parent is the
// collection itself or one of its descendants.
type CycleError struct {
	ID          string
	NewParentID string
}

func (e *CycleError) Error() string {
	if e.ID == e.NewParentID {
		return fmt.Sprintf("cannot move collection %s into itself", e.ID)
	}
	return fmt.Sprintf("cannot move collection %s under its descendant %s", e.ID, e.NewParentID)
}

func (e *CycleError) StatusCode() int      { return http.StatusBadRequest }
func (e *CycleError) Is(target error) bool { return target == ErrCycle }

// ValidationError indicates invalid input
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string        { return e.Message }
func (e *ValidationError) StatusCode() int      { return http.StatusBadRequest }
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// RemoteRequestError is a non-success HTTP response from the ScholarVault API.
// Message carries the server's error text when present, otherwise a
// per-operation fallback.
type RemoteRequestError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *RemoteRequestError) Error() string {
	return e.Message
}

// StatusCode implements HTTPError. Remote failures surface as 502 on the
// browse server unless the upstream status is itself a client error.
func (e *RemoteRequestError) StatusCode() int {
	if e.Status >= 400 && e.Status < 500 {
		return e.Status
	}
	return http.StatusBadGateway
}

// Is allows errors.Is() to match ErrRemote, and ErrUnauthorized / ErrNotFound
// for the corresponding upstream statuses.
func (e *RemoteRequestError) Is(target error) bool {
	switch target {
	case ErrRemote:
		return true
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	}
	return false
}

// StatusCodeOf returns the HTTP status an error maps to, defaulting to 500.
func StatusCodeOf(err error) int {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode()
	}
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrCycle):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
