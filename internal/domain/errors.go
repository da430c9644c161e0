package domain

import "fmt"

// NotFoundError represents a missing resource.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is enables errors.Is matching on NotFoundError.
func (e NotFoundError) Is(target error) bool {
	_, ok := target.(NotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*NotFoundError)
	return ok
}

// ErrNotFound is the sentinel error for missing resources.
var ErrNotFound = NotFoundError{}

// ForbiddenError represents an authenticated request outside its owner scope.
type ForbiddenError struct {
	Reason string
}

func (e ForbiddenError) Error() string {
	if e.Reason == "" {
		return "forbidden"
	}
	return e.Reason
}

func (e ForbiddenError) Is(target error) bool {
	_, ok := target.(ForbiddenError)
	if ok {
		return true
	}
	_, ok = target.(*ForbiddenError)
	return ok
}

var ErrForbidden = ForbiddenError{}

// AuthenticationError represents a missing or unresolvable bearer token.
type AuthenticationError struct {
	Reason string
}

func (e AuthenticationError) Error() string {
	if e.Reason == "" {
		return "authentication required"
	}
	return e.Reason
}

func (e AuthenticationError) Is(target error) bool {
	_, ok := target.(AuthenticationError)
	if ok {
		return true
	}
	_, ok = target.(*AuthenticationError)
	return ok
}

var ErrUnauthenticated = AuthenticationError{}

// AlreadyExistsError is returned when a record key collides at the storage
// layer. Duplicates are rejected, never silently overwritten.
type AlreadyExistsError struct {
	Resource string
}

func (e AlreadyExistsError) Error() string {
	if e.Resource == "" {
		return "already exists"
	}
	return fmt.Sprintf("%s already exists", e.Resource)
}

func (e AlreadyExistsError) Is(target error) bool {
	_, ok := target.(AlreadyExistsError)
	if ok {
		return true
	}
	_, ok = target.(*AlreadyExistsError)
	return ok
}

var ErrAlreadyExists = AlreadyExistsError{}
