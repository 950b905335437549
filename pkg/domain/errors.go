package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUserDeactivated      = errors.New("user is deactivated")
	ErrPlaybookNotFound     = errors.New("playbook not found")
	ErrActuatorNotFound     = errors.New("actuator not found")
	ErrDuplicateActuator    = errors.New("actuator already registered")
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

type notFoundError struct {
	EntityType string
	ID         string
}

func (e *notFoundError) Error() string {
	return fmt.Sprintf("%s with ID '%s' not found", e.EntityType, e.ID)
}

func NewNotFoundError(entityType string, id string) error {
	return &notFoundError{
		EntityType: entityType,
		ID:         id,
	}
}

func IsNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var notFoundError *notFoundError
	ok := errors.As(err, &notFoundError)
	return ok
}
