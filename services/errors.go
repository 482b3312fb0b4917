package services

import (
	"errors"

	"game-stats-system/repository"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrValidation   = errors.New("validation failed")

	ErrNotYetActive = &StateError{Message: "Event hasn't started yet!"}
	ErrAlreadyEnded = &StateError{Message: "Event is already over!"}
)

// Entity names a kind of document in user-facing messages.
type Entity string

const (
	EntityGame     Entity = "Game"
	EntityEvent    Entity = "Event"
	EntityUser     Entity = "User"
	EntityUserInfo Entity = "User info"
	EntityGameInfo Entity = "Game info"
)

// NotFoundError is returned when a document is absent by id or by filter.
type NotFoundError struct {
	Entity Entity
}

func (e *NotFoundError) Error() string {
	return string(e.Entity) + " doesn't exist!"
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// StateError is returned when an event is redeemed outside its window.
type StateError struct {
	Message string
}

func (e *StateError) Error() string {
	return e.Message
}

func (e *StateError) Is(target error) bool {
	return target == ErrInvalidState
}

// ValidationError carries a message safe to show to the caller.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(message string) error {
	return &ValidationError{Message: message}
}

// notFound converts repository.ErrNotFound into a NotFoundError for entity
// and passes every other error through.
func notFound(err error, entity Entity) error {
	if errors.Is(err, repository.ErrNotFound) {
		return &NotFoundError{Entity: entity}
	}
	return err
}
