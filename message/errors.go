package message

import (
	"errors"
	"fmt"
)

var (
	// ErrNilMessage is returned when validating a nil envelope
	ErrNilMessage = errors.New("message is nil")

	// ErrMissingChannel is returned when the channel field is empty
	ErrMissingChannel = errors.New("message channel is required")

	// ErrMissingType is returned when the type field is empty
	ErrMissingType = errors.New("message type is required")

	// ErrUnknownType is returned when the type is neither crud nor custom
	ErrUnknownType = errors.New("message type must be crud or custom")

	// ErrMissingAction is returned when the action field is empty
	ErrMissingAction = errors.New("message action is required")

	// ErrMissingRecipient is returned when the recipient field is empty
	ErrMissingRecipient = errors.New("message recipient is required")

	// ErrMissingPayload is returned when the payload is absent or not an object
	ErrMissingPayload = errors.New("message payload must be an object")
)

// ParseError wraps a wire-format decode failure.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse message: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
