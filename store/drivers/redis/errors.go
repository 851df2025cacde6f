package redis

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidURI is an error when the redis URI is empty
	ErrInvalidURI = errors.New("invalid redis URI")

	// ErrClientConnection is an error when the client cannot connect
	ErrClientConnection = errors.New("redis client connection error")
)

// StoreError describes a failed store operation.
type StoreError struct {
	Op      string
	Err     error
	Details string
}

func (e *StoreError) Error() string {
	if e.Details == "" {
		return fmt.Sprintf("store redis: %s: %v", e.Op, e.Err)
	}

	return fmt.Sprintf("store redis: %s: %v: %s", e.Op, e.Err, e.Details)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
