package pubsub

import "errors"

var (
	// ErrSubscriberTypeRequired is returned when options carry no subscriber type
	ErrSubscriberTypeRequired = errors.New("pubsub: subscriber type is required")

	// ErrSubscriberIDRequired is returned when options carry no subscriber id
	ErrSubscriberIDRequired = errors.New("pubsub: subscriber id is required")

	// ErrResponseTimeout is returned when the wait for a correlated response
	// ends before a matching message is claimed
	ErrResponseTimeout = errors.New("pubsub: response timeout")
)
