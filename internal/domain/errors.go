package domain

import "errors"

var (
	// ErrSubscriptionFailed is returned when polling the chain for events fails
	ErrSubscriptionFailed = errors.New("subscription failed")

	// ErrUnknownEventKind is returned when decoding an event whose kind is not registered
	ErrUnknownEventKind = errors.New("unknown event kind")

	// ErrInvalidEvent is returned when an event is missing its payload or envelope data
	ErrInvalidEvent = errors.New("invalid event")

	// ErrUnsupportedChain is returned when a chain is not served or does not match the node
	ErrUnsupportedChain = errors.New("unsupported chain")

	// ErrUnsupportedLog is returned when a chain log does not match any known event signature
	ErrUnsupportedLog = errors.New("unsupported log")
)
