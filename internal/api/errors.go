package api

import (
	"errors"
	"fmt"
)

var (
	ErrNotConfirmed  = errors.New("bridge did not confirm the change")
	ErrGroupNotFound = errors.New("group not found")
)

// TransportError reports a failure to reach the bridge or a non-success status
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError reports a bridge response that does not match the expected schema
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode %s response: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// BridgeError is an error entry returned by the v1 API in place of a result
type BridgeError struct {
	Type        int    `json:"type"`
	Address     string `json:"address"`
	Description string `json:"description"`
}

func (e *BridgeError) Error() string {
	return fmt.Sprintf("bridge error %d at %s: %s", e.Type, e.Address, e.Description)
}

// v1Response is one element of the array the v1 API returns for errors and writes
type v1Response struct {
	Success map[string]any `json:"success,omitempty"`
	Error   *BridgeError   `json:"error,omitempty"`
}
