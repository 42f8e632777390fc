package main

import (
	"errors"

	"github.com/angristan/lightctl/internal/api"
	"github.com/angristan/lightctl/internal/hid"
)

// Process exit codes per error class
const (
	exitOK        = 0
	exitFailure   = 1
	exitTransport = 2
	exitDecode    = 3
	exitBus       = 4
	exitIO        = 5
)

func exitCode(err error) int {
	var (
		transportErr *api.TransportError
		decodeErr    *api.DecodeError
		busErr       *hid.BusUnavailableError
		ioErr        *hid.IoError
	)

	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &transportErr):
		return exitTransport
	case errors.As(err, &decodeErr):
		return exitDecode
	case errors.As(err, &busErr):
		return exitBus
	case errors.As(err, &ioErr):
		return exitIO
	default:
		return exitFailure
	}
}
