package core

import "errors"

var (
	// ErrNodeNotFound is returned when the directory does not know a node name.
	ErrNodeNotFound = errors.New("node not found")
	// ErrInvalidCredential is returned when a connection credential fails verification.
	ErrInvalidCredential = errors.New("invalid credential")
)
