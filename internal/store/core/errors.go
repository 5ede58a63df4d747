package core

import "errors"

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
	ErrInvalid  = errors.New("invalid")

	// ErrCapacity is returned by ActivateDevice when the conditional
	// increment would push current_activations past max_activations.
	ErrCapacity = errors.New("activation capacity reached")
)
