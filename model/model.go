package model

import (
	"errors"
	"fmt"
)

// Holds all external facing live times types. Values are immutable
// once built: fields are unexported and accessors hand out copies of
// any slice or map.

// Returned (wrapped) by every Build() when a required field is
// missing.
var ErrInvalidArgument = errors.New("invalid argument")

func requiredField(name string) error {
	return fmt.Errorf("%w: %s must be set", ErrInvalidArgument, name)
}
