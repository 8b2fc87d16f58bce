package nn

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrConfiguration   = errors.New("configuration error")
	ErrReference       = errors.New("invalid reference")
)

func errModeNotSet() error {
	return fmt.Errorf("%w: activation mode not set", ErrConfiguration)
}
