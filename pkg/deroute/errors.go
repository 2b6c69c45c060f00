package deroute

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidOptions   = errors.New("register requires an options value")
	ErrMissingApp       = errors.New("options must have an App")
	ErrMissingRoutesDir = errors.New("options must have a RoutesDir")
	ErrNoApplication    = errors.New("controller mounted without an application")
	ErrInvalidMethod    = errors.New("http method must be a non-empty string")
	ErrInvalidRouterArg = errors.New("router argument must be RouterOptions or a middleware")
)

// ConfigurationError reports a bootstrap misconfiguration. It is always fatal:
// the caller should abort startup rather than serve a partial route table.
type ConfigurationError struct {
	Op  string
	Err error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("deroute: %s: %v", e.Op, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

func configErr(op string, err error) error {
	return &ConfigurationError{Op: op, Err: err}
}
