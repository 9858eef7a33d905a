package layout

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConstraints is wrapped by every constraint validation failure.
	ErrInvalidConstraints = errors.New("invalid layout constraints")
	// ErrNoContext is wrapped by ConfigError.
	ErrNoContext = errors.New("no formatting context for display class")
)

// ConfigError reports a box reaching dispatch with a display class that no
// formatting context handles. It indicates a wiring bug, not bad input.
type ConfigError struct {
	Path    string
	Display DisplayClass
	Context ContextKind
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("layout: %s (display %s, context %s): %v", e.Path, e.Display, e.Context, ErrNoContext)
}

func (e *ConfigError) Unwrap() error {
	return ErrNoContext
}
