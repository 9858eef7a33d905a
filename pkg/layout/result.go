package layout

import (
	"pageflow/pkg/styled"
)

// Result is the outcome of Engine.Layout: Success, Fallback or Disabled.
type Result interface {
	result()
}

// Success carries the fragment tree. Records is only filled when
// diagnostics are enabled.
type Success struct {
	Fragments []*Fragment
	Records   []Record
	Events    []Event
}

// Fallback means the engine declined the tree; the caller should use
// another layout path.
type Fallback struct {
	Reason string
	Kind   styled.Kind
}

// Disabled means the engine is switched off.
type Disabled struct{}

func (Success) result()  {}
func (Fallback) result() {}
func (Disabled) result() {}

// Root returns the first top-level fragment, nil if there is none.
func (s Success) Root() *Fragment {
	if len(s.Fragments) == 0 {
		return nil
	}
	return s.Fragments[0]
}

// Record is one fragment's diagnostics, flattened for collection.
type Record struct {
	Path        string
	Context     string
	Constraints Constraints
	Width       float64
	Height      float64
	Metadata    map[string]string
}
