package layout

import (
	"pageflow/pkg/styled"
)

// ContextKind names the formatting context that lays out a box.
type ContextKind int

const (
	ContextBlock ContextKind = iota
	ContextInline
	ContextInlineBlock
	ContextTable
	ContextFlex
)

func (k ContextKind) String() string {
	switch k {
	case ContextBlock:
		return "block"
	case ContextInline:
		return "inline"
	case ContextInlineBlock:
		return "inline-block"
	case ContextTable:
		return "table"
	case ContextFlex:
		return "flex"
	}
	return "invalid"
}

// Box is a node of the box tree: a styled node paired with its display
// class and the context that will lay it out. Anonymous boxes wrap runs of
// inline-level children of a block container and borrow its node.
type Box struct {
	Node    *styled.Node
	Display DisplayClass
	Context ContextKind
	Style   styled.Style

	Margin  styled.Edges
	Padding styled.Edges
	Border  styled.Edges

	// Path locates the source node, e.g. "document/div[0]/p[1]".
	Path string
	// Fallback is set when a feature gate changed how this box is laid out.
	Fallback string

	Children  []*Box
	Anonymous bool
}

func (b *Box) Kind() styled.Kind {
	if b.Node == nil {
		return ""
	}
	return b.Node.Kind
}

// Text returns the node's own text; only text leaves have any.
func (b *Box) Text() string {
	if b.Node == nil || b.Anonymous {
		return ""
	}
	return b.Node.Text
}

// Inset is padding plus border on each side.
func (b *Box) Inset() styled.Edges {
	return b.Padding.Add(b.Border)
}

// EventKind classifies a box tree construction event.
type EventKind int

const (
	// EventFallback means a box was laid out by a simpler context.
	EventFallback EventKind = iota
	// EventDropped means a node was left out of the box tree.
	EventDropped
)

func (k EventKind) String() string {
	if k == EventDropped {
		return "dropped"
	}
	return "fallback"
}

// Reasons recorded on events.
const (
	ReasonDisabled      = "disabled"
	ReasonBlockInInline = "block-level box inside inline"
	ReasonNotPermitted  = "display not permitted in parent"
	ReasonDisplayNone   = "display none"
)

// Event records a fallback or a dropped node during box tree construction.
type Event struct {
	Kind   EventKind
	Path   string
	Node   styled.Kind
	From   string
	To     string
	Reason string
}
