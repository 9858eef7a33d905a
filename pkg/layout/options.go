package layout

// DefaultFallbackLineHeight is the minimum line height used when a block
// would otherwise collapse to zero height.
const DefaultFallbackLineHeight = 16.0

// Options are the feature flags governing one layout invocation.
type Options struct {
	// NewLayout enables the engine. When false Layout returns Disabled.
	NewLayout bool
	// Diagnostics collects a Record per fragment and logs them at debug level.
	Diagnostics bool
	// InlineBlock enables the inline-block context. When false inline-block
	// boxes are laid out as inline.
	InlineBlock bool
	// Table enables the table context. When false tables use block flow.
	Table bool
	// TableBorderCollapse honours border-collapse: collapse. Requires Table.
	TableBorderCollapse bool
	// Flex enables the flex context. When false flex boxes use block flow.
	Flex bool
	// FallbackLineHeight replaces a zero block height; <= 0 means default.
	FallbackLineHeight float64
}

// DefaultOptions returns the conservative set: the engine and every
// optional context off. Callers turn the engine on explicitly.
func DefaultOptions() Options {
	return Options{FallbackLineHeight: DefaultFallbackLineHeight}
}

// EnabledOptions returns DefaultOptions with the engine on.
func EnabledOptions() Options {
	o := DefaultOptions()
	o.NewLayout = true
	return o
}

// AllContexts returns a copy with every optional context enabled.
func (o Options) AllContexts() Options {
	o.InlineBlock = true
	o.Table = true
	o.TableBorderCollapse = true
	o.Flex = true
	return o
}

func (o Options) fallbackLineHeight() float64 {
	if o.FallbackLineHeight <= 0 {
		return DefaultFallbackLineHeight
	}
	return o.FallbackLineHeight
}
