package styled

// Display is the resolved CSS display value. The empty value means the
// property was not set.
type Display string

const (
	DisplayUnset       Display = ""
	DisplayBlock       Display = "block"
	DisplayInline      Display = "inline"
	DisplayInlineBlock Display = "inline-block"
	DisplayFlex        Display = "flex"
	DisplayNone        Display = "none"
)

// IsDefault reports whether the value carries no explicit choice. The CSS
// initial value "inline" counts as default.
func (d Display) IsDefault() bool {
	return d == DisplayUnset || d == DisplayInline
}

// BreakInside controls whether a fragment may be split across pages.
type BreakInside string

const (
	BreakInsideAuto  BreakInside = "auto"
	BreakInsideAvoid BreakInside = "avoid"
)

// FlexDirection is the main axis of a flex container.
type FlexDirection string

const (
	FlexDirectionRow    FlexDirection = "row"
	FlexDirectionColumn FlexDirection = "column"
)

// BorderCollapse selects the table border model.
type BorderCollapse string

const (
	BorderCollapseSeparate BorderCollapse = "separate"
	BorderCollapseCollapse BorderCollapse = "collapse"
)

// Edges represents the four sides of a box (top, right, bottom, left).
type Edges struct {
	Top    float64
	Right  float64
	Bottom float64
	Left   float64
}

// Uniform returns edges with the same value on every side.
func Uniform(v float64) Edges {
	return Edges{Top: v, Right: v, Bottom: v, Left: v}
}

// Horizontal returns left + right.
func (e Edges) Horizontal() float64 {
	return e.Left + e.Right
}

// Vertical returns top + bottom.
func (e Edges) Vertical() float64 {
	return e.Top + e.Bottom
}

// Add sums two edge sets side by side.
func (e Edges) Add(o Edges) Edges {
	return Edges{
		Top:    e.Top + o.Top,
		Right:  e.Right + o.Right,
		Bottom: e.Bottom + o.Bottom,
		Left:   e.Left + o.Left,
	}
}

// Negative reports whether any side is below zero.
func (e Edges) Negative() bool {
	return e.Top < 0 || e.Right < 0 || e.Bottom < 0 || e.Left < 0
}

// Default typographic values used when a style leaves them unset.
const (
	DefaultFontSize         = 16.0
	DefaultLineHeightFactor = 1.2
)

// Style is the computed style snapshot of a node.
type Style struct {
	Display Display
	Margin  Edges
	Padding Edges
	Border  Edges

	// Width and Height are explicit content sizes, zero means auto.
	Width  float64
	Height float64

	FontSize   float64
	LineHeight float64 // zero means FontSize * DefaultLineHeightFactor

	BreakInside BreakInside

	FlexDirection FlexDirection
	FlexGrow      float64
	FlexShrink    float64

	BorderCollapse BorderCollapse
	BorderSpacing  float64
}

// DefaultStyle returns the style of a node nothing was declared for.
func DefaultStyle() Style {
	return Style{
		FontSize:       DefaultFontSize,
		BreakInside:    BreakInsideAuto,
		FlexDirection:  FlexDirectionRow,
		FlexShrink:     1,
		BorderCollapse: BorderCollapseSeparate,
	}
}

// EffectiveFontSize returns the font size, falling back to the default.
func (s Style) EffectiveFontSize() float64 {
	if s.FontSize <= 0 {
		return DefaultFontSize
	}
	return s.FontSize
}

// EffectiveLineHeight returns the used line height.
func (s Style) EffectiveLineHeight() float64 {
	if s.LineHeight > 0 {
		return s.LineHeight
	}
	return s.EffectiveFontSize() * DefaultLineHeightFactor
}

// AvoidsBreak reports whether the style forbids splitting across pages.
func (s Style) AvoidsBreak() bool {
	return s.BreakInside == BreakInsideAvoid
}

// Spacing returns margin + border + padding.
func (s Style) Spacing() Edges {
	return s.Margin.Add(s.Border).Add(s.Padding)
}
