package layout

import (
	"math"
)

// borderBoxWidth is the width of box under c: an explicit width plus its
// inset, or the available inline size less margins. It returns false when
// the width has to come from the content.
func borderBoxWidth(box *Box, c Constraints) (float64, bool) {
	inset := box.Inset()
	if box.Style.Width > 0 {
		return box.Style.Width + inset.Horizontal(), true
	}
	if !c.InlineBounded() {
		return 0, false
	}
	return math.Max(c.InlineMin, math.Max(0, c.InlineMax-box.Margin.Horizontal())), true
}

// maxContentWidth is the border-box width box takes when nothing wraps.
func (p *pass) maxContentWidth(box *Box, c Constraints) (float64, error) {
	unbounded := c.WithInlineMax(Unbounded)
	unbounded.InlineMin = 0
	var (
		f   *Fragment
		err error
	)
	switch box.Context {
	case ContextTable:
		f, err = p.table.Layout(box, unbounded)
	case ContextFlex:
		f, err = p.flex.Layout(box, unbounded)
	default:
		f, err = p.block.layoutBox(box, unbounded, "intrinsic")
	}
	if err != nil {
		return 0, err
	}
	return f.Width, nil
}
