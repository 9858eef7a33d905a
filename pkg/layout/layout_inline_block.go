package layout

import (
	"math"

	"pageflow/pkg/debug"
)

// inlineBlockContext lays out an atomic inline-level box: block flow
// inside, shrink-to-fit width outside. Its fragment is never split.
type inlineBlockContext struct {
	p *pass
}

func (ib *inlineBlockContext) Name() string {
	return "inline-block"
}

func (ib *inlineBlockContext) Layout(box *Box, c Constraints) (*Fragment, error) {
	inner := c.WithAllowBreak(false)
	if box.Style.Width <= 0 {
		maxContent, err := ib.p.maxContentWidth(box, inner)
		if err != nil {
			return nil, err
		}
		inner = inner.WithInlineMax(math.Min(maxContent+box.Margin.Horizontal(), c.InlineMax))
		f, err := ib.p.block.layoutBox(box, inner, ib.Name())
		if err != nil {
			return nil, err
		}
		f.note("max-content", debug.Num(maxContent))
		return ib.atomic(f), nil
	}
	f, err := ib.p.block.layoutBox(box, inner, ib.Name())
	if err != nil {
		return nil, err
	}
	return ib.atomic(f), nil
}

func (ib *inlineBlockContext) atomic(f *Fragment) *Fragment {
	f.Breakable = false
	f.note("atomic", "true")
	return f
}
