package layout

import (
	"math"
	"strconv"
)

// blockContext stacks block-level children vertically. Consecutive
// inline-level children are wrapped in an anonymous run and laid out as
// lines by the inline context.
type blockContext struct {
	p *pass
}

func (bc *blockContext) Name() string {
	return "block"
}

func (bc *blockContext) Layout(box *Box, c Constraints) (*Fragment, error) {
	return bc.layoutBox(box, c, bc.Name())
}

// flowItem is either one block-level child or a run of inline-level ones.
type flowItem struct {
	box *Box
	run []*Box
}

func groupChildren(box *Box) []flowItem {
	var items []flowItem
	for _, child := range box.Children {
		if child.Display.IsInlineLevel() {
			if n := len(items); n > 0 && items[n-1].run != nil {
				items[n-1].run = append(items[n-1].run, child)
				continue
			}
			items = append(items, flowItem{run: []*Box{child}})
			continue
		}
		items = append(items, flowItem{box: child})
	}
	return items
}

// layoutBox lays box out as a block container. Other contexts reuse it for
// the inside of inline-blocks, table cells and flex items; name is recorded
// in the diagnostics.
func (bc *blockContext) layoutBox(box *Box, c Constraints, name string) (*Fragment, error) {
	f := newFragment(FragmentBlock, box, c, name)
	inset := box.Inset()

	width, definite := borderBoxWidth(box, c)
	contentWidth := Unbounded
	if definite {
		contentWidth = math.Max(0, width-inset.Horizontal())
	}
	f.Breakable = c.AllowBreak && !box.Style.AvoidsBreak()
	inner := c.WithAllowBreak(f.Breakable)

	y := inset.Top
	pending := 0.0 // bottom margin of the previous block-level sibling
	extent := 0.0  // widest child, margins included
	runs := 0
	for _, item := range groupChildren(box) {
		var (
			child   *Fragment
			source  = item.box
			margins = source != nil && participatesInCollapsing(source)
			err     error
		)
		switch {
		case item.run != nil:
			source = anonymousRun(box, runs, item.run)
			runs++
			child, err = bc.p.inline.Layout(source, inner.ForInlineChild(contentWidth))
		case margins:
			child, err = bc.p.layoutChild(source, inner.ForBlockChild(contentWidth, y-inset.Top+pending))
		default:
			child = bc.p.placeholder(source, inner, "unsupported display "+source.Display.String())
		}
		if err != nil {
			return nil, err
		}

		child.X = inset.Left
		marginTop, marginRight := 0.0, 0.0
		if margins {
			child.X += source.Margin.Left
			marginTop, marginRight = source.Margin.Top, source.Margin.Right
		}
		child.Y = y + collapseMargins(pending, marginTop)
		y = child.Y + child.Height
		pending = 0
		if margins {
			pending = source.Margin.Bottom
		}
		extent = math.Max(extent, child.X-inset.Left+child.Width+marginRight)

		if !f.HasBaseline && child.HasBaseline {
			f.Baseline = child.Y + child.Baseline
			f.HasBaseline = true
		}
		f.Children = append(f.Children, child)
	}
	y += pending

	if !definite {
		width = math.Max(c.InlineMin, extent+inset.Horizontal())
	}
	height := y + inset.Bottom
	if box.Style.Height > 0 {
		height = box.Style.Height + inset.Vertical()
	}
	height = math.Max(height, c.BlockMin)
	if height <= 0 {
		// nothing measurable inside: reserve one line per child
		height = float64(max(1, len(box.Children))) * bc.p.opts.fallbackLineHeight()
		f.note("height", "fallback line height")
	}
	f.setSize(width, height)
	f.note("children", strconv.Itoa(len(f.Children)))
	return f, nil
}
