package layout

import (
	"fmt"
	"math"

	"pageflow/pkg/styled"
)

// flexContext lays out a single-line flex container. A row container is
// atomic for pagination; a column container breaks between items like a
// block.
type flexContext struct {
	p *pass
}

func (fc *flexContext) Name() string {
	return "flex"
}

type flexItem struct {
	box    *Box
	base   float64 // flex basis, border box
	main   float64 // resolved main size, border box
	grow   float64
	shrink float64
}

func (fc *flexContext) Layout(box *Box, c Constraints) (*Fragment, error) {
	if box.Style.FlexDirection == styled.FlexDirectionColumn {
		return fc.layoutColumn(box, c)
	}
	return fc.layoutRow(box, c)
}

// items blockifies the children: inline-level children become the only
// child of an anonymous block item.
func (fc *flexContext) items(box *Box) []*flexItem {
	items := make([]*flexItem, 0, len(box.Children))
	for i, child := range box.Children {
		ib := child
		if child.Display.IsInlineLevel() {
			ib = &Box{
				Node:      child.Node,
				Display:   DisplayBlock,
				Context:   ContextBlock,
				Style:     styled.DefaultStyle(),
				Path:      fmt.Sprintf("%s/#item[%d]", box.Path, i),
				Children:  []*Box{child},
				Anonymous: true,
			}
		}
		items = append(items, &flexItem{
			box:    ib,
			grow:   ib.Style.FlexGrow,
			shrink: ib.Style.FlexShrink,
		})
	}
	return items
}

func (fc *flexContext) layoutRow(box *Box, c Constraints) (*Fragment, error) {
	f := newFragment(FragmentBlock, box, c, fc.Name())
	f.note("direction", string(styled.FlexDirectionRow))
	inset := box.Inset()
	width, definite := borderBoxWidth(box, c)
	inner := c.WithAllowBreak(false)

	items := fc.items(box)
	total := 0.0
	for _, it := range items {
		if it.box.Style.Width > 0 {
			it.base = it.box.Style.Width + it.box.Inset().Horizontal()
		} else {
			w, err := fc.p.maxContentWidth(it.box, inner)
			if err != nil {
				return nil, err
			}
			it.base = w
		}
		it.main = it.base
		total += it.base + it.box.Margin.Horizontal()
	}
	if definite {
		resolveFlexibleLengths(items, width-inset.Horizontal()-total)
	}

	x, cross := inset.Left, 0.0
	frags := make([]*Fragment, len(items))
	for i, it := range items {
		sized := it.box
		if sized.Style.Width > 0 && it.main != it.base {
			// the resolved main size replaces the declared width
			cp := *it.box
			cp.Style.Width = 0
			sized = &cp
		}
		fr, err := fc.p.layoutChild(sized, inner.ForBlockChild(it.main+it.box.Margin.Horizontal(), 0))
		if err != nil {
			return nil, err
		}
		fr.X = x + it.box.Margin.Left
		fr.Y = inset.Top + it.box.Margin.Top
		x += fr.Width + it.box.Margin.Horizontal()
		cross = math.Max(cross, fr.Height+it.box.Margin.Vertical())
		frags[i] = fr
	}
	// align-items: stretch
	for i, fr := range frags {
		it := items[i]
		if it.box.Style.Height <= 0 {
			fr.setSize(fr.Width, math.Max(fr.Height, cross-it.box.Margin.Vertical()))
		}
		if !f.HasBaseline && fr.HasBaseline {
			f.Baseline = fr.Y + fr.Baseline
			f.HasBaseline = true
		}
		f.Children = append(f.Children, fr)
	}

	if !definite {
		width = math.Max(c.InlineMin, x+inset.Right)
	}
	height := cross + inset.Vertical()
	if box.Style.Height > 0 {
		height = box.Style.Height + inset.Vertical()
	}
	height = math.Max(height, c.BlockMin)
	if height <= 0 {
		height = fc.p.opts.fallbackLineHeight()
		f.note("height", "fallback line height")
	}
	f.Breakable = false
	f.setSize(width, height)
	return f, nil
}

func (fc *flexContext) layoutColumn(box *Box, c Constraints) (*Fragment, error) {
	f := newFragment(FragmentBlock, box, c, fc.Name())
	f.note("direction", string(styled.FlexDirectionColumn))
	inset := box.Inset()
	width, definite := borderBoxWidth(box, c)
	contentWidth := Unbounded
	if definite {
		contentWidth = math.Max(0, width-inset.Horizontal())
	}
	f.Breakable = c.AllowBreak && !box.Style.AvoidsBreak()
	inner := c.WithAllowBreak(f.Breakable)

	items := fc.items(box)
	frags := make([]*Fragment, len(items))
	total, extent := 0.0, 0.0
	for i, it := range items {
		fr, err := fc.p.layoutChild(it.box, inner.ForBlockChild(contentWidth, total))
		if err != nil {
			return nil, err
		}
		it.base, it.main = fr.Height, fr.Height
		total += fr.Height + it.box.Margin.Vertical()
		extent = math.Max(extent, fr.Width+it.box.Margin.Horizontal())
		frags[i] = fr
	}
	if box.Style.Height > 0 {
		resolveFlexibleLengths(items, box.Style.Height-total)
	}

	y := inset.Top
	for i, fr := range frags {
		it := items[i]
		fr.setSize(fr.Width, it.main)
		fr.X = inset.Left + it.box.Margin.Left
		fr.Y = y + it.box.Margin.Top
		y = fr.Y + fr.Height + it.box.Margin.Bottom
		if !f.HasBaseline && fr.HasBaseline {
			f.Baseline = fr.Y + fr.Baseline
			f.HasBaseline = true
		}
		f.Children = append(f.Children, fr)
	}

	if !definite {
		width = math.Max(c.InlineMin, extent+inset.Horizontal())
	}
	height := y + inset.Bottom
	if box.Style.Height > 0 {
		height = box.Style.Height + inset.Vertical()
	}
	height = math.Max(height, c.BlockMin)
	if height <= 0 {
		height = float64(max(1, len(items))) * fc.p.opts.fallbackLineHeight()
		f.note("height", "fallback line height")
	}
	f.setSize(width, height)
	return f, nil
}

// resolveFlexibleLengths distributes free space along the main axis:
// positive space by flex-grow, negative space by flex-shrink.
func resolveFlexibleLengths(items []*flexItem, freeSpace float64) {
	totalGrow, totalShrink := 0.0, 0.0
	for _, it := range items {
		totalGrow += it.grow
		totalShrink += it.shrink
	}
	if freeSpace > 0 && totalGrow > 0 {
		for _, it := range items {
			if it.grow > 0 {
				it.main += freeSpace * (it.grow / totalGrow)
			}
		}
	} else if freeSpace < 0 && totalShrink > 0 {
		for _, it := range items {
			if it.shrink > 0 {
				it.main -= -freeSpace * (it.shrink / totalShrink)
				if it.main < 0 {
					it.main = 0
				}
			}
		}
	}
}
