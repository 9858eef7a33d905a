package layout

import (
	"math"
	"strconv"

	"go.uber.org/zap"

	"pageflow/pkg/styled"
)

// tableContext lays out a table as a grid of rows and cells. Rows are
// atomic for pagination; the table itself may break between rows.
type tableContext struct {
	p *pass
}

func (tc *tableContext) Name() string {
	return "table"
}

type tableRow struct {
	box   *Box
	cells []*Box
}

// collectRows gathers rows in display order: header groups, then body rows
// and groups, then footer groups.
func (tc *tableContext) collectRows(table *Box) []tableRow {
	var head, body, foot []tableRow
	for _, child := range table.Children {
		switch child.Kind() {
		case styled.KindTableRow:
			body = append(body, rowOf(child))
		case styled.KindTableHead:
			head = append(head, rowsIn(child)...)
		case styled.KindTableBody:
			body = append(body, rowsIn(child)...)
		case styled.KindTableFoot:
			foot = append(foot, rowsIn(child)...)
		default:
			tc.p.log.Debug("Skipping non-row table child",
				zap.String("path", child.Path), zap.String("kind", string(child.Kind())))
		}
	}
	rows := append(head, body...)
	return append(rows, foot...)
}

func rowsIn(group *Box) []tableRow {
	var rows []tableRow
	for _, child := range group.Children {
		if child.Kind() == styled.KindTableRow {
			rows = append(rows, rowOf(child))
		}
	}
	return rows
}

func rowOf(row *Box) tableRow {
	r := tableRow{box: row}
	for _, child := range row.Children {
		if child.Kind().IsTableCell() {
			r.cells = append(r.cells, child)
		}
	}
	return r
}

func (tc *tableContext) Layout(box *Box, c Constraints) (*Fragment, error) {
	f := newFragment(FragmentBlock, box, c, tc.Name())
	f.Breakable = c.AllowBreak && !box.Style.AvoidsBreak()
	inset := box.Inset()

	rows := tc.collectRows(box)
	numCols := 0
	for _, r := range rows {
		numCols = max(numCols, len(r.cells))
	}

	collapse := tc.p.opts.TableBorderCollapse && box.Style.BorderCollapse == styled.BorderCollapseCollapse
	spacing := box.Style.BorderSpacing
	if collapse {
		spacing = 0
		f.note("border-model", "collapse")
	} else {
		f.note("border-model", "separate")
	}
	totalSpacing := spacing * float64(numCols+1)

	// Auto-width tables shrink to their content, bounded by the space
	// available; explicit widths are honoured.
	width, definite := borderBoxWidth(box, c)
	avail := Unbounded
	if definite {
		avail = math.Max(0, width-inset.Horizontal()-totalSpacing)
	}
	cellConstraints := c.WithAllowBreak(false)
	colWidths, err := tc.columnWidths(rows, numCols, avail, box.Style.Width > 0, cellConstraints)
	if err != nil {
		return nil, err
	}

	y := inset.Top + spacing
	rowsWidth := 0.0
	var prev *tableRow
	for i := range rows {
		row := &rows[i]
		if collapse && prev != nil {
			y -= math.Min(bottomBorder(prev), topBorder(row))
		}
		rf, err := tc.layoutRow(row, colWidths, spacing, collapse, cellConstraints)
		if err != nil {
			return nil, err
		}
		rf.X = inset.Left + spacing
		rf.Y = y
		y += rf.Height + spacing
		rowsWidth = math.Max(rowsWidth, rf.Width)
		f.Children = append(f.Children, rf)
		prev = row
	}
	if len(rows) == 0 {
		y = inset.Top
	}

	if box.Style.Width <= 0 {
		used := rowsWidth + 2*spacing + inset.Horizontal()
		if len(rows) == 0 {
			used = inset.Horizontal()
		}
		if definite {
			width = math.Min(width, used)
		} else {
			width = used
		}
		width = math.Max(width, c.InlineMin)
	}
	height := y + inset.Bottom
	if box.Style.Height > 0 {
		height = math.Max(height, box.Style.Height+inset.Vertical())
	}
	height = math.Max(height, c.BlockMin)
	if height <= 0 {
		height = tc.p.opts.fallbackLineHeight()
		f.note("height", "fallback line height")
	}
	f.setSize(width, height)
	f.note("rows", strconv.Itoa(len(rows)))
	f.note("columns", strconv.Itoa(numCols))
	return f, nil
}

func (tc *tableContext) layoutRow(row *tableRow, colWidths []float64, spacing float64, collapse bool, c Constraints) (*Fragment, error) {
	rf := newFragment(FragmentBlock, row.box, c, "table-row")
	x, height := 0.0, 0.0
	for i, cell := range row.cells {
		if collapse && i > 0 {
			x -= math.Min(row.cells[i-1].Border.Right, cell.Border.Left)
		}
		cf, err := tc.p.block.layoutBox(cell, c.ForBlockChild(colWidths[i], 0), "table-cell")
		if err != nil {
			return nil, err
		}
		cf.X = x
		x += cf.Width + spacing
		height = math.Max(height, cf.Height)
		rf.Children = append(rf.Children, cf)
	}
	// cells stretch to the row height
	for _, cf := range rf.Children {
		cf.setSize(cf.Width, height)
	}
	if len(row.cells) > 0 {
		x -= spacing
	}
	rf.Breakable = false
	rf.setSize(x, height)
	return rf, nil
}

// columnWidths assigns border-box widths to columns. Explicit cell widths
// win; other columns share what is left in proportion to their content.
func (tc *tableContext) columnWidths(rows []tableRow, numCols int, avail float64, explicitTable bool, c Constraints) ([]float64, error) {
	widths := make([]float64, numCols)
	explicit := make([]bool, numCols)
	content := make([]float64, numCols)
	for _, r := range rows {
		for i, cell := range r.cells {
			if cell.Style.Width > 0 {
				widths[i] = math.Max(widths[i], cell.Style.Width+cell.Inset().Horizontal())
				explicit[i] = true
				continue
			}
			cw, err := tc.p.maxContentWidth(cell, c)
			if err != nil {
				return nil, err
			}
			content[i] = math.Max(content[i], cw)
		}
	}

	used, totalContent, unset := 0.0, 0.0, 0
	for i := range numCols {
		if explicit[i] {
			used += widths[i]
			continue
		}
		unset++
		totalContent += content[i]
	}
	if unset == 0 {
		return widths, nil
	}

	remaining := avail - used
	for i := range numCols {
		if explicit[i] {
			continue
		}
		switch {
		case math.IsInf(remaining, 1), remaining <= 0:
			if remaining <= 0 {
				widths[i] = 0
			} else {
				widths[i] = content[i]
			}
		case totalContent > 0 && totalContent <= remaining:
			if explicitTable {
				// content fits: distribute the extra space proportionally
				widths[i] = content[i] + (remaining-totalContent)*content[i]/totalContent
			} else {
				widths[i] = content[i]
			}
		case totalContent > remaining:
			widths[i] = remaining * content[i] / totalContent
		default:
			// No content measured: distribute evenly
			widths[i] = remaining / float64(unset)
		}
	}
	return widths, nil
}

func topBorder(r *tableRow) float64 {
	v := 0.0
	for _, cell := range r.cells {
		v = math.Max(v, cell.Border.Top)
	}
	return v
}

func bottomBorder(r *tableRow) float64 {
	v := 0.0
	for _, cell := range r.cells {
		v = math.Max(v, cell.Border.Bottom)
	}
	return v
}
