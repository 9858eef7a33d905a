package layout

// collapseMargins returns the collapsed value of two adjoining vertical
// margins: the larger of two positive ones, the more negative of two
// negative ones, the sum otherwise.
func collapseMargins(a, b float64) float64 {
	switch {
	case a >= 0 && b >= 0:
		return max(a, b)
	case a < 0 && b < 0:
		return min(a, b)
	}
	return a + b
}

// participatesInCollapsing reports whether a child's vertical margins
// adjoin its block siblings'. Lines of inline content carry no margins.
func participatesInCollapsing(box *Box) bool {
	return box != nil && (box.Display == DisplayBlock || box.Display == DisplayFlex)
}
