// Package paginate slices a laid out fragment tree across pages.
package paginate

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/multierr"

	"pageflow/pkg/layout"
	"pageflow/pkg/styled"
)

var (
	// ErrInvalidPage is wrapped by every page geometry validation failure.
	ErrInvalidPage = errors.New("invalid page constraints")
	// ErrReconstruction is wrapped by every Document.Verify failure.
	ErrReconstruction = errors.New("paginated document does not reconstruct its fragments")
)

// Rect is an axis-aligned rectangle in page coordinates.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

func (r Rect) Right() float64  { return r.X + r.Width }
func (r Rect) Bottom() float64 { return r.Y + r.Height }

func (r Rect) String() string {
	return fmt.Sprintf("(%v,%v %vx%v)", r.X, r.Y, r.Width, r.Height)
}

// PageConstraints is the geometry shared by every page of a document.
type PageConstraints struct {
	Width        float64
	Height       float64
	Margin       styled.Edges
	HeaderHeight float64
	FooterHeight float64
}

// UsableHeight is the block size available to content on each page.
func (pc PageConstraints) UsableHeight() float64 {
	return pc.Height - pc.Margin.Vertical() - pc.HeaderHeight - pc.FooterHeight
}

// UsableWidth is the inline size available to content on each page.
func (pc PageConstraints) UsableWidth() float64 {
	return pc.Width - pc.Margin.Horizontal()
}

// Validate reports every problem with the geometry at once.
func (pc PageConstraints) Validate() error {
	var err error
	if pc.Width <= 0 || pc.Height <= 0 || math.IsInf(pc.Width, 0) || math.IsInf(pc.Height, 0) {
		err = multierr.Append(err, fmt.Errorf("%w: page size %vx%v", ErrInvalidPage, pc.Width, pc.Height))
	}
	if pc.Margin.Negative() {
		err = multierr.Append(err, fmt.Errorf("%w: negative margin %+v", ErrInvalidPage, pc.Margin))
	}
	if pc.HeaderHeight < 0 || pc.FooterHeight < 0 {
		err = multierr.Append(err, fmt.Errorf("%w: negative header (%v) or footer (%v) height",
			ErrInvalidPage, pc.HeaderHeight, pc.FooterHeight))
	}
	if h := pc.UsableHeight(); !(h > 0) {
		err = multierr.Append(err, fmt.Errorf("%w: usable height %v is not positive", ErrInvalidPage, h))
	}
	if w := pc.UsableWidth(); !(w > 0) {
		err = multierr.Append(err, fmt.Errorf("%w: usable width %v is not positive", ErrInvalidPage, w))
	}
	return err
}

// ContentBounds is the rectangle content flows into on every page.
func (pc PageConstraints) ContentBounds() Rect {
	return Rect{
		X:      pc.Margin.Left,
		Y:      pc.Margin.Top + pc.HeaderHeight,
		Width:  pc.UsableWidth(),
		Height: pc.UsableHeight(),
	}
}

// HeaderBounds is the band reserved for the header, between the top margin
// and the content.
func (pc PageConstraints) HeaderBounds() Rect {
	return Rect{X: pc.Margin.Left, Y: pc.Margin.Top, Width: pc.UsableWidth(), Height: pc.HeaderHeight}
}

// FooterBounds is the band reserved for the footer, between the content and
// the bottom margin.
func (pc PageConstraints) FooterBounds() Rect {
	return Rect{
		X:      pc.Margin.Left,
		Y:      pc.Height - pc.Margin.Bottom - pc.FooterHeight,
		Width:  pc.UsableWidth(),
		Height: pc.FooterHeight,
	}
}

// LayoutConstraints returns the constraints content should be laid out with
// to be paginated under pc.
func (pc PageConstraints) LayoutConstraints() (layout.Constraints, error) {
	if err := pc.Validate(); err != nil {
		return layout.Constraints{}, err
	}
	return layout.ForPage(pc.UsableWidth(), pc.UsableHeight())
}

// SliceKind tells which part of its fragment a slice carries.
type SliceKind int

const (
	Full SliceKind = iota
	SplitStart
	SplitMiddle
	SplitEnd
)

func (k SliceKind) String() string {
	switch k {
	case Full:
		return "full"
	case SplitStart:
		return "split-start"
	case SplitMiddle:
		return "split-middle"
	case SplitEnd:
		return "split-end"
	}
	return "invalid"
}

// Slice is the part of one fragment that lies on one page. It references the
// fragment and never modifies it.
type Slice struct {
	Fragment *layout.Fragment
	// Bounds is where the slice lies on its page.
	Bounds Rect
	// Offset is where the slice starts within the fragment's block extent.
	Offset float64
	Kind   SliceKind

	ContinuesOnNextPage bool
	// Cut marks slices cut at page boundaries without regard to the
	// fragment's children. Those children get no slices; they travel
	// clipped inside the pieces.
	Cut      bool
	Children []*Slice

	page int
}

// Page is the number of the page the slice lies on.
func (s *Slice) Page() int {
	return s.page
}

// Extent is the block size of the fragment the slice carries.
func (s *Slice) Extent() float64 {
	return s.Bounds.Height
}

// Page is one page of a paginated document. Header and footer are shared by
// every page and do not count against the content height.
type Page struct {
	Number int
	Bounds Rect // usable content area
	Slices []*Slice

	Header       *layout.Fragment
	Footer       *layout.Fragment
	HeaderBounds Rect
	FooterBounds Rect
}

// Document is the result of pagination: pages numbered from 1 without gaps.
type Document struct {
	Constraints PageConstraints
	Pages       []*Page
}
