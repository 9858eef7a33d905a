package paginate

import (
	"errors"
	"math"
	"strings"
	"testing"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"pageflow/pkg/layout"
	"pageflow/pkg/styled"
)

func frag(path string, height float64, breakable bool, children ...*layout.Fragment) *layout.Fragment {
	return &layout.Fragment{
		Kind:      layout.FragmentBlock,
		Box:       &layout.Box{Path: path},
		Width:     100,
		Height:    height,
		Breakable: breakable,
		Children:  children,
	}
}

func at(f *layout.Fragment, y float64) *layout.Fragment {
	f.Y = y
	return f
}

func page(height float64) PageConstraints {
	return PageConstraints{Width: 100, Height: height}
}

func mustPaginate(t *testing.T, root *layout.Fragment, pc PageConstraints) *Document {
	t.Helper()
	doc, err := New(zap.NewNop()).Paginate(root, pc, nil, nil)
	if err != nil {
		t.Fatalf("Paginate failed: %v", err)
	}
	if err := doc.Verify(root); err != nil {
		t.Fatalf("Verify failed: %v\n%s", err, doc.Dump())
	}
	return doc
}

func extents(slices []*Slice) []float64 {
	out := make([]float64, len(slices))
	for i, s := range slices {
		out[i] = s.Extent()
	}
	return out
}

func kinds(slices []*Slice) []SliceKind {
	out := make([]SliceKind, len(slices))
	for i, s := range slices {
		out[i] = s.Kind
	}
	return out
}

func equalFloats(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Abs(a[i]-b[i]) > 1e-9 {
			return false
		}
	}
	return true
}

func equalKinds(a, b []SliceKind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestPaginate_SplitsTallBlockIntoThree(t *testing.T) {
	root := frag("document", 1000, true)
	doc := mustPaginate(t, root, page(400))

	if len(doc.Pages) != 3 {
		t.Fatalf("Expected 3 pages, got %d\n%s", len(doc.Pages), doc.Dump())
	}
	slices := doc.SlicesOf(root)
	if got, want := kinds(slices), []SliceKind{SplitStart, SplitMiddle, SplitEnd}; !equalKinds(got, want) {
		t.Errorf("Expected kinds %v, got %v", want, got)
	}
	if got, want := extents(slices), []float64{400, 400, 200}; !equalFloats(got, want) {
		t.Errorf("Expected extents %v, got %v", want, got)
	}
	for i, s := range slices {
		if s.Page() != i+1 {
			t.Errorf("Slice %d: expected page %d, got %d", i, i+1, s.Page())
		}
		if s.ContinuesOnNextPage != (i < 2) {
			t.Errorf("Slice %d: unexpected continuation flag %t", i, s.ContinuesOnNextPage)
		}
	}
}

func TestPaginate_FittingTreeIsOnePage(t *testing.T) {
	root := frag("document", 300, true,
		at(frag("document/p[0]", 100, false), 0),
		at(frag("document/p[1]", 200, false), 100),
	)
	doc := mustPaginate(t, root, page(400))

	if len(doc.Pages) != 1 {
		t.Fatalf("Expected 1 page, got %d", len(doc.Pages))
	}
	s := doc.Pages[0].Slices[0]
	if s.Kind != Full || s.ContinuesOnNextPage {
		t.Errorf("Expected an uncontinued full slice, got %s continues=%t", s.Kind, s.ContinuesOnNextPage)
	}
	if len(s.Children) != 2 || s.Children[1].Bounds.Y != 100 {
		t.Errorf("Expected children at their layout offsets\n%s", doc.Dump())
	}
}

func TestPaginate_AtomicMovesToNextPage(t *testing.T) {
	a := at(frag("document/div[0]", 300, false), 0)
	b := at(frag("document/div[1]", 200, false), 300)
	root := frag("document", 500, true, a, b)
	doc := mustPaginate(t, root, page(400))

	if len(doc.Pages) != 2 {
		t.Fatalf("Expected 2 pages, got %d\n%s", len(doc.Pages), doc.Dump())
	}
	sb := doc.SlicesOf(b)
	if len(sb) != 1 || sb[0].Kind != Full || sb[0].Page() != 2 {
		t.Fatalf("Expected b whole on page 2\n%s", doc.Dump())
	}
	if sb[0].Bounds.Y != 0 {
		t.Errorf("Expected b at the top of page 2, got y=%v", sb[0].Bounds.Y)
	}
	// the 100 left on page 1 stays with the first piece of the parent
	if got, want := extents(doc.SlicesOf(root)), []float64{300, 200}; !equalFloats(got, want) {
		t.Errorf("Expected root extents %v, got %v", want, got)
	}
}

func TestPaginate_AtomicTallerThanPageIsChopped(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	root := frag("document", 900, false,
		at(frag("document/div[0]", 900, false), 0),
	)
	doc, err := New(zap.New(core)).Paginate(root, page(400), nil, nil)
	if err != nil {
		t.Fatalf("Paginate failed: %v", err)
	}
	if err := doc.Verify(root); err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if got, want := extents(doc.SlicesOf(root)), []float64{400, 400, 100}; !equalFloats(got, want) {
		t.Errorf("Expected extents %v, got %v", want, got)
	}
	if n := logs.FilterMessageSnippet("taller than a page").Len(); n != 1 {
		t.Errorf("Expected 1 warning, got %d", n)
	}
	for _, s := range doc.SlicesOf(root) {
		if !s.Cut || len(s.Children) != 0 {
			t.Errorf("Expected cut pieces without child slices\n%s", doc.Dump())
		}
	}
}

func TestPaginate_ContentOverflowingItsParent(t *testing.T) {
	var lines []*layout.Fragment
	for i := range 10 {
		l := at(frag("document/div[0]/#anonymous[0]/line", 100, false), float64(i*100))
		l.Kind = layout.FragmentLine
		lines = append(lines, l)
	}
	run := at(frag("document/div[0]/#anonymous[0]", 1000, true, lines...), 0)
	div := at(frag("document/div[0]", 20, true, run), 0)
	root := frag("document", 100, true, div)
	doc := mustPaginate(t, root, page(400))

	if len(doc.Pages) != 3 {
		t.Fatalf("Expected 3 pages, got %d\n%s", len(doc.Pages), doc.Dump())
	}
	if got, want := extents(doc.SlicesOf(run)), []float64{400, 400, 200}; !equalFloats(got, want) {
		t.Errorf("Expected run extents %v, got %v", want, got)
	}
	for _, f := range []*layout.Fragment{root, div} {
		if s := doc.SlicesOf(f); len(s) != 1 || s[0].Kind != Full || s[0].Page() != 1 {
			t.Errorf("Expected %s whole on page 1\n%s", f.Path(), doc.Dump())
		}
	}
	// pages the parents no longer reach carry the overflow at top level
	for _, pg := range doc.Pages[1:] {
		if len(pg.Slices) != 1 || pg.Slices[0].Fragment != run {
			t.Errorf("Page %d: expected the run continuation at top level\n%s", pg.Number, doc.Dump())
		}
	}
	for _, l := range lines {
		if s := doc.SlicesOf(l); len(s) != 1 || s[0].Kind != Full {
			t.Fatalf("Expected every line whole\n%s", doc.Dump())
		}
	}
}

func TestPaginate_OverflowingAtomicKeepsItsSpan(t *testing.T) {
	a := at(frag("document/p[0]", 60, false), 0)
	inner := at(frag("document/div[0]/p[0]", 50, false), 10)
	box := at(frag("document/div[0]", 20, false, inner), 60)
	root := frag("document", 80, true, a, box)
	doc := mustPaginate(t, root, page(100))

	sb := doc.SlicesOf(box)
	if len(sb) != 1 || sb[0].Page() != 2 || sb[0].Bounds.Y != 0 {
		t.Fatalf("Expected the box whole at the top of page 2\n%s", doc.Dump())
	}
	if si := doc.SlicesOf(inner); len(si) != 1 || si[0].Bounds.Y != 10 || si[0].Page() != 2 {
		t.Errorf("Expected the overflowing child below the box on page 2\n%s", doc.Dump())
	}
	if got, want := extents(doc.SlicesOf(root)), []float64{60, 20}; !equalFloats(got, want) {
		t.Errorf("Expected root extents %v, got %v", want, got)
	}
}

func TestPaginate_NegativeLeadingOffsetStaysOnPage(t *testing.T) {
	p := at(frag("document/p[0]", 20, false), -5)
	root := frag("document", 15, true, p)
	pc := PageConstraints{Width: 100, Height: 100, Margin: styled.Uniform(10)}
	doc := mustPaginate(t, root, pc)

	if len(doc.Pages) != 1 {
		t.Fatalf("Expected 1 page, got %d", len(doc.Pages))
	}
	sp := doc.SlicesOf(p)
	if len(sp) != 1 || sp[0].Bounds.Y != doc.Pages[0].Bounds.Y {
		t.Errorf("Expected the paragraph at the top of the content area\n%s", doc.Dump())
	}
}

func TestPaginate_GapCarriesOverPageBoundary(t *testing.T) {
	a := at(frag("document/p[0]", 380, false), 0)
	b := at(frag("document/p[1]", 50, false), 420)
	root := frag("document", 470, true, a, b)
	doc := mustPaginate(t, root, page(400))

	if got, want := extents(doc.SlicesOf(root)), []float64{400, 70}; !equalFloats(got, want) {
		t.Errorf("Expected root extents %v, got %v", want, got)
	}
	sb := doc.SlicesOf(b)
	if len(sb) != 1 || sb[0].Page() != 2 || sb[0].Bounds.Y != 20 {
		t.Errorf("Expected b on page 2 at y=20\n%s", doc.Dump())
	}
}

func TestPaginate_NestedSplit(t *testing.T) {
	var lines []*layout.Fragment
	for i := range 10 {
		l := at(frag("document/p[0]/line", 50, false), float64(i*50))
		l.Kind = layout.FragmentLine
		lines = append(lines, l)
	}
	p := at(frag("document/p[0]", 500, true, lines...), 20)
	root := frag("document", 540, true, p)
	doc := mustPaginate(t, root, page(200))

	if len(doc.Pages) != 3 {
		t.Fatalf("Expected 3 pages, got %d\n%s", len(doc.Pages), doc.Dump())
	}
	for _, l := range lines {
		if s := doc.SlicesOf(l); len(s) != 1 || s[0].Kind != Full {
			t.Fatalf("Expected every line whole\n%s", doc.Dump())
		}
	}
	if got := kinds(doc.SlicesOf(p)); !equalKinds(got, []SliceKind{SplitStart, SplitMiddle, SplitEnd}) {
		t.Errorf("Unexpected paragraph kinds %v", got)
	}
}

func TestPaginate_HeaderAndFooterOnEveryPage(t *testing.T) {
	pc := PageConstraints{Width: 100, Height: 130, HeaderHeight: 20, FooterHeight: 10}
	header := frag("header", 20, false)
	footer := frag("footer", 10, false)
	root := frag("document", 250, true)

	doc, err := New(zap.NewNop()).Paginate(root, pc, header, footer)
	if err != nil {
		t.Fatalf("Paginate failed: %v", err)
	}
	if len(doc.Pages) != 3 {
		t.Fatalf("Expected 3 pages, got %d", len(doc.Pages))
	}
	for _, pg := range doc.Pages {
		if pg.Header != header || pg.Footer != footer {
			t.Errorf("Page %d: expected shared header and footer", pg.Number)
		}
		if pg.Bounds.Y != 20 || pg.Bounds.Height != 100 {
			t.Errorf("Page %d: unexpected content bounds %v", pg.Number, pg.Bounds)
		}
		if pg.FooterBounds.Y != 120 {
			t.Errorf("Page %d: unexpected footer bounds %v", pg.Number, pg.FooterBounds)
		}
	}
}

func TestPaginate_OversizedHeaderWarns(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	pc := PageConstraints{Width: 100, Height: 100, HeaderHeight: 10}
	if _, err := New(zap.New(core)).Paginate(nil, pc, frag("header", 30, false), nil); err != nil {
		t.Fatalf("Paginate failed: %v", err)
	}
	if logs.FilterMessage("Header taller than its reserved band").Len() != 1 {
		t.Errorf("Expected a header warning")
	}
}

func TestPaginate_InvalidPage(t *testing.T) {
	tests := []struct {
		name string
		pc   PageConstraints
		errs int
	}{
		{"zero size", PageConstraints{}, 3},
		{"bands eat the page", PageConstraints{Width: 100, Height: 20, HeaderHeight: 15, FooterHeight: 5}, 1},
		{"negative margin", PageConstraints{Width: 100, Height: 100, Margin: styled.Edges{Left: -1}}, 1},
		{"margins too wide", PageConstraints{Width: 100, Height: 100, Margin: styled.Edges{Left: 60, Right: 40}}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(nil).Paginate(frag("document", 10, true), tt.pc, nil, nil)
			if !errors.Is(err, ErrInvalidPage) {
				t.Fatalf("Expected ErrInvalidPage, got %v", err)
			}
			if n := len(multierr.Errors(err)); n != tt.errs {
				t.Errorf("Expected %d violations, got %d: %v", tt.errs, n, err)
			}
		})
	}
}

func TestPaginate_EmptyDocumentHasOnePage(t *testing.T) {
	for _, root := range []*layout.Fragment{nil, frag("document", 0, true)} {
		doc := mustPaginate(t, root, page(400))
		if len(doc.Pages) != 1 || len(doc.Pages[0].Slices) != 0 {
			t.Errorf("Expected one empty page, got %d pages", len(doc.Pages))
		}
	}
}

func TestVerify_DetectsTampering(t *testing.T) {
	root := frag("document", 1000, true)
	doc := mustPaginate(t, root, page(400))

	doc.Pages[1].Slices[0].Bounds.Height = 300
	err := doc.Verify(root)
	if !errors.Is(err, ErrReconstruction) {
		t.Fatalf("Expected ErrReconstruction, got %v", err)
	}
	if !strings.Contains(err.Error(), "sum to") {
		t.Errorf("Expected a sum violation, got %v", err)
	}
}

func TestPaginate_LayoutOutput(t *testing.T) {
	s := styled.DefaultStyle()
	s.FontSize = 10
	s.LineHeight = 12
	words := strings.Repeat("pagination keeps every line whole ", 6)
	var paras []*styled.Node
	for range 12 {
		paras = append(paras, styled.NewNode(styled.KindParagraph, styled.NewText(words).WithStyle(s)).WithStyle(s))
	}
	tree := styled.NewNode(styled.KindDocument, paras...).WithStyle(s)

	pc := PageConstraints{Width: 200, Height: 150, Margin: styled.Uniform(10), HeaderHeight: 10}
	c, err := pc.LayoutConstraints()
	if err != nil {
		t.Fatalf("LayoutConstraints failed: %v", err)
	}
	res, err := layout.NewEngine(zap.NewNop(), nil, nil).Layout(tree, c, layout.EnabledOptions())
	if err != nil {
		t.Fatalf("Layout failed: %v", err)
	}
	root := res.(layout.Success).Root()

	doc := mustPaginate(t, root, pc)
	if len(doc.Pages) < 2 {
		t.Fatalf("Expected several pages, got %d", len(doc.Pages))
	}
	doc.Walk(func(pg *Page, s *Slice, _ int) {
		if s.Fragment.Kind == layout.FragmentLine && s.Kind != Full {
			t.Errorf("Line %s split on page %d", s.Fragment.Path(), pg.Number)
		}
	})
}
