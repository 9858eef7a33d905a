package layout

import (
	"testing"

	"pageflow/pkg/styled"
)

func flexOpts() Options {
	opts := EnabledOptions()
	opts.Flex = true
	return opts
}

func flexBox(dir styled.FlexDirection, edit func(*styled.Style), children ...*styled.Node) *styled.Node {
	return styledEl("div", func(s *styled.Style) {
		s.Display = styled.DisplayFlex
		s.FlexDirection = dir
		if edit != nil {
			edit(s)
		}
	}, children...)
}

func TestFlex_RowGrow(t *testing.T) {
	item := func(children ...*styled.Node) *styled.Node {
		return styledEl("div", func(s *styled.Style) {
			s.Width = 20
			s.FlexGrow = 1
		}, children...)
	}
	root := el("document", flexBox(styled.FlexDirectionRow, nil, item(txt("a")), item()))
	s := mustLayout(t, root, 100, flexOpts())

	flex := find(s.Root(), "document/div[0]")
	if flex.Breakable {
		t.Error("Expected a flex row to be atomic")
	}
	if len(flex.Children) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(flex.Children))
	}
	wantX := []float64{0, 50}
	for i, it := range flex.Children {
		if !near(it.X, wantX[i]) || !near(it.Width, 50) {
			t.Errorf("item %d: expected x=%v width 50, got x=%v width %v", i, wantX[i], it.X, it.Width)
		}
		// the empty item reserves one fallback line; both stretch to it
		if !near(it.Height, DefaultFallbackLineHeight) {
			t.Errorf("item %d: expected stretched height %v, got %v", i, DefaultFallbackLineHeight, it.Height)
		}
	}
}

func TestFlex_RowShrink(t *testing.T) {
	item := func() *styled.Node {
		return styledEl("div", func(s *styled.Style) { s.Width = 80 })
	}
	root := el("document", flexBox(styled.FlexDirectionRow, nil, item(), item()))
	s := mustLayout(t, root, 100, flexOpts())

	for i, it := range find(s.Root(), "document/div[0]").Children {
		if !near(it.Width, 50) {
			t.Errorf("item %d: expected shrunk width 50, got %v", i, it.Width)
		}
	}
}

func TestFlex_RowContentBasis(t *testing.T) {
	root := el("document", flexBox(styled.FlexDirectionRow, nil, txt("abc"), el("span", txt("de"))))
	s := mustLayout(t, root, 100, flexOpts())

	flex := find(s.Root(), "document/div[0]")
	if len(flex.Children) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(flex.Children))
	}
	if !near(flex.Children[0].Width, 18) || !near(flex.Children[1].X, 18) || !near(flex.Children[1].Width, 12) {
		t.Errorf("Expected max-content items 18 and 12 wide, got\n%s", flex.Dump())
	}
	if !flex.Children[0].Box.Anonymous {
		t.Error("Expected text item to be wrapped in an anonymous block")
	}
}

func TestFlex_Column(t *testing.T) {
	root := el("document", flexBox(styled.FlexDirectionColumn, nil,
		el("p", txt("one")),
		styledEl("p", func(s *styled.Style) { s.Margin = styled.Edges{Top: 4, Bottom: 4} }, txt("two")),
		el("p", txt("three")),
	))
	s := mustLayout(t, root, 100, flexOpts())

	flex := find(s.Root(), "document/div[0]")
	if !flex.Breakable {
		t.Error("Expected a flex column to be breakable")
	}
	wantY := []float64{0, 16, 32}
	for i, it := range flex.Children {
		if !near(it.Y, wantY[i]) {
			t.Errorf("item %d: expected y=%v, got %v", i, wantY[i], it.Y)
		}
	}
	if !near(flex.Height, 44) {
		t.Errorf("Expected height 44 with margins kept, got %v", flex.Height)
	}
}

func TestFlex_ColumnGrowWithHeight(t *testing.T) {
	grow := func(s *styled.Style) { s.FlexGrow = 1 }
	root := el("document", flexBox(styled.FlexDirectionColumn, func(s *styled.Style) { s.Height = 60 },
		el("p", txt("a")),
		styledEl("p", grow, txt("b")),
	))
	s := mustLayout(t, root, 100, flexOpts())

	flex := find(s.Root(), "document/div[0]")
	if !near(flex.Children[1].Height, 48) || !near(flex.Height, 60) {
		t.Errorf("Expected growing item 48 tall in a 60 tall column, got %v in %v", flex.Children[1].Height, flex.Height)
	}
}

func TestFlex_DisabledUsesBlockFlow(t *testing.T) {
	root := el("document", flexBox(styled.FlexDirectionRow, nil, el("p", txt("a")), el("p", txt("b"))))
	s := mustLayout(t, root, 100, EnabledOptions())

	flex := find(s.Root(), "document/div[0]")
	if flex.Diagnostics.Context != "block" || !near(flex.Height, 24) {
		t.Errorf("Expected block flow 24 tall, got %q %v", flex.Diagnostics.Context, flex.Height)
	}
	if len(s.Events) != 1 || s.Events[0].From != "flex" {
		t.Errorf("Expected one flex fallback event, got %+v", s.Events)
	}
}

func TestResolveFlexibleLengths(t *testing.T) {
	items := []*flexItem{
		{main: 10, grow: 1, shrink: 1},
		{main: 10, grow: 3, shrink: 1},
	}
	resolveFlexibleLengths(items, 40)
	if items[0].main != 20 || items[1].main != 40 {
		t.Errorf("Expected 20 and 40, got %v and %v", items[0].main, items[1].main)
	}

	items = []*flexItem{{main: 10, shrink: 1}, {main: 10, shrink: 1}}
	resolveFlexibleLengths(items, -30)
	if items[0].main != 0 || items[1].main != 0 {
		t.Errorf("Expected sizes clamped at 0, got %v and %v", items[0].main, items[1].main)
	}
}
