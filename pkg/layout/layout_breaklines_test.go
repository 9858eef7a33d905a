package layout

import (
	"strings"
	"testing"

	"go.uber.org/zap"

	"pageflow/pkg/styled"
)

func textItem(box *Box, s string) *inlineItem {
	return &inlineItem{kind: itemText, box: box, text: s}
}

func lineTexts(ln *lineBox) string {
	var parts []string
	for _, p := range ln.pieces {
		if p.item.kind == itemText {
			parts = append(parts, p.text)
		}
	}
	return strings.Join(parts, "+")
}

func newTestInline() *inlineContext {
	return newPass(EnabledOptions(), nil, zap.NewNop()).inline
}

func TestBreakLines_Greedy(t *testing.T) {
	ic := newTestInline()
	box := &Box{Style: testStyle()}

	lines := ic.breakLines([]*inlineItem{textItem(box, "the quick brown fox")}, 60)

	want := []string{"the quick", "brown fox"}
	if len(lines) != len(want) {
		t.Fatalf("Expected %d lines, got %d", len(want), len(lines))
	}
	for i, ln := range lines {
		if got := lineTexts(ln); got != want[i] {
			t.Errorf("line %d: expected %q, got %q", i, want[i], got)
		}
		if !near(ln.width, 54) {
			t.Errorf("line %d: expected width 54 after trimming, got %v", i, ln.width)
		}
	}
}

func TestBreakLines_Unbounded(t *testing.T) {
	ic := newTestInline()
	box := &Box{Style: testStyle()}

	lines := ic.breakLines([]*inlineItem{textItem(box, "never wraps at all")}, Unbounded)
	if len(lines) != 1 {
		t.Fatalf("Expected 1 line, got %d", len(lines))
	}
	if got := lineTexts(lines[0]); got != "never wraps at all" {
		t.Errorf("Expected whole text on one line, got %q", got)
	}
}

func TestBreakLines_LongWordOverflows(t *testing.T) {
	ic := newTestInline()
	box := &Box{Style: testStyle()}

	lines := ic.breakLines([]*inlineItem{textItem(box, "a incomprehensibilities b")}, 30)

	want := []string{"a", "incomprehensibilities", "b"}
	if len(lines) != len(want) {
		t.Fatalf("Expected %d lines, got %d", len(want), len(lines))
	}
	for i, ln := range lines {
		if got := lineTexts(ln); got != want[i] {
			t.Errorf("line %d: expected %q, got %q", i, want[i], got)
		}
	}
	if lines[1].width <= 30 {
		t.Errorf("Expected the long word to overflow, got width %v", lines[1].width)
	}
}

func TestBreakLines_ForcedBreaks(t *testing.T) {
	ic := newTestInline()
	box := &Box{Style: testStyle()}
	br := &Box{Style: testStyle(), Node: styled.NewNode(styled.KindLineBreak)}

	items := []*inlineItem{
		textItem(box, "one"),
		{kind: itemBreak, box: br},
		{kind: itemBreak, box: br},
		textItem(box, "two"),
	}
	lines := ic.breakLines(items, 100)

	want := []string{"one", "", "two"}
	if len(lines) != len(want) {
		t.Fatalf("Expected %d lines, got %d", len(want), len(lines))
	}
	for i, ln := range lines {
		if got := lineTexts(ln); got != want[i] {
			t.Errorf("line %d: expected %q, got %q", i, want[i], got)
		}
	}
}

func TestBreakLines_PreservedNewlines(t *testing.T) {
	ic := newTestInline()
	box := &Box{Style: testStyle()}

	item := textItem(box, "x  y\nz")
	item.pre = true
	lines := ic.breakLines([]*inlineItem{item}, 100)

	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %d", len(lines))
	}
	if got := lineTexts(lines[0]); got != "x  y" {
		t.Errorf("Expected spaces preserved, got %q", got)
	}
}

func TestBreakLines_EdgeSpacingCounts(t *testing.T) {
	ic := newTestInline()
	box := &Box{Style: testStyle()}
	span := &Box{Style: testStyle()}

	items := []*inlineItem{
		{kind: itemSpace, box: span, width: 10},
		textItem(box, "abc "),
		{kind: itemSpace, box: span, width: 10},
	}
	lines := ic.breakLines(items, 100)

	if len(lines) != 1 {
		t.Fatalf("Expected 1 line, got %d", len(lines))
	}
	ln := lines[0]
	if !near(ln.width, 38) {
		t.Errorf("Expected width 10+18+10, got %v", ln.width)
	}
	if last := ln.pieces[len(ln.pieces)-1]; !near(last.x, 28) {
		t.Errorf("Expected closing edge shifted to 28 after trimming, got %v", last.x)
	}
}

func TestBreakLines_WhitespaceOnlyMakesNoLine(t *testing.T) {
	ic := newTestInline()
	box := &Box{Style: testStyle()}

	if lines := ic.breakLines([]*inlineItem{textItem(box, " ")}, 100); len(lines) != 0 {
		t.Errorf("Expected no lines, got %d", len(lines))
	}
}
