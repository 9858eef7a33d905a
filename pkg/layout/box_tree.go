package layout

import (
	"fmt"

	"go.uber.org/zap"

	"pageflow/pkg/styled"
)

// classSet is a small set of display classes.
type classSet uint8

func setOf(classes ...DisplayClass) classSet {
	var s classSet
	for _, c := range classes {
		s |= 1 << c
	}
	return s
}

func (s classSet) has(c DisplayClass) bool {
	return s&(1<<c) != 0
}

// Display classes a box may contain, by the class of the parent.
var (
	blockChildren  = setOf(DisplayBlock, DisplayInline, DisplayInlineBlock, DisplayFlex)
	inlineChildren = setOf(DisplayInline, DisplayInlineBlock)
)

func permittedChildren(parent DisplayClass) classSet {
	if parent == DisplayInline {
		return inlineChildren
	}
	return blockChildren
}

// boxBuilder turns a styled tree into a box tree, applying feature gates
// and dropping nodes the parent does not permit.
type boxBuilder struct {
	classifier *Classifier
	opts       Options
	log        *zap.Logger
	events     []Event
}

// buildRoot classifies and builds the tree under root. It returns a
// non-empty reason instead of a box when the root cannot be laid out.
func (b *boxBuilder) buildRoot(root *styled.Node) (*Box, string) {
	display := b.classifier.Classify(root.Kind, &root.Style)
	switch {
	case display == DisplayNone:
		return nil, "root has display none"
	case root.Kind.IsTableStructure():
		return nil, fmt.Sprintf("root %s is table substructure", root.Kind)
	case display == DisplayInlineBlock || display == DisplayFlex:
		return nil, fmt.Sprintf("root display %s is not supported", display)
	}
	return b.build(root, string(root.Kind), display), ""
}

func (b *boxBuilder) build(node *styled.Node, path string, display DisplayClass) *Box {
	box := &Box{
		Node:    node,
		Style:   node.Style,
		Margin:  node.Style.Margin,
		Padding: node.Style.Padding,
		Border:  node.Style.Border,
		Path:    path,
	}
	box.Display = b.gateDisplay(box, display)
	box.Context = b.contextFor(box)

	allowed := permittedChildren(box.Display)
	counts := make(map[styled.Kind]int)
	for _, child := range node.Children {
		if child == nil {
			continue
		}
		childPath := fmt.Sprintf("%s/%s[%d]", path, child.Kind, counts[child.Kind])
		counts[child.Kind]++

		cd := b.classifier.Classify(child.Kind, &child.Style)
		gated := ""
		if cd == DisplayInlineBlock && !b.opts.InlineBlock {
			// gated before the permission check so the parent sees inline
			cd = DisplayInline
			gated = "inline-block: " + ReasonDisabled
			b.fallback(childPath, child.Kind, "inline-block", "inline")
		}
		if !allowed.has(cd) {
			b.drop(childPath, child.Kind, cd, box.Display)
			continue
		}
		cb := b.build(child, childPath, cd)
		if gated != "" {
			cb.Fallback = gated
		}
		box.Children = append(box.Children, cb)
	}
	return box
}

// gateDisplay applies the flex gate. The inline-block gate is applied by
// the parent, which needs the gated class for its permission check.
func (b *boxBuilder) gateDisplay(box *Box, display DisplayClass) DisplayClass {
	if display == DisplayFlex && !b.opts.Flex {
		b.fallback(box.Path, box.Kind(), "flex", "block")
		box.Fallback = "flex: " + ReasonDisabled
		return DisplayBlock
	}
	return display
}

func (b *boxBuilder) contextFor(box *Box) ContextKind {
	switch box.Display {
	case DisplayInline:
		return ContextInline
	case DisplayInlineBlock:
		return ContextInlineBlock
	case DisplayFlex:
		return ContextFlex
	}
	if box.Kind() == styled.KindTable {
		if b.opts.Table {
			return ContextTable
		}
		b.fallback(box.Path, box.Kind(), "table", "block")
		box.Fallback = "table: " + ReasonDisabled
	}
	return ContextBlock
}

func (b *boxBuilder) fallback(path string, kind styled.Kind, from, to string) {
	b.events = append(b.events, Event{
		Kind:   EventFallback,
		Path:   path,
		Node:   kind,
		From:   from,
		To:     to,
		Reason: ReasonDisabled,
	})
	b.log.Debug("Context disabled, falling back",
		zap.String("path", path), zap.String("from", from), zap.String("to", to))
}

func (b *boxBuilder) drop(path string, kind styled.Kind, display, parent DisplayClass) {
	reason := ReasonNotPermitted
	switch {
	case display == DisplayNone:
		reason = ReasonDisplayNone
	case parent == DisplayInline:
		reason = ReasonBlockInInline
	}
	b.events = append(b.events, Event{
		Kind:   EventDropped,
		Path:   path,
		Node:   kind,
		From:   display.String(),
		Reason: reason,
	})
	if display != DisplayNone {
		b.log.Debug("Dropping node not permitted in parent",
			zap.String("path", path), zap.Stringer("display", display), zap.Stringer("parent", parent))
	}
}

// anonymousRun wraps a run of inline-level children of parent.
func anonymousRun(parent *Box, index int, children []*Box) *Box {
	return &Box{
		Node:      parent.Node,
		Display:   DisplayInline,
		Context:   ContextInline,
		Style:     parent.Style,
		Path:      fmt.Sprintf("%s/#anonymous[%d]", parent.Path, index),
		Children:  children,
		Anonymous: true,
	}
}
