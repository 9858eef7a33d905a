package layout

import (
	"go.uber.org/zap"

	"pageflow/pkg/text"
)

// TextMeasurer measures runs of text for line breaking. text.MonoMeasurer
// and text.FontMeasurer implement it.
type TextMeasurer interface {
	Width(s string, fontSize float64) float64
	Ascent(fontSize float64) float64
}

// FormattingContext lays out one box and its subtree under constraints.
// The returned fragment has its own size set; its X and Y are left for
// the caller to assign.
type FormattingContext interface {
	Name() string
	Layout(box *Box, c Constraints) (*Fragment, error)
}

// pass holds the state of a single Layout invocation. Contexts reach each
// other through it; nothing in it outlives the invocation.
type pass struct {
	opts     Options
	measurer TextMeasurer
	log      *zap.Logger

	block       *blockContext
	inline      *inlineContext
	inlineBlock *inlineBlockContext
	table       *tableContext
	flex        *flexContext
}

func newPass(opts Options, measurer TextMeasurer, log *zap.Logger) *pass {
	if measurer == nil {
		measurer = text.MonoMeasurer{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	p := &pass{opts: opts, measurer: measurer, log: log}
	p.block = &blockContext{p: p}
	p.inline = &inlineContext{p: p}
	p.inlineBlock = &inlineBlockContext{p: p}
	p.table = &tableContext{p: p}
	p.flex = &flexContext{p: p}
	return p
}

// contextFor dispatches a box to the context named by its ContextKind.
// A box whose display class disagrees with its context kind is a
// construction bug and reported as ConfigError.
func (p *pass) contextFor(box *Box) (FormattingContext, error) {
	switch {
	case box.Context == ContextBlock && box.Display == DisplayBlock:
		return p.block, nil
	case box.Context == ContextTable && box.Display == DisplayBlock:
		return p.table, nil
	case box.Context == ContextInline && box.Display == DisplayInline:
		return p.inline, nil
	case box.Context == ContextInlineBlock && box.Display == DisplayInlineBlock:
		return p.inlineBlock, nil
	case box.Context == ContextFlex && box.Display == DisplayFlex:
		return p.flex, nil
	}
	return nil, &ConfigError{Path: box.Path, Display: box.Display, Context: box.Context}
}

// layoutChild lays out a child box through its context.
func (p *pass) layoutChild(box *Box, c Constraints) (*Fragment, error) {
	ctx, err := p.contextFor(box)
	if err != nil {
		return nil, err
	}
	return ctx.Layout(box, c)
}

// placeholder is a zero-size fragment standing in for a box no context
// in the current flow can lay out.
func (p *pass) placeholder(box *Box, c Constraints, reason string) *Fragment {
	f := newFragment(FragmentInline, box, c, "placeholder")
	f.note("reason", reason)
	p.log.Debug("Placeholder fragment", zap.String("path", box.Path), zap.String("reason", reason))
	return f
}
