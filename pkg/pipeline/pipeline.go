// Package pipeline runs a styled tree through layout, pagination and
// rendering with one configuration. Commands use it so they agree on how
// the pieces are wired.
package pipeline

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"pageflow/pkg/config"
	"pageflow/pkg/layout"
	"pageflow/pkg/paginate"
	"pageflow/pkg/render"
	"pageflow/pkg/styled"
)

// ErrNotLaidOut is returned when the engine did not produce fragments, that
// is when the result was Disabled or Fallback.
var ErrNotLaidOut = errors.New("document was not laid out")

// Pipeline holds the components built from one configuration. Its warn-once
// sets are shared by every tree it lays out.
type Pipeline struct {
	log    *zap.Logger
	cfg    *config.Config
	engine *layout.Engine
}

func New(log *zap.Logger, cfg *config.Config) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	classifier := layout.NewClassifier(log, nil, nil)
	return &Pipeline{
		log:    log,
		cfg:    cfg,
		engine: layout.NewEngine(log, classifier, cfg.Measurer()),
	}
}

// Layout lays out root against the content area of a page.
func (p *Pipeline) Layout(root *styled.Node) (layout.Result, error) {
	c, err := p.cfg.PageConstraints().LayoutConstraints()
	if err != nil {
		return nil, err
	}
	return p.engine.Layout(root, c, p.cfg.LayoutOptions())
}

// Paginated is the outcome of a full run.
type Paginated struct {
	Layout   layout.Success
	Document *paginate.Document
}

// Paginate lays out root, lays out the header and footer bands once, and
// distributes the content over pages. The document is verified before it
// is returned.
func (p *Pipeline) Paginate(root *styled.Node) (*Paginated, error) {
	res, err := p.Layout(root)
	if err != nil {
		return nil, err
	}
	var ok layout.Success
	switch r := res.(type) {
	case layout.Success:
		ok = r
	case layout.Fallback:
		return nil, fmt.Errorf("%w: fallback for %q: %s", ErrNotLaidOut, r.Kind, r.Reason)
	case layout.Disabled:
		return nil, fmt.Errorf("%w: new layout is disabled", ErrNotLaidOut)
	}

	pc := p.cfg.PageConstraints()
	header, err := p.band(p.cfg.Page.HeaderText, pc.HeaderHeight)
	if err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	footer, err := p.band(p.cfg.Page.FooterText, pc.FooterHeight)
	if err != nil {
		return nil, fmt.Errorf("footer: %w", err)
	}

	content := ok.Root()
	doc, err := paginate.New(p.log).Paginate(content, pc, header, footer)
	if err != nil {
		return nil, err
	}
	if err := doc.Verify(content); err != nil {
		return nil, err
	}
	return &Paginated{Layout: ok, Document: doc}, nil
}

// band lays out a header or footer line of text. Empty text or a band
// without height gives no fragment.
func (p *Pipeline) band(text string, height float64) (*layout.Fragment, error) {
	if text == "" || height <= 0 {
		return nil, nil
	}
	style := p.cfg.BandStyle()
	node := styled.NewNode(styled.KindParagraph, styled.NewText(text).WithStyle(style)).WithStyle(style)

	c, err := layout.NewConstraints(0, p.cfg.PageConstraints().UsableWidth(), 0, layout.Unbounded, height, false)
	if err != nil {
		return nil, err
	}
	opts := p.cfg.LayoutOptions()
	opts.Diagnostics = false
	res, err := p.engine.Layout(node, c, opts)
	if err != nil {
		return nil, err
	}
	ok, isSuccess := res.(layout.Success)
	if !isSuccess {
		p.log.Warn("Band text not laid out", zap.String("text", text))
		return nil, nil
	}
	return ok.Root(), nil
}

// Renderer builds the renderer the render section asks for.
func (p *Pipeline) Renderer() (*render.Renderer, error) {
	labeler, err := render.NewLabeler(p.log, p.cfg.Render.PageLabel)
	if err != nil {
		return nil, err
	}
	return render.New(p.log, render.Options{
		Scale:    p.cfg.Render.Scale,
		Outline:  p.cfg.Render.Outline,
		FontPath: p.cfg.Text.Font,
	}, labeler), nil
}
