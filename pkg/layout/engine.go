package layout

import (
	"maps"

	"go.uber.org/zap"

	"pageflow/pkg/styled"
	"pageflow/pkg/text"
)

// Engine lays out styled trees. It keeps no per-invocation state and may be
// used from several goroutines; the classifier's warning sets are the only
// shared mutable state.
type Engine struct {
	log        *zap.Logger
	classifier *Classifier
	measurer   TextMeasurer
}

// NewEngine creates an engine. A nil classifier gets private warning sets,
// a nil measurer uses text.MonoMeasurer.
func NewEngine(log *zap.Logger, classifier *Classifier, measurer TextMeasurer) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	if classifier == nil {
		classifier = NewClassifier(log, nil, nil)
	}
	if measurer == nil {
		measurer = text.MonoMeasurer{}
	}
	return &Engine{
		log:        log.Named("layout"),
		classifier: classifier,
		measurer:   measurer,
	}
}

// Layout lays out the tree under root. It returns Disabled without looking
// at the tree when opts.NewLayout is false, Fallback when the root cannot be
// handled, and Success otherwise. Errors are reserved for invalid
// constraints and configuration bugs.
func (e *Engine) Layout(root *styled.Node, c Constraints, opts Options) (Result, error) {
	if !opts.NewLayout {
		return Disabled{}, nil
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if root == nil {
		return Fallback{Reason: "empty tree"}, nil
	}
	if !opts.Table {
		opts.TableBorderCollapse = false
	}

	b := &boxBuilder{classifier: e.classifier, opts: opts, log: e.log}
	rootBox, reason := b.buildRoot(root)
	if reason != "" {
		e.log.Debug("Declining tree", zap.String("reason", reason), zap.String("kind", string(root.Kind)))
		return Fallback{Reason: reason, Kind: root.Kind}, nil
	}

	p := newPass(opts, e.measurer, e.log)
	frag, err := e.layoutRoot(p, rootBox, c)
	if err != nil {
		return nil, err
	}

	res := Success{Fragments: []*Fragment{frag}, Events: b.events}
	if opts.Diagnostics {
		res.Records = e.collectRecords(frag)
	}
	return res, nil
}

// layoutRoot dispatches the root box. Only block and inline roots are
// accepted.
func (e *Engine) layoutRoot(p *pass, root *Box, c Constraints) (*Fragment, error) {
	switch root.Display {
	case DisplayBlock, DisplayInline:
		return p.layoutChild(root, c)
	}
	return nil, &ConfigError{Path: root.Path, Display: root.Display, Context: root.Context}
}

func (e *Engine) collectRecords(root *Fragment) []Record {
	var records []Record
	root.Walk(func(f *Fragment, depth int) bool {
		d := f.Diagnostics
		records = append(records, Record{
			Path:        f.Path(),
			Context:     d.Context,
			Constraints: d.Constraints,
			Width:       d.Width,
			Height:      d.Height,
			Metadata:    maps.Clone(d.Metadata),
		})
		e.log.Debug("Fragment",
			zap.String("path", f.Path()),
			zap.String("context", d.Context),
			zap.Int("depth", depth),
			zap.Float64("width", d.Width),
			zap.Float64("height", d.Height),
			zap.Stringer("constraints", d.Constraints),
		)
		return true
	})
	return records
}
