package layout

import (
	"sync"

	"go.uber.org/zap"

	"pageflow/pkg/styled"
)

// DisplayClass is the layout-relevant classification of a node.
type DisplayClass int

const (
	DisplayBlock DisplayClass = iota
	DisplayInline
	DisplayInlineBlock
	DisplayFlex
	DisplayNone
)

func (d DisplayClass) String() string {
	switch d {
	case DisplayBlock:
		return "block"
	case DisplayInline:
		return "inline"
	case DisplayInlineBlock:
		return "inline-block"
	case DisplayFlex:
		return "flex"
	case DisplayNone:
		return "none"
	}
	return "invalid"
}

// IsInlineLevel reports whether boxes of this class participate in lines.
func (d DisplayClass) IsInlineLevel() bool {
	return d == DisplayInline || d == DisplayInlineBlock
}

// WarnSet remembers which keys have already been warned about. It is safe
// for concurrent use; a key is reported as new exactly once until Reset.
//
// Share one set between classifiers to deduplicate warnings across a whole
// run, or give each classifier its own to isolate them.
type WarnSet struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewWarnSet() *WarnSet {
	return &WarnSet{seen: make(map[string]struct{})}
}

// FirstTime records key and reports whether it was not seen before.
func (s *WarnSet) FirstTime(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[key]; ok {
		return false
	}
	s.seen[key] = struct{}{}
	return true
}

// Len returns the number of distinct keys recorded.
func (s *WarnSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seen)
}

// Reset forgets all recorded keys.
func (s *WarnSet) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.seen)
}

// Classifier maps (node kind, computed style) to a DisplayClass.
// Classification is total and deterministic; warnings are advisory and
// never change the result.
type Classifier struct {
	log      *zap.Logger
	displays *WarnSet // unsupported display values already warned about
	kinds    *WarnSet // unknown node kinds already warned about
}

// NewClassifier creates a classifier. Nil sets are replaced with fresh
// private ones.
func NewClassifier(log *zap.Logger, displays, kinds *WarnSet) *Classifier {
	if log == nil {
		log = zap.NewNop()
	}
	if displays == nil {
		displays = NewWarnSet()
	}
	if kinds == nil {
		kinds = NewWarnSet()
	}
	return &Classifier{log: log, displays: displays, kinds: kinds}
}

// Classify returns the display class for a node of the given kind.
//
// An explicit display value of block, inline-block, flex or none wins.
// Other explicit values are unsupported: they are warned about once and
// the kind's semantic default is used, as it is when nothing is set.
func (c *Classifier) Classify(kind styled.Kind, style *styled.Style) DisplayClass {
	if style != nil {
		switch style.Display {
		case styled.DisplayBlock:
			return DisplayBlock
		case styled.DisplayInlineBlock:
			return DisplayInlineBlock
		case styled.DisplayFlex:
			return DisplayFlex
		case styled.DisplayNone:
			return DisplayNone
		}
		if !style.Display.IsDefault() && c.displays.FirstTime(string(style.Display)) {
			c.log.Warn("Unsupported display value, using element default",
				zap.String("display", string(style.Display)), zap.String("kind", string(kind)))
		}
	}
	return c.semanticDefault(kind)
}

func (c *Classifier) semanticDefault(kind styled.Kind) DisplayClass {
	switch kind.Category() {
	case styled.CategoryStructural:
		return DisplayBlock
	case styled.CategoryTextLevel:
		return DisplayInline
	case styled.CategoryTableStructure:
		// handled by the table context when enabled, block flow otherwise
		return DisplayBlock
	}
	if c.kinds.FirstTime(string(kind)) {
		c.log.Warn("Unknown node kind, treating as block", zap.String("kind", string(kind)))
	}
	return DisplayBlock
}
