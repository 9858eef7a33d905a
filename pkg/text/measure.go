// Package text measures text runs and finds line break opportunities.
package text

import (
	"sync"

	"github.com/fogleman/gg"
	"github.com/mattn/go-runewidth"
)

// Rough proportions used when no font face is available.
const (
	estimateAdvance = 0.6 // average advance per cell, in em
	estimateAscent  = 0.8 // ascent, in em
)

// MonoMeasurer measures text as if every cell were estimateAdvance em wide.
// Wide east-asian runes take two cells. It needs no font files and produces
// stable numbers, which makes it the default for tools and tests.
type MonoMeasurer struct{}

func (MonoMeasurer) Width(s string, fontSize float64) float64 {
	return float64(runewidth.StringWidth(s)) * fontSize * estimateAdvance
}

func (MonoMeasurer) Ascent(fontSize float64) float64 {
	return fontSize * estimateAscent
}

// FontMeasurer measures text with a TrueType font through gg font faces.
// Faces are loaded once per size. If the font cannot be loaded the measurer
// falls back to the same estimate MonoMeasurer uses.
type FontMeasurer struct {
	fontPath string

	mu       sync.Mutex
	contexts map[float64]*gg.Context
	failed   map[float64]bool
}

// NewFontMeasurer creates a measurer for the font file at fontPath.
func NewFontMeasurer(fontPath string) *FontMeasurer {
	return &FontMeasurer{
		fontPath: fontPath,
		contexts: make(map[float64]*gg.Context),
		failed:   make(map[float64]bool),
	}
}

// context returns the measuring context for size, nil if the face is not
// available. Must be called with mu held.
func (m *FontMeasurer) context(fontSize float64) *gg.Context {
	if dc, ok := m.contexts[fontSize]; ok {
		return dc
	}
	if m.failed[fontSize] || m.fontPath == "" {
		return nil
	}
	dc := gg.NewContext(1, 1)
	if err := dc.LoadFontFace(m.fontPath, fontSize); err != nil {
		m.failed[fontSize] = true
		return nil
	}
	m.contexts[fontSize] = dc
	return dc
}

func (m *FontMeasurer) Width(s string, fontSize float64) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	dc := m.context(fontSize)
	if dc == nil {
		return MonoMeasurer{}.Width(s, fontSize)
	}
	w, _ := dc.MeasureString(s)
	return w
}

func (m *FontMeasurer) Ascent(fontSize float64) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	dc := m.context(fontSize)
	if dc == nil {
		return MonoMeasurer{}.Ascent(fontSize)
	}
	return dc.FontHeight() * estimateAscent
}

// Loaded reports whether the font file could be used for fontSize.
func (m *FontMeasurer) Loaded(fontSize float64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.context(fontSize) != nil
}
