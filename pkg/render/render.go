// Package render draws paginated documents to raster images. It is a
// reference backend: boxes are outlined, text is drawn at its line
// positions and nothing else of the original styling is painted.
package render

import (
	"errors"
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"
	"go.uber.org/zap"
	"golang.org/x/image/font"

	"pageflow/pkg/layout"
	"pageflow/pkg/paginate"
)

// Options controls what is painted.
type Options struct {
	// Scale is the number of pixels per layout unit. Zero means 1.
	Scale float64
	// Outline draws fragment borders and the header and footer bands.
	Outline bool
	// FontPath is a TrueType font for text. Empty uses gg's built-in face.
	FontPath string
}

// Renderer paints pages. It caches font faces and is not safe for
// concurrent use.
type Renderer struct {
	log     *zap.Logger
	opts    Options
	labeler *Labeler

	faces  map[float64]font.Face
	failed map[float64]bool
}

// New creates a renderer. labeler may be nil.
func New(log *zap.Logger, opts Options, labeler *Labeler) *Renderer {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	return &Renderer{
		log:     log.Named("render"),
		opts:    opts,
		labeler: labeler,
		faces:   make(map[float64]font.Face),
		failed:  make(map[float64]bool),
	}
}

// RenderPage paints one page of doc.
func (r *Renderer) RenderPage(doc *paginate.Document, pg *paginate.Page) (image.Image, error) {
	if doc == nil || pg == nil {
		return nil, errors.New("render: nil document or page")
	}
	pc := doc.Constraints
	w := int(math.Ceil(pc.Width * r.opts.Scale))
	h := int(math.Ceil(pc.Height * r.opts.Scale))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("render: page %d has no area (%dx%d)", pg.Number, w, h)
	}

	dc := gg.NewContext(w, h)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.Scale(r.opts.Scale, r.opts.Scale)
	dc.SetLineWidth(1 / r.opts.Scale)

	r.drawBand(dc, pg.Header, pg.HeaderBounds)
	r.drawBand(dc, pg.Footer, pg.FooterBounds)
	for _, s := range pg.Slices {
		r.drawSlice(dc, s)
	}

	label, err := r.labeler.Label(pg.Number, len(doc.Pages))
	if err != nil {
		return nil, err
	}
	if label != "" {
		r.drawLabel(dc, label, pc, pg.FooterBounds)
	}
	return dc.Image(), nil
}

// RenderAll paints every page of doc in order.
func (r *Renderer) RenderAll(doc *paginate.Document) ([]image.Image, error) {
	out := make([]image.Image, 0, len(doc.Pages))
	for _, pg := range doc.Pages {
		img, err := r.RenderPage(doc, pg)
		if err != nil {
			return nil, err
		}
		out = append(out, img)
	}
	return out, nil
}

// SavePNG writes one PNG per page into dir, named page-001.png and so on,
// and returns the paths written.
func (r *Renderer) SavePNG(doc *paginate.Document, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	var paths []string
	for _, pg := range doc.Pages {
		img, err := r.RenderPage(doc, pg)
		if err != nil {
			return paths, err
		}
		path := filepath.Join(dir, fmt.Sprintf("page-%03d.png", pg.Number))
		if err := gg.SavePNG(path, img); err != nil {
			return paths, fmt.Errorf("render: page %d: %w", pg.Number, err)
		}
		paths = append(paths, path)
	}
	r.log.Info("Rendered pages", zap.Int("pages", len(paths)), zap.String("dir", dir))
	return paths, nil
}

// drawBand paints a header or footer fragment inside its reserved band.
func (r *Renderer) drawBand(dc *gg.Context, f *layout.Fragment, band paginate.Rect) {
	if r.opts.Outline && band.Height > 0 {
		dc.SetRGB(0.85, 0.85, 0.85)
		dc.DrawRectangle(band.X, band.Y, band.Width, band.Height)
		dc.Stroke()
	}
	if f == nil {
		return
	}
	dc.Push()
	dc.DrawRectangle(band.X, band.Y, band.Width, band.Height)
	dc.Clip()
	r.drawFragment(dc, f, band.X+f.X, band.Y+f.Y)
	dc.Pop()
}

// drawSlice paints a slice and its child slices. A slice cut from a
// fragment without regard to its children paints the fragment's subtree
// clipped to the slice.
func (r *Renderer) drawSlice(dc *gg.Context, s *paginate.Slice) {
	f := s.Fragment
	if r.opts.Outline {
		r.drawOutline(dc, s)
	}
	if f.Text != "" {
		r.drawText(dc, f, s.Bounds.X, s.Bounds.Y-s.Offset)
	}
	if !s.Cut {
		for _, c := range s.Children {
			r.drawSlice(dc, c)
		}
		return
	}

	top := s.Bounds.Y - s.Offset
	dc.Push()
	dc.DrawRectangle(s.Bounds.X, s.Bounds.Y, s.Bounds.Width, s.Bounds.Height)
	dc.Clip()
	for _, c := range f.Children {
		r.drawFragment(dc, c, s.Bounds.X+c.X, top+c.Y)
	}
	dc.Pop()
}

// drawFragment paints a fragment subtree with its top-left corner at x, y.
func (r *Renderer) drawFragment(dc *gg.Context, f *layout.Fragment, x, y float64) {
	if r.opts.Outline && f.Text == "" && f.Width > 0 && f.Height > 0 {
		r.setOutlineColor(dc, f.Kind)
		dc.DrawRectangle(x, y, f.Width, f.Height)
		dc.Stroke()
	}
	if f.Text != "" {
		r.drawText(dc, f, x, y)
	}
	for _, c := range f.Children {
		r.drawFragment(dc, c, x+c.X, y+c.Y)
	}
}

// drawOutline strokes the slice rectangle. Edges where the fragment
// continues on another page are dashed.
func (r *Renderer) drawOutline(dc *gg.Context, s *paginate.Slice) {
	if s.Fragment.Text != "" {
		return
	}
	b := s.Bounds
	r.setOutlineColor(dc, s.Fragment.Kind)

	dc.DrawLine(b.X, b.Y, b.X, b.Bottom())
	dc.DrawLine(b.Right(), b.Y, b.Right(), b.Bottom())
	dc.Stroke()

	edge := func(y float64, continued bool) {
		if continued {
			dc.SetDash(4, 3)
		}
		dc.DrawLine(b.X, y, b.Right(), y)
		dc.Stroke()
		dc.SetDash()
	}
	edge(b.Y, s.Kind == paginate.SplitMiddle || s.Kind == paginate.SplitEnd)
	edge(b.Bottom(), s.ContinuesOnNextPage)
}

func (r *Renderer) setOutlineColor(dc *gg.Context, kind layout.FragmentKind) {
	switch kind {
	case layout.FragmentLine:
		dc.SetRGB(0.7, 0.8, 1)
	case layout.FragmentInline:
		dc.SetRGB(0.6, 0.9, 0.6)
	default:
		dc.SetRGB(0.5, 0.5, 0.5)
	}
}

// drawText draws the text of an inline piece whose top edge is at y.
func (r *Renderer) drawText(dc *gg.Context, f *layout.Fragment, x, y float64) {
	size := 16.0
	if f.Box != nil {
		size = f.Box.Style.EffectiveFontSize()
	}
	if face := r.face(size); face != nil {
		dc.SetFontFace(face)
	}
	baseline := f.Baseline
	if !f.HasBaseline {
		baseline = f.Height
	}
	dc.SetRGB(0, 0, 0)
	dc.DrawString(f.Text, x, y+baseline)
}

func (r *Renderer) drawLabel(dc *gg.Context, label string, pc paginate.PageConstraints, footer paginate.Rect) {
	cx, cy := footer.X+footer.Width/2, footer.Y+footer.Height/2
	if footer.Height <= 0 {
		cy = pc.Height - pc.Margin.Bottom/2
	}
	if face := r.face(10); face != nil {
		dc.SetFontFace(face)
	}
	dc.SetRGB(0.2, 0.2, 0.2)
	dc.DrawStringAnchored(label, cx, cy, 0.5, 0.5)
}

// face returns the cached face for size, nil when no font is configured or
// it cannot be loaded.
func (r *Renderer) face(size float64) font.Face {
	if r.opts.FontPath == "" || r.failed[size] {
		return nil
	}
	if f, ok := r.faces[size]; ok {
		return f
	}
	f, err := gg.LoadFontFace(r.opts.FontPath, size)
	if err != nil {
		r.log.Warn("Cannot load font, using built-in face",
			zap.String("font", r.opts.FontPath), zap.Float64("size", size), zap.Error(err))
		r.failed[size] = true
		return nil
	}
	r.faces[size] = f
	return f
}
