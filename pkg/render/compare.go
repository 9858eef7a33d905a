package render

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"pageflow/pkg/paginate"
)

// CompareResult contains the results of an image comparison
type CompareResult struct {
	Match           bool
	DifferentPixels int
	TotalPixels     int
	MaxDifference   int // max 8-bit channel difference found
}

// CompareOptions configures the image comparison
type CompareOptions struct {
	// Tolerance is the largest per channel difference (0-255) still
	// considered equal.
	Tolerance int
	// FuzzyRadius lets a pixel match any expected pixel within the radius.
	FuzzyRadius int
	// MaxDifferentPercent accepts images whose share of different pixels
	// is at most this value.
	MaxDifferentPercent float64
	// DiffImagePath, when set, receives an image with differences in red.
	DiffImagePath string
}

// DefaultCompareOptions allows small anti-aliasing differences.
func DefaultCompareOptions() CompareOptions {
	return CompareOptions{Tolerance: 2}
}

// CompareImages compares two images pixel by pixel.
func CompareImages(actual, expected image.Image, opts CompareOptions) (*CompareResult, error) {
	bounds := actual.Bounds()
	if bounds != expected.Bounds() {
		return &CompareResult{}, fmt.Errorf("image dimensions differ: actual=%v, expected=%v", bounds, expected.Bounds())
	}

	result := &CompareResult{Match: true, TotalPixels: bounds.Dx() * bounds.Dy()}
	var diffImg *image.RGBA
	if opts.DiffImagePath != "" {
		diffImg = image.NewRGBA(bounds)
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			a := actual.At(x, y)
			diff := channelDiff(a, expected.At(x, y))
			result.MaxDifference = max(result.MaxDifference, diff)

			different := diff > opts.Tolerance &&
				!(opts.FuzzyRadius > 0 && fuzzyMatch(a, expected, x, y, opts.FuzzyRadius, opts.Tolerance))
			if different {
				result.Match = false
				result.DifferentPixels++
			}
			if diffImg != nil {
				if different {
					diffImg.Set(x, y, color.RGBA{255, 0, 0, 255})
				} else {
					r, _, _, _ := a.RGBA()
					diffImg.Set(x, y, color.Gray{uint8(r >> 8)})
				}
			}
		}
	}

	if !result.Match && opts.MaxDifferentPercent > 0 {
		pct := float64(result.DifferentPixels) / float64(result.TotalPixels) * 100
		result.Match = pct <= opts.MaxDifferentPercent
	}
	if diffImg != nil && !result.Match {
		if err := gg.SavePNG(opts.DiffImagePath, diffImg); err != nil {
			return result, fmt.Errorf("failed to save diff image: %w", err)
		}
	}
	return result, nil
}

// channelDiff is the largest 8-bit channel difference between two colors.
func channelDiff(a, b color.Color) int {
	ar, ag, ab, aa := a.RGBA()
	br, bg, bb, ba := b.RGBA()
	d := func(x, y uint32) int {
		v := int(x>>8) - int(y>>8)
		if v < 0 {
			return -v
		}
		return v
	}
	return max(d(ar, br), d(ag, bg), d(ab, bb), d(aa, ba))
}

// fuzzyMatch checks whether a matches any expected pixel within radius of x, y.
func fuzzyMatch(a color.Color, expected image.Image, x, y, radius, tolerance int) bool {
	bounds := expected.Bounds()
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			p := image.Pt(x+dx, y+dy)
			if !p.In(bounds) {
				continue
			}
			if channelDiff(a, expected.At(p.X, p.Y)) <= tolerance {
				return true
			}
		}
	}
	return false
}

// PageMismatch describes a page that differs from its reference.
type PageMismatch struct {
	Page   int
	Result *CompareResult
}

// CompareDir renders every page of doc and compares it with the reference
// page-NNN.png in dir. Missing references and undecodable files are errors;
// differing pages are returned as mismatches.
func (r *Renderer) CompareDir(doc *paginate.Document, dir string, opts CompareOptions) ([]PageMismatch, error) {
	var (
		mismatches []PageMismatch
		errs       error
	)
	for _, pg := range doc.Pages {
		actual, err := r.RenderPage(doc, pg)
		if err != nil {
			return nil, err
		}
		name := fmt.Sprintf("page-%03d.png", pg.Number)
		expected, err := gg.LoadPNG(filepath.Join(dir, name))
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("reference %s: %w", name, err))
			continue
		}
		pageOpts := opts
		if opts.DiffImagePath != "" {
			pageOpts.DiffImagePath = filepath.Join(opts.DiffImagePath, "diff-"+name)
			if err := os.MkdirAll(opts.DiffImagePath, 0o755); err != nil {
				return nil, err
			}
		}
		res, err := CompareImages(actual, expected, pageOpts)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("page %d: %w", pg.Number, err))
			continue
		}
		if !res.Match {
			r.log.Warn("Page differs from reference", zap.Int("page", pg.Number),
				zap.Int("pixels", res.DifferentPixels), zap.Int("max", res.MaxDifference))
			mismatches = append(mismatches, PageMismatch{Page: pg.Number, Result: res})
		}
	}
	return mismatches, errs
}
