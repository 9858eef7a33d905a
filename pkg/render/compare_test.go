package render

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestCompareImages(t *testing.T) {
	white := color.RGBA{255, 255, 255, 255}
	base := solid(10, 10, white)

	shifted := solid(10, 10, white)
	shifted.Set(3, 3, color.RGBA{0, 0, 0, 255})
	base2 := solid(10, 10, white)
	base2.Set(4, 3, color.RGBA{0, 0, 0, 255})

	slight := solid(10, 10, color.RGBA{253, 255, 255, 255})

	tests := []struct {
		name      string
		actual    image.Image
		expected  image.Image
		opts      CompareOptions
		match     bool
		different int
	}{
		{"identical", base, solid(10, 10, white), CompareOptions{}, true, 0},
		{"within tolerance", slight, base, DefaultCompareOptions(), true, 0},
		{"beyond tolerance", slight, base, CompareOptions{}, false, 100},
		{"one pixel", shifted, base, CompareOptions{}, false, 1},
		{"one pixel accepted by percent", shifted, base, CompareOptions{MaxDifferentPercent: 1}, true, 1},
		{"shift without fuzz", shifted, base2, CompareOptions{}, false, 2},
		{"shift with fuzz", shifted, base2, CompareOptions{FuzzyRadius: 1}, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := CompareImages(tt.actual, tt.expected, tt.opts)
			if err != nil {
				t.Fatalf("CompareImages failed: %v", err)
			}
			if res.Match != tt.match || res.DifferentPixels != tt.different {
				t.Errorf("got match=%t different=%d, want match=%t different=%d",
					res.Match, res.DifferentPixels, tt.match, tt.different)
			}
			if res.TotalPixels != 100 {
				t.Errorf("TotalPixels = %d, want 100", res.TotalPixels)
			}
		})
	}

	if _, err := CompareImages(base, solid(5, 5, white), CompareOptions{}); err == nil {
		t.Error("Expected an error for different dimensions")
	}
}

func TestCompareImages_DiffImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diff.png")
	a := solid(4, 4, color.White)
	b := solid(4, 4, color.Black)
	res, err := CompareImages(a, b, CompareOptions{DiffImagePath: path})
	if err != nil {
		t.Fatalf("CompareImages failed: %v", err)
	}
	if res.Match || res.MaxDifference != 255 {
		t.Errorf("Unexpected result %+v", res)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("Expected a diff image: %v", err)
	}
}

func TestCompareDir(t *testing.T) {
	doc := sampleDocument(t)
	dir := t.TempDir()
	if _, err := New(nil, Options{}, nil).SavePNG(doc, dir); err != nil {
		t.Fatalf("SavePNG failed: %v", err)
	}

	mismatches, err := New(nil, Options{}, nil).CompareDir(doc, dir, CompareOptions{})
	if err != nil {
		t.Fatalf("CompareDir failed: %v", err)
	}
	if len(mismatches) != 0 {
		t.Errorf("Expected identical renders, got %d mismatches", len(mismatches))
	}

	diffs := filepath.Join(t.TempDir(), "diffs")
	mismatches, err = New(nil, Options{Outline: true}, nil).CompareDir(doc, dir, CompareOptions{DiffImagePath: diffs})
	if err != nil {
		t.Fatalf("CompareDir failed: %v", err)
	}
	if len(mismatches) != len(doc.Pages) {
		t.Errorf("Expected every outlined page to differ, got %d of %d", len(mismatches), len(doc.Pages))
	}
	if _, err := os.Stat(filepath.Join(diffs, "diff-page-001.png")); err != nil {
		t.Errorf("Expected a diff image: %v", err)
	}

	if _, err := New(nil, Options{}, nil).CompareDir(doc, t.TempDir(), CompareOptions{}); err == nil {
		t.Error("Expected errors for missing references")
	}
}
