package layout

import (
	"errors"
	"math"
	"testing"

	"go.uber.org/multierr"
)

func TestConstraints_New(t *testing.T) {
	c, err := NewConstraints(0, 800, 0, Unbounded, 600, true)
	if err != nil {
		t.Fatalf("Expected valid constraints, got %v", err)
	}
	if c.InlineMax != 800 || c.RemainingBlock != 600 || !c.AllowBreak {
		t.Errorf("Unexpected constraints %v", c)
	}
	if !c.InlineBounded() {
		t.Error("Expected finite inline max to be bounded")
	}
}

func TestConstraints_Invalid(t *testing.T) {
	tests := []struct {
		name       string
		args       [5]float64
		violations int
	}{
		{"inline min above max", [5]float64{10, 5, 0, 10, 0}, 1},
		{"block min above max", [5]float64{0, 10, 20, 10, 0}, 1},
		{"negative inline max", [5]float64{0, -1, 0, 10, 0}, 2},
		{"NaN remaining", [5]float64{0, 10, 0, 10, math.NaN()}, 1},
		{"infinite minimum", [5]float64{Unbounded, Unbounded, 0, 10, 0}, 1},
		{"everything inverted", [5]float64{10, 5, 20, 10, -1}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := tt.args
			_, err := NewConstraints(a[0], a[1], a[2], a[3], a[4], false)
			if !errors.Is(err, ErrInvalidConstraints) {
				t.Fatalf("Expected ErrInvalidConstraints, got %v", err)
			}
			if got := len(multierr.Errors(err)); got != tt.violations {
				t.Errorf("Expected %d violations, got %d: %v", tt.violations, got, err)
			}
		})
	}
}

func TestConstraints_InfiniteMaxAllowed(t *testing.T) {
	if _, err := NewConstraints(0, Unbounded, 0, Unbounded, Unbounded, false); err != nil {
		t.Errorf("Expected unbounded maxima to be valid, got %v", err)
	}
}

func TestConstraints_HelpersKeepValidity(t *testing.T) {
	c, err := NewConstraints(50, 100, 10, 200, 300, true)
	if err != nil {
		t.Fatal(err)
	}

	derived := []Constraints{
		c.ForBlockChild(80, 20),
		c.ForBlockChild(-5, 500),
		c.ForInlineChild(70),
		c.WithInlineMax(20),
		c.WithInlineMax(-3),
		c.WithAllowBreak(false),
	}
	for i, d := range derived {
		if err := d.Validate(); err != nil {
			t.Errorf("derived %d (%v) invalid: %v", i, d, err)
		}
	}

	child := c.ForBlockChild(80, 20)
	if child.RemainingBlock != 280 || child.InlineMax != 80 || !child.AllowBreak {
		t.Errorf("Unexpected block child constraints %v", child)
	}
	if c.ForBlockChild(80, 500).RemainingBlock != 0 {
		t.Error("Expected remaining block to clamp at zero")
	}
}

func TestConstraints_Immutable(t *testing.T) {
	c, _ := NewConstraints(0, 100, 0, 100, 100, true)
	_ = c.WithInlineMax(10)
	_ = c.WithAllowBreak(false)

	if c.InlineMax != 100 || !c.AllowBreak {
		t.Errorf("Original constraints changed: %v", c)
	}
}
