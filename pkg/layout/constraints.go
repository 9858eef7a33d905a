package layout

import (
	"fmt"
	"math"

	"go.uber.org/multierr"
)

// Unbounded is used for an axis without an upper limit.
var Unbounded = math.Inf(1)

// Constraints packages the space available for laying out a subtree.
// IMMUTABLE - create modified copies using the With/For helpers instead of
// mutation. Every copy produced by a helper is valid if the original is.
type Constraints struct {
	InlineMin float64
	InlineMax float64
	BlockMin  float64
	BlockMax  float64

	// RemainingBlock is what is left of the current page's block size.
	RemainingBlock float64
	// AllowBreak permits the resulting fragment to be split across pages.
	AllowBreak bool
}

// NewConstraints validates and creates constraints. All violations are
// reported together; nothing is clamped.
func NewConstraints(inlineMin, inlineMax, blockMin, blockMax, remainingBlock float64, allowBreak bool) (Constraints, error) {
	c := Constraints{
		InlineMin:      inlineMin,
		InlineMax:      inlineMax,
		BlockMin:       blockMin,
		BlockMax:       blockMax,
		RemainingBlock: remainingBlock,
		AllowBreak:     allowBreak,
	}
	if err := c.Validate(); err != nil {
		return Constraints{}, err
	}
	return c, nil
}

// ForPage returns constraints for laying out a document whose content is
// width wide on pages with pageBlock usable block size.
func ForPage(width, pageBlock float64) (Constraints, error) {
	return NewConstraints(0, width, 0, Unbounded, pageBlock, true)
}

// Validate checks that every magnitude is a non-negative number and that
// min <= max on both axes.
func (c Constraints) Validate() error {
	var err error
	check := func(name string, v float64) {
		if math.IsNaN(v) {
			err = multierr.Append(err, fmt.Errorf("%w: %s is NaN", ErrInvalidConstraints, name))
		} else if v < 0 {
			err = multierr.Append(err, fmt.Errorf("%w: %s is negative (%v)", ErrInvalidConstraints, name, v))
		}
	}
	check("inline min", c.InlineMin)
	check("inline max", c.InlineMax)
	check("block min", c.BlockMin)
	check("block max", c.BlockMax)
	check("remaining block", c.RemainingBlock)
	if math.IsInf(c.InlineMin, 1) {
		err = multierr.Append(err, fmt.Errorf("%w: inline min is infinite", ErrInvalidConstraints))
	}
	if math.IsInf(c.BlockMin, 1) {
		err = multierr.Append(err, fmt.Errorf("%w: block min is infinite", ErrInvalidConstraints))
	}
	if c.InlineMin > c.InlineMax {
		err = multierr.Append(err, fmt.Errorf("%w: inline min %v > inline max %v", ErrInvalidConstraints, c.InlineMin, c.InlineMax))
	}
	if c.BlockMin > c.BlockMax {
		err = multierr.Append(err, fmt.Errorf("%w: block min %v > block max %v", ErrInvalidConstraints, c.BlockMin, c.BlockMax))
	}
	return err
}

// InlineBounded reports whether the inline axis has a finite maximum.
func (c Constraints) InlineBounded() bool {
	return !math.IsInf(c.InlineMax, 1)
}

// ForBlockChild returns constraints for a block-level child whose
// containing block is contentInline wide, after consumed block size of the
// parent has been used.
func (c Constraints) ForBlockChild(contentInline, consumed float64) Constraints {
	return Constraints{
		InlineMin:      0,
		InlineMax:      math.Max(0, contentInline),
		BlockMin:       0,
		BlockMax:       c.BlockMax,
		RemainingBlock: math.Max(0, c.RemainingBlock-consumed),
		AllowBreak:     c.AllowBreak,
	}
}

// ForInlineChild returns constraints for inline content laid out in lines
// contentInline wide. The block axis is left unbounded.
func (c Constraints) ForInlineChild(contentInline float64) Constraints {
	return Constraints{
		InlineMin:      0,
		InlineMax:      math.Max(0, contentInline),
		BlockMin:       0,
		BlockMax:       Unbounded,
		RemainingBlock: c.RemainingBlock,
		AllowBreak:     c.AllowBreak,
	}
}

// WithInlineMax returns a NEW Constraints with a different inline maximum.
func (c Constraints) WithInlineMax(max float64) Constraints {
	out := c
	out.InlineMax = math.Max(0, max)
	out.InlineMin = math.Min(out.InlineMin, out.InlineMax)
	return out
}

// WithAllowBreak returns a NEW Constraints with a different break permission.
func (c Constraints) WithAllowBreak(allow bool) Constraints {
	out := c
	out.AllowBreak = allow
	return out
}

func (c Constraints) String() string {
	return fmt.Sprintf("inline[%v..%v] block[%v..%v] remaining=%v break=%t",
		c.InlineMin, c.InlineMax, c.BlockMin, c.BlockMax, c.RemainingBlock, c.AllowBreak)
}
