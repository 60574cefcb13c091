package scene

import (
	"fmt"
	"math"
)

// Vec2 is a 2D vector in canvas pixels (position) or a scale factor pair.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// MaxCrop is the largest crop stored for one edge.
const MaxCrop = math.MaxInt32

// Crop trims pixels from each edge of the source before scaling.
// All fields are non-negative.
type Crop struct {
	Top    int `json:"top"`
	Bottom int `json:"bottom"`
	Left   int `json:"left"`
	Right  int `json:"right"`
}

// Transform positions an item's source on the canvas.
type Transform struct {
	Position Vec2 `json:"position"`
	Scale    Vec2 `json:"scale"`

	// Rotation in degrees, always in [0, 360).
	Rotation float64 `json:"rotation"`

	Crop Crop `json:"crop"`
}

// DefaultTransform returns the transform of a newly added item: origin
// position, unit scale, no rotation and no crop.
func DefaultTransform() Transform {
	return Transform{Scale: Vec2{X: 1, Y: 1}}
}

// TransformPatch is a partial transform update. Nil fields are left
// unchanged.
type TransformPatch struct {
	Position *Vec2
	Scale    *Vec2
	Rotation *float64
	Crop     *CropPatch
}

// CropPatch is a partial crop update. Values are rounded to the nearest
// integer and clamped to [0, MaxCrop] before they are stored.
type CropPatch struct {
	Top    *float64
	Bottom *float64
	Left   *float64
	Right  *float64
}

// Float64 returns a pointer to v, for building patches.
func Float64(v float64) *float64 {
	return &v
}

// IsEmpty reports whether the patch changes nothing.
func (p TransformPatch) IsEmpty() bool {
	if p.Position != nil || p.Scale != nil || p.Rotation != nil {
		return false
	}
	return p.Crop == nil || (p.Crop.Top == nil && p.Crop.Bottom == nil && p.Crop.Left == nil && p.Crop.Right == nil)
}

// Validate rejects non-finite values.
func (p TransformPatch) Validate() error {
	if p.Position != nil && !finiteVec(*p.Position) {
		return fmt.Errorf("%w: position must be finite", ErrInvalidTransform)
	}
	if p.Scale != nil && !finiteVec(*p.Scale) {
		return fmt.Errorf("%w: scale must be finite", ErrInvalidTransform)
	}
	if p.Rotation != nil && !finite(*p.Rotation) {
		return fmt.Errorf("%w: rotation must be finite", ErrInvalidTransform)
	}
	if p.Crop != nil {
		for _, v := range []*float64{p.Crop.Top, p.Crop.Bottom, p.Crop.Left, p.Crop.Right} {
			if v != nil && !finite(*v) {
				return fmt.Errorf("%w: crop must be finite", ErrInvalidTransform)
			}
		}
	}
	return nil
}

// Apply returns t with the patch merged in and normalised.
func (t Transform) Apply(p TransformPatch) Transform {
	out := t
	if p.Position != nil {
		out.Position = *p.Position
	}
	if p.Scale != nil {
		out.Scale = *p.Scale
	}
	if p.Rotation != nil {
		out.Rotation = *p.Rotation
	}
	if c := p.Crop; c != nil {
		if c.Top != nil {
			out.Crop.Top = normalizeCrop(*c.Top)
		}
		if c.Bottom != nil {
			out.Crop.Bottom = normalizeCrop(*c.Bottom)
		}
		if c.Left != nil {
			out.Crop.Left = normalizeCrop(*c.Left)
		}
		if c.Right != nil {
			out.Crop.Right = normalizeCrop(*c.Right)
		}
	}
	return out.Normalize()
}

// Normalize folds rotation into [0, 360) and clamps crop to zero.
func (t Transform) Normalize() Transform {
	t.Rotation = normalizeRotation(t.Rotation)
	t.Crop.Top = max(t.Crop.Top, 0)
	t.Crop.Bottom = max(t.Crop.Bottom, 0)
	t.Crop.Left = max(t.Crop.Left, 0)
	t.Crop.Right = max(t.Crop.Right, 0)
	return t
}

// validate rejects a full transform with non-finite values.
func (t Transform) validate() error {
	if !finiteVec(t.Position) || !finiteVec(t.Scale) || !finite(t.Rotation) {
		return fmt.Errorf("%w: values must be finite", ErrInvalidTransform)
	}
	return nil
}

// normalizeRotation maps any angle to [0, 360): 450 → 90, -10 → 350.
func normalizeRotation(deg float64) float64 {
	r := math.Mod(deg, 360)
	if r < 0 {
		r += 360
	}
	// -1e-15 + 360 rounds to 360 in float64; Mod(-360, 360) is -0.
	if r >= 360 || r == 0 {
		r = 0
	}
	return r
}

// normalizeCrop rounds half away from zero, then clamps to [0, MaxCrop].
func normalizeCrop(v float64) int {
	return int(math.Min(math.Max(math.Round(v), 0), MaxCrop))
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func finiteVec(v Vec2) bool {
	return finite(v.X) && finite(v.Y)
}

// Rect is an axis-aligned rectangle in canvas pixels.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Union returns the smallest rectangle containing both r and o.
func (r Rect) Union(o Rect) Rect {
	x := math.Min(r.X, o.X)
	y := math.Min(r.Y, o.Y)
	return Rect{
		X:      x,
		Y:      y,
		Width:  math.Max(r.Right(), o.Right()) - x,
		Height: math.Max(r.Bottom(), o.Bottom()) - y,
	}
}

// BoundingRect returns the axis-aligned box of a source of the given native
// size after crop, scale and rotation about the item position.
func (t Transform) BoundingRect(width, height float64) Rect {
	w := math.Max(width-float64(t.Crop.Left+t.Crop.Right), 0) * t.Scale.X
	h := math.Max(height-float64(t.Crop.Top+t.Crop.Bottom), 0) * t.Scale.Y

	sin, cos := math.Sincos(t.Rotation * math.Pi / 180)
	corners := [4]Vec2{{0, 0}, {w, 0}, {0, h}, {w, h}}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range corners {
		x := c.X*cos - c.Y*sin
		y := c.X*sin + c.Y*cos
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}
	return Rect{
		X:      t.Position.X + minX,
		Y:      t.Position.Y + minY,
		Width:  maxX - minX,
		Height: maxY - minY,
	}
}
