package raindrop

import (
	"errors"
	"image"
	"math/rand"

	"github.com/droplens/raindrop/utils"
)

// Droplet is one simulated raindrop instance. Its label and alpha masks are
// fixed at construction time; the refracted background texture is assigned
// exactly once before compositing.
type Droplet struct {
	key      int
	shape    Shape
	center   image.Point
	radius   int
	label    *image.Gray
	alpha    *image.Gray
	texture  *image.NRGBA
	collides bool
	external bool
}

// newDroplet rasterizes a procedural droplet of the given shape and radius,
// anchored at center in canvas coordinates.
func newDroplet(key int, shape Shape, center image.Point, radius int, rng *rand.Rand) *Droplet {
	d := &Droplet{
		key:    key,
		shape:  shape,
		center: center,
		radius: radius,
	}
	d.label, d.alpha = rasterize(shape, radius, rng)
	return d
}

// NewDropletFromMasks constructs a droplet from a caller supplied mask pair
// instead of rasterizing one. Both masks must share identical dimensions;
// the droplet radius is derived from them as min(width/4, height/4).
func NewDropletFromMasks(key int, center image.Point, alpha, label *image.Gray) (*Droplet, error) {
	if alpha == nil || label == nil {
		return nil, errors.New("both an alpha and a label mask are required")
	}
	if !alpha.Bounds().Size().Eq(label.Bounds().Size()) {
		return nil, errors.New("the alpha and label masks must share identical dimensions")
	}
	w, h := label.Bounds().Dx(), label.Bounds().Dy()
	radius := utils.Min(w/4, h/4)
	if radius < 1 {
		return nil, errors.New("the supplied masks are too small to derive a droplet radius")
	}
	return &Droplet{
		key:      key,
		shape:    Default,
		center:   center,
		radius:   radius,
		label:    label,
		alpha:    alpha,
		external: true,
	}, nil
}

// Key returns the droplet identity, unique within a generation run.
func (d *Droplet) Key() int { return d.key }

// Shape returns the droplet morphology.
func (d *Droplet) Shape() Shape { return d.shape }

// Center returns the droplet anchor point in canvas coordinates.
func (d *Droplet) Center() image.Point { return d.center }

// Radius returns the droplet radius in pixels.
func (d *Droplet) Radius() int { return d.radius }

// LabelMask returns the binary coverage mask of the droplet.
func (d *Droplet) LabelMask() *image.Gray { return d.label }

// AlphaMask returns the blend weight mask of the droplet.
func (d *Droplet) AlphaMask() *image.Gray { return d.alpha }

// Texture returns the refracted background tile, or nil before the warp step.
func (d *Droplet) Texture() *image.NRGBA { return d.texture }

// Collides reports whether the droplet overlaps any other droplet.
func (d *Droplet) Collides() bool { return d.collides }

// External reports whether the droplet was built from a caller supplied
// mask pair rather than rasterized procedurally.
func (d *Droplet) External() bool { return d.external }

// Bounds returns the droplet's bounding box in canvas coordinates. The
// anchor sits at (2r, 3r) within the box, which spans the mask dimensions.
func (d *Droplet) Bounds() image.Rectangle {
	w, h := d.label.Bounds().Dx(), d.label.Bounds().Dy()
	min := image.Pt(d.center.X-2*d.radius, d.center.Y-3*d.radius)
	return image.Rectangle{Min: min, Max: min.Add(image.Pt(w, h))}
}

// setTexture assigns the warped background tile. It is called exactly once
// per droplet during a generation run.
func (d *Droplet) setTexture(tile *image.NRGBA) {
	d.texture = tile
}
