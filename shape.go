package raindrop

import (
	"image"
	"math"
	"math/rand"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
)

// Shape identifies one of the supported droplet morphologies.
type Shape string

const (
	Default   Shape = "default"
	Round     Shape = "round"
	Oval      Shape = "oval"
	Teardrop  Shape = "teardrop"
	Irregular Shape = "irregular"
	Splash    Shape = "splash"
)

// AllShapes returns every supported droplet shape.
func AllShapes() []Shape {
	return []Shape{Default, Round, Oval, Teardrop, Irregular, Splash}
}

// Valid reports whether s is one of the supported droplet shapes.
func (s Shape) Valid() bool {
	switch s {
	case Default, Round, Oval, Teardrop, Irregular, Splash:
		return true
	}
	return false
}

// rasterize draws the binary occupancy of the given shape onto a 4r×5r
// canvas and derives the soft alpha map from it. The returned label mask
// holds {0,1} values, the alpha mask values in [0,255].
func rasterize(shape Shape, r int, rng *rand.Rand) (label, alpha *image.Gray) {
	dc := gg.NewContext(4*r, 5*r)
	dc.SetRGB(1, 1, 1)

	fr := float64(r)
	switch shape {
	case Round:
		fillCircle(dc, 2*fr, 2*fr, fr)
	case Oval:
		// The orientation and the aspect ratio vary per droplet.
		tilt := gg.Radians(float64(rng.Intn(180)))
		ar := uniform(rng, 1.2, 2.0)
		fillEllipse(dc, 2*fr, 2*fr, fr, float64(int(ar*fr)), tilt)
	case Teardrop:
		ratio := uniform(rng, 1.1, 1.5)
		tilt := gg.Radians(float64(randBetween(rng, -15, 15)))
		fillCircle(dc, 2*fr, 3*fr, fr)
		fillSector(dc, 2*fr, 3*fr, fr, float64(int(ratio*math.Sqrt(3)*fr)), tilt, math.Pi, 2*math.Pi)
	case Irregular:
		// A cluster of overlapping circles jittered around the center.
		n := randBetween(rng, 3, 6)
		for i := 0; i < n; i++ {
			ox := randBetween(rng, -r/3, r/3)
			oy := randBetween(rng, -r/3, r/3)
			pr := randBetween(rng, r/2, int(0.8*fr))
			fillCircle(dc, float64(2*r+ox), float64(2*r+oy), float64(pr))
		}
	case Splash:
		main := int(0.7 * fr)
		fillCircle(dc, 2*fr, 2*fr, float64(main))
		n := randBetween(rng, 2, 5)
		for i := 0; i < n; i++ {
			angle := uniform(rng, 0, 2*math.Pi)
			dist := randBetween(rng, main, int(1.5*fr))
			sx := int(2*fr + float64(dist)*math.Cos(angle))
			sy := int(2*fr + float64(dist)*math.Sin(angle))
			// Satellites falling outside the mask bounds are skipped.
			if sx < 0 || sx >= 4*r || sy < 0 || sy >= 5*r {
				continue
			}
			satr := randBetween(rng, r/4, r/2)
			fillCircle(dc, float64(sx), float64(sy), float64(satr))
		}
	default:
		// The classic teardrop: a circle capped by the lower half-turn
		// of a taller ellipse sharing the same center.
		fillCircle(dc, 2*fr, 3*fr, fr)
		fillSector(dc, 2*fr, 3*fr, fr, float64(int(1.3*math.Sqrt(3)*fr)), 0, math.Pi, 2*math.Pi)
	}

	return deriveAlpha(dc.Image(), rng)
}

func fillCircle(dc *gg.Context, cx, cy, r float64) {
	dc.DrawCircle(cx, cy, r)
	dc.Fill()
}

func fillEllipse(dc *gg.Context, cx, cy, rx, ry, tilt float64) {
	dc.Push()
	dc.RotateAbout(tilt, cx, cy)
	dc.DrawEllipse(cx, cy, rx, ry)
	dc.Fill()
	dc.Pop()
}

// fillSector fills the elliptical sector spanned by [angle1, angle2],
// rotated around the sector center by tilt. The pie edges meet at the
// center, matching a filled arc rasterization.
func fillSector(dc *gg.Context, cx, cy, rx, ry, tilt, angle1, angle2 float64) {
	dc.Push()
	dc.RotateAbout(tilt, cx, cy)
	dc.MoveTo(cx, cy)
	dc.DrawEllipticalArc(cx, cy, rx, ry, angle1, angle2)
	dc.ClosePath()
	dc.Fill()
	dc.Pop()
}

// deriveAlpha converts the rasterized occupancy into the (label, alpha)
// mask pair. The occupancy is blurred with a Gaussian kernel of random
// radius and the result normalized to [0,255]; an all-zero blur leaves the
// alpha map all-zero. The derivation is identical for every shape.
func deriveAlpha(img image.Image, rng *rand.Rand) (label, alpha *image.Gray) {
	bounds := img.Bounds()
	dx, dy := bounds.Dx(), bounds.Dy()

	occ := image.NewGray(image.Rect(0, 0, dx, dy))
	label = image.NewGray(image.Rect(0, 0, dx, dy))
	for y := 0; y < dy; y++ {
		for x := 0; x < dx; x++ {
			r, _, _, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			if r > 0 {
				occ.Pix[y*occ.Stride+x] = 0xff
				label.Pix[y*label.Stride+x] = 1
			}
		}
	}

	blurRadius := randBetween(rng, 8, 12)
	blurred := imaging.Blur(occ, float64(blurRadius))

	var max uint8
	for i := 0; i < len(blurred.Pix); i += 4 {
		if blurred.Pix[i] > max {
			max = blurred.Pix[i]
		}
	}

	alpha = image.NewGray(image.Rect(0, 0, dx, dy))
	if max == 0 {
		return label, alpha
	}
	for y := 0; y < dy; y++ {
		for x := 0; x < dx; x++ {
			v := float64(blurred.Pix[y*blurred.Stride+x*4])
			alpha.Pix[y*alpha.Stride+x] = uint8(math.Round(v / float64(max) * 255))
		}
	}
	return label, alpha
}

// randBetween draws a uniform integer from the inclusive range [lo, hi].
func randBetween(rng *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.Intn(hi-lo+1)
}

// uniform draws a uniform float from [lo, hi).
func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}
