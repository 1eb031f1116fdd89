package raindrop

import (
	"image"
	"math/rand"

	"github.com/droplens/raindrop/utils"
)

// placeDrops scatters a random number of droplets over a w×h canvas. Every
// droplet's bounding box is guaranteed to stay within the canvas: a radius
// too large for the canvas is clamped down, and a droplet that cannot fit
// even at radius 1 is skipped.
func placeDrops(w, h int, cfg *Config, rng *rand.Rand) []*Droplet {
	count := randBetween(rng, cfg.MinDrops, cfg.MaxDrops)
	drops := make([]*Droplet, 0, count)

	// The largest radius whose 4r×5r box still fits the canvas.
	fit := utils.Min(w/4, h/5)

	for i := 0; i < count; i++ {
		radius := randBetween(rng, cfg.MinRadius, cfg.MaxRadius)
		if radius > fit {
			radius = fit
		}
		if radius < 1 {
			continue
		}

		// The anchor sits at (2r, 3r) inside the box, so the box top-left
		// ranges over [0, w-4r]×[0, h-5r].
		cx := 2*radius + rng.Intn(w-4*radius+1)
		cy := 3*radius + rng.Intn(h-5*radius+1)

		shape := Default
		if cfg.ShapeVariety {
			shape = cfg.AllowedShapes[rng.Intn(len(cfg.AllowedShapes))]
		}
		drops = append(drops, newDroplet(len(drops), shape, image.Pt(cx, cy), radius, rng))
	}
	return drops
}

// detectCollisions records which droplets overlap on the canvas. Two
// droplets collide when their nonzero label regions, projected onto canvas
// coordinates, share at least one pixel. The returned relation maps each
// droplet key to the keys of its partners and is always symmetric.
// Collisions are informational only: they never alter placement or the
// compositing order.
func detectCollisions(drops []*Droplet) map[int][]int {
	partners := make(map[int][]int, len(drops))

	for i := 0; i < len(drops); i++ {
		for j := i + 1; j < len(drops); j++ {
			if !overlap(drops[i], drops[j]) {
				continue
			}
			a, b := drops[i], drops[j]
			a.collides = true
			b.collides = true
			partners[a.key] = append(partners[a.key], b.key)
			partners[b.key] = append(partners[b.key], a.key)
		}
	}
	return partners
}

// overlap reports whether the label regions of two droplets intersect.
func overlap(a, b *Droplet) bool {
	sect := a.Bounds().Intersect(b.Bounds())
	if sect.Empty() {
		return false
	}
	la, lb := a.LabelMask(), b.LabelMask()
	aMin, bMin := a.Bounds().Min, b.Bounds().Min

	for y := sect.Min.Y; y < sect.Max.Y; y++ {
		for x := sect.Min.X; x < sect.Max.X; x++ {
			pa := la.Pix[(y-aMin.Y)*la.Stride+(x-aMin.X)]
			pb := lb.Pix[(y-bMin.Y)*lb.Stride+(x-bMin.X)]
			if pa > 0 && pb > 0 {
				return true
			}
		}
	}
	return false
}
