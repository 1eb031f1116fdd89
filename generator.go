package raindrop

import (
	"errors"
	"image"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"
)

// Generator is the droplet synthesis engine facade. It owns the random
// source and the per-run droplet bookkeeping, so a Generator must not be
// shared between concurrent calls; batch drivers processing images in
// parallel should create one seeded Generator per image.
type Generator struct {
	// Log receives warp fallback reports when set. A nil logger keeps the
	// engine silent.
	Log *log.Logger

	cfg           *Config
	rng           *rand.Rand
	collisions    map[int][]int
	warpFallbacks int
}

// NewGenerator validates the configuration and returns a generator drawing
// randomness from rng. Passing a nil rng falls back to a time seeded
// source; pass an explicitly seeded one for deterministic output.
func NewGenerator(cfg *Config, rng *rand.Rand) (*Generator, error) {
	if cfg == nil {
		return nil, errors.New("a configuration is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{cfg: cfg, rng: rng}, nil
}

// GenerateDrops scatters droplets over the source image and returns the
// composited result together with the aggregate label mask. The label is
// nil unless the configuration requests it. The source image is never
// mutated.
func (g *Generator) GenerateDrops(src image.Image) (image.Image, *image.Gray, error) {
	return g.GenerateDropsWith(src, nil)
}

// GenerateDropsWith behaves like GenerateDrops but composites the provided
// droplets after the procedurally placed ones. It is the injection point
// for droplets built from caller supplied mask pairs; their keys are
// reassigned to stay unique within the run.
func (g *Generator) GenerateDropsWith(src image.Image, extra []*Droplet) (image.Image, *image.Gray, error) {
	if src == nil {
		return nil, nil, errors.New("a source image is required")
	}
	canvas := imgToNRGBA(src)
	w, h := canvas.Bounds().Dx(), canvas.Bounds().Dy()
	if w == 0 || h == 0 {
		return nil, nil, errors.New("the source image is empty")
	}

	drops := placeDrops(w, h, g.cfg, g.rng)
	for _, d := range extra {
		d.key = len(drops)
		drops = append(drops, d)
	}

	g.collisions = detectCollisions(drops)

	g.warpFallbacks = 0
	for _, d := range drops {
		if err := renderTexture(d, canvas); err != nil {
			// Recoverable: the droplet keeps the unwarped blurred patch.
			g.warpFallbacks++
			if g.Log != nil {
				g.Log.Warn("droplet lens warp fell back to the blurred patch",
					"droplet", d.Key(), "radius", d.Radius(), "err", err)
			}
		}
	}

	out, label := composite(canvas, drops, g.cfg)
	return out, label, nil
}

// Collisions returns the overlap relation of the last run, mapping each
// droplet key to the keys of the droplets it overlaps with. The relation is
// symmetric and informational only.
func (g *Generator) Collisions() map[int][]int {
	return g.collisions
}

// WarpFallbacks returns how many droplets of the last run fell back to the
// unwarped blurred patch.
func (g *Generator) WarpFallbacks() int {
	return g.warpFallbacks
}
