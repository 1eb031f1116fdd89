package raindrop

import (
	"image"
	"image/color"
	"image/draw"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func whiteCanvas(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{color.White}, image.Point{}, draw.Src)
	return img
}

func TestCompositor_ZeroDropsRoundTrip(t *testing.T) {
	assert := assert.New(t)

	src := testCanvas(64, 48)
	cfg := DefaultConfig()
	cfg.ReturnLabel = true

	out, label := composite(src, nil, cfg)

	// Compositing zero droplets returns the unmodified source bit-for-bit
	// and an all-zero label.
	assert.Equal(src.Pix, out.Pix)
	assert.NotNil(label)
	for _, v := range label.Pix {
		assert.EqualValues(0, v)
	}
}

func TestCompositor_LabelDisabled(t *testing.T) {
	src := testCanvas(64, 48)
	cfg := DefaultConfig()
	cfg.ReturnLabel = false

	_, label := composite(src, nil, cfg)
	assert.Nil(t, label)
}

func TestCompositor_LabelValuesAreBinary(t *testing.T) {
	assert := assert.New(t)

	src := whiteCanvas(256, 256)
	cfg := DefaultConfig()
	cfg.ReturnLabel = true

	d := newDroplet(0, Round, image.Pt(128, 128), 20, rand.New(rand.NewSource(1)))
	assert.NoError(renderTexture(d, src))

	_, label := composite(src, []*Droplet{d}, cfg)
	var covered, invalid int
	for _, v := range label.Pix {
		switch v {
		case 0:
		case 1:
			covered++
		default:
			invalid++
		}
	}
	assert.Zero(invalid, "label holds values outside {0,1}")
	assert.Greater(covered, 0)
}

func TestCompositor_LabelConfinedToDropletBox(t *testing.T) {
	assert := assert.New(t)

	src := whiteCanvas(256, 256)
	cfg := DefaultConfig()
	cfg.ReturnLabel = true

	d := newDroplet(0, Round, image.Pt(128, 128), 20, rand.New(rand.NewSource(2)))
	assert.NoError(renderTexture(d, src))

	_, label := composite(src, []*Droplet{d}, cfg)
	box := d.Bounds()
	for y := 0; y < 256; y++ {
		for x := 0; x < 256; x++ {
			if label.Pix[y*label.Stride+x] == 1 {
				assert.True(image.Pt(x, y).In(box), "label pixel (%d,%d) outside droplet box %v", x, y, box)
			}
		}
	}

	// Exactly one connected component of covered pixels.
	assert.Equal(1, countComponents(label))
}

func TestCompositor_EdgeDarkRatioZeroIsNoOp(t *testing.T) {
	assert := assert.New(t)

	src := whiteCanvas(256, 256)
	d := newDroplet(0, Round, image.Pt(128, 128), 20, rand.New(rand.NewSource(3)))
	assert.NoError(renderTexture(d, src))

	plain := DefaultConfig()
	plain.EdgeDarkRatio = 0
	dark := DefaultConfig()
	dark.EdgeDarkRatio = 0.5

	outPlain, _ := composite(src, []*Droplet{d}, plain)
	outDark, _ := composite(src, []*Droplet{d}, dark)

	// With a zero ratio no boundary band is darker than the plain blend;
	// with a positive ratio the boundary darkening lowers total brightness.
	assert.Greater(brightness(outPlain), brightness(outDark))
}

func TestCompositor_PlacementOrderWins(t *testing.T) {
	assert := assert.New(t)

	src := testCanvas(256, 256)
	cfg := DefaultConfig()
	cfg.EdgeDarkRatio = 0

	// Two overlapping droplets: the later one paints over the earlier.
	rng := rand.New(rand.NewSource(4))
	a := newDroplet(0, Round, image.Pt(120, 128), 20, rng)
	b := newDroplet(1, Round, image.Pt(136, 128), 20, rng)
	assert.NoError(renderTexture(a, src))
	assert.NoError(renderTexture(b, src))

	ab, _ := composite(src, []*Droplet{a, b}, cfg)
	ba, _ := composite(src, []*Droplet{b, a}, cfg)

	assert.NotEqual(ab.Pix, ba.Pix)
}

// brightness sums the RGB channels over the whole image.
func brightness(img *image.NRGBA) int {
	var sum int
	for i := 0; i < len(img.Pix); i += 4 {
		sum += int(img.Pix[i]) + int(img.Pix[i+1]) + int(img.Pix[i+2])
	}
	return sum
}

// countComponents counts the 4-connected components of nonzero label pixels.
func countComponents(label *image.Gray) int {
	w, h := label.Bounds().Dx(), label.Bounds().Dy()
	seen := make([]bool, w*h)

	var components int
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if label.Pix[y*label.Stride+x] == 0 || seen[y*w+x] {
				continue
			}
			components++
			stack := []image.Point{{X: x, Y: y}}
			seen[y*w+x] = true
			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				for _, n := range []image.Point{{p.X - 1, p.Y}, {p.X + 1, p.Y}, {p.X, p.Y - 1}, {p.X, p.Y + 1}} {
					if n.X < 0 || n.X >= w || n.Y < 0 || n.Y >= h {
						continue
					}
					if label.Pix[n.Y*label.Stride+n.X] == 0 || seen[n.Y*w+n.X] {
						continue
					}
					seen[n.Y*w+n.X] = true
					stack = append(stack, n)
				}
			}
		}
	}
	return components
}
