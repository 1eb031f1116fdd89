package raindrop

import (
	"image"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

const testRadius = 20

func TestShape_MaskDimensions(t *testing.T) {
	assert := assert.New(t)

	for _, shape := range AllShapes() {
		rng := rand.New(rand.NewSource(1))
		label, alpha := rasterize(shape, testRadius, rng)

		assert.Equal(4*testRadius, label.Bounds().Dx(), "shape %s", shape)
		assert.Equal(5*testRadius, label.Bounds().Dy(), "shape %s", shape)
		assert.Equal(label.Bounds().Size(), alpha.Bounds().Size(), "shape %s", shape)
	}
}

func TestShape_LabelIsBinary(t *testing.T) {
	assert := assert.New(t)

	for _, shape := range AllShapes() {
		rng := rand.New(rand.NewSource(7))
		label, _ := rasterize(shape, testRadius, rng)

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
		assert.Zero(invalid, "shape %s: label holds values outside {0,1}", shape)
		assert.Greater(covered, 0, "shape %s produced an empty mask", shape)
	}
}

func TestShape_AlphaFollowsCoverage(t *testing.T) {
	assert := assert.New(t)

	rng := rand.New(rand.NewSource(3))
	label, alpha := rasterize(Round, testRadius, rng)

	// The alpha peak should be inside the circle, which is centered two
	// radii from the left and top edges of the mask.
	cx, cy := 2*testRadius, 2*testRadius
	assert.EqualValues(1, label.Pix[cy*label.Stride+cx])
	assert.Greater(alpha.Pix[cy*alpha.Stride+cx], uint8(128))

	// Mask corners stay uncovered and nearly transparent.
	assert.EqualValues(0, label.Pix[0])
	assert.Less(alpha.Pix[0], uint8(128))
}

func TestShape_Determinism(t *testing.T) {
	assert := assert.New(t)

	for _, shape := range AllShapes() {
		l1, a1 := rasterize(shape, testRadius, rand.New(rand.NewSource(11)))
		l2, a2 := rasterize(shape, testRadius, rand.New(rand.NewSource(11)))

		assert.Equal(l1.Pix, l2.Pix, "shape %s labels diverged", shape)
		assert.Equal(a1.Pix, a2.Pix, "shape %s alphas diverged", shape)
	}
}

func TestShape_DegenerateAlphaStaysZero(t *testing.T) {
	assert := assert.New(t)

	// An empty occupancy blurs to all-zero; the alpha map must not be
	// renormalized into garbage, it stays all-zero.
	blank := image.NewRGBA(image.Rect(0, 0, 40, 50))
	label, alpha := deriveAlpha(blank, rand.New(rand.NewSource(1)))

	for _, v := range label.Pix {
		assert.EqualValues(0, v)
	}
	for _, v := range alpha.Pix {
		assert.EqualValues(0, v)
	}
}

func TestShape_Valid(t *testing.T) {
	assert := assert.New(t)

	for _, shape := range AllShapes() {
		assert.True(shape.Valid())
	}
	assert.False(Shape("hexagon").Valid())
	assert.False(Shape("").Valid())
}
