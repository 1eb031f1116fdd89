package raindrop

import (
	"image"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDroplet_FromMasks(t *testing.T) {
	assert := assert.New(t)

	// A 200×160 mask pair derives radius min(160/4, 200/4) = 40.
	alpha := image.NewGray(image.Rect(0, 0, 160, 200))
	label := image.NewGray(image.Rect(0, 0, 160, 200))

	d, err := NewDropletFromMasks(3, image.Pt(100, 150), alpha, label)
	assert.NoError(err)
	assert.Equal(40, d.Radius())
	assert.Equal(3, d.Key())
	assert.True(d.External())
	assert.Equal(image.Pt(100, 150), d.Center())

	// The bounding box spans the mask dimensions, anchored at (2r, 3r).
	assert.Equal(image.Rect(100-80, 150-120, 100-80+160, 150-120+200), d.Bounds())
}

func TestDroplet_FromMasksErrors(t *testing.T) {
	assert := assert.New(t)

	alpha := image.NewGray(image.Rect(0, 0, 160, 200))
	label := image.NewGray(image.Rect(0, 0, 100, 200))

	_, err := NewDropletFromMasks(0, image.Point{}, alpha, label)
	assert.Error(err)

	_, err = NewDropletFromMasks(0, image.Point{}, nil, label)
	assert.Error(err)

	tiny := image.NewGray(image.Rect(0, 0, 2, 2))
	_, err = NewDropletFromMasks(0, image.Point{}, tiny, tiny)
	assert.Error(err)
}

func TestDroplet_Procedural(t *testing.T) {
	assert := assert.New(t)

	rng := rand.New(rand.NewSource(5))
	d := newDroplet(0, Round, image.Pt(100, 100), 20, rng)

	assert.Equal(Round, d.Shape())
	assert.False(d.External())
	assert.False(d.Collides())
	assert.Nil(d.Texture())

	// Masks always share identical dimensions.
	assert.Equal(d.LabelMask().Bounds(), d.AlphaMask().Bounds())
	assert.Equal(image.Rect(60, 40, 140, 140), d.Bounds())
}
