package raindrop

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"gonum.org/v1/gonum/mat"
)

// textureBlurSigma is the fixed blur applied to the background patch before
// warping, modelling the out-of-focus lens seen through a droplet.
const textureBlurSigma = 5

// renderTexture builds the refracted background tile of a droplet: the
// canvas region under its bounding box is blurred, pushed through a radial
// lens warp proportional to the droplet size, recombined with the alpha
// mask and flipped vertically to match the paste convention.
// A failed warp is recoverable: the unwarped blurred patch is used instead,
// and the returned error only reports the fallback.
func renderTexture(d *Droplet, canvas *image.NRGBA) error {
	bg := imaging.Crop(canvas, d.Bounds())
	if bg.Bounds().Empty() {
		// The droplet box misses the canvas entirely; refract over a
		// black patch so the compositor still has a tile to discard.
		bg = image.NewNRGBA(d.AlphaMask().Bounds())
	}
	fg := imaging.Blur(bg, textureBlurSigma)

	var warpErr error
	warped, err := lensWarp(fg, d.Radius())
	if err != nil {
		warped = fg
		warpErr = fmt.Errorf("lens warp failed for droplet %d: %w", d.Key(), err)
	}

	tw := d.AlphaMask().Bounds().Dx()
	th := d.AlphaMask().Bounds().Dy()
	if warped.Bounds().Dx() != tw || warped.Bounds().Dy() != th {
		warped = imaging.Resize(warped, tw, th, imaging.Lanczos)
	}

	tile := image.NewNRGBA(image.Rect(0, 0, tw, th))
	alpha := d.AlphaMask()
	for y := 0; y < th; y++ {
		for x := 0; x < tw; x++ {
			si := y*warped.Stride + x*4
			di := y*tile.Stride + x*4
			tile.Pix[di+0] = warped.Pix[si+0]
			tile.Pix[di+1] = warped.Pix[si+1]
			tile.Pix[di+2] = warped.Pix[si+2]
			tile.Pix[di+3] = alpha.Pix[y*alpha.Stride+x]
		}
	}

	d.setTexture(imaging.FlipV(tile))
	return warpErr
}

// lensWarp applies an inverse fisheye distortion to the patch, producing a
// convex-lens bulge proportional to the droplet radius. The pinhole focal
// terms are 30r horizontally and 20r vertically with the principal point at
// the patch center and zero distortion coefficients; the undistort matrix
// scales both focals by 2·r^(1/3).
func lensWarp(src *image.NRGBA, radius int) (*image.NRGBA, error) {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	if w == 0 || h == 0 {
		return nil, fmt.Errorf("empty source patch")
	}

	var (
		fx = 30 * float64(radius)
		fy = 20 * float64(radius)
		cx = float64(w) / 2
		cy = float64(h) / 2
	)
	scale := 2 * math.Cbrt(float64(radius))
	knew := mat.NewDense(3, 3, []float64{
		fx * scale, 0, cx,
		0, fy * scale, cy,
		0, 0, 1,
	})

	var inv mat.Dense
	if err := inv.Inverse(knew); err != nil {
		return nil, fmt.Errorf("singular camera matrix: %w", err)
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	for v := 0; v < h; v++ {
		for u := 0; u < w; u++ {
			// Normalize through the inverse of the undistort matrix,
			// then project back through the fisheye model.
			x := inv.At(0, 0)*float64(u) + inv.At(0, 1)*float64(v) + inv.At(0, 2)
			y := inv.At(1, 0)*float64(u) + inv.At(1, 1)*float64(v) + inv.At(1, 2)

			var xd, yd float64
			if rd := math.Hypot(x, y); rd > 1e-12 {
				theta := math.Atan(rd)
				xd = x * theta / rd
				yd = y * theta / rd
			}
			sampleBilinear(src, fx*xd+cx, fy*yd+cy, dst.Pix[v*dst.Stride+u*4:v*dst.Stride+u*4+4])
		}
	}
	return dst, nil
}

// sampleBilinear writes the bilinear interpolation of the source at the
// fractional position (sx, sy) into px. Samples outside the source bounds
// contribute zero.
func sampleBilinear(src *image.NRGBA, sx, sy float64, px []byte) {
	x0 := int(math.Floor(sx))
	y0 := int(math.Floor(sy))
	fx := sx - float64(x0)
	fy := sy - float64(y0)

	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	at := func(x, y int, c int) float64 {
		if x < 0 || x >= w || y < 0 || y >= h {
			return 0
		}
		return float64(src.Pix[y*src.Stride+x*4+c])
	}

	for c := 0; c < 4; c++ {
		top := at(x0, y0, c)*(1-fx) + at(x0+1, y0, c)*fx
		bot := at(x0, y0+1, c)*(1-fx) + at(x0+1, y0+1, c)*fx
		px[c] = uint8(math.Round(top*(1-fy) + bot*fy))
	}
}
