package raindrop

import (
	"image"

	"github.com/disintegration/imaging"
	"github.com/droplens/raindrop/imop"
)

// composite pastes every textured droplet onto a copy of the source image
// in placement order, later droplets painting over earlier ones. Boundary
// pixels are darkened by the configured edge ratio to simulate meniscus
// shading. When cfg.ReturnLabel is set, the droplets' thresholded coverage
// is OR-accumulated into a canvas sized label mask with values in {0,1};
// otherwise the returned label is nil.
func composite(src *image.NRGBA, drops []*Droplet, cfg *Config) (*image.NRGBA, *image.Gray) {
	out := imaging.Clone(src)

	var label *image.Gray
	if cfg.ReturnLabel {
		label = image.NewGray(image.Rect(0, 0, src.Bounds().Dx(), src.Bounds().Dy()))
	}

	for _, d := range drops {
		if d.Texture() == nil {
			continue
		}
		imop.PasteOver(out, d.Texture(), d.Bounds().Min)

		if cfg.EdgeDarkRatio > 0 {
			darkenEdges(out, d, 1-cfg.EdgeDarkRatio)
		}
		if label != nil {
			accumulateLabel(label, d, uint8(cfg.LabelThreshold))
		}
	}
	return out, label
}

// darkenEdges scales the output pixels along the droplet's shape boundary.
// A mask pixel belongs to the boundary when it is covered but one of its
// four neighbors is not, or when it sits on the mask border.
func darkenEdges(out *image.NRGBA, d *Droplet, factor float64) {
	mask := d.LabelMask()
	w, h := mask.Bounds().Dx(), mask.Bounds().Dy()
	origin := d.Bounds().Min

	covered := func(x, y int) bool {
		if x < 0 || x >= w || y < 0 || y >= h {
			return false
		}
		return mask.Pix[y*mask.Stride+x] > 0
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !covered(x, y) {
				continue
			}
			if covered(x-1, y) && covered(x+1, y) && covered(x, y-1) && covered(x, y+1) {
				continue
			}
			imop.Darken(out, origin.X+x, origin.Y+y, factor)
		}
	}
}

// accumulateLabel marks every canvas pixel whose droplet alpha reaches the
// threshold. Previously marked pixels are preserved.
func accumulateLabel(label *image.Gray, d *Droplet, threshold uint8) {
	alpha := d.AlphaMask()
	w, h := alpha.Bounds().Dx(), alpha.Bounds().Dy()
	origin := d.Bounds().Min
	bounds := label.Bounds()

	for y := 0; y < h; y++ {
		oy := origin.Y + y
		if oy < bounds.Min.Y || oy >= bounds.Max.Y {
			continue
		}
		for x := 0; x < w; x++ {
			ox := origin.X + x
			if ox < bounds.Min.X || ox >= bounds.Max.X {
				continue
			}
			if alpha.Pix[y*alpha.Stride+x] >= threshold {
				label.Pix[oy*label.Stride+ox] = 1
			}
		}
	}
}
