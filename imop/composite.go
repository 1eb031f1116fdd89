// Package imop implements the alpha composition operations used for mixing
// a droplet texture tile with its backdrop. The core image/draw package only
// provides the source and source-over-destination operators over whole
// images; this package adds the offset paste and the per-pixel darkening
// the droplet compositor needs.
package imop

import "image"

// PasteOver alpha-blends a texture tile onto dst with the tile's top-left
// corner placed at pt, using the tile's alpha channel as the blend weight.
// Tile pixels falling outside the destination bounds are discarded, so a
// tile may safely hang over the canvas edge.
func PasteOver(dst *image.NRGBA, tile *image.NRGBA, pt image.Point) {
	dx, dy := tile.Bounds().Dx(), tile.Bounds().Dy()
	bounds := dst.Bounds()

	for y := 0; y < dy; y++ {
		oy := pt.Y + y
		if oy < bounds.Min.Y || oy >= bounds.Max.Y {
			continue
		}
		for x := 0; x < dx; x++ {
			ox := pt.X + x
			if ox < bounds.Min.X || ox >= bounds.Max.X {
				continue
			}

			si := y*tile.Stride + x*4
			di := (oy-bounds.Min.Y)*dst.Stride + (ox-bounds.Min.X)*4

			asn := float64(tile.Pix[si+3]) / 255
			if asn == 0 {
				continue
			}

			// applying the source-over composition formula
			for c := 0; c < 3; c++ {
				sn := float64(tile.Pix[si+c]) / 255
				bn := float64(dst.Pix[di+c]) / 255
				dst.Pix[di+c] = uint8((asn*sn + bn*(1-asn)) * 255)
			}
		}
	}
}

// Darken scales the RGB channels of the destination pixel at (x, y) by the
// given factor, leaving the alpha channel untouched. A factor of 1 is a
// no-op, a factor of 0 turns the pixel black.
func Darken(dst *image.NRGBA, x, y int, factor float64) {
	bounds := dst.Bounds()
	if x < bounds.Min.X || x >= bounds.Max.X || y < bounds.Min.Y || y >= bounds.Max.Y {
		return
	}
	if factor < 0 {
		factor = 0
	} else if factor > 1 {
		factor = 1
	}

	i := (y-bounds.Min.Y)*dst.Stride + (x-bounds.Min.X)*4
	for c := 0; c < 3; c++ {
		dst.Pix[i+c] = uint8(float64(dst.Pix[i+c]) * factor)
	}
}
