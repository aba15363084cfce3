package render

import (
	"image"

	"golang.org/x/image/draw"
)

// Fit scales img down to fit within limit, keeping its aspect ratio. Images
// that already fit are returned unchanged.
func Fit(img image.Image, limit image.Point) image.Image {
	b := img.Bounds()
	scale := fitScale(b.Size(), limit)
	if scale >= 1 {
		return img
	}

	dst := image.NewRGBA(image.Rect(0, 0, scaled(b.Dx(), scale), scaled(b.Dy(), scale)))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
