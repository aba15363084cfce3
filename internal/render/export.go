package render

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"strings"
)

// Encode writes img in the format implied by ext. JPEG for .jpg and .jpeg,
// PNG for everything else since plots and edge maps compress losslessly.
func Encode(w io.Writer, img image.Image, ext string) error {
	if img == nil {
		return fmt.Errorf("no image to encode")
	}

	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "jpg", "jpeg":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 95})
	default:
		return png.Encode(w, img)
	}
}
