package conversion

import (
	"fmt"
	"image"

	"cv-analyser/internal/models"
	"cv-analyser/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// Convert changes the channel depth of src in the requested direction. The
// result is a new Mat reporting to the same tracker as src.
func Convert(src *safe.Mat, conv models.ColorConversion, tag string) (*safe.Mat, error) {
	if err := safe.ValidateMatForOperation(src, "color conversion"); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var code gocv.ColorConversionCode
	switch conv {
	case models.GrayToColor:
		if src.Channels() != 1 {
			return nil, fmt.Errorf("%s requires 1 channel, got %d", conv, src.Channels())
		}
		code = gocv.ColorGrayToBGR
	case models.ColorToGray:
		switch src.Channels() {
		case 3:
			code = gocv.ColorBGRToGray
		case 4:
			code = gocv.ColorBGRAToGray
		default:
			return nil, fmt.Errorf("%s requires 3 or 4 channels, got %d", conv, src.Channels())
		}
	default:
		return nil, fmt.Errorf("unknown color conversion %d", int(conv))
	}

	dst := gocv.NewMat()
	gocv.CvtColor(src.GetMat(), &dst, code)

	return safe.Adopt(dst, src.Tracker(), tag)
}

// ToDepth returns a copy of src with exactly channels channels (1 or 3).
func ToDepth(src *safe.Mat, channels int, tag string) (*safe.Mat, error) {
	if err := safe.ValidateMatForOperation(src, "depth conversion"); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	have := src.Channels()
	switch {
	case have == channels:
		return safe.NewMatFromMatWithTracker(src.GetMat(), src.Tracker(), tag)
	case channels == 1:
		return Convert(src, models.ColorToGray, tag)
	case channels == 3 && have == 1:
		return Convert(src, models.GrayToColor, tag)
	case channels == 3 && have == 4:
		dst := gocv.NewMat()
		gocv.CvtColor(src.GetMat(), &dst, gocv.ColorBGRAToBGR)
		return safe.Adopt(dst, src.Tracker(), tag)
	default:
		return nil, fmt.Errorf("unsupported depth conversion %d -> %d channels", have, channels)
	}
}

// MatToImage converts an 8-bit Mat to a standard Go image. BGR input comes
// back as RGBA with channels reordered.
func MatToImage(src *safe.Mat) (image.Image, error) {
	if err := safe.ValidateMatForOperation(src, "Mat to image conversion"); err != nil {
		return nil, err
	}

	switch src.Type() {
	case gocv.MatTypeCV8UC1, gocv.MatTypeCV8UC3, gocv.MatTypeCV8UC4:
	default:
		return nil, fmt.Errorf("unsupported Mat type %v for image conversion", src.Type())
	}

	mat := src.GetMat()
	img, err := mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("Mat to image conversion failed: %w", err)
	}
	return img, nil
}
