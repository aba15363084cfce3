package transform

import (
	"fmt"

	"cv-analyser/internal/models"

	"gocv.io/x/gocv"
)

const (
	templateWindowSize = 7
	searchWindowSize   = 21
)

// Denoise applies non-local-means denoising to both buffers. The color buffer
// is filtered in its native BGR form (OpenCV works in Lab internally and
// converts back), the gray buffer with the luminance filter.
func Denoise(pair *models.ImagePair, quality models.DenoiseQuality) (*models.ImagePair, error) {
	if err := pair.Validate("denoise"); err != nil {
		return nil, err
	}
	if !quality.Valid() {
		return nil, fmt.Errorf("%w: %d", models.ErrQualityOutOfRange, int(quality))
	}

	h := quality.Strength()

	colorOut := gocv.NewMat()
	gocv.FastNlMeansDenoisingColoredWithParams(pair.Color.GetMat(), &colorOut, h, h, templateWindowSize, searchWindowSize)

	grayOut := gocv.NewMat()
	gocv.FastNlMeansDenoisingWithParams(pair.Gray.GetMat(), &grayOut, h, templateWindowSize, searchWindowSize)

	return assemble(pair, colorOut, grayOut, "denoise_"+quality.String())
}
