// Package transform implements the image-analysis operations applied to an
// ImagePair: denoising, gradients, hysteresis edge detection and intensity
// histograms.
//
// Every operation is stateless. Inputs are never modified; results are new
// Mats registered with the same memory tracker as the input pair.
package transform

import (
	"fmt"

	"cv-analyser/internal/models"
	"cv-analyser/internal/opencv/conversion"
	"cv-analyser/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// assemble adopts raw color/gray results, restores their channel depth to
// match the source pair and builds the output pair. colorOut and grayOut are
// always consumed.
func assemble(src *models.ImagePair, colorOut, grayOut gocv.Mat, operation string) (*models.ImagePair, error) {
	tracker := src.Color.Tracker()

	color, err := adoptAtDepth(colorOut, 3, tracker, operation+"_color")
	if err != nil {
		grayOut.Close()
		return nil, fmt.Errorf("%s color result: %w", operation, err)
	}

	gray, err := adoptAtDepth(grayOut, 1, tracker, operation+"_gray")
	if err != nil {
		color.Close()
		return nil, fmt.Errorf("%s gray result: %w", operation, err)
	}

	return models.NewImagePair(color, gray, src.Name)
}

func adoptAtDepth(raw gocv.Mat, channels int, tracker safe.MemoryTracker, tag string) (*safe.Mat, error) {
	mat, err := safe.Adopt(raw, tracker, tag)
	if err != nil {
		return nil, err
	}
	if mat.Channels() == channels {
		return mat, nil
	}
	defer mat.Close()
	return conversion.ToDepth(mat, channels, tag)
}
