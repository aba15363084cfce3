package transform

import (
	"fmt"

	"cv-analyser/internal/models"

	"gocv.io/x/gocv"
)

// Gradient highlights intensity change with the selected derivative operator.
//
// Derivatives are signed: a white-to-black transition is negative. Every mode
// is computed in float64, then the absolute value is saturated to 8 bits.
// Computing directly in 8-bit unsigned would clip every negative slope to zero.
func Gradient(pair *models.ImagePair, mode models.GradientMode) (*models.ImagePair, error) {
	if err := pair.Validate("gradient"); err != nil {
		return nil, err
	}
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: gradient mode %d", models.ErrModeOutOfRange, int(mode))
	}

	colorOut := derivative(pair.Color.GetMat(), mode)
	grayOut := derivative(pair.Gray.GetMat(), mode)

	return assemble(pair, colorOut, grayOut, "gradient_"+mode.String())
}

func derivative(src gocv.Mat, mode models.GradientMode) gocv.Mat {
	wide := gocv.NewMat()
	defer wide.Close()

	switch mode {
	case models.GradientLaplacian:
		gocv.Laplacian(src, &wide, gocv.MatTypeCV64F, 1, 1, 0, gocv.BorderDefault)
	case models.GradientScharrX:
		gocv.Scharr(src, &wide, gocv.MatTypeCV64F, 1, 0, 1, 0, gocv.BorderDefault)
	case models.GradientScharrY:
		gocv.Scharr(src, &wide, gocv.MatTypeCV64F, 0, 1, 1, 0, gocv.BorderDefault)
	}

	out := gocv.NewMat()
	gocv.ConvertScaleAbs(wide, &out, 1, 0)
	return out
}
