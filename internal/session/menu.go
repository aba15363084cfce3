package session

import (
	"fmt"
	"strconv"
	"strings"

	"cv-analyser/internal/models"
)

const (
	menuLoad = iota + 1
	menuDisplay
	menuDenoise
	menuGradient
	menuEdges
	menuHistogram
	menuHelp
	menuExit
)

const introText = `Welcome to cv-analyser!
Results are previewed and saved on request; the source file is never modified.
Every accepted transform replaces the working image, so transforms build on
each other. Press Ctrl+C to abort at any time.`

const menuText = `
Options:
	1) Read a new image
	2) Display image
	3) Remove noise
	4) Get the image gradient
	5) Detect edges
	6) Generate histograms
	7) Help
	8) Exit`

const helpText = `General:
	After each transform you are asked whether to preview the result and
	whether to save it. Saved files are JPEG images written to
	<output directory>/<image name>/. The result then becomes the working
	image. Histograms leave the working image unchanged.
	Invalid answers can be retried or abandoned; abandoning changes nothing.

Removing noise:
	Non-local means denoising removes grain at the cost of fine detail.
	Low keeps the most detail, High removes the most noise.

Image gradients:
	A gradient shows where intensity changes. Laplacian responds in every
	direction; Scharr X and Scharr Y respond to vertical and horizontal
	edges respectively. Rising and falling edges respond equally.

Edge detection:
	Gradient strengths above the upper threshold are edges, those at or
	below the lower threshold are not. Pixels in between are edges only
	when connected to a certain edge. Leave a threshold blank to use its
	default.

Histograms:
	Colour frequency plots how often each blue, green and red value occurs.
	The gray-scale plot shows the distribution of brightness.`

const denoiseText = `Specify de-noising quality:
	1) Low (more noise left, most detail kept, very little colour distortion)
	2) Moderate (little noise, good detail, low colour distortion)
	3) High (very little noise, less detail, some colour distortion)
	(Recommended: Moderate)`

const gradientText = `Specify which image gradient to generate:
	1) Laplacian
	2) Scharr (X-Axis)
	3) Scharr (Y-Axis)`

const histogramText = `Specify the plot style:
	1) Curves
	2) Lines`

func parseMenuChoice(line string) (int, error) {
	choice, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number; valid options are 1 to %d", models.ErrMenuChoiceOutOfRange, line, menuExit)
	}
	if choice < menuLoad || choice > menuExit {
		return 0, fmt.Errorf("%w: valid options are 1 to %d", models.ErrMenuChoiceOutOfRange, menuExit)
	}
	return choice, nil
}
