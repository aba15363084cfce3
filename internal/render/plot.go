package render

import (
	"fmt"
	"image"
	"image/color"

	"cv-analyser/internal/models"
	"cv-analyser/internal/opencv/safe"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/floats"
)

const (
	plotWidth  = 532
	plotHeight = 320
	plotMargin = 10
)

var (
	channelInk = [3]color.RGBA{
		{B: 220, A: 0},
		{G: 160, A: 0},
		{R: 220, A: 0},
	}
	grayInk = color.RGBA{R: 60, G: 60, B: 60, A: 0}
	axisInk = color.RGBA{R: 150, G: 150, B: 150, A: 0}
)

// HistogramPlots are the rendered frequency tables of a Histogram.
type HistogramPlots struct {
	Color *safe.Mat
	Gray  *safe.Mat
}

func (p *HistogramPlots) Close() {
	if p == nil {
		return
	}
	if p.Color != nil {
		p.Color.Close()
	}
	if p.Gray != nil {
		p.Gray.Close()
	}
}

// PlotHistogram draws the color channels overlaid on one plot and the gray
// table on another. Each plot is scaled to its own tallest bucket.
func PlotHistogram(hist *models.Histogram, mode models.HistogramMode, tracker safe.MemoryTracker) (*HistogramPlots, error) {
	if hist == nil {
		return nil, fmt.Errorf("no histogram to plot")
	}
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: histogram mode %d", models.ErrModeOutOfRange, int(mode))
	}

	colorCanvas := newPlotCanvas()
	peak := 0.0
	for i := range hist.Color {
		peak = max(peak, peakOf(hist.Color[i][:]))
	}
	for i := range hist.Color {
		drawSeries(&colorCanvas, hist.Color[i][:], peak, mode, channelInk[i])
	}

	grayCanvas := newPlotCanvas()
	drawSeries(&grayCanvas, hist.Gray[:], peakOf(hist.Gray[:]), mode, grayInk)

	colorPlot, err := safe.Adopt(colorCanvas, tracker, "histogram_color_plot")
	if err != nil {
		grayCanvas.Close()
		return nil, err
	}
	grayPlot, err := safe.Adopt(grayCanvas, tracker, "histogram_gray_plot")
	if err != nil {
		colorPlot.Close()
		return nil, err
	}

	return &HistogramPlots{Color: colorPlot, Gray: grayPlot}, nil
}

func newPlotCanvas() gocv.Mat {
	canvas := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 255, 255, 0), plotHeight, plotWidth, gocv.MatTypeCV8UC3)
	base := plotHeight - plotMargin
	gocv.Line(&canvas, image.Pt(plotMargin, base), image.Pt(plotWidth-plotMargin, base), axisInk, 1)
	gocv.Line(&canvas, image.Pt(plotMargin, plotMargin), image.Pt(plotMargin, base), axisInk, 1)
	return canvas
}

func peakOf(counts []float64) float64 {
	if len(counts) == 0 {
		return 0
	}
	return floats.Max(counts)
}

// bucketPoint maps bucket b with count c onto the canvas.
func bucketPoint(b int, c, peak float64) image.Point {
	span := float64(plotWidth - 2*plotMargin)
	height := float64(plotHeight - 2*plotMargin)
	x := plotMargin + int(float64(b)*span/float64(models.HistogramBins-1))
	y := plotHeight - plotMargin
	if peak > 0 {
		y -= int(c / peak * height)
	}
	return image.Pt(x, y)
}

func drawSeries(canvas *gocv.Mat, counts []float64, peak float64, mode models.HistogramMode, ink color.RGBA) {
	switch mode {
	case models.HistogramCurves:
		prev := bucketPoint(0, counts[0], peak)
		for b := 1; b < len(counts); b++ {
			next := bucketPoint(b, counts[b], peak)
			gocv.Line(canvas, prev, next, ink, 1)
			prev = next
		}
	case models.HistogramLines:
		for b, c := range counts {
			if c == 0 {
				continue
			}
			top := bucketPoint(b, c, peak)
			gocv.Line(canvas, image.Pt(top.X, plotHeight-plotMargin), top, ink, 1)
		}
	}
}
