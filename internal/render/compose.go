package render

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"cv-analyser/internal/opencv/safe"

	"gocv.io/x/gocv"
)

const (
	labelHeight = 28
	titleHeight = 40
	padding     = 8
	gridColumns = 2
)

var (
	paper = color.RGBA{R: 255, G: 255, B: 255, A: 0}
	ink   = color.RGBA{R: 20, G: 20, B: 20, A: 0}
)

// Compose tiles the view's panels into one BGR image no larger than limit
// (plus the title and label strips). Panels keep their aspect ratio; smaller
// panels are centered in their cell.
func Compose(view View, limit image.Point) (*safe.Mat, error) {
	if len(view.Panels) == 0 {
		return nil, fmt.Errorf("view %q has no panels", view.Title)
	}
	for _, p := range view.Panels {
		if err := safe.ValidateMatForOperation(p.Mat, "compose "+p.Label); err != nil {
			return nil, err
		}
	}

	cols := gridColumns
	if len(view.Panels) < cols {
		cols = len(view.Panels)
	}
	rows := (len(view.Panels) + cols - 1) / cols

	var natural image.Point
	for _, p := range view.Panels {
		natural.X = max(natural.X, p.Mat.Cols())
		natural.Y = max(natural.Y, p.Mat.Rows())
	}
	scale := fitScale(natural, image.Pt(limit.X/cols-2*padding, limit.Y/rows-2*padding-labelHeight))
	cell := image.Pt(scaled(natural.X, scale), scaled(natural.Y, scale))

	var rowMats []gocv.Mat
	defer func() {
		for _, m := range rowMats {
			m.Close()
		}
	}()

	for r := 0; r < rows; r++ {
		var row gocv.Mat
		for c := 0; c < cols; c++ {
			var tile gocv.Mat
			if i := r*cols + c; i < len(view.Panels) {
				tile = makeTile(view.Panels[i], cell, scale)
			} else {
				tile = blankTile(cell)
			}

			if c == 0 {
				row = tile
				continue
			}
			joined := gocv.NewMat()
			gocv.Hconcat(row, tile, &joined)
			row.Close()
			tile.Close()
			row = joined
		}
		rowMats = append(rowMats, row)
	}

	grid := rowMats[0].Clone()
	for _, row := range rowMats[1:] {
		joined := gocv.NewMat()
		gocv.Vconcat(grid, row, &joined)
		grid.Close()
		grid = joined
	}

	out := gocv.NewMat()
	gocv.CopyMakeBorder(grid, &out, titleHeight, 0, 0, 0, gocv.BorderConstant, paper)
	grid.Close()
	gocv.PutText(&out, view.Title, image.Pt(padding, titleHeight-12), gocv.FontHersheySimplex, 0.8, ink, 2)

	return safe.Adopt(out, view.Panels[0].Mat.Tracker(), "composite")
}

func makeTile(p Panel, cell image.Point, scale float64) gocv.Mat {
	bgr := gocv.NewMat()
	if p.Mat.Channels() == 1 {
		gocv.CvtColor(p.Mat.GetMat(), &bgr, gocv.ColorGrayToBGR)
	} else {
		src := p.Mat.GetMat()
		src.CopyTo(&bgr)
	}

	if scale < 1 {
		resized := gocv.NewMat()
		size := image.Pt(scaled(bgr.Cols(), scale), scaled(bgr.Rows(), scale))
		gocv.Resize(bgr, &resized, size, 0, 0, gocv.InterpolationArea)
		bgr.Close()
		bgr = resized
	}

	dx := cell.X - bgr.Cols()
	dy := cell.Y - bgr.Rows()
	tile := gocv.NewMat()
	gocv.CopyMakeBorder(bgr, &tile,
		padding+labelHeight+dy/2, padding+dy-dy/2,
		padding+dx/2, padding+dx-dx/2,
		gocv.BorderConstant, paper)
	bgr.Close()

	gocv.PutText(&tile, p.Label, image.Pt(padding, padding+labelHeight-10), gocv.FontHersheySimplex, 0.5, ink, 1)
	return tile
}

func blankTile(cell image.Point) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 255, 255, 0),
		cell.Y+2*padding+labelHeight, cell.X+2*padding, gocv.MatTypeCV8UC3)
}

// fitScale is the largest factor <= 1 that fits size inside limit.
func fitScale(size, limit image.Point) float64 {
	if size.X <= 0 || size.Y <= 0 || limit.X <= 0 || limit.Y <= 0 {
		return 1
	}
	return math.Min(1, math.Min(float64(limit.X)/float64(size.X), float64(limit.Y)/float64(size.Y)))
}

func scaled(v int, scale float64) int {
	return max(1, int(math.Round(float64(v)*scale)))
}
