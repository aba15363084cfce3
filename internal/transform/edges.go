package transform

import (
	"fmt"
	"math"

	"cv-analyser/internal/models"

	"gocv.io/x/gocv"
)

const (
	edgeOn  uint8 = 255
	edgeOff uint8 = 0
)

var (
	tan22_5 = math.Tan(22.5 * math.Pi / 180)
	tan67_5 = math.Tan(67.5 * math.Pi / 180)
)

// DetectEdge produces binary edge maps with hysteresis thresholding on the
// L2 gradient magnitude. Lower and upper are swapped when given out of order.
// The color result is the edge map expanded to three identical channels.
func DetectEdge(pair *models.ImagePair, thresholds models.EdgeThresholds) (*models.ImagePair, error) {
	if err := pair.Validate("edges"); err != nil {
		return nil, err
	}
	if err := thresholds.Validate(); err != nil {
		return nil, err
	}
	t := thresholds.Normalized()

	colorEdges, err := hysteresis(pair.Color.GetMat(), t)
	if err != nil {
		return nil, fmt.Errorf("color edges: %w", err)
	}
	grayEdges, err := hysteresis(pair.Gray.GetMat(), t)
	if err != nil {
		colorEdges.Close()
		return nil, fmt.Errorf("gray edges: %w", err)
	}

	return assemble(pair, colorEdges, grayEdges, "edges")
}

// hysteresis returns a single-channel 8-bit map of src.
func hysteresis(src gocv.Mat, t models.EdgeThresholds) (gocv.Mat, error) {
	rows, cols, channels := src.Rows(), src.Cols(), src.Channels()

	dx := gocv.NewMat()
	defer dx.Close()
	dy := gocv.NewMat()
	defer dy.Close()
	gocv.Sobel(src, &dx, gocv.MatTypeCV64F, 1, 0, 3, 1, 0, gocv.BorderReplicate)
	gocv.Sobel(src, &dy, gocv.MatTypeCV64F, 0, 1, 3, 1, 0, gocv.BorderReplicate)

	gx, err := dx.DataPtrFloat64()
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("read x derivative: %w", err)
	}
	gy, err := dy.DataPtrFloat64()
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("read y derivative: %w", err)
	}

	n := rows * cols
	mag := make([]float64, n)
	sx := make([]float64, n)
	sy := make([]float64, n)

	// Per pixel keep the channel with the strongest response.
	for i := 0; i < n; i++ {
		best := -1.0
		for c := 0; c < channels; c++ {
			x, y := gx[i*channels+c], gy[i*channels+c]
			if m := x*x + y*y; m > best {
				best = m
				sx[i], sy[i] = x, y
			}
		}
		mag[i] = math.Sqrt(best)
	}

	at := func(r, c int) float64 {
		if r < 0 || r >= rows || c < 0 || c >= cols {
			return 0
		}
		return mag[r*cols+c]
	}

	lower, upper := float64(t.Lower), float64(t.Upper)

	const (
		none = iota
		weak
		strong
	)
	class := make([]uint8, n)
	stack := make([]int, 0, n/8+1)

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			i := r*cols + c
			m := mag[i]
			if m <= lower {
				continue
			}

			// Ties keep the first pixel of a plateau.
			ax, ay := math.Abs(sx[i]), math.Abs(sy[i])
			var keep bool
			switch {
			case ay <= ax*tan22_5:
				keep = m > at(r, c-1) && m >= at(r, c+1)
			case ay >= ax*tan67_5:
				keep = m > at(r-1, c) && m >= at(r+1, c)
			case (sx[i] < 0) != (sy[i] < 0):
				keep = m > at(r-1, c+1) && m >= at(r+1, c-1)
			default:
				keep = m > at(r-1, c-1) && m >= at(r+1, c+1)
			}
			if !keep {
				continue
			}

			if m > upper {
				class[i] = strong
				stack = append(stack, i)
			} else {
				class[i] = weak
			}
		}
	}

	out := make([]uint8, n)
	for _, i := range stack {
		out[i] = edgeOn
	}

	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		r, c := i/cols, i%cols
		for dr := -1; dr <= 1; dr++ {
			for dc := -1; dc <= 1; dc++ {
				nr, nc := r+dr, c+dc
				if nr < 0 || nr >= rows || nc < 0 || nc >= cols {
					continue
				}
				j := nr*cols + nc
				if class[j] == weak && out[j] == edgeOff {
					out[j] = edgeOn
					stack = append(stack, j)
				}
			}
		}
	}

	dst := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV8UC1)
	data, err := dst.DataPtrUint8()
	if err != nil {
		dst.Close()
		return gocv.NewMat(), fmt.Errorf("write edge map: %w", err)
	}
	copy(data, out)
	return dst, nil
}
