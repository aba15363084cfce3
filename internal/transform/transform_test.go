package transform

import (
	"testing"

	"cv-analyser/internal/models"
	"cv-analyser/internal/opencv/memory"
	"cv-analyser/internal/opencv/safe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

// newPair builds a pair from a per-pixel BGR function.
func newPair(t *testing.T, tracker safe.MemoryTracker, w, h int, px func(x, y int) (b, g, r uint8)) *models.ImagePair {
	t.Helper()

	colorMat := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8UC3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			b, g, r := px(x, y)
			colorMat.SetUCharAt3(y, x, 0, b)
			colorMat.SetUCharAt3(y, x, 1, g)
			colorMat.SetUCharAt3(y, x, 2, r)
		}
	}
	grayMat := gocv.NewMat()
	gocv.CvtColor(colorMat, &grayMat, gocv.ColorBGRToGray)

	color, err := safe.Adopt(colorMat, tracker, "test_color")
	require.NoError(t, err)
	gray, err := safe.Adopt(grayMat, tracker, "test_gray")
	require.NoError(t, err)

	pair, err := models.NewImagePair(color, gray, "A")
	require.NoError(t, err)
	t.Cleanup(pair.Close)
	return pair
}

func uniform(v uint8) func(x, y int) (uint8, uint8, uint8) {
	return func(int, int) (uint8, uint8, uint8) { return v, v, v }
}

// verticalStep is dark left of col and bright from col on, or the reverse.
func verticalStep(col int, rising bool) func(x, y int) (uint8, uint8, uint8) {
	return func(x, _ int) (uint8, uint8, uint8) {
		v := uint8(0)
		if (x >= col) == rising {
			v = 255
		}
		return v, v, v
	}
}

func maxValue(t *testing.T, m *safe.Mat) float64 {
	t.Helper()
	_, maxVal, _, _ := gocv.MinMaxLoc(m.GetMat())
	return float64(maxVal)
}

func nonZero(m *safe.Mat) int {
	if m.Channels() == 1 {
		return gocv.CountNonZero(m.GetMat())
	}
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(m.GetMat(), &gray, gocv.ColorBGRToGray)
	return gocv.CountNonZero(gray)
}

func assertShape(t *testing.T, src, dst *models.ImagePair) {
	t.Helper()
	assert.Equal(t, src.Width(), dst.Width())
	assert.Equal(t, src.Height(), dst.Height())
	assert.Equal(t, gocv.MatTypeCV8UC3, dst.Color.Type())
	assert.Equal(t, gocv.MatTypeCV8UC1, dst.Gray.Type())
	assert.Equal(t, src.Name, dst.Name)
}

func TestDenoisePreservesShape(t *testing.T) {
	src := newPair(t, nil, 48, 32, func(x, y int) (uint8, uint8, uint8) {
		return uint8(x * 5), uint8(y * 7), uint8((x + y) * 3)
	})

	for _, q := range []models.DenoiseQuality{models.DenoiseLow, models.DenoiseModerate, models.DenoiseHigh} {
		t.Run(q.String(), func(t *testing.T) {
			out, err := Denoise(src, q)
			require.NoError(t, err)
			defer out.Close()
			assertShape(t, src, out)
		})
	}
}

func TestDenoiseRejectsUnknownQuality(t *testing.T) {
	src := newPair(t, nil, 8, 8, uniform(10))

	_, err := Denoise(src, models.DenoiseQuality(4))
	assert.ErrorIs(t, err, models.ErrQualityOutOfRange)
}

func TestGradientOfUniformImageIsZero(t *testing.T) {
	src := newPair(t, nil, 16, 16, uniform(128))

	for _, mode := range []models.GradientMode{models.GradientLaplacian, models.GradientScharrX, models.GradientScharrY} {
		t.Run(mode.String(), func(t *testing.T) {
			out, err := Gradient(src, mode)
			require.NoError(t, err)
			defer out.Close()

			assertShape(t, src, out)
			assert.Zero(t, nonZero(out.Color))
			assert.Zero(t, nonZero(out.Gray))
		})
	}
}

func TestGradientRespondsToBothSlopes(t *testing.T) {
	rising := newPair(t, nil, 20, 10, verticalStep(10, true))
	falling := newPair(t, nil, 20, 10, verticalStep(10, false))

	for _, mode := range []models.GradientMode{models.GradientLaplacian, models.GradientScharrX} {
		t.Run(mode.String(), func(t *testing.T) {
			up, err := Gradient(rising, mode)
			require.NoError(t, err)
			defer up.Close()
			down, err := Gradient(falling, mode)
			require.NoError(t, err)
			defer down.Close()

			assert.Positive(t, maxValue(t, up.Gray))
			assert.Equal(t, maxValue(t, up.Gray), maxValue(t, down.Gray))
			assert.Equal(t, nonZero(up.Gray), nonZero(down.Gray))
		})
	}
}

func TestGradientScharrYIgnoresVerticalEdge(t *testing.T) {
	src := newPair(t, nil, 20, 10, verticalStep(10, true))

	out, err := Gradient(src, models.GradientScharrY)
	require.NoError(t, err)
	defer out.Close()

	assert.Zero(t, nonZero(out.Gray))
}

func TestDetectEdgeIsBinary(t *testing.T) {
	src := newPair(t, nil, 32, 32, func(x, y int) (uint8, uint8, uint8) {
		if x > 8 && x < 24 && y > 8 && y < 24 {
			return 40, 200, 250
		}
		return 0, 0, 0
	})

	out, err := DetectEdge(src, models.DefaultEdgeThresholds)
	require.NoError(t, err)
	defer out.Close()
	assertShape(t, src, out)

	for y := 0; y < out.Height(); y++ {
		for x := 0; x < out.Width(); x++ {
			v, err := out.Gray.GetUCharAt(y, x)
			require.NoError(t, err)
			require.Contains(t, []uint8{0, 255}, v)
			for c := 0; c < 3; c++ {
				cv, err := out.Color.GetUCharAt3(y, x, c)
				require.NoError(t, err)
				require.Contains(t, []uint8{0, 255}, cv)
			}
		}
	}
	assert.Positive(t, nonZero(out.Gray))
	assert.Positive(t, nonZero(out.Color))
}

func TestDetectEdgeUniformIsEmpty(t *testing.T) {
	src := newPair(t, nil, 16, 16, uniform(90))

	out, err := DetectEdge(src, models.EdgeThresholds{Lower: 0, Upper: 0})
	require.NoError(t, err)
	defer out.Close()

	assert.Zero(t, nonZero(out.Gray))
	assert.Zero(t, nonZero(out.Color))
}

func TestDetectEdgeThinsStepToOneColumn(t *testing.T) {
	src := newPair(t, nil, 20, 12, verticalStep(10, true))

	out, err := DetectEdge(src, models.DefaultEdgeThresholds)
	require.NoError(t, err)
	defer out.Close()

	// Sobel responds on both sides of the step; suppression keeps one.
	assert.Equal(t, out.Height(), nonZero(out.Gray))
}

func TestDetectEdgeSwapsThresholds(t *testing.T) {
	src := newPair(t, nil, 32, 32, func(x, y int) (uint8, uint8, uint8) {
		v := uint8((x * 8) % 256)
		return v, v, v
	})

	ordered, err := DetectEdge(src, models.EdgeThresholds{Lower: 100, Upper: 200})
	require.NoError(t, err)
	defer ordered.Close()
	swapped, err := DetectEdge(src, models.EdgeThresholds{Lower: 200, Upper: 100})
	require.NoError(t, err)
	defer swapped.Close()

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(ordered.Gray.GetMat(), swapped.Gray.GetMat(), &diff)
	assert.Zero(t, gocv.CountNonZero(diff))
}

func TestDetectEdgeHysteresisFollowsWeakChain(t *testing.T) {
	// A vertical step whose bright side fades towards the bottom: the top of
	// the edge is strong, the rest only clears the lower bound and survives
	// because it is connected to the strong part.
	src := newPair(t, nil, 20, 20, func(x, y int) (uint8, uint8, uint8) {
		if x < 10 {
			return 0, 0, 0
		}
		v := uint8(255 - 12*y)
		return v, v, v
	})

	linked, err := DetectEdge(src, models.EdgeThresholds{Lower: 100, Upper: 600})
	require.NoError(t, err)
	defer linked.Close()
	strongOnly, err := DetectEdge(src, models.EdgeThresholds{Lower: 600, Upper: 600})
	require.NoError(t, err)
	defer strongOnly.Close()

	assert.Equal(t, src.Height(), nonZero(linked.Gray))
	assert.Positive(t, nonZero(strongOnly.Gray))
	assert.Less(t, nonZero(strongOnly.Gray), src.Height())
}

func TestDetectEdgeRejectsNegative(t *testing.T) {
	src := newPair(t, nil, 8, 8, uniform(0))

	_, err := DetectEdge(src, models.EdgeThresholds{Lower: -1, Upper: 200})
	assert.ErrorIs(t, err, models.ErrThresholdOutOfRange)
}

func TestHistogramBucketsSumToPixelCount(t *testing.T) {
	src := newPair(t, nil, 30, 20, func(x, y int) (uint8, uint8, uint8) {
		return uint8(x), uint8(y * 3), uint8(x ^ y)
	})

	hist, err := HistogramGenerate(src)
	require.NoError(t, err)

	pixels := float64(src.Width() * src.Height())
	for i := range hist.Color {
		var sum float64
		for _, c := range hist.Color[i] {
			sum += c
		}
		assert.Equal(t, pixels, sum, models.ColorChannelNames[i])
	}
	var sum float64
	for _, c := range hist.Gray {
		sum += c
	}
	assert.Equal(t, pixels, sum)
}

func TestHistogramExactBuckets(t *testing.T) {
	src := newPair(t, nil, 10, 10, func(x, _ int) (uint8, uint8, uint8) {
		if x < 4 {
			return 255, 0, 7
		}
		return 0, 255, 7
	})

	hist, err := HistogramGenerate(src)
	require.NoError(t, err)

	assert.Equal(t, 40.0, hist.Color[0][255])
	assert.Equal(t, 60.0, hist.Color[0][0])
	assert.Equal(t, 60.0, hist.Color[1][255])
	assert.Equal(t, 100.0, hist.Color[2][7])
}

func TestHistogramExactAboveFloat32Precision(t *testing.T) {
	if testing.Short() {
		t.Skip("allocates a 4097x4097 pair")
	}

	// 4097*4097 = 16785409 is not representable as a float32.
	const side = 4097
	colorMat := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(9, 120, 250, 0), side, side, gocv.MatTypeCV8UC3)
	grayMat := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(77, 0, 0, 0), side, side, gocv.MatTypeCV8UC1)

	color, err := safe.Adopt(colorMat, nil, "large_color")
	require.NoError(t, err)
	gray, err := safe.Adopt(grayMat, nil, "large_gray")
	require.NoError(t, err)
	src, err := models.NewImagePair(color, gray, "large")
	require.NoError(t, err)
	defer src.Close()

	hist, err := HistogramGenerate(src)
	require.NoError(t, err)

	pixels := float64(side * side)
	assert.Equal(t, pixels, hist.Gray[77])
	assert.Equal(t, pixels, hist.Color[0][9])
	assert.Equal(t, pixels, hist.Color[1][120])
	assert.Equal(t, pixels, hist.Color[2][250])

	summaries := Summarize(hist)
	assert.Equal(t, pixels, summaries[3].Pixels)
	assert.Equal(t, 77.0, summaries[3].Mean)
}

func TestSummarize(t *testing.T) {
	hist := &models.Histogram{}
	hist.Gray[10] = 3
	hist.Gray[20] = 1

	summaries := Summarize(hist)
	require.Len(t, summaries, 4)

	gray := summaries[3]
	assert.Equal(t, "gray", gray.Channel)
	assert.Equal(t, 4.0, gray.Pixels)
	assert.InDelta(t, 12.5, gray.Mean, 1e-9)
	assert.Equal(t, 10, gray.Min)
	assert.Equal(t, 20, gray.Max)
	assert.Equal(t, 10, gray.Mode)
	assert.Positive(t, gray.StdDev)

	blue := summaries[0]
	assert.Equal(t, "blue", blue.Channel)
	assert.Zero(t, blue.Pixels)
	assert.Equal(t, -1, blue.Min)
}

func TestGradientResultIsTracked(t *testing.T) {
	mgr := memory.NewManager()
	src := newPair(t, mgr, 16, 16, verticalStep(8, true))
	before := mgr.Stats().ActiveMats

	out, err := Gradient(src, models.GradientLaplacian)
	require.NoError(t, err)
	assert.Equal(t, before+2, mgr.Stats().ActiveMats)

	out.Close()
	assert.Equal(t, before, mgr.Stats().ActiveMats)
}

func TestMismatchedPairIsRejected(t *testing.T) {
	src := newPair(t, nil, 8, 8, uniform(1))
	bad := &models.ImagePair{Color: src.Gray, Gray: src.Color, Name: "bad"}

	_, err := Gradient(bad, models.GradientLaplacian)
	assert.ErrorIs(t, err, models.ErrPairMismatch)
	_, err = HistogramGenerate(bad)
	assert.ErrorIs(t, err, models.ErrPairMismatch)
}
