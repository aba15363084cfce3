package render

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
	"time"

	"cv-analyser/internal/logger"
	"cv-analyser/internal/models"
	"cv-analyser/internal/opencv/memory"
	"cv-analyser/internal/opencv/safe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func solid(t *testing.T, tracker safe.MemoryTracker, w, h int, mt gocv.MatType) *safe.Mat {
	t.Helper()
	m, err := safe.Adopt(gocv.NewMatWithSizeFromScalar(gocv.NewScalar(40, 80, 120, 0), h, w, mt), tracker, "panel")
	require.NoError(t, err)
	t.Cleanup(m.Close)
	return m
}

func TestComposeGrid(t *testing.T) {
	mgr := memory.NewManager()
	view := View{
		Title: "De-noised Images",
		Panels: []Panel{
			{Label: "Original Color Image", Mat: solid(t, mgr, 64, 48, gocv.MatTypeCV8UC3)},
			{Label: "De-noised Color Image", Mat: solid(t, mgr, 64, 48, gocv.MatTypeCV8UC3)},
			{Label: "Original Gray-scale Image", Mat: solid(t, mgr, 64, 48, gocv.MatTypeCV8UC1)},
		},
	}

	out, err := Compose(view, image.Pt(2000, 2000))
	require.NoError(t, err)
	defer out.Close()

	tileW := 64 + 2*padding
	tileH := 48 + 2*padding + labelHeight
	assert.Equal(t, 2*tileW, out.Cols())
	assert.Equal(t, titleHeight+2*tileH, out.Rows())
	assert.Equal(t, gocv.MatTypeCV8UC3, out.Type())
	assert.Equal(t, int64(4), mgr.Stats().ActiveMats)
}

func TestComposeScalesDown(t *testing.T) {
	view := View{Title: "Big", Panels: []Panel{{Label: "only", Mat: solid(t, nil, 800, 400, gocv.MatTypeCV8UC3)}}}

	out, err := Compose(view, image.Pt(416, 1000))
	require.NoError(t, err)
	defer out.Close()

	assert.Equal(t, 416, out.Cols())
	assert.Equal(t, titleHeight+200+2*padding+labelHeight, out.Rows())
}

func TestComposeRejectsEmptyView(t *testing.T) {
	_, err := Compose(View{Title: "empty"}, image.Pt(100, 100))
	assert.Error(t, err)

	m := solid(t, nil, 4, 4, gocv.MatTypeCV8UC1)
	released, err := m.Clone()
	require.NoError(t, err)
	released.Close()
	_, err = Compose(View{Title: "released", Panels: []Panel{{Label: "gone", Mat: released}}}, image.Pt(100, 100))
	assert.Error(t, err)
}

func countInk(t *testing.T, m *safe.Mat) int {
	t.Helper()
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(m.GetMat(), &gray, gocv.ColorBGRToGray)
	inverted := gocv.NewMat()
	defer inverted.Close()
	gocv.BitwiseNot(gray, &inverted)
	return gocv.CountNonZero(inverted)
}

func TestPlotHistogram(t *testing.T) {
	hist := &models.Histogram{}
	for b := 0; b < models.HistogramBins; b++ {
		hist.Color[0][b] = float64(b)
		hist.Color[2][b] = float64(255 - b)
	}
	hist.Gray[128] = 50

	curves, err := PlotHistogram(hist, models.HistogramCurves, nil)
	require.NoError(t, err)
	defer curves.Close()
	lines, err := PlotHistogram(hist, models.HistogramLines, nil)
	require.NoError(t, err)
	defer lines.Close()

	for _, p := range []*safe.Mat{curves.Color, curves.Gray, lines.Color, lines.Gray} {
		assert.Equal(t, plotWidth, p.Cols())
		assert.Equal(t, plotHeight, p.Rows())
		assert.Equal(t, 3, p.Channels())
	}
	// Filled bars cover more of the canvas than the outline.
	assert.Greater(t, countInk(t, lines.Color), countInk(t, curves.Color))

	_, err = PlotHistogram(hist, models.HistogramMode(9), nil)
	assert.ErrorIs(t, err, models.ErrModeOutOfRange)
}

func TestBucketPoint(t *testing.T) {
	assert.Equal(t, image.Pt(plotMargin, plotHeight-plotMargin), bucketPoint(0, 0, 10))
	assert.Equal(t, image.Pt(plotWidth-plotMargin, plotMargin), bucketPoint(255, 10, 10))
	assert.Equal(t, image.Pt(plotMargin, plotHeight-plotMargin), bucketPoint(0, 0, 0))
}

func TestFit(t *testing.T) {
	small := image.NewRGBA(image.Rect(0, 0, 100, 50))
	assert.Same(t, small, Fit(small, image.Pt(200, 200)))

	big := image.NewRGBA(image.Rect(0, 0, 1000, 500))
	got := Fit(big, image.Pt(200, 200))
	assert.Equal(t, image.Rect(0, 0, 200, 100), got.Bounds())
}

func TestEncode(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 8, 4))
	img.Set(1, 1, color.Gray{Y: 200})

	tests := []struct {
		ext    string
		decode func(*bytes.Buffer) (image.Image, error)
	}{
		{".png", func(b *bytes.Buffer) (image.Image, error) { return png.Decode(b) }},
		{"", func(b *bytes.Buffer) (image.Image, error) { return png.Decode(b) }},
		{".JPG", func(b *bytes.Buffer) (image.Image, error) { return jpeg.Decode(b) }},
		{"jpeg", func(b *bytes.Buffer) (image.Image, error) { return jpeg.Decode(b) }},
	}

	for _, tt := range tests {
		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, img, tt.ext), tt.ext)
		decoded, err := tt.decode(&buf)
		require.NoError(t, err, tt.ext)
		assert.Equal(t, img.Bounds(), decoded.Bounds())
	}

	assert.Error(t, Encode(&bytes.Buffer{}, nil, ".png"))
}

func TestSnapshotName(t *testing.T) {
	at := time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)

	assert.Equal(t, "scharr-gradient-x-axis-20240102-150405.png", SnapshotName("Scharr Gradient (X-Axis)", at))
	assert.Equal(t, "view-20240102-150405.png", SnapshotName("  ", at))

	h := NewHighGUI(image.Pt(640, 480), logger.NewNop())
	assert.Equal(t, "edge-detection-20240102-150405.png", h.snapshotPath("Edge Detection", at))
}

func TestNoneRenderer(t *testing.T) {
	r := NewNone(logger.NewNop())
	assert.NoError(t, r.Show(context.Background(), View{Title: "x"}))
	assert.NoError(t, r.Close())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, r.Show(ctx, View{Title: "x"}), context.Canceled)
}
