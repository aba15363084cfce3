package conversion

import (
	"testing"

	"cv-analyser/internal/models"
	"cv-analyser/internal/opencv/memory"
	"cv-analyser/internal/opencv/safe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func TestConvertDirections(t *testing.T) {
	tracker := memory.NewManager()
	gray, err := safe.NewMatWithTracker(3, 4, gocv.MatTypeCV8UC1, tracker, "gray")
	require.NoError(t, err)
	defer gray.Close()

	colorMat, err := Convert(gray, models.GrayToColor, "color")
	require.NoError(t, err)
	defer colorMat.Close()
	assert.Equal(t, 3, colorMat.Channels())
	assert.Same(t, tracker, colorMat.Tracker().(*memory.Manager))

	back, err := Convert(colorMat, models.ColorToGray, "back")
	require.NoError(t, err)
	defer back.Close()
	assert.Equal(t, 1, back.Channels())

	_, err = Convert(colorMat, models.GrayToColor, "bad")
	assert.Error(t, err)
	assert.EqualValues(t, 3, tracker.Stats().ActiveMats)
}

func TestToDepth(t *testing.T) {
	src, err := safe.NewMat(2, 2, gocv.MatTypeCV8UC3)
	require.NoError(t, err)
	defer src.Close()

	same, err := ToDepth(src, 3, "same")
	require.NoError(t, err)
	defer same.Close()
	assert.NotEqual(t, src.ID(), same.ID())

	gray, err := ToDepth(src, 1, "gray")
	require.NoError(t, err)
	defer gray.Close()
	assert.Equal(t, 1, gray.Channels())

	_, err = ToDepth(gray, 2, "two")
	assert.Error(t, err)
}

func TestMatToImageReordersChannels(t *testing.T) {
	blue := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 0, 0, 0), 1, 2, gocv.MatTypeCV8UC3)
	mat, err := safe.Adopt(blue, nil, "blue")
	require.NoError(t, err)
	defer mat.Close()

	out, err := MatToImage(mat)
	require.NoError(t, err)
	r, g, b, _ := out.At(1, 0).RGBA()
	assert.Equal(t, [3]uint32{0, 0, 0xffff}, [3]uint32{r, g, b})

	wide := gocv.NewMatWithSize(1, 1, gocv.MatTypeCV64FC1)
	wideMat, err := safe.Adopt(wide, nil, "wide")
	require.NoError(t, err)
	defer wideMat.Close()
	_, err = MatToImage(wideMat)
	assert.Error(t, err)
}
