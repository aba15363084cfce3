package pipeline

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"cv-analyser/internal/logger"
	"cv-analyser/internal/models"
	"cv-analyser/internal/opencv/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 4), B: 90, A: 255})
		}
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func newCodec() (*Codec, *memory.Manager) {
	mgr := memory.NewManager()
	return NewCodec(mgr, logger.NewNop()), mgr
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writePNG(t, dir, "Sample.Image.PNG", 40, 30)
	codec, mgr := newCodec()

	pair, err := codec.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Sample.Image", pair.Name)
	assert.Equal(t, 40, pair.Width())
	assert.Equal(t, 30, pair.Height())
	assert.Equal(t, 3, pair.Color.Channels())
	assert.Equal(t, 1, pair.Gray.Channels())
	assert.Equal(t, int64(2), mgr.Stats().ActiveMats)

	pair.Close()
	assert.Zero(t, mgr.Stats().ActiveMats)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	gif := filepath.Join(dir, "anim.gif")
	require.NoError(t, os.WriteFile(gif, []byte("GIF89a"), 0o644))
	corrupt := filepath.Join(dir, "broken.png")
	require.NoError(t, os.WriteFile(corrupt, []byte("not an image"), 0o644))

	tests := []struct {
		name string
		path string
		want error
	}{
		{name: "missing file", path: filepath.Join(dir, "missing.png"), want: models.ErrPathNotFound},
		{name: "empty path", path: "  ", want: models.ErrPathNotFound},
		{name: "directory", path: dir, want: models.ErrPathNotFound},
		{name: "extension not allowed", path: gif, want: models.ErrUnsupportedFormat},
		{name: "undecodable", path: corrupt, want: models.ErrUnsupportedFormat},
	}

	codec, mgr := newCodec()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pair, err := codec.Load(tt.path)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, pair)
		})
	}
	assert.Zero(t, mgr.Stats().ActiveMats)
}

func TestSupportedFormats(t *testing.T) {
	formats := SupportedFormats()
	assert.Len(t, formats, 15)
	assert.Contains(t, formats, ".jp2")
	assert.Contains(t, formats, ".tif")
	assert.NotContains(t, formats, ".gif")
	assert.IsIncreasing(t, formats)
}

func TestSaveIsAtomic(t *testing.T) {
	src := t.TempDir()
	codec, _ := newCodec()
	pair, err := codec.Load(writePNG(t, src, "A.png", 24, 16))
	require.NoError(t, err)
	defer pair.Close()

	out := OutputDir(filepath.Join(t.TempDir(), "output"), pair.Name)
	path, err := codec.Save(pair.Color, out, DenoiseName(pair.Name, models.DenoiseModerate, ColorBuffer))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "A_moderate-color.jpeg"), path)

	_, err = codec.Save(pair.Gray, out, DenoiseName(pair.Name, models.DenoiseModerate, GrayBuffer))
	require.NoError(t, err)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"A_moderate-color.jpeg", "A_moderate-gray.jpeg"}, names)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := jpeg.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 24, 16), img.Bounds())
}

func TestSaveFailure(t *testing.T) {
	dir := t.TempDir()
	codec, _ := newCodec()
	pair, err := codec.Load(writePNG(t, dir, "A.png", 8, 8))
	require.NoError(t, err)
	defer pair.Close()

	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	_, err = codec.Save(pair.Color, filepath.Join(blocker, "A"), "A_edges-color")
	assert.ErrorIs(t, err, models.ErrSaveFailed)

	closed, err := pair.Gray.Clone()
	require.NoError(t, err)
	closed.Close()
	_, err = codec.Save(closed, dir, "A_edges-gray")
	assert.ErrorIs(t, err, models.ErrSaveFailed)
	assert.NoFileExists(t, filepath.Join(dir, "A_edges-gray.jpeg"))
}

func TestShutdownRemovesInFlightFiles(t *testing.T) {
	dir := t.TempDir()
	codec, _ := newCodec()

	tmp, err := os.CreateTemp(dir, ".A-*.tmp")
	require.NoError(t, err)
	require.NoError(t, tmp.Close())
	codec.track(tmp.Name())

	codec.Shutdown()

	assert.NoFileExists(t, tmp.Name())
	assert.Empty(t, codec.inFlight)
}

func TestOutputNames(t *testing.T) {
	tests := []struct {
		got  string
		want string
	}{
		{DenoiseName("A", models.DenoiseLow, ColorBuffer), "A_low-color"},
		{DenoiseName("A", models.DenoiseHigh, GrayBuffer), "A_high-gray"},
		{GradientName("img", models.GradientLaplacian, ColorBuffer), "img_laplacian-color"},
		{GradientName("img", models.GradientScharrX, GrayBuffer), "img_scharr-x-gray"},
		{GradientName("img", models.GradientScharrY, ColorBuffer), "img_scharr-y-color"},
		{EdgesName("Photo", GrayBuffer), "Photo_edges-gray"},
		{HistogramName("Photo", models.HistogramCurves), "Photo_histogram-curves"},
		{HistogramName("Photo", models.HistogramLines), "Photo_histogram-lines"},
		{OutputDir("output", "Photo"), filepath.Join("output", "Photo")},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.got)
	}
}
