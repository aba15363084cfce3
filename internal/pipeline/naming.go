package pipeline

import (
	"fmt"
	"path/filepath"

	"cv-analyser/internal/models"
)

// Output files live in <root>/<name>/<name><suffix>.jpeg.

// OutputDir is the directory receiving every output of the image name.
func OutputDir(root, name string) string {
	return filepath.Join(root, name)
}

// Buffer distinguishes the two halves of an ImagePair in file names.
type Buffer string

const (
	ColorBuffer Buffer = "color"
	GrayBuffer  Buffer = "gray"
)

// OutputName builds the file base for a transform result: the image name, the
// operation tag and the buffer, e.g. "A_moderate-color".
func OutputName(name, operation string, buffer Buffer) string {
	return fmt.Sprintf("%s_%s-%s", name, operation, buffer)
}

func DenoiseName(name string, q models.DenoiseQuality, buffer Buffer) string {
	return OutputName(name, q.String(), buffer)
}

func GradientName(name string, m models.GradientMode, buffer Buffer) string {
	return OutputName(name, m.String(), buffer)
}

func EdgesName(name string, buffer Buffer) string {
	return OutputName(name, "edges", buffer)
}

// HistogramName names the single composite histogram plot.
func HistogramName(name string, m models.HistogramMode) string {
	return fmt.Sprintf("%s_histogram-%s", name, m)
}
