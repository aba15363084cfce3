package transform

import (
	"fmt"

	"cv-analyser/internal/models"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// HistogramGenerate counts pixel intensities per channel: blue, green and
// red of the color buffer and the gray buffer. Each table has 256 buckets over
// [0, 256) and sums exactly to the pixel count.
func HistogramGenerate(pair *models.ImagePair) (*models.Histogram, error) {
	if err := pair.Validate("histogram"); err != nil {
		return nil, err
	}

	hist := &models.Histogram{}

	channels := gocv.Split(pair.Color.GetMat())
	defer func() {
		for _, ch := range channels {
			ch.Close()
		}
	}()
	if len(channels) != len(hist.Color) {
		return nil, fmt.Errorf("%w: color buffer split into %d channels", models.ErrPairMismatch, len(channels))
	}

	for i, ch := range channels {
		if err := countBuckets(ch, &hist.Color[i]); err != nil {
			return nil, fmt.Errorf("%s channel: %w", models.ColorChannelNames[i], err)
		}
	}
	if err := countBuckets(pair.Gray.GetMat(), &hist.Gray); err != nil {
		return nil, fmt.Errorf("gray channel: %w", err)
	}

	return hist, nil
}

// countBuckets tallies every sample of a single-channel 8-bit Mat. Counts are
// accumulated as integers; float32 tables would round above 2^24 samples.
func countBuckets(src gocv.Mat, dst *[models.HistogramBins]float64) error {
	if src.Type() != gocv.MatTypeCV8UC1 {
		return fmt.Errorf("expected 8-bit single channel, got %v", src.Type())
	}
	if !src.IsContinuous() {
		dense := src.Clone()
		defer dense.Close()
		src = dense
	}

	samples, err := src.DataPtrUint8()
	if err != nil {
		return fmt.Errorf("read samples: %w", err)
	}

	var counts [models.HistogramBins]int64
	for _, v := range samples {
		counts[v]++
	}
	for b, n := range counts {
		dst[b] = float64(n)
	}
	return nil
}

// Summarize derives per-channel statistics from the bucket counts. Color
// channels come first in blue, green, red order, gray last.
func Summarize(hist *models.Histogram) []models.ChannelSummary {
	summaries := make([]models.ChannelSummary, 0, len(hist.Color)+1)
	for i := range hist.Color {
		summaries = append(summaries, summarizeChannel(models.ColorChannelNames[i], hist.Color[i][:]))
	}
	return append(summaries, summarizeChannel("gray", hist.Gray[:]))
}

var bucketValues = func() []float64 {
	v := make([]float64, models.HistogramBins)
	for i := range v {
		v[i] = float64(i)
	}
	return v
}()

func summarizeChannel(name string, counts []float64) models.ChannelSummary {
	s := models.ChannelSummary{Channel: name, Min: -1, Max: -1}

	s.Pixels = floats.Sum(counts)
	if s.Pixels == 0 {
		return s
	}

	mean, std := stat.MeanStdDev(bucketValues, counts)
	s.Mean = mean
	if s.Pixels > 1 {
		s.StdDev = std
	}
	s.Mode = floats.MaxIdx(counts)

	for i, c := range counts {
		if c == 0 {
			continue
		}
		if s.Min < 0 {
			s.Min = i
		}
		s.Max = i
	}
	return s
}
