package models

// HistogramBins is the bucket count per channel: one bucket per 8-bit value.
const HistogramBins = 256

// ColorChannelNames is the fixed channel order of Histogram.Color.
var ColorChannelNames = [3]string{"blue", "green", "red"}

// Histogram holds per-channel frequency tables for an ImagePair.
type Histogram struct {
	Color [3][HistogramBins]float64
	Gray  [HistogramBins]float64
}

// ChannelSummary describes one frequency table.
type ChannelSummary struct {
	Channel string
	Pixels  float64
	Mean    float64
	StdDev  float64
	Min     int
	Max     int
	Mode    int
}
