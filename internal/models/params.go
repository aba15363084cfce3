package models

import (
	"fmt"
	"strconv"
	"strings"
)

// DenoiseQuality selects the non-local-means filter strength. The numeric
// values are the menu codes shown to the user.
type DenoiseQuality int

const (
	DenoiseLow DenoiseQuality = iota + 1
	DenoiseModerate
	DenoiseHigh
)

// DefaultDenoiseQuality is the recommended setting offered in the menu.
const DefaultDenoiseQuality = DenoiseModerate

// Strength is the filter strength h, used for both the luminance and the
// per-channel color weight.
func (q DenoiseQuality) Strength() float32 {
	switch q {
	case DenoiseLow:
		return 5
	case DenoiseModerate:
		return 10
	case DenoiseHigh:
		return 15
	default:
		return 0
	}
}

func (q DenoiseQuality) String() string {
	switch q {
	case DenoiseLow:
		return "low"
	case DenoiseModerate:
		return "moderate"
	case DenoiseHigh:
		return "high"
	default:
		return fmt.Sprintf("DenoiseQuality(%d)", int(q))
	}
}

func (q DenoiseQuality) Valid() bool {
	return q >= DenoiseLow && q <= DenoiseHigh
}

// ParseDenoiseQuality reads a menu code (1-3).
func ParseDenoiseQuality(input string) (DenoiseQuality, error) {
	code, err := parseCode(input)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrQualityOutOfRange, err)
	}
	q := DenoiseQuality(code)
	if !q.Valid() {
		return 0, fmt.Errorf("%w: %d is not between 1 and 3", ErrQualityOutOfRange, code)
	}
	return q, nil
}

// GradientMode selects the derivative operator.
type GradientMode int

const (
	GradientLaplacian GradientMode = iota + 1
	GradientScharrX
	GradientScharrY
)

const DefaultGradientMode = GradientLaplacian

func (m GradientMode) String() string {
	switch m {
	case GradientLaplacian:
		return "laplacian"
	case GradientScharrX:
		return "scharr-x"
	case GradientScharrY:
		return "scharr-y"
	default:
		return fmt.Sprintf("GradientMode(%d)", int(m))
	}
}

// Label is the human-readable title used in previews.
func (m GradientMode) Label() string {
	switch m {
	case GradientLaplacian:
		return "Laplacian Gradient"
	case GradientScharrX:
		return "Scharr Gradient (X-Axis)"
	case GradientScharrY:
		return "Scharr Gradient (Y-Axis)"
	default:
		return m.String()
	}
}

func (m GradientMode) Valid() bool {
	return m >= GradientLaplacian && m <= GradientScharrY
}

// ParseGradientMode reads a menu code (1-3).
func ParseGradientMode(input string) (GradientMode, error) {
	code, err := parseCode(input)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrModeOutOfRange, err)
	}
	m := GradientMode(code)
	if !m.Valid() {
		return 0, fmt.Errorf("%w: %d is not between 1 and 3", ErrModeOutOfRange, code)
	}
	return m, nil
}

// HistogramMode selects how frequency tables are plotted.
type HistogramMode int

const (
	HistogramCurves HistogramMode = iota + 1
	HistogramLines
)

const DefaultHistogramMode = HistogramCurves

func (m HistogramMode) String() string {
	switch m {
	case HistogramCurves:
		return "curves"
	case HistogramLines:
		return "lines"
	default:
		return fmt.Sprintf("HistogramMode(%d)", int(m))
	}
}

func (m HistogramMode) Valid() bool {
	return m == HistogramCurves || m == HistogramLines
}

// ParseHistogramMode reads a menu code (1-2). Blank input selects def.
func ParseHistogramMode(input string, def HistogramMode) (HistogramMode, error) {
	if strings.TrimSpace(input) == "" {
		return def, nil
	}
	code, err := parseCode(input)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrModeOutOfRange, err)
	}
	m := HistogramMode(code)
	if !m.Valid() {
		return 0, fmt.Errorf("%w: %d is not between 1 and 2", ErrModeOutOfRange, code)
	}
	return m, nil
}

// HistogramModeFromName maps a config value ("curves", "lines").
func HistogramModeFromName(name string) (HistogramMode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "curves":
		return HistogramCurves, nil
	case "lines":
		return HistogramLines, nil
	default:
		return 0, fmt.Errorf("%w: unknown histogram mode %q", ErrModeOutOfRange, name)
	}
}

// EdgeThresholds are the hysteresis bounds on gradient magnitude.
type EdgeThresholds struct {
	Lower int
	Upper int
}

// DefaultEdgeThresholds is the canonical default; AlternateUpperThreshold is
// the other upper bound some users expect and can select in the config file.
var DefaultEdgeThresholds = EdgeThresholds{Lower: 100, Upper: 200}

const AlternateUpperThreshold = 250

func (t EdgeThresholds) Validate() error {
	if t.Lower < 0 {
		return fmt.Errorf("%w: lower threshold %d is negative", ErrThresholdOutOfRange, t.Lower)
	}
	if t.Upper < 0 {
		return fmt.Errorf("%w: upper threshold %d is negative", ErrThresholdOutOfRange, t.Upper)
	}
	return nil
}

// Normalized orders the bounds so Lower <= Upper.
func (t EdgeThresholds) Normalized() EdgeThresholds {
	if t.Lower > t.Upper {
		return EdgeThresholds{Lower: t.Upper, Upper: t.Lower}
	}
	return t
}

// ParseThreshold reads a non-negative integer. Blank input selects def.
func ParseThreshold(input string, def int) (int, error) {
	if strings.TrimSpace(input) == "" {
		return def, nil
	}
	v, err := parseCode(input)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrThresholdOutOfRange, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("%w: %d is negative", ErrThresholdOutOfRange, v)
	}
	return v, nil
}

// ColorConversion names the direction of a channel-depth conversion.
type ColorConversion int

const (
	GrayToColor ColorConversion = iota + 1
	ColorToGray
)

func (c ColorConversion) String() string {
	switch c {
	case GrayToColor:
		return "gray-to-color"
	case ColorToGray:
		return "color-to-gray"
	default:
		return fmt.Sprintf("ColorConversion(%d)", int(c))
	}
}

func parseCode(input string) (int, error) {
	s := strings.TrimSpace(input)
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	return v, nil
}
