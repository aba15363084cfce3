package render

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cv-analyser/internal/logger"

	"gocv.io/x/gocv"
)

const keyPollMillis = 100

// HighGUI shows each view as a composite in an OpenCV window. Any key closes
// the window; 's' first writes the composite as a PNG snapshot in the working
// directory.
type HighGUI struct {
	limit       image.Point
	snapshotDir string
	logger      logger.Logger
}

func NewHighGUI(limit image.Point, log logger.Logger) *HighGUI {
	return &HighGUI{limit: limit, snapshotDir: ".", logger: log}
}

func (h *HighGUI) snapshotPath(title string, at time.Time) string {
	return filepath.Join(h.snapshotDir, SnapshotName(title, at))
}

func (h *HighGUI) Show(ctx context.Context, view View) error {
	composite, err := Compose(view, h.limit)
	if err != nil {
		return err
	}
	defer composite.Close()

	window := gocv.NewWindow(view.Title)
	defer window.Close()
	window.IMShow(composite.GetMat())

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		key := window.WaitKey(keyPollMillis)
		switch {
		case key == 's' || key == 'S':
			if err := os.MkdirAll(h.snapshotDir, 0o755); err != nil {
				h.logger.Error("Renderer", err, map[string]interface{}{"dir": h.snapshotDir})
				continue
			}
			path := h.snapshotPath(view.Title, time.Now())
			if !gocv.IMWrite(path, composite.GetMat()) {
				h.logger.Error("Renderer", fmt.Errorf("could not write snapshot %s", path), nil)
				continue
			}
			h.logger.Info("Renderer", "snapshot written", map[string]interface{}{"path": path})
			return nil
		case key >= 0:
			return nil
		}

		if window.GetWindowProperty(gocv.WindowPropertyVisible) < 1 {
			return nil
		}
	}
}

func (h *HighGUI) Close() error {
	return nil
}

// SnapshotName derives a file name from a view title, e.g.
// "Laplacian Gradient" -> "laplacian-gradient-20240102-150405.png".
func SnapshotName(title string, at time.Time) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		slug = "view"
	}
	return fmt.Sprintf("%s-%s.png", slug, at.Format("20060102-150405"))
}
