package pipeline

import (
	"bufio"
	"image/jpeg"
	"os"
	"path/filepath"
	"time"

	"cv-analyser/internal/opencv/conversion"
	"cv-analyser/internal/opencv/safe"
)

const (
	outputExtension = ".jpeg"
	jpegQuality     = 100
)

// Save writes mat as <dir>/<base>.jpeg at full JPEG quality. The file appears
// complete or not at all: data goes to a temporary file in dir that is synced
// and renamed into place. Every failure wraps models.ErrSaveFailed.
func (c *Codec) Save(mat *safe.Mat, dir, base string) (string, error) {
	start := time.Now()

	if err := safe.ValidateMatForOperation(mat, "save"); err != nil {
		return "", saveError(err)
	}

	img, err := conversion.MatToImage(mat)
	if err != nil {
		return "", saveError(err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", saveError(err)
	}

	tmp, err := os.CreateTemp(dir, "."+base+"-*.tmp")
	if err != nil {
		return "", saveError(err)
	}
	tmpPath := tmp.Name()
	c.track(tmpPath)
	defer c.untrack(tmpPath)

	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	w := bufio.NewWriter(tmp)
	if err := jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return "", saveError(err)
	}
	if err := w.Flush(); err != nil {
		return "", saveError(err)
	}
	if err := tmp.Sync(); err != nil {
		return "", saveError(err)
	}
	if err := tmp.Close(); err != nil {
		return "", saveError(err)
	}

	path := filepath.Join(dir, base+outputExtension)
	if err := os.Rename(tmpPath, path); err != nil {
		return "", saveError(err)
	}
	committed = true

	c.logger.Info("Codec", "image saved", map[string]interface{}{
		"path":     path,
		"width":    mat.Cols(),
		"height":   mat.Rows(),
		"duration": time.Since(start),
	})

	return path, nil
}
