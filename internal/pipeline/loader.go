package pipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"cv-analyser/internal/models"
	"cv-analyser/internal/opencv/safe"

	"gocv.io/x/gocv"
)

var supportedFormats = map[string]bool{
	".bmp": true, ".dib": true,
	".jpeg": true, ".jpg": true, ".jpe": true,
	".jp2":  true,
	".png":  true,
	".webp": true,
	".pbm":  true, ".pgm": true, ".ppm": true,
	".sr":   true, ".ras": true,
	".tiff": true, ".tif": true,
}

// SupportedFormats lists the accepted file extensions in sorted order.
func SupportedFormats() []string {
	formats := make([]string, 0, len(supportedFormats))
	for ext := range supportedFormats {
		formats = append(formats, ext)
	}
	sort.Strings(formats)
	return formats
}

// Load decodes the image at path into a color/gray pair named after the file
// without its extension.
func (c *Codec) Load(path string) (*models.ImagePair, error) {
	start := time.Now()

	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("%w: empty path", models.ErrPathNotFound)
	}

	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("%w: %s", models.ErrPathNotFound, path)
	case err != nil:
		return nil, fmt.Errorf("%w: %v", models.ErrPathNotFound, err)
	case info.IsDir():
		return nil, fmt.Errorf("%w: %s is a directory", models.ErrPathNotFound, path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !supportedFormats[ext] {
		return nil, fmt.Errorf("%w: %q", models.ErrUnsupportedFormat, ext)
	}

	c.logger.Debug("Codec", "loading image", map[string]interface{}{
		"path":      path,
		"extension": ext,
		"size":      info.Size(),
	})

	color, err := c.read(path, gocv.IMReadColor, "loaded_color")
	if err != nil {
		return nil, err
	}
	gray, err := c.read(path, gocv.IMReadGrayScale, "loaded_gray")
	if err != nil {
		color.Close()
		return nil, err
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	pair, err := models.NewImagePair(color, gray, name)
	if err != nil {
		return nil, err
	}

	c.logger.Info("Codec", "image loaded", map[string]interface{}{
		"name":     name,
		"width":    pair.Width(),
		"height":   pair.Height(),
		"duration": time.Since(start),
	})

	return pair, nil
}

func (c *Codec) read(path string, flags gocv.IMReadFlag, tag string) (*safe.Mat, error) {
	mat := gocv.IMRead(path, flags)
	if mat.Empty() {
		mat.Close()
		return nil, fmt.Errorf("%w: cannot decode %s", models.ErrUnsupportedFormat, filepath.Base(path))
	}
	return safe.Adopt(mat, c.memTracker, tag)
}
