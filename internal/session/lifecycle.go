package session

import (
	"context"
	"image"

	"cv-analyser/internal/models"
	"cv-analyser/internal/opencv/safe"
	"cv-analyser/internal/pipeline"
	"cv-analyser/internal/render"
)

const (
	previewQuestion = "Preview output (Y/N)? "
	saveQuestion    = "Save output (Y/N)? "
	retryQuestion   = "Retry (Y/N)? "
)

// histogramSheet bounds the saved histogram composite.
var histogramSheet = image.Pt(1200, 800)

// output describes how a transform result is shown and named.
type output struct {
	title     string
	label     string
	colorName string
	grayName  string
}

// apply runs a transform and logs its parameters and duration. Failures are
// reported to the user and returned so the caller can stop.
func (c *Controller) apply(operation string, params map[string]interface{}, fn func() (*models.ImagePair, error)) (*models.ImagePair, error) {
	stop := c.timings.Start(operation)
	result, err := fn()
	elapsed := stop()
	if err != nil {
		c.transformFailed(operation, err)
		return nil, err
	}

	fields := map[string]interface{}{
		"operation": operation,
		"duration":  elapsed,
	}
	for k, v := range params {
		fields[k] = v
	}
	c.logger.Info("Session", "transform applied", fields)
	return result, nil
}

func (c *Controller) transformFailed(operation string, err error) {
	c.logger.Error("Session", err, map[string]interface{}{"operation": operation})
	c.prompter.Error(err)
}

// abandoned logs a dropped parameter prompt. err is passed through so closed
// input still ends the session.
func (c *Controller) abandoned(operation string, err error) error {
	if err != nil {
		return err
	}
	c.logger.Debug("Session", "parameters abandoned", map[string]interface{}{"operation": operation})
	c.prompter.Println("Nothing changed.")
	return nil
}

// finish offers preview and save for result, then makes it the working pair.
// result is owned by finish from here on.
func (c *Controller) finish(ctx context.Context, result *models.ImagePair, out output) error {
	preview, err := c.prompter.Confirm(ctx, previewQuestion)
	if err != nil {
		result.Close()
		return err
	}
	if preview {
		c.show(ctx, render.View{
			Title: out.title,
			Panels: []render.Panel{
				{Label: "Original Color Image", Mat: c.pair.Color},
				{Label: out.label + " Color Image", Mat: result.Color},
				{Label: "Original Gray-scale Image", Mat: c.pair.Gray},
				{Label: out.label + " Gray-scale Image", Mat: result.Gray},
			},
		})
	}

	save, err := c.prompter.Confirm(ctx, saveQuestion)
	if err != nil {
		result.Close()
		return err
	}
	if save {
		c.prompter.Println("Saving color image.")
		if err := c.saveWithRetry(ctx, result.Color, out.colorName); err != nil {
			result.Close()
			return err
		}
		c.prompter.Println("Saving gray-scale image.")
		if err := c.saveWithRetry(ctx, result.Gray, out.grayName); err != nil {
			result.Close()
			return err
		}
		c.prompter.Println("Done saving images.")
	}

	c.replace(result)
	return nil
}

// saveWithRetry saves one buffer, offering to retry that single save after
// each failure. Declining gives up on this buffer only.
func (c *Controller) saveWithRetry(ctx context.Context, mat *safe.Mat, base string) error {
	dir := pipeline.OutputDir(c.opts.OutputDir, c.pair.Name)

	for attempt := 1; ; attempt++ {
		path, err := c.codec.Save(mat, dir, base)
		if err == nil {
			c.prompter.Printf("Saved %s\n", path)
			return nil
		}

		c.logger.Error("Session", err, map[string]interface{}{
			"output":  base,
			"attempt": attempt,
		})
		c.prompter.Error(err)

		again, err := c.prompter.Confirm(ctx, retryQuestion)
		if err != nil {
			return err
		}
		if !again {
			c.prompter.Printf("Skipped %s.\n", base)
			return nil
		}
	}
}

// show hands a view to the renderer. Display problems never end the session.
func (c *Controller) show(ctx context.Context, view render.View) {
	if err := c.renderer.Show(ctx, view); err != nil && ctx.Err() == nil {
		c.logger.Error("Session", err, map[string]interface{}{"view": view.Title})
		c.prompter.Error(err)
	}
}
