package session

import (
	"context"
	"fmt"
	"strings"

	"cv-analyser/internal/models"
	"cv-analyser/internal/pipeline"
	"cv-analyser/internal/prompt"
	"cv-analyser/internal/render"
	"cv-analyser/internal/transform"
)

func (c *Controller) load(ctx context.Context) error {
	c.prompter.Println("Enter the path to the image, including the file extension.")
	c.prompter.Println("Supported formats: " + strings.Join(pipeline.SupportedFormats(), " "))

	out, err := prompt.Ask(ctx, c.prompter, "Path: ", c.codec.Load)
	if err != nil {
		return err
	}
	if !out.Accepted {
		c.prompter.Println("No image read; keeping the current one.")
		return nil
	}

	c.replace(out.Value)
	c.prompter.Printf("Loaded %s (%dx%d).\n", out.Value.Name, out.Value.Width(), out.Value.Height())
	return nil
}

func (c *Controller) display(ctx context.Context) error {
	c.show(ctx, render.View{
		Title: "Original Images",
		Panels: []render.Panel{
			{Label: "Color Image", Mat: c.pair.Color},
			{Label: "Gray-scale Image", Mat: c.pair.Gray},
		},
	})
	return nil
}

func (c *Controller) denoise(ctx context.Context) error {
	c.prompter.Println(denoiseText)
	out, err := prompt.Ask(ctx, c.prompter, "Enter a number between 1-3 indicating the quality: ", models.ParseDenoiseQuality)
	if err != nil || !out.Accepted {
		return c.abandoned("denoise", err)
	}
	quality := out.Value

	result, err := c.apply("denoise", map[string]interface{}{"quality": quality.String()}, func() (*models.ImagePair, error) {
		return transform.Denoise(c.pair, quality)
	})
	if err != nil {
		return nil
	}

	return c.finish(ctx, result, output{
		title:     "De-noised Images",
		label:     "De-noised",
		colorName: pipeline.DenoiseName(c.pair.Name, quality, pipeline.ColorBuffer),
		grayName:  pipeline.DenoiseName(c.pair.Name, quality, pipeline.GrayBuffer),
	})
}

func (c *Controller) gradient(ctx context.Context) error {
	c.prompter.Println(gradientText)
	out, err := prompt.Ask(ctx, c.prompter, "Enter a number between 1-3 indicating the gradient: ", models.ParseGradientMode)
	if err != nil || !out.Accepted {
		return c.abandoned("gradient", err)
	}
	mode := out.Value

	result, err := c.apply("gradient", map[string]interface{}{"mode": mode.String()}, func() (*models.ImagePair, error) {
		return transform.Gradient(c.pair, mode)
	})
	if err != nil {
		return nil
	}

	return c.finish(ctx, result, output{
		title:     mode.Label(),
		label:     mode.Label() + " on",
		colorName: pipeline.GradientName(c.pair.Name, mode, pipeline.ColorBuffer),
		grayName:  pipeline.GradientName(c.pair.Name, mode, pipeline.GrayBuffer),
	})
}

func (c *Controller) edges(ctx context.Context) error {
	def := c.opts.Edges

	lower, err := prompt.Ask(ctx, c.prompter,
		fmt.Sprintf("Enter the lower gradient threshold (blank for the default = %d): ", def.Lower),
		func(line string) (int, error) { return models.ParseThreshold(line, def.Lower) })
	if err != nil || !lower.Accepted {
		return c.abandoned("edges", err)
	}

	upper, err := prompt.Ask(ctx, c.prompter,
		fmt.Sprintf("Enter the upper gradient threshold (blank for the default = %d): ", def.Upper),
		func(line string) (int, error) { return models.ParseThreshold(line, def.Upper) })
	if err != nil || !upper.Accepted {
		return c.abandoned("edges", err)
	}

	thresholds := models.EdgeThresholds{Lower: lower.Value, Upper: upper.Value}
	if thresholds.Lower > thresholds.Upper {
		c.prompter.Printf("Lower threshold is above the upper one; using %d and %d.\n", thresholds.Upper, thresholds.Lower)
	}

	result, err := c.apply("edges", map[string]interface{}{"lower": thresholds.Lower, "upper": thresholds.Upper}, func() (*models.ImagePair, error) {
		return transform.DetectEdge(c.pair, thresholds)
	})
	if err != nil {
		return nil
	}

	return c.finish(ctx, result, output{
		title:     "Edge Detection",
		label:     "Edges in",
		colorName: pipeline.EdgesName(c.pair.Name, pipeline.ColorBuffer),
		grayName:  pipeline.EdgesName(c.pair.Name, pipeline.GrayBuffer),
	})
}

func (c *Controller) histogram(ctx context.Context) error {
	c.prompter.Println(histogramText)
	out, err := prompt.Ask(ctx, c.prompter,
		fmt.Sprintf("Enter 1 or 2 (blank for %s): ", c.opts.HistogramMode),
		func(line string) (models.HistogramMode, error) { return models.ParseHistogramMode(line, c.opts.HistogramMode) })
	if err != nil || !out.Accepted {
		return c.abandoned("histogram", err)
	}
	mode := out.Value

	source := c.pair
	if c.opts.DenoiseBeforeHistogram {
		denoised, err := c.apply("histogram_denoise", map[string]interface{}{"quality": models.DenoiseLow.String()}, func() (*models.ImagePair, error) {
			return transform.Denoise(c.pair, models.DenoiseLow)
		})
		if err != nil {
			return nil
		}
		defer denoised.Close()
		source = denoised
	}

	stop := c.timings.Start("histogram")
	hist, err := transform.HistogramGenerate(source)
	elapsed := stop()
	if err != nil {
		c.transformFailed("histogram", err)
		return nil
	}
	summaries := transform.Summarize(hist)
	c.logger.Info("Session", "transform applied", map[string]interface{}{
		"operation": "histogram",
		"mode":      mode.String(),
		"duration":  elapsed,
	})
	c.printSummary(summaries)

	plots, err := render.PlotHistogram(hist, mode, source.Color.Tracker())
	if err != nil {
		c.transformFailed("histogram", err)
		return nil
	}
	defer plots.Close()

	preview, err := c.prompter.Confirm(ctx, previewQuestion)
	if err != nil {
		return err
	}
	if preview {
		c.show(ctx, render.View{
			Title: "Histograms",
			Panels: []render.Panel{
				{Label: "Color Image", Mat: source.Color},
				{Label: "Color Frequency Histogram", Mat: plots.Color},
				{Label: "Gray-scale Image", Mat: source.Gray},
				{Label: "Relative Light Intensity Distribution", Mat: plots.Gray},
			},
		})
	}

	save, err := c.prompter.Confirm(ctx, saveQuestion)
	if err != nil || !save {
		return err
	}

	composite, err := render.Compose(render.View{
		Title: "Histograms: " + c.pair.Name,
		Panels: []render.Panel{
			{Label: "Color Frequency", Mat: plots.Color},
			{Label: "Relative Light Intensity", Mat: plots.Gray},
		},
	}, histogramSheet)
	if err != nil {
		c.transformFailed("histogram", err)
		return nil
	}
	defer composite.Close()

	c.prompter.Println("Saving histogram plot.")
	return c.saveWithRetry(ctx, composite, pipeline.HistogramName(c.pair.Name, mode))
}

func (c *Controller) printSummary(summaries []models.ChannelSummary) {
	c.prompter.Printf("%-8s %10s %8s %8s %5s %5s %5s\n", "channel", "pixels", "mean", "stddev", "min", "max", "mode")
	for _, s := range summaries {
		c.prompter.Printf("%-8s %10.0f %8.2f %8.2f %5d %5d %5d\n", s.Channel, s.Pixels, s.Mean, s.StdDev, s.Min, s.Max, s.Mode)
	}
}
