// Package session runs the interactive menu loop. A Controller owns the
// working ImagePair and routes every transform through the preview, save and
// replace lifecycle.
package session

import (
	"context"
	"errors"
	"sync"

	"cv-analyser/internal/logger"
	"cv-analyser/internal/models"
	"cv-analyser/internal/opencv/memory"
	"cv-analyser/internal/opencv/safe"
	"cv-analyser/internal/prompt"
	"cv-analyser/internal/render"
	"cv-analyser/internal/timing"
)

// Codec loads images into pairs and saves single buffers.
type Codec interface {
	Load(path string) (*models.ImagePair, error)
	Save(mat *safe.Mat, dir, base string) (string, error)
}

// MemoryStats reports live Mat accounting for debug logs and the leak check
// at the end of a session.
type MemoryStats interface {
	Stats() memory.Stats
	LiveTags() []string
}

// Options are the session defaults taken from configuration.
type Options struct {
	OutputDir string

	// Edges are the threshold prompt defaults, used as given.
	Edges         models.EdgeThresholds
	HistogramMode models.HistogramMode

	// DenoiseBeforeHistogram counts a low-strength denoised copy instead of
	// the raw pixels.
	DenoiseBeforeHistogram bool

	Memory MemoryStats
}

type Controller struct {
	prompter *prompt.Prompter
	codec    Codec
	renderer render.Renderer
	opts     Options
	logger   logger.Logger
	timings  *timing.Tracker

	// mu is held while a menu action runs so Shutdown never releases the
	// pair under a transform.
	mu   sync.Mutex
	pair *models.ImagePair
}

func NewController(p *prompt.Prompter, codec Codec, renderer render.Renderer, opts Options, log logger.Logger) *Controller {
	if opts.HistogramMode == 0 {
		opts.HistogramMode = models.DefaultHistogramMode
	}
	return &Controller{
		prompter: p,
		codec:    codec,
		renderer: renderer,
		opts:     opts,
		logger:   log,
		timings:  timing.NewTracker(),
	}
}

// Run shows the menu until the user exits or input ends. The working pair is
// released on return. Closed input is a normal end of session.
func (c *Controller) Run(ctx context.Context) error {
	defer c.reportLiveMats()
	defer c.release()
	defer c.logTimings()

	c.prompter.Println(introText)

	for {
		c.prompter.Println(menuText)
		choice, err := prompt.Require(ctx, c.prompter, "Select option: ", parseMenuChoice)
		if err != nil {
			return c.finishRun(err)
		}

		if choice == menuExit {
			leave, err := c.prompter.Confirm(ctx, "Are you sure (Y/N)? ")
			if err != nil {
				return c.finishRun(err)
			}
			if leave {
				c.prompter.Println("Thank you for using cv-analyser!")
				return nil
			}
			continue
		}

		if err := c.dispatch(ctx, choice); err != nil {
			return c.finishRun(err)
		}
	}
}

func (c *Controller) finishRun(err error) error {
	if errors.Is(err, models.ErrInputClosed) {
		c.logger.Info("Session", "input closed, ending session", nil)
		return nil
	}
	return err
}

// Timings reports how long each transform took this session.
func (c *Controller) Timings() []timing.Summary {
	return c.timings.Summaries()
}

func (c *Controller) logTimings() {
	for _, s := range c.timings.Summaries() {
		c.logger.Info("Session", "operation timings", map[string]interface{}{
			"operation": s.Operation,
			"runs":      s.Count,
			"total":     s.Total,
			"mean":      s.Mean,
			"max":       s.Max,
		})
	}
}

// reportLiveMats warns about Mats still open once the working pair is gone.
func (c *Controller) reportLiveMats() {
	if c.opts.Memory == nil {
		return
	}
	if tags := c.opts.Memory.LiveTags(); len(tags) > 0 {
		c.logger.Warning("Session", "Mats still open at session end", map[string]interface{}{
			"count": len(tags),
			"tags":  tags,
		})
	}
}

// Preload loads path before the menu starts, as if chosen with option 1.
func (c *Controller) Preload(path string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	pair, err := c.codec.Load(path)
	if err != nil {
		return err
	}
	c.replace(pair)
	c.prompter.Printf("Loaded %s (%dx%d).\n", pair.Name, pair.Width(), pair.Height())
	return nil
}

// dispatch runs one menu action under the controller lock.
func (c *Controller) dispatch(ctx context.Context, choice int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch choice {
	case menuLoad:
		return c.load(ctx)
	case menuHelp:
		c.prompter.Println(helpText)
		return nil
	}

	if c.pair == nil {
		c.prompter.Error(models.ErrNoImageLoaded)
		c.prompter.Println("Read an image first (option 1).")
		return nil
	}

	switch choice {
	case menuDisplay:
		return c.display(ctx)
	case menuDenoise:
		return c.denoise(ctx)
	case menuGradient:
		return c.gradient(ctx)
	case menuEdges:
		return c.edges(ctx)
	case menuHistogram:
		return c.histogram(ctx)
	}
	return nil
}

// replace makes next the working pair and releases the previous one.
func (c *Controller) replace(next *models.ImagePair) {
	if c.pair != nil && c.pair != next {
		c.pair.Close()
	}
	c.pair = next

	if c.opts.Memory != nil {
		stats := c.opts.Memory.Stats()
		c.logger.Debug("Session", "working pair replaced", map[string]interface{}{
			"active_mats": stats.ActiveMats,
			"peak_mats":   stats.PeakMats,
		})
	}
}

func (c *Controller) release() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pair != nil {
		c.pair.Close()
		c.pair = nil
	}
}

// Shutdown releases the working pair. It waits for a running action to
// return; the cancelled context makes any open prompt return immediately.
func (c *Controller) Shutdown() {
	c.release()
	c.prompter.Close()
}
