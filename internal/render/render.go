// Package render displays labeled image panels. Rendering is read-only: a
// renderer never modifies or takes ownership of the Mats it is given.
package render

import (
	"context"

	"cv-analyser/internal/logger"
	"cv-analyser/internal/opencv/safe"
)

// Panel is one labeled image in a view.
type Panel struct {
	Label string
	Mat   *safe.Mat
}

// View is a titled set of panels shown together, laid out two per row.
type View struct {
	Title  string
	Panels []Panel
}

// Renderer shows a view and returns once the user dismisses it.
type Renderer interface {
	Show(ctx context.Context, view View) error
	Close() error
}

// None skips display. Used for headless runs.
type None struct {
	logger logger.Logger
}

func NewNone(log logger.Logger) *None {
	return &None{logger: log}
}

func (n *None) Show(ctx context.Context, view View) error {
	n.logger.Info("Renderer", "preview skipped, no display backend", map[string]interface{}{
		"title":  view.Title,
		"panels": len(view.Panels),
	})
	return ctx.Err()
}

func (n *None) Close() error {
	return nil
}
