package render

import (
	"context"
	"fmt"
	"image"
	"sync"

	"cv-analyser/internal/logger"
	"cv-analyser/internal/opencv/conversion"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

// Fyne shows each view in its own window of a running fyne app. The app's
// event loop owns the main goroutine; Show is called from the session
// goroutine and blocks until the window is closed.
type Fyne struct {
	app    fyne.App
	limit  image.Point
	logger logger.Logger
	quit   sync.Once
}

func NewFyne(app fyne.App, limit image.Point, log logger.Logger) *Fyne {
	return &Fyne{app: app, limit: limit, logger: log}
}

func (f *Fyne) Show(ctx context.Context, view View) error {
	if len(view.Panels) == 0 {
		return fmt.Errorf("view %q has no panels", view.Title)
	}

	// Copy everything out of the Mats before handing control to the UI
	// thread; the caller may release them as soon as Show returns.
	cols := min(gridColumns, len(view.Panels))
	rows := (len(view.Panels) + cols - 1) / cols
	cell := image.Pt(f.limit.X/cols, f.limit.Y/rows)

	images := make([]image.Image, len(view.Panels))
	for i, p := range view.Panels {
		img, err := conversion.MatToImage(p.Mat)
		if err != nil {
			return fmt.Errorf("panel %q: %w", p.Label, err)
		}
		images[i] = Fit(img, cell)
	}

	composite, err := Compose(view, f.limit)
	if err != nil {
		return err
	}
	snapshot, err := conversion.MatToImage(composite)
	composite.Close()
	if err != nil {
		return err
	}

	closed := make(chan struct{})
	opened := make(chan fyne.Window, 1)

	fyne.Do(func() {
		w := f.app.NewWindow(view.Title)

		grid := container.NewGridWithColumns(cols)
		for i, p := range view.Panels {
			img := canvas.NewImageFromImage(images[i])
			img.FillMode = canvas.ImageFillContain
			img.ScaleMode = canvas.ImageScaleSmooth
			size := images[i].Bounds().Size()
			img.SetMinSize(fyne.NewSize(float32(size.X), float32(size.Y)))

			grid.Add(container.NewBorder(
				widget.NewRichTextFromMarkdown("**"+p.Label+"**"),
				nil, nil, nil,
				img,
			))
		}

		save := widget.NewButton("Save view…", func() {
			f.saveSnapshot(w, snapshot)
		})
		done := widget.NewButton("Close", w.Close)

		w.SetContent(container.NewBorder(nil, container.NewHBox(save, done), nil, nil, grid))
		w.SetOnClosed(func() { close(closed) })
		w.Show()
		opened <- w
	})

	select {
	case <-closed:
		return nil
	case <-ctx.Done():
		fyne.Do(func() {
			select {
			case w := <-opened:
				w.Close()
			default:
			}
		})
		return ctx.Err()
	}
}

func (f *Fyne) saveSnapshot(w fyne.Window, snapshot image.Image) {
	dialog.ShowFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			f.logger.Error("Renderer", err, nil)
			dialog.ShowError(err, w)
			return
		}
		if writer == nil {
			return
		}
		defer writer.Close()

		if err := Encode(writer, snapshot, writer.URI().Extension()); err != nil {
			f.logger.Error("Renderer", err, map[string]interface{}{"uri": writer.URI().String()})
			dialog.ShowError(err, w)
			return
		}
		f.logger.Info("Renderer", "view saved", map[string]interface{}{"uri": writer.URI().String()})
	}, w)
}

// Close quits the fyne app, which returns control to the main goroutine.
// Later calls do nothing.
func (f *Fyne) Close() error {
	f.quit.Do(func() { fyne.Do(f.app.Quit) })
	return nil
}
