package models

import (
	"fmt"

	"cv-analyser/internal/opencv/safe"
)

// ImagePair is the paired color (8UC3, BGR) and gray-scale (8UC1) rendition
// of one image together with the base name used for output files.
//
// Both buffers always have the same size. A pair is never modified in place;
// transforms build a new one.
type ImagePair struct {
	Color *safe.Mat
	Gray  *safe.Mat
	Name  string
}

// NewImagePair takes ownership of color and gray. On error both are closed.
func NewImagePair(color, gray *safe.Mat, name string) (*ImagePair, error) {
	if err := safe.ValidatePair(color, gray, "image pair"); err != nil {
		if color != nil {
			color.Close()
		}
		if gray != nil {
			gray.Close()
		}
		return nil, fmt.Errorf("%w: %v", ErrPairMismatch, err)
	}

	return &ImagePair{Color: color, Gray: gray, Name: name}, nil
}

func (p *ImagePair) Width() int {
	return p.Color.Cols()
}

func (p *ImagePair) Height() int {
	return p.Color.Rows()
}

// Validate re-checks the pair contract; used by the transforms before any
// native call.
func (p *ImagePair) Validate(operation string) error {
	if p == nil {
		return fmt.Errorf("%w: nil pair for %s", ErrPairMismatch, operation)
	}
	if err := safe.ValidatePair(p.Color, p.Gray, operation); err != nil {
		return fmt.Errorf("%w: %v", ErrPairMismatch, err)
	}
	return nil
}

func (p *ImagePair) Clone() (*ImagePair, error) {
	color, err := p.Color.Clone()
	if err != nil {
		return nil, fmt.Errorf("clone color buffer: %w", err)
	}
	gray, err := p.Gray.Clone()
	if err != nil {
		color.Close()
		return nil, fmt.Errorf("clone gray buffer: %w", err)
	}
	return NewImagePair(color, gray, p.Name)
}

// Close releases both buffers. Safe to call more than once and on nil.
func (p *ImagePair) Close() {
	if p == nil {
		return
	}
	if p.Color != nil {
		p.Color.Close()
	}
	if p.Gray != nil {
		p.Gray.Close()
	}
}
