package pipeline

import (
	"fmt"

	"cv-analyser/internal/models"
)

func saveError(err error) error {
	return fmt.Errorf("%w: %v", models.ErrSaveFailed, err)
}
