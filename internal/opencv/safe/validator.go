package safe

import (
	"fmt"
)

func ValidateMatForOperation(mat *Mat, operation string) error {
	if mat == nil {
		return fmt.Errorf("Mat is nil for operation: %s", operation)
	}

	if !mat.IsValid() {
		return fmt.Errorf("Mat is invalid for operation: %s", operation)
	}

	if mat.Empty() {
		return fmt.Errorf("Mat is empty for operation: %s", operation)
	}

	if mat.Rows() <= 0 || mat.Cols() <= 0 {
		return fmt.Errorf("Mat has invalid dimensions %dx%d for operation: %s",
			mat.Cols(), mat.Rows(), operation)
	}

	return nil
}

// ValidatePair checks the color/gray contract: a 3-channel and a 1-channel
// buffer of identical size.
func ValidatePair(color, gray *Mat, operation string) error {
	if err := ValidateMatForOperation(color, operation); err != nil {
		return fmt.Errorf("color buffer: %w", err)
	}
	if err := ValidateMatForOperation(gray, operation); err != nil {
		return fmt.Errorf("gray buffer: %w", err)
	}

	if color.Channels() != 3 {
		return fmt.Errorf("color buffer has %d channels for operation: %s", color.Channels(), operation)
	}
	if gray.Channels() != 1 {
		return fmt.Errorf("gray buffer has %d channels for operation: %s", gray.Channels(), operation)
	}

	if color.Rows() != gray.Rows() || color.Cols() != gray.Cols() {
		return fmt.Errorf("color %dx%d and gray %dx%d differ for operation: %s",
			color.Cols(), color.Rows(), gray.Cols(), gray.Rows(), operation)
	}

	return nil
}
