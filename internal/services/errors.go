package services

import (
	"errors"
	"fmt"

	"resumebuilder/internal/apperrors"
)

// classify passes application errors through and turns anything else into an internal error.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.Internal(fmt.Errorf("%s: %w", op, err))
}
