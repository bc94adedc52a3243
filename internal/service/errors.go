package service

import (
	"errors"
	"fmt"
)

// Error kinds. Callers classify failures with errors.Is against these.
var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("not found")
	ErrStore      = errors.New("store error")
)

// Specific failures, each wrapping exactly one kind.
var (
	ErrItemRequired     = fmt.Errorf("%w: item name is required", ErrValidation)
	ErrMemberNotFound   = fmt.Errorf("%w: family member not found", ErrNotFound)
	ErrWishlistNotFound = fmt.Errorf("%w: wishlist not found", ErrNotFound)
	ErrItemNotFound     = fmt.Errorf("%w: item not found", ErrNotFound)
)

// storeError tags persistence failures with ErrStore. Domain errors returned
// from inside a store update pass through unchanged.
func storeError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrValidation) || errors.Is(err, ErrNotFound) {
		return err
	}
	return fmt.Errorf("failed to %s: %w: %w", op, ErrStore, err)
}
