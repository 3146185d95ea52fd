package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrValidation rejects an input before anything is written.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound reports a referenced entity that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists reports an award that is already on the ledger.
	ErrAlreadyExists = errors.New("already exists")
	// ErrStorage wraps every persistence failure. The operation left no partial state and may be retried.
	ErrStorage = errors.New("storage failure")
)

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrStorage) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}

// classify keeps domain errors intact and marks everything else as a storage failure.
func classify(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrValidation), errors.Is(err, ErrNotFound), errors.Is(err, ErrAlreadyExists):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	default:
		return storageErr(op, err)
	}
}
