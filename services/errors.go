package services

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrValidation       = errors.New("validation error")
	ErrTaskNotFound     = errors.New("task not found")
	ErrStoreUnavailable = errors.New("task store unavailable")
)

var (
	ErrTitleRequired   = fmt.Errorf("%w: title is required", ErrValidation)
	ErrInvalidPriority = fmt.Errorf("%w: priority must be one of low, medium, high", ErrValidation)
)
