// Package activity keeps the officer-facing trail of submissions, status
// changes and borrower notifications.
package activity

import (
	"context"

	"loan-origination/internal/models"
)

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// Recorder stores activity events. Record never fails the caller; problems
// are logged by the implementation.
type Recorder interface {
	Record(ctx context.Context, event models.ActivityEvent)
	Search(ctx context.Context, q models.ActivityQuery) ([]models.ActivityEvent, error)
}

// Nop is used when activity logging is disabled.
type Nop struct{}

func (Nop) Record(context.Context, models.ActivityEvent) {}

func (Nop) Search(context.Context, models.ActivityQuery) ([]models.ActivityEvent, error) {
	return []models.ActivityEvent{}, nil
}

func clampLimit(n int) int {
	switch {
	case n <= 0:
		return DefaultLimit
	case n > MaxLimit:
		return MaxLimit
	default:
		return n
	}
}
