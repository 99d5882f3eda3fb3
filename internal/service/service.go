// Package service defines the backend-agnostic interface for task uploads.
package service

import (
	"context"

	"taskseed/internal/dummy"
)

// Service defines the interface for task backend operations.
// Commands never talk HTTP directly.
type Service interface {
	// CreateTask submits one record as a single creation request.
	CreateTask(ctx context.Context, rec dummy.Record) error

	// CreateTasks submits records as one batch request.
	// A nil error means the batch as a whole was accepted; the returned
	// results carry per-record outcomes in submission order when the
	// backend reports them.
	CreateTasks(ctx context.Context, recs []dummy.Record) ([]ActionResult, error)

	// TaskCount returns the number of tasks in the configured project.
	TaskCount(ctx context.Context) (int, error)
}
