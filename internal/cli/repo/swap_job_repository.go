package repo

import (
	"context"

	"DressCode/internal/cli/model"
)

// SwapJobRepository is the port to the try-on history of the current owner.
type SwapJobRepository interface {
	ObserveHistory(ctx context.Context) <-chan []model.SwapJob
	Get(ctx context.Context, id int64) (*model.SwapJob, error)
	Insert(ctx context.Context, job model.SwapJob) (int64, error)
	// Finish records the result of a job.
	Finish(ctx context.Context, id int64, status, resultImageURI string) error
	Delete(ctx context.Context, id int64) error
}
