package worker

import (
	"context"
)

// Worker is the common contract for background workers.
type Worker interface {
	Start(ctx context.Context) error
	Stop() error
	Name() string
}
