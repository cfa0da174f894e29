package runner

import "context"

// Notifier receives matrix lifecycle notifications. This is a pure
// extension point for external observers; the pipeline does not depend
// on it for correctness.
type Notifier interface {
	// MatrixStarted is called before the first job executes.
	MatrixStarted(ctx context.Context, matrix Matrix)
	// MatrixCompleted is called after every job has finished.
	MatrixCompleted(ctx context.Context, matrix Matrix)
}

// NoopNotifier discards all notifications.
type NoopNotifier struct{}

// MatrixStarted does nothing.
func (NoopNotifier) MatrixStarted(ctx context.Context, matrix Matrix) {}

// MatrixCompleted does nothing.
func (NoopNotifier) MatrixCompleted(ctx context.Context, matrix Matrix) {}
