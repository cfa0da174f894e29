// Package engine defines the boundary to the external browser audit
// engine. The engine is invoked once per (url, device, run) job and
// either writes a conformant JSON result file at the output path or
// fails with a human-readable message.
package engine

import (
	"context"
	"errors"
	"fmt"
)

// ErrAuditFailed marks a single failed audit invocation. Failures are
// per-job: the matrix runner logs them and moves on.
var ErrAuditFailed = errors.New("audit failed")

// Engine runs one browser performance audit.
type Engine interface {
	// Audit measures url on the given emulated device and writes the
	// raw JSON result document to outputPath.
	Audit(ctx context.Context, url, device, outputPath string) error
}

// auditError wraps an engine failure with its job coordinates.
func auditError(url, device, msg string) error {
	return fmt.Errorf("%w: %s on %s: %s", ErrAuditFailed, url, device, msg)
}
