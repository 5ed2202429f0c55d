package executor

import "context"

// Executor runs external programs such as the platform URL opener.
type Executor interface {
	// Execute runs name with args and returns its stdout.
	Execute(ctx context.Context, name string, args ...string) (string, error)
}
