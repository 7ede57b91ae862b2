//go:generate mockgen -package mocks -destination mocks/interface.go -source=interface.go
package athena

import (
	"context"
)

// Executor runs SQL on the query engine.
type Executor interface {
	// Submit starts the query and returns its handle without waiting.
	Submit(ctx context.Context, sql string) (QueryHandle, error)
	// AwaitCompletion polls until the query reaches a terminal state, the timeout expires or ctx is done.
	AwaitCompletion(ctx context.Context, h QueryHandle) (QueryHandle, error)
	// Execute is Submit followed by AwaitCompletion.
	Execute(ctx context.Context, sql string) (QueryHandle, error)
}
