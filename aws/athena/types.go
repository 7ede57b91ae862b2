package athena

import (
	"fmt"

	"github.com/aws/aws-sdk-go/service/athena"
	"github.com/pkg/errors"
)

const (
	StateQueued    = athena.QueryExecutionStateQueued
	StateRunning   = athena.QueryExecutionStateRunning
	StateSucceeded = athena.QueryExecutionStateSucceeded
	StateFailed    = athena.QueryExecutionStateFailed
	StateCancelled = athena.QueryExecutionStateCancelled
)

var ErrQueryTimeout = errors.New("timed out waiting for query to complete")

// QueryHandle identifies a submitted query and the last state seen for it.
type QueryHandle struct {
	ID    string
	State string
}

// Terminal reports whether polling can stop.
func (h QueryHandle) Terminal() bool {
	switch h.State {
	case StateSucceeded, StateFailed, StateCancelled:
		return true
	}
	return false
}

// SubmissionError is returned when the engine rejects a query.
type SubmissionError struct {
	SQL string
	Err error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("query submission rejected: %v", e.Err)
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// ExecutionError is returned when a query ends FAILED or CANCELLED.
type ExecutionError struct {
	QueryID string
	State   string
	Reason  string
}

func (e *ExecutionError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("query %v finished in state %v", e.QueryID, e.State)
	}
	return fmt.Sprintf("query %v finished in state %v: %v", e.QueryID, e.State, e.Reason)
}
