package athena

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/athena"
	"github.com/aws/aws-sdk-go/service/athena/athenaiface"
	"github.com/pkg/errors"
	"github.com/relloyd/csv2athena/constants"
	"github.com/relloyd/csv2athena/logger"
)

// PollConfig bounds AwaitCompletion.
// The first wait is Interval; each following wait is multiplied by BackoffFactor up to MaxInterval.
type PollConfig struct {
	Interval      time.Duration
	MaxInterval   time.Duration
	BackoffFactor float64
	Timeout       time.Duration
}

// DefaultPollConfig starts at the engine's customary 5 second poll.
func DefaultPollConfig() PollConfig {
	return PollConfig{
		Interval:      constants.QueryPollInterval,
		MaxInterval:   constants.QueryPollMaxInterval,
		BackoffFactor: constants.QueryPollBackoffFactor,
		Timeout:       constants.QueryTimeout,
	}
}

func (p PollConfig) next(d time.Duration) time.Duration {
	if p.BackoffFactor > 1 {
		d = time.Duration(float64(d) * p.BackoffFactor)
	}
	if p.MaxInterval > 0 && d > p.MaxInterval {
		d = p.MaxInterval
	}
	return d
}

var _ Executor = (*Gateway)(nil)

type Gateway struct {
	log            logger.Logger
	api            athenaiface.AthenaAPI
	database       string
	outputLocation string
	poll           PollConfig
}

func NewGateway(log logger.Logger, sess *session.Session, database, outputLocation string, poll PollConfig) *Gateway {
	return NewGatewayWithAPI(log, athena.New(sess), database, outputLocation, poll)
}

func NewGatewayWithAPI(log logger.Logger, api athenaiface.AthenaAPI, database, outputLocation string, poll PollConfig) *Gateway {
	return &Gateway{
		log:            log,
		api:            api,
		database:       database,
		outputLocation: outputLocation,
		poll:           poll,
	}
}

func (g *Gateway) Submit(ctx context.Context, sql string) (QueryHandle, error) {
	g.log.Debug("Running query: ", sql)
	in := &athena.StartQueryExecutionInput{
		QueryString:         aws.String(sql),
		ResultConfiguration: &athena.ResultConfiguration{OutputLocation: aws.String(g.outputLocation)},
	}
	if g.database != "" {
		in.QueryExecutionContext = &athena.QueryExecutionContext{Database: aws.String(g.database)}
	}
	out, err := g.api.StartQueryExecutionWithContext(ctx, in)
	if err != nil {
		return QueryHandle{}, &SubmissionError{SQL: sql, Err: err}
	}
	h := QueryHandle{ID: aws.StringValue(out.QueryExecutionId), State: StateQueued}
	g.log.Info("Submitted query id ", h.ID)
	return h, nil
}

func (g *Gateway) AwaitCompletion(ctx context.Context, h QueryHandle) (QueryHandle, error) {
	deadline := time.NewTimer(g.poll.Timeout)
	defer deadline.Stop()
	interval := g.poll.Interval
	for {
		state, reason, err := g.status(ctx, h.ID)
		if err != nil {
			return h, err
		}
		h.State = state
		switch state {
		case StateSucceeded:
			g.log.Info("Query id finished ", h.ID)
			return h, nil
		case StateFailed, StateCancelled:
			return h, &ExecutionError{QueryID: h.ID, State: state, Reason: reason}
		}
		g.log.Debug("Waiting for query id ", h.ID, " to finish; state = ", state, "; next poll in ", interval)
		wait := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			wait.Stop()
			return h, errors.Wrapf(ctx.Err(), "stopped waiting for query %v", h.ID)
		case <-deadline.C:
			wait.Stop()
			return h, errors.Wrapf(ErrQueryTimeout, "query %v still %v after %v", h.ID, state, g.poll.Timeout)
		case <-wait.C:
		}
		interval = g.poll.next(interval)
	}
}

func (g *Gateway) Execute(ctx context.Context, sql string) (QueryHandle, error) {
	h, err := g.Submit(ctx, sql)
	if err != nil {
		return h, err
	}
	return g.AwaitCompletion(ctx, h)
}

func (g *Gateway) status(ctx context.Context, id string) (state string, reason string, err error) {
	out, err := g.api.GetQueryExecutionWithContext(ctx, &athena.GetQueryExecutionInput{QueryExecutionId: aws.String(id)})
	if err != nil {
		return "", "", errors.Wrapf(err, "unable to fetch status of query %v", id)
	}
	if out.QueryExecution == nil || out.QueryExecution.Status == nil {
		return "", "", errors.Errorf("no status returned for query %v", id)
	}
	return aws.StringValue(out.QueryExecution.Status.State), aws.StringValue(out.QueryExecution.Status.StateChangeReason), nil
}
