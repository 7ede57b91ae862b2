package cmd

import (
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/pkg/errors"
	"github.com/relloyd/csv2athena/aws/athena"
	"github.com/relloyd/csv2athena/aws/quicksight"
	"github.com/relloyd/csv2athena/aws/s3"
	"github.com/relloyd/csv2athena/config"
	"github.com/relloyd/csv2athena/constants"
	"github.com/relloyd/csv2athena/logger"
	"github.com/relloyd/csv2athena/pipeline"
)

// loadConfig reads config from the --config-file flag and the environment.
// The --log-level and --print-stack flags win over config values when set.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(nil, configFile)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if stackDumpOnPanic {
		cfg.StackDump = true
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) logger.Logger {
	return logger.NewLogger(constants.LogServiceName, cfg.LogLevel, cfg.StackDump)
}

func newSession(region string) (*session.Session, error) {
	opts := session.Options{SharedConfigState: session.SharedConfigEnable}
	if region != "" {
		opts.Config.Region = aws.String(region)
	}
	sess, err := session.NewSessionWithOptions(opts)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create AWS session")
	}
	return sess, nil
}

// newOrchestrator wires the AWS clients into a pipeline.
func newOrchestrator(log logger.Logger, cfg *config.Config) (*pipeline.Orchestrator, error) {
	sess, err := newSession(cfg.Region)
	if err != nil {
		return nil, err
	}
	poll := athena.PollConfig{
		Interval:      cfg.PollInterval,
		MaxInterval:   cfg.PollMaxInterval,
		BackoffFactor: constants.QueryPollBackoffFactor,
		Timeout:       cfg.QueryTimeout,
	}
	exec := athena.NewGateway(log, sess, cfg.Database, cfg.OutputLocation, poll)
	return pipeline.NewOrchestrator(log, cfg, s3.NewClient(sess), exec, quicksight.NewCatalog(sess, cfg.AccountID)), nil
}
