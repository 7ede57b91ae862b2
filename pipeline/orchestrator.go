package pipeline

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/pkg/errors"
	"github.com/relloyd/csv2athena/aws/athena"
	"github.com/relloyd/csv2athena/aws/quicksight"
	"github.com/relloyd/csv2athena/aws/s3"
	"github.com/relloyd/csv2athena/catalog"
	"github.com/relloyd/csv2athena/config"
	"github.com/relloyd/csv2athena/constants"
	"github.com/relloyd/csv2athena/dataset"
	"github.com/relloyd/csv2athena/helper"
	"github.com/relloyd/csv2athena/logger"
	tabledefinition "github.com/relloyd/csv2athena/table-definition"
	"github.com/relloyd/csv2athena/views"
	"github.com/rs/xid"
)

// UploadEvent is one object creation notification with the key already decoded.
type UploadEvent struct {
	Bucket string
	Key    string
}

// EventsFromS3 converts the notification records to upload events, decoding each key once.
// Records whose key can't be decoded are returned with the raw key and a non-nil error in errs at the same index.
func EventsFromS3(e events.S3Event) (out []UploadEvent, errs []error) {
	for _, r := range e.Records {
		key, err := s3.DecodeEventKey(r.S3.Object.Key)
		if err != nil {
			key = r.S3.Object.Key
		}
		out = append(out, UploadEvent{Bucket: r.S3.Bucket.Name, Key: key})
		errs = append(errs, err)
	}
	return out, errs
}

// SkipReason returns why key should not be treated as a new CSV upload, or "" if it should be processed.
func SkipReason(key string) string {
	if key == "" {
		return "empty key"
	}
	if strings.HasSuffix(key, "/") {
		return "folder marker"
	}
	dir := ""
	if strings.Contains(key, "/") {
		dir, _ = helper.SplitRight(key, "/")
	}
	for _, seg := range strings.Split(dir, "/") {
		if strings.Contains(strings.ToLower(seg), constants.ViewKeyMarker) {
			return "view template folder"
		}
	}
	return ""
}

// Orchestrator runs every step for each uploaded object.
type Orchestrator struct {
	log         logger.Logger
	cfg         *config.Config
	store       s3.Client
	provisioner *catalog.Provisioner
	views       *views.Applier
	datasets    *dataset.Synchronizer
}

func NewOrchestrator(log logger.Logger, cfg *config.Config, store s3.Client, exec athena.Executor, qs quicksight.Catalog) *Orchestrator {
	return &Orchestrator{
		log:         log,
		cfg:         cfg,
		store:       store,
		provisioner: catalog.NewProvisioner(log, exec),
		views:       views.NewApplier(log, store, exec),
		datasets:    dataset.NewSynchronizer(log, qs, cfg.Routes),
	}
}

// HandleS3Event processes a notification. The error is always nil; failures are reported in the Outcome.
func (o *Orchestrator) HandleS3Event(ctx context.Context, e events.S3Event) (Outcome, error) {
	uploads, decodeErrs := EventsFromS3(e)
	return o.run(ctx, uploads, decodeErrs), nil
}

// Run processes uploads in order.
func (o *Orchestrator) Run(ctx context.Context, uploads []UploadEvent) Outcome {
	return o.run(ctx, uploads, nil)
}

func (o *Orchestrator) run(ctx context.Context, uploads []UploadEvent, decodeErrs []error) Outcome {
	out := Outcome{RunID: xid.New().String(), Database: o.cfg.Database, Records: []RecordOutcome{}}
	log := o.log.WithField("runId", out.RunID)
	log.Info("Processing ", len(uploads), " record(s)")
	if err := o.provisioner.EnsureDatabase(ctx, o.cfg.Database); err != nil {
		log.Error(err)
		out.Steps = append(out.Steps, StepResult{Step: constants.StepEnsureDatabase, Status: constants.StepStatusFailed,
			Kind: Kind(err, constants.KindUnexpected), Detail: err.Error()})
		out.Failed = true
		return out
	}
	out.Steps = append(out.Steps, StepResult{Step: constants.StepEnsureDatabase, Status: constants.StepStatusSucceeded})
	for i, u := range uploads {
		var decodeErr error
		if i < len(decodeErrs) {
			decodeErr = decodeErrs[i]
		}
		rec := o.processRecord(ctx, log.WithField("key", u.Key), u, decodeErr)
		out.Failed = out.Failed || rec.Failed()
		out.Records = append(out.Records, rec)
	}
	log.Info("Finished run; failed = ", out.Failed)
	return out
}

func (o *Orchestrator) processRecord(ctx context.Context, log logger.Logger, u UploadEvent, decodeErr error) (rec RecordOutcome) {
	rec = RecordOutcome{Bucket: u.Bucket, Key: u.Key}
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			log.WithField("stackTrace", string(debug.Stack())).Error("Recovered while processing record: ", err)
			rec.failed(constants.StepRecoverPanic, constants.KindUnexpected, err)
		}
	}()
	if decodeErr != nil {
		log.Error(decodeErr)
		rec.failed(constants.StepDecodeKey, constants.KindUnexpected, decodeErr)
		return rec
	}
	if reason := SkipReason(u.Key); reason != "" {
		log.Debug("Skipping key: ", reason)
		rec.Skipped = reason
		return rec
	}
	// Tag.
	if o.cfg.TagObjects {
		if err := o.store.Tag(ctx, u.Bucket, u.Key, o.cfg.ObjectTagKey, o.cfg.ObjectTagValue); err != nil {
			log.Error(err)
			rec.failed(constants.StepTagObject, Kind(err, constants.KindStorage), err)
			return rec
		}
		rec.succeeded(constants.StepTagObject, o.cfg.ObjectTagKey+"="+o.cfg.ObjectTagValue)
	} else {
		rec.skipped(constants.StepTagObject, "", "object tagging disabled")
	}
	// Infer.
	header, err := o.readHeader(ctx, u)
	if err != nil {
		log.Error(err)
		rec.failed(constants.StepInferSchema, Kind(err, constants.KindStorage), err)
		return rec
	}
	td, err := o.describe(log, u, header)
	if err != nil {
		log.Error(err)
		rec.failed(constants.StepInferSchema, Kind(err, constants.KindSchemaInference), err)
		return rec
	}
	rec.Table = td.Table
	rec.succeeded(constants.StepInferSchema, strings.Join(td.Columns, ", "))
	log = log.WithField("table", td.QualifiedName())
	// Provision.
	if err = o.provisioner.Provision(ctx, td); err != nil {
		log.Error(err)
		rec.failed(constants.StepProvisionTable, Kind(err, constants.KindUnexpected), err)
		return rec
	}
	rec.succeeded(constants.StepProvisionTable, td.QualifiedName())
	// Views.
	applied, err := o.views.Apply(ctx, td)
	rec.Views = applied.Views
	if err != nil {
		log.Error(err)
		rec.failed(constants.StepApplyViews, Kind(err, constants.KindStorage), err)
		return rec
	}
	rec.succeeded(constants.StepApplyViews, fmt.Sprintf("%d view(s)", len(applied.Views)))
	// Dataset.
	view := applied.Last()
	if view == "" {
		log.Info("No views found for table; skipping dataset update")
		rec.skipped(constants.StepSyncDataset, "", "no view created")
		return rec
	}
	synced, err := o.datasets.Sync(ctx, u.Key, view)
	switch {
	case errors.Is(err, dataset.ErrNoRoute):
		rec.skipped(constants.StepSyncDataset, "", "no dataset route for key")
	case errors.Is(err, dataset.ErrDatasetNotFound):
		log.Warn(err)
		rec.Dataset = synced.Route.DatasetName
		rec.skipped(constants.StepSyncDataset, constants.KindDatasetNotFound, err.Error())
	case err != nil:
		log.Error(err)
		rec.Dataset = synced.Route.DatasetName
		rec.failed(constants.StepSyncDataset, Kind(err, constants.KindDatasetUpdate), err)
	default:
		rec.Dataset = synced.Route.DatasetName
		rec.succeeded(constants.StepSyncDataset, synced.DataSetID+" -> "+view)
	}
	return rec
}

// readHeader streams the first line of the object and closes it.
func (o *Orchestrator) readHeader(ctx context.Context, u UploadEvent) (string, error) {
	body, err := o.store.Open(ctx, u.Bucket, u.Key)
	if err != nil {
		return "", errors.Wrapf(err, "unable to open s3://%v/%v", u.Bucket, u.Key)
	}
	defer body.Close()
	return tabledefinition.ReadHeader(body)
}

// describe infers the schema from header and builds the table descriptor for the object.
func (o *Orchestrator) describe(log logger.Logger, u UploadEvent, header string) (tabledefinition.TableDescriptor, error) {
	schema, err := tabledefinition.InferSchema(header)
	if err != nil {
		return tabledefinition.TableDescriptor{}, errors.Wrapf(err, "object %v", u.Key)
	}
	if dups := schema.DuplicateColumns(); len(dups) > 0 {
		log.Warn("Header has duplicate column names after sanitizing: ", strings.Join(dups, ", "))
	}
	return tabledefinition.NewTableDescriptor(o.cfg.Database, u.Bucket, u.Key, schema)
}
