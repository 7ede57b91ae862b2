package pipeline

import (
	"github.com/pkg/errors"
	"github.com/relloyd/csv2athena/aws/athena"
	"github.com/relloyd/csv2athena/aws/s3"
	"github.com/relloyd/csv2athena/constants"
	"github.com/relloyd/csv2athena/dataset"
	tabledefinition "github.com/relloyd/csv2athena/table-definition"
	"github.com/relloyd/csv2athena/views"
)

// StepResult records how one step of a record went.
type StepResult struct {
	Step   string `json:"step"`
	Status string `json:"status"`
	Kind   string `json:"kind,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// RecordOutcome is the result of processing one notification record.
type RecordOutcome struct {
	Bucket  string       `json:"bucket"`
	Key     string       `json:"key"`
	Skipped string       `json:"skipped,omitempty"` // why the record was ignored
	Table   string       `json:"table,omitempty"`
	Views   []string     `json:"views,omitempty"`
	Dataset string       `json:"dataset,omitempty"`
	Steps   []StepResult `json:"steps,omitempty"`
}

// Failed reports whether any step of the record failed.
func (r RecordOutcome) Failed() bool {
	for _, s := range r.Steps {
		if s.Status == constants.StepStatusFailed {
			return true
		}
	}
	return false
}

func (r *RecordOutcome) succeeded(step string, detail string) {
	r.Steps = append(r.Steps, StepResult{Step: step, Status: constants.StepStatusSucceeded, Detail: detail})
}

func (r *RecordOutcome) skipped(step string, kind string, detail string) {
	r.Steps = append(r.Steps, StepResult{Step: step, Status: constants.StepStatusSkipped, Kind: kind, Detail: detail})
}

func (r *RecordOutcome) failed(step string, kind string, err error) {
	r.Steps = append(r.Steps, StepResult{Step: step, Status: constants.StepStatusFailed, Kind: kind, Detail: err.Error()})
}

// Outcome is the result of one invocation.
type Outcome struct {
	RunID    string          `json:"runId"`
	Database string          `json:"database"`
	Steps    []StepResult    `json:"steps,omitempty"` // invocation level steps
	Records  []RecordOutcome `json:"records"`
	Failed   bool            `json:"failed"`
}

// Kind maps err to one of the failure kinds reported in a StepResult.
// fallback is used when err carries no recognised type.
func Kind(err error, fallback string) string {
	var (
		subErr    *athena.SubmissionError
		execErr   *athena.ExecutionError
		renderErr *views.RenderError
		updateErr *dataset.UpdateError
	)
	switch {
	case errors.As(err, &subErr):
		return constants.KindQuerySubmission
	case errors.As(err, &execErr):
		return constants.KindQueryExecution
	case errors.Is(err, athena.ErrQueryTimeout):
		return constants.KindQueryTimeout
	case errors.As(err, &renderErr):
		return constants.KindViewRender
	case errors.Is(err, dataset.ErrDatasetNotFound):
		return constants.KindDatasetNotFound
	case errors.As(err, &updateErr):
		return constants.KindDatasetUpdate
	case errors.Is(err, tabledefinition.ErrEmptyHeader), errors.Is(err, tabledefinition.ErrHeaderTooLong),
		errors.Is(err, tabledefinition.ErrNoParentFolder):
		return constants.KindSchemaInference
	case errors.Is(err, s3.ErrKeyNotFound):
		return constants.KindStorage
	}
	return fallback
}
