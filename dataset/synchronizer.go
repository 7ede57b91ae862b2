package dataset

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/relloyd/csv2athena/aws/quicksight"
	"github.com/relloyd/csv2athena/config"
	"github.com/relloyd/csv2athena/logger"
)

var (
	ErrNoRoute         = errors.New("no dataset route matches the object key")
	ErrDatasetNotFound = errors.New("dataset not found")
)

// UpdateError is returned when QuickSight rejects the new dataset definition.
type UpdateError struct {
	DataSetID string
	Err       error
}

func (e *UpdateError) Error() string {
	return fmt.Sprintf("dataset %v update rejected: %v", e.DataSetID, e.Err)
}

func (e *UpdateError) Unwrap() error {
	return e.Err
}

// Result describes a completed sync.
type Result struct {
	Route     config.DatasetRoute
	DataSetID string
	View      string
}

type Synchronizer struct {
	log     logger.Logger
	catalog quicksight.Catalog
	routes  []config.DatasetRoute
}

func NewSynchronizer(log logger.Logger, catalog quicksight.Catalog, routes []config.DatasetRoute) *Synchronizer {
	return &Synchronizer{log: log, catalog: catalog, routes: routes}
}

// Route returns the first configured route whose folder matches key.
func (s *Synchronizer) Route(key string) (config.DatasetRoute, bool) {
	for _, r := range s.routes {
		if FolderMatches(r.SourceFolder, key) {
			return r, true
		}
	}
	return config.DatasetRoute{}, false
}

// FolderMatches reports whether the path segments of folder occur, contiguously and whole,
// among the folder segments of key.
func FolderMatches(folder string, key string) bool {
	want := segments(folder)
	if len(want) == 0 {
		return false
	}
	have := segments(key)
	if len(have) > 0 {
		have = have[:len(have)-1] // drop the object name
	}
	for i := 0; i+len(want) <= len(have); i++ {
		match := true
		for j := range want {
			if have[i+j] != want[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func segments(p string) []string {
	var out []string
	for _, s := range strings.Split(p, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Find pages through the account's datasets and returns the id of the first one named name.
// A page token is never requested twice.
func (s *Synchronizer) Find(ctx context.Context, name string) (string, error) {
	seen := make(map[string]bool)
	token := ""
	for {
		page, err := s.catalog.ListPage(ctx, token)
		if err != nil {
			return "", err
		}
		for _, ds := range page.Summaries {
			if ds.Name == name {
				return ds.ID, nil
			}
		}
		if page.NextToken == "" {
			break
		}
		if seen[page.NextToken] {
			s.log.Warn("Dataset listing returned a repeated page token; stopping search for ", name)
			break
		}
		seen[page.NextToken] = true
		token = page.NextToken
	}
	return "", errors.Wrapf(ErrDatasetNotFound, "no dataset named %q", name)
}

// Sync repoints the dataset routed from key at view.
// It returns ErrNoRoute when no route matches and ErrDatasetNotFound when the routed dataset doesn't exist.
func (s *Synchronizer) Sync(ctx context.Context, key string, view string) (Result, error) {
	route, ok := s.Route(key)
	if !ok {
		return Result{}, ErrNoRoute
	}
	res := Result{Route: route, View: view}
	s.log.Info("Finding dataset match for ", route.SourceFolder)
	id, err := s.Find(ctx, route.DatasetName)
	if err != nil {
		return res, err
	}
	res.DataSetID = id
	ds, err := s.catalog.Describe(ctx, id)
	if err != nil {
		return res, err
	}
	b, err := NewBinding(ds)
	if err != nil {
		return res, &UpdateError{DataSetID: id, Err: err}
	}
	b.Repoint(view)
	if err = s.catalog.Update(ctx, b.UpdateInput()); err != nil {
		return res, &UpdateError{DataSetID: id, Err: err}
	}
	s.log.Info("QuickSight dataset ", route.DatasetName, " now reads view ", view)
	return res, nil
}
