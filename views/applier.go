package views

import (
	"context"
	"fmt"
	"path"

	"github.com/pkg/errors"
	"github.com/relloyd/csv2athena/aws/athena"
	"github.com/relloyd/csv2athena/aws/s3"
	"github.com/relloyd/csv2athena/constants"
	"github.com/relloyd/csv2athena/logger"
	tabledefinition "github.com/relloyd/csv2athena/table-definition"
)

// Store is the part of object storage the applier reads templates from.
type Store interface {
	s3.Lister
	s3.Getter
}

// Definition is one view template found next to a table folder.
type Definition struct {
	Key      string
	Sequence int
	Name     string
	Template string
}

// Result lists the views created for a table, in creation order.
type Result struct {
	Views []string
}

// Last returns the name of the most recently created view, or "" if none were created.
func (r Result) Last() string {
	if len(r.Views) == 0 {
		return ""
	}
	return r.Views[len(r.Views)-1]
}

type Applier struct {
	log   logger.Logger
	store Store
	exec  athena.Executor
}

func NewApplier(log logger.Logger, store Store, exec athena.Executor) *Applier {
	return &Applier{log: log, store: store, exec: exec}
}

// Prefix returns the folder holding view templates for tables stored under folder:
// the sibling views/ folder of folder.
func Prefix(folder string) string {
	parent := path.Dir(folder)
	if parent == "." || parent == "/" {
		return constants.ViewsDirName + "/"
	}
	return parent + "/" + constants.ViewsDirName + "/"
}

// ViewName returns <table>_<seq>_view.
func ViewName(table string, seq int) string {
	return fmt.Sprintf("%v_%d%v", table, seq, constants.ViewNameSuffix)
}

// Discover lists the templates that apply to td. The sequence number is the object's position in the
// listing; folder markers are skipped but still use up their position, so view names stay the same
// whether or not the views/ folder has a marker object.
func (a *Applier) Discover(ctx context.Context, td tabledefinition.TableDescriptor) (defs []Definition, err error) {
	if td.Bucket == "" || td.Folder == "" {
		return nil, errors.Errorf("table %v has no storage folder to find views for", td.QualifiedName())
	}
	prefix := Prefix(td.Folder)
	objects, err := a.store.List(ctx, td.Bucket, prefix)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to list views under s3://%v/%v", td.Bucket, prefix)
	}
	for i, o := range objects {
		if o.IsDirMarker() {
			continue
		}
		defs = append(defs, Definition{Key: o.Key, Sequence: i, Name: ViewName(td.Table, i)})
	}
	a.log.Debug("Found ", len(defs), " view template(s) under s3://", td.Bucket, "/", prefix)
	return defs, nil
}

// Apply creates a view for every template found for td. Existing views are replaced only if the
// template itself says so; none are ever dropped. On error the views created so far are returned.
func (a *Applier) Apply(ctx context.Context, td tabledefinition.TableDescriptor) (Result, error) {
	res := Result{}
	defs, err := a.Discover(ctx, td)
	if err != nil {
		return res, err
	}
	for _, d := range defs {
		data, err := a.store.Get(ctx, td.Bucket, d.Key)
		if err != nil {
			return res, errors.Wrapf(err, "unable to fetch view template %v", d.Key)
		}
		d.Template = string(data)
		sql, err := Render(d.Template, d.Name, td.Table)
		if err != nil {
			var re *RenderError
			if errors.As(err, &re) {
				re.Key = d.Key
			}
			return res, err
		}
		a.log.Info("Applying view ", d.Name, " from ", d.Key)
		if _, err = a.exec.Execute(ctx, sql); err != nil {
			return res, errors.Wrapf(err, "unable to create view %v", d.Name)
		}
		res.Views = append(res.Views, d.Name)
	}
	return res, nil
}
