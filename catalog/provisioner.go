package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/relloyd/csv2athena/aws/athena"
	"github.com/relloyd/csv2athena/constants"
	"github.com/relloyd/csv2athena/helper"
	"github.com/relloyd/csv2athena/logger"
	tabledefinition "github.com/relloyd/csv2athena/table-definition"
)

// Provisioner registers databases and external tables through the query engine.
type Provisioner struct {
	log  logger.Logger
	exec athena.Executor
}

func NewProvisioner(log logger.Logger, exec athena.Executor) *Provisioner {
	return &Provisioner{log: log, exec: exec}
}

// EnsureDatabase creates database unless it already exists.
func (p *Provisioner) EnsureDatabase(ctx context.Context, database string) error {
	if database == "" {
		return errors.New("database name is empty")
	}
	p.log.Info("Ensuring database ", database, " exists")
	if _, err := p.exec.Execute(ctx, CreateDatabaseSQL(database)); err != nil {
		return errors.Wrapf(err, "unable to create database %v", database)
	}
	return nil
}

// Provision creates the external table described by td unless a table of that name exists.
// An existing table is left untouched.
func (p *Provisioner) Provision(ctx context.Context, td tabledefinition.TableDescriptor) error {
	sql, err := CreateTableSQL(td)
	if err != nil {
		return err
	}
	p.log.Info("Provisioning table ", td.QualifiedName(), " over ", td.Location)
	if _, err = p.exec.Execute(ctx, sql); err != nil {
		return errors.Wrapf(err, "unable to create table %v", td.QualifiedName())
	}
	return nil
}

// CreateDatabaseSQL returns the idempotent CREATE DATABASE statement.
func CreateDatabaseSQL(database string) string {
	return fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %v;", database)
}

// CreateTableSQL renders the CREATE EXTERNAL TABLE IF NOT EXISTS statement for td.
func CreateTableSQL(td tabledefinition.TableDescriptor) (string, error) {
	if len(td.Columns) == 0 {
		return "", errors.Errorf("table %v has no columns", td.QualifiedName())
	}
	props, err := helper.OrderedMapToSqlProperties(td.SerdeProperties)
	if err != nil {
		return "", errors.Wrapf(err, "unable to render serde properties for table %v", td.QualifiedName())
	}
	b := strings.Builder{}
	b.WriteString(fmt.Sprintf("CREATE EXTERNAL TABLE IF NOT EXISTS %v (", td.QualifiedName()))
	b.WriteString(strings.Join(td.Columns, ", "))
	b.WriteString(") ROW FORMAT SERDE ")
	b.WriteString(helper.SqlQuote(constants.CsvSerdeClass))
	b.WriteString(fmt.Sprintf(" WITH SERDEPROPERTIES (%v)", props))
	b.WriteString(fmt.Sprintf(" LOCATION %v", helper.SqlQuote(td.Location)))
	b.WriteString(fmt.Sprintf(" TBLPROPERTIES ('skip.header.line.count'='%v');", constants.SkipHeaderLineCount))
	return b.String(), nil
}
