package catalog

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/relloyd/csv2athena/aws/athena"
	"github.com/relloyd/csv2athena/aws/athena/mocks"
	"github.com/relloyd/csv2athena/logger"
	tabledefinition "github.com/relloyd/csv2athena/table-definition"
)

func pipeDescriptor(t *testing.T) tabledefinition.TableDescriptor {
	s, err := tabledefinition.InferSchema("id|name|amount")
	if err != nil {
		t.Fatal(err)
	}
	td, err := tabledefinition.NewTableDescriptor("reports", "landing", "uploads/IAM/file.csv", s)
	if err != nil {
		t.Fatal(err)
	}
	return td
}

func TestCreateTableSQL(t *testing.T) {
	got, err := CreateTableSQL(pipeDescriptor(t))
	if err != nil {
		t.Fatal(err)
	}
	expected := "CREATE EXTERNAL TABLE IF NOT EXISTS reports.iam (`id` string, `name` string, `amount` string) " +
		"ROW FORMAT SERDE 'org.apache.hadoop.hive.serde2.OpenCSVSerde' " +
		"WITH SERDEPROPERTIES ('separatorChar' = '|', 'serialization.format' = ',', 'field.delim' = '|') " +
		"LOCATION 's3://landing/uploads/IAM/' TBLPROPERTIES ('skip.header.line.count'='1');"
	if got != expected {
		t.Fatalf("expected %q; got %q", expected, got)
	}
}

func TestCreateTableSQLWithoutColumns(t *testing.T) {
	td := pipeDescriptor(t)
	td.Columns = nil
	if _, err := CreateTableSQL(td); err == nil {
		t.Fatal("expected error for a table without columns")
	}
}

func TestEnsureDatabase(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	exec := mocks.NewMockExecutor(ctrl)
	exec.EXPECT().Execute(gomock.Any(), "CREATE DATABASE IF NOT EXISTS reports;").
		Return(athena.QueryHandle{ID: "q1", State: athena.StateSucceeded}, nil)
	p := NewProvisioner(logger.NewNullLogger(), exec)
	if err := p.EnsureDatabase(context.Background(), "reports"); err != nil {
		t.Fatal(err)
	}
	if err := p.EnsureDatabase(context.Background(), ""); err == nil {
		t.Fatal("expected error for an empty database name")
	}
}

func TestProvisionIsRepeatable(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	exec := mocks.NewMockExecutor(ctrl)
	var statements []string
	exec.EXPECT().Execute(gomock.Any(), gomock.Any()).Times(2).
		DoAndReturn(func(_ context.Context, sql string) (athena.QueryHandle, error) {
			statements = append(statements, sql)
			return athena.QueryHandle{ID: "q", State: athena.StateSucceeded}, nil
		})
	p := NewProvisioner(logger.NewNullLogger(), exec)
	td := pipeDescriptor(t)
	for i := 0; i < 2; i++ {
		if err := p.Provision(context.Background(), td); err != nil {
			t.Fatalf("provision %v: %v", i, err)
		}
	}
	if statements[0] != statements[1] {
		t.Fatalf("expected identical statements; got %q and %q", statements[0], statements[1])
	}
	if !strings.Contains(statements[0], "IF NOT EXISTS") {
		t.Fatalf("expected an idempotent statement; got %q", statements[0])
	}
}

func TestProvisionKeepsErrorType(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	exec := mocks.NewMockExecutor(ctrl)
	exec.EXPECT().Execute(gomock.Any(), gomock.Any()).
		Return(athena.QueryHandle{ID: "q", State: athena.StateFailed}, &athena.ExecutionError{QueryID: "q", State: athena.StateFailed, Reason: "boom"})
	p := NewProvisioner(logger.NewNullLogger(), exec)
	err := p.Provision(context.Background(), pipeDescriptor(t))
	var execErr *athena.ExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("expected ExecutionError; got %v", err)
	}
	if execErr.Reason != "boom" {
		t.Fatalf("expected reason boom; got %q", execErr.Reason)
	}
}
