package dataset

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	sdkquicksight "github.com/aws/aws-sdk-go/service/quicksight"
	"github.com/golang/mock/gomock"
	"github.com/relloyd/csv2athena/aws/quicksight"
	"github.com/relloyd/csv2athena/aws/quicksight/mocks"
	"github.com/relloyd/csv2athena/config"
	"github.com/relloyd/csv2athena/logger"
)

var testRoutes = []config.DatasetRoute{
	{SourceFolder: "iam", DatasetName: "IAM report"},
	{SourceFolder: "reports/grants", DatasetName: "Grants"},
}

func TestFolderMatches(t *testing.T) {
	cases := []struct {
		folder, key string
		expected    bool
	}{
		{"iam", "iam/file.csv", true},
		{"iam", "landing/iam/2020/file.csv", true},
		{"iam/", "/iam/file.csv", true},
		{"reports/grants", "reports/grants/file.csv", true},
		{"reports/grants", "reports/x/grants/file.csv", false},
		{"iam", "iam-archive/file.csv", false},
		{"iam", "landing/iam.csv", false},
		{"", "iam/file.csv", false},
	}
	for _, c := range cases {
		if got := FolderMatches(c.folder, c.key); got != c.expected {
			t.Fatalf("folder %q key %q: expected %v; got %v", c.folder, c.key, c.expected, got)
		}
	}
}

func TestRouteUsesConfiguredOrder(t *testing.T) {
	s := NewSynchronizer(logger.NewNullLogger(), nil, []config.DatasetRoute{
		{SourceFolder: "reports", DatasetName: "first"},
		{SourceFolder: "reports/grants", DatasetName: "second"},
	})
	r, ok := s.Route("reports/grants/file.csv")
	if !ok || r.DatasetName != "first" {
		t.Fatalf("expected first route; got %v %v", r, ok)
	}
	if _, ok = s.Route("elsewhere/file.csv"); ok {
		t.Fatal("expected no route")
	}
}

func TestSyncWithoutRoute(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	s := NewSynchronizer(logger.NewNullLogger(), mocks.NewMockCatalog(ctrl), testRoutes)
	if _, err := s.Sync(context.Background(), "other/file.csv", "v"); err != ErrNoRoute {
		t.Fatalf("expected ErrNoRoute; got %v", err)
	}
}

func TestSyncDatasetNotFoundAfterAllPages(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	catalog := mocks.NewMockCatalog(ctrl)
	gomock.InOrder(
		catalog.EXPECT().ListPage(gomock.Any(), "").Return(quicksight.Page{
			Summaries: []quicksight.DataSetSummary{{ID: "1", Name: "Sales"}}, NextToken: "t1"}, nil),
		catalog.EXPECT().ListPage(gomock.Any(), "t1").Return(quicksight.Page{
			Summaries: []quicksight.DataSetSummary{{ID: "2", Name: "HR"}}, NextToken: "t2"}, nil),
		catalog.EXPECT().ListPage(gomock.Any(), "t2").Return(quicksight.Page{
			Summaries: []quicksight.DataSetSummary{{ID: "3", Name: "Ops"}}}, nil),
	)
	s := NewSynchronizer(logger.NewNullLogger(), catalog, testRoutes)
	_, err := s.Sync(context.Background(), "iam/file.csv", "iam_0_view")
	if !errors.Is(err, ErrDatasetNotFound) {
		t.Fatalf("expected ErrDatasetNotFound; got %v", err)
	}
}

func TestFindStopsOnRepeatedToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	catalog := mocks.NewMockCatalog(ctrl)
	catalog.EXPECT().ListPage(gomock.Any(), "").Return(quicksight.Page{NextToken: "loop"}, nil)
	catalog.EXPECT().ListPage(gomock.Any(), "loop").Return(quicksight.Page{NextToken: "loop"}, nil)
	s := NewSynchronizer(logger.NewNullLogger(), catalog, testRoutes)
	if _, err := s.Find(context.Background(), "IAM report"); !errors.Is(err, ErrDatasetNotFound) {
		t.Fatalf("expected ErrDatasetNotFound; got %v", err)
	}
}

func TestSyncUpdatesFirstMatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	catalog := mocks.NewMockCatalog(ctrl)
	catalog.EXPECT().ListPage(gomock.Any(), "").Return(quicksight.Page{
		Summaries: []quicksight.DataSetSummary{{ID: "x", Name: "Sales"}, {ID: "ds-1", Name: "IAM report"}, {ID: "ds-2", Name: "IAM report"}},
		NextToken: "more"}, nil)
	catalog.EXPECT().Describe(gomock.Any(), "ds-1").Return(sampleDataSet(), nil)
	catalog.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, in *sdkquicksight.UpdateDataSetInput) error {
			if aws.StringValue(in.DataSetId) != "ds-1" {
				t.Fatalf("expected ds-1; got %v", aws.StringValue(in.DataSetId))
			}
			if aws.StringValue(in.PhysicalTableMap["p-main"].RelationalTable.Name) != "iam_2_view" {
				t.Fatal("expected the physical table to read the new view")
			}
			if in.RowLevelPermissionDataSet == nil || len(in.ColumnGroups) != 1 {
				t.Fatal("expected the full definition to be sent")
			}
			return nil
		})
	s := NewSynchronizer(logger.NewNullLogger(), catalog, testRoutes)
	res, err := s.Sync(context.Background(), "landing/iam/2020.csv", "iam_2_view")
	if err != nil {
		t.Fatal(err)
	}
	if res.DataSetID != "ds-1" || res.Route.DatasetName != "IAM report" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestSyncUpdateRejected(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	catalog := mocks.NewMockCatalog(ctrl)
	catalog.EXPECT().ListPage(gomock.Any(), "").Return(quicksight.Page{
		Summaries: []quicksight.DataSetSummary{{ID: "ds-1", Name: "IAM report"}}}, nil)
	catalog.EXPECT().Describe(gomock.Any(), "ds-1").Return(sampleDataSet(), nil)
	catalog.EXPECT().Update(gomock.Any(), gomock.Any()).Return(errors.New("InvalidParameterValueException"))
	s := NewSynchronizer(logger.NewNullLogger(), catalog, testRoutes)
	_, err := s.Sync(context.Background(), "iam/file.csv", "iam_0_view")
	var ue *UpdateError
	if !errors.As(err, &ue) || ue.DataSetID != "ds-1" {
		t.Fatalf("expected UpdateError for ds-1; got %v", err)
	}
}
