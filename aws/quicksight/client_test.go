package quicksight

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/quicksight"
	"github.com/aws/aws-sdk-go/service/quicksight/quicksightiface"
)

type fakeQuickSight struct {
	quicksightiface.QuickSightAPI
	listed  []*quicksight.ListDataSetsInput
	updated *quicksight.UpdateDataSetInput
}

func (f *fakeQuickSight) ListDataSetsWithContext(ctx aws.Context, in *quicksight.ListDataSetsInput, opts ...request.Option) (*quicksight.ListDataSetsOutput, error) {
	f.listed = append(f.listed, in)
	return &quicksight.ListDataSetsOutput{
		DataSetSummaries: []*quicksight.DataSetSummary{{DataSetId: aws.String("ds-1"), Name: aws.String("IAM Report")}},
		NextToken:        aws.String("page-2"),
	}, nil
}

func (f *fakeQuickSight) DescribeDataSetWithContext(ctx aws.Context, in *quicksight.DescribeDataSetInput, opts ...request.Option) (*quicksight.DescribeDataSetOutput, error) {
	return &quicksight.DescribeDataSetOutput{DataSet: &quicksight.DataSet{DataSetId: in.DataSetId, Name: aws.String("IAM Report")}}, nil
}

func (f *fakeQuickSight) UpdateDataSetWithContext(ctx aws.Context, in *quicksight.UpdateDataSetInput, opts ...request.Option) (*quicksight.UpdateDataSetOutput, error) {
	f.updated = in
	return &quicksight.UpdateDataSetOutput{}, nil
}

func TestListPage(t *testing.T) {
	api := &fakeQuickSight{}
	c := NewCatalogWithAPI(api, "123456789012")
	p, err := c.ListPage(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Summaries) != 1 || p.Summaries[0].ID != "ds-1" || p.NextToken != "page-2" {
		t.Fatalf("unexpected page %+v", p)
	}
	if api.listed[0].NextToken != nil {
		t.Fatal("first page must not send a token")
	}
	if _, err = c.ListPage(context.Background(), "page-2"); err != nil {
		t.Fatal(err)
	}
	if aws.StringValue(api.listed[1].NextToken) != "page-2" {
		t.Fatal("expected token to be sent for the second page")
	}
	if aws.StringValue(api.listed[1].AwsAccountId) != "123456789012" {
		t.Fatal("expected account id on list requests")
	}
}

func TestUpdateFillsAccount(t *testing.T) {
	api := &fakeQuickSight{}
	c := NewCatalogWithAPI(api, "123456789012")
	ds, err := c.Describe(context.Background(), "ds-1")
	if err != nil {
		t.Fatal(err)
	}
	if aws.StringValue(ds.DataSetId) != "ds-1" {
		t.Fatalf("unexpected dataset %v", ds)
	}
	if err = c.Update(context.Background(), &quicksight.UpdateDataSetInput{DataSetId: aws.String("ds-1")}); err != nil {
		t.Fatal(err)
	}
	if aws.StringValue(api.updated.AwsAccountId) != "123456789012" {
		t.Fatal("expected account id to be filled in")
	}
}
