package quicksight

import (
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/quicksight"
	"github.com/aws/aws-sdk-go/service/quicksight/quicksightiface"
	"github.com/pkg/errors"
	"github.com/relloyd/csv2athena/constants"
)

var _ Catalog = (*client)(nil)

func NewCatalog(sess *session.Session, accountID string) Catalog {
	return NewCatalogWithAPI(quicksight.New(sess), accountID)
}

func NewCatalogWithAPI(api quicksightiface.QuickSightAPI, accountID string) Catalog {
	return &client{api: api, accountID: accountID}
}

type client struct {
	api       quicksightiface.QuickSightAPI
	accountID string
}

func (c *client) ListPage(ctx context.Context, token string) (Page, error) {
	in := &quicksight.ListDataSetsInput{
		AwsAccountId: aws.String(c.accountID),
		MaxResults:   aws.Int64(constants.DatasetListPageSize),
	}
	if token != "" {
		in.NextToken = aws.String(token)
	}
	out, err := c.api.ListDataSetsWithContext(ctx, in)
	if err != nil {
		return Page{}, errors.Wrap(err, "unable to list QuickSight datasets")
	}
	p := Page{NextToken: aws.StringValue(out.NextToken)}
	for _, s := range out.DataSetSummaries {
		p.Summaries = append(p.Summaries, DataSetSummary{ID: aws.StringValue(s.DataSetId), Name: aws.StringValue(s.Name)})
	}
	return p, nil
}

func (c *client) Describe(ctx context.Context, id string) (*quicksight.DataSet, error) {
	out, err := c.api.DescribeDataSetWithContext(ctx, &quicksight.DescribeDataSetInput{
		AwsAccountId: aws.String(c.accountID),
		DataSetId:    aws.String(id),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "unable to describe QuickSight dataset %v", id)
	}
	if out.DataSet == nil {
		return nil, errors.Errorf("QuickSight returned no definition for dataset %v", id)
	}
	return out.DataSet, nil
}

func (c *client) Update(ctx context.Context, in *quicksight.UpdateDataSetInput) error {
	in.AwsAccountId = aws.String(c.accountID)
	if _, err := c.api.UpdateDataSetWithContext(ctx, in); err != nil {
		return errors.Wrapf(err, "unable to update QuickSight dataset %v", aws.StringValue(in.DataSetId))
	}
	return nil
}
