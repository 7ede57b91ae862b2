//go:generate mockgen -package mocks -destination mocks/interface.go -source=interface.go
package quicksight

import (
	"context"

	"github.com/aws/aws-sdk-go/service/quicksight"
)

// DataSetSummary is the part of a listed dataset needed to find it by display name.
type DataSetSummary struct {
	ID   string
	Name string
}

// Page is one page of ListDataSets. An empty NextToken means there are no more pages.
type Page struct {
	Summaries []DataSetSummary
	NextToken string
}

// Catalog is the dataset side of QuickSight.
type Catalog interface {
	// ListPage fetches the page identified by token; use "" for the first page.
	ListPage(ctx context.Context, token string) (Page, error)
	// Describe returns the full definition of a dataset.
	Describe(ctx context.Context, id string) (*quicksight.DataSet, error)
	// Update replaces the dataset definition. The account id is filled in by the catalog.
	Update(ctx context.Context, in *quicksight.UpdateDataSetInput) error
}
