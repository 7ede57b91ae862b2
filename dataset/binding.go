package dataset

import (
	"sort"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/quicksight"
	"github.com/pkg/errors"
)

// Binding is a described dataset with the one physical table and the one logical table that
// follow a view picked out. Everything else in Definition is sent back unchanged on update.
type Binding struct {
	ID              string
	Name            string
	ImportMode      string
	PhysicalTableID string
	Physical        *quicksight.PhysicalTable
	LogicalTableID  string
	Logical         *quicksight.LogicalTable
	Definition      *quicksight.DataSet
}

// NewBinding picks the first relational physical table (by id) and the logical table reading from it,
// falling back to the first logical table (by id) when none reads from it directly.
func NewBinding(ds *quicksight.DataSet) (*Binding, error) {
	if ds == nil {
		return nil, errors.New("dataset definition is empty")
	}
	b := &Binding{
		ID:         aws.StringValue(ds.DataSetId),
		Name:       aws.StringValue(ds.Name),
		ImportMode: aws.StringValue(ds.ImportMode),
		Definition: ds,
	}
	for _, id := range sortedKeys(ds.PhysicalTableMap) {
		if pt := ds.PhysicalTableMap[id]; pt != nil && pt.RelationalTable != nil {
			b.PhysicalTableID, b.Physical = id, pt
			break
		}
	}
	if b.Physical == nil {
		return nil, errors.Errorf("dataset %v has no relational physical table", b.Name)
	}
	logicalIDs := sortedKeys(ds.LogicalTableMap)
	for _, id := range logicalIDs {
		lt := ds.LogicalTableMap[id]
		if lt != nil && lt.Source != nil && aws.StringValue(lt.Source.PhysicalTableId) == b.PhysicalTableID {
			b.LogicalTableID, b.Logical = id, lt
			break
		}
	}
	if b.Logical == nil {
		for _, id := range logicalIDs {
			if lt := ds.LogicalTableMap[id]; lt != nil {
				b.LogicalTableID, b.Logical = id, lt
				break
			}
		}
	}
	if b.Logical == nil {
		return nil, errors.Errorf("dataset %v has no logical table", b.Name)
	}
	return b, nil
}

// Repoint sets the relational table name and the logical table alias to view.
func (b *Binding) Repoint(view string) {
	b.Physical.RelationalTable.Name = aws.String(view)
	b.Logical.Alias = aws.String(view)
}

// UpdateInput builds a full replacement of the dataset definition.
func (b *Binding) UpdateInput() *quicksight.UpdateDataSetInput {
	ds := b.Definition
	return &quicksight.UpdateDataSetInput{
		DataSetId:                          aws.String(b.ID),
		Name:                               aws.String(b.Name),
		ImportMode:                         aws.String(b.ImportMode),
		PhysicalTableMap:                   ds.PhysicalTableMap,
		LogicalTableMap:                    ds.LogicalTableMap,
		ColumnGroups:                       ds.ColumnGroups,
		ColumnLevelPermissionRules:         ds.ColumnLevelPermissionRules,
		DataSetUsageConfiguration:          ds.DataSetUsageConfiguration,
		DatasetParameters:                  ds.DatasetParameters,
		FieldFolders:                       ds.FieldFolders,
		RowLevelPermissionDataSet:          ds.RowLevelPermissionDataSet,
		RowLevelPermissionTagConfiguration: ds.RowLevelPermissionTagConfiguration,
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
