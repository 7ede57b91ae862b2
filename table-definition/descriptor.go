package tabledefinition

import (
	"path"
	"regexp"
	"strings"

	"github.com/cevaris/ordered_map"
	"github.com/pkg/errors"
	"github.com/relloyd/csv2athena/aws/s3"
	"github.com/relloyd/csv2athena/helper"
)

var (
	ErrNoParentFolder = errors.New("object key has no parent folder to name a table after")
	reTableNameRun    = regexp.MustCompile("[^a-z0-9_]+")
)

// TableDescriptor is everything needed to register an external table over a folder of CSV objects.
type TableDescriptor struct {
	Database        string
	Table           string
	Columns         []string // rendered column definitions
	SerdeProperties *ordered_map.OrderedMap
	Bucket          string
	Folder          string // key prefix of the CSV objects, without a trailing slash
	Location        string // s3://bucket/folder/, only used in DDL
}

// NewTableDescriptor describes the table for the folder holding key in bucket.
func NewTableDescriptor(database, bucket, key string, schema InferredSchema) (TableDescriptor, error) {
	table, err := TableNameFromKey(key)
	if err != nil {
		return TableDescriptor{}, err
	}
	folder := FolderOfKey(key)
	return TableDescriptor{
		Database:        database,
		Table:           table,
		Columns:         schema.ColumnDefinitions(),
		SerdeProperties: schema.SerdeProperties(),
		Bucket:          bucket,
		Folder:          folder,
		Location:        s3.URI(bucket, folder),
	}, nil
}

// FolderOfKey returns the key's parent folder without a trailing slash, or "" for a top level key.
func FolderOfKey(key string) string {
	dir := path.Dir(strings.TrimPrefix(key, "/"))
	if dir == "." || dir == "/" {
		return ""
	}
	return dir
}

// TableNameFromKey names the table after the key's parent folder: lower-cased,
// with each run of characters outside [a-z0-9_] replaced by an underscore.
func TableNameFromKey(key string) (string, error) {
	dir := FolderOfKey(key)
	if dir == "" {
		return "", errors.Wrapf(ErrNoParentFolder, "key %q", key)
	}
	return helper.CollapseRuns(reTableNameRun, strings.ToLower(path.Base(dir)), "_"), nil
}

// QualifiedName returns database.table.
func (t TableDescriptor) QualifiedName() string {
	return t.Database + "." + t.Table
}
