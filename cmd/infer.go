package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/relloyd/csv2athena/catalog"
	"github.com/relloyd/csv2athena/config"
	tabledefinition "github.com/relloyd/csv2athena/table-definition"
	"github.com/spf13/cobra"
)

var inferOpts struct {
	file     string
	key      string
	bucket   string
	database string
}

var inferCmd = &cobra.Command{
	Use:   "infer",
	Short: "Show the schema and DDL that would be generated for a local CSV file",
	Long: `Show the schema and DDL that would be generated for a local CSV file.
Only the header line is read and nothing is sent to AWS.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		database := inferOpts.database
		if database == "" {
			database = os.Getenv(config.KeyDatabase)
		}
		return inferLocal(cmd.OutOrStdout(), inferOpts.file, inferOpts.key, inferOpts.bucket, database)
	},
}

func init() {
	switches.addFlag(inferCmd, &inferOpts.file, "file")
	switches.addFlag(inferCmd, &inferOpts.key, "key")
	switches.addFlag(inferCmd, &inferOpts.bucket, "bucket")
	switches.addFlag(inferCmd, &inferOpts.database, "database")
	_ = inferCmd.MarkFlagRequired("file")
	_ = inferCmd.MarkFlagFilename("file", "csv", "txt")
	rootCmd.AddCommand(inferCmd)
}

func inferLocal(w io.Writer, fileName, key, bucket, database string) error {
	fullPath, err := homedir.Expand(fileName)
	if err != nil {
		return errors.Wrapf(err, "unable to expand file path %q", fileName)
	}
	f, err := os.Open(fullPath)
	if err != nil {
		return errors.Wrapf(err, "unable to open %q", fullPath)
	}
	defer f.Close()
	header, err := tabledefinition.ReadHeader(f)
	if err != nil {
		return err
	}
	schema, err := tabledefinition.InferSchema(header)
	if err != nil {
		return err
	}
	if key == "" {
		abs, err := filepath.Abs(fullPath)
		if err != nil {
			return errors.Wrapf(err, "unable to resolve %q", fullPath)
		}
		key = filepath.Base(filepath.Dir(abs)) + "/" + filepath.Base(abs)
	}
	if database == "" {
		database = "default"
	}
	td, err := tabledefinition.NewTableDescriptor(database, bucket, key, schema)
	if err != nil {
		return err
	}
	ddl, err := catalog.CreateTableSQL(td)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Delimiter: %q\n", string(schema.Delimiter))
	fmt.Fprintf(w, "Table:     %v\n", td.QualifiedName())
	fmt.Fprintf(w, "Location:  %v\n", td.Location)
	fmt.Fprintln(w, "Columns:")
	for _, c := range td.Columns {
		fmt.Fprintf(w, "  %v\n", c)
	}
	if dups := schema.DuplicateColumns(); len(dups) > 0 {
		fmt.Fprintf(w, "Duplicate columns: %v\n", dups)
	}
	fmt.Fprintf(w, "DDL:\n%v\n", ddl)
	return nil
}
