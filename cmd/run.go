package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-lambda-go/events"
	"github.com/ghodss/yaml"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var eventFile string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process an S3 notification read from a file",
	Long: `Process an S3 notification read from a file, exactly as the Lambda handler would,
and print the outcome as JSON. The file may be JSON or YAML.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := readS3Event(eventFile)
		if err != nil {
			return err
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		o, err := newOrchestrator(newLogger(cfg), cfg)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		out, _ := o.HandleS3Event(ctx, e)
		b, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return errors.Wrap(err, "unable to render outcome")
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		if out.Failed {
			return fmt.Errorf("run %v finished with failures", out.RunID)
		}
		return nil
	},
}

func init() {
	switches.addFlag(runCmd, &eventFile, "event-file")
	_ = runCmd.MarkFlagRequired("event-file")
	_ = runCmd.MarkFlagFilename("event-file", "json", "yaml", "yml")
	rootCmd.AddCommand(runCmd)
}

// readS3Event parses a notification document. YAML is converted to JSON first so the
// json tags on events.S3Event apply to both.
func readS3Event(fileName string) (events.S3Event, error) {
	e := events.S3Event{}
	fullPath, err := homedir.Expand(fileName)
	if err != nil {
		return e, errors.Wrapf(err, "unable to expand event file path %q", fileName)
	}
	b, err := ioutil.ReadFile(fullPath)
	if err != nil {
		return e, errors.Wrapf(err, "unable to read event file %q", fullPath)
	}
	if err = yaml.Unmarshal(b, &e); err != nil {
		return e, errors.Wrapf(err, "unable to parse event file %q", fullPath)
	}
	if len(e.Records) == 0 {
		return e, errors.Errorf("event file %q has no records", fullPath)
	}
	return e, nil
}
