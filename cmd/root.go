package cmd

import (
	"os"

	"github.com/relloyd/csv2athena/constants"
	"github.com/relloyd/csv2athena/helper"
	"github.com/spf13/cobra"
)

var (
	// Default values may be set at compile time.
	version   = "0.1.0"
	buildDate = "2026-01-01T00:00+0000"
	// Global flags.
	configFile       string
	logLevel         string
	stackDumpOnPanic bool
)

var rootCmd = &cobra.Command{
	Use:   "csv2athena",
	Short: "Register uploaded CSV files as Athena tables and refresh QuickSight datasets",
	Long: `csv2athena reacts to CSV uploads in S3. It infers a schema from the header line,
creates an Athena external table over the upload folder, applies the view templates
stored in the sibling views/ folder and points the matching QuickSight dataset at
the newest view.

Run without arguments inside AWS Lambda, or use the run command to replay a
notification from a file.`,
	SilenceUsage: true,
}

func init() {
	cobra.EnableCommandSorting = false
	switches.addPersistentFlag(rootCmd, &configFile, "config-file")
	switches.addPersistentFlag(rootCmd, &logLevel, "log-level")
	switches.addPersistentFlag(rootCmd, &stackDumpOnPanic, "print-stack")
	_ = rootCmd.PersistentFlags().MarkHidden("print-stack")
	_ = rootCmd.MarkPersistentFlagFilename("config-file", "yaml", "yml")
}

// lambdaMode reports whether the process was started by the Lambda runtime.
func lambdaMode() bool {
	v, _ := helper.GetEnvVar(constants.EnvVarLambdaRuntimeAPI, false)
	return v != ""
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if lambdaMode() && len(os.Args) < 2 { // if the Lambda runtime started us without a command...
		os.Args = append(os.Args, lambdaCmd.Name())
	}
	if err := rootCmd.Execute(); err != nil {
		// Execute() prints the error.
		os.Exit(1)
	}
}
