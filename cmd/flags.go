package cmd

import (
	"fmt"
	"strings"

	"github.com/relloyd/csv2athena/constants"
	"github.com/relloyd/csv2athena/helper"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type cliFlag struct {
	name      string // name of flag
	val       string // default value
	shortHand string // single character name for the flag
	desc      string // description of the flag; the long text
}

type cliFlags map[string]cliFlag

var switches = cliFlags{
	"config-file": {name: "config-file", shortHand: "c",
		desc: fmt.Sprintf("Optional YAML config `<file>`; environment variables override its values (or set %v)",
			constants.EnvVarConfigFile)},
	"log-level": {name: "log-level", shortHand: "l",
		desc: "Log level: trace|debug|info|warn|error. Overrides LogLevel from config"},
	"print-stack": {name: "print-stack",
		desc: "Print a stack dump if there is a panic"},
	"event-file": {name: "event-file", shortHand: "e",
		desc: "S3 notification `<file>` to process, in JSON or YAML"},
	"file": {name: "file", shortHand: "f",
		desc: "Local CSV `<file>` whose header line should be inspected"},
	"key": {name: "key", shortHand: "k",
		desc: "Object key the file would be uploaded as. Defaults to <parent-dir>/<file-name>"},
	"bucket": {name: "bucket", shortHand: "b", val: "bucket",
		desc: "Bucket name used to render the table LOCATION"},
	"database": {name: "database", shortHand: "d",
		desc: "Athena database used to render the DDL. Defaults to AthenaDbName"},
}

// addFlag registers the named switch on c for targetVar, which must be a *string or *bool.
// The default comes from the environment variable for the flag, else the switch's own default.
func (f cliFlags) addFlag(c *cobra.Command, targetVar interface{}, name string) {
	f.add(c.Flags(), targetVar, name)
}

// addPersistentFlag is addFlag for flags inherited by every sub-command.
func (f cliFlags) addPersistentFlag(c *cobra.Command, targetVar interface{}, name string) {
	f.add(c.PersistentFlags(), targetVar, name)
}

func (f cliFlags) add(fs *pflag.FlagSet, targetVar interface{}, name string) {
	sw := f.getCliFlag(name)
	switch p := targetVar.(type) {
	case *string:
		fs.StringVarP(p, sw.name, sw.shortHand, sw.val, sw.desc)
	case *bool:
		fs.BoolVarP(p, sw.name, sw.shortHand, helper.GetTrueFalseStringAsBool(sw.val), sw.desc)
	default:
		panic("Error: unhandled CLI flag target value type")
	}
}

// getCliFlag fetches the switch called name with its default taken from the environment, if set.
func (f cliFlags) getCliFlag(name string) cliFlag {
	s, ok := f[name]
	if !ok {
		panic(fmt.Sprintf("unregistered CLI flag, %q", name))
	}
	s.val = helper.ReadValueFromEnvWithDefault(flagNameToEnvVar(name), s.val)
	return s
}

// flagNameToEnvVar will form a sanitised environment variable name using constants.EnvVarPrefix.
func flagNameToEnvVar(name string) string {
	return constants.EnvVarPrefix + "_" + strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}
