package config

import (
	"io/ioutil"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/ghodss/yaml"
	"github.com/mitchellh/go-homedir"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/relloyd/csv2athena/constants"
	"github.com/relloyd/csv2athena/helper"
	yamlv2 "gopkg.in/yaml.v2"
)

// Keys shared by the environment and the optional YAML config file.
const (
	KeyDatabase        = "AthenaDbName"
	KeyOutputLocation  = "OutputBucket"
	KeyAccountID       = "AwsAccountId"
	KeyRegion          = constants.EnvVarAwsRegion
	KeyDatasetRoutes   = constants.EnvVarDatasetRoutes
	KeyPollInterval    = "QueryPollInterval"
	KeyPollMaxInterval = "QueryPollMaxInterval"
	KeyQueryTimeout    = "QueryTimeout"
	KeyTagObjects      = "TagObjects"
	KeyObjectTagKey    = "ObjectTagKey"
	KeyObjectTagValue  = "ObjectTagValue"
	KeyLogLevel        = "LogLevel"
	KeyStackDump       = "StackDump"
)

// legacyRoutes lists the per-report folder / dataset name variable pairs, in routing order.
var legacyRoutes = [][2]string{
	{"IamReportBucketFolder", "IamQuicksightDatasetName"},
	{"UsGrantsBucketFolder", "UsGrantsQuicksightDatasetName"},
	{"GamsBucketFolder", "GamsQuicksightDatasetName"},
	{"AdUsersBucketFolder", "AdUsersQuicksightDatasetName"},
	{"AdGroupsBucketFolder", "AdGroupsQuicksightDatasetName"},
}

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(string) (string, bool)

// DatasetRoute pairs an upload folder with the QuickSight dataset that should follow its newest view.
type DatasetRoute struct {
	SourceFolder string `json:"sourceFolder" yaml:"sourceFolder" errorTxt:"dataset route sourceFolder" mandatory:"yes"`
	DatasetName  string `json:"datasetName" yaml:"datasetName" errorTxt:"dataset route datasetName" mandatory:"yes"`
}

// Config is everything the pipeline needs at runtime.
type Config struct {
	Database        string         `yaml:"AthenaDbName" mapstructure:"AthenaDbName" errorTxt:"AthenaDbName" mandatory:"yes"`
	OutputLocation  string         `yaml:"OutputBucket" mapstructure:"OutputBucket" errorTxt:"OutputBucket" mandatory:"yes"`
	AccountID       string         `yaml:"AwsAccountId" mapstructure:"AwsAccountId"`
	Region          string         `yaml:"AWS_REGION" mapstructure:"AWS_REGION"`
	Routes          []DatasetRoute `yaml:"DatasetRoutes" mapstructure:"-"`
	PollInterval    time.Duration  `yaml:"QueryPollInterval" mapstructure:"QueryPollInterval"`
	PollMaxInterval time.Duration  `yaml:"QueryPollMaxInterval" mapstructure:"QueryPollMaxInterval"`
	QueryTimeout    time.Duration  `yaml:"QueryTimeout" mapstructure:"QueryTimeout"`
	TagObjects      bool           `yaml:"TagObjects" mapstructure:"TagObjects"`
	ObjectTagKey    string         `yaml:"ObjectTagKey" mapstructure:"ObjectTagKey"`
	ObjectTagValue  string         `yaml:"ObjectTagValue" mapstructure:"ObjectTagValue"`
	LogLevel        string         `yaml:"LogLevel" mapstructure:"LogLevel"`
	StackDump       bool           `yaml:"StackDump" mapstructure:"StackDump"`
}

// Default returns a Config populated with everything that has a sensible default.
func Default() *Config {
	return &Config{
		PollInterval:    constants.QueryPollInterval,
		PollMaxInterval: constants.QueryPollMaxInterval,
		QueryTimeout:    constants.QueryTimeout,
		TagObjects:      true,
		ObjectTagKey:    constants.DefaultObjectTagKey,
		ObjectTagValue:  constants.DefaultObjectTagValue,
		LogLevel:        constants.LogLevelDefault,
	}
}

// Load builds a Config from defaults, then the optional YAML file at fileName, then the environment via lookup.
// Later sources override earlier ones. A nil lookup reads the process environment.
func Load(lookup LookupFunc, fileName string) (*Config, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	cfg := Default()
	if fileName != "" {
		if err := cfg.loadFile(fileName); err != nil {
			return nil, err
		}
	}
	if err := cfg.loadEnv(lookup); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(fileName string) error {
	fullPath, err := homedir.Expand(fileName)
	if err != nil {
		return errors.Wrapf(err, "unable to expand config file path %q", fileName)
	}
	b, err := ioutil.ReadFile(fullPath)
	if err != nil {
		return errors.Wrapf(err, "unable to read config file %q", fullPath)
	}
	if err = yamlv2.Unmarshal(b, c); err != nil {
		return errors.Wrapf(err, "unable to parse config file %q", fullPath)
	}
	return nil
}

func (c *Config) loadEnv(lookup LookupFunc) error {
	values := helper.ReadValuesFromEnv(lookup,
		KeyDatabase, KeyOutputLocation, KeyAccountID, KeyRegion,
		KeyPollInterval, KeyPollMaxInterval, KeyQueryTimeout,
		KeyTagObjects, KeyObjectTagKey, KeyObjectTagValue,
		KeyLogLevel, KeyStackDump)
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.DecodeHookFuncType(stringToBool)),
		WeaklyTypedInput: true,
		Result:           c,
	})
	if err != nil {
		return errors.Wrap(err, "unable to create environment decoder")
	}
	if err = decoder.Decode(values); err != nil {
		return errors.Wrap(err, "unable to decode environment")
	}
	// Routes: an explicit list wins, otherwise fall back to the legacy variable pairs.
	if v, ok := lookup(KeyDatasetRoutes); ok && strings.TrimSpace(v) != "" {
		routes, err := ParseRoutes(v)
		if err != nil {
			return err
		}
		c.Routes = routes
	} else if len(c.Routes) == 0 {
		c.Routes = legacyRoutesFromEnv(lookup)
	}
	return nil
}

// stringToBool accepts the same switch values as the command line flags: true, yes, on or 1 in any case.
// Anything else is false.
func stringToBool(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
	if f.Kind() != reflect.String || t.Kind() != reflect.Bool {
		return data, nil
	}
	return helper.GetTrueFalseStringAsBool(reflect.ValueOf(data).String()), nil
}

// ParseRoutes reads a YAML or JSON list of {sourceFolder, datasetName} records.
func ParseRoutes(s string) ([]DatasetRoute, error) {
	var routes []DatasetRoute
	if err := yaml.Unmarshal([]byte(s), &routes); err != nil {
		return nil, errors.Wrapf(err, "unable to parse %v", KeyDatasetRoutes)
	}
	return routes, nil
}

// legacyRoutesFromEnv pairs the per-report folder and dataset variables. Pairs with neither value set are ignored;
// half set pairs are kept so that validation reports them.
func legacyRoutesFromEnv(lookup LookupFunc) []DatasetRoute {
	var routes []DatasetRoute
	for _, pair := range legacyRoutes {
		folder, _ := lookup(pair[0])
		name, _ := lookup(pair[1])
		if folder == "" && name == "" {
			continue
		}
		routes = append(routes, DatasetRoute{SourceFolder: folder, DatasetName: name})
	}
	return routes
}

// Validate returns an error naming every missing or inconsistent setting.
func (c *Config) Validate() error {
	if err := helper.ValidateStructIsPopulated(c); err != nil {
		return err
	}
	if len(c.Routes) > 0 && c.AccountID == "" {
		return errors.Errorf("please supply a value for %v when dataset routes are configured", KeyAccountID)
	}
	if c.PollInterval <= 0 {
		return errors.Errorf("%v must be positive", KeyPollInterval)
	}
	if c.PollMaxInterval < c.PollInterval {
		return errors.Errorf("%v must not be less than %v", KeyPollMaxInterval, KeyPollInterval)
	}
	if c.QueryTimeout <= 0 {
		return errors.Errorf("%v must be positive", KeyQueryTimeout)
	}
	if c.TagObjects && (c.ObjectTagKey == "" || c.ObjectTagValue == "") {
		return errors.Errorf("%v and %v are required when %v is set", KeyObjectTagKey, KeyObjectTagValue, KeyTagObjects)
	}
	return nil
}
