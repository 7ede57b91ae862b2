package constants

import "time"

// Pipeline

const (
	EnvVarPrefix           = "C2A" // prefixed for environment variables that are not part of the deployment contract
	ViewsDirName           = "views"
	ViewNameSuffix         = "_view"
	ViewKeyMarker          = "view" // keys below a folder containing this are view templates, not data
	DefaultObjectTagKey    = "Type"
	DefaultObjectTagValue  = "AthenaDataSet"
	CsvSerdeClass          = "org.apache.hadoop.hive.serde2.OpenCSVSerde"
	SkipHeaderLineCount    = "1"
	ColumnDataType         = "string"
	HeaderMaxBytes         = 1 << 20 // upper bound when reading the first line of a CSV object
	QueryPollInterval      = 5 * time.Second
	QueryPollMaxInterval   = 30 * time.Second
	QueryPollBackoffFactor = 2
	QueryTimeout           = 15 * time.Minute
	DatasetListPageSize    = 100
	LogServiceName         = "csv2athena"
	LogLevelDefault        = "info"
	EnvVarLambdaRuntimeAPI = "AWS_LAMBDA_RUNTIME_API" // set by the Lambda runtime
	EnvVarAwsRegion        = "AWS_REGION"
	EnvVarDatasetRoutes    = "DatasetRoutes"
	EnvVarConfigFile       = EnvVarPrefix + "_CONFIG_FILE"
	StepStatusSucceeded    = "succeeded"
	StepStatusFailed       = "failed"
	StepStatusSkipped      = "skipped"
	StepEnsureDatabase     = "ensure-database"
	StepDecodeKey          = "decode-key"
	StepTagObject          = "tag-object"
	StepInferSchema        = "infer-schema"
	StepProvisionTable     = "provision-table"
	StepApplyViews         = "apply-views"
	StepSyncDataset        = "sync-dataset"
	StepRecoverPanic       = "recover"
	KindSchemaInference    = "SchemaInferenceFailure"
	KindQuerySubmission    = "QuerySubmissionFailure"
	KindQueryExecution     = "QueryExecutionFailure"
	KindQueryTimeout       = "QueryTimeout"
	KindViewRender         = "ViewRenderFailure"
	KindDatasetNotFound    = "DatasetNotFound"
	KindDatasetUpdate      = "DatasetUpdateFailure"
	KindStorage            = "StorageFailure"
	KindConfiguration      = "ConfigurationFailure"
	KindUnexpected         = "UnexpectedFailure"
)
