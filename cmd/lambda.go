package cmd

import (
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/cobra"
)

var lambdaCmd = &cobra.Command{
	Use:   "lambda",
	Short: "Serve S3 notifications from the AWS Lambda runtime",
	Long: `Serve S3 notifications from the AWS Lambda runtime.
This command is chosen automatically when AWS_LAMBDA_RUNTIME_API is set and no
other command is given. Configuration is read from the environment.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		log := newLogger(cfg)
		o, err := newOrchestrator(log, cfg)
		if err != nil {
			return err
		}
		log.Info("Starting Lambda handler")
		lambda.Start(o.HandleS3Event)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(lambdaCmd)
}
