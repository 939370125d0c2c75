package repository

import (
	"context"
	"log"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	config "autosocial/configs"
)

// NewDynamoClient builds the DynamoDB client used by every repository.
// An explicit endpoint (local stack, tests) overrides the default.
func NewDynamoClient(cfg config.Config) *dynamodb.Client {
	awscfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AWS.AccessKey, cfg.AWS.SecretKey, "")),
		awsconfig.WithRegion(cfg.AWS.Region),
	)
	if err != nil {
		slog.Info(err.Error())
		log.Fatal(err)
	}

	return dynamodb.NewFromConfig(awscfg, func(o *dynamodb.Options) {
		if cfg.AWS.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.AWS.Endpoint)
		}
	})
}

// UserIdIndex is the GSI every owner-partitioned table carries.
const UserIdIndex = "UserIdIndex"
