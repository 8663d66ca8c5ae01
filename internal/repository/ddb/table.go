package ddb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

const tableReadyTimeout = 2 * time.Minute

// NewClient builds a DynamoDB client from a loaded AWS config. endpoint
// overrides the service URL when set (DynamoDB Local, LocalStack).
func NewClient(awsCfg aws.Config, endpoint string) *dynamodb.Client {
	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
}

// EnsureTable creates the single table with PK/SK string keys if it does not
// exist yet and waits until it is active. It reports whether it created it.
func EnsureTable(ctx context.Context, client Client, tableName string, logger *zap.Logger) (bool, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	_, err := client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(tableName)})
	if err == nil {
		logger.Debug("table already exists", zap.String("table", tableName))
		return false, nil
	}
	var rnf *types.ResourceNotFoundException
	if !errors.As(err, &rnf) {
		return false, fmt.Errorf("failed to describe table %s: %w", tableName, err)
	}

	_, err = client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName:   aws.String(tableName),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("PK"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String("SK"), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("PK"), KeyType: types.KeyTypeHash},
			{AttributeName: aws.String("SK"), KeyType: types.KeyTypeRange},
		},
	})
	if err != nil {
		return false, fmt.Errorf("failed to create table %s: %w", tableName, err)
	}

	waiter := dynamodb.NewTableExistsWaiter(client)
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(tableName)}, tableReadyTimeout); err != nil {
		return true, fmt.Errorf("table %s did not become active: %w", tableName, err)
	}

	logger.Info("created table", zap.String("table", tableName))
	return true, nil
}
