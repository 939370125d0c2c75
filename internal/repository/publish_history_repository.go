package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"autosocial/internal/models"
)

type PublishHistoryRepository interface {
	Create(ctx context.Context, ph *models.PublishHistory) (string, error)
	ListByUserID(ctx context.Context, userID string) ([]*models.PublishHistory, error)
}

type publishHistoryRepository struct {
	db    *dynamodb.Client
	table string
}

func NewPublishHistoryRepository(db *dynamodb.Client, table string) PublishHistoryRepository {
	return &publishHistoryRepository{db: db, table: table}
}

func (r *publishHistoryRepository) Create(ctx context.Context, ph *models.PublishHistory) (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}
	ph.ID = id.String()
	if ph.CreatedAt.IsZero() {
		ph.CreatedAt = time.Now().UTC()
	}

	item, err := attributevalue.MarshalMap(ph)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	_, err = r.db.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      item,
	})
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	return ph.ID, nil
}

func (r *publishHistoryRepository) ListByUserID(ctx context.Context, userID string) ([]*models.PublishHistory, error) {
	out, err := r.db.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.table),
		IndexName:              aws.String(UserIdIndex),
		KeyConditionExpression: aws.String("user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
	})
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	var records []*models.PublishHistory
	for _, item := range out.Items {
		var ph models.PublishHistory
		if err := attributevalue.UnmarshalMap(item, &ph); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		records = append(records, &ph)
	}
	return records, nil
}
