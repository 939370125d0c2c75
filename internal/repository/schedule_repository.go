package repository

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"autosocial/internal/models"
)

type ScheduleRepository interface {
	Create(ctx context.Context, schedule *models.Schedule) error
	GetByID(ctx context.Context, id string) (*models.Schedule, error)
	ListByUserID(ctx context.Context, userID string) ([]*models.Schedule, error)
	ListEnabled(ctx context.Context) ([]*models.Schedule, error)
	Update(ctx context.Context, id string, fields map[string]any) (*models.Schedule, error)
	Remove(ctx context.Context, id string) error
}

type scheduleRepository struct {
	db    *dynamodb.Client
	table string
}

func NewScheduleRepository(db *dynamodb.Client, table string) ScheduleRepository {
	return &scheduleRepository{db: db, table: table}
}

func (r *scheduleRepository) Create(ctx context.Context, schedule *models.Schedule) error {
	item, err := attributevalue.MarshalMap(schedule)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	_, err = r.db.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      item,
	})
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *scheduleRepository) GetByID(ctx context.Context, id string) (*models.Schedule, error) {
	out, err := r.db.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key:       map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: id}},
	})
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	if out.Item == nil {
		return nil, nil
	}

	var schedule models.Schedule
	if err := attributevalue.UnmarshalMap(out.Item, &schedule); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return &schedule, nil
}

func (r *scheduleRepository) ListByUserID(ctx context.Context, userID string) ([]*models.Schedule, error) {
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

	return unmarshalSchedules(out.Items)
}

func (r *scheduleRepository) ListEnabled(ctx context.Context) ([]*models.Schedule, error) {
	out, err := r.db.Scan(ctx, &dynamodb.ScanInput{
		TableName:        aws.String(r.table),
		FilterExpression: aws.String("enabled = :enabled"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":enabled": &types.AttributeValueMemberBOOL{Value: true},
		},
	})
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return unmarshalSchedules(out.Items)
}

func (r *scheduleRepository) Update(ctx context.Context, id string, fields map[string]any) (*models.Schedule, error) {
	names := make(map[string]string, len(fields))
	values := make(map[string]types.AttributeValue, len(fields))
	sets := make([]string, 0, len(fields))

	i := 0
	for name, value := range fields {
		attr, err := attributevalue.Marshal(value)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		ph := fmt.Sprintf("#f%d", i)
		vp := fmt.Sprintf(":v%d", i)
		names[ph] = name
		values[vp] = attr
		sets = append(sets, ph+" = "+vp)
		i++
	}
	sort.Strings(sets)

	out, err := r.db.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.table),
		Key:                       map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: id}},
		UpdateExpression:          aws.String("SET " + strings.Join(sets, ", ")),
		ConditionExpression:       aws.String("attribute_exists(id)"),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		if isConditionFailed(err) {
			return nil, models.ErrNotFound
		}
		slog.Info(err.Error())
		return nil, err
	}

	var schedule models.Schedule
	if err := attributevalue.UnmarshalMap(out.Attributes, &schedule); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return &schedule, nil
}

func (r *scheduleRepository) Remove(ctx context.Context, id string) error {
	_, err := r.db.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.table),
		Key:       map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: id}},
	})
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func unmarshalSchedules(items []map[string]types.AttributeValue) ([]*models.Schedule, error) {
	var schedules []*models.Schedule
	for _, item := range items {
		var schedule models.Schedule
		if err := attributevalue.UnmarshalMap(item, &schedule); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		schedules = append(schedules, &schedule)
	}
	return schedules, nil
}
