package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"autosocial/internal/models"
)

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	ListByUserID(ctx context.Context, userID string) ([]*models.Post, error)
	ListDueByUserID(ctx context.Context, userID string, due time.Time) ([]*models.Post, error)
	Update(ctx context.Context, id string, fields map[string]any) (*models.Post, error)
	UpdateStatus(ctx context.Context, id, fromStatus, toStatus, errorMessage string) error
	Remove(ctx context.Context, id string) error
}

type postRepository struct {
	db    *dynamodb.Client
	table string
}

func NewPostRepository(db *dynamodb.Client, table string) PostRepository {
	return &postRepository{db: db, table: table}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	item, err := attributevalue.MarshalMap(post)
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

func (r *postRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
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

	var post models.Post
	if err := attributevalue.UnmarshalMap(out.Item, &post); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) ListByUserID(ctx context.Context, userID string) ([]*models.Post, error) {
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

	return unmarshalPosts(out.Items)
}

func (r *postRepository) ListDueByUserID(ctx context.Context, userID string, due time.Time) ([]*models.Post, error) {
	dueAttr, err := attributevalue.Marshal(due)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	out, err := r.db.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.table),
		IndexName:              aws.String(UserIdIndex),
		KeyConditionExpression: aws.String("user_id = :uid"),
		FilterExpression:       aws.String("#status = :scheduled AND scheduled_for <= :due"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid":       &types.AttributeValueMemberS{Value: userID},
			":scheduled": &types.AttributeValueMemberS{Value: models.PostStatusScheduled},
			":due":       dueAttr,
		},
	})
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return unmarshalPosts(out.Items)
}

func (r *postRepository) Update(ctx context.Context, id string, fields map[string]any) (*models.Post, error) {
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

	var post models.Post
	if err := attributevalue.UnmarshalMap(out.Attributes, &post); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return &post, nil
}

// UpdateStatus is the publish path's status transition. The condition on
// the current status keeps terminal states terminal: a duplicate
// nomination of an already published or failed post loses the
// conditional write instead of overwriting the recorded outcome.
func (r *postRepository) UpdateStatus(ctx context.Context, id, fromStatus, toStatus, errorMessage string) error {
	values := map[string]types.AttributeValue{
		":from":    &types.AttributeValueMemberS{Value: fromStatus},
		":to":      &types.AttributeValueMemberS{Value: toStatus},
		":cause":   &types.AttributeValueMemberS{Value: errorMessage},
		":updated": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339Nano)},
	}

	_, err := r.db.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.table),
		Key:                 map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: id}},
		UpdateExpression:    aws.String("SET #status = :to, error_message = :cause, updated_at = :updated"),
		ConditionExpression: aws.String("attribute_exists(id) AND #status = :from"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: values,
	})
	if err != nil {
		if isConditionFailed(err) {
			return models.ErrConditionFailed
		}
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *postRepository) Remove(ctx context.Context, id string) error {
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

func unmarshalPosts(items []map[string]types.AttributeValue) ([]*models.Post, error) {
	var posts []*models.Post
	for _, item := range items {
		var post models.Post
		if err := attributevalue.UnmarshalMap(item, &post); err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, &post)
	}
	return posts, nil
}

func isConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}
