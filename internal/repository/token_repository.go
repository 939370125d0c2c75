package repository

import (
	"context"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"autosocial/internal/models"
)

// CredentialChainKey is the fixed id of the single credential-chain
// record: one connected platform account per deployment.
const CredentialChainKey = "facebook"

type TokenRepository interface {
	// Get returns the stored credential chain, or nil when none has
	// been bootstrapped yet.
	Get(ctx context.Context) (*models.CredentialChain, error)
	// Put replaces the chain. previousLongToken must match the stored
	// long-lived token value (empty for a first write); a mismatch
	// means another writer renewed concurrently and Put returns
	// models.ErrConditionFailed.
	Put(ctx context.Context, chain *models.CredentialChain, previousLongToken string) error
}

type tokenRepository struct {
	db    *dynamodb.Client
	table string
}

func NewTokenRepository(db *dynamodb.Client, table string) TokenRepository {
	return &tokenRepository{db: db, table: table}
}

func (r *tokenRepository) Get(ctx context.Context) (*models.CredentialChain, error) {
	out, err := r.db.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key:       map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: CredentialChainKey}},
	})
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	if out.Item == nil {
		return nil, nil
	}

	var chain models.CredentialChain
	if err := attributevalue.UnmarshalMap(out.Item, &chain); err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return &chain, nil
}

func (r *tokenRepository) Put(ctx context.Context, chain *models.CredentialChain, previousLongToken string) error {
	chain.ID = CredentialChainKey

	item, err := attributevalue.MarshalMap(chain)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	_, err = r.db.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id) OR long_lived_token = :prev"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":prev": &types.AttributeValueMemberS{Value: previousLongToken},
		},
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
