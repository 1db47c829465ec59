package dynamo

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/socialhub-api/internal/domain"
)

const fieldLinkID = "link_id"

// VerificationRepo stores the outstanding verification link per user.
// PK: user_id, SK: type.
type VerificationRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewVerificationRepo(client *dynamodb.Client, tableName string) *VerificationRepo {
	return &VerificationRepo{client: client, tableName: tableName}
}

// Put records v, replacing any earlier link of the same type.
func (r *VerificationRepo) Put(ctx context.Context, v *domain.LinkVerification) error {
	item, err := attributevalue.MarshalMap(v)
	if err != nil {
		return fmt.Errorf("marshal verification: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// Consume deletes the record only if it still names linkID and has not
// expired. A superseded, used or lapsed link yields ErrNotFound.
func (r *VerificationRepo) Consume(ctx context.Context, userID, verType, linkID string, now int64) error {
	_, err := r.client.DeleteItem(ctx, r.consumeInput(userID, verType, linkID, now))
	if isConditionFailed(err) {
		return fmt.Errorf("verification link not outstanding: %w", domain.ErrNotFound)
	}
	return err
}

func (r *VerificationRepo) consumeInput(userID, verType, linkID string, now int64) *dynamodb.DeleteItemInput {
	return &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 r.key(userID, verType),
		ConditionExpression: aws.String("#l = :l AND #e > :now"),
		ExpressionAttributeNames: map[string]string{
			"#l": fieldLinkID,
			"#e": fieldVerificationExpiresAt,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":l":   &types.AttributeValueMemberS{Value: linkID},
			":now": &types.AttributeValueMemberN{Value: strconv.FormatInt(now, 10)},
		},
	}
}

func (r *VerificationRepo) key(userID, verType string) map[string]types.AttributeValue {
	return compositeKey(fieldUserID, userID, fieldVerificationType, verType)
}
