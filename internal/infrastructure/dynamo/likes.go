package dynamo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/socialhub-api/internal/domain"
)

// LikeRepo keeps one item per (post, user) like and the denormalised
// like_count on the post in step through transactions.
type LikeRepo struct {
	client     *dynamodb.Client
	tableName  string
	postsTable string
}

func NewLikeRepo(client *dynamodb.Client, tableName, postsTable string) *LikeRepo {
	return &LikeRepo{client: client, tableName: tableName, postsTable: postsTable}
}

// Toggle likes the post for userID, or removes the like if one exists.
func (r *LikeRepo) Toggle(ctx context.Context, postID, userID string) (*domain.LikeResult, error) {
	err := r.like(ctx, postID, userID)
	liked := true
	if errors.Is(err, domain.ErrConflict) {
		err = r.unlike(ctx, postID, userID)
		liked = false
	}
	if err != nil {
		return nil, err
	}
	count, err := r.likeCount(ctx, postID)
	if err != nil {
		return nil, err
	}
	return &domain.LikeResult{Liked: liked, LikeCount: count}, nil
}

func (r *LikeRepo) like(ctx context.Context, postID, userID string) error {
	item, err := attributevalue.MarshalMap(domain.Like{PostID: postID, UserID: userID, CreatedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal like: %w", err)
	}
	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:           aws.String(r.tableName),
				Item:                item,
				ConditionExpression: aws.String("attribute_not_exists(user_id)"),
			}},
			r.adjustCount(postID, 1),
		},
	})
	return classifyTxErr(err, "already liked")
}

func (r *LikeRepo) unlike(ctx context.Context, postID, userID string) error {
	_, err := r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Delete: &types.Delete{
				TableName:           aws.String(r.tableName),
				Key:                 compositeKey("post_id", postID, "user_id", userID),
				ConditionExpression: aws.String("attribute_exists(user_id)"),
			}},
			r.adjustCount(postID, -1),
		},
	})
	return classifyTxErr(err, "like already removed")
}

func (r *LikeRepo) adjustCount(postID string, delta int) types.TransactWriteItem {
	return types.TransactWriteItem{Update: &types.Update{
		TableName:           aws.String(r.postsTable),
		Key:                 strKey("post_id", postID),
		UpdateExpression:    aws.String("ADD #c :d"),
		ConditionExpression: aws.String("attribute_exists(post_id) AND #en = :one"),
		ExpressionAttributeNames: map[string]string{
			"#c":  fieldLikeCount,
			"#en": fieldEnable,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":d":   &types.AttributeValueMemberN{Value: strconv.Itoa(delta)},
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
	}}
}

func (r *LikeRepo) likeCount(ctx context.Context, postID string) (int, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:                aws.String(r.postsTable),
		Key:                      strKey("post_id", postID),
		ProjectionExpression:     aws.String("#c"),
		ExpressionAttributeNames: map[string]string{"#c": fieldLikeCount},
		ConsistentRead:           aws.Bool(true),
	})
	if err != nil {
		return 0, err
	}
	var p struct {
		LikeCount int `dynamodbav:"like_count"`
	}
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return 0, err
	}
	return p.LikeCount, nil
}

// classifyTxErr maps a cancelled like transaction to a domain error:
// a failed first item (the like row) is ErrConflict, a failed second item
// (the post) is ErrNotFound.
func classifyTxErr(err error, conflictMsg string) error {
	if err == nil {
		return nil
	}
	var tce *types.TransactionCanceledException
	if !errors.As(err, &tce) {
		return err
	}
	reasons := tce.CancellationReasons
	if len(reasons) > 1 && aws.ToString(reasons[1].Code) == "ConditionalCheckFailed" {
		return fmt.Errorf("post not found: %w", domain.ErrNotFound)
	}
	if len(reasons) > 0 && aws.ToString(reasons[0].Code) == "ConditionalCheckFailed" {
		return fmt.Errorf("%s: %w", conflictMsg, domain.ErrConflict)
	}
	return err
}
