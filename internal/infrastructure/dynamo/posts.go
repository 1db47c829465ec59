package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/socialhub-api/internal/domain"
)

const postFeedIndex = "enable-post_id-index"

// PostRepo provides typed DynamoDB operations for the posts table.
// Post IDs are ULIDs, so ordering the feed index by post_id is ordering by creation time.
type PostRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewPostRepo(client *dynamodb.Client, tableName string) *PostRepo {
	return &PostRepo{client: client, tableName: tableName}
}

func (r *PostRepo) Put(ctx context.Context, p *domain.Post) error {
	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return fmt.Errorf("marshal post: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *PostRepo) Get(ctx context.Context, postID string) (*domain.Post, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("post_id", postID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("post not found: %w", domain.ErrNotFound)
	}
	var p domain.Post
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, err
	}
	if p.Enable == 0 {
		return nil, fmt.Errorf("post not found: %w", domain.ErrNotFound)
	}
	return &p, nil
}

// Feed returns enabled posts newest first. cursor is the base64 post_id of
// the last item of the previous page.
func (r *PostRepo) Feed(ctx context.Context, limit int32, cursor string) ([]domain.Post, string, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(postFeedIndex),
		KeyConditionExpression: aws.String("#en = :one"),
		ExpressionAttributeNames: map[string]string{
			"#en": fieldEnable,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(limit),
	}
	if cursor != "" {
		postID, err := decodeCursor(cursor)
		if err != nil {
			return nil, "", fmt.Errorf("invalid cursor: %w", domain.ErrBadRequest)
		}
		input.ExclusiveStartKey = map[string]types.AttributeValue{
			"post_id": &types.AttributeValueMemberS{Value: postID},
			"enable":  &types.AttributeValueMemberN{Value: "1"},
		}
	}
	out, err := r.client.Query(ctx, input)
	if err != nil {
		return nil, "", err
	}
	posts := []domain.Post{}
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &posts); err != nil {
		return nil, "", err
	}
	next := ""
	if v, ok := out.LastEvaluatedKey["post_id"].(*types.AttributeValueMemberS); ok {
		next = encodeCursor(v.Value)
	}
	return posts, next, nil
}

// Update applies a partial update. A nil value removes the attribute; tags
// are written as a string set to match Put.
func (r *PostRepo) Update(ctx context.Context, postID string, updates map[string]interface{}) error {
	if tags, ok := updates[fieldTags].([]string); ok {
		updates[fieldTags] = &types.AttributeValueMemberSS{Value: tags}
	}
	updates[fieldUpdatedAt] = nowAttr()
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("post_id", postID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(post_id)"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if isConditionFailed(err) {
		return fmt.Errorf("post not found: %w", domain.ErrNotFound)
	}
	return err
}

// SoftDelete drops the post out of the feed index; comments and likes stay
// but become unreachable through the post.
func (r *PostRepo) SoftDelete(ctx context.Context, postID string) error {
	return r.Update(ctx, postID, map[string]interface{}{fieldEnable: 0})
}
