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

// CommentRepo provides typed DynamoDB operations for the comments table.
type CommentRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewCommentRepo(client *dynamodb.Client, tableName string) *CommentRepo {
	return &CommentRepo{client: client, tableName: tableName}
}

func (r *CommentRepo) Put(ctx context.Context, c *domain.Comment) error {
	item, err := attributevalue.MarshalMap(c)
	if err != nil {
		return fmt.Errorf("marshal comment: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *CommentRepo) Get(ctx context.Context, commentID string) (*domain.Comment, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("comment_id", commentID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("comment not found: %w", domain.ErrNotFound)
	}
	var c domain.Comment
	if err := attributevalue.UnmarshalMap(out.Item, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListByPost pages through a post's comments oldest first.
func (r *CommentRepo) ListByPost(ctx context.Context, postID string, limit int32, cursor string) ([]domain.Comment, string, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("post_id-comment_id-index"),
		KeyConditionExpression: aws.String("post_id = :pid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pid": &types.AttributeValueMemberS{Value: postID},
		},
		Limit: aws.Int32(limit),
	}
	if cursor != "" {
		commentID, err := decodeCursor(cursor)
		if err != nil {
			return nil, "", fmt.Errorf("invalid cursor: %w", domain.ErrBadRequest)
		}
		input.ExclusiveStartKey = compositeKey("post_id", postID, "comment_id", commentID)
	}
	out, err := r.client.Query(ctx, input)
	if err != nil {
		return nil, "", err
	}
	comments := []domain.Comment{}
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &comments); err != nil {
		return nil, "", err
	}
	next := ""
	if v, ok := out.LastEvaluatedKey["comment_id"].(*types.AttributeValueMemberS); ok {
		next = encodeCursor(v.Value)
	}
	return comments, next, nil
}

func (r *CommentRepo) UpdateContent(ctx context.Context, commentID, content string) error {
	ue, err := buildUpdateExpr(map[string]interface{}{
		"content":      content,
		fieldUpdatedAt: nowAttr(),
	})
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("comment_id", commentID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(comment_id)"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if isConditionFailed(err) {
		return fmt.Errorf("comment not found: %w", domain.ErrNotFound)
	}
	return err
}

func (r *CommentRepo) Delete(ctx context.Context, commentID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("comment_id", commentID),
	})
	return err
}
