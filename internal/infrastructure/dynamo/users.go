package dynamo

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/socialhub-api/internal/domain"
)

// UserRepo provides typed DynamoDB operations for the users table.
type UserRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewUserRepo(client *dynamodb.Client, tableName string) *UserRepo {
	return &UserRepo{client: client, tableName: tableName}
}

func (r *UserRepo) Put(ctx context.Context, u *domain.User) error {
	item, err := attributevalue.MarshalMap(u)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *UserRepo) Get(ctx context.Context, userID string) (*domain.User, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey("user_id", userID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	var u domain.User
	if err := attributevalue.UnmarshalMap(out.Item, &u); err != nil {
		return nil, err
	}
	if u.Enable == 0 {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	return &u, nil
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.queryGSI(ctx, "username-index", "username", username)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.queryGSI(ctx, "email-index", "email", email)
}

func (r *UserRepo) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	updates[fieldUpdatedAt] = nowAttr()
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("user_id", userID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(user_id)"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if isConditionFailed(err) {
		return fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	return err
}

func (r *UserRepo) SoftDelete(ctx context.Context, userID string) error {
	return r.Update(ctx, userID, map[string]interface{}{
		fieldEnable:    0,
		fieldDeletedAt: nowAttr(),
	})
}

// QueryPage returns a page of enabled users from the enable-index GSI.
// cursor is a base64-encoded user_id used as ExclusiveStartKey.
func (r *UserRepo) QueryPage(ctx context.Context, limit int32, cursor string) ([]domain.User, string, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("enable-index"),
		KeyConditionExpression: aws.String("#en = :one"),
		ExpressionAttributeNames: map[string]string{
			"#en": fieldEnable,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
		Limit: aws.Int32(limit),
	}
	if cursor != "" {
		userID, err := decodeCursor(cursor)
		if err != nil {
			return nil, "", fmt.Errorf("invalid cursor: %w", domain.ErrBadRequest)
		}
		input.ExclusiveStartKey = map[string]types.AttributeValue{
			"user_id": &types.AttributeValueMemberS{Value: userID},
			"enable":  &types.AttributeValueMemberN{Value: "1"},
		}
	}
	out, err := r.client.Query(ctx, input)
	if err != nil {
		return nil, "", err
	}
	var users []domain.User
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &users); err != nil {
		return nil, "", err
	}
	nextCursor := ""
	if v, ok := out.LastEvaluatedKey["user_id"].(*types.AttributeValueMemberS); ok {
		nextCursor = encodeCursor(v.Value)
	}
	return users, nextCursor, nil
}

// SetOTP stores a freshly issued code digest and expiry and zeroes the
// attempt counter in a single write, superseding any pending code. The write
// is refused once verified_at is set, so a re-issue racing a successful
// verification cannot leave a live code on a verified user.
func (r *UserRepo) SetOTP(ctx context.Context, userID, codeHash string, expiresAt int64) error {
	_, err := r.client.UpdateItem(ctx, r.setOTPInput(userID, codeHash, expiresAt))
	if old, failed := conditionFailedItem(err); failed {
		if len(old) == 0 {
			return fmt.Errorf("user not found: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("otp not issued: %w", domain.ErrAlreadyVerified)
	}
	return err
}

func (r *UserRepo) setOTPInput(userID, codeHash string, expiresAt int64) *dynamodb.UpdateItemInput {
	return &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey(fieldUserID, userID),
		UpdateExpression:    aws.String("SET #h = :h, #e = :e, #a = :zero, #u = :now"),
		ConditionExpression: aws.String("attribute_exists(#id) AND attribute_not_exists(#v)"),
		ExpressionAttributeNames: map[string]string{
			"#id": fieldUserID,
			"#v":  fieldVerifiedAt,
			"#h":  fieldOTPCodeHash,
			"#e":  fieldOTPExpiresAt,
			"#a":  fieldOTPAttempts,
			"#u":  fieldUpdatedAt,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":h":    &types.AttributeValueMemberS{Value: codeHash},
			":e":    &types.AttributeValueMemberN{Value: strconv.FormatInt(expiresAt, 10)},
			":zero": &types.AttributeValueMemberN{Value: "0"},
			":now":  &types.AttributeValueMemberS{Value: nowAttr()},
		},
		ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
	}
}

// IncrementOTPAttempts consumes one attempt. The write only succeeds while
// the pending code is unexpired at now and the counter is below maxAttempts;
// otherwise it returns an error wrapping domain.ErrConflict and leaves the
// item untouched. On success the updated user is returned.
func (r *UserRepo) IncrementOTPAttempts(ctx context.Context, userID string, now int64, maxAttempts int) (*domain.User, error) {
	out, err := r.client.UpdateItem(ctx, r.incrementOTPInput(userID, now, maxAttempts))
	if isConditionFailed(err) {
		return nil, fmt.Errorf("otp attempt rejected: %w", domain.ErrConflict)
	}
	if err != nil {
		return nil, err
	}
	var u domain.User
	if err := attributevalue.UnmarshalMap(out.Attributes, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) incrementOTPInput(userID string, now int64, maxAttempts int) *dynamodb.UpdateItemInput {
	return &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey(fieldUserID, userID),
		UpdateExpression:    aws.String("SET #a = if_not_exists(#a, :zero) + :one"),
		ConditionExpression: aws.String("#e > :now AND (attribute_not_exists(#a) OR #a < :max)"),
		ExpressionAttributeNames: map[string]string{
			"#a": fieldOTPAttempts,
			"#e": fieldOTPExpiresAt,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":zero": &types.AttributeValueMemberN{Value: "0"},
			":one":  &types.AttributeValueMemberN{Value: "1"},
			":now":  &types.AttributeValueMemberN{Value: strconv.FormatInt(now, 10)},
			":max":  &types.AttributeValueMemberN{Value: strconv.Itoa(maxAttempts)},
		},
		ReturnValues: types.ReturnValueAllNew,
	}
}

// CompleteOTP marks the user verified (if not already), clears the code and
// expiry and resets attempts. It is conditioned on the stored digest still
// being codeHash, so a code re-issued in the meantime is left intact.
// newlyVerified reports whether verified_at was set by this call.
func (r *UserRepo) CompleteOTP(ctx context.Context, userID, codeHash string, now time.Time) (newlyVerified bool, err error) {
	in, err := r.completeOTPInput(userID, codeHash, now)
	if err != nil {
		return false, err
	}
	out, err := r.client.UpdateItem(ctx, in)
	if isConditionFailed(err) {
		return false, fmt.Errorf("otp superseded: %w", domain.ErrConflict)
	}
	if err != nil {
		return false, err
	}
	_, hadVerified := out.Attributes[fieldVerifiedAt]
	return !hadVerified, nil
}

// MarkVerified sets verified_at if it is not already set and clears any
// pending code, whatever its state. newlyVerified reports whether this call
// set verified_at.
func (r *UserRepo) MarkVerified(ctx context.Context, userID string, now time.Time) (newlyVerified bool, err error) {
	in, err := r.markVerifiedInput(userID, now)
	if err != nil {
		return false, err
	}
	out, err := r.client.UpdateItem(ctx, in)
	if isConditionFailed(err) {
		return false, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	if err != nil {
		return false, err
	}
	_, hadVerified := out.Attributes[fieldVerifiedAt]
	return !hadVerified, nil
}

func (r *UserRepo) completeOTPInput(userID, codeHash string, now time.Time) (*dynamodb.UpdateItemInput, error) {
	in, err := r.verifyInput(userID, now)
	if err != nil {
		return nil, err
	}
	in.ConditionExpression = aws.String("#h = :h")
	in.ExpressionAttributeValues[":h"] = &types.AttributeValueMemberS{Value: codeHash}
	return in, nil
}

func (r *UserRepo) markVerifiedInput(userID string, now time.Time) (*dynamodb.UpdateItemInput, error) {
	in, err := r.verifyInput(userID, now)
	if err != nil {
		return nil, err
	}
	in.ConditionExpression = aws.String("attribute_exists(#id)")
	in.ExpressionAttributeNames["#id"] = fieldUserID
	return in, nil
}

// verifyInput is the shared verified_at write; callers add the condition.
func (r *UserRepo) verifyInput(userID string, now time.Time) (*dynamodb.UpdateItemInput, error) {
	verifiedAt, err := attributevalue.Marshal(now.UTC())
	if err != nil {
		return nil, fmt.Errorf("marshal verified_at: %w", err)
	}
	return &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey(fieldUserID, userID),
		UpdateExpression: aws.String(
			"SET #a = :zero, #v = if_not_exists(#v, :now), #u = :ts REMOVE #h, #e",
		),
		ExpressionAttributeNames: map[string]string{
			"#a": fieldOTPAttempts,
			"#v": fieldVerifiedAt,
			"#u": fieldUpdatedAt,
			"#h": fieldOTPCodeHash,
			"#e": fieldOTPExpiresAt,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":zero": &types.AttributeValueMemberN{Value: "0"},
			":now":  verifiedAt,
			":ts":   &types.AttributeValueMemberS{Value: nowAttr()},
		},
		ReturnValues: types.ReturnValueUpdatedOld,
	}, nil
}

func (r *UserRepo) queryGSI(ctx context.Context, index, attr, value string) (*domain.User, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(index),
		KeyConditionExpression:    aws.String("#a = :v"),
		ExpressionAttributeNames:  map[string]string{"#a": attr},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: value}},
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}
	var u domain.User
	if err := attributevalue.UnmarshalMap(out.Items[0], &u); err != nil {
		return nil, err
	}
	return &u, nil
}
