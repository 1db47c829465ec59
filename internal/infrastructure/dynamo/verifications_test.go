package dynamo

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
)

func TestVerificationRepo_ConsumeInput(t *testing.T) {
	r := &VerificationRepo{tableName: "user_verifications"}
	in := r.consumeInput("u1", "email", "link-2", 1700000000)

	assert.Equal(t, "user_verifications", aws.ToString(in.TableName))
	assert.Equal(t, &types.AttributeValueMemberS{Value: "u1"}, in.Key["user_id"])
	assert.Equal(t, &types.AttributeValueMemberS{Value: "email"}, in.Key["type"])
	// Only the latest unexpired link may be deleted.
	assert.Equal(t, "link_id = :l AND expires_at > :now",
		resolve(aws.ToString(in.ConditionExpression), in.ExpressionAttributeNames))
	assert.Equal(t, &types.AttributeValueMemberS{Value: "link-2"}, in.ExpressionAttributeValues[":l"])
	assert.Equal(t, &types.AttributeValueMemberN{Value: "1700000000"}, in.ExpressionAttributeValues[":now"])
}
