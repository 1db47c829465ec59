package dynamo

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/socialhub-api/internal/config"
)

// key is one attribute of a primary or index key.
type key struct {
	name string
	typ  types.ScalarAttributeType
}

func str(name string) key { return key{name, types.ScalarAttributeTypeS} }
func num(name string) key { return key{name, types.ScalarAttributeTypeN} }

type index struct {
	name       string
	hash, sort key
}

type tableSchema struct {
	name       string
	hash, sort key
	indexes    []index
	ttlAttr    string
}

// schemas describes every table the repositories read from.
func schemas(t config.DynamoTables) []tableSchema {
	return []tableSchema{
		{
			name: t.Users,
			hash: str(fieldUserID),
			indexes: []index{
				{name: "username-index", hash: str("username")},
				{name: "email-index", hash: str("email")},
				{name: "enable-index", hash: num(fieldEnable)},
			},
		},
		{
			name: t.Sessions,
			hash: str("session_id"),
			indexes: []index{
				{name: "user_id-index", hash: str(fieldUserID)},
				{name: "refresh_token-index", hash: str(fieldRefreshToken)},
			},
			ttlAttr: fieldRefreshExpiresAt,
		},
		{
			name:    t.Devices,
			hash:    str("device_id"),
			indexes: []index{{name: "device_uuid-index", hash: str("device_uuid")}},
		},
		{
			name:    t.Notifications,
			hash:    str("notification_id"),
			indexes: []index{{name: "user_id-created_at-index", hash: str(fieldUserID), sort: str("created_at")}},
		},
		{name: t.Files, hash: str("file_id")},
		{
			name:    t.Profiles,
			hash:    str(fieldUserID),
			indexes: []index{{name: "username-index", hash: str("username")}},
		},
		{
			name:    t.Posts,
			hash:    str(fieldPostID),
			indexes: []index{{name: postFeedIndex, hash: num(fieldEnable), sort: str(fieldPostID)}},
		},
		{
			name:    t.Comments,
			hash:    str("comment_id"),
			indexes: []index{{name: "post_id-comment_id-index", hash: str(fieldPostID), sort: str("comment_id")}},
		},
		{name: t.Likes, hash: str(fieldPostID), sort: str(fieldUserID)},
		{name: t.Tags, hash: str("slug")},
		{name: t.Categories, hash: str("slug")},
		{
			name:    t.Verifications,
			hash:    str(fieldUserID),
			sort:    str(fieldVerificationType),
			ttlAttr: fieldVerificationExpiresAt,
		},
	}
}

// Bootstrap creates any missing tables and their GSIs. Existing tables are
// left untouched, and failures are logged rather than returned so a
// read-only deployment still starts.
func Bootstrap(ctx context.Context, client *dynamodb.Client, tables config.DynamoTables) {
	for _, s := range schemas(tables) {
		createTable(ctx, client, s.input())
		if s.ttlAttr != "" {
			enableTTL(ctx, client, s.name, s.ttlAttr)
		}
	}
}

func (s tableSchema) input() *dynamodb.CreateTableInput {
	in := &dynamodb.CreateTableInput{
		TableName:   aws.String(s.name),
		BillingMode: types.BillingModePayPerRequest,
		KeySchema:   keySchema(s.hash, s.sort),
	}
	seen := make(map[string]bool)
	define := func(k key) {
		if k.name == "" || seen[k.name] {
			return
		}
		seen[k.name] = true
		in.AttributeDefinitions = append(in.AttributeDefinitions, types.AttributeDefinition{
			AttributeName: aws.String(k.name),
			AttributeType: k.typ,
		})
	}
	define(s.hash)
	define(s.sort)
	for _, idx := range s.indexes {
		define(idx.hash)
		define(idx.sort)
		in.GlobalSecondaryIndexes = append(in.GlobalSecondaryIndexes, types.GlobalSecondaryIndex{
			IndexName:  aws.String(idx.name),
			KeySchema:  keySchema(idx.hash, idx.sort),
			Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
		})
	}
	return in
}

func keySchema(hash, sort key) []types.KeySchemaElement {
	ks := []types.KeySchemaElement{{AttributeName: aws.String(hash.name), KeyType: types.KeyTypeHash}}
	if sort.name != "" {
		ks = append(ks, types.KeySchemaElement{AttributeName: aws.String(sort.name), KeyType: types.KeyTypeRange})
	}
	return ks
}

func createTable(ctx context.Context, client *dynamodb.Client, input *dynamodb.CreateTableInput) {
	if _, err := client.CreateTable(ctx, input); err != nil {
		var inUse *types.ResourceInUseException
		if !errors.As(err, &inUse) {
			slog.Warn("could not create table", "table", *input.TableName, "err", err)
		}
		return
	}
	slog.Info("created table", "table", *input.TableName)
}

func enableTTL(ctx context.Context, client *dynamodb.Client, table, attr string) {
	_, err := client.UpdateTimeToLive(ctx, &dynamodb.UpdateTimeToLiveInput{
		TableName: aws.String(table),
		TimeToLiveSpecification: &types.TimeToLiveSpecification{
			Enabled:       aws.Bool(true),
			AttributeName: aws.String(attr),
		},
	})
	if err != nil {
		slog.Warn("could not enable TTL", "table", table, "err", err)
	}
}
