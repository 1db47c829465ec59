package dynamo

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/socialhub-api/internal/domain"
)

// TermRepo backs both the tags and the categories tables; each is keyed by slug.
type TermRepo struct {
	client    *dynamodb.Client
	tableName string
	kind      string
}

func NewTermRepo(client *dynamodb.Client, tableName, kind string) *TermRepo {
	return &TermRepo{client: client, tableName: tableName, kind: kind}
}

// Create inserts t unless a term with the same slug already exists.
func (r *TermRepo) Create(ctx context.Context, t *domain.Term) error {
	item, err := attributevalue.MarshalMap(t)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", r.kind, err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(slug)"),
	})
	if isConditionFailed(err) {
		return fmt.Errorf("%s %q already exists: %w", r.kind, t.Slug, domain.ErrConflict)
	}
	return err
}

func (r *TermRepo) Get(ctx context.Context, slug string) (*domain.Term, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("slug", slug),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("%s not found: %w", r.kind, domain.ErrNotFound)
	}
	var t domain.Term
	if err := attributevalue.UnmarshalMap(out.Item, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// List returns every term ordered by name. The tables are small reference
// data so a paginated scan is acceptable.
func (r *TermRepo) List(ctx context.Context) ([]domain.Term, error) {
	terms := []domain.Term{}
	p := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{TableName: aws.String(r.tableName)})
	for p.HasMorePages() {
		out, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var page []domain.Term
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		terms = append(terms, page...)
	}
	sort.Slice(terms, func(i, j int) bool { return terms[i].Name < terms[j].Name })
	return terms, nil
}
