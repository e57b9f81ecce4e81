// Package dynamo implements domain.DocumentRepository backed by DynamoDB.
//
// DynamoDB conditional writes give the tag mutations the same
// compare-and-set semantics the Postgres backend gets from conditional
// UPDATEs: the membership precondition and the mutation are evaluated by the
// store as one indivisible operation.
//
// Table schema:
//   - Partition key: id (string)
//
// Create table with:
//
//	aws dynamodb create-table \
//	  --table-name doctags-documents \
//	  --attribute-definitions AttributeName=id,AttributeType=S \
//	  --key-schema AttributeName=id,KeyType=HASH \
//	  --billing-mode PAY_PER_REQUEST
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"doctags/internal/domain"
)

// DDBClient is the interface for DynamoDB operations.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// ErrConcurrentModification is returned when a tag removal loses its
// compare-and-set race too many times in a row.
var ErrConcurrentModification = errors.New("concurrent modification detected")

// maxRemoveAttempts bounds the RemoveTag read-and-swap loop.
const maxRemoveAttempts = 4

// Config carries repository options that vary per deployment.
type Config struct {
	TableName string
	// TagsAttribute is the list attribute holding document tags. Defaults to
	// "tags"; deployments with a legacy attribute name set it here.
	TagsAttribute string
}

type documentRepository struct {
	client   DDBClient
	table    string
	tagsAttr string
}

// NewDocumentRepository returns a domain.DocumentRepository implemented with
// DynamoDB.
func NewDocumentRepository(client DDBClient, cfg Config) (domain.DocumentRepository, error) {
	if cfg.TableName == "" {
		return nil, errors.New("dynamo: table name is required")
	}
	attr := cfg.TagsAttribute
	if attr == "" {
		attr = "tags"
	}
	return &documentRepository{
		client:   client,
		table:    cfg.TableName,
		tagsAttr: attr,
	}, nil
}

func (r *documentRepository) Create(ctx context.Context, d *domain.Document) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	_, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table),
		Item:                r.documentToItem(d),
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return fmt.Errorf("document %s already exists", d.ID)
		}
		return fmt.Errorf("failed to put document: %w", err)
	}
	return nil
}

func (r *documentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	resp, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.table),
		Key:            itemKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	if len(resp.Item) == 0 {
		return nil, domain.ErrNotFound
	}
	return r.itemToDocument(resp.Item)
}

// AddTag appends tag only when the item exists and the tag is absent, as a
// single conditional UpdateItem. ALL_OLD on condition failure tells the two
// failure modes apart without a second round trip: an empty item means the
// document is missing, a populated one means the tag was already there.
func (r *documentRepository) AddTag(ctx context.Context, id, tag string) (bool, error) {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.table),
		Key:                 itemKey(id),
		UpdateExpression:    aws.String("SET #t = list_append(#t, :new), updated_at = :now"),
		ConditionExpression: aws.String("attribute_exists(id) AND NOT contains(#t, :tag)"),
		ExpressionAttributeNames: map[string]string{
			"#t": r.tagsAttr,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":new": &types.AttributeValueMemberL{Value: []types.AttributeValue{
				&types.AttributeValueMemberS{Value: tag},
			}},
			":tag": &types.AttributeValueMemberS{Value: tag},
			":now": &types.AttributeValueMemberS{Value: formatTime(time.Now().UTC())},
		},
		ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			if len(condErr.Item) == 0 {
				return false, domain.ErrNotFound
			}
			return false, nil
		}
		return false, fmt.Errorf("failed to add tag: %w", err)
	}
	return true, nil
}

// RemoveTag deletes tag by index. DynamoDB cannot remove a list element by
// value, so this is a bounded read-and-swap: read the item, locate the tag,
// and remove that position conditioned on it still holding the same value.
func (r *documentRepository) RemoveTag(ctx context.Context, id, tag string) (bool, error) {
	for attempt := 0; attempt < maxRemoveAttempts; attempt++ {
		doc, err := r.GetByID(ctx, id)
		if err != nil {
			return false, err
		}
		idx := -1
		for i, t := range doc.Tags {
			if t == tag {
				idx = i
				break
			}
		}
		if idx < 0 {
			return false, nil
		}

		_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
			TableName:           aws.String(r.table),
			Key:                 itemKey(id),
			UpdateExpression:    aws.String(fmt.Sprintf("REMOVE #t[%d] SET updated_at = :now", idx)),
			ConditionExpression: aws.String(fmt.Sprintf("#t[%d] = :tag", idx)),
			ExpressionAttributeNames: map[string]string{
				"#t": r.tagsAttr,
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":tag": &types.AttributeValueMemberS{Value: tag},
				":now": &types.AttributeValueMemberS{Value: formatTime(time.Now().UTC())},
			},
		})
		if err == nil {
			return true, nil
		}
		var condErr *types.ConditionalCheckFailedException
		if !errors.As(err, &condErr) {
			return false, fmt.Errorf("failed to remove tag: %w", err)
		}
		// Lost the race; the list shifted under us. Re-read and retry.
	}
	return false, ErrConcurrentModification
}

func (r *documentRepository) List(ctx context.Context, q domain.DocumentQuery) ([]*domain.Document, int, error) {
	var conds []string
	values := map[string]types.AttributeValue{}
	var names map[string]string

	if q.OwnerID != "" {
		conds = append(conds, "owner_id = :owner")
		values[":owner"] = &types.AttributeValueMemberS{Value: q.OwnerID}
	}
	// An empty filter adds no conditions: the scan is exactly the unfiltered one.
	filter := q.Tags.Normalize()
	if len(filter.IncludeAll) > 0 || len(filter.ExcludeAll) > 0 {
		names = map[string]string{"#t": r.tagsAttr}
	}
	for i, tag := range filter.IncludeAll {
		ph := fmt.Sprintf(":inc%d", i)
		conds = append(conds, fmt.Sprintf("contains(#t, %s)", ph))
		values[ph] = &types.AttributeValueMemberS{Value: tag}
	}
	if len(filter.ExcludeAll) > 0 {
		// Reject only items containing every excluded tag, not any of them.
		sub := make([]string, 0, len(filter.ExcludeAll))
		for i, tag := range filter.ExcludeAll {
			ph := fmt.Sprintf(":exc%d", i)
			sub = append(sub, fmt.Sprintf("contains(#t, %s)", ph))
			values[ph] = &types.AttributeValueMemberS{Value: tag}
		}
		conds = append(conds, "NOT ("+strings.Join(sub, " AND ")+")")
	}

	input := &dynamodb.ScanInput{
		TableName: aws.String(r.table),
	}
	if len(conds) > 0 {
		input.FilterExpression = aws.String(strings.Join(conds, " AND "))
		input.ExpressionAttributeValues = values
		input.ExpressionAttributeNames = names
	}

	var docs []*domain.Document
	for {
		resp, err := r.client.Scan(ctx, input)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan documents: %w", err)
		}
		for _, item := range resp.Items {
			doc, err := r.itemToDocument(item)
			if err != nil {
				return nil, 0, err
			}
			docs = append(docs, doc)
		}
		if len(resp.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = resp.LastEvaluatedKey
	}

	// The scan accumulates every match; ordering and pagination are applied
	// in memory.
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})
	total := len(docs)
	offset := q.Pagination.Offset()
	if offset >= total {
		return []*domain.Document{}, total, nil
	}
	end := total
	if q.Pagination.PageSize > 0 && offset+q.Pagination.PageSize < total {
		end = offset + q.Pagination.PageSize
	}
	return docs[offset:end], total, nil
}

func (r *documentRepository) Update(ctx context.Context, id string, title, body *string) (*domain.Document, error) {
	setClauses := []string{"updated_at = :now"}
	values := map[string]types.AttributeValue{
		":now": &types.AttributeValueMemberS{Value: formatTime(time.Now().UTC())},
	}
	if title != nil {
		setClauses = append(setClauses, "title = :title")
		values[":title"] = &types.AttributeValueMemberS{Value: *title}
	}
	if body != nil {
		setClauses = append(setClauses, "body = :body")
		values[":body"] = &types.AttributeValueMemberS{Value: *body}
	}
	if title == nil && body == nil {
		return r.GetByID(ctx, id)
	}

	resp, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.table),
		Key:                       itemKey(id),
		UpdateExpression:          aws.String("SET " + strings.Join(setClauses, ", ")),
		ConditionExpression:       aws.String("attribute_exists(id)"),
		ExpressionAttributeValues: values,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update document: %w", err)
	}
	return r.itemToDocument(resp.Attributes)
}

func (r *documentRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.table),
		Key:                 itemKey(id),
		ConditionExpression: aws.String("attribute_exists(id)"),
	})
	if err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

func itemKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: id},
	}
}

func (r *documentRepository) documentToItem(d *domain.Document) map[string]types.AttributeValue {
	tags := make([]types.AttributeValue, 0, len(d.Tags))
	for _, tag := range d.Tags {
		tags = append(tags, &types.AttributeValueMemberS{Value: tag})
	}
	return map[string]types.AttributeValue{
		"id":         &types.AttributeValueMemberS{Value: d.ID},
		"owner_id":   &types.AttributeValueMemberS{Value: d.OwnerID},
		"title":      &types.AttributeValueMemberS{Value: d.Title},
		"body":       &types.AttributeValueMemberS{Value: d.Body},
		r.tagsAttr:   &types.AttributeValueMemberL{Value: tags},
		"created_at": &types.AttributeValueMemberS{Value: formatTime(d.CreatedAt)},
		"updated_at": &types.AttributeValueMemberS{Value: formatTime(d.UpdatedAt)},
	}
}

func (r *documentRepository) itemToDocument(item map[string]types.AttributeValue) (*domain.Document, error) {
	idAttr, ok := item["id"].(*types.AttributeValueMemberS)
	if !ok {
		return nil, errors.New("invalid id attribute in DynamoDB item")
	}
	d := &domain.Document{
		ID:      idAttr.Value,
		OwnerID: stringAttr(item, "owner_id"),
		Title:   stringAttr(item, "title"),
		Body:    stringAttr(item, "body"),
		Tags:    []string{},
	}
	if list, ok := item[r.tagsAttr].(*types.AttributeValueMemberL); ok {
		for _, av := range list.Value {
			s, ok := av.(*types.AttributeValueMemberS)
			if !ok {
				return nil, fmt.Errorf("invalid %s attribute in DynamoDB item", r.tagsAttr)
			}
			d.Tags = append(d.Tags, s.Value)
		}
	}
	var err error
	if d.CreatedAt, err = parseTime(stringAttr(item, "created_at")); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if d.UpdatedAt, err = parseTime(stringAttr(item, "updated_at")); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return d, nil
}

func stringAttr(item map[string]types.AttributeValue, name string) string {
	if v, ok := item[name].(*types.AttributeValueMemberS); ok {
		return v.Value
	}
	return ""
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}
