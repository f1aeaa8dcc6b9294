package record

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/docuchat-ai/document-platform/internal/apperr"
	"github.com/docuchat-ai/document-platform/internal/model"
)

// DynamoAPI is the subset of the DynamoDB client used by the stores.
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

// DynamoStore implements DocumentStore and ConversationStore on DynamoDB.
// Records use a single-table key layout: PK USER#<sub>, SK DOC#<id> or
// CONV#<id>.
type DynamoStore struct {
	client             DynamoAPI
	documentsTable     string
	conversationsTable string
}

type documentItem struct {
	PK string `dynamodbav:"PK"`
	SK string `dynamodbav:"SK"`
	model.Document
}

type conversationItem struct {
	PK string `dynamodbav:"PK"`
	SK string `dynamodbav:"SK"`
	model.Conversation
}

// NewDynamoStore creates a DynamoDB-backed record store.
func NewDynamoStore(client DynamoAPI, documentsTable, conversationsTable string) (*DynamoStore, error) {
	if documentsTable == "" || conversationsTable == "" {
		return nil, fmt.Errorf("documents and conversations table names are required")
	}
	return &DynamoStore{
		client:             client,
		documentsTable:     documentsTable,
		conversationsTable: conversationsTable,
	}, nil
}

func userKey(userID string) string { return "USER#" + userID }
func docKey(docID string) string   { return "DOC#" + docID }
func convKey(convID string) string { return "CONV#" + convID }

// PutDocument writes a document record.
func (s *DynamoStore) PutDocument(ctx context.Context, doc *model.Document) error {
	item, err := attributevalue.MarshalMap(documentItem{
		PK:       userKey(doc.UserID),
		SK:       docKey(doc.ID),
		Document: *doc,
	})
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.documentsTable),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("put document %s: %w", doc.ID, err)
	}
	return nil
}

// GetDocument reads a document record.
func (s *DynamoStore) GetDocument(ctx context.Context, userID, documentID string) (*model.Document, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.documentsTable),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: userKey(userID)},
			"SK": &types.AttributeValueMemberS{Value: docKey(documentID)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get document %s: %w", documentID, err)
	}
	if len(out.Item) == 0 {
		return nil, apperr.ErrNotFound
	}
	var item documentItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("unmarshal document: %w", err)
	}
	return &item.Document, nil
}

// PutConversation overwrites a conversation record.
func (s *DynamoStore) PutConversation(ctx context.Context, conv *model.Conversation) error {
	item, err := attributevalue.MarshalMap(conversationItem{
		PK:           userKey(conv.UserID),
		SK:           convKey(conv.ID),
		Conversation: *conv,
	})
	if err != nil {
		return fmt.Errorf("marshal conversation: %w", err)
	}
	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.conversationsTable),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("put conversation %s: %w", conv.ID, err)
	}
	return nil
}

// GetConversation reads a conversation record.
func (s *DynamoStore) GetConversation(ctx context.Context, userID, conversationID string) (*model.Conversation, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.conversationsTable),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: userKey(userID)},
			"SK": &types.AttributeValueMemberS{Value: convKey(conversationID)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get conversation %s: %w", conversationID, err)
	}
	if len(out.Item) == 0 {
		return nil, apperr.ErrNotFound
	}
	var item conversationItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("unmarshal conversation: %w", err)
	}
	return &item.Conversation, nil
}

var (
	_ DocumentStore     = (*DynamoStore)(nil)
	_ ConversationStore = (*DynamoStore)(nil)
)
