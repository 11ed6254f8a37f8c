package conversation

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type dynamoAPI interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

type sessionItem struct {
	Sender string       `dynamodbav:"senderId"`
	Step   Step         `dynamodbav:"step"`
	Draft  DraftBooking `dynamodbav:"draftBooking"`
	Paused bool         `dynamodbav:"paused"`
}

// DynamoSessionStore persists sessions as whole items keyed by senderId.
// Saves replace the full item, matching the store contract's
// whole-snapshot-per-key semantics.
type DynamoSessionStore struct {
	client    dynamoAPI
	tableName string
}

// NewDynamoSessionStore builds a store backed by the provided DynamoDB client.
func NewDynamoSessionStore(client dynamoAPI, tableName string) *DynamoSessionStore {
	if client == nil {
		panic("conversation: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("conversation: table name cannot be empty")
	}
	return &DynamoSessionStore{
		client:    client,
		tableName: tableName,
	}
}

// Get loads the sender's session, creating and persisting the default one
// when no item exists.
func (s *DynamoSessionStore) Get(ctx context.Context, sender string) (*Session, error) {
	session, err := s.Lookup(ctx, sender)
	if errors.Is(err, ErrSessionNotFound) {
		session = NewSession()
		if err := s.Save(ctx, sender, session); err != nil {
			return nil, err
		}
		return session, nil
	}
	return session, err
}

// Lookup loads the sender's session without creating one.
func (s *DynamoSessionStore) Lookup(ctx context.Context, sender string) (*Session, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"senderId": &types.AttributeValueMemberS{Value: sender},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("conversation: failed to fetch session: %w", err)
	}
	if out.Item == nil {
		return nil, ErrSessionNotFound
	}

	var item sessionItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("conversation: failed to decode session: %w", err)
	}
	return &Session{Step: item.Step, Draft: item.Draft, Paused: item.Paused}, nil
}

// Save overwrites the stored session for the sender.
func (s *DynamoSessionStore) Save(ctx context.Context, sender string, session *Session) error {
	if session == nil {
		return fmt.Errorf("conversation: session cannot be nil")
	}
	item, err := attributevalue.MarshalMap(sessionItem{
		Sender: sender,
		Step:   session.Step,
		Draft:  session.Draft,
		Paused: session.Paused,
	})
	if err != nil {
		return fmt.Errorf("conversation: failed to marshal session: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("conversation: failed to persist session: %w", err)
	}
	return nil
}
