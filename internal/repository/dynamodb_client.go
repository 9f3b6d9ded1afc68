package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"movie-awards/internal/domain"
)

const keyCondition = "movieId = :m AND awardBody = :a"

// dynamodbAPI is the minimal DynamoDB interface required by Client.
// Defined here for testability.
type dynamodbAPI interface {
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Client wraps the DynamoDB awards table keyed by (movieId, awardBody).
type Client struct {
	api       dynamodbAPI
	tableName string
}

// New creates a new repository Client.
func New(api dynamodbAPI, tableName string) (*Client, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &Client{api: api, tableName: tableName}, nil
}

// QueryAwards issues one Query with equality conditions on both key attributes.
// It returns domain.ErrNoItemCollection when the response has no Items field.
func (c *Client) QueryAwards(ctx context.Context, movieID int, awardBody string) ([]domain.AwardRecord, error) {
	out, err := c.api.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(c.tableName),
		KeyConditionExpression: aws.String(keyCondition),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":m": &types.AttributeValueMemberN{Value: strconv.Itoa(movieID)},
			":a": &types.AttributeValueMemberS{Value: awardBody},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("repository: QueryAwards query: %w", err)
	}
	if out == nil || out.Items == nil {
		return nil, domain.ErrNoItemCollection
	}

	records := make([]domain.AwardRecord, 0, len(out.Items))
	for _, item := range out.Items {
		rec, err := itemToAward(item)
		if err != nil {
			return nil, fmt.Errorf("repository: QueryAwards unmarshal: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// itemToAward converts a DynamoDB attribute map to an AwardRecord. The key
// attributes must decode; an award or numAwards value of another type is kept
// as an untyped attribute.
func itemToAward(item map[string]types.AttributeValue) (domain.AwardRecord, error) {
	movieID, err := intAttr(item, domain.AttrMovieID)
	if err != nil {
		return domain.AwardRecord{}, err
	}
	awardBody, err := strAttr(item, domain.AttrAwardBody)
	if err != nil {
		return domain.AwardRecord{}, err
	}
	rec := domain.AwardRecord{MovieID: movieID, AwardBody: awardBody}

	for name, av := range item {
		switch name {
		case domain.AttrMovieID, domain.AttrAwardBody:
			continue
		case domain.AttrAward:
			if award, err := strAttr(item, name); err == nil {
				rec.Award = &award
				continue
			}
		case domain.AttrNumAwards:
			if n, err := intAttr(item, name); err == nil {
				rec.NumAwards = &n
				continue
			}
		}
		var v any
		if err := attributevalue.Unmarshal(av, &v); err != nil {
			return domain.AwardRecord{}, fmt.Errorf("attribute %q: %w", name, err)
		}
		if rec.Attributes == nil {
			rec.Attributes = make(map[string]any)
		}
		rec.Attributes[name] = v
	}
	return rec, nil
}

func strAttr(item map[string]types.AttributeValue, key string) (string, error) {
	v, ok := item[key]
	if !ok {
		return "", fmt.Errorf("repository: missing attribute %q", key)
	}
	s, ok := v.(*types.AttributeValueMemberS)
	if !ok {
		return "", fmt.Errorf("repository: attribute %q is not a string", key)
	}
	return s.Value, nil
}

func intAttr(item map[string]types.AttributeValue, key string) (int, error) {
	v, ok := item[key]
	if !ok {
		return 0, fmt.Errorf("repository: missing attribute %q", key)
	}
	n, ok := v.(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("repository: attribute %q is not a number", key)
	}
	parsed, err := strconv.Atoi(n.Value)
	if err != nil {
		return 0, fmt.Errorf("repository: parse attribute %q: %w", key, err)
	}
	return parsed, nil
}
