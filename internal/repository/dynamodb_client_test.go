package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"

	"movie-awards/internal/domain"
)

type fakeDynamo struct {
	queryOut    *dynamodb.QueryOutput
	queryErr    error
	queryCalls  int
	lastQueryIn *dynamodb.QueryInput
}

func (f *fakeDynamo) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.queryCalls++
	f.lastQueryIn = in
	return f.queryOut, f.queryErr
}

func makeItem(movieID, awardBody, award, numAwards string) map[string]types.AttributeValue {
	item := map[string]types.AttributeValue{
		"movieId":   &types.AttributeValueMemberN{Value: movieID},
		"awardBody": &types.AttributeValueMemberS{Value: awardBody},
		"award":     &types.AttributeValueMemberS{Value: award},
	}
	if numAwards != "" {
		item["numAwards"] = &types.AttributeValueMemberN{Value: numAwards}
	}
	return item
}

func mustNewClient(t *testing.T, db *fakeDynamo) *Client {
	t.Helper()
	c, err := New(db, "test-table")
	require.NoError(t, err)
	return c
}

func TestQueryAwards_HappyPath(t *testing.T) {
	db := &fakeDynamo{
		queryOut: &dynamodb.QueryOutput{
			Items: []map[string]types.AttributeValue{
				makeItem("550", "Oscars", "Best Sound Editing", "1"),
				makeItem("550", "Oscars", "Best Editing", "3"),
			},
		},
	}
	c := mustNewClient(t, db)
	recs, err := c.QueryAwards(context.Background(), 550, "Oscars")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.Equal(t, 550, recs[0].MovieID)
	require.Equal(t, "Oscars", recs[0].AwardBody)
	require.Equal(t, "Best Sound Editing", *recs[0].Award)
	require.Equal(t, 1, *recs[0].NumAwards)
	require.Equal(t, 3, *recs[1].NumAwards)
	require.Nil(t, recs[0].Attributes)
	require.Equal(t, 1, db.queryCalls)
}

func TestQueryAwards_KeyConditionExpression(t *testing.T) {
	db := &fakeDynamo{queryOut: &dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{}}}
	c := mustNewClient(t, db)
	_, err := c.QueryAwards(context.Background(), 550, "Oscars")
	require.NoError(t, err)

	in := db.lastQueryIn
	require.Equal(t, "test-table", *in.TableName)
	require.Equal(t, "movieId = :m AND awardBody = :a", *in.KeyConditionExpression)
	require.Equal(t, "550", in.ExpressionAttributeValues[":m"].(*types.AttributeValueMemberN).Value)
	require.Equal(t, "Oscars", in.ExpressionAttributeValues[":a"].(*types.AttributeValueMemberS).Value)
}

func TestQueryAwards_EmptyCollectionIsNotMissing(t *testing.T) {
	db := &fakeDynamo{queryOut: &dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{}}}
	c := mustNewClient(t, db)
	recs, err := c.QueryAwards(context.Background(), 550, "Oscars")
	require.NoError(t, err)
	require.NotNil(t, recs)
	require.Empty(t, recs)
}

func TestQueryAwards_MissingCollection(t *testing.T) {
	db := &fakeDynamo{queryOut: &dynamodb.QueryOutput{}}
	c := mustNewClient(t, db)
	_, err := c.QueryAwards(context.Background(), 550, "Oscars")
	require.ErrorIs(t, err, domain.ErrNoItemCollection)
}

func TestQueryAwards_NilOutput(t *testing.T) {
	db := &fakeDynamo{}
	c := mustNewClient(t, db)
	_, err := c.QueryAwards(context.Background(), 550, "Oscars")
	require.ErrorIs(t, err, domain.ErrNoItemCollection)
}

func TestQueryAwards_QueryError(t *testing.T) {
	db := &fakeDynamo{queryErr: errors.New("ResourceNotFoundException")}
	c := mustNewClient(t, db)
	_, err := c.QueryAwards(context.Background(), 550, "Oscars")
	require.Error(t, err)
	require.Contains(t, err.Error(), "QueryAwards query")
	require.NotErrorIs(t, err, domain.ErrNoItemCollection)
}

func TestQueryAwards_KeepsAdditionalAttributes(t *testing.T) {
	item := makeItem("550", "Oscars", "Best Sound Editing", "")
	item["year"] = &types.AttributeValueMemberN{Value: "2000"}
	item["nominees"] = &types.AttributeValueMemberL{Value: []types.AttributeValue{
		&types.AttributeValueMemberS{Value: "Ren Klyce"},
	}}
	db := &fakeDynamo{queryOut: &dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{item}}}
	c := mustNewClient(t, db)
	recs, err := c.QueryAwards(context.Background(), 550, "Oscars")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Nil(t, recs[0].NumAwards)
	require.Equal(t, float64(2000), recs[0].Attributes["year"])
	require.Equal(t, []any{"Ren Klyce"}, recs[0].Attributes["nominees"])
}

func TestQueryAwards_OffTypeAwardFieldsKeptAsAttributes(t *testing.T) {
	cases := []struct {
		name      string
		numAwards types.AttributeValue
		want      any
	}{
		{name: "fractional number", numAwards: &types.AttributeValueMemberN{Value: "2.5"}, want: 2.5},
		{name: "numeric string", numAwards: &types.AttributeValueMemberS{Value: "3"}, want: "3"},
		{name: "word", numAwards: &types.AttributeValueMemberS{Value: "many"}, want: "many"},
		{name: "null", numAwards: &types.AttributeValueMemberNULL{Value: true}, want: nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			item := makeItem("550", "Oscars", "Best Sound Editing", "")
			item["numAwards"] = tc.numAwards
			db := &fakeDynamo{queryOut: &dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{
				item,
				makeItem("550", "Oscars", "Best Editing", "3"),
			}}}
			c := mustNewClient(t, db)
			recs, err := c.QueryAwards(context.Background(), 550, "Oscars")
			require.NoError(t, err)
			require.Len(t, recs, 2)

			require.Nil(t, recs[0].NumAwards)
			require.Contains(t, recs[0].Attributes, "numAwards")
			require.Equal(t, tc.want, recs[0].Attributes["numAwards"])
			require.False(t, recs[0].MeetsMinimum(0))
			require.Equal(t, 3, *recs[1].NumAwards)
		})
	}
}

func TestQueryAwards_NumericAwardKeptAsAttribute(t *testing.T) {
	item := makeItem("550", "Oscars", "", "1")
	item["award"] = &types.AttributeValueMemberN{Value: "7"}
	db := &fakeDynamo{queryOut: &dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{item}}}
	c := mustNewClient(t, db)
	recs, err := c.QueryAwards(context.Background(), 550, "Oscars")
	require.NoError(t, err)
	require.Nil(t, recs[0].Award)
	require.Equal(t, float64(7), recs[0].Attributes["award"])
	require.Equal(t, 1, *recs[0].NumAwards)
}

func TestQueryAwards_MalformedKeyAttribute(t *testing.T) {
	item := makeItem("550", "Oscars", "Best Sound Editing", "1")
	delete(item, "awardBody")
	db := &fakeDynamo{queryOut: &dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{item}}}
	c := mustNewClient(t, db)
	_, err := c.QueryAwards(context.Background(), 550, "Oscars")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unmarshal")
	require.Contains(t, err.Error(), "awardBody")
}

func TestNew_NilAPI(t *testing.T) {
	_, err := New(nil, "test-table")
	require.Error(t, err)
	require.Contains(t, err.Error(), "must not be nil")
}

func TestNew_EmptyTableName(t *testing.T) {
	_, err := New(&fakeDynamo{}, " ")
	require.Error(t, err)
	require.Contains(t, err.Error(), "must not be empty")
}
