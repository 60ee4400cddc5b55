package dynamodb

import (
	"context"
	"strings"
	"testing"
	"time"

	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loresmith/pdfstore/pkg/pdfstore"
)

// fakeClient implements Client over a plain map, enough to exercise the
// store's marshalling and expiry logic without a live endpoint.
type fakeClient struct {
	items map[string]map[string]types.AttributeValue
}

func newFakeClient() *fakeClient {
	return &fakeClient{items: make(map[string]map[string]types.AttributeValue)}
}

func (c *fakeClient) PutItem(_ context.Context, params *awsdynamodb.PutItemInput, _ ...func(*awsdynamodb.Options)) (*awsdynamodb.PutItemOutput, error) {
	key := params.Item["record_key"].(*types.AttributeValueMemberS).Value
	c.items[key] = params.Item
	return &awsdynamodb.PutItemOutput{}, nil
}

func (c *fakeClient) GetItem(_ context.Context, params *awsdynamodb.GetItemInput, _ ...func(*awsdynamodb.Options)) (*awsdynamodb.GetItemOutput, error) {
	key := params.Key["record_key"].(*types.AttributeValueMemberS).Value
	item, ok := c.items[key]
	if !ok {
		return &awsdynamodb.GetItemOutput{}, nil
	}
	return &awsdynamodb.GetItemOutput{Item: item}, nil
}

func (c *fakeClient) DeleteItem(_ context.Context, params *awsdynamodb.DeleteItemInput, _ ...func(*awsdynamodb.Options)) (*awsdynamodb.DeleteItemOutput, error) {
	key := params.Key["record_key"].(*types.AttributeValueMemberS).Value
	delete(c.items, key)
	return &awsdynamodb.DeleteItemOutput{}, nil
}

func (c *fakeClient) Scan(_ context.Context, params *awsdynamodb.ScanInput, _ ...func(*awsdynamodb.Options)) (*awsdynamodb.ScanOutput, error) {
	prefix := params.ExpressionAttributeValues[":prefix"].(*types.AttributeValueMemberS).Value
	out := &awsdynamodb.ScanOutput{}
	for key, item := range c.items {
		if strings.HasPrefix(key, prefix) {
			out.Items = append(out.Items, item)
		}
	}
	return out, nil
}

func setupStore(t *testing.T) (*Store, *fakeClient, *time.Time) {
	t.Helper()

	client := newFakeClient()
	store := New(client, "records")

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	return store, client, &now
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, _, _ := setupStore(t)

	require.NoError(t, store.Put(ctx, "pdf:abc", []byte("value"), 0))

	got, err := store.Get(ctx, "pdf:abc")
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), got)

	require.NoError(t, store.Delete(ctx, "pdf:abc"))
	_, err = store.Get(ctx, "pdf:abc")
	assert.ErrorIs(t, err, pdfstore.ErrRecordNotFound)
}

func TestStoreMissingKey(t *testing.T) {
	store, _, _ := setupStore(t)

	_, err := store.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, pdfstore.ErrRecordNotFound)
}

func TestStoreExpiryFilteredOnRead(t *testing.T) {
	ctx := context.Background()
	store, _, now := setupStore(t)

	require.NoError(t, store.Put(ctx, "counter", []byte("5"), time.Hour))

	_, err := store.Get(ctx, "counter")
	require.NoError(t, err)

	// DynamoDB reclaims expired items lazily; the store must not serve them.
	*now = now.Add(time.Hour + time.Second)
	_, err = store.Get(ctx, "counter")
	assert.ErrorIs(t, err, pdfstore.ErrRecordNotFound)
}

func TestStoreListByPrefix(t *testing.T) {
	ctx := context.Background()
	store, _, now := setupStore(t)

	require.NoError(t, store.Put(ctx, "pdf:a", []byte("1"), 0))
	require.NoError(t, store.Put(ctx, "pdf:b", []byte("2"), 0))
	require.NoError(t, store.Put(ctx, "pending:c", []byte("3"), 0))
	require.NoError(t, store.Put(ctx, "pdf:expired", []byte("4"), time.Minute))

	*now = now.Add(2 * time.Minute)

	keys, err := store.List(ctx, "pdf:")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"pdf:a", "pdf:b"}, keys)
}
