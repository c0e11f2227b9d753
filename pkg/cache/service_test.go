package cache

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedEvent struct {
	Name  string `json:"name"`
	Venue string `json:"venue"`
}

func TestGetReturnsCacheMissForAbsentKey(t *testing.T) {
	client, mock := redismock.NewClientMock()
	svc := NewService(client)

	mock.ExpectGet("tickethub:events:missing").RedisNil()

	var dest cachedEvent
	err := svc.Get(context.Background(), "tickethub:events:missing", &dest)

	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUnmarshalsCachedJSON(t *testing.T) {
	client, mock := redismock.NewClientMock()
	svc := NewService(client)

	mock.ExpectGet("tickethub:events:uuid:abc").
		SetVal(`{"name":"Midnight Synth Live","venue":"Velvet Hall"}`)

	var dest cachedEvent
	err := svc.Get(context.Background(), "tickethub:events:uuid:abc", &dest)

	require.NoError(t, err)
	assert.Equal(t, "Midnight Synth Live", dest.Name)
	assert.Equal(t, "Velvet Hall", dest.Venue)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetStoresMarshaledValueWithTTL(t *testing.T) {
	client, mock := redismock.NewClientMock()
	svc := NewService(client)

	payload := cachedEvent{Name: "GopherConf 2026", Venue: "Harbor Convention Center"}
	expected := []byte(`{"name":"GopherConf 2026","venue":"Harbor Convention Center"}`)
	mock.ExpectSet("tickethub:events:uuid:def", expected, 5*time.Minute).SetVal("OK")

	err := svc.Set(context.Background(), "tickethub:events:uuid:def", payload, 5*time.Minute)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeletePatternWalksEveryScanPage(t *testing.T) {
	client, mock := redismock.NewClientMock()
	svc := NewService(client)

	page1 := []string{"tickethub:events:uuid:a", "tickethub:events:uuid:b"}
	page2 := []string{"tickethub:events:list:all"}
	mock.ExpectScan(0, "tickethub:events:*", 100).SetVal(page1, 42)
	mock.ExpectDel(page1...).SetVal(2)
	mock.ExpectScan(42, "tickethub:events:*", 100).SetVal(page2, 0)
	mock.ExpectDel(page2...).SetVal(1)

	err := svc.DeletePattern(context.Background(), "tickethub:events:*")

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeletePatternSkipsDelOnEmptyPage(t *testing.T) {
	client, mock := redismock.NewClientMock()
	svc := NewService(client)

	mock.ExpectScan(0, "tickethub:analytics:*", 100).SetVal([]string{}, 0)

	err := svc.DeletePattern(context.Background(), "tickethub:analytics:*")

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExists(t *testing.T) {
	client, mock := redismock.NewClientMock()
	svc := NewService(client)

	mock.ExpectExists("tickethub:events:uuid:a").SetVal(1)
	mock.ExpectExists("tickethub:events:uuid:b").SetVal(0)

	assert.True(t, svc.Exists(context.Background(), "tickethub:events:uuid:a"))
	assert.False(t, svc.Exists(context.Background(), "tickethub:events:uuid:b"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrSetReturnsCachedValueWithoutFetching(t *testing.T) {
	client, mock := redismock.NewClientMock()
	svc := NewService(client)

	mock.ExpectGet("tickethub:events:uuid:hit").
		SetVal(`{"name":"Cached","venue":"Somewhere"}`)

	var dest cachedEvent
	err := svc.GetOrSet(context.Background(), "tickethub:events:uuid:hit", time.Minute,
		func() (interface{}, error) {
			t.Fatal("fetcher must not run on a cache hit")
			return nil, nil
		}, &dest)

	require.NoError(t, err)
	assert.Equal(t, "Cached", dest.Name)
}

func TestGetOrSetFallsBackToFetcherOnMiss(t *testing.T) {
	client, mock := redismock.NewClientMock()
	svc := NewService(client)

	// The write-back happens on a background goroutine, so only the read
	// path is asserted here.
	mock.MatchExpectationsInOrder(false)
	mock.ExpectGet("tickethub:events:uuid:miss").RedisNil()
	mock.ExpectSet("tickethub:events:uuid:miss",
		[]byte(`{"name":"Fresh","venue":"Dock 9"}`), time.Minute).SetVal("OK")

	var dest cachedEvent
	err := svc.GetOrSet(context.Background(), "tickethub:events:uuid:miss", time.Minute,
		func() (interface{}, error) {
			return cachedEvent{Name: "Fresh", Venue: "Dock 9"}, nil
		}, &dest)

	require.NoError(t, err)
	assert.Equal(t, "Fresh", dest.Name)
	assert.Equal(t, "Dock 9", dest.Venue)
}
