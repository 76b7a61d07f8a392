package cachemanager

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/mentions/internal/mocks"
)

type rawInput struct {
	Raw string
}

func loadLen(calls *int) func(ctx context.Context, in rawInput) (cachedParse, error) {
	return func(ctx context.Context, in rawInput) (cachedParse, error) {
		*calls++
		return cachedParse{PlainText: in.Raw, Parts: len(in.Raw)}, nil
	}
}

func TestReadThroughCache_Get_WithCacheDisabled(t *testing.T) {
	managerMock := mocks.NewMockCacheManager[string, cachedParse](t)
	calls := 0

	cache := NewReadThroughCache[string, cachedParse, rawInput](managerMock, loadLen(&calls), true)

	got, err := cache.Get(context.Background(), "key", rawInput{Raw: "abc"}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, cachedParse{PlainText: "abc", Parts: 3}, got)
	require.Equal(t, 1, calls)
	managerMock.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestReadThroughCache_GetWithRefresh_WithCacheDisabled(t *testing.T) {
	managerMock := mocks.NewMockCacheManager[string, cachedParse](t)
	calls := 0

	cache := NewReadThroughCache[string, cachedParse, rawInput](managerMock, loadLen(&calls), true)

	_, err := cache.GetWithRefresh(context.Background(), "key", rawInput{Raw: "abc"}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, 1, calls)
}

func TestReadThroughCache_Get_WithValueInCache(t *testing.T) {
	managerMock := mocks.NewMockCacheManager[string, cachedParse](t)
	managerMock.On("Get", mock.Anything, "key").Return(cachedParse{PlainText: "cached"}, true).Once()
	calls := 0

	cache := NewReadThroughCache[string, cachedParse, rawInput](managerMock, loadLen(&calls), false)

	got, err := cache.Get(context.Background(), "key", rawInput{Raw: "abc"}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, "cached", got.PlainText)
	require.Zero(t, calls)
}

func TestReadThroughCache_Get_MissStoresValue(t *testing.T) {
	managerMock := mocks.NewMockCacheManager[string, cachedParse](t)
	managerMock.On("Get", mock.Anything, "key").Return(cachedParse{}, false).Once()
	managerMock.On("Set", mock.Anything, "key", cachedParse{PlainText: "abc", Parts: 3}, time.Minute).Return().Once()
	calls := 0

	cache := NewReadThroughCache[string, cachedParse, rawInput](managerMock, loadLen(&calls), false)

	got, err := cache.Get(context.Background(), "key", rawInput{Raw: "abc"}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, "abc", got.PlainText)
	require.Equal(t, 1, calls)
}

func TestReadThroughCache_GetWithRefresh_Hit(t *testing.T) {
	managerMock := mocks.NewMockCacheManager[string, cachedParse](t)
	managerMock.On("GetWithRefresh", mock.Anything, "key", time.Minute).Return(cachedParse{PlainText: "cached"}, true).Once()
	calls := 0

	cache := NewReadThroughCache[string, cachedParse, rawInput](managerMock, loadLen(&calls), false)

	got, err := cache.GetWithRefresh(context.Background(), "key", rawInput{Raw: "abc"}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, "cached", got.PlainText)
	require.Zero(t, calls)
}

func TestReadThroughCache_Get_LoaderErrorIsNotCached(t *testing.T) {
	managerMock := mocks.NewMockCacheManager[string, cachedParse](t)
	managerMock.On("Get", mock.Anything, "key").Return(cachedParse{}, false).Once()
	wantErr := errors.New("boom")

	cache := NewReadThroughCache[string, cachedParse, rawInput](
		managerMock,
		func(ctx context.Context, in rawInput) (cachedParse, error) {
			return cachedParse{}, wantErr
		},
		false,
	)

	_, err := cache.Get(context.Background(), "key", rawInput{}, time.Minute)
	require.ErrorIs(t, err, wantErr)
	managerMock.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestReadThroughCache_WithInMemoryManager(t *testing.T) {
	calls := 0
	cache := NewReadThroughCache[parseKey, cachedParse, rawInput](
		NewInMemoryCacheManager[parseKey, cachedParse]("parse", DefaultExpiration, DefaultCleanupInterval),
		loadLen(&calls),
		false,
	)
	ctx := context.Background()

	for range 3 {
		_, err := cache.Get(ctx, "k", rawInput{Raw: "abc"}, time.Minute)
		require.NoError(t, err)
	}
	require.Equal(t, 1, calls)

	require.NoError(t, cache.Invalidate(ctx, "k"))
	_, err := cache.Get(ctx, "k", rawInput{Raw: "abc"}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, 2, calls)
}
