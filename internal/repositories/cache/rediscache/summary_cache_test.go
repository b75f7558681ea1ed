package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/blood_bank_app/internal/core/domain"
	portsrepo "github.com/SscSPs/blood_bank_app/internal/core/ports/repositories"
	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummaryKey(t *testing.T) {
	assert.Equal(t, "bbms:availability:summary:global", SummaryKey(""))
	assert.Equal(t, "bbms:availability:summary:global", SummaryKey("global"))
	assert.Equal(t, "bbms:availability:summary:org-1", SummaryKey("org-1"))
	assert.Equal(t, "bbms:availability:generation:global", GenerationKey(""))
}

func TestSummaryCache_GetMissAndHit(t *testing.T) {
	ctx := context.Background()
	client, mock := redismock.NewClientMock()
	cache := NewSummaryCache(client, time.Minute)

	summary := domain.AvailabilitySummary{
		Scope: "org-1",
		Items: []domain.Availability{{Scope: "org-1", BloodType: domain.BloodTypeAPositive, TotalIn: 3, TotalOut: 1}},
	}
	raw, err := json.Marshal(summary)
	require.NoError(t, err)

	mock.ExpectGet(SummaryKey("org-1")).RedisNil()
	mock.ExpectGet(SummaryKey("org-1")).SetVal(string(raw))

	got, ok, err := cache.GetSummary(ctx, "org-1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)

	got, ok, err = cache.GetSummary(ctx, "org-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, summary, *got)
	assert.Equal(t, int64(2), got.Items[0].Available())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSummaryCache_GetErrors(t *testing.T) {
	ctx := context.Background()
	client, mock := redismock.NewClientMock()
	cache := NewSummaryCache(client, time.Minute)

	mock.ExpectGet(SummaryKey("global")).SetErr(errors.New("connection refused"))
	mock.ExpectGet(SummaryKey("global")).SetVal("{not json")

	_, ok, err := cache.GetSummary(ctx, "")
	assert.Error(t, err)
	assert.False(t, ok)

	_, ok, err = cache.GetSummary(ctx, "")
	assert.Error(t, err)
	assert.False(t, ok)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSummaryCache_Version(t *testing.T) {
	ctx := context.Background()
	client, mock := redismock.NewClientMock()
	cache := NewSummaryCache(client, time.Minute)

	mock.ExpectMGet(GenerationKey("org-1"), epochKey).SetVal([]interface{}{nil, nil})
	mock.ExpectMGet(GenerationKey("global"), epochKey).SetVal([]interface{}{"4", "2"})
	mock.ExpectMGet(GenerationKey("global"), epochKey).SetVal([]interface{}{"four", "2"})

	v, err := cache.Version(ctx, "org-1")
	require.NoError(t, err)
	assert.Equal(t, portsrepo.SummaryVersion{}, v)

	v, err = cache.Version(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, portsrepo.SummaryVersion{Scope: 4, Epoch: 2}, v)

	_, err = cache.Version(ctx, "global")
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSummaryCache_SetOnlyWhileGenerationHolds(t *testing.T) {
	ctx := context.Background()
	client, mock := redismock.NewClientMock()
	cache := NewSummaryCache(client, 5*time.Minute)

	summary := domain.AvailabilitySummary{Scope: "global", Items: []domain.Availability{}}
	raw, err := json.Marshal(summary)
	require.NoError(t, err)
	keys := []string{SummaryKey("global"), GenerationKey("global"), epochKey}

	mock.ExpectEval(setIfCurrent, keys, "3", "1", string(raw), "300000").SetVal(int64(1))
	mock.ExpectEval(setIfCurrent, keys, "3", "1", string(raw), "300000").SetVal(int64(0))
	mock.ExpectEval(setIfCurrent, keys, "3", "1", string(raw), "300000").SetErr(errors.New("connection refused"))

	version := portsrepo.SummaryVersion{Scope: 3, Epoch: 1}
	stored, err := cache.SetSummary(ctx, summary, version)
	require.NoError(t, err)
	assert.True(t, stored)

	stored, err = cache.SetSummary(ctx, summary, version)
	require.NoError(t, err)
	assert.False(t, stored, "a bumped generation must reject the write")

	stored, err = cache.SetSummary(ctx, summary, version)
	assert.Error(t, err)
	assert.False(t, stored)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSummaryCache_InvalidateBumpsGenerationsThenDeletes(t *testing.T) {
	ctx := context.Background()
	client, mock := redismock.NewClientMock()
	cache := NewSummaryCache(client, 5*time.Minute)

	mock.ExpectIncr(GenerationKey("org-1")).SetVal(1)
	mock.ExpectIncr(GenerationKey("global")).SetVal(8)
	mock.ExpectDel(SummaryKey("org-1"), SummaryKey("global")).SetVal(2)

	require.NoError(t, cache.Invalidate(ctx, "org-1", domain.GlobalScope))
	require.NoError(t, cache.Invalidate(ctx))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSummaryCache_InvalidateAll(t *testing.T) {
	ctx := context.Background()
	client, mock := redismock.NewClientMock()
	cache := NewSummaryCache(client, time.Minute)

	mock.ExpectIncr(epochKey).SetVal(1)
	mock.ExpectScan(0, keyPrefix+"*", 100).SetVal([]string{SummaryKey("org-1")}, 7)
	mock.ExpectDel(SummaryKey("org-1")).SetVal(1)
	mock.ExpectScan(7, keyPrefix+"*", 100).SetVal([]string{}, 0)

	require.NoError(t, cache.InvalidateAll(ctx))
	assert.NoError(t, mock.ExpectationsWereMet())
}
