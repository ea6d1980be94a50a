// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package internal_report

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rapidaai/harness/pkg/commons"
	"github.com/rapidaai/harness/pkg/connectors"
)

func newTestStore(t *testing.T) Store {
	t.Helper()
	ctx := context.Background()
	sqlite := connectors.NewSqliteConnector(":memory:", commons.NewNopLogger())
	require.NoError(t, sqlite.Connect(ctx))
	t.Cleanup(func() { sqlite.Disconnect(ctx) })

	store := NewStore(sqlite, commons.NewNopLogger())
	require.NoError(t, store.Migrate(ctx))
	return store
}

func TestStore_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	report, err := NewReport(KindScan, "output", StatusDiscontinuity, "ERROR - DSP position error between 10 and 11 bursts!",
		map[string]int{"low": 10, "high": 11})
	require.NoError(t, err)

	id, err := store.Save(ctx, report)
	require.NoError(t, err)
	assert.Len(t, id, 36)

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, KindScan, got.Kind)
	assert.Equal(t, "output", got.Direction)
	assert.Equal(t, StatusDiscontinuity, got.Status)
	assert.JSONEq(t, `{"low":10,"high":11}`, got.Payload)
	assert.False(t, got.CreatedDate.IsZero())
}

func TestStore_GetMissing(t *testing.T) {
	_, err := newTestStore(t).Get(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, ErrReportNotFound)
}

func TestStore_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, kind := range []string{KindTap, KindAverage, KindTap} {
		_, err := store.Save(ctx, &Report{Kind: kind, Text: kind, CreatedDate: base.Add(time.Duration(i) * time.Minute)})
		require.NoError(t, err)
	}

	all, err := store.List(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, base.Add(2*time.Minute), all[0].CreatedDate.UTC())

	taps, err := store.List(ctx, KindTap, 1)
	require.NoError(t, err)
	require.Len(t, taps, 1)
	assert.Equal(t, KindTap, taps[0].Kind)
	assert.Equal(t, base.Add(2*time.Minute), taps[0].CreatedDate.UTC())
}

func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	id, err := store.Save(ctx, &Report{Kind: KindLatency, Text: "latency.msec = 20.00\n"})
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, id))
	assert.ErrorIs(t, store.Delete(ctx, id), ErrReportNotFound)
	_, err = store.Get(ctx, id)
	assert.ErrorIs(t, err, ErrReportNotFound)
}

func TestStore_NotConnected(t *testing.T) {
	store := NewStore(connectors.NewSqliteConnector(":memory:", commons.NewNopLogger()), commons.NewNopLogger())
	_, err := store.Save(context.Background(), &Report{Kind: KindTap})
	assert.ErrorIs(t, err, connectors.ErrNotConnected)
}
