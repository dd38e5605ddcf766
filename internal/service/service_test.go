package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voyagen/tubestats/internal/cache"
	"github.com/voyagen/tubestats/internal/engine"
	"github.com/voyagen/tubestats/internal/metrics"
	"github.com/voyagen/tubestats/internal/models"
	"github.com/voyagen/tubestats/internal/store"
)

var channels = []models.ChannelRecord{
	{ChannelName: "Alpha", Category: "Gaming", Country: "US", Subscribers: 500, MonthlyEarnings: 10, EngagementRate: 0.1, TotalVideos: 5, TotalViews: 1000},
	{ChannelName: "Bravo", Category: "Music", Country: "IN", Subscribers: 900, MonthlyEarnings: 5, EngagementRate: 0.2, TotalVideos: 6, TotalViews: 2000},
	{ChannelName: "Charlie", Category: "Gaming", Country: "IN", Subscribers: 300, MonthlyEarnings: 20, EngagementRate: 0.3, TotalVideos: 7, TotalViews: 3000},
	{ChannelName: "Delta", Category: "Education", Country: "US", Subscribers: 800, MonthlyEarnings: 40, EngagementRate: 0.4, TotalVideos: 8, TotalViews: 4000},
	{ChannelName: "Echo", Category: "Music", Country: "US", Subscribers: 100, MonthlyEarnings: 7, EngagementRate: 0.5, TotalVideos: 9, TotalViews: 5000},
	{ChannelName: "Foxtrot", Category: "Gaming", Country: "BR", Subscribers: 700, MonthlyEarnings: 30, EngagementRate: 0.6, TotalVideos: 10, TotalViews: 6000},
	{ChannelName: "Golf", Category: "Music", Country: "BR", Subscribers: 600, MonthlyEarnings: 9, EngagementRate: 0.7, TotalVideos: 11, TotalViews: 7000},
}

type memSource struct {
	loads atomic.Int32
	fail  bool
}

func (m *memSource) Load(context.Context) (*models.ChannelTable, error) {
	m.loads.Add(1)
	if m.fail {
		return nil, errors.New("unavailable")
	}
	return models.NewChannelTable(append([]models.ChannelRecord(nil), channels...)), nil
}

func (m *memSource) Info() models.SourceInfo {
	return models.SourceInfo{Kind: models.SourceKindFile, Location: "mem.csv"}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTables(t *testing.T) (*store.TableCache, *memSource) {
	t.Helper()
	src := &memSource{}
	return store.NewTableCache(src, store.WithLogger(quietLogger())), src
}

func snapshot(t *testing.T) *store.Snapshot {
	t.Helper()
	tables, _ := newTables(t)
	snap, err := tables.Get(context.Background())
	require.NoError(t, err)
	return snap
}

func topNames(d *Dashboard) []string {
	out := make([]string, len(d.Top))
	for i, r := range d.Top {
		out[i] = r.ChannelName
	}
	return out
}

// --- Compose ---

func TestCompose_DefaultsSelectEverything(t *testing.T) {
	snap := snapshot(t)
	d, err := Compose(snap, Query{TopN: DefaultTopN})
	require.NoError(t, err)

	assert.Equal(t, snap.ID, d.SnapshotID)
	assert.Equal(t, engine.TableStats{Channels: 7, TotalViews: 28000}, d.Stats)
	assert.Equal(t, []string{"Gaming", "Music", "Education"}, d.Options.Categories)
	assert.Equal(t, []string{"US", "IN", "BR"}, d.Options.Countries)
	assert.Equal(t, []string{"Education", "Gaming", "Music"}, d.Selection.Categories.Sorted())
	assert.Equal(t, 7, d.Summary.Count)
	assert.Equal(t, int64(56), d.Summary.TotalVideos)
	assert.Equal(t, []string{"Bravo", "Delta", "Foxtrot", "Golf", "Alpha"}, topNames(d))
	assert.Equal(t, models.DisplayColumns, d.Table.Columns)
	assert.Len(t, d.Table.Rows, 7)
	assert.Equal(t, engine.ChartPie, d.Charts.Categories.ChartType)
	assert.Equal(t, engine.ChartBar, d.Charts.Earnings.ChartType)
}

func TestCompose_FilteredQuery(t *testing.T) {
	d, err := Compose(snapshot(t), Query{
		Categories: models.NewSet("Gaming", "Music"),
		Countries:  models.NewSet("US", "BR"),
		TopN:       2,
		Columns:    []string{"channel_name", "country"},
	})
	require.NoError(t, err)

	assert.Equal(t, 4, d.Summary.Count)
	assert.Equal(t, []string{"Foxtrot", "Golf"}, topNames(d))
	assert.Equal(t, 2, d.Distribution.Count("Gaming"))
	assert.Equal(t, 2, d.Distribution.Count("Music"))
	require.Len(t, d.EarningsByCategory, 2)
	assert.Equal(t, "Music", d.EarningsByCategory[0].Category)
	assert.InDelta(t, 8.0, d.EarningsByCategory[0].AvgEarnings, 1e-9)
	assert.Equal(t, [][]any{{"Alpha", "US"}, {"Echo", "US"}, {"Foxtrot", "BR"}, {"Golf", "BR"}}, d.Table.Rows)
	// Stats and options always describe the whole table.
	assert.Equal(t, 7, d.Stats.Channels)
}

func TestCompose_EmptySelection(t *testing.T) {
	d, err := Compose(snapshot(t), Query{Categories: models.NewSet(), TopN: 5})
	require.NoError(t, err)

	assert.False(t, d.Summary.Defined())
	assert.Empty(t, d.Top)
	assert.Equal(t, 0, d.Distribution.Len())
	assert.Empty(t, d.EarningsByCategory)
	assert.Empty(t, d.Table.Rows)
}

func TestCompose_UnknownValuesMatchNothing(t *testing.T) {
	d, err := Compose(snapshot(t), Query{Categories: models.NewSet("Cooking"), TopN: 5})
	require.NoError(t, err)
	assert.Equal(t, 0, d.Summary.Count)
}

func TestCompose_Errors(t *testing.T) {
	snap := snapshot(t)

	_, err := Compose(snap, Query{TopN: MaxTopN + 1})
	assert.ErrorIs(t, err, ErrInvalidQuery)

	_, err = Compose(snap, Query{TopN: 5, Columns: []string{"likes"}})
	assert.ErrorIs(t, err, engine.ErrUnknownColumn)
}

// --- DashboardService ---

func TestDashboardService_Build(t *testing.T) {
	tables, src := newTables(t)
	svc := NewDashboardService(tables, 3)

	first, err := svc.Build(context.Background(), Query{})
	require.NoError(t, err)
	assert.Len(t, first.Top, 3)

	second, err := svc.Build(context.Background(), Query{TopN: 1})
	require.NoError(t, err)
	assert.Len(t, second.Top, 1)
	assert.Equal(t, first.SnapshotID, second.SnapshotID)
	assert.Equal(t, int32(1), src.loads.Load())
}

func TestDashboardService_LoadFailure(t *testing.T) {
	src := &memSource{fail: true}
	tables := store.NewTableCache(src, store.WithLogger(quietLogger()))
	_, err := NewDashboardService(tables, 0).Build(context.Background(), Query{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load table")
}

func TestDashboardService_Normalize(t *testing.T) {
	tables, _ := newTables(t)
	assert.Equal(t, DefaultTopN, NewDashboardService(tables, 0).Normalize(Query{}).TopN)
	assert.Equal(t, 9, NewDashboardService(tables, 9).Normalize(Query{}).TopN)
	assert.Equal(t, 2, NewDashboardService(tables, 9).Normalize(Query{TopN: 2}).TopN)
}

// --- cache keys ---

func TestQueryHash(t *testing.T) {
	a := Query{Categories: models.NewSet("Music", "Gaming"), TopN: 5}
	b := Query{Categories: models.NewSet("Gaming", "Music"), TopN: 5}
	assert.Equal(t, queryHash(a), queryHash(b))
	assert.Len(t, queryHash(a), 16)

	distinct := []Query{
		{TopN: 5},
		{Categories: models.NewSet(), TopN: 5},
		{Countries: models.NewSet(), TopN: 5},
		{TopN: 6},
		{TopN: 5, Columns: []string{"country"}},
		{TopN: 5, Columns: []string{"country", "category"}},
		{TopN: 5, Columns: []string{"category", "country"}},
	}
	seen := make(map[string]int)
	for i, q := range distinct {
		h := queryHash(q)
		if j, dup := seen[h]; dup {
			t.Fatalf("queries %d and %d share hash %s", j, i, h)
		}
		seen[h] = i
	}
}

func TestDashboardKey(t *testing.T) {
	snap := snapshot(t)
	key := dashboardKey(snap, Query{TopN: 5})
	assert.Regexp(t, `^dashboard:[0-9a-f-]{36}:[0-9a-f]{16}$`, key)
	assert.Contains(t, key, snap.ID.String())
}

func TestDashboard_CachedFormMatches(t *testing.T) {
	d, err := Compose(snapshot(t), Query{TopN: 3})
	require.NoError(t, err)

	data, err := json.Marshal(d)
	require.NoError(t, err)
	var back Dashboard
	require.NoError(t, json.Unmarshal(data, &back))
	again, err := json.Marshal(&back)
	require.NoError(t, err)

	assert.JSONEq(t, string(data), string(again))
	assert.Equal(t, d.Distribution.Entries(), back.Distribution.Entries())
	assert.Equal(t, d.Distribution.Ranked(), back.Distribution.Ranked())
	assert.Equal(t, d.Selection.Countries.Sorted(), back.Selection.Countries.Sorted())
}

// --- CachedDashboards ---

// unreachableRedis points at a closed port with retries disabled so every
// Redis call fails fast.
func unreachableRedis(t *testing.T) *cache.Redis {
	t.Helper()
	r, err := cache.New("redis://127.0.0.1:1/0?max_retries=-1&dial_timeout=200ms")
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func testRedis(t *testing.T) (*cache.Redis, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	r, err := cache.New("redis://" + mr.Addr() + "/0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r, mr
}

func TestCachedDashboards_HitAfterMiss(t *testing.T) {
	tables, src := newTables(t)
	r, mr := testRedis(t)
	m := metrics.New(prometheus.NewRegistry())
	cd := NewCachedDashboards(NewDashboardService(tables, 5), tables, r, time.Minute, quietLogger(), m)
	ctx := context.Background()
	q := Query{Countries: models.NewSet("US", "IN")}

	miss, err := cd.Build(ctx, q)
	require.NoError(t, err)
	assert.InDelta(t, 1, testutil.ToFloat64(m.CacheMisses), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(m.CacheHits), 0)

	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.Equal(t, dashboardKey(tables.Current(), cd.inner.Normalize(q)), keys[0])
	assert.Equal(t, time.Minute, mr.TTL(keys[0]))

	hit, err := cd.Build(ctx, q)
	require.NoError(t, err)
	assert.InDelta(t, 1, testutil.ToFloat64(m.CacheMisses), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.CacheHits), 0)
	assert.Equal(t, int32(1), src.loads.Load())

	assert.Equal(t, miss.SnapshotID, hit.SnapshotID)
	assert.Equal(t, miss.Summary, hit.Summary)
	assert.Equal(t, topNames(miss), topNames(hit))
	assert.Equal(t, miss.Distribution.Entries(), hit.Distribution.Entries())
	assert.Equal(t, miss.EarningsByCategory, hit.EarningsByCategory)
	assert.Equal(t, miss.Table.Columns, hit.Table.Columns)
}

func TestCachedDashboards_ReloadPurges(t *testing.T) {
	tables, _ := newTables(t)
	r, mr := testRedis(t)
	m := metrics.New(prometheus.NewRegistry())
	cd := NewCachedDashboards(NewDashboardService(tables, 5), tables, r, time.Minute, quietLogger(), m)
	ctx := context.Background()

	_, err := cd.Build(ctx, Query{})
	require.NoError(t, err)
	_, err = cd.Build(ctx, Query{TopN: 2})
	require.NoError(t, err)
	require.NoError(t, mr.Set("unrelated", "1"))
	require.Len(t, mr.Keys(), 3)

	snap, err := tables.Reload(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"unrelated"}, mr.Keys())

	d, err := cd.Build(ctx, Query{})
	require.NoError(t, err)
	assert.Equal(t, snap.ID, d.SnapshotID)
	assert.InDelta(t, 3, testutil.ToFloat64(m.CacheMisses), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(m.CacheHits), 0)
}

func TestCachedDashboards_Purge(t *testing.T) {
	tables, _ := newTables(t)
	r, mr := testRedis(t)
	cd := NewCachedDashboards(NewDashboardService(tables, 5), tables, r, 0, quietLogger(), nil)

	_, err := cd.Build(context.Background(), Query{})
	require.NoError(t, err)
	assert.Equal(t, DefaultCacheTTL, mr.TTL(mr.Keys()[0]))

	n, err := cd.Purge(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Empty(t, mr.Keys())
}

func TestCachedDashboards_FallsThroughOnRedisErrors(t *testing.T) {
	tables, src := newTables(t)
	m := metrics.New(prometheus.NewRegistry())
	cd := NewCachedDashboards(NewDashboardService(tables, 5), tables, unreachableRedis(t), time.Minute, quietLogger(), m)

	d, err := cd.Build(context.Background(), Query{Countries: models.NewSet("US")})
	require.NoError(t, err)
	assert.Equal(t, 3, d.Summary.Count)
	assert.Len(t, d.Top, 3)
	assert.Equal(t, int32(1), src.loads.Load())

	assert.InDelta(t, 1, testutil.ToFloat64(m.CacheMisses), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(m.CacheHits), 0)
}

func TestCachedDashboards_ReloadHookSurvivesRedisErrors(t *testing.T) {
	tables, _ := newTables(t)
	NewCachedDashboards(NewDashboardService(tables, 5), tables, unreachableRedis(t), 0, quietLogger(), nil)

	_, err := tables.Reload(context.Background())
	assert.NoError(t, err)
}

// --- Reloader ---

func TestReloader_WithoutRedis(t *testing.T) {
	tables, src := newTables(t)
	rl := NewReloader(tables, nil, quietLogger())
	ctx := context.Background()

	first, err := tables.Get(ctx)
	require.NoError(t, err)
	second, err := rl.Reload(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, int32(2), src.loads.Load())

	rl.Invalidate()
	assert.Nil(t, tables.Current())
}

func TestReloader_LockHeldElsewhere(t *testing.T) {
	tables, src := newTables(t)
	r, mr := testRedis(t)
	rl := NewReloader(tables, r, quietLogger())
	ctx := context.Background()

	require.NoError(t, mr.Set(ReloadLockKey, "other-replica"))
	assert.True(t, rl.Reloading(ctx))

	_, err := rl.Reload(ctx)
	require.ErrorIs(t, err, ErrReloadInProgress)
	assert.Zero(t, src.loads.Load())

	mr.Del(ReloadLockKey)
	assert.False(t, rl.Reloading(ctx))

	snap, err := rl.Reload(ctx)
	require.NoError(t, err)
	assert.Same(t, snap, tables.Current())
	assert.False(t, mr.Exists(ReloadLockKey), "lock released after reload")
}

func TestReloader_ReloadingWithoutRedis(t *testing.T) {
	tables, _ := newTables(t)
	assert.False(t, NewReloader(tables, nil, quietLogger()).Reloading(context.Background()))
	assert.False(t, NewReloader(tables, unreachableRedis(t), quietLogger()).Reloading(context.Background()))
}

func TestReloader_RedisDownStillReloads(t *testing.T) {
	tables, _ := newTables(t)
	rl := NewReloader(tables, unreachableRedis(t), quietLogger())

	snap, err := rl.Reload(context.Background())
	require.NoError(t, err)
	assert.Same(t, snap, tables.Current())
}

func TestReloader_FailureKeepsSnapshot(t *testing.T) {
	src := &memSource{}
	tables := store.NewTableCache(src, store.WithLogger(quietLogger()))
	ctx := context.Background()
	first, err := tables.Get(ctx)
	require.NoError(t, err)

	src.fail = true
	_, err = NewReloader(tables, nil, quietLogger()).Reload(ctx)
	require.Error(t, err)
	assert.Same(t, first, tables.Current())
}
