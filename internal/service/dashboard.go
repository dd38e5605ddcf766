// Package service composes engine views into dashboards over the cached table.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/voyagen/tubestats/internal/engine"
	"github.com/voyagen/tubestats/internal/models"
	"github.com/voyagen/tubestats/internal/store"
)

// Limits for Query.TopN.
const (
	DefaultTopN = 5
	MaxTopN     = 100
)

// ErrInvalidQuery is returned for a query outside the accepted limits.
var ErrInvalidQuery = errors.New("invalid query")

// Query selects the rows and views of a dashboard. Nil sets select every
// value present in the table; empty non-nil sets select nothing.
type Query struct {
	Categories models.Set `json:"categories"`
	Countries  models.Set `json:"countries"`
	TopN       int        `json:"top"`
	Columns    []string   `json:"columns"`
}

// Charts are the render-ready charts of a dashboard.
type Charts struct {
	Categories engine.ChartConfig `json:"categories"`
	Earnings   engine.ChartConfig `json:"earnings"`
}

// Dashboard is every derived view of one query over one table snapshot.
type Dashboard struct {
	SnapshotID         uuid.UUID                `json:"snapshot_id"`
	LoadedAt           time.Time                `json:"loaded_at"`
	Source             models.SourceInfo        `json:"source"`
	Stats              engine.TableStats        `json:"stats"`
	Options            engine.Options           `json:"options"`
	Selection          models.FilterSelection   `json:"selection"`
	Summary            engine.Summary           `json:"summary"`
	Distribution       engine.Distribution      `json:"distribution"`
	Top                []models.ChannelRecord   `json:"top"`
	EarningsByCategory []engine.CategoryAverage `json:"earnings_by_category"`
	Table              engine.Projection        `json:"table"`
	Charts             Charts                   `json:"charts"`
}

// Dashboards builds dashboards.
type Dashboards interface {
	Build(ctx context.Context, q Query) (*Dashboard, error)
}

// DashboardService builds dashboards straight from the table cache.
type DashboardService struct {
	tables *store.TableCache
	topN   int
}

// NewDashboardService returns a service over tables. defaultTopN applies
// when a query leaves TopN unset; values <= 0 mean DefaultTopN.
func NewDashboardService(tables *store.TableCache, defaultTopN int) *DashboardService {
	if defaultTopN <= 0 {
		defaultTopN = DefaultTopN
	}
	return &DashboardService{tables: tables, topN: defaultTopN}
}

// Build loads the current snapshot and computes the dashboard for q.
func (s *DashboardService) Build(ctx context.Context, q Query) (*Dashboard, error) {
	snap, err := s.tables.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load table: %w", err)
	}
	return Compose(snap, s.Normalize(q))
}

// Normalize fills in the default TopN.
func (s *DashboardService) Normalize(q Query) Query {
	if q.TopN == 0 {
		q.TopN = s.topN
	}
	return q
}

// Select resolves the selection of q against the snapshot's options and
// returns it with the filtered subset.
func Select(snap *store.Snapshot, q Query) (models.FilterSelection, *models.ChannelTable) {
	opts := engine.TableOptions(snap.Table)
	sel := models.FilterSelection{Categories: q.Categories, Countries: q.Countries}.
		Resolve(opts.Categories, opts.Countries)
	return sel, engine.Filter(snap.Table, sel)
}

// Compose runs every engine view once for q over snap.
func Compose(snap *store.Snapshot, q Query) (*Dashboard, error) {
	if q.TopN < 0 || q.TopN > MaxTopN {
		return nil, fmt.Errorf("%w: top must be between 1 and %d, got %d", ErrInvalidQuery, MaxTopN, q.TopN)
	}
	sel, subset := Select(snap, q)

	table, err := engine.ProjectColumns(subset, q.Columns)
	if err != nil {
		return nil, err
	}
	dist := engine.CategoryDistribution(subset)
	earnings := engine.AvgEarningsByCategory(subset)

	return &Dashboard{
		SnapshotID:         snap.ID,
		LoadedAt:           snap.LoadedAt,
		Source:             snap.Source,
		Stats:              engine.Stats(snap.Table),
		Options:            engine.TableOptions(snap.Table),
		Selection:          sel,
		Summary:            engine.SummaryMetrics(subset),
		Distribution:       dist,
		Top:                engine.TopBySubscribers(subset, q.TopN),
		EarningsByCategory: earnings,
		Table:              table,
		Charts: Charts{
			Categories: engine.PieChart(dist),
			Earnings:   engine.BarChart(earnings),
		},
	}, nil
}
