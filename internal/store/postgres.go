package store

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/voyagen/tubestats/internal/loader"
	"github.com/voyagen/tubestats/internal/models"
)

const selectChannels = `
	SELECT channel_name, category, country, subscribers, monthly_earnings,
	       engagement_rate, total_videos, total_views
	FROM channels
	ORDER BY id`

// pgxPool is the part of *pgxpool.Pool that Postgres uses.
type pgxPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Ping(ctx context.Context) error
	Close()
}

// Postgres reads the channel table from the channels table of a PostgreSQL
// database. It never writes.
type Postgres struct {
	pool     pgxPool
	location string
}

// NewPostgres creates a Postgres source from a DSN. Caller must call Close when done.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Postgres{pool: pool, location: RedactDSN(dsn)}, nil
}

// Close closes the connection pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

// Ping checks the database connection. The health endpoint calls it for
// Postgres sources.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Load selects every channel row in insertion order. Rows are checked with
// the same range rules as CSV input.
func (p *Postgres) Load(ctx context.Context) (*models.ChannelTable, error) {
	rows, err := p.pool.Query(ctx, selectChannels)
	if err != nil {
		return nil, &loader.LoadError{Source: p.location, Err: fmt.Errorf("%w: %w", loader.ErrUnavailable, err)}
	}
	defer rows.Close()

	var records []models.ChannelRecord
	for n := 1; rows.Next(); n++ {
		var r models.ChannelRecord
		if err := rows.Scan(
			&r.ChannelName, &r.Category, &r.Country, &r.Subscribers, &r.MonthlyEarnings,
			&r.EngagementRate, &r.TotalVideos, &r.TotalViews,
		); err != nil {
			return nil, &loader.LoadError{Source: p.location, Row: n, Err: fmt.Errorf("%w: %w", loader.ErrMalformedRow, err)}
		}
		if err := loader.ValidateRecord(r); err != nil {
			lerr := &loader.LoadError{Source: p.location, Row: n, Err: fmt.Errorf("%w: %w", loader.ErrMalformedRow, err)}
			var ferr *loader.FieldError
			if errors.As(err, &ferr) {
				lerr.Column = ferr.Column
			}
			return nil, lerr
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &loader.LoadError{Source: p.location, Err: fmt.Errorf("%w: %w", loader.ErrUnavailable, err)}
	}
	return models.NewChannelTable(records), nil
}

func (p *Postgres) Info() models.SourceInfo {
	return models.SourceInfo{Kind: models.SourceKindPostgres, Location: p.location}
}

// RedactDSN hides the password of a URL-form DSN. Key/value DSNs are
// reduced to "postgres" since they cannot be redacted reliably.
func RedactDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "postgres"
	}
	return u.Redacted()
}
