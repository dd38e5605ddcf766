package server

import (
	"context"
	"net/http"
	"time"

	"github.com/voyagen/tubestats/internal/engine"
	"github.com/voyagen/tubestats/internal/service"
)

const healthPingTimeout = 2 * time.Second

// purger is implemented by dashboard builders that keep a result cache.
type purger interface {
	Purge(ctx context.Context) (int, error)
}

// pinger is implemented by sources with a live connection, like Postgres.
type pinger interface {
	Ping(ctx context.Context) error
}

// --- health ---

type healthResponse struct {
	Status     string     `json:"status"`
	SnapshotID string     `json:"snapshot_id,omitempty"`
	Source     string     `json:"source,omitempty"`
	LoadedAt   *time.Time `json:"loaded_at,omitempty"`
	Rows       int        `json:"rows"`
	Error      string     `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok"}
	if snap := s.tables.Current(); snap != nil {
		resp.SnapshotID = snap.ID.String()
		resp.Source = snap.Source.String()
		resp.LoadedAt = &snap.LoadedAt
		resp.Rows = snap.Table.Len()
	} else {
		// Invalidated; the next data request reloads.
		resp.Status = "unloaded"
	}

	if p, ok := s.tables.Source().(pinger); ok {
		ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			s.log.Warn("health: source ping failed", "error", err)
			resp.Status = "unavailable"
			resp.Error = err.Error()
			writeJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
	}
	if s.reloader.Reloading(r.Context()) {
		resp.Status = "reloading"
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- options ---

type optionsResponse struct {
	engine.Options
	Stats engine.TableStats `json:"stats"`
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	snap, err := s.tables.Get(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, optionsResponse{
		Options: engine.TableOptions(snap.Table),
		Stats:   engine.Stats(snap.Table),
	})
}

// --- views ---

// build parses the filter params and builds the dashboard. It writes the
// error response itself and returns nil on failure.
func (s *Server) build(w http.ResponseWriter, r *http.Request) *service.Dashboard {
	q, err := s.parseQuery(r)
	if err != nil {
		writeError(w, err)
		return nil
	}
	d, err := s.dashboards.Build(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return nil
	}
	return d
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if d := s.build(w, r); d != nil {
		writeJSON(w, http.StatusOK, d)
	}
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if d := s.build(w, r); d != nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"selection": d.Selection,
			"summary":   d.Summary,
		})
	}
}

func (s *Server) handleDistribution(w http.ResponseWriter, r *http.Request) {
	if d := s.build(w, r); d != nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"selection":    d.Selection,
			"distribution": d.Distribution,
			"chart":        d.Charts.Categories,
		})
	}
}

func (s *Server) handleTop(w http.ResponseWriter, r *http.Request) {
	if d := s.build(w, r); d != nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"selection": d.Selection,
			"top":       d.Top,
		})
	}
}

func (s *Server) handleEarnings(w http.ResponseWriter, r *http.Request) {
	if d := s.build(w, r); d != nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"selection":            d.Selection,
			"earnings_by_category": d.EarningsByCategory,
			"chart":                d.Charts.Earnings,
		})
	}
}

func (s *Server) handleChannels(w http.ResponseWriter, r *http.Request) {
	if d := s.build(w, r); d != nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"selection": d.Selection,
			"table":     d.Table,
		})
	}
}

// --- table lifecycle ---

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	snap, err := s.reloader.Reload(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	s.log.Info("table reloaded", "snapshot", snap.ID, "rows", snap.Table.Len(), "source", snap.Source.String())
	writeJSON(w, http.StatusOK, healthResponse{
		Status:     "reloaded",
		SnapshotID: snap.ID.String(),
		Source:     snap.Source.String(),
		LoadedAt:   &snap.LoadedAt,
		Rows:       snap.Table.Len(),
	})
}

func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	s.reloader.Invalidate()
	if p, ok := s.dashboards.(purger); ok {
		n, err := p.Purge(r.Context())
		if err != nil {
			s.log.Warn("purge dashboard cache", "error", err)
		} else {
			s.log.Debug("purged dashboard cache", "keys", n)
		}
	}
	writeNoContent(w)
}
