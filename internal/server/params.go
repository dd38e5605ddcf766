package server

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/voyagen/tubestats/internal/models"
	"github.com/voyagen/tubestats/internal/service"
	"github.com/voyagen/tubestats/internal/validation"
)

// queryParams holds the parsed view params that carry range rules.
type queryParams struct {
	Top     *int     `json:"top" validate:"omitempty,gte=1,lte=100"`
	Columns []string `json:"columns" validate:"omitempty,dive,oneof=channel_name category country subscribers monthly_earnings engagement_rate total_videos total_views"`
}

// parseQuery reads the filter params shared by every view:
//
//	category=Music&category=Gaming   repeated; absent selects all, "category=" selects none
//	country=India                    same rules as category
//	top=10                           1..100
//	columns=channel_name,subscribers comma separated, repeatable
func (s *Server) parseQuery(r *http.Request) (service.Query, error) {
	values := r.URL.Query()
	q := service.Query{
		Categories: parseSet(values, "category"),
		Countries:  parseSet(values, "country"),
	}

	var p queryParams
	if v, ok := values["top"]; ok {
		n, err := strconv.Atoi(strings.TrimSpace(v[0]))
		if err != nil {
			return service.Query{}, validation.Field("top", "must be an integer")
		}
		p.Top = &n
	}
	for _, v := range values["columns"] {
		for _, c := range strings.Split(v, ",") {
			if c = strings.TrimSpace(c); c != "" {
				p.Columns = append(p.Columns, c)
			}
		}
	}
	if err := s.validate.Validate(p); err != nil {
		return service.Query{}, err
	}

	if p.Top != nil {
		q.TopN = *p.Top
	}
	q.Columns = p.Columns
	return q, nil
}

// parseSet returns nil when key is absent, so that every value is selected.
// Empty values are dropped, which makes "key=" an explicit empty set.
// Matching is exact, so values are not trimmed.
func parseSet(values url.Values, key string) models.Set {
	raw, ok := values[key]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(raw))
	for _, v := range raw {
		if v != "" {
			names = append(names, v)
		}
	}
	return models.NewSet(names...)
}
