package loader

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/voyagen/tubestats/internal/models"
)

// Fetch downloads a CSV table from url and parses it.
// userAgent is optional.
func Fetch(ctx context.Context, url string, userAgent string, timeout time.Duration) (*models.ChannelTable, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &LoadError{Source: url, Err: fmt.Errorf("new request: %w", err)}
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, &LoadError{Source: url, Err: fmt.Errorf("%w: %w", ErrUnavailable, err)}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &LoadError{Source: url, Err: fmt.Errorf("%w: HTTP %d", ErrUnavailable, resp.StatusCode)}
	}
	return ParseCSV(resp.Body, url)
}
