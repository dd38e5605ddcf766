package store

import (
	"context"
	"strings"
	"time"

	"github.com/voyagen/tubestats/internal/loader"
	"github.com/voyagen/tubestats/internal/models"
)

// FileSource reads a CSV table from a local path or an http(s) URL.
type FileSource struct {
	location  string
	userAgent string
	timeout   time.Duration
}

// NewFileSource returns a source for location. userAgent and timeout only
// apply to URLs; a zero timeout means 30s.
func NewFileSource(location, userAgent string, timeout time.Duration) *FileSource {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &FileSource{location: location, userAgent: userAgent, timeout: timeout}
}

// IsURL reports whether location is fetched over HTTP.
func IsURL(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// Path returns the local file path, or "" for URL sources.
func (f *FileSource) Path() string {
	if IsURL(f.location) {
		return ""
	}
	return f.location
}

func (f *FileSource) Load(ctx context.Context) (*models.ChannelTable, error) {
	if IsURL(f.location) {
		return loader.Fetch(ctx, f.location, f.userAgent, f.timeout)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return loader.LoadFile(f.location)
}

func (f *FileSource) Info() models.SourceInfo {
	kind := models.SourceKindFile
	if IsURL(f.location) {
		kind = models.SourceKindURL
	}
	return models.SourceInfo{Kind: kind, Location: f.location}
}
