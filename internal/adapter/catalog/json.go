// Package catalog provides TrackCatalog implementations.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dhowden/tag"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/tejashwikalptaru/spectrotune/internal/domain"
	"github.com/tejashwikalptaru/spectrotune/internal/ports"
)

// DefaultWorkers bounds concurrent tag reads.
const DefaultWorkers = 4

// UnknownArtist is used when neither the catalog nor the file tags name one.
const UnknownArtist = "Unknown Artist"

// Option configures a JSONCatalog.
type Option func(*JSONCatalog)

// WithWorkers sets the number of concurrent metadata readers.
func WithWorkers(n int) Option {
	return func(c *JSONCatalog) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithHTTPClient sets the client used for http(s) catalogs.
func WithHTTPClient(client *http.Client) Option {
	return func(c *JSONCatalog) { c.client = client }
}

// JSONCatalog reads a JSON array of track records from a file or an http(s) URL:
//
//	[{"id": 1, "artist": "...", "song": "...", "source": "audio/a.mp3", "duration": 215.4}]
//
// Relative sources are resolved against the catalog's own location. Local
// files lacking an artist or song are completed from their tags. The first
// successful result is cached.
//
// Thread-safety: This implementation is thread-safe.
type JSONCatalog struct {
	logger   *slog.Logger
	location string
	workers  int
	client   *http.Client

	mu     sync.Mutex
	tracks []domain.Track
	loaded bool
}

// record is the wire shape of one catalog entry.
type record struct {
	ID       flexID  `json:"id"`
	Artist   string  `json:"artist"`
	Song     string  `json:"song"`
	Source   string  `json:"source"`
	Duration float64 `json:"duration,omitempty"` // seconds
}

// flexID accepts both numeric and string ids.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*f = flexID(n.String())
	return nil
}

// New creates a catalog for location, a file path or an http(s) URL.
func New(logger *slog.Logger, location string, opts ...Option) *JSONCatalog {
	c := &JSONCatalog{
		logger:   logger.With(slog.String("adapter", "catalog")),
		location: location,
		workers:  DefaultWorkers,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Location returns the catalog path or URL.
func (c *JSONCatalog) Location() string { return c.location }

// Tracks returns the catalog entries, fetching them on first use.
func (c *JSONCatalog) Tracks(ctx context.Context) ([]domain.Track, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded {
		return cloneTracks(c.tracks), nil
	}

	data, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}

	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, domain.NewCatalogError("decode", c.location, err)
	}

	tracks := c.toTracks(records)
	if err := c.enrich(ctx, tracks); err != nil {
		return nil, domain.NewCatalogError("enrich", c.location, err)
	}

	c.tracks = tracks
	c.loaded = true
	c.logger.Info("catalog loaded", slog.String("location", c.location), slog.Int("tracks", len(tracks)))
	return cloneTracks(tracks), nil
}

// Invalidate drops the cached result so the next Tracks call fetches again.
func (c *JSONCatalog) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tracks = nil
	c.loaded = false
}

func (c *JSONCatalog) fetch(ctx context.Context) ([]byte, error) {
	if !isRemote(c.location) {
		data, err := os.ReadFile(c.location)
		if err != nil {
			return nil, domain.NewCatalogError("read", c.location, errors.Join(domain.ErrCatalogUnavailable, err))
		}
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.location, nil)
	if err != nil {
		return nil, domain.NewCatalogError("fetch", c.location, err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, domain.NewCatalogError("fetch", c.location, errors.Join(domain.ErrCatalogUnavailable, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, domain.NewCatalogError("fetch", c.location,
			fmt.Errorf("%w: status %d", domain.ErrCatalogUnavailable, resp.StatusCode))
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewCatalogError("fetch", c.location, err)
	}
	return data, nil
}

func (c *JSONCatalog) toTracks(records []record) []domain.Track {
	tracks := make([]domain.Track, 0, len(records))
	for i, r := range records {
		source := strings.TrimSpace(r.Source)
		if source == "" {
			c.logger.Warn("skipping catalog entry without source", slog.Int("index", i))
			continue
		}

		id := string(r.ID)
		if id == "" {
			id = uuid.NewString()
		}
		tracks = append(tracks, domain.Track{
			ID:       id,
			Artist:   strings.TrimSpace(r.Artist),
			Song:     strings.TrimSpace(r.Song),
			Source:   c.resolve(source),
			Duration: time.Duration(r.Duration * float64(time.Second)),
		})
	}
	return tracks
}

// resolve makes a relative source absolute against the catalog location.
func (c *JSONCatalog) resolve(source string) string {
	if isRemote(source) || filepath.IsAbs(source) {
		return source
	}
	if isRemote(c.location) {
		base, err := url.Parse(c.location)
		if err != nil {
			return source
		}
		ref, err := url.Parse(source)
		if err != nil {
			return source
		}
		return base.ResolveReference(ref).String()
	}
	return filepath.Join(filepath.Dir(c.location), source)
}

// enrich fills missing artist and song names from local file tags.
func (c *JSONCatalog) enrich(ctx context.Context, tracks []domain.Track) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)

	for i := range tracks {
		t := &tracks[i]
		if t.Artist != "" && t.Song != "" {
			continue
		}
		if isRemote(t.Source) {
			fillFallbacks(t)
			continue
		}

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := readTags(t); err != nil {
				c.logger.Debug("no tags read", slog.String("source", t.Source), slog.Any("error", err))
			}
			fillFallbacks(t)
			return nil
		})
	}
	return g.Wait()
}

func readTags(t *domain.Track) error {
	file, err := os.Open(t.Source)
	if err != nil {
		return err
	}
	defer file.Close()

	metadata, err := tag.ReadFrom(file)
	if err != nil {
		return err
	}
	if t.Artist == "" {
		t.Artist = strings.TrimSpace(metadata.Artist())
	}
	if t.Song == "" {
		t.Song = strings.TrimSpace(metadata.Title())
	}
	return nil
}

func fillFallbacks(t *domain.Track) {
	if t.Song == "" {
		base := baseName(t.Source)
		t.Song = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if t.Artist == "" {
		t.Artist = UnknownArtist
	}
}

// baseName returns the last element of a file path or URL path.
func baseName(source string) string {
	if isRemote(source) {
		if u, err := url.Parse(source); err == nil {
			source, _ = url.PathUnescape(u.Path)
		}
	}
	return filepath.Base(filepath.FromSlash(source))
}

func isRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

func cloneTracks(tracks []domain.Track) []domain.Track {
	return append([]domain.Track(nil), tracks...)
}

var _ ports.TrackCatalog = (*JSONCatalog)(nil)
