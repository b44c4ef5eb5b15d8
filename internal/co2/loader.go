package co2

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/rshade/dexter/internal/engine/cache"
	"github.com/rshade/dexter/internal/logging"
)

// ScopeDataset is the cache scope for loaded datasets, keyed by source.
const ScopeDataset = "co2Dataset"

const defaultLoadTimeout = 2 * time.Minute

//nolint:gochecknoglobals // Magic numbers used for format sniffing.
var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// rawCountry is the upstream JSON shape: {"iso_code": "...", "data": [...]}.
type rawCountry struct {
	ISOCode *string     `json:"iso_code"`
	Data    []rawRecord `json:"data"`
}

type rawRecord struct {
	Year *int `json:"year"`
	YearlyRecord
}

// Loader fetches datasets from a file path or an HTTP(S) URL. Plain JSON,
// gzip and zstd payloads are accepted. Results are cached per source.
type Loader struct {
	cache *cache.Cache
	http  *http.Client
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithHTTPClient replaces the HTTP client used for URL sources.
func WithHTTPClient(h *http.Client) LoaderOption {
	return func(l *Loader) {
		if h != nil {
			l.http = h
		}
	}
}

// NewLoader creates a loader backed by c.
func NewLoader(c *cache.Cache, opts ...LoaderOption) *Loader {
	l := &Loader{
		cache: c,
		http:  &http.Client{Timeout: defaultLoadTimeout},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// DatasetKey is the cache key for source.
func DatasetKey(source string) cache.Key {
	return cache.NewKey(ScopeDataset, source)
}

// Load returns the normalised dataset for source.
func (l *Loader) Load(ctx context.Context, source string, opts ...cache.GetOption) (*Dataset, error) {
	return cache.Query(ctx, l.cache, DatasetKey(source), func(ctx context.Context) (*Dataset, error) {
		return l.fetch(ctx, source)
	}, opts...)
}

func (l *Loader) fetch(ctx context.Context, source string) (*Dataset, error) {
	log := logging.FromContext(ctx).With().
		Str("component", "co2").
		Str("operation", "load").
		Str("source", source).
		Logger()
	start := time.Now()

	rc, err := l.open(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDatasetLoad, err)
	}
	defer rc.Close()

	ds, err := Decode(rc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDatasetLoad, source, err)
	}

	log.Debug().
		Int("countries", len(ds.Countries)).
		Dur("duration_ms", time.Since(start)).
		Msg("dataset loaded")
	return ds, nil
}

func (l *Loader) open(ctx context.Context, source string) (io.ReadCloser, error) {
	if !isURL(source) {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("open dataset: %w", err)
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request dataset: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("HTTP error! Status: %d", resp.StatusCode)
	}
	return resp.Body, nil
}

func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// Decode reads a dataset from r, detecting gzip or zstd compression from
// the leading bytes, and normalises it.
func Decode(r io.Reader) (*Dataset, error) {
	br := bufio.NewReader(r)
	head, _ := br.Peek(len(zstdMagic))

	var src io.Reader = br
	switch {
	case bytes.HasPrefix(head, gzipMagic):
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer gz.Close()
		src = gz
	case bytes.HasPrefix(head, zstdMagic):
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		defer zr.Close()
		src = zr
	}

	var raw map[string]rawCountry
	if err := json.NewDecoder(src).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	return normalize(raw), nil
}

// normalize drops records without a year and countries left with no
// records, and copies each country's ISO code onto its records.
func normalize(raw map[string]rawCountry) *Dataset {
	ds := &Dataset{Countries: make([]Country, 0, len(raw))}
	for name, rc := range raw {
		iso := ""
		if rc.ISOCode != nil {
			iso = *rc.ISOCode
		}

		records := make([]YearlyRecord, 0, len(rc.Data))
		for _, rr := range rc.Data {
			if rr.Year == nil || *rr.Year == 0 {
				continue
			}
			rec := rr.YearlyRecord
			rec.Year = *rr.Year
			rec.ISOCode = iso
			records = append(records, rec)
		}
		if len(records) == 0 {
			continue
		}
		ds.Countries = append(ds.Countries, Country{Name: name, ISOCode: iso, Records: records})
	}
	sort.Slice(ds.Countries, func(i, j int) bool { return ds.Countries[i].Name < ds.Countries[j].Name })
	return ds
}
