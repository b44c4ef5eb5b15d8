package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rshade/dexter/internal/engine/cache"
	"github.com/rshade/dexter/internal/pokeapi"
)

// Cache key scopes.
const (
	ScopeList    = "pokemonList"
	ScopeDetails = "pokemonDetails"
)

// DefaultFanoutLimit bounds concurrent detail requests for one page.
const DefaultFanoutLimit = 8

// ErrInvalidPage is returned for a page or page size below 1.
var ErrInvalidPage = errors.New("page and page size must be at least 1")

// ListResult is one resolved page.
type ListResult struct {
	Items      []pokeapi.Detail `json:"items"`
	TotalCount int              `json:"totalCount"`
}

// Options configures a Service.
type Options struct {
	FanoutLimit int
	Logger      zerolog.Logger
}

// Service runs list and detail queries through a shared cache.
type Service struct {
	cache  *cache.Cache
	api    pokeapi.Fetcher
	fanout int
	logger zerolog.Logger
}

// NewService builds a Service over c and api.
func NewService(c *cache.Cache, api pokeapi.Fetcher, opts Options) *Service {
	fanout := opts.FanoutLimit
	if fanout < 1 {
		fanout = DefaultFanoutLimit
	}
	return &Service{
		cache:  c,
		api:    api,
		fanout: fanout,
		logger: opts.Logger.With().Str("component", "query").Logger(),
	}
}

// Cache returns the underlying cache.
func (s *Service) Cache() *cache.Cache {
	return s.cache
}

// ListKey is the cache key of a list page.
func ListKey(page, pageSize int) cache.Key {
	return cache.NewKey(ScopeList, page, pageSize)
}

// DetailKey is the cache key of a detail lookup; the term is normalised.
func DetailKey(term string) cache.Key {
	return cache.NewKey(ScopeDetails, pokeapi.NormalizeTerm(term))
}

// List returns page (1-based) of pageSize items with full details.
func (s *Service) List(ctx context.Context, page, pageSize int, opts ...cache.GetOption) (ListResult, error) {
	if page < 1 || pageSize < 1 {
		return ListResult{}, fmt.Errorf("%w: page=%d page_size=%d", ErrInvalidPage, page, pageSize)
	}
	return cache.Query(ctx, s.cache, ListKey(page, pageSize), func(ctx context.Context) (ListResult, error) {
		return s.fetchList(ctx, page, pageSize)
	}, opts...)
}

func (s *Service) fetchList(ctx context.Context, page, pageSize int) (ListResult, error) {
	offset := (page - 1) * pageSize
	summaries, err := s.api.FetchList(ctx, pageSize, offset)
	if err != nil {
		return ListResult{}, err
	}

	items := make([]pokeapi.Detail, len(summaries.Results))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.fanout)
	for i, summary := range summaries.Results {
		g.Go(func() error {
			d, detailErr := s.api.FetchDetailURL(gctx, summary.URL)
			if detailErr != nil {
				return detailErr
			}
			items[i] = d
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return ListResult{}, err
	}

	s.logger.Debug().
		Str("operation", "list").
		Int("page", page).
		Int("page_size", pageSize).
		Int("items", len(items)).
		Msg("page resolved")

	return ListResult{Items: items, TotalCount: summaries.Count}, nil
}

// ByKey returns one Pokémon by id or name. A missing Pokémon yields an error
// matching pokeapi.ErrNotFound.
func (s *Service) ByKey(ctx context.Context, term string, opts ...cache.GetOption) (pokeapi.Detail, error) {
	normalized := pokeapi.NormalizeTerm(term)
	return cache.Query(ctx, s.cache, DetailKey(normalized), func(ctx context.Context) (pokeapi.Detail, error) {
		return s.api.FetchDetail(ctx, normalized)
	}, opts...)
}

// Browse is what the list view shows: the page when term is empty, otherwise
// the single search hit as a one-item page with a total count of 1.
func (s *Service) Browse(ctx context.Context, page, pageSize int, term string, opts ...cache.GetOption) (ListResult, error) {
	if pokeapi.NormalizeTerm(term) == "" {
		return s.List(ctx, page, pageSize, opts...)
	}
	d, err := s.ByKey(ctx, term, opts...)
	if err != nil {
		return ListResult{}, err
	}
	return ListResult{Items: []pokeapi.Detail{d}, TotalCount: 1}, nil
}

// BrowseKey is the cache key Browse resolves through.
func BrowseKey(page, pageSize int, term string) cache.Key {
	if pokeapi.NormalizeTerm(term) == "" {
		return ListKey(page, pageSize)
	}
	return DetailKey(term)
}

// Invalidate marks every cached query in scope as stale. An empty scope
// invalidates both scopes.
func (s *Service) Invalidate(scope string) int {
	if scope == "" {
		return s.cache.Invalidate(cache.NewKey(ScopeList)) + s.cache.Invalidate(cache.NewKey(ScopeDetails))
	}
	return s.cache.Invalidate(cache.NewKey(scope))
}
