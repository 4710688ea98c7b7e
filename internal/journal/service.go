// Copyright (c) 2026 Joury. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package journal reads and writes journal entries through the cache-first data
flow every read-mostly surface of the SDK follows: check the cache, fall back
to the API, cache what came back.

Architecture:

  - Service: Stateless orchestration over the API client and the cache.
  - Reads: Cache hit short-circuits the network entirely.
  - Writes: Go to the backend first, then replace the cached copy, so a
    cached read after a write always observes the write.
*/
package journal

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/taibuivan/joury-go/internal/api"
	"github.com/taibuivan/joury-go/internal/cache"
)

// Service provides cached access to journal entries and mood analytics.
type Service struct {
	client *api.Client
	cache  *cache.Cache
	log    *slog.Logger
	now    func() time.Time
}

// Option customizes a [Service].
type Option func(*Service)

// WithClock overrides the time source. Tests use this to pin "today".
func WithClock(now func() time.Time) Option {
	return func(service *Service) { service.now = now }
}

// NewService builds a journal service over the shared client and cache.
func NewService(client *api.Client, store *cache.Cache, log *slog.Logger, opts ...Option) *Service {

	service := &Service{
		client: client,
		cache:  store,
		log:    log,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(service)
	}
	return service
}

// # Reads

/*
GetByDate returns the entry for the given calendar date.

Description: The cache is consulted first under the entry's date key; a hit
never touches the network. On a miss the entry is fetched, cached for a day,
and returned. A date with no entry surfaces the API's NotFound error.

Parameters:
  - ctx: context.Context
  - date: string, formatted "2006-01-02"

Returns:
  - *Entry: The entry for that date
  - error: Invalid date format, or an API failure
*/
func (service *Service) GetByDate(ctx context.Context, date string) (*Entry, error) {

	if _, err := time.Parse(dateLayout, date); err != nil {
		return nil, fmt.Errorf("journal: invalid_date %q: %w", date, err)
	}

	key := entryKeyPrefix + date

	entry := new(Entry)
	if service.cache.Get(ctx, key, entry) {
		service.log.Debug("journal cache hit", slog.String("date", date))
		return entry, nil
	}

	fetched, err := api.Get[Entry](ctx, service.client, "/journals/"+date, nil)
	if err != nil {
		return nil, err
	}

	if err := service.cache.Put(ctx, key, fetched, TTLEntry); err != nil {
		service.log.Warn("failed to cache journal entry", slog.String("error", err.Error()))
	}

	return &fetched, nil
}

// Today returns the entry for the current date.
func (service *Service) Today(ctx context.Context) (*Entry, error) {
	return service.GetByDate(ctx, service.now().Format(dateLayout))
}

/*
MoodTrend returns the aggregated mood scores over the trailing window.

Description: Served from the memory cache for five minutes per window size;
analytics are never persisted to disk.

Parameters:
  - ctx: context.Context
  - days: int, size of the trailing window

Returns:
  - *MoodTrend: The aggregate
  - error: Any API failure
*/
func (service *Service) MoodTrend(ctx context.Context, days int) (*MoodTrend, error) {

	key := analyticsKeyPrefix + strconv.Itoa(days)

	trend := new(MoodTrend)
	if service.cache.Get(ctx, key, trend) {
		return trend, nil
	}

	query := url.Values{}
	query.Set("days", strconv.Itoa(days))

	fetched, err := api.Get[MoodTrend](ctx, service.client, "/journals/analytics/mood", query)
	if err != nil {
		return nil, err
	}

	if err := service.cache.Put(ctx, key, fetched, TTLAnalytics); err != nil {
		service.log.Warn("failed to cache mood trend", slog.String("error", err.Error()))
	}

	return &fetched, nil
}

// # Writes

/*
Save creates or updates an entry and refreshes the cached copy.

Description: An entry without an ID is created, one with an ID is updated.
The backend's canonical version replaces the cached copy, so subsequent
cached reads observe the write immediately.

Parameters:
  - ctx: context.Context
  - entry: Entry, the draft to persist

Returns:
  - *Entry: The canonical version the backend stored
  - error: Invalid date format, or an API failure
*/
func (service *Service) Save(ctx context.Context, entry Entry) (*Entry, error) {

	if _, err := time.Parse(dateLayout, entry.Date); err != nil {
		return nil, fmt.Errorf("journal: invalid_date %q: %w", entry.Date, err)
	}

	var saved Entry
	var err error
	if entry.ID == "" {
		saved, err = api.Post[Entry](ctx, service.client, "/journals", entry)
	} else {
		saved, err = api.Put[Entry](ctx, service.client, "/journals/"+entry.ID, entry)
	}
	if err != nil {
		return nil, err
	}

	if err := service.cache.Put(ctx, entryKeyPrefix+saved.Date, saved, TTLEntry); err != nil {
		service.log.Warn("failed to cache journal entry", slog.String("error", err.Error()))
	}

	service.log.Debug("journal entry saved",
		slog.String("id", saved.ID),
		slog.String("date", saved.Date),
	)
	return &saved, nil
}

// Invalidate drops the cached entry for the date, forcing the next read to
// hit the backend.
func (service *Service) Invalidate(ctx context.Context, date string) {
	service.cache.Remove(ctx, entryKeyPrefix+date)
}
