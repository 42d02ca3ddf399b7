package livetimes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"

	"mybus.dev/livetimes/downloader"
	"mybus.dev/livetimes/model"
	"mybus.dev/livetimes/parse"
	"mybus.dev/livetimes/storage"
)

const (
	DefaultLiveTimesTTL       = 30 * time.Second
	DefaultLiveTimesTimeout   = 20 * time.Second
	DefaultLiveTimesMaxSize   = 1 << 20 // 1 MB
	DefaultRefreshInterval    = 1 * time.Minute
	DefaultRefreshConcurrency = 4
	DefaultNumDepartures      = 4
)

// Manager fetches live times from the Bus Tracker API, and keeps
// track of which stops are being watched.
type Manager struct {
	BaseURL            string
	LiveTimesTTL       time.Duration
	LiveTimesTimeout   time.Duration
	LiveTimesMaxSize   int
	RefreshInterval    time.Duration
	RefreshConcurrency int
	NumDepartures      int
	Downloader         downloader.Downloader
	Parser             *parse.Parser
	TimeNow            func() time.Time

	apiKey  string
	storage storage.Storage
}

// Creates a new Manager on top of the given storage.
//
// By default, bus times responses are cached in memory for
// LiveTimesTTL. Journey times are never cached.
func NewManager(s storage.Storage, apiKey string) *Manager {
	return &Manager{
		BaseURL:            DefaultBaseURL,
		LiveTimesTTL:       DefaultLiveTimesTTL,
		LiveTimesTimeout:   DefaultLiveTimesTimeout,
		LiveTimesMaxSize:   DefaultLiveTimesMaxSize,
		RefreshInterval:    DefaultRefreshInterval,
		RefreshConcurrency: DefaultRefreshConcurrency,
		NumDepartures:      DefaultNumDepartures,
		Downloader:         downloader.NewMemoryDownloader(),
		Parser:             parse.NewParser(),
		TimeNow:            time.Now,

		apiKey:  apiKey,
		storage: s,
	}
}

// Loads live bus times for up to MaxStopCodes stops.
//
// The stop set is recorded as requested by the consumer, so that
// Refresh keeps its cached times warm. Sets are sorted and
// deduplicated first, so consumers asking for the same stops share
// a cache entry.
func (m *Manager) LoadBusTimes(
	ctx context.Context,
	consumer string,
	stopCodes []string,
	when time.Time,
) (*model.LiveBusTimes, error) {
	if err := validateStopCodes(stopCodes); err != nil {
		return nil, err
	}
	stopCodes = canonicalStopCodes(stopCodes)

	when = when.UTC()
	err := m.storage.WriteStopRequest(storage.StopRequest{
		StopCodes: stopCodes,
		Consumers: []storage.StopConsumer{
			{
				Name:      consumer,
				CreatedAt: when,
				UpdatedAt: when,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("writing stop request: %w", err)
	}

	req, err := m.busTimesRequest(stopCodes, when)
	if err != nil {
		return nil, err
	}

	return m.fetchBusTimes(ctx, req, false)
}

// Loads the remainder of a journey, starting at the given stop.
func (m *Manager) LoadJourneyTimes(
	ctx context.Context,
	stopCode string,
	journeyID string,
) (*model.Journey, error) {
	if err := validateStopCode(stopCode); err != nil {
		return nil, err
	}
	if journeyID == "" {
		return nil, ErrInvalidJourneyID
	}

	req, err := m.journeyTimesRequest(stopCode, journeyID, m.TimeNow())
	if err != nil {
		return nil, err
	}

	body, err := m.Downloader.Get(ctx, req.url, nil, downloader.GetOptions{
		Timeout: m.LiveTimesTimeout,
		MaxSize: m.LiveTimesMaxSize,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: downloading journey times: %w", parse.ErrIO, err)
	}

	doc, err := parse.DecodeDocument(body)
	if err != nil {
		return nil, err
	}

	return m.Parser.ParseJourneyTimes(doc)
}

// Refreshes cached bus times for all stop requests that haven't been
// refreshed within RefreshInterval. Each request is fetched the way
// consumers made it, so the entries they read are the ones refilled.
func (m *Manager) Refresh(ctx context.Context) error {
	requests, err := m.storage.ListStopRequests("")
	if err != nil {
		return fmt.Errorf("listing stop requests: %w", err)
	}

	now := m.TimeNow().UTC()
	stale := [][]string{}
	for _, req := range requests {
		if req.RefreshedAt.Before(now.Add(-m.RefreshInterval)) {
			stale = append(stale, req.StopCodes)
		}
	}
	if len(stale) == 0 {
		return nil
	}

	log.Debug().Int("requests", len(stale)).Msg("Refreshing stale stop requests")

	p := pool.NewWithResults[error]().WithMaxGoroutines(max(m.RefreshConcurrency, 1))
	for _, stopCodes := range stale {
		p.Go(func() error {
			err := m.refreshRequest(ctx, stopCodes, now)
			if err != nil {
				log.Warn().Err(err).Strs("stops", stopCodes).Msg("Refresh failed")
				return fmt.Errorf("refreshing %v: %w", stopCodes, err)
			}
			return nil
		})
	}

	return errors.Join(p.Wait()...)
}

func (m *Manager) refreshRequest(ctx context.Context, stopCodes []string, now time.Time) error {
	req, err := m.busTimesRequest(stopCodes, now)
	if err != nil {
		return err
	}

	// Faults and garbage aren't cached, and leave the request
	// stale so it's retried on the next pass.
	if _, err := m.fetchBusTimes(ctx, req, true); err != nil {
		return err
	}

	err = m.storage.WriteStopRequest(storage.StopRequest{
		StopCodes:   stopCodes,
		RefreshedAt: now,
	})
	if err != nil {
		return fmt.Errorf("writing stop request: %w", err)
	}

	return nil
}

// Downloads and parses bus times. Only responses that parse make it
// into the cache.
func (m *Manager) fetchBusTimes(ctx context.Context, req apiRequest, refresh bool) (*model.LiveBusTimes, error) {
	var fetched *model.LiveBusTimes
	options := downloader.GetOptions{
		Cache:    true,
		CacheTTL: m.LiveTimesTTL,
		CacheKey: req.cacheKey,
		Refresh:  refresh,
		Timeout:  m.LiveTimesTimeout,
		MaxSize:  m.LiveTimesMaxSize,
		Validate: func(body []byte) error {
			var err error
			fetched, err = m.parseBusTimes(body)
			return err
		},
	}

	body, err := m.Downloader.Get(ctx, req.url, nil, options)
	if err != nil {
		// Parse failures are already typed.
		if errors.Is(err, parse.ErrLiveTimes) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: downloading bus times: %w", parse.ErrIO, err)
	}

	if fetched != nil {
		return fetched, nil
	}

	// Served from cache.
	return m.parseBusTimes(body)
}

func (m *Manager) parseBusTimes(body []byte) (*model.LiveBusTimes, error) {
	doc, err := parse.DecodeDocument(body)
	if err != nil {
		return nil, err
	}
	return m.Parser.ParseBusTimes(doc)
}

// Stops watching a stop: every request including it is forgotten.
// Cached responses are left to expire.
func (m *Manager) ForgetStop(stopCode string) error {
	requests, err := m.storage.ListStopRequests(stopCode)
	if err != nil {
		return fmt.Errorf("listing stop requests: %w", err)
	}

	for _, req := range requests {
		if err := m.storage.DeleteStopRequest(req.StopCodes); err != nil {
			return fmt.Errorf("deleting stop request: %w", err)
		}
	}

	return nil
}
