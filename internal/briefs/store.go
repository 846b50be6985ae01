// Package briefs loads the brief feed and filters it for display.
package briefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bobmcallan/brief-portal/internal/common"
	"github.com/bobmcallan/brief-portal/internal/dates"
	"github.com/bobmcallan/brief-portal/internal/models"
	"golang.org/x/sync/singleflight"
)

// ErrNotFound is returned when a brief id is not in the loaded collection.
var ErrNotFound = errors.New("brief not found")

// maxFeedBytes caps the feed body read into memory.
const maxFeedBytes = 32 << 20

// State is a snapshot of the store. Briefs is sorted newest first and must
// not be modified by callers.
type State struct {
	Loading  bool
	Err      string
	Briefs   []models.Brief
	LoadedAt time.Time
}

// Store fetches the brief feed and holds the sorted collection.
// A load replaces the whole collection; the published slice is never mutated.
type Store struct {
	source     string
	httpClient *http.Client
	logger     *common.Logger

	group singleflight.Group

	mu    sync.RWMutex
	state State
}

// NewStore creates a store for the given feed source, an http(s) URL or a
// file path. The store reports Loading until the first Load completes.
func NewStore(source string, timeout time.Duration, logger *common.Logger) *Store {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Store{
		source:     source,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		state:      State{Loading: true},
	}
}

// Load fetches the feed once and publishes the sorted result. Concurrent
// calls share a single fetch. On failure the collection is emptied and the
// error message is published; there is no automatic retry.
//
// The shared fetch is detached from the caller's cancellation and bounded by
// the store's timeout. A caller that gives up gets ctx.Err() and leaves the
// published state alone.
func (s *Store) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ch := s.group.DoChan("load", func() (interface{}, error) {
		return nil, s.load(context.WithoutCancel(ctx))
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) load(ctx context.Context) error {
	start := time.Now()

	data, err := s.fetch(ctx)
	if err == nil {
		var list []models.Brief
		if jerr := json.Unmarshal(data, &list); jerr != nil {
			err = fmt.Errorf("failed to parse briefs: %w", jerr)
		} else {
			SortByDate(list)
			s.publish(State{Briefs: list, LoadedAt: time.Now()})
			s.logger.Info().
				Int("briefs", len(list)).
				Int64("duration_ms", time.Since(start).Milliseconds()).
				Str("source", s.source).
				Msg("briefs loaded")
			return nil
		}
	}

	s.publish(State{Err: err.Error(), LoadedAt: time.Now()})
	s.logger.Error().Str("source", s.source).Str("error", err.Error()).Msg("failed to load briefs")
	return err
}

func (s *Store) fetch(ctx context.Context) ([]byte, error) {
	if !isHTTPSource(s.source) {
		data, err := os.ReadFile(s.source)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch briefs: %w", err)
		}
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.source, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch briefs: %w", err)
	}
	// Always read the freshest feed.
	req.Header.Set("Cache-Control", "no-cache, no-store")
	req.Header.Set("Pragma", "no-cache")
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch briefs: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("failed to fetch briefs: feed returned %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read briefs: %w", err)
	}
	return data, nil
}

func (s *Store) publish(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Briefs returns the loaded collection, newest first.
func (s *Store) Briefs() []models.Brief {
	return s.State().Briefs
}

// Get returns the brief with the given id.
func (s *Store) Get(id string) (models.Brief, error) {
	for _, b := range s.Briefs() {
		if b.ID == id {
			return b, nil
		}
	}
	return models.Brief{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Latest returns the newest brief, if any.
func (s *Store) Latest() (models.Brief, bool) {
	list := s.Briefs()
	if len(list) == 0 {
		return models.Brief{}, false
	}
	return list[0], true
}

// SortByDate orders briefs newest first. The sort is stable so equal dates
// keep their feed order; unparseable dates sort last.
func SortByDate(list []models.Brief) {
	keys := make([]time.Time, len(list))
	valid := make([]bool, len(list))
	for i := range list {
		keys[i], valid[i] = dates.Parse(list[i].Date)
	}
	idx := make([]int, len(list))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ia, ib := idx[a], idx[b]
		if valid[ia] != valid[ib] {
			return valid[ia]
		}
		return keys[ia].After(keys[ib])
	})
	sorted := make([]models.Brief, len(list))
	for i, j := range idx {
		sorted[i] = list[j]
	}
	copy(list, sorted)
}

func isHTTPSource(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
