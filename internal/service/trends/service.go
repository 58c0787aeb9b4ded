// Package trends serves aggregated disease-outbreak data with a layered
// fallback chain: fresh snapshot file, live government API, stale
// snapshot, local sqlite archive, empty.
package trends

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/curebird/backend/internal/core"
	"github.com/curebird/backend/internal/metrics"
	"github.com/curebird/backend/pkg/log"
)

const liveSource = "Government API (Live)"

// Archive is the durable last-resort store for aggregated trends.
type Archive interface {
	Save(ctx context.Context, trends []core.DiseaseTrend) error
	Load(ctx context.Context) ([]core.DiseaseTrend, error)
}

type Service struct {
	client       *http.Client
	resourceURL  string
	snapshotPath string
	snapshotTTL  time.Duration
	archive      Archive
	metrics      *metrics.Metrics

	// Collapses concurrent refreshes into one upstream fetch.
	mu  sync.Mutex
	now func() time.Time
}

func New(resourceURL, snapshotPath string, snapshotTTL time.Duration, archive Archive, m *metrics.Metrics) *Service {
	return &Service{
		client:       &http.Client{Timeout: 10 * time.Second},
		resourceURL:  resourceURL,
		snapshotPath: snapshotPath,
		snapshotTTL:  snapshotTTL,
		archive:      archive,
		metrics:      m,
		now:          time.Now,
	}
}

// Trends returns the aggregated outbreak list, highest counts first.
// It never returns an error alongside data; total unavailability yields
// an empty list so callers degrade instead of failing.
func (s *Service) Trends(ctx context.Context) ([]core.DiseaseTrend, error) {
	logger := log.FromCtx(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	// 1. Fresh snapshot on disk
	if trends, ok := s.readSnapshot(true); ok {
		s.metrics.TrendsFetchesTotal.WithLabelValues("snapshot").Inc()
		return trends, nil
	}

	// 2. Live API
	trends, err := s.fetchLive(ctx)
	if err == nil {
		s.metrics.TrendsFetchesTotal.WithLabelValues("live").Inc()
		s.writeSnapshot(ctx, trends)
		if s.archive != nil {
			if archErr := s.archive.Save(ctx, trends); archErr != nil {
				logger.Warn().Err(archErr).Msg("failed to archive trend data")
			}
		}
		return trends, nil
	}
	logger.Warn().Err(err).Msg("live trend fetch failed, falling back")

	// 3. Stale snapshot, better than nothing
	if trends, ok := s.readSnapshot(false); ok {
		s.metrics.TrendsFetchesTotal.WithLabelValues("stale_snapshot").Inc()
		return trends, nil
	}

	// 4. Local archive
	if s.archive != nil {
		if trends, archErr := s.archive.Load(ctx); archErr == nil && len(trends) > 0 {
			s.metrics.TrendsFetchesTotal.WithLabelValues("archive").Inc()
			return trends, nil
		}
	}

	s.metrics.TrendsFetchesTotal.WithLabelValues("empty").Inc()
	return []core.DiseaseTrend{}, nil
}

func (s *Service) fetchLive(ctx context.Context) ([]core.DiseaseTrend, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.resourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	var payload apiResponse
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if len(payload.Records) == 0 {
		return nil, fmt.Errorf("API returned empty records")
	}

	trends := aggregate(payload.Records)
	for i := range trends {
		trends[i].Source = liveSource
	}
	return trends, nil
}

func (s *Service) readSnapshot(mustBeFresh bool) ([]core.DiseaseTrend, bool) {
	info, err := os.Stat(s.snapshotPath)
	if err != nil {
		return nil, false
	}
	if mustBeFresh && s.now().Sub(info.ModTime()) >= s.snapshotTTL {
		return nil, false
	}

	data, err := os.ReadFile(s.snapshotPath)
	if err != nil {
		return nil, false
	}

	var trends []core.DiseaseTrend
	if err := json.Unmarshal(data, &trends); err != nil {
		return nil, false
	}
	return trends, len(trends) > 0
}

func (s *Service) writeSnapshot(ctx context.Context, trends []core.DiseaseTrend) {
	data, err := json.Marshal(trends)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("failed to marshal trend snapshot")
		return
	}
	if err := os.WriteFile(s.snapshotPath, data, 0644); err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("failed to write trend snapshot")
	}
}
