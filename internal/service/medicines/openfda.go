// Package medicines looks up commonly indicated drugs for a disease via
// the openFDA drug-label API, with a disk cache in front.
package medicines

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/curebird/backend/internal/metrics"
	"github.com/curebird/backend/pkg/cache"
	"github.com/curebird/backend/pkg/log"
)

const (
	defaultBaseURL = "https://api.fda.gov/drug/label.json"
	maxMedicines   = 10
	searchLimit    = 5
)

type labelResponse struct {
	Results []labelResult `json:"results"`
}

type labelResult struct {
	OpenFDA struct {
		BrandName   []string `json:"brand_name"`
		GenericName []string `json:"generic_name"`
	} `json:"openfda"`
}

type Service struct {
	client  *http.Client
	baseURL string
	cache   *cache.Store
	metrics *metrics.Metrics
}

func New(store *cache.Store, m *metrics.Metrics) *Service {
	return &Service{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: defaultBaseURL,
		cache:   store,
		metrics: m,
	}
}

// Lookup returns up to ten distinct medicine names indicated for the
// given disease. Upstream failures yield an empty list, never an error,
// and only successful lookups are cached.
func (s *Service) Lookup(ctx context.Context, disease string) []string {
	disease = strings.TrimSpace(disease)
	if disease == "" {
		return []string{}
	}

	key := "openfda_medicines_" + strings.ToLower(disease)
	var cached []string
	if s.cache != nil && s.cache.Get(key, &cached) {
		s.metrics.DrugLookupsTotal.WithLabelValues("cache_hit").Inc()
		return cached
	}

	names := s.search(ctx, disease)
	if len(names) == 0 {
		s.metrics.DrugLookupsTotal.WithLabelValues("empty").Inc()
		return []string{}
	}

	s.metrics.DrugLookupsTotal.WithLabelValues("live").Inc()
	if s.cache != nil {
		if err := s.cache.Set(key, names); err != nil {
			log.FromCtx(ctx).Warn().Err(err).Msg("failed to cache medicine lookup")
		}
	}
	return names
}

// search queries the label API twice: an exact-phrase match first, then
// a broader unquoted pass for multi-word terms when the first comes up
// short. Results are merged with order preserved.
func (s *Service) search(ctx context.Context, disease string) []string {
	logger := log.FromCtx(ctx)

	seen := make(map[string]struct{})
	var names []string
	collect := func(results []labelResult) {
		for _, r := range results {
			name := ""
			switch {
			case len(r.OpenFDA.BrandName) > 0:
				name = r.OpenFDA.BrandName[0]
			case len(r.OpenFDA.GenericName) > 0:
				name = r.OpenFDA.GenericName[0]
			}
			if name == "" {
				continue
			}
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
			if len(names) >= maxMedicines {
				return
			}
		}
	}

	exact := fmt.Sprintf("indications_and_usage:%q", disease)
	results, err := s.query(ctx, exact)
	if err != nil {
		logger.Warn().Err(err).Str("disease", disease).Msg("exact openFDA search failed")
	}
	collect(results)

	if len(names) < maxMedicines && strings.Contains(disease, " ") {
		broad := "indications_and_usage:" + disease
		results, err = s.query(ctx, broad)
		if err != nil {
			logger.Warn().Err(err).Str("disease", disease).Msg("broad openFDA search failed")
		}
		collect(results)
	}

	return names
}

func (s *Service) query(ctx context.Context, search string) ([]labelResult, error) {
	params := url.Values{}
	params.Set("search", search)
	params.Set("limit", fmt.Sprint(searchLimit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	// openFDA answers 404 for zero matches; treat it as an empty result.
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	var payload labelResponse
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return payload.Results, nil
}
