package assistant

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/curebird/backend/internal/core"
	"github.com/curebird/backend/internal/metrics"
	"github.com/curebird/backend/pkg/log"
)

const contextUnavailable = "Disease trend data temporarily unavailable."

const contextHeader = "Current Disease Trends in India:"

// topTrends is how many rows of the surveillance feed seed a conversation.
const topTrends = 10

// ContextCache holds the disease-context block injected into every new
// conversation's system prompt. The value is rebuilt from the trend
// source once per TTL window; a failed reload falls back to a fixed
// sentence and never blocks a conversation from starting.
type ContextCache struct {
	mu      sync.Mutex
	source  core.TrendSource
	ttl     time.Duration
	metrics *metrics.Metrics

	value    string
	loadedAt time.Time

	now func() time.Time
}

func NewContextCache(source core.TrendSource, ttl time.Duration, m *metrics.Metrics) *ContextCache {
	return &ContextCache{
		source:  source,
		ttl:     ttl,
		metrics: m,
		now:     time.Now,
	}
}

// Get returns the current context block, reloading from the source when
// the cached value has expired. The mutex is held across the reload so
// concurrent refreshes collapse to a single fetch.
func (c *ContextCache) Get(ctx context.Context) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.value != "" && c.now().Sub(c.loadedAt) < c.ttl {
		return c.value
	}

	trends, err := c.source.Trends(ctx)
	if err != nil || len(trends) == 0 {
		c.metrics.ContextReloadsTotal.WithLabelValues("failure").Inc()
		log.FromCtx(ctx).Warn().Err(err).Msg("disease context reload failed, serving fallback")
		return contextUnavailable
	}

	c.value = formatContext(trends)
	c.loadedAt = c.now()
	c.metrics.ContextReloadsTotal.WithLabelValues("success").Inc()
	return c.value
}

func formatContext(trends []core.DiseaseTrend) string {
	if len(trends) > topTrends {
		trends = trends[:topTrends]
	}

	var b strings.Builder
	b.WriteString(contextHeader)
	b.WriteString("\n")
	for i, t := range trends {
		name := t.Disease
		if name == "" {
			name = "Unknown"
		}
		year := t.Year
		if year == "" {
			year = "N/A"
		}
		fmt.Fprintf(&b, "%d. %s: %s cases (%s)\n", i+1, name, groupDigits(t.Outbreaks), year)
	}
	return b.String()
}

// groupDigits renders 1234567 as "1,234,567".
func groupDigits(n int64) string {
	s := fmt.Sprintf("%d", n)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}

	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)

	out := strings.Join(parts, ",")
	if neg {
		out = "-" + out
	}
	return out
}
