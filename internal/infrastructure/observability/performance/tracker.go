package performance

import (
	"sort"
	"sync"
	"time"

	"github.com/AtRiskMedia/pagegrid-go/internal/infrastructure/observability/logging"
)

// TrackerConfig contains configuration options for the performance tracker
type TrackerConfig struct {
	MaxRecent     int           `json:"maxRecent"`     // completed markers kept for inspection
	SlowThreshold time.Duration `json:"slowThreshold"` // operations slower than this are logged as warnings
}

// DefaultTrackerConfig returns a sensible default configuration
func DefaultTrackerConfig() *TrackerConfig {
	return &TrackerConfig{
		MaxRecent:     500,
		SlowThreshold: 500 * time.Millisecond,
	}
}

// OperationStats aggregates completed markers of one operation.
type OperationStats struct {
	Operation string        `json:"operation"`
	Count     int           `json:"count"`
	Failures  int           `json:"failures"`
	Total     time.Duration `json:"total"`
	Max       time.Duration `json:"max"`
}

// Average is the mean duration across completed markers.
func (s OperationStats) Average() time.Duration {
	if s.Count == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Count)
}

// Tracker manages performance markers and provides metrics aggregation
type Tracker struct {
	config *TrackerConfig
	logger *logging.ChanneledLogger

	mu      sync.RWMutex
	recent  []Marker
	stats   map[string]*OperationStats
	started time.Time
}

// NewTracker creates a new performance tracker with the given configuration
func NewTracker(config *TrackerConfig, logger *logging.ChanneledLogger) *Tracker {
	if config == nil {
		config = DefaultTrackerConfig()
	}
	return &Tracker{
		config:  config,
		logger:  logger,
		stats:   make(map[string]*OperationStats),
		started: time.Now(),
	}
}

// StartOperation creates a marker that reports back when completed
func (t *Tracker) StartOperation(operation, pageKey string) *Marker {
	return &Marker{
		Operation: operation,
		PageKey:   pageKey,
		StartTime: time.Now(),
		Success:   true,
		tracker:   t,
	}
}

func (t *Tracker) record(m *Marker) {
	t.mu.Lock()
	s, ok := t.stats[m.Operation]
	if !ok {
		s = &OperationStats{Operation: m.Operation}
		t.stats[m.Operation] = s
	}
	s.Count++
	s.Total += m.Duration
	if m.Duration > s.Max {
		s.Max = m.Duration
	}
	if !m.Success {
		s.Failures++
	}

	t.recent = append(t.recent, *m)
	if over := len(t.recent) - t.config.MaxRecent; over > 0 {
		t.recent = append(t.recent[:0:0], t.recent[over:]...)
	}
	t.mu.Unlock()

	if t.logger == nil {
		return
	}
	if t.config.SlowThreshold > 0 && m.Duration > t.config.SlowThreshold {
		t.logger.Perf().Warn("Slow operation",
			"operation", m.Operation, "pageKey", m.PageKey,
			"duration", m.Duration, "threshold", t.config.SlowThreshold)
		return
	}
	t.logger.Perf().Debug("Operation completed",
		"operation", m.Operation, "pageKey", m.PageKey,
		"duration", m.Duration, "success", m.Success)
}

// Stats returns per-operation aggregates sorted by operation name.
func (t *Tracker) Stats() []OperationStats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]OperationStats, 0, len(t.stats))
	for _, s := range t.stats {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Operation < out[j].Operation })
	return out
}

// Recent returns completed markers for pageKey, newest last. An empty
// pageKey returns all of them.
func (t *Tracker) Recent(pageKey string) []Marker {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []Marker
	for _, m := range t.recent {
		if pageKey == "" || m.PageKey == pageKey {
			out = append(out, m)
		}
	}
	return out
}

// Uptime is the time since the tracker was created.
func (t *Tracker) Uptime() time.Duration {
	return time.Since(t.started)
}
