package performance

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/AtRiskMedia/pagegrid-go/internal/infrastructure/observability/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerAggregates(t *testing.T) {
	tracker := NewTracker(&TrackerConfig{MaxRecent: 2}, logging.NewDiscardLogger())

	m := tracker.StartOperation("layout:add_row", "home")
	m.AddMetadata("rowId", "r2")
	m.Complete()
	m.Complete()

	failed := tracker.StartOperation("layout:add_row", "home")
	failed.SetError(errors.New("boom"))
	failed.Complete()

	tracker.StartOperation("page:get", "about").Complete()

	stats := tracker.Stats()
	require.Len(t, stats, 2)
	assert.Equal(t, "layout:add_row", stats[0].Operation)
	assert.Equal(t, 2, stats[0].Count)
	assert.Equal(t, 1, stats[0].Failures)
	assert.Equal(t, 1, stats[1].Count)

	recent := tracker.Recent("")
	require.Len(t, recent, 2)
	assert.Equal(t, "boom", recent[0].Error)
	assert.Len(t, tracker.Recent("about"), 1)
}

func TestTrackerLogsSlowOperations(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.NewChanneledLogger(&logging.LoggerConfig{
		OutputToConsole: true,
		Writer:          &buf,
		JSONFormat:      true,
	})
	require.NoError(t, err)

	tracker := NewTracker(&TrackerConfig{MaxRecent: 10, SlowThreshold: time.Nanosecond}, logger)
	m := tracker.StartOperation("layout:move", "home")
	m.StartTime = m.StartTime.Add(-time.Second)
	m.Complete()

	assert.Contains(t, buf.String(), "Slow operation")
	assert.Contains(t, buf.String(), `"channel":"performance"`)
}

func TestOperationStatsAverage(t *testing.T) {
	assert.Zero(t, OperationStats{}.Average())
	assert.Equal(t, 2*time.Second, OperationStats{Count: 2, Total: 4 * time.Second}.Average())
}
