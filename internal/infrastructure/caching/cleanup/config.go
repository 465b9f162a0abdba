package cleanup

import (
	"time"

	"github.com/AtRiskMedia/pagegrid-go/pkg/config"
)

// Config holds cleanup worker configuration, sourced from the central config package.
type Config struct {
	CleanupInterval time.Duration
}

// NewConfig reads the interval from pkg/config.
func NewConfig() *Config {
	return &Config{CleanupInterval: config.CacheCleanupInterval}
}
