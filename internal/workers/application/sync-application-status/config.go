// internal/workers/application/sync-application-status/config.go
package syncapplicationstatus

import (
	"time"

	"loan-origination/internal/common/config"
)

type Config struct {
	Timeout       time.Duration
	MaxJobsActive int
}

func LoadConfig(cfg config.WorkerConfig) *Config {
	c := &Config{
		Timeout:       config.GetDuration(cfg.Timeout),
		MaxJobsActive: cfg.MaxJobsActive,
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MaxJobsActive <= 0 {
		c.MaxJobsActive = 5
	}
	return c
}
