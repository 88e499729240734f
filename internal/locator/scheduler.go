// internal/locator/scheduler.go
package locator

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
)

const refreshTimeout = 30 * time.Second

// Schedule registers a cache refresh on c using a standard cron spec or a
// descriptor such as "@every 15m".
func (s *Service) Schedule(c *cron.Cron, spec string) (cron.EntryID, error) {
	return c.AddJob(spec, cron.FuncJob(func() {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()

		if err := s.Refresh(ctx); err != nil {
			s.log.Warn("scheduled location refresh failed", map[string]interface{}{"error": err})
		}
	}))
}
