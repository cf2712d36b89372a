package counter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/relware/sitegen/internal/util"
)

const (
	serviceName = "counter"
)

type CounterRepository interface {
	IncPageHit(ctx context.Context, id, path string) (int64, error)
	PageHits(ctx context.Context) (map[string]int64, error)
}

type counterService struct {
	repo CounterRepository
	log  *slog.Logger
}

func NewCounterService(repo CounterRepository, log *slog.Logger) *counterService {
	return &counterService{
		repo: repo,
		log:  log.With(slog.String("service", serviceName)),
	}
}

// Hit records one page view. Paths are hashed into stable IDs so the
// counter hash fields stay bounded and uniform.
func (c *counterService) Hit(ctx context.Context, path string) {
	counter, err := c.repo.IncPageHit(ctx, util.GetIDFromString(path), path)
	if err != nil {
		c.log.Error("Cannot count page hit", slog.String("path", path), slog.Any("error", err))

		return
	}

	c.log.Debug("Page hit", slog.String("path", path), slog.Int64("counter", counter))
}

func (c *counterService) PageHits(ctx context.Context) (map[string]int64, error) {
	counters, err := c.repo.PageHits(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot get page counters: %w", err)
	}

	return counters, nil
}
