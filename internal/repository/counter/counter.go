package counter

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/relware/sitegen/internal/common"
)

const (
	// KeyPageHits is a HASH mapping page ID to its hit counter.
	// HINCRBY keeps the increment atomic across restarts.
	KeyPageHits = "ph"

	// KeyPagePaths is a HASH mapping page ID back to the served path,
	// so the stat endpoint can report something readable.
	KeyPagePaths = "pp"
)

type counterRepository struct {
	cl  *redis.Client
	log *slog.Logger
}

func NewCounterRepository(cl *redis.Client, log *slog.Logger) *counterRepository {
	return &counterRepository{
		cl:  cl,
		log: log.With(slog.String("item", "CounterRepository")),
	}
}

// IncPageHit bumps the counter for one page and remembers its path.
func (r *counterRepository) IncPageHit(ctx context.Context, id, path string) (int64, error) {
	pipe := r.cl.Pipeline()
	incr := pipe.HIncrBy(ctx, KeyPageHits, id, 1)
	pipe.HSet(ctx, KeyPagePaths, id, path)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("cannot increment page %s counter: %w", id, err)
	}

	return incr.Val(), nil
}

// PageHits returns every known counter keyed by the served path.
func (r *counterRepository) PageHits(ctx context.Context) (map[string]int64, error) {
	hits, err := r.cl.HGetAll(ctx, KeyPageHits).Result()
	if err != nil {
		return nil, fmt.Errorf("cannot get page counters: %w", err)
	}

	if len(hits) < 1 {
		return nil, common.ErrNoCountersFoundError
	}

	paths, err := r.cl.HGetAll(ctx, KeyPagePaths).Result()
	if err != nil {
		return nil, fmt.Errorf("cannot get page paths: %w", err)
	}

	counters := make(map[string]int64, len(hits))
	for id, val := range hits {
		counter, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			r.log.Error("Cannot convert counter to int", slog.String("id", id), slog.Any("error", err))

			continue
		}

		path, exists := paths[id]
		if !exists {
			path = id
		}

		counters[path] = counter
	}

	return counters, nil
}
