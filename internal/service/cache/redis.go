package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ougirez/cbmreport/internal/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// getScript reads the generation and the entry of that generation atomically.
var getScript = redis.NewScript(`
local gen = redis.call('GET', KEYS[1]) or '0'
local payload = redis.call('GET', ARGV[1] .. ':' .. gen .. ':' .. ARGV[2])
return {gen, payload}
`)

// putScript writes the entry only while the generation is unchanged.
var putScript = redis.NewScript(`
local gen = redis.call('GET', KEYS[1]) or '0'
if gen ~= ARGV[3] then
	return 0
end
redis.call('SET', ARGV[1] .. ':' .. gen .. ':' .. ARGV[2], ARGV[4])
return 1
`)

// Redis keeps payloads under "<prefix>:<generation>:<key>". ClearAll bumps the
// generation counter, after which older keys are unreachable and get unlinked.
// Redis errors degrade to cache misses.
type Redis struct {
	rdb    *redis.Client
	prefix string
}

func NewRedis(rdb *redis.Client, prefix string) *Redis {
	return &Redis{rdb: rdb, prefix: prefix}
}

func (r *Redis) genKey() string {
	return r.prefix + ":gen"
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, uint64, bool) {
	res, err := getScript.Run(ctx, r.rdb, []string{r.genKey()}, r.prefix, key).Slice()
	if err != nil {
		logger.Warnf(ctx, "redis cache get: %s", err.Error())
		return nil, 0, false
	}

	var gen uint64
	if len(res) > 0 {
		if s, ok := res[0].(string); ok {
			_, _ = fmt.Sscan(s, &gen)
		}
	}
	if len(res) < 2 {
		return nil, gen, false
	}

	payload, ok := res[1].(string)
	if !ok {
		return nil, gen, false
	}

	return []byte(payload), gen, true
}

func (r *Redis) Put(ctx context.Context, key string, gen uint64, payload []byte) {
	err := putScript.Run(ctx, r.rdb, []string{r.genKey()}, r.prefix, key, gen, payload).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		logger.Warnf(ctx, "redis cache put: %s", err.Error())
	}
}

func (r *Redis) ClearAll(ctx context.Context) {
	gen, err := r.rdb.Incr(ctx, r.genKey()).Result()
	if err != nil {
		logger.Errorf(ctx, "redis cache clear: %s", err.Error())
		return
	}

	current := fmt.Sprintf("%s:%d:", r.prefix, gen)
	iter := r.rdb.Scan(ctx, 0, r.prefix+":*", 500).Iterator()
	for iter.Next(ctx) {
		k := iter.Val()
		if k == r.genKey() || strings.HasPrefix(k, current) {
			continue
		}
		if err = r.rdb.Unlink(ctx, k).Err(); err != nil {
			logger.Warnf(ctx, "redis cache unlink %s: %s", k, err.Error())
		}
	}
	if err = iter.Err(); err != nil {
		logger.Warnf(ctx, "redis cache scan: %s", err.Error())
	}
}
