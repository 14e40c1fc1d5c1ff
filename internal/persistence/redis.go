package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noryangjin/auction-server/internal/config"
	"github.com/noryangjin/auction-server/internal/domain"
)

const (
	identityKeyPrefix           = "identity:user:"
	identityGenerationKeyPrefix = "identity:gen:"

	// A generation key only has to outlive the slowest lookup that read it.
	identityGenerationTTL = 24 * time.Hour
)

// setIfGenerationScript writes KEYS[1] only while KEYS[2] still holds ARGV[2].
var setIfGenerationScript = redis.NewScript(`
local current = redis.call('GET', KEYS[2])
if not current then current = '0' end
if current ~= ARGV[2] then return 0 end
redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[3])
return 1
`)

// Redis wraps the go-redis client.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to Redis using the provided configuration.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.String("addr", cfg.Addr), zap.Error(err))
	} else {
		logger.Info("connected to redis", zap.String("addr", cfg.Addr))
	}

	return &Redis{Client: client}
}

// Close closes the client.
func (r *Redis) Close() {
	if r != nil && r.Client != nil {
		_ = r.Client.Close()
	}
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}

// RedisIdentityCache keeps resolved account snapshots in Redis as JSON.
type RedisIdentityCache struct {
	client redis.Cmdable
}

// NewRedisIdentityCache builds the cache on top of any go-redis client.
func NewRedisIdentityCache(client redis.Cmdable) *RedisIdentityCache {
	return &RedisIdentityCache{client: client}
}

func identityKey(identity string) string {
	return identityKeyPrefix + identity
}

func identityGenerationKey(identity string) string {
	return identityGenerationKeyPrefix + identity
}

// Get returns the cached snapshot for identity. A missing key is not an error.
func (c *RedisIdentityCache) Get(ctx context.Context, identity string) (domain.UserSnapshot, bool, error) {
	raw, err := c.client.Get(ctx, identityKey(identity)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.UserSnapshot{}, false, nil
	}
	if err != nil {
		return domain.UserSnapshot{}, false, err
	}

	var snap domain.UserSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		// A corrupt entry behaves as a miss and is overwritten on the next Set.
		return domain.UserSnapshot{}, false, nil
	}
	return snap, true, nil
}

// Generation returns the invalidation counter of identity; zero when never invalidated.
func (c *RedisIdentityCache) Generation(ctx context.Context, identity string) (int64, error) {
	raw, err := c.client.Get(ctx, identityGenerationKey(identity)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(raw, 10, 64)
}

// SetIfGeneration stores snap under identity for ttl unless identity was invalidated
// after generation was read. The compare and the write run atomically in one script.
func (c *RedisIdentityCache) SetIfGeneration(ctx context.Context, identity string, snap domain.UserSnapshot, generation int64, ttl time.Duration) (bool, error) {
	raw, err := json.Marshal(snap)
	if err != nil {
		return false, err
	}
	keys := []string{identityKey(identity), identityGenerationKey(identity)}
	stored, err := setIfGenerationScript.Run(ctx, c.client, keys, raw, generation, ttl.Milliseconds()).Int()
	if err != nil {
		return false, err
	}
	return stored == 1, nil
}

// Delete removes the cached snapshot for identity and advances its generation.
func (c *RedisIdentityCache) Delete(ctx context.Context, identity string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, identityGenerationKey(identity))
		pipe.Expire(ctx, identityGenerationKey(identity), identityGenerationTTL)
		pipe.Del(ctx, identityKey(identity))
		return nil
	})
	return err
}
