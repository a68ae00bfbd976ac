package redis

import (
	"context"
	"encoding/json"
	"log"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"signal-systemv1/internal/strategy"
)

const strategyConfigKey = "sigengine:strategy_config"

// ConfigStore persists per-(symbol, strategy) config overrides in Redis and
// keeps an in-memory provider as the read path for the evaluator.
type ConfigStore struct {
	provider *strategy.MemoryProvider
	rdb      *goredis.Client
}

// NewConfigStore creates a ConfigStore over the given provider.
func NewConfigStore(provider *strategy.MemoryProvider, rdb *goredis.Client) *ConfigStore {
	return &ConfigStore{provider: provider, rdb: rdb}
}

// Load restores overrides from Redis (if available).
// Called once during startup. Returns true if overrides were restored.
func (cs *ConfigStore) Load(ctx context.Context) bool {
	data, err := cs.rdb.Get(ctx, strategyConfigKey).Result()
	if err != nil {
		return false
	}
	var overrides map[string]strategy.Config
	if json.Unmarshal([]byte(data), &overrides) != nil {
		return false
	}
	cs.provider.Replace(overrides)
	log.Printf("[config_store] restored strategy config from Redis: %d overrides", len(overrides))
	return true
}

// Set validates and installs an override, then persists the full set.
func (cs *ConfigStore) Set(ctx context.Context, symbol string, kind strategy.Kind, cfg strategy.Config) error {
	if err := cs.provider.SetConditions(symbol, kind, cfg); err != nil {
		return err
	}
	cs.persist(ctx)
	return nil
}

// persist writes the current override set to Redis (fire-and-forget — the
// in-memory provider remains the source of truth for the evaluator).
func (cs *ConfigStore) persist(ctx context.Context) {
	data, err := json.Marshal(cs.provider.All())
	if err != nil {
		return
	}
	wctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := cs.rdb.Set(wctx, strategyConfigKey, data, 0).Err(); err != nil {
		log.Printf("[config_store] WARNING: failed to persist strategy config: %v", err)
	}
}
