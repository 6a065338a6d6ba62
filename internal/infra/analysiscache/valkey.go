package analysiscache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/matevzk/povzetek/internal/domain/grounding"
)

const opTimeout = 2 * time.Second

// ValkeyCache implements grounding.Cache on a Valkey-compatible database.
// Keys carry an epoch counter; Clear bumps the epoch, which orphans every
// prior key in one step instead of scanning the keyspace. Orphaned entries
// age out via TTL.
type ValkeyCache struct {
	client valkey.Client
	prefix string
	epoch  atomic.Int64
	ttl    time.Duration
	logger *slog.Logger
}

// NewValkeyCache constructs a cache backed by Valkey.
func NewValkeyCache(client valkey.Client, prefix string, logger *slog.Logger) *ValkeyCache {
	if prefix == "" {
		prefix = "analysis"
	}
	return &ValkeyCache{
		client: client,
		prefix: prefix,
		ttl:    24 * time.Hour,
		logger: logger.With("component", "analysiscache.valkey"),
	}
}

// Get implements grounding.Cache. Lookup failures are treated as misses; the
// cache is an optimization, never a source of truth.
func (c *ValkeyCache) Get(sourceText, summaryText string) ([]grounding.WordAnalysis, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	cmd := c.client.B().Get().Key(c.entryKey(sourceText, summaryText)).Build()
	payload, err := c.client.Do(ctx, cmd).ToString()
	if err != nil {
		if !valkey.IsValkeyNil(err) {
			c.logger.Warn("cache lookup failed", "error", err)
		}
		return nil, false
	}
	var analysis []grounding.WordAnalysis
	if err := json.Unmarshal([]byte(payload), &analysis); err != nil {
		c.logger.Warn("cache entry corrupt", "error", err)
		return nil, false
	}
	return analysis, true
}

// Put implements grounding.Cache.
func (c *ValkeyCache) Put(sourceText, summaryText string, analysis []grounding.WordAnalysis) {
	payload, err := json.Marshal(analysis)
	if err != nil {
		c.logger.Warn("cache entry encode failed", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	cmd := c.client.B().Set().Key(c.entryKey(sourceText, summaryText)).Value(string(payload)).Ex(c.ttl).Build()
	if err := c.client.Do(ctx, cmd).Error(); err != nil {
		c.logger.Warn("cache store failed", "error", err)
	}
}

// Clear implements grounding.Cache by advancing the key epoch.
func (c *ValkeyCache) Clear() {
	c.epoch.Add(1)
}

func (c *ValkeyCache) entryKey(sourceText, summaryText string) string {
	digest := sha256.New()
	digest.Write([]byte(sourceText))
	digest.Write([]byte{0x1f})
	digest.Write([]byte(summaryText))
	return fmt.Sprintf("%s:%d:%x", c.prefix, c.epoch.Load(), digest.Sum(nil))
}

var _ grounding.Cache = (*ValkeyCache)(nil)
