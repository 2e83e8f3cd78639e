package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/stitts-dev/bestball/services/optimization-service/internal/optimizer"
)

const lineupKeyPrefix = "bestball:lineup:"

// LineupCache stores solved lineup assignments in Redis keyed by a digest of the request.
// Redis failures degrade to cache misses; the breaker stops calling Redis after repeated
// failures until its timeout elapses.
type LineupCache struct {
	client  *redis.Client
	breaker *gobreaker.CircuitBreaker
	ttl     time.Duration
	logger  *logrus.Logger
}

// NewLineupCache creates a lineup cache. A nil client or a zero ttl disables caching.
func NewLineupCache(client *redis.Client, ttl time.Duration, threshold int, timeout time.Duration, logger *logrus.Logger) *LineupCache {
	settings := gobreaker.Settings{
		Name:        "lineup-cache",
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(threshold)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"component": "circuit_breaker",
				"service":   name,
				"from":      from.String(),
				"to":        to.String(),
			}).Warn("Circuit breaker state changed")
		},
	}

	return &LineupCache{
		client:  client,
		breaker: gobreaker.NewCircuitBreaker(settings),
		ttl:     ttl,
		logger:  logger,
	}
}

func (c *LineupCache) enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

// Get returns the cached assignment for key, reporting false on a miss or any failure
func (c *LineupCache) Get(ctx context.Context, key string) (*optimizer.LineupAssignment, bool) {
	if !c.enabled() {
		return nil, false
	}

	fullKey := lineupKeyPrefix + key
	raw, err := c.breaker.Execute(func() (interface{}, error) {
		data, err := c.client.Get(ctx, fullKey).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return data, err
	})
	if err != nil {
		c.logFailure(err, fullKey, "get")
		return nil, false
	}
	if raw == nil {
		return nil, false
	}

	var assignment optimizer.LineupAssignment
	if err := json.Unmarshal(raw.([]byte), &assignment); err != nil {
		c.logger.WithError(err).WithField("cache_key", fullKey).Warn("Discarding unreadable cached lineup")
		return nil, false
	}

	c.logger.WithField("cache_key", fullKey).Debug("Retrieved lineup from cache")
	return &assignment, true
}

// Set stores the assignment under key. Failures are logged and otherwise ignored.
func (c *LineupCache) Set(ctx context.Context, key string, assignment *optimizer.LineupAssignment) {
	if !c.enabled() || assignment == nil {
		return
	}

	data, err := json.Marshal(assignment)
	if err != nil {
		c.logger.WithError(err).Warn("Failed to marshal lineup for cache")
		return
	}

	fullKey := lineupKeyPrefix + key
	_, err = c.breaker.Execute(func() (interface{}, error) {
		return nil, c.client.Set(ctx, fullKey, data, c.ttl).Err()
	})
	if err != nil {
		c.logFailure(err, fullKey, "set")
		return
	}

	c.logger.WithFields(logrus.Fields{
		"cache_key":  fullKey,
		"expiration": c.ttl,
		"filled":     assignment.Filled,
	}).Debug("Cached lineup")
}

// Ping checks Redis through the breaker for the health endpoint
func (c *LineupCache) Ping(ctx context.Context) error {
	if c == nil || c.client == nil {
		return errors.New("lineup cache has no redis client")
	}
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.client.Ping(ctx).Err()
	})
	return err
}

// State exposes the breaker state for health reporting
func (c *LineupCache) State() gobreaker.State {
	return c.breaker.State()
}

func (c *LineupCache) logFailure(err error, key, op string) {
	entry := c.logger.WithFields(logrus.Fields{
		"cache_key": key,
		"operation": op,
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		entry.Debug("Lineup cache bypassed, circuit open")
		return
	}
	entry.WithError(err).Warn("Lineup cache operation failed")
}

type keySlot struct {
	Slot  optimizer.SlotType `json:"s"`
	Count int                `json:"c"`
}

type keyPlayer struct {
	ID       int64   `json:"i"`
	Position string  `json:"p"`
	Points   float64 `json:"v"`
}

type keyMaterial struct {
	Slots   []keySlot   `json:"slots"`
	Players []keyPlayer `json:"players"`
}

// LineupKey digests a lineup request into a cache key. Requests that differ only in map
// iteration or player order produce the same key. Fields are JSON encoded so caller
// supplied positions cannot run into neighbouring fields.
func LineupKey(req optimizer.LineupRequest) string {
	var km keyMaterial
	for _, slot := range optimizer.AllSlotTypes() {
		if count := req.SlotCounts[slot]; count != 0 {
			km.Slots = append(km.Slots, keySlot{Slot: slot, Count: count})
		}
	}

	km.Players = make([]keyPlayer, 0, len(req.Players))
	for _, p := range req.Players {
		km.Players = append(km.Players, keyPlayer{ID: p.ID, Position: p.Position, Points: req.Points[p.ID]})
	}
	sort.Slice(km.Players, func(i, j int) bool { return km.Players[i].ID < km.Players[j].ID })

	// Validated requests hold only finite points, so encoding cannot fail for them.
	data, err := json.Marshal(km)
	if err != nil {
		data = []byte(fmt.Sprintf("%#v", km))
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
