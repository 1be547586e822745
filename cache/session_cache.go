package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmcconeghy/CL-backend-assessment/logger"
	"github.com/dmcconeghy/CL-backend-assessment/model"

	"github.com/redis/go-redis/v9"
)

// SessionCache is a read cache of composed audio sessions in Redis. A nil
// cache (or a cache built over a nil client) is valid and behaves as a
// permanent miss, so the service works without Redis.
type SessionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionCache creates a session cache with the given TTL.
func NewSessionCache(client *redis.Client, ttl time.Duration) *SessionCache {
	return &SessionCache{client: client, ttl: ttl}
}

// sessionKey generates the Redis key for a session.
func sessionKey(sessionID int64) string {
	return fmt.Sprintf("audio:session:%d", sessionID)
}

// Get returns the cached session, or nil on a miss. Cache errors are logged
// and reported as misses; the store stays the source of truth.
func (c *SessionCache) Get(ctx context.Context, sessionID int64) *model.AudioSession {
	if c == nil || c.client == nil {
		return nil
	}

	data, err := c.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warn("session cache read failed", logger.Int64("sessionId", sessionID), logger.ErrorField(err))
		}
		return nil
	}

	session := &model.AudioSession{}
	if err := json.Unmarshal(data, session); err != nil {
		logger.Warn("session cache entry corrupt, dropping", logger.Int64("sessionId", sessionID), logger.ErrorField(err))
		c.Invalidate(ctx, sessionID)
		return nil
	}
	return session
}

// Set stores the composed session with the configured TTL.
func (c *SessionCache) Set(ctx context.Context, session *model.AudioSession) {
	if c == nil || c.client == nil || session == nil {
		return
	}

	data, err := json.Marshal(session)
	if err != nil {
		logger.Warn("failed to marshal session for cache", logger.Int64("sessionId", session.SessionID), logger.ErrorField(err))
		return
	}
	if err := c.client.Set(ctx, sessionKey(session.SessionID), data, c.ttl).Err(); err != nil {
		logger.Warn("session cache write failed", logger.Int64("sessionId", session.SessionID), logger.ErrorField(err))
	}
}

// Invalidate drops the cached session, if any.
func (c *SessionCache) Invalidate(ctx context.Context, sessionID int64) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		logger.Warn("session cache invalidation failed", logger.Int64("sessionId", sessionID), logger.ErrorField(err))
	}
}
