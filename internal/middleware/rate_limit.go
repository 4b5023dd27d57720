package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/titanmarket/titanmarket-backend/internal/common"
	pkglogger "github.com/titanmarket/titanmarket-backend/pkg/logger"
)

// RateLimitConfig configures the rate limiter
type RateLimitConfig struct {
	RequestsPerMinute int
	KeyPrefix         string
	Message           string
}

// DefaultRateLimitConfig returns default rate limit configuration
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 120,
		KeyPrefix:         "titanmarket:ratelimit:ip:",
		Message:           "Too many requests, please slow down",
	}
}

// MessageSendRateLimitConfig limits how fast one user can send chat messages
func MessageSendRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: 30,
		KeyPrefix:         "titanmarket:ratelimit:msg:",
		Message:           "You are sending messages too quickly",
	}
}

const rateLimitWindow = time.Minute

// rateLimitScript is an atomic Lua script for sliding window rate limiting
var rateLimitScript = redis.NewScript(`
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local window_start = now - window

redis.call('ZREMRANGEBYSCORE', key, '-inf', window_start)
local count = redis.call('ZCARD', key)

if count < limit then
    redis.call('ZADD', key, now, now .. ':' .. math.random(1000000))
    redis.call('EXPIRE', key, math.ceil(window / 1000) + 1)
    return {1, limit - count - 1, 0}
else
    local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
    local reset_at = 0
    if #oldest >= 2 then
        reset_at = tonumber(oldest[2]) + window
    end
    return {0, 0, reset_at}
end
`)

// RateLimit returns a gin middleware that rate limits by client IP
func RateLimit(redisClient *redis.Client, cfg RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redisClient == nil {
			c.Next()
			return
		}
		limit(c, redisClient, cfg, c.ClientIP())
	}
}

// RateLimitPerUser returns a rate limiter keyed by user ID instead of IP.
// Must run after JWTAuth; anonymous requests fall back to the client IP.
func RateLimitPerUser(redisClient *redis.Client, cfg RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redisClient == nil {
			c.Next()
			return
		}
		identity := "ip:" + c.ClientIP()
		if userID := GetUserID(c); userID != 0 {
			identity = strconv.FormatUint(userID, 10)
		}
		limit(c, redisClient, cfg, identity)
	}
}

func limit(c *gin.Context, redisClient *redis.Client, cfg RateLimitConfig, identity string) {
	now := time.Now().UnixMilli()
	windowMs := rateLimitWindow.Milliseconds()

	result, err := rateLimitScript.Run(c.Request.Context(), redisClient, []string{cfg.KeyPrefix + identity},
		cfg.RequestsPerMinute, windowMs, now,
	).Int64Slice()
	if err != nil || len(result) != 3 {
		// fail open
		pkglogger.GetLogger().Warn().Err(err).Str("key_prefix", cfg.KeyPrefix).Msg("rate limiter unavailable")
		c.Next()
		return
	}

	allowed := result[0] == 1
	remaining := result[1]
	resetAt := result[2]

	c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.RequestsPerMinute))
	c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

	if !allowed {
		retryAfter := (resetAt - now) / 1000
		if retryAfter < 1 {
			retryAfter = 1
		}
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetAt/1000, 10))
		c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))
		common.ErrorResponse(c, http.StatusTooManyRequests, cfg.Message, nil)
		return
	}

	c.Next()
}
