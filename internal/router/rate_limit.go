package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/inkpost/internal/http/response"
	"github.com/inkpost/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimitKeyFunc 生成限流 key 的函数
type RateLimitKeyFunc func(*gin.Context) string

// RateLimitRule 限流规则
type RateLimitRule struct {
	Prefix        string
	WindowSeconds int
	MaxRequests   int
}

// windowCounter 固定窗口计数器，返回窗口内计数与剩余秒数
type windowCounter interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, int64, error)
}

var rateLimitScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
	redis.call("EXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("TTL", KEYS[1])
return {current, ttl}
`)

type redisCounter struct {
	client *redis.Client
}

func (r *redisCounter) Incr(ctx context.Context, key string, window time.Duration) (int64, int64, error) {
	result, err := rateLimitScript.Run(ctx, r.client, []string{key}, int(window/time.Second)).Result()
	if err != nil {
		return 0, 0, err
	}
	values, ok := result.([]interface{})
	if !ok || len(values) < 2 {
		return 0, 0, fmt.Errorf("unexpected rate limit script result: %v", result)
	}
	count, ok := toInt64(values[0])
	if !ok {
		return 0, 0, fmt.Errorf("unexpected rate limit counter: %v", values[0])
	}
	ttl, _ := toInt64(values[1])
	return count, ttl, nil
}

type memoryWindow struct {
	count     int64
	expiresAt time.Time
}

// memoryCounter 进程内固定窗口计数，Redis 未启用时使用
type memoryCounter struct {
	mu      sync.Mutex
	windows map[string]*memoryWindow
	now     func() time.Time
	sweeps  int
}

func newMemoryCounter() *memoryCounter {
	return &memoryCounter{
		windows: make(map[string]*memoryWindow),
		now:     time.Now,
	}
}

func (m *memoryCounter) Incr(_ context.Context, key string, window time.Duration) (int64, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.sweeps++
	if m.sweeps >= 1024 {
		m.sweeps = 0
		for k, w := range m.windows {
			if !now.Before(w.expiresAt) {
				delete(m.windows, k)
			}
		}
	}

	entry, ok := m.windows[key]
	if !ok || !now.Before(entry.expiresAt) {
		entry = &memoryWindow{expiresAt: now.Add(window)}
		m.windows[key] = entry
	}
	entry.count++
	remaining := int64(entry.expiresAt.Sub(now).Round(time.Second) / time.Second)
	return entry.count, remaining, nil
}

// RateLimitMiddleware 频率限制中间件，client 为空时使用进程内计数
func RateLimitMiddleware(client *redis.Client, rule RateLimitRule, keyFunc RateLimitKeyFunc) gin.HandlerFunc {
	if rule.WindowSeconds <= 0 || rule.MaxRequests <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	fallback := newMemoryCounter()
	var primary windowCounter = fallback
	if client != nil {
		primary = &redisCounter{client: client}
	}
	window := time.Duration(rule.WindowSeconds) * time.Second

	return func(c *gin.Context) {
		key := ""
		if keyFunc != nil {
			key = strings.TrimSpace(keyFunc(c))
		}
		if key == "" {
			key = c.ClientIP()
		}
		if rule.Prefix != "" {
			key = fmt.Sprintf("%s:%s", rule.Prefix, key)
		}

		count, ttlSeconds, err := primary.Incr(c.Request.Context(), key, window)
		if err != nil {
			logger.Warnw("rate_limit_redis_failed", "key", key, "error", err)
			count, ttlSeconds, _ = fallback.Incr(c.Request.Context(), key, window)
		}
		if count > int64(rule.MaxRequests) {
			waitSeconds := int(ttlSeconds)
			if waitSeconds < 1 {
				waitSeconds = rule.WindowSeconds
			}
			c.Header("Retry-After", fmt.Sprintf("%d", waitSeconds))
			response.Render(c, response.RateLimited(waitSeconds), true)
			return
		}

		c.Next()
	}
}

// KeyByIP 使用 IP 作为限流 key
func KeyByIP(c *gin.Context) string {
	return c.ClientIP()
}

// KeyByIPAndJSONField 使用 IP + JSON 字段作为限流 key
func KeyByIPAndJSONField(field string) RateLimitKeyFunc {
	return func(c *gin.Context) string {
		value := strings.ToLower(strings.TrimSpace(readJSONField(c, field)))
		if value == "" {
			return c.ClientIP()
		}
		return fmt.Sprintf("%s|%s", value, c.ClientIP())
	}
}

func readJSONField(c *gin.Context, field string) string {
	if c == nil || c.Request == nil || c.Request.Body == nil {
		return ""
	}
	body, err := io.ReadAll(c.Request.Body)
	c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
	if err != nil || len(body) == 0 {
		return ""
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	value, ok := payload[field]
	if !ok {
		return ""
	}
	if text, ok := value.(string); ok {
		return strings.TrimSpace(text)
	}
	return ""
}

func toInt64(value interface{}) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case uint64:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint8:
		return int64(v), true
	case float64:
		return int64(v), true
	default:
		return 0, false
	}
}
