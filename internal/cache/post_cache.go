package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// 文章详情缓存键带代数，写操作只需递增代数即可整体失效
const postGenerationKey = "post:gen"

func postGeneration(ctx context.Context) (int64, error) {
	val, err := redisClient.Get(ctx, buildKey(postGenerationKey)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return val, nil
}

func postDetailKey(generation int64, slug string) string {
	return fmt.Sprintf("post:detail:%d:%s", generation, strings.ToLower(strings.TrimSpace(slug)))
}

// GetPostDetail 读取已发布文章详情缓存
func GetPostDetail(ctx context.Context, slug string, dest interface{}) (bool, error) {
	if !Enabled() {
		return false, nil
	}
	generation, err := postGeneration(ctx)
	if err != nil {
		return false, err
	}
	return GetJSON(ctx, postDetailKey(generation, slug), dest)
}

// SetPostDetail 写入已发布文章详情缓存
func SetPostDetail(ctx context.Context, slug string, value interface{}, ttl time.Duration) error {
	if !Enabled() || ttl <= 0 {
		return nil
	}
	generation, err := postGeneration(ctx)
	if err != nil {
		return err
	}
	return SetJSON(ctx, postDetailKey(generation, slug), value, ttl)
}

// InvalidatePosts 使全部文章详情缓存失效
func InvalidatePosts(ctx context.Context) error {
	if !Enabled() {
		return nil
	}
	return redisClient.Incr(ctx, buildKey(postGenerationKey)).Err()
}
