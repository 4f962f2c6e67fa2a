package cache

import (
	"context"
	"testing"
	"time"
)

func TestPostCacheDisabledIsNoop(t *testing.T) {
	redisEnabled = false
	ctx := context.Background()

	var dest map[string]interface{}
	hit, err := GetPostDetail(ctx, "hello", &dest)
	if err != nil || hit {
		t.Fatalf("disabled cache should miss without error, hit=%v err=%v", hit, err)
	}
	if err := SetPostDetail(ctx, "hello", map[string]string{"a": "b"}, time.Minute); err != nil {
		t.Fatalf("disabled set should be noop: %v", err)
	}
	if err := InvalidatePosts(ctx); err != nil {
		t.Fatalf("disabled invalidate should be noop: %v", err)
	}
}

func TestPostDetailKeyNormalizesSlug(t *testing.T) {
	if got := postDetailKey(3, "  Hello-World "); got != "post:detail:3:hello-world" {
		t.Fatalf("unexpected key: %s", got)
	}
}

func TestBuildKeyUsesPrefix(t *testing.T) {
	redisPrefix = "inkpost"
	if got := buildKey("post:gen"); got != "inkpost:post:gen" {
		t.Fatalf("unexpected key: %s", got)
	}
	if got := buildKey(" "); got != "inkpost" {
		t.Fatalf("blank key should map to prefix, got %s", got)
	}
}
