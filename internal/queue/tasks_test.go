package queue

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/inkpost/internal/config"
)

func TestNewPostPublishTask(t *testing.T) {
	task, err := NewPostPublishTask(PostPublishPayload{PostID: 7, PublishAtTS: 1700000000})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if task.Type() != TaskPostPublish {
		t.Fatalf("task type want %s got %s", TaskPostPublish, task.Type())
	}
	var payload PostPublishPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		t.Fatalf("decode payload failed: %v", err)
	}
	if payload.PostID != 7 {
		t.Fatalf("post id want 7 got %d", payload.PostID)
	}
	if got := postPublishTaskID(payload); got != "post-publish:7:1700000000" {
		t.Fatalf("unexpected task id: %s", got)
	}
}

func TestDisabledClientIsNoop(t *testing.T) {
	client, err := NewClient(&config.QueueConfig{Enabled: false})
	if err != nil {
		t.Fatalf("new client failed: %v", err)
	}
	if client.Enabled() {
		t.Fatalf("disabled client should report disabled")
	}
	if err := client.EnqueuePostPublish(PostPublishPayload{PostID: 1}, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("disabled enqueue should be noop: %v", err)
	}
	if err := client.EnqueuePostCachePurge(PostCachePurgePayload{PostID: 1}); err != nil {
		t.Fatalf("disabled enqueue should be noop: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close disabled client failed: %v", err)
	}
}

func TestBuildServerConfigDefaults(t *testing.T) {
	opt, cfg := BuildServerConfig(nil)
	if opt.Addr != "127.0.0.1:6379" {
		t.Fatalf("default addr mismatch: %s", opt.Addr)
	}
	if cfg.Concurrency != 10 || cfg.Queues[DefaultQueue] != 1 {
		t.Fatalf("unexpected server config: %+v", cfg)
	}
}
