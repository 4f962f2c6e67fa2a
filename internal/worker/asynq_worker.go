package worker

import (
	"context"
	"encoding/json"

	"github.com/inkpost/internal/logger"
	"github.com/inkpost/internal/provider"
	"github.com/inkpost/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskPostPublish, c.handlePostPublish)
	mux.HandleFunc(queue.TaskPostCachePurge, c.handlePostCachePurge)
}

func (c *Consumer) handlePostPublish(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_post_publish_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.PostPublishPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_post_publish_unmarshal_failed", "error", err)
		return err
	}
	if payload.PostID == 0 {
		logger.Debugw("worker_post_publish_skip_invalid_payload", "post_id", payload.PostID)
		return nil
	}
	if c.PostService == nil {
		logger.Warnw("worker_post_publish_skip_post_service_nil", "post_id", payload.PostID)
		return nil
	}
	published, err := c.PostService.PublishScheduled(payload.PostID)
	if err != nil {
		logger.Warnw("worker_post_publish_failed", "post_id", payload.PostID, "error", err)
		return err
	}
	if !published {
		// 文章已被删除、改期或改为其他状态
		logger.Debugw("worker_post_publish_skip_not_due", "post_id", payload.PostID, "publish_at_ts", payload.PublishAtTS)
	}
	return nil
}

func (c *Consumer) handlePostCachePurge(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_post_cache_purge_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.PostCachePurgePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_post_cache_purge_unmarshal_failed", "error", err)
		return err
	}
	if c.PostService == nil {
		return nil
	}
	if err := c.PostService.PurgeCache(ctx); err != nil {
		logger.Warnw("worker_post_cache_purge_failed", "post_id", payload.PostID, "reason", payload.Reason, "error", err)
		return err
	}
	return nil
}
