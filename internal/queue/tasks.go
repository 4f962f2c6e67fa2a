package queue

import (
	"encoding/json"
	"fmt"

	"github.com/inkpost/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskPostPublish 定时发布任务
	TaskPostPublish = constants.TaskPostPublish
	// TaskPostCachePurge 文章缓存清理任务
	TaskPostCachePurge = constants.TaskPostCachePurge
)

// PostPublishPayload 定时发布任务载荷
type PostPublishPayload struct {
	PostID      uint  `json:"post_id"`
	PublishAtTS int64 `json:"publish_at_ts"` // Unix 秒，用于区分同一文章的多次排期
}

// PostCachePurgePayload 缓存清理任务载荷
type PostCachePurgePayload struct {
	PostID uint   `json:"post_id"`
	Reason string `json:"reason"`
}

// NewPostPublishTask 创建定时发布任务
func NewPostPublishTask(payload PostPublishPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPostPublish, body), nil
}

// NewPostCachePurgeTask 创建缓存清理任务
func NewPostCachePurgeTask(payload PostCachePurgePayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPostCachePurge, body), nil
}

func postPublishTaskID(payload PostPublishPayload) string {
	return fmt.Sprintf("post-publish:%d:%d", payload.PostID, payload.PublishAtTS)
}
