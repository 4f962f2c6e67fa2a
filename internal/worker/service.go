package worker

import (
	"context"
	"errors"
	"time"

	"github.com/inkpost/internal/config"
	"github.com/inkpost/internal/logger"
	"github.com/inkpost/internal/queue"

	"github.com/hibiken/asynq"
)

const publishQueueServiceName = "publish-queue"

// Service 定时发布与缓存清理任务的队列消费服务
type Service struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	tasks  []string
}

// NewService 队列未启用时返回错误，调用方据此跳过消费者
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	serverCfg.ErrorHandler = asynq.ErrorHandlerFunc(reportTaskFailure)
	serverCfg.Logger = logger.Component(publishQueueServiceName)

	mux := asynq.NewServeMux()
	mux.Use(logTaskDuration)
	consumer.Register(mux)
	return &Service{
		server: asynq.NewServer(opt, serverCfg),
		mux:    mux,
		tasks:  []string{queue.TaskPostPublish, queue.TaskPostCachePurge},
	}, nil
}

func (s *Service) Name() string {
	return publishQueueServiceName
}

// Start 启动消费者并阻塞到 ctx 取消；信号由 Runner 统一处理
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("publish queue not initialized")
	}
	if err := s.server.Start(s.mux); err != nil {
		return err
	}
	logger.Infow("publish_queue_started", "tasks", s.tasks)
	<-ctx.Done()
	return nil
}

// Stop 等待进行中的任务结束
func (s *Service) Stop(_ context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	s.server.Shutdown()
	logger.Infow("publish_queue_stopped")
	return nil
}

func logTaskDuration(next asynq.Handler) asynq.Handler {
	return asynq.HandlerFunc(func(ctx context.Context, task *asynq.Task) error {
		started := time.Now()
		err := next.ProcessTask(ctx, task)
		logger.Debugw("publish_queue_task_done",
			"task", task.Type(),
			"elapsed_ms", time.Since(started).Milliseconds(),
			"failed", err != nil,
		)
		return err
	})
}

func reportTaskFailure(_ context.Context, task *asynq.Task, err error) {
	taskType := ""
	if task != nil {
		taskType = task.Type()
	}
	logger.Warnw("publish_queue_task_failed", "task", taskType, "error", err)
}
