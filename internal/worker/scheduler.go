package worker

import (
	"context"
	"errors"
	"strings"

	"github.com/inkpost/internal/logger"

	"github.com/robfig/cron/v3"
)

const defaultPublishSweepSpec = "@every 1m"

// Publisher 定时发布扫描所需的能力
type Publisher interface {
	PublishDue(source string) (int, error)
}

// Scheduler 周期任务服务：扫描到期的定时文章并发布
// 队列未启用时由它兜底，启用时用于补偿丢失的延迟任务
type Scheduler struct {
	name      string
	cron      *cron.Cron
	publisher Publisher
	spec      string
}

// NewScheduler 创建周期任务服务
func NewScheduler(spec string, publisher Publisher) (*Scheduler, error) {
	if publisher == nil {
		return nil, errors.New("publisher is nil")
	}
	spec = strings.TrimSpace(spec)
	if spec == "" {
		spec = defaultPublishSweepSpec
	}
	s := &Scheduler{
		name:      "scheduler",
		cron:      cron.New(),
		publisher: publisher,
		spec:      spec,
	}
	if _, err := s.cron.AddFunc(spec, s.sweep); err != nil {
		return nil, err
	}
	return s, nil
}

// Name 服务名称
func (s *Scheduler) Name() string {
	if s == nil || s.name == "" {
		return "scheduler"
	}
	return s.name
}

// Start 启动周期任务，阻塞直到 ctx 结束
func (s *Scheduler) Start(ctx context.Context) error {
	if s == nil || s.cron == nil {
		return errors.New("scheduler not initialized")
	}
	logger.Infow("scheduler_started", "spec", s.spec)
	s.sweep()
	s.cron.Start()
	<-ctx.Done()
	return nil
}

// Stop 停止周期任务并等待执行中的任务结束
func (s *Scheduler) Stop(ctx context.Context) error {
	if s == nil || s.cron == nil {
		return nil
	}
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) sweep() {
	published, err := s.publisher.PublishDue("cron")
	if err != nil {
		logger.Warnw("scheduler_publish_sweep_failed", "error", err)
		return
	}
	if published > 0 {
		logger.Infow("scheduler_publish_sweep_done", "published", published)
	}
}
