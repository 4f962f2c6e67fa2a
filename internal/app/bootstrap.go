package app

import (
	"errors"

	"github.com/inkpost/internal/config"
	"github.com/inkpost/internal/logger"
	"github.com/inkpost/internal/provider"
	"github.com/inkpost/internal/router"
	"github.com/inkpost/internal/worker"
)

// BuildRunner 构建服务运行器，调用方负责关闭返回的容器
func BuildRunner(cfg *config.Config, mode string) (*Runner, *provider.Container, error) {
	if cfg == nil {
		return nil, nil, errors.New("config is nil")
	}

	mode, err := ParseMode(mode)
	if err != nil {
		return nil, nil, err
	}
	opts := Options{Mode: mode}

	container, err := provider.NewContainer(cfg)
	if err != nil {
		return nil, nil, err
	}

	var services []Service

	// 内容接口
	if opts.servesAPI() {
		engine := router.SetupRouter(cfg, container)
		services = append(services, NewHTTPService(cfg.Server, engine))
	}

	// 定时发布：队列消费者仅在启用队列时运行，扫描器总是运行
	if opts.runsPublisher() {
		if cfg.Queue.Enabled {
			consumer := worker.NewConsumer(container)
			workerService, err := worker.NewService(&cfg.Queue, consumer)
			if err != nil {
				container.Close()
				return nil, nil, err
			}
			services = append(services, workerService)
		} else if mode == ModePublisher {
			logger.Warnw("worker_queue_disabled", "mode", mode)
		}

		scheduler, err := worker.NewScheduler(cfg.Blog.PublishSweepCron, container.PostService)
		if err != nil {
			container.Close()
			return nil, nil, err
		}
		services = append(services, scheduler)
	}

	if len(services) == 0 {
		container.Close()
		return nil, nil, errors.New("no services initialized (check mode and config)")
	}

	return NewRunner(services...), container, nil
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	runner, container, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}
	defer container.Close()

	opts.Logger.Infow("app_start", "mode", opts.Mode, "services", runner.Names())
	return RunWithOptions(runner, opts)
}
