package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/inkpost/internal/config"
	"github.com/inkpost/internal/logger"

	"go.uber.org/zap"
)

// 启动模式：api 只对外提供内容接口，publisher 只跑定时发布与队列消费
const (
	ModeAll       = "all"
	ModeAPI       = "api"
	ModePublisher = "publisher"
)

// ParseMode 解析启动模式，worker 作为 publisher 的旧别名保留
func ParseMode(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", ModeAll:
		return ModeAll, nil
	case ModeAPI:
		return ModeAPI, nil
	case ModePublisher, "worker":
		return ModePublisher, nil
	default:
		return "", fmt.Errorf("unknown mode %q (want all, api or publisher)", raw)
	}
}

func (o Options) servesAPI() bool {
	return o.Mode == ModeAll || o.Mode == ModeAPI
}

func (o Options) runsPublisher() bool {
	return o.Mode == ModeAll || o.Mode == ModePublisher
}

// Options 应用启动选项
type Options struct {
	Config          *config.Config
	Logger          *zap.SugaredLogger
	Signals         []os.Signal
	ShutdownTimeout time.Duration
	Mode            string
}

// normalizeOptions 补齐默认参数
func normalizeOptions(opts Options) Options {
	if opts.Logger == nil {
		opts.Logger = logger.S()
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}
	if mode, err := ParseMode(opts.Mode); err == nil {
		opts.Mode = mode
	}
	return opts
}
