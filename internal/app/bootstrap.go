package app

import (
	"errors"
	"fmt"

	"github.com/vanmart/internal/config"
	"github.com/vanmart/internal/logger"
	"github.com/vanmart/internal/provider"
	"github.com/vanmart/internal/router"
	"github.com/vanmart/internal/worker"
)

// BuildRunner 按运行模式组装 HTTP 与 Worker 服务
func BuildRunner(cfg *config.Config, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	switch mode {
	case ModeAll, ModeAPI, ModeWorker:
	default:
		return nil, fmt.Errorf("unknown mode: %s", mode)
	}

	container := provider.NewContainer(cfg)

	var services []Service
	if mode == ModeAll || mode == ModeAPI {
		engine := router.SetupRouter(cfg, container)
		addr := cfg.Server.Host + ":" + cfg.Server.Port
		services = append(services, NewHTTPService(addr, engine))
	}

	if mode == ModeAll || mode == ModeWorker {
		if !cfg.Queue.Enabled && mode == ModeAll {
			// 未启用队列时仅运行 API，通知与自动截单任务不会被消费
			logger.Warnw("app_worker_skipped_queue_disabled")
		} else {
			consumer := worker.NewConsumer(container)
			workerService, err := worker.NewService(&cfg.Queue, cfg.Mart, consumer)
			if err != nil {
				return nil, err
			}
			services = append(services, workerService)
		}
	}

	if len(services) == 0 {
		return nil, errors.New("no services initialized (check mode and config)")
	}
	return NewRunner(services...), nil
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	runner, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}

	addr := opts.Config.Server.Host + ":" + opts.Config.Server.Port
	opts.Logger.Infow("app_start", "addr", addr, "mode", opts.Mode)
	return RunWithOptions(runner, opts)
}
