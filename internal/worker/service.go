package worker

import (
	"context"
	"errors"
	"time"

	"github.com/vanmart/internal/config"
	"github.com/vanmart/internal/logger"
	"github.com/vanmart/internal/queue"

	"github.com/hibiken/asynq"
)

const (
	defaultMartSweepInterval = 5 * time.Minute
	martSweepBatchSize       = 100
)

// Service 异步队列服务
type Service struct {
	name          string
	server        *asynq.Server
	mux           *asynq.ServeMux
	consumer      *Consumer
	sweepInterval time.Duration
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, martCfg config.MartConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)

	var interval time.Duration
	if martCfg.AutoCloseEnabled {
		interval = defaultMartSweepInterval
		if martCfg.AutoCloseSweepSeconds > 0 {
			interval = time.Duration(martCfg.AutoCloseSweepSeconds) * time.Second
		}
	}
	return &Service{
		name:          "worker",
		server:        server,
		mux:           mux,
		consumer:      consumer,
		sweepInterval: interval,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.sweepInterval > 0 && s.consumer != nil && s.consumer.MartService != nil {
		go s.runMartSweepLoop(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// runMartSweepLoop 兜底扫描：延时任务丢失或截止时间被修改时，仍能按时截单
func (s *Service) runMartSweepLoop(ctx context.Context) {
	runOnce := func() {
		closed, err := s.consumer.MartService.SweepExpiredMarts(ctx, martSweepBatchSize)
		if err != nil {
			logger.Warnw("worker_mart_sweep_failed", "error", err)
			return
		}
		if closed > 0 {
			logger.Infow("worker_mart_sweep_closed", "count", closed)
		}
	}
	runOnce()

	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
