package worker

import (
	"context"
	"errors"
	"time"

	"github.com/shiptrack-next/internal/config"
	"github.com/shiptrack-next/internal/logger"
	"github.com/shiptrack-next/internal/queue"
	"github.com/shiptrack-next/internal/service"

	"github.com/hibiken/asynq"
)

// Service 异步队列服务
type Service struct {
	name      string
	server    *asynq.Server
	mux       *asynq.ServeMux
	consumer  *Consumer
	integrity config.IntegrityConfig
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, integrity config.IntegrityConfig, consumer *Consumer) (*Service, error) {
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
	return &Service{
		name:      "worker",
		server:    server,
		mux:       mux,
		consumer:  consumer,
		integrity: integrity,
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
	if s.integrity.IntervalMinutes > 0 {
		go s.runIntegrityLoop(ctx)
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

// runIntegrityLoop 周期全租户对账。自动修复是否启用由配置决定，默认
// 关闭：周期任务只报告漂移，修复留给人工或显式开启后的保守路径。
func (s *Service) runIntegrityLoop(ctx context.Context) {
	if s == nil || s.consumer == nil || s.consumer.IntegrityService == nil {
		return
	}
	opts := service.IntegrityCheckOptions{Fix: s.integrity.AutoFix}
	runOnce := func() {
		if _, err := s.consumer.IntegrityService.CheckAll(opts); err != nil {
			logger.Warnw("worker_integrity_loop_failed", "error", err)
		}
	}
	runOnce()

	ticker := time.NewTicker(time.Duration(s.integrity.IntervalMinutes) * time.Minute)
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
