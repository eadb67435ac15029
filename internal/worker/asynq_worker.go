package worker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/shiptrack-next/internal/logger"
	"github.com/shiptrack-next/internal/provider"
	"github.com/shiptrack-next/internal/queue"
	"github.com/shiptrack-next/internal/service"

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
	mux.HandleFunc(queue.TaskShipmentTransition, c.handleShipmentTransition)
	mux.HandleFunc(queue.TaskIntegrityCheck, c.handleIntegrityCheck)
}

// handleShipmentTransition 消费快递商状态事件。事件是至少一次投递，
// 重复消费依赖计分引擎的幂等性而不是队列去重。业务上注定无法成功的
// 事件（运单不存在、状态非法）直接吞掉不重试，只有存储层故障才返回
// error 触发 asynq 重试。
func (c *Consumer) handleShipmentTransition(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_shipment_transition_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.ShipmentTransitionPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_shipment_transition_unmarshal_failed", "error", err)
		return err
	}
	if payload.TenantID == 0 || payload.TrackingNo == "" {
		logger.Debugw("worker_shipment_transition_skip_invalid_payload",
			"tenant_id", payload.TenantID,
			"tracking_no", payload.TrackingNo,
		)
		return nil
	}
	outcome, err := c.ShipmentService.ApplyCourierEvent(
		payload.TenantID,
		payload.CourierCode,
		payload.TrackingNo,
		payload.OldStatus,
		payload.NewStatus,
	)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrShipmentNotFound):
			logger.Debugw("worker_shipment_transition_skip_not_found",
				"tenant_id", payload.TenantID, "tracking_no", payload.TrackingNo)
			return nil
		case errors.Is(err, service.ErrCourierNotFound),
			errors.Is(err, service.ErrCourierDisabled):
			logger.Debugw("worker_shipment_transition_skip_courier",
				"courier_code", payload.CourierCode, "error", err)
			return nil
		case errors.Is(err, service.ErrShipmentStatusInvalid):
			logger.Debugw("worker_shipment_transition_skip_invalid_status",
				"tenant_id", payload.TenantID,
				"tracking_no", payload.TrackingNo,
				"new_status", payload.NewStatus,
			)
			return nil
		default:
			logger.Warnw("worker_shipment_transition_failed",
				"tenant_id", payload.TenantID,
				"tracking_no", payload.TrackingNo,
				"error", err,
			)
			return err
		}
	}
	if outcome != nil && outcome.Scored {
		logger.Infow("worker_shipment_transition_scored",
			"tenant_id", payload.TenantID,
			"tracking_no", payload.TrackingNo,
			"delta", outcome.Delta,
		)
	}
	return nil
}

func (c *Consumer) handleIntegrityCheck(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_integrity_check_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.IntegrityCheckPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_integrity_check_unmarshal_failed", "error", err)
		return err
	}
	opts := service.IntegrityCheckOptions{Fix: payload.Fix}
	if payload.TenantID != 0 {
		_, err := c.IntegrityService.CheckTenant(payload.TenantID, opts)
		if errors.Is(err, service.ErrTenantNotFound) {
			logger.Debugw("worker_integrity_check_skip_tenant_not_found", "tenant_id", payload.TenantID)
			return nil
		}
		return err
	}
	_, err := c.IntegrityService.CheckAll(opts)
	return err
}
