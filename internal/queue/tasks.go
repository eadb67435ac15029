package queue

import (
	"encoding/json"

	"github.com/shiptrack-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskShipmentTransition 运单状态迁移计分任务
	TaskShipmentTransition = constants.TaskShipmentTransition
	// TaskIntegrityCheck 流水对账任务
	TaskIntegrityCheck = constants.TaskIntegrityCheck
)

// ShipmentTransitionPayload 状态迁移任务载荷
type ShipmentTransitionPayload struct {
	TenantID    uint   `json:"tenant_id"`
	CourierCode string `json:"courier_code"`
	TrackingNo  string `json:"tracking_no"`
	OldStatus   string `json:"old_status"`
	NewStatus   string `json:"new_status"`
}

// IntegrityCheckPayload 对账任务载荷。TenantID 为 0 表示全租户对账。
type IntegrityCheckPayload struct {
	TenantID uint `json:"tenant_id"`
	Fix      bool `json:"fix"`
}

// NewShipmentTransitionTask 创建状态迁移任务
func NewShipmentTransitionTask(payload ShipmentTransitionPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskShipmentTransition, body), nil
}

// NewIntegrityCheckTask 创建对账任务
func NewIntegrityCheckTask(payload IntegrityCheckPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskIntegrityCheck, body), nil
}
