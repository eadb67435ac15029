package constants

// 运单状态常量
const (
	ShipmentStatusPending        = "pending"
	ShipmentStatusPickedUp       = "picked_up"
	ShipmentStatusInTransit      = "in_transit"
	ShipmentStatusOutForDelivery = "out_for_delivery"
	ShipmentStatusDelivered      = "delivered"
	ShipmentStatusFailed         = "failed"
	ShipmentStatusReturned       = "returned"
	ShipmentStatusCancelled      = "cancelled"
)

// 信誉分流水原因常量（与终态一一对应）
const (
	ScoreReasonDelivered = "delivered"
	ScoreReasonReturned  = "returned"
	ScoreReasonCancelled = "cancelled"
)

// 信誉分增量常量
const (
	ScoreDeltaPositive = 1
	ScoreDeltaNegative = -1
)

// 租户状态常量
const (
	TenantStatusActive   = "active"
	TenantStatusDisabled = "disabled"
)

// 队列与异步任务常量
const (
	QueueDefault           = "default"
	TaskShipmentTransition = "shipment:transition"
	TaskIntegrityCheck     = "integrity:check"
)

// HTTP 头常量
const (
	HeaderTenantCode       = "X-Shiptrack-Tenant"
	HeaderWebhookSignature = "X-Shiptrack-Signature"
)
