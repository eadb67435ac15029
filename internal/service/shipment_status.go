package service

import (
	"strings"

	"github.com/shiptrack-next/internal/constants"
)

// allowedShipmentTransitions 运单状态机：正常流程线性推进，cancelled 可从
// 任何非终态进入，failed 之后允许退回或作废。
var allowedShipmentTransitions = map[string]map[string]bool{
	constants.ShipmentStatusPending: {
		constants.ShipmentStatusPickedUp:  true,
		constants.ShipmentStatusCancelled: true,
	},
	constants.ShipmentStatusPickedUp: {
		constants.ShipmentStatusInTransit: true,
		constants.ShipmentStatusCancelled: true,
	},
	constants.ShipmentStatusInTransit: {
		constants.ShipmentStatusOutForDelivery: true,
		constants.ShipmentStatusCancelled:      true,
	},
	constants.ShipmentStatusOutForDelivery: {
		constants.ShipmentStatusDelivered: true,
		constants.ShipmentStatusFailed:    true,
		constants.ShipmentStatusReturned:  true,
		constants.ShipmentStatusCancelled: true,
	},
	constants.ShipmentStatusFailed: {
		constants.ShipmentStatusReturned:  true,
		constants.ShipmentStatusCancelled: true,
	},
	constants.ShipmentStatusDelivered: {},
	constants.ShipmentStatusReturned:  {},
	constants.ShipmentStatusCancelled: {},
}

// scoreableOutcomes 计分终态与对应增量：签收 +1，退回/作废 -1。
// failed 属于状态机终态但不计分，后续的 returned/cancelled 才落账。
var scoreableOutcomes = map[string]int{
	constants.ShipmentStatusDelivered: constants.ScoreDeltaPositive,
	constants.ShipmentStatusReturned:  constants.ScoreDeltaNegative,
	constants.ShipmentStatusCancelled: constants.ScoreDeltaNegative,
}

// NormalizeShipmentStatus 规范化状态字符串
func NormalizeShipmentStatus(status string) string {
	return strings.ToLower(strings.TrimSpace(status))
}

// IsValidShipmentStatus 判断状态是否属于状态机
func IsValidShipmentStatus(status string) bool {
	_, ok := allowedShipmentTransitions[status]
	return ok
}

// IsShipmentTransitionAllowed 判断状态机是否允许该迁移
func IsShipmentTransitionAllowed(oldStatus, newStatus string) bool {
	next, ok := allowedShipmentTransitions[oldStatus]
	if !ok {
		return false
	}
	return next[newStatus]
}

// IsFinalOutcome 判断状态是否为计分终态
func IsFinalOutcome(status string) bool {
	_, ok := scoreableOutcomes[status]
	return ok
}

// ScoreDelta 返回计分终态对应的增量，非计分终态返回 false
func ScoreDelta(status string) (int, bool) {
	delta, ok := scoreableOutcomes[status]
	return delta, ok
}
