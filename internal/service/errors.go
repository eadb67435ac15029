package service

import "errors"

// 业务侧哨兵错误，HTTP 层统一翻译为响应码
var (
	ErrTenantNotFound            = errors.New("tenant not found")
	ErrTenantDisabled            = errors.New("tenant disabled")
	ErrCustomerNotFound          = errors.New("customer not found")
	ErrCourierNotFound           = errors.New("courier not found")
	ErrCourierDisabled           = errors.New("courier disabled")
	ErrShipmentNotFound          = errors.New("shipment not found")
	ErrShipmentExists            = errors.New("shipment tracking no already exists")
	ErrShipmentStatusInvalid     = errors.New("shipment status invalid")
	ErrShipmentTransitionInvalid = errors.New("shipment status transition invalid")
	ErrScoringInvalidInput       = errors.New("scoring input invalid")
	ErrOperatorCredentials       = errors.New("operator credentials invalid")
)
