package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/shiptrack-next/internal/http/response"
	"github.com/shiptrack-next/internal/models"
	"github.com/shiptrack-next/internal/repository"
	"github.com/shiptrack-next/internal/service"

	"github.com/gin-gonic/gin"
)

// ShipmentCreateRequest 运单创建请求
type ShipmentCreateRequest struct {
	TenantID      uint   `json:"tenant_id" binding:"required"`
	TrackingNo    string `json:"tracking_no" binding:"required"`
	CustomerID    uint   `json:"customer_id" binding:"required"`
	CourierCode   string `json:"courier_code" binding:"required"`
	OrderNo       string `json:"order_no"`
	DeclaredValue string `json:"declared_value"`
	CODAmount     string `json:"cod_amount"`
}

// ShipmentStatusRequest 运单状态推进请求
type ShipmentStatusRequest struct {
	TenantID uint   `json:"tenant_id" binding:"required"`
	Status   string `json:"status" binding:"required"`
}

// parseMoneyInput 解析金额输入，空串视为 0
func parseMoneyInput(raw string) (models.Money, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return models.Money{}, nil
	}
	return models.NewMoneyFromString(raw)
}

// ListShipments 运单列表
func (h *Handler) ListShipments(c *gin.Context) {
	tenantID, ok := tenantIDFromQuery(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	var customerID uint
	if raw := strings.TrimSpace(c.Query("customer_id")); raw != "" {
		if parsed, err := strconv.ParseUint(raw, 10, 64); err == nil {
			customerID = uint(parsed)
		}
	}
	createdFrom, err := parseTimeNullable(strings.TrimSpace(c.Query("created_from")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "时间参数错误", err)
		return
	}
	createdTo, err := parseTimeNullable(strings.TrimSpace(c.Query("created_to")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "时间参数错误", err)
		return
	}

	shipments, total, err := h.ShipmentService.List(repository.ShipmentListFilter{
		Page:        page,
		PageSize:    pageSize,
		TenantID:    tenantID,
		CustomerID:  customerID,
		CourierCode: strings.TrimSpace(c.Query("courier_code")),
		Status:      strings.TrimSpace(c.Query("status")),
		TrackingNo:  strings.TrimSpace(c.Query("tracking_no")),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "运单查询失败", err)
		return
	}

	response.SuccessWithPage(c, shipments, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	})
}

// GetShipment 运单详情
func (h *Handler) GetShipment(c *gin.Context) {
	tenantID, ok := tenantIDFromQuery(c)
	if !ok {
		return
	}
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	shipment, err := h.ShipmentService.Get(tenantID, id)
	if err != nil {
		if errors.Is(err, service.ErrShipmentNotFound) {
			respondError(c, response.CodeNotFound, "运单不存在", nil)
			return
		}
		respondError(c, response.CodeInternal, "运单查询失败", err)
		return
	}
	response.Success(c, shipment)
}

// CreateShipment 创建运单
func (h *Handler) CreateShipment(c *gin.Context) {
	var req ShipmentCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}
	declaredValue, err := parseMoneyInput(req.DeclaredValue)
	if err != nil {
		respondError(c, response.CodeBadRequest, "申报价值格式错误", err)
		return
	}
	codAmount, err := parseMoneyInput(req.CODAmount)
	if err != nil {
		respondError(c, response.CodeBadRequest, "代收货款格式错误", err)
		return
	}

	shipment, err := h.ShipmentService.Create(req.TenantID, service.ShipmentCreateInput{
		TrackingNo:    req.TrackingNo,
		CustomerID:    req.CustomerID,
		CourierCode:   req.CourierCode,
		OrderNo:       req.OrderNo,
		DeclaredValue: declaredValue,
		CODAmount:     codAmount,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCustomerNotFound):
			respondError(c, response.CodeNotFound, "客户不存在", nil)
		case errors.Is(err, service.ErrCourierNotFound):
			respondError(c, response.CodeNotFound, "快递商不存在", nil)
		case errors.Is(err, service.ErrCourierDisabled):
			respondError(c, response.CodeForbidden, "快递商已停用", nil)
		case errors.Is(err, service.ErrShipmentExists):
			respondError(c, response.CodeConflict, "运单号已存在", nil)
		case errors.Is(err, service.ErrScoringInvalidInput):
			respondError(c, response.CodeBadRequest, "请求参数错误", nil)
		default:
			respondError(c, response.CodeInternal, "运单创建失败", err)
		}
		return
	}
	response.Success(c, shipment)
}

// UpdateShipmentStatus 人工推进运单状态
func (h *Handler) UpdateShipmentStatus(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var req ShipmentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	shipment, outcome, err := h.ShipmentService.UpdateStatus(req.TenantID, id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrShipmentNotFound):
			respondError(c, response.CodeNotFound, "运单不存在", nil)
		case errors.Is(err, service.ErrShipmentStatusInvalid):
			respondError(c, response.CodeBadRequest, "状态不合法", nil)
		case errors.Is(err, service.ErrShipmentTransitionInvalid):
			respondError(c, response.CodeConflict, "状态迁移不被允许", nil)
		default:
			respondError(c, response.CodeInternal, "状态推进失败", err)
		}
		return
	}
	response.Success(c, gin.H{
		"shipment": shipment,
		"outcome":  outcome,
	})
}
