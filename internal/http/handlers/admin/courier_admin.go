package admin

import (
	"strings"

	"github.com/shiptrack-next/internal/http/response"
	"github.com/shiptrack-next/internal/models"

	"github.com/gin-gonic/gin"
)

// CourierRequest 快递商创建/更新请求
type CourierRequest struct {
	Code    string `json:"code" binding:"required"`
	Name    string `json:"name" binding:"required"`
	Enabled *bool  `json:"enabled"`
}

// ListCouriers 快递商列表
func (h *Handler) ListCouriers(c *gin.Context) {
	couriers, err := h.CourierRepo.List()
	if err != nil {
		respondError(c, response.CodeInternal, "快递商查询失败", err)
		return
	}
	response.Success(c, couriers)
}

// CreateCourier 创建快递商
func (h *Handler) CreateCourier(c *gin.Context) {
	var req CourierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}
	code := strings.ToLower(strings.TrimSpace(req.Code))
	existing, err := h.CourierRepo.GetByCode(code)
	if err != nil {
		respondError(c, response.CodeInternal, "快递商查询失败", err)
		return
	}
	if existing != nil {
		respondError(c, response.CodeConflict, "快递商编码已存在", nil)
		return
	}

	courier := &models.Courier{
		Code:    code,
		Name:    strings.TrimSpace(req.Name),
		Enabled: true,
	}
	if req.Enabled != nil {
		courier.Enabled = *req.Enabled
	}
	if err := h.CourierRepo.Create(courier); err != nil {
		respondError(c, response.CodeInternal, "快递商创建失败", err)
		return
	}
	response.Success(c, courier)
}

// UpdateCourier 更新快递商（名称与启用状态）
func (h *Handler) UpdateCourier(c *gin.Context) {
	code := strings.ToLower(strings.TrimSpace(c.Param("code")))
	courier, err := h.CourierRepo.GetByCode(code)
	if err != nil {
		respondError(c, response.CodeInternal, "快递商查询失败", err)
		return
	}
	if courier == nil {
		respondError(c, response.CodeNotFound, "快递商不存在", nil)
		return
	}

	var req CourierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}
	courier.Name = strings.TrimSpace(req.Name)
	if req.Enabled != nil {
		courier.Enabled = *req.Enabled
	}
	if err := h.CourierRepo.Update(courier); err != nil {
		respondError(c, response.CodeInternal, "快递商更新失败", err)
		return
	}
	response.Success(c, courier)
}
