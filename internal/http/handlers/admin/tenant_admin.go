package admin

import (
	"errors"
	"strings"

	"github.com/shiptrack-next/internal/constants"
	"github.com/shiptrack-next/internal/http/response"
	"github.com/shiptrack-next/internal/models"
	"github.com/shiptrack-next/internal/service"

	"github.com/gin-gonic/gin"
)

// TenantCreateRequest 租户创建请求
type TenantCreateRequest struct {
	Code string `json:"code" binding:"required"`
	Name string `json:"name" binding:"required"`
}

// TenantStatusRequest 租户状态变更请求
type TenantStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ListTenants 启用租户列表
func (h *Handler) ListTenants(c *gin.Context) {
	tenants, err := h.TenantService.ListActive()
	if err != nil {
		respondError(c, response.CodeInternal, "租户查询失败", err)
		return
	}
	response.Success(c, tenants)
}

// CreateTenant 创建租户
func (h *Handler) CreateTenant(c *gin.Context) {
	var req TenantCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}
	code := strings.ToLower(strings.TrimSpace(req.Code))
	existing, err := h.TenantRepo.GetByCode(code)
	if err != nil {
		respondError(c, response.CodeInternal, "租户查询失败", err)
		return
	}
	if existing != nil {
		respondError(c, response.CodeConflict, "租户编码已存在", nil)
		return
	}

	tenant := &models.Tenant{
		Code:   code,
		Name:   strings.TrimSpace(req.Name),
		Status: constants.TenantStatusActive,
	}
	if err := h.TenantRepo.Create(tenant); err != nil {
		respondError(c, response.CodeInternal, "租户创建失败", err)
		return
	}
	response.Success(c, tenant)
}

// UpdateTenantStatus 启停租户
func (h *Handler) UpdateTenantStatus(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var req TenantStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}
	status := strings.ToLower(strings.TrimSpace(req.Status))
	if status != constants.TenantStatusActive && status != constants.TenantStatusDisabled {
		respondError(c, response.CodeBadRequest, "状态不合法", nil)
		return
	}

	tenant, err := h.TenantService.SetStatus(c.Request.Context(), id, status)
	if err != nil {
		if errors.Is(err, service.ErrTenantNotFound) {
			respondError(c, response.CodeNotFound, "租户不存在", nil)
			return
		}
		respondError(c, response.CodeInternal, "租户更新失败", err)
		return
	}
	response.Success(c, tenant)
}
