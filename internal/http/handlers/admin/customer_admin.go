package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/shiptrack-next/internal/http/response"
	"github.com/shiptrack-next/internal/repository"
	"github.com/shiptrack-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CustomerRequest 客户创建/更新请求
type CustomerRequest struct {
	TenantID uint   `json:"tenant_id" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// ListCustomers 客户列表
func (h *Handler) ListCustomers(c *gin.Context) {
	tenantID, ok := tenantIDFromQuery(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	customers, total, err := h.CustomerService.List(repository.CustomerListFilter{
		Page:     page,
		PageSize: pageSize,
		TenantID: tenantID,
		Search:   strings.TrimSpace(c.Query("search")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "客户查询失败", err)
		return
	}

	response.SuccessWithPage(c, customers, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	})
}

// GetCustomer 客户详情（含当前信誉分）
func (h *Handler) GetCustomer(c *gin.Context) {
	tenantID, ok := tenantIDFromQuery(c)
	if !ok {
		return
	}
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	customer, err := h.CustomerService.Get(tenantID, id)
	if err != nil {
		if errors.Is(err, service.ErrCustomerNotFound) {
			respondError(c, response.CodeNotFound, "客户不存在", nil)
			return
		}
		respondError(c, response.CodeInternal, "客户查询失败", err)
		return
	}
	response.Success(c, customer)
}

// CreateCustomer 创建客户
func (h *Handler) CreateCustomer(c *gin.Context) {
	var req CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	customer, err := h.CustomerService.Create(req.TenantID, service.CustomerInput{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "客户创建失败", err)
		return
	}
	response.Success(c, customer)
}

// UpdateCustomer 更新客户基础信息
func (h *Handler) UpdateCustomer(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	var req CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	customer, err := h.CustomerService.Update(req.TenantID, id, service.CustomerInput{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		if errors.Is(err, service.ErrCustomerNotFound) {
			respondError(c, response.CodeNotFound, "客户不存在", nil)
			return
		}
		respondError(c, response.CodeInternal, "客户更新失败", err)
		return
	}
	response.Success(c, customer)
}

// DeleteCustomer 删除客户。对应的信誉分流水会保留并解除客户关联。
func (h *Handler) DeleteCustomer(c *gin.Context) {
	tenantID, ok := tenantIDFromQuery(c)
	if !ok {
		return
	}
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}

	if err := h.CustomerService.Delete(tenantID, id); err != nil {
		if errors.Is(err, service.ErrCustomerNotFound) {
			respondError(c, response.CodeNotFound, "客户不存在", nil)
			return
		}
		respondError(c, response.CodeInternal, "客户删除失败", err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}
