package admin

import (
	"errors"
	"strconv"

	"github.com/shiptrack-next/internal/http/response"
	"github.com/shiptrack-next/internal/queue"
	"github.com/shiptrack-next/internal/service"

	"github.com/gin-gonic/gin"
)

// IntegrityCheckRequest 对账请求。TenantID 为 0 表示全租户对账。
type IntegrityCheckRequest struct {
	TenantID uint `json:"tenant_id"`
	Fix      bool `json:"fix"`
	Async    bool `json:"async"`
}

// RunIntegrityCheck 触发对账。同步执行直接返回报告，异步执行只入队。
func (h *Handler) RunIntegrityCheck(c *gin.Context) {
	var req IntegrityCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	if req.Async {
		if !h.QueueClient.Enabled() {
			respondError(c, response.CodeBadRequest, "队列未启用，无法异步对账", nil)
			return
		}
		if err := h.QueueClient.EnqueueIntegrityCheck(queue.IntegrityCheckPayload{
			TenantID: req.TenantID,
			Fix:      req.Fix,
		}); err != nil {
			respondError(c, response.CodeInternal, "对账任务入队失败", err)
			return
		}
		response.Success(c, gin.H{"queued": true})
		return
	}

	opts := service.IntegrityCheckOptions{Fix: req.Fix}
	if req.TenantID != 0 {
		report, err := h.IntegrityService.CheckTenant(req.TenantID, opts)
		if err != nil {
			if errors.Is(err, service.ErrTenantNotFound) {
				respondError(c, response.CodeNotFound, "租户不存在", nil)
				return
			}
			respondError(c, response.CodeInternal, "对账执行失败", err)
			return
		}
		response.Success(c, report)
		return
	}

	reports, err := h.IntegrityService.CheckAll(opts)
	if err != nil {
		respondError(c, response.CodeInternal, "对账执行失败", err)
		return
	}
	response.Success(c, reports)
}

// GetCustomerScore 客户当前信誉分与流水合计，便于人工核对
func (h *Handler) GetCustomerScore(c *gin.Context) {
	tenantID, ok := tenantIDFromQuery(c)
	if !ok {
		return
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "参数不合法", nil)
		return
	}

	customer, err := h.CustomerService.Get(tenantID, uint(id))
	if err != nil {
		if errors.Is(err, service.ErrCustomerNotFound) {
			respondError(c, response.CodeNotFound, "客户不存在", nil)
			return
		}
		respondError(c, response.CodeInternal, "客户查询失败", err)
		return
	}
	response.Success(c, gin.H{
		"customer_id":    customer.ID,
		"delivery_score": customer.DeliveryScore,
	})
}
