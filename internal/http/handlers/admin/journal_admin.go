package admin

import (
	"strconv"
	"strings"

	"github.com/shiptrack-next/internal/http/response"
	"github.com/shiptrack-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListScoreJournal 信誉分流水列表。流水只读，任何修改入口都不存在。
func (h *Handler) ListScoreJournal(c *gin.Context) {
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

	entries, total, err := h.JournalRepo.List(repository.ScoreJournalListFilter{
		Page:       page,
		PageSize:   pageSize,
		TenantID:   tenantID,
		CustomerID: customerID,
		Reason:     strings.TrimSpace(c.Query("reason")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "流水查询失败", err)
		return
	}

	response.SuccessWithPage(c, entries, response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	})
}

// GetShipmentJournal 按运单查询对应的流水行
func (h *Handler) GetShipmentJournal(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		return
	}
	entry, err := h.JournalRepo.GetByShipmentID(id)
	if err != nil {
		respondError(c, response.CodeInternal, "流水查询失败", err)
		return
	}
	if entry == nil {
		respondError(c, response.CodeNotFound, "该运单未计分", nil)
		return
	}
	response.Success(c, entry)
}
