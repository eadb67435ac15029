package admin

import (
	"strconv"
	"time"

	handlershared "github.com/shiptrack-next/internal/http/handlers/shared"
	"github.com/shiptrack-next/internal/http/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondError(c, code, msg, err)
}

func normalizePagination(page, pageSize int) (int, int) {
	return handlershared.NormalizePagination(page, pageSize)
}

// parseUintParam 解析路径中的数值 ID，非法时返回统一错误响应。
func parseUintParam(c *gin.Context, name string) (uint, bool) {
	value, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || value == 0 {
		respondError(c, response.CodeBadRequest, "参数不合法", nil)
		return 0, false
	}
	return uint(value), true
}

// tenantIDFromQuery 读取必填的 tenant_id 查询参数。后台是跨租户运营
// 入口，每个请求都必须显式声明操作哪个租户。
func tenantIDFromQuery(c *gin.Context) (uint, bool) {
	value, err := strconv.ParseUint(c.Query("tenant_id"), 10, 64)
	if err != nil || value == 0 {
		respondError(c, response.CodeBadRequest, "缺少 tenant_id 参数", nil)
		return 0, false
	}
	return uint(value), true
}

func parseTimeNullable(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
