package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shiptrack-next/internal/models"
)

// tenantStateTTL 租户缓存过期时间。回调入口每个请求都要按租户号解析
// 租户，缓存短 TTL 即可显著降低数据库压力，又不至于让停用操作延迟太久。
const tenantStateTTL = 5 * time.Minute

// TenantState 回调入口使用的租户快照
type TenantState struct {
	ID     uint   `json:"id"`
	Code   string `json:"code"`
	Status string `json:"status"`
}

// BuildTenantState 从租户模型构建快照
func BuildTenantState(tenant *models.Tenant) *TenantState {
	if tenant == nil {
		return nil
	}
	return &TenantState{
		ID:     tenant.ID,
		Code:   tenant.Code,
		Status: tenant.Status,
	}
}

func tenantStateKey(code string) string {
	return fmt.Sprintf("tenant:code:%s", strings.ToLower(strings.TrimSpace(code)))
}

// GetTenantState 读取租户快照缓存
func GetTenantState(ctx context.Context, code string) (*TenantState, error) {
	var state TenantState
	found, err := GetJSON(ctx, tenantStateKey(code), &state)
	if err != nil || !found {
		return nil, err
	}
	return &state, nil
}

// SetTenantState 写入租户快照缓存
func SetTenantState(ctx context.Context, state *TenantState) error {
	if state == nil {
		return nil
	}
	return SetJSON(ctx, tenantStateKey(state.Code), state, tenantStateTTL)
}

// DelTenantState 删除租户快照缓存（租户状态变更后调用）
func DelTenantState(ctx context.Context, code string) error {
	return Del(ctx, tenantStateKey(code))
}
