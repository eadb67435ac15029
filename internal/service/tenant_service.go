package service

import (
	"context"
	"strings"

	"github.com/shiptrack-next/internal/cache"
	"github.com/shiptrack-next/internal/constants"
	"github.com/shiptrack-next/internal/logger"
	"github.com/shiptrack-next/internal/models"
	"github.com/shiptrack-next/internal/repository"
)

// TenantService 租户服务
type TenantService struct {
	tenantRepo repository.TenantRepository
}

// NewTenantService 创建租户服务
func NewTenantService(tenantRepo repository.TenantRepository) *TenantService {
	return &TenantService{tenantRepo: tenantRepo}
}

// Get 获取租户
func (s *TenantService) Get(id uint) (*models.Tenant, error) {
	tenant, err := s.tenantRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, ErrTenantNotFound
	}
	return tenant, nil
}

// ListActive 列出全部启用租户
func (s *TenantService) ListActive() ([]models.Tenant, error) {
	return s.tenantRepo.ListActive()
}

// ResolveActiveByCode 按租户号解析启用中的租户。回调入口每个请求都会
// 调用，优先走缓存快照，未命中再回源数据库并回填。
func (s *TenantService) ResolveActiveByCode(ctx context.Context, code string) (*cache.TenantState, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return nil, ErrTenantNotFound
	}

	state, err := cache.GetTenantState(ctx, code)
	if err != nil {
		logger.Warnw("tenant_cache_read_failed", "tenant_code", code, "error", err)
	}
	if state == nil {
		tenant, err := s.tenantRepo.GetByCode(code)
		if err != nil {
			return nil, err
		}
		if tenant == nil {
			return nil, ErrTenantNotFound
		}
		state = cache.BuildTenantState(tenant)
		if err := cache.SetTenantState(ctx, state); err != nil {
			logger.Warnw("tenant_cache_write_failed", "tenant_code", code, "error", err)
		}
	}

	if state.Status != constants.TenantStatusActive {
		return nil, ErrTenantDisabled
	}
	return state, nil
}

// SetStatus 更新租户状态并失效缓存快照
func (s *TenantService) SetStatus(ctx context.Context, id uint, status string) (*models.Tenant, error) {
	tenant, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	tenant.Status = status
	if err := s.tenantRepo.Update(tenant); err != nil {
		return nil, err
	}
	if err := cache.DelTenantState(ctx, tenant.Code); err != nil {
		logger.Warnw("tenant_cache_del_failed", "tenant_code", tenant.Code, "error", err)
	}
	return tenant, nil
}
