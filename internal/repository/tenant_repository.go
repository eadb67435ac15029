package repository

import (
	"errors"
	"strings"

	"github.com/shiptrack-next/internal/constants"
	"github.com/shiptrack-next/internal/models"

	"gorm.io/gorm"
)

// TenantRepository 租户数据访问接口
type TenantRepository interface {
	GetByID(id uint) (*models.Tenant, error)
	GetByCode(code string) (*models.Tenant, error)
	ListActive() ([]models.Tenant, error)
	Create(tenant *models.Tenant) error
	Update(tenant *models.Tenant) error
}

// GormTenantRepository GORM 租户仓储实现
type GormTenantRepository struct {
	db *gorm.DB
}

// NewTenantRepository 创建租户仓储
func NewTenantRepository(db *gorm.DB) *GormTenantRepository {
	return &GormTenantRepository{db: db}
}

// GetByID 按ID获取租户
func (r *GormTenantRepository) GetByID(id uint) (*models.Tenant, error) {
	if id == 0 {
		return nil, nil
	}
	var tenant models.Tenant
	if err := r.db.First(&tenant, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tenant, nil
}

// GetByCode 按编码获取租户
func (r *GormTenantRepository) GetByCode(code string) (*models.Tenant, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	var tenant models.Tenant
	if err := r.db.Where("code = ?", code).First(&tenant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tenant, nil
}

// ListActive 查询全部启用租户
func (r *GormTenantRepository) ListActive() ([]models.Tenant, error) {
	var tenants []models.Tenant
	if err := r.db.Where("status = ?", constants.TenantStatusActive).Order("id asc").Find(&tenants).Error; err != nil {
		return nil, err
	}
	return tenants, nil
}

// Create 创建租户
func (r *GormTenantRepository) Create(tenant *models.Tenant) error {
	return r.db.Create(tenant).Error
}

// Update 更新租户
func (r *GormTenantRepository) Update(tenant *models.Tenant) error {
	return r.db.Save(tenant).Error
}
