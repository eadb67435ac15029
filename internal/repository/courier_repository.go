package repository

import (
	"errors"
	"strings"

	"github.com/shiptrack-next/internal/models"

	"gorm.io/gorm"
)

// CourierRepository 快递商数据访问接口
type CourierRepository interface {
	GetByCode(code string) (*models.Courier, error)
	List() ([]models.Courier, error)
	Create(courier *models.Courier) error
	Update(courier *models.Courier) error
}

// GormCourierRepository GORM 快递商仓储实现
type GormCourierRepository struct {
	db *gorm.DB
}

// NewCourierRepository 创建快递商仓储
func NewCourierRepository(db *gorm.DB) *GormCourierRepository {
	return &GormCourierRepository{db: db}
}

// GetByCode 按编码获取快递商
func (r *GormCourierRepository) GetByCode(code string) (*models.Courier, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	var courier models.Courier
	if err := r.db.Where("code = ?", code).First(&courier).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &courier, nil
}

// List 查询全部快递商
func (r *GormCourierRepository) List() ([]models.Courier, error) {
	var couriers []models.Courier
	if err := r.db.Order("id asc").Find(&couriers).Error; err != nil {
		return nil, err
	}
	return couriers, nil
}

// Create 创建快递商
func (r *GormCourierRepository) Create(courier *models.Courier) error {
	return r.db.Create(courier).Error
}

// Update 更新快递商
func (r *GormCourierRepository) Update(courier *models.Courier) error {
	return r.db.Save(courier).Error
}
