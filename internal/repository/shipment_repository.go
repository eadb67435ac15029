package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/shiptrack-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ShipmentRepository 运单数据访问接口
type ShipmentRepository interface {
	GetByID(tenantID, id uint) (*models.Shipment, error)
	GetByIDForUpdate(tenantID, id uint) (*models.Shipment, error)
	GetByTrackingNo(tenantID uint, trackingNo string) (*models.Shipment, error)
	List(filter ShipmentListFilter) ([]models.Shipment, int64, error)
	Create(shipment *models.Shipment) error
	UpdateStatus(tenantID, id uint, status string) (int64, error)
	MarkScored(tenantID, id uint, scoredAt time.Time, delta int) (int64, error)
	WithTx(tx *gorm.DB) *GormShipmentRepository
}

// GormShipmentRepository GORM 运单仓储实现
type GormShipmentRepository struct {
	db *gorm.DB
}

// NewShipmentRepository 创建运单仓储
func NewShipmentRepository(db *gorm.DB) *GormShipmentRepository {
	return &GormShipmentRepository{db: db}
}

// WithTx 绑定事务
func (r *GormShipmentRepository) WithTx(tx *gorm.DB) *GormShipmentRepository {
	if tx == nil {
		return r
	}
	return &GormShipmentRepository{db: tx}
}

// GetByID 按租户与ID获取运单
func (r *GormShipmentRepository) GetByID(tenantID, id uint) (*models.Shipment, error) {
	if tenantID == 0 || id == 0 {
		return nil, nil
	}
	var shipment models.Shipment
	if err := r.db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&shipment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &shipment, nil
}

// GetByIDForUpdate 按租户与ID加锁获取运单
func (r *GormShipmentRepository) GetByIDForUpdate(tenantID, id uint) (*models.Shipment, error) {
	if tenantID == 0 || id == 0 {
		return nil, nil
	}
	var shipment models.Shipment
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&shipment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &shipment, nil
}

// GetByTrackingNo 按租户与运单号获取运单
func (r *GormShipmentRepository) GetByTrackingNo(tenantID uint, trackingNo string) (*models.Shipment, error) {
	trackingNo = strings.TrimSpace(trackingNo)
	if tenantID == 0 || trackingNo == "" {
		return nil, nil
	}
	var shipment models.Shipment
	if err := r.db.Where("tenant_id = ? AND tracking_no = ?", tenantID, trackingNo).First(&shipment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &shipment, nil
}

// List 分页查询运单
func (r *GormShipmentRepository) List(filter ShipmentListFilter) ([]models.Shipment, int64, error) {
	query := r.db.Model(&models.Shipment{})
	if filter.TenantID != 0 {
		query = query.Where("tenant_id = ?", filter.TenantID)
	}
	if filter.CustomerID != 0 {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.CourierCode != "" {
		query = query.Where("courier_code = ?", filter.CourierCode)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if trackingNo := strings.TrimSpace(filter.TrackingNo); trackingNo != "" {
		query = query.Where("tracking_no LIKE ?", "%"+trackingNo+"%")
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var shipments []models.Shipment
	if err := query.Order("id desc").Find(&shipments).Error; err != nil {
		return nil, 0, err
	}
	return shipments, total, nil
}

// Create 创建运单
func (r *GormShipmentRepository) Create(shipment *models.Shipment) error {
	return r.db.Create(shipment).Error
}

// UpdateStatus 更新运单状态，返回受影响行数
func (r *GormShipmentRepository) UpdateStatus(tenantID, id uint, status string) (int64, error) {
	if tenantID == 0 || id == 0 {
		return 0, nil
	}
	result := r.db.Model(&models.Shipment{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		Update("status", status)
	return result.RowsAffected, result.Error
}

// MarkScored 写入运单侧幂等标记，仅允许从未计分的运单写入一次
func (r *GormShipmentRepository) MarkScored(tenantID, id uint, scoredAt time.Time, delta int) (int64, error) {
	if tenantID == 0 || id == 0 {
		return 0, nil
	}
	result := r.db.Model(&models.Shipment{}).
		Where("tenant_id = ? AND id = ? AND scored_at IS NULL", tenantID, id).
		UpdateColumns(map[string]interface{}{
			"scored_at":    scoredAt,
			"scored_delta": delta,
		})
	return result.RowsAffected, result.Error
}
