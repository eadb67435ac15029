package repository

import (
	"errors"
	"strings"

	"github.com/shiptrack-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CustomerRepository 客户数据访问接口
type CustomerRepository interface {
	GetByID(tenantID, id uint) (*models.Customer, error)
	GetByIDForUpdate(tenantID, id uint) (*models.Customer, error)
	List(filter CustomerListFilter) ([]models.Customer, int64, error)
	Create(customer *models.Customer) error
	Update(customer *models.Customer) error
	DeleteByID(tenantID, id uint) (int64, error)
	AdjustScore(tenantID, id uint, delta int) (int64, error)
	ResetScoreIfUnjournaled(tenantID, id uint, expected int) (bool, error)
	ListScores(tenantID uint) ([]CustomerScore, error)
	SumScores(tenantID uint) (int64, error)
	WithTx(tx *gorm.DB) *GormCustomerRepository
}

// CustomerScore 客户聚合分快照
type CustomerScore struct {
	CustomerID    uint  `gorm:"column:id"`
	DeliveryScore int64 `gorm:"column:delivery_score"`
}

// GormCustomerRepository GORM 客户仓储实现
type GormCustomerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository 创建客户仓储
func NewCustomerRepository(db *gorm.DB) *GormCustomerRepository {
	return &GormCustomerRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCustomerRepository) WithTx(tx *gorm.DB) *GormCustomerRepository {
	if tx == nil {
		return r
	}
	return &GormCustomerRepository{db: tx}
}

// GetByID 按租户与ID获取客户
func (r *GormCustomerRepository) GetByID(tenantID, id uint) (*models.Customer, error) {
	if tenantID == 0 || id == 0 {
		return nil, nil
	}
	var customer models.Customer
	if err := r.db.Where("tenant_id = ? AND id = ?", tenantID, id).First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &customer, nil
}

// GetByIDForUpdate 按租户与ID加锁获取客户
func (r *GormCustomerRepository) GetByIDForUpdate(tenantID, id uint) (*models.Customer, error) {
	if tenantID == 0 || id == 0 {
		return nil, nil
	}
	var customer models.Customer
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&customer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &customer, nil
}

// List 分页查询客户
func (r *GormCustomerRepository) List(filter CustomerListFilter) ([]models.Customer, int64, error) {
	query := r.db.Model(&models.Customer{})
	if filter.TenantID != 0 {
		query = query.Where("tenant_id = ?", filter.TenantID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		query = query.Where("(name LIKE ? OR email LIKE ?)", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var customers []models.Customer
	if err := query.Order("id desc").Find(&customers).Error; err != nil {
		return nil, 0, err
	}
	return customers, total, nil
}

// Create 创建客户
func (r *GormCustomerRepository) Create(customer *models.Customer) error {
	return r.db.Create(customer).Error
}

// Update 更新客户
func (r *GormCustomerRepository) Update(customer *models.Customer) error {
	return r.db.Save(customer).Error
}

// DeleteByID 删除客户，返回删除行数
func (r *GormCustomerRepository) DeleteByID(tenantID, id uint) (int64, error) {
	if tenantID == 0 || id == 0 {
		return 0, nil
	}
	result := r.db.Where("tenant_id = ? AND id = ?", tenantID, id).Delete(&models.Customer{})
	return result.RowsAffected, result.Error
}

// AdjustScore 按增量调整信誉分，返回受影响行数（0 表示客户已不存在）
func (r *GormCustomerRepository) AdjustScore(tenantID, id uint, delta int) (int64, error) {
	if tenantID == 0 || id == 0 {
		return 0, nil
	}
	result := r.db.Model(&models.Customer{}).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		UpdateColumn("delivery_score", gorm.Expr("delivery_score + ?", delta))
	return result.RowsAffected, result.Error
}

// ResetScoreIfUnjournaled 保守修复：仅当分数仍为 expected 且流水中不存在
// 该客户的任何记录时才清零，两个条件同时在 UPDATE 语句内判定，避免与
// 计分引擎竞争。
func (r *GormCustomerRepository) ResetScoreIfUnjournaled(tenantID, id uint, expected int) (bool, error) {
	if tenantID == 0 || id == 0 {
		return false, nil
	}
	result := r.db.Model(&models.Customer{}).
		Where("tenant_id = ? AND id = ? AND delivery_score = ?", tenantID, id, expected).
		Where("NOT EXISTS (SELECT 1 FROM score_journal WHERE score_journal.customer_id = customers.id)").
		UpdateColumn("delivery_score", 0)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ListScores 查询租户下所有客户的聚合分
func (r *GormCustomerRepository) ListScores(tenantID uint) ([]CustomerScore, error) {
	var scores []CustomerScore
	if err := r.db.Model(&models.Customer{}).
		Select("id, delivery_score").
		Where("tenant_id = ?", tenantID).
		Order("id asc").
		Scan(&scores).Error; err != nil {
		return nil, err
	}
	return scores, nil
}

// SumScores 汇总租户下所有客户的聚合分
func (r *GormCustomerRepository) SumScores(tenantID uint) (int64, error) {
	var total int64
	if err := r.db.Model(&models.Customer{}).
		Where("tenant_id = ?", tenantID).
		Select("COALESCE(SUM(delivery_score), 0)").
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
