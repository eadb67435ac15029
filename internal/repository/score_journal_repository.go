package repository

import (
	"errors"

	"github.com/shiptrack-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ScoreJournalRepository 信誉分流水数据访问接口
type ScoreJournalRepository interface {
	InsertIgnoreDuplicate(entry *models.ScoreJournal) (bool, error)
	TouchCustomerRef(shipmentID, tenantID uint, customerID *uint) error
	GetByShipmentID(shipmentID uint) (*models.ScoreJournal, error)
	List(filter ScoreJournalListFilter) ([]models.ScoreJournal, int64, error)
	SumByTenant(tenantID uint) (int64, error)
	CustomerSums(tenantID uint) ([]CustomerJournalSum, error)
	OrphanStats(tenantID uint) (count int64, sum int64, err error)
	DetachCustomer(customerID uint) (int64, error)
	WithTx(tx *gorm.DB) *GormScoreJournalRepository
}

// CustomerJournalSum 单客户流水汇总
type CustomerJournalSum struct {
	CustomerID uint  `gorm:"column:customer_id"`
	Total      int64 `gorm:"column:total"`
}

// GormScoreJournalRepository GORM 流水仓储实现
type GormScoreJournalRepository struct {
	db *gorm.DB
}

// NewScoreJournalRepository 创建流水仓储
func NewScoreJournalRepository(db *gorm.DB) *GormScoreJournalRepository {
	return &GormScoreJournalRepository{db: db}
}

// WithTx 绑定事务
func (r *GormScoreJournalRepository) WithTx(tx *gorm.DB) *GormScoreJournalRepository {
	if tx == nil {
		return r
	}
	return &GormScoreJournalRepository{db: tx}
}

// InsertIgnoreDuplicate 条件插入流水，shipment_id 冲突时不做任何写入。
// 返回 true 表示本次调用真正创建了该行，即并发竞争中的先写者；
// 返回 false 表示该运单已有流水，调用方不得再执行任何计分副作用。
func (r *GormScoreJournalRepository) InsertIgnoreDuplicate(entry *models.ScoreJournal) (bool, error) {
	if entry == nil {
		return false, errors.New("journal entry is nil")
	}
	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "shipment_id"}},
		DoNothing: true,
	}).Create(entry)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// TouchCustomerRef 冲突后的补充更新：只允许触达 customer_id/tenant_id，
// 历史列（delta/reason/created_at/id）由触发器兜底拒绝任何改写。
func (r *GormScoreJournalRepository) TouchCustomerRef(shipmentID, tenantID uint, customerID *uint) error {
	if shipmentID == 0 {
		return nil
	}
	return r.db.Model(&models.ScoreJournal{}).
		Where("shipment_id = ?", shipmentID).
		UpdateColumns(map[string]interface{}{
			"customer_id": customerID,
			"tenant_id":   tenantID,
		}).Error
}

// GetByShipmentID 按运单ID获取流水
func (r *GormScoreJournalRepository) GetByShipmentID(shipmentID uint) (*models.ScoreJournal, error) {
	if shipmentID == 0 {
		return nil, nil
	}
	var entry models.ScoreJournal
	if err := r.db.Where("shipment_id = ?", shipmentID).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// List 分页查询流水
func (r *GormScoreJournalRepository) List(filter ScoreJournalListFilter) ([]models.ScoreJournal, int64, error) {
	query := r.db.Model(&models.ScoreJournal{})
	if filter.TenantID != 0 {
		query = query.Where("tenant_id = ?", filter.TenantID)
	}
	if filter.CustomerID != 0 {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.Reason != "" {
		query = query.Where("reason = ?", filter.Reason)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var entries []models.ScoreJournal
	if err := query.Order("created_at desc").Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// SumByTenant 汇总租户下全部流水增量（含 customer_id 已置空的历史行）
func (r *GormScoreJournalRepository) SumByTenant(tenantID uint) (int64, error) {
	var total int64
	if err := r.db.Model(&models.ScoreJournal{}).
		Where("tenant_id = ?", tenantID).
		Select("COALESCE(SUM(delta), 0)").
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// CustomerSums 按客户分组汇总流水增量
func (r *GormScoreJournalRepository) CustomerSums(tenantID uint) ([]CustomerJournalSum, error) {
	var sums []CustomerJournalSum
	if err := r.db.Model(&models.ScoreJournal{}).
		Select("customer_id, COALESCE(SUM(delta), 0) AS total").
		Where("tenant_id = ? AND customer_id IS NOT NULL", tenantID).
		Group("customer_id").
		Order("customer_id asc").
		Scan(&sums).Error; err != nil {
		return nil, err
	}
	return sums, nil
}

// OrphanStats 统计客户已删除（customer_id 为空）的历史流水
func (r *GormScoreJournalRepository) OrphanStats(tenantID uint) (int64, int64, error) {
	type orphanRow struct {
		Count int64 `gorm:"column:cnt"`
		Sum   int64 `gorm:"column:total"`
	}
	var row orphanRow
	if err := r.db.Model(&models.ScoreJournal{}).
		Select("COUNT(*) AS cnt, COALESCE(SUM(delta), 0) AS total").
		Where("tenant_id = ? AND customer_id IS NULL", tenantID).
		Scan(&row).Error; err != nil {
		return 0, 0, err
	}
	return row.Count, row.Sum, nil
}

// DetachCustomer 客户删除时置空流水引用，保留历史增量与原因供审计
func (r *GormScoreJournalRepository) DetachCustomer(customerID uint) (int64, error) {
	if customerID == 0 {
		return 0, nil
	}
	result := r.db.Model(&models.ScoreJournal{}).
		Where("customer_id = ?", customerID).
		UpdateColumn("customer_id", nil)
	return result.RowsAffected, result.Error
}
