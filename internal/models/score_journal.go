package models

import "time"

// ScoreJournal 信誉分流水表（append-only）
//
// 每个运单终态至多产生一行流水，shipment_id 上的唯一索引是并发下
// "先写者生效" 判定的最终依据。行写入后 id/shipment_id/delta/reason/created_at
// 不再变更，由数据库触发器兜底（见 EnsureJournalGuards），customer_id 允许
// 在客户删除时置空以保留审计记录。
//
// 该表刻意不定义 UpdatedAt，避免 ORM 的自动触达语义污染 created_at 的含义。
type ScoreJournal struct {
	ID         string    `gorm:"type:varchar(36);primarykey" json:"id"`                                              // 流水ID（UUID，生成后不再变更）
	TenantID   uint      `gorm:"index;not null" json:"tenant_id"`                                                    // 租户ID
	ShipmentID uint      `gorm:"uniqueIndex;not null" json:"shipment_id"`                                            // 运单ID（全表唯一）
	CustomerID *uint     `gorm:"index" json:"customer_id"`                                                           // 客户ID（客户删除后置空）
	Delta      int       `gorm:"not null;check:chk_score_journal_delta,delta IN (-1,1)" json:"delta"`                // 信誉分增量
	Reason     string    `gorm:"type:varchar(20);not null;check:chk_score_journal_reason,reason IN ('delivered','returned','cancelled')" json:"reason"` // 计分原因
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`                                                         // 写入时间
}

// TableName 指定表名
func (ScoreJournal) TableName() string {
	return "score_journal"
}
