package models

import "time"

// Shipment 运单表
//
// ScoredAt/ScoredDelta 一旦写入不再变更，作为运单侧的计分幂等标记。
type Shipment struct {
	ID            uint       `gorm:"primarykey" json:"id"`                                            // 主键
	TenantID      uint       `gorm:"index:idx_shipments_tenant_tracking,unique;not null" json:"tenant_id"` // 租户ID
	TrackingNo    string     `gorm:"index:idx_shipments_tenant_tracking,unique;not null" json:"tracking_no"` // 运单号（租户内唯一）
	CustomerID    uint       `gorm:"index;not null" json:"customer_id"`                               // 客户ID
	CourierCode   string     `gorm:"index;not null" json:"courier_code"`                              // 快递商编码
	OrderNo       string     `gorm:"index" json:"order_no,omitempty"`                                 // 关联订单号
	Status        string     `gorm:"index;not null" json:"status"`                                    // 运单状态
	DeclaredValue Money      `gorm:"type:decimal(20,2);not null;default:0" json:"declared_value"`     // 申报价值
	CODAmount     Money      `gorm:"type:decimal(20,2);not null;default:0" json:"cod_amount"`         // 代收货款
	ScoredAt      *time.Time `json:"scored_at"`                                                      // 计分时间（只写一次）
	ScoredDelta   *int       `json:"scored_delta"`                                                   // 已计增量（只写一次）
	CreatedAt     time.Time  `gorm:"index" json:"created_at"`                                        // 创建时间
	UpdatedAt     time.Time  `json:"updated_at"`                                                     // 更新时间
}

// TableName 指定表名
func (Shipment) TableName() string {
	return "shipments"
}

// Scored 判断运单是否已计分
func (s *Shipment) Scored() bool {
	return s != nil && s.ScoredAt != nil
}
