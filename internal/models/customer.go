package models

import "time"

// Customer 客户表，DeliveryScore 为信誉分聚合值
//
// DeliveryScore 只允许两个写入方：计分引擎（按 ±1 递增）与对账任务的
// 保守修复路径（清零），请求处理代码不得直接改写。
type Customer struct {
	ID            uint      `gorm:"primarykey" json:"id"`              // 主键
	TenantID      uint      `gorm:"index;not null" json:"tenant_id"`   // 租户ID
	Name          string    `gorm:"not null" json:"name"`              // 客户名称
	Email         string    `gorm:"index" json:"email,omitempty"`      // 联系邮箱
	Phone         string    `gorm:"type:varchar(32)" json:"phone,omitempty"` // 联系电话
	DeliveryScore int       `gorm:"not null;default:0" json:"delivery_score"` // 信誉分
	CreatedAt     time.Time `json:"created_at"`                        // 创建时间
	UpdatedAt     time.Time `json:"updated_at"`                        // 更新时间
}

// TableName 指定表名
func (Customer) TableName() string {
	return "customers"
}
