package models

import "time"

// Tenant 租户表
type Tenant struct {
	ID        uint      `gorm:"primarykey" json:"id"`                 // 主键
	Code      string    `gorm:"uniqueIndex;not null" json:"code"`     // 租户编码
	Name      string    `gorm:"not null" json:"name"`                 // 租户名称
	Status    string    `gorm:"index;not null" json:"status"`         // 租户状态
	CreatedAt time.Time `json:"created_at"`                           // 创建时间
	UpdatedAt time.Time `json:"updated_at"`                           // 更新时间
}

// TableName 指定表名
func (Tenant) TableName() string {
	return "tenants"
}
