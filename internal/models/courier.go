package models

import "time"

// Courier 快递商表
//
// Enabled 不设列默认值：gorm 创建时会省略带 default 标签的零值字段，
// 导致"创建即停用"的快递商落库为启用。默认启用由写入方显式赋值。
type Courier struct {
	ID        uint      `gorm:"primarykey" json:"id"`             // 主键
	Code      string    `gorm:"uniqueIndex;not null" json:"code"` // 快递商编码（回调路径使用）
	Name      string    `gorm:"not null" json:"name"`             // 快递商名称
	Enabled   bool      `gorm:"not null" json:"enabled"`          // 是否启用
	CreatedAt time.Time `json:"created_at"`                       // 创建时间
	UpdatedAt time.Time `json:"updated_at"`                       // 更新时间
}

// TableName 指定表名
func (Courier) TableName() string {
	return "couriers"
}
