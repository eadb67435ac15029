package repository

import "time"

// CustomerListFilter 查询客户列表的过滤条件
type CustomerListFilter struct {
	Page     int
	PageSize int
	TenantID uint
	Search   string
}

// ShipmentListFilter 查询运单列表的过滤条件
type ShipmentListFilter struct {
	Page        int
	PageSize    int
	TenantID    uint
	CustomerID  uint
	CourierCode string
	Status      string
	TrackingNo  string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// ScoreJournalListFilter 查询信誉分流水的过滤条件
type ScoreJournalListFilter struct {
	Page       int
	PageSize   int
	TenantID   uint
	CustomerID uint
	Reason     string
}
