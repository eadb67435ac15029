package main

import (
	"github.com/shiptrack-next/internal/config"
	"github.com/shiptrack-next/internal/constants"
	"github.com/shiptrack-next/internal/logger"
	"github.com/shiptrack-next/internal/models"

	"github.com/shopspring/decimal"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("数据库连接失败: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("数据库迁移失败: %v", err)
	}

	// 演示租户
	tenants := []models.Tenant{
		{Code: "acme", Name: "Acme 电商", Status: constants.TenantStatusActive},
		{Code: "globex", Name: "Globex 跨境", Status: constants.TenantStatusActive},
	}
	tenantIDs := map[string]uint{}
	for _, tenant := range tenants {
		var existing models.Tenant
		if err := models.DB.Where("code = ?", tenant.Code).First(&existing).Error; err != nil {
			if err := models.DB.Create(&tenant).Error; err != nil {
				stdLog.Printf("创建租户失败 %s: %v", tenant.Code, err)
				continue
			}
			stdLog.Printf("创建租户: %s", tenant.Code)
			tenantIDs[tenant.Code] = tenant.ID
		} else {
			stdLog.Printf("租户已存在: %s", tenant.Code)
			tenantIDs[existing.Code] = existing.ID
		}
	}

	// 演示快递商
	couriers := []models.Courier{
		{Code: "sf", Name: "顺丰速运", Enabled: true},
		{Code: "yto", Name: "圆通速递", Enabled: true},
		{Code: "dhl", Name: "DHL Express", Enabled: true},
	}
	for _, courier := range couriers {
		var existing models.Courier
		if err := models.DB.Where("code = ?", courier.Code).First(&existing).Error; err != nil {
			if err := models.DB.Create(&courier).Error; err != nil {
				stdLog.Printf("创建快递商失败 %s: %v", courier.Code, err)
			} else {
				stdLog.Printf("创建快递商: %s", courier.Code)
			}
		} else {
			stdLog.Printf("快递商已存在: %s", courier.Code)
		}
	}

	acmeID := tenantIDs["acme"]
	if acmeID == 0 {
		stdLog.Printf("未找到演示租户 acme，跳过客户与运单初始化")
		return
	}

	// 演示客户
	customers := []models.Customer{
		{TenantID: acmeID, Name: "张三", Email: "zhangsan@example.com", Phone: "13800000001"},
		{TenantID: acmeID, Name: "李四", Email: "lisi@example.com", Phone: "13800000002"},
	}
	customerIDs := map[string]uint{}
	for _, customer := range customers {
		var existing models.Customer
		if err := models.DB.Where("tenant_id = ? AND email = ?", acmeID, customer.Email).First(&existing).Error; err != nil {
			if err := models.DB.Create(&customer).Error; err != nil {
				stdLog.Printf("创建客户失败 %s: %v", customer.Email, err)
				continue
			}
			stdLog.Printf("创建客户: %s", customer.Name)
			customerIDs[customer.Email] = customer.ID
		} else {
			stdLog.Printf("客户已存在: %s", existing.Name)
			customerIDs[existing.Email] = existing.ID
		}
	}

	// 演示运单
	shipments := []models.Shipment{
		{
			TenantID:      acmeID,
			TrackingNo:    "SF1234567890",
			CustomerID:    customerIDs["zhangsan@example.com"],
			CourierCode:   "sf",
			OrderNo:       "ORD-20260801-0001",
			Status:        constants.ShipmentStatusPending,
			DeclaredValue: models.NewMoneyFromDecimal(decimal.NewFromFloat(199.00)),
		},
		{
			TenantID:      acmeID,
			TrackingNo:    "YT9876543210",
			CustomerID:    customerIDs["lisi@example.com"],
			CourierCode:   "yto",
			OrderNo:       "ORD-20260801-0002",
			Status:        constants.ShipmentStatusInTransit,
			DeclaredValue: models.NewMoneyFromDecimal(decimal.NewFromFloat(58.50)),
			CODAmount:     models.NewMoneyFromDecimal(decimal.NewFromFloat(58.50)),
		},
	}
	for _, shipment := range shipments {
		if shipment.CustomerID == 0 {
			continue
		}
		var existing models.Shipment
		if err := models.DB.Where("tenant_id = ? AND tracking_no = ?", acmeID, shipment.TrackingNo).First(&existing).Error; err != nil {
			if err := models.DB.Create(&shipment).Error; err != nil {
				stdLog.Printf("创建运单失败 %s: %v", shipment.TrackingNo, err)
			} else {
				stdLog.Printf("创建运单: %s", shipment.TrackingNo)
			}
		} else {
			stdLog.Printf("运单已存在: %s", shipment.TrackingNo)
		}
	}

	stdLog.Printf("演示数据初始化完成")
}
