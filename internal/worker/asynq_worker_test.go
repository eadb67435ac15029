package worker

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shiptrack-next/internal/constants"
	"github.com/shiptrack-next/internal/models"
	"github.com/shiptrack-next/internal/provider"
	"github.com/shiptrack-next/internal/queue"
	"github.com/shiptrack-next/internal/repository"
	"github.com/shiptrack-next/internal/service"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

type workerTestEnv struct {
	db           *gorm.DB
	consumer     *Consumer
	customerRepo *repository.GormCustomerRepository
	shipmentRepo *repository.GormShipmentRepository
}

func setupWorkerTest(t *testing.T) *workerTestEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:worker_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	tenantRepo := repository.NewTenantRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	courierRepo := repository.NewCourierRepository(db)
	shipmentRepo := repository.NewShipmentRepository(db)
	journalRepo := repository.NewScoreJournalRepository(db)
	scoring := service.NewScoringService(db, customerRepo, shipmentRepo, journalRepo)

	container := &provider.Container{
		TenantRepo:       tenantRepo,
		CustomerRepo:     customerRepo,
		CourierRepo:      courierRepo,
		ShipmentRepo:     shipmentRepo,
		JournalRepo:      journalRepo,
		ScoringService:   scoring,
		ShipmentService:  service.NewShipmentService(shipmentRepo, customerRepo, courierRepo, scoring),
		IntegrityService: service.NewIntegrityService(tenantRepo, customerRepo, journalRepo),
	}

	return &workerTestEnv{
		db:           db,
		consumer:     NewConsumer(container),
		customerRepo: customerRepo,
		shipmentRepo: shipmentRepo,
	}
}

func (env *workerTestEnv) seedDeliverableShipment(t *testing.T) (*models.Tenant, *models.Customer, *models.Shipment) {
	t.Helper()
	tenant := &models.Tenant{Code: "acme", Name: "acme", Status: constants.TenantStatusActive}
	if err := env.db.Create(tenant).Error; err != nil {
		t.Fatalf("create tenant failed: %v", err)
	}
	customer := &models.Customer{TenantID: tenant.ID, Name: "alice", Email: "alice@example.com"}
	if err := env.db.Create(customer).Error; err != nil {
		t.Fatalf("create customer failed: %v", err)
	}
	courier := &models.Courier{Code: "sf", Name: "sf", Enabled: true}
	if err := env.db.Create(courier).Error; err != nil {
		t.Fatalf("create courier failed: %v", err)
	}
	shipment := &models.Shipment{
		TenantID:    tenant.ID,
		TrackingNo:  "SF800",
		CustomerID:  customer.ID,
		CourierCode: "sf",
		Status:      constants.ShipmentStatusOutForDelivery,
	}
	if err := env.db.Create(shipment).Error; err != nil {
		t.Fatalf("create shipment failed: %v", err)
	}
	return tenant, customer, shipment
}

func newTransitionTask(t *testing.T, payload queue.ShipmentTransitionPayload) *asynq.Task {
	t.Helper()
	task, err := queue.NewShipmentTransitionTask(payload)
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	return task
}

func TestHandleShipmentTransitionScores(t *testing.T) {
	env := setupWorkerTest(t)
	tenant, customer, _ := env.seedDeliverableShipment(t)

	task := newTransitionTask(t, queue.ShipmentTransitionPayload{
		TenantID:    tenant.ID,
		CourierCode: "sf",
		TrackingNo:  "SF800",
		OldStatus:   constants.ShipmentStatusOutForDelivery,
		NewStatus:   constants.ShipmentStatusDelivered,
	})
	if err := env.consumer.handleShipmentTransition(context.Background(), task); err != nil {
		t.Fatalf("handle failed: %v", err)
	}

	got, err := env.customerRepo.GetByID(tenant.ID, customer.ID)
	if err != nil {
		t.Fatalf("get customer failed: %v", err)
	}
	if got.DeliveryScore != 1 {
		t.Fatalf("expected score 1, got %d", got.DeliveryScore)
	}

	// 至少一次投递：同一任务重复消费不产生重复计分
	if err := env.consumer.handleShipmentTransition(context.Background(), task); err != nil {
		t.Fatalf("redelivery failed: %v", err)
	}
	got, err = env.customerRepo.GetByID(tenant.ID, customer.ID)
	if err != nil {
		t.Fatalf("get customer failed: %v", err)
	}
	if got.DeliveryScore != 1 {
		t.Fatalf("redelivery must not double-count, got %d", got.DeliveryScore)
	}
}

func TestHandleShipmentTransitionSwallowsDeadEvents(t *testing.T) {
	env := setupWorkerTest(t)
	tenant, _, _ := env.seedDeliverableShipment(t)

	// 业务上注定失败的事件吞掉不重试
	deadPayloads := []queue.ShipmentTransitionPayload{
		{TenantID: tenant.ID, CourierCode: "sf", TrackingNo: "SF999", NewStatus: constants.ShipmentStatusDelivered},
		{TenantID: tenant.ID, CourierCode: "nobody", TrackingNo: "SF800", NewStatus: constants.ShipmentStatusDelivered},
		{TenantID: tenant.ID, CourierCode: "sf", TrackingNo: "SF800", NewStatus: "teleported"},
		{TenantID: 0, CourierCode: "sf", TrackingNo: "SF800", NewStatus: constants.ShipmentStatusDelivered},
	}
	for i, payload := range deadPayloads {
		if err := env.consumer.handleShipmentTransition(context.Background(), newTransitionTask(t, payload)); err != nil {
			t.Fatalf("dead payload %d must not be retried, got %v", i, err)
		}
	}

	// 报文损坏返回 error 交给重试
	broken := asynq.NewTask(queue.TaskShipmentTransition, []byte("{not json"))
	if err := env.consumer.handleShipmentTransition(context.Background(), broken); err == nil {
		t.Fatalf("broken payload must return an error")
	}
}

func TestHandleIntegrityCheck(t *testing.T) {
	env := setupWorkerTest(t)
	tenant, _, _ := env.seedDeliverableShipment(t)

	task, err := queue.NewIntegrityCheckTask(queue.IntegrityCheckPayload{TenantID: tenant.ID})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := env.consumer.handleIntegrityCheck(context.Background(), task); err != nil {
		t.Fatalf("handle failed: %v", err)
	}

	// 租户不存在直接吞掉
	task, err = queue.NewIntegrityCheckTask(queue.IntegrityCheckPayload{TenantID: 9999})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := env.consumer.handleIntegrityCheck(context.Background(), task); err != nil {
		t.Fatalf("missing tenant must not be retried, got %v", err)
	}

	// TenantID 为 0 表示对全部启用租户对账
	task, err = queue.NewIntegrityCheckTask(queue.IntegrityCheckPayload{})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := env.consumer.handleIntegrityCheck(context.Background(), task); err != nil {
		t.Fatalf("check-all failed: %v", err)
	}
}
