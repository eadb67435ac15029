package service

import (
	"errors"
	"testing"

	"github.com/shiptrack-next/internal/constants"
)

func newCustomerService(env *serviceTestEnv) *CustomerService {
	return NewCustomerService(env.db, env.customerRepo, env.journalRepo)
}

func TestCustomerDeleteDetachesJournal(t *testing.T) {
	env := setupServiceTest(t, "customer_delete")
	svc := newCustomerService(env)
	tenant := env.createTenant(t, "acme")
	customer := env.createCustomer(t, tenant.ID, "alice")
	env.createCourier(t, "sf", true)
	shipment := env.createShipment(t, tenant.ID, customer.ID, "SF500", constants.ShipmentStatusOutForDelivery)

	if _, err := env.scoring.RecordTransition(tenant.ID, shipment.ID, constants.ShipmentStatusOutForDelivery, constants.ShipmentStatusDelivered); err != nil {
		t.Fatalf("scoring failed: %v", err)
	}

	if err := svc.Delete(tenant.ID, customer.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	got, err := env.customerRepo.GetByID(tenant.ID, customer.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected customer gone, got %+v", got)
	}

	// 流水行保留审计历史，只断开客户引用
	entry, err := env.journalRepo.GetByShipmentID(shipment.ID)
	if err != nil {
		t.Fatalf("get journal failed: %v", err)
	}
	if entry == nil {
		t.Fatalf("journal row must survive customer deletion")
	}
	if entry.CustomerID != nil {
		t.Fatalf("expected customer_id detached, got %v", *entry.CustomerID)
	}
	if entry.Delta != 1 || entry.Reason != constants.ScoreReasonDelivered {
		t.Fatalf("journal history must stay intact, got %+v", entry)
	}
}

func TestCustomerDeleteNotFound(t *testing.T) {
	env := setupServiceTest(t, "customer_delete_missing")
	svc := newCustomerService(env)
	tenant := env.createTenant(t, "acme")

	if err := svc.Delete(tenant.ID, 9999); !errors.Is(err, ErrCustomerNotFound) {
		t.Fatalf("expected customer not found, got %v", err)
	}
}

func TestCustomerCreateAndUpdate(t *testing.T) {
	env := setupServiceTest(t, "customer_crud")
	svc := newCustomerService(env)
	tenant := env.createTenant(t, "acme")

	customer, err := svc.Create(tenant.ID, CustomerInput{Name: " 张三 ", Email: "zhangsan@example.com"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if customer.Name != "张三" {
		t.Fatalf("expected trimmed name, got %q", customer.Name)
	}
	if customer.DeliveryScore != 0 {
		t.Fatalf("new customer must start at score 0, got %d", customer.DeliveryScore)
	}

	updated, err := svc.Update(tenant.ID, customer.ID, CustomerInput{Name: "李四", Email: "lisi@example.com", Phone: "13800000001"})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Name != "李四" || updated.Phone != "13800000001" {
		t.Fatalf("unexpected updated customer: %+v", updated)
	}
	if updated.DeliveryScore != 0 {
		t.Fatalf("update must not touch delivery score, got %d", updated.DeliveryScore)
	}
}
