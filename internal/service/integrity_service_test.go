package service

import (
	"errors"
	"testing"
	"time"

	"github.com/shiptrack-next/internal/constants"
	"github.com/shiptrack-next/internal/models"

	"github.com/google/uuid"
)

func newIntegrityService(env *serviceTestEnv) *IntegrityService {
	return NewIntegrityService(env.tenantRepo, env.customerRepo, env.journalRepo)
}

func TestIntegrityCheckClean(t *testing.T) {
	env := setupServiceTest(t, "integrity_clean")
	svc := newIntegrityService(env)
	tenant := env.createTenant(t, "acme")
	customer := env.createCustomer(t, tenant.ID, "alice")
	env.createCourier(t, "sf", true)
	shipment := env.createShipment(t, tenant.ID, customer.ID, "SF600", constants.ShipmentStatusOutForDelivery)
	if _, err := env.scoring.RecordTransition(tenant.ID, shipment.ID, constants.ShipmentStatusOutForDelivery, constants.ShipmentStatusDelivered); err != nil {
		t.Fatalf("scoring failed: %v", err)
	}

	report, err := svc.CheckTenant(tenant.ID, IntegrityCheckOptions{})
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if report.Mismatch {
		t.Fatalf("expected clean report, got %+v", report)
	}
	if report.JournalSum != 1 || report.AggregateSum != 1 {
		t.Fatalf("expected sums 1/1, got %d/%d", report.JournalSum, report.AggregateSum)
	}
}

func TestIntegrityFixesUnjournaledDrift(t *testing.T) {
	env := setupServiceTest(t, "integrity_unjournaled")
	svc := newIntegrityService(env)
	tenant := env.createTenant(t, "acme")
	customer := env.createCustomer(t, tenant.ID, "drifted")

	// 绕过计分引擎直接篡改聚合分，模拟脏数据
	if _, err := env.customerRepo.AdjustScore(tenant.ID, customer.ID, 5); err != nil {
		t.Fatalf("adjust failed: %v", err)
	}

	// 只报告
	report, err := svc.CheckTenant(tenant.ID, IntegrityCheckOptions{})
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !report.Mismatch || len(report.Drifts) != 1 {
		t.Fatalf("expected one drift, got %+v", report)
	}
	if report.Fixed != 0 {
		t.Fatalf("report-only run must not fix, got %d", report.Fixed)
	}
	if got := env.customerScore(t, tenant.ID, customer.ID); got != 5 {
		t.Fatalf("report-only run must not touch score, got %d", got)
	}

	// 启用修复后清零
	report, err = svc.CheckTenant(tenant.ID, IntegrityCheckOptions{Fix: true})
	if err != nil {
		t.Fatalf("fix run failed: %v", err)
	}
	if report.Fixed != 1 || len(report.Drifts) != 1 || !report.Drifts[0].Fixed {
		t.Fatalf("expected one fixed drift, got %+v", report)
	}
	if got := env.customerScore(t, tenant.ID, customer.ID); got != 0 {
		t.Fatalf("expected score reset to 0, got %d", got)
	}

	// 修复后再次对账应干净
	report, err = svc.CheckTenant(tenant.ID, IntegrityCheckOptions{})
	if err != nil {
		t.Fatalf("recheck failed: %v", err)
	}
	if report.Mismatch {
		t.Fatalf("expected clean report after fix, got %+v", report)
	}
}

func TestIntegrityNeverFixesJournaledDrift(t *testing.T) {
	env := setupServiceTest(t, "integrity_journaled")
	svc := newIntegrityService(env)
	tenant := env.createTenant(t, "acme")
	customer := env.createCustomer(t, tenant.ID, "bob")
	env.createCourier(t, "sf", true)
	shipment := env.createShipment(t, tenant.ID, customer.ID, "SF601", constants.ShipmentStatusOutForDelivery)
	if _, err := env.scoring.RecordTransition(tenant.ID, shipment.ID, constants.ShipmentStatusOutForDelivery, constants.ShipmentStatusDelivered); err != nil {
		t.Fatalf("scoring failed: %v", err)
	}
	// 流水记 +1，聚合被外部改成 +4
	if _, err := env.customerRepo.AdjustScore(tenant.ID, customer.ID, 3); err != nil {
		t.Fatalf("adjust failed: %v", err)
	}

	report, err := svc.CheckTenant(tenant.ID, IntegrityCheckOptions{Fix: true})
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !report.Mismatch || len(report.Drifts) != 1 {
		t.Fatalf("expected one drift, got %+v", report)
	}
	drift := report.Drifts[0]
	if drift.JournalDelta != 1 || drift.LiveScore != 4 || drift.Diff != -3 {
		t.Fatalf("unexpected drift: %+v", drift)
	}
	if drift.Fixed || report.Fixed != 0 {
		t.Fatalf("journaled drift must never be auto-fixed, got %+v", report)
	}
	if got := env.customerScore(t, tenant.ID, customer.ID); got != 4 {
		t.Fatalf("score must stay untouched, got %d", got)
	}
}

func TestIntegrityReportsMissingCustomerRefs(t *testing.T) {
	env := setupServiceTest(t, "integrity_missing_customer")
	svc := newIntegrityService(env)
	tenant := env.createTenant(t, "acme")

	// 流水仍指向的客户行已不存在（未走删除流程的异常路径）
	ghost := uint(4242)
	if _, err := env.journalRepo.InsertIgnoreDuplicate(&models.ScoreJournal{
		ID:         uuid.NewString(),
		TenantID:   tenant.ID,
		ShipmentID: 700,
		CustomerID: &ghost,
		Delta:      1,
		Reason:     constants.ScoreReasonDelivered,
		CreatedAt:  time.Now(),
	}); err != nil {
		t.Fatalf("insert journal failed: %v", err)
	}

	report, err := svc.CheckTenant(tenant.ID, IntegrityCheckOptions{Fix: true})
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !report.Mismatch || len(report.Drifts) != 1 {
		t.Fatalf("expected one drift, got %+v", report)
	}
	drift := report.Drifts[0]
	if !drift.Missing || drift.CustomerID != ghost || drift.JournalDelta != 1 {
		t.Fatalf("unexpected drift: %+v", drift)
	}
	if report.Fixed != 0 {
		t.Fatalf("missing-customer drift is report-only, got fixed=%d", report.Fixed)
	}
}

func TestIntegrityOrphansAreNotMismatch(t *testing.T) {
	env := setupServiceTest(t, "integrity_orphans")
	svc := newIntegrityService(env)
	tenant := env.createTenant(t, "acme")

	// 正常删除流程留下的 customer_id 为空的流水行
	if _, err := env.journalRepo.InsertIgnoreDuplicate(&models.ScoreJournal{
		ID:         uuid.NewString(),
		TenantID:   tenant.ID,
		ShipmentID: 701,
		CustomerID: nil,
		Delta:      -1,
		Reason:     constants.ScoreReasonReturned,
		CreatedAt:  time.Now(),
	}); err != nil {
		t.Fatalf("insert journal failed: %v", err)
	}

	report, err := svc.CheckTenant(tenant.ID, IntegrityCheckOptions{})
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if report.Mismatch {
		t.Fatalf("orphan rows alone must not flag mismatch, got %+v", report)
	}
	if report.OrphanEntries != 1 || report.OrphanSum != -1 {
		t.Fatalf("unexpected orphan stats: %+v", report)
	}
}

func TestIntegrityCheckAll(t *testing.T) {
	env := setupServiceTest(t, "integrity_all")
	svc := newIntegrityService(env)
	env.createTenant(t, "acme")
	env.createTenant(t, "globex")
	disabled := env.createTenant(t, "dormant")
	disabled.Status = constants.TenantStatusDisabled
	if err := env.tenantRepo.Update(disabled); err != nil {
		t.Fatalf("disable tenant failed: %v", err)
	}

	reports, err := svc.CheckAll(IntegrityCheckOptions{})
	if err != nil {
		t.Fatalf("check all failed: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("expected two active-tenant reports, got %d", len(reports))
	}

	if _, err := svc.CheckTenant(9999, IntegrityCheckOptions{}); !errors.Is(err, ErrTenantNotFound) {
		t.Fatalf("expected tenant not found, got %v", err)
	}
}
