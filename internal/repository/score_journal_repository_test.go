package repository

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shiptrack-next/internal/constants"
	"github.com/shiptrack-next/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func setupScoreJournalRepositoryTest(t *testing.T) (*GormScoreJournalRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:score_journal_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	return NewScoreJournalRepository(db), db
}

func newJournalEntry(tenantID, shipmentID uint, customerID *uint, delta int, reason string) *models.ScoreJournal {
	return &models.ScoreJournal{
		ID:         uuid.NewString(),
		TenantID:   tenantID,
		ShipmentID: shipmentID,
		CustomerID: customerID,
		Delta:      delta,
		Reason:     reason,
		CreatedAt:  time.Now().UTC().Truncate(time.Second),
	}
}

func TestInsertIgnoreDuplicateFirstWriterWins(t *testing.T) {
	repo, db := setupScoreJournalRepositoryTest(t)
	customerID := uint(7)

	created, err := repo.InsertIgnoreDuplicate(newJournalEntry(1, 100, &customerID, 1, constants.ScoreReasonDelivered))
	if err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	if !created {
		t.Fatalf("expected first insert to create the row")
	}

	// 同一运单的第二次插入必须静默落空，不报错也不产生新行
	created, err = repo.InsertIgnoreDuplicate(newJournalEntry(1, 100, &customerID, -1, constants.ScoreReasonCancelled))
	if err != nil {
		t.Fatalf("duplicate insert failed: %v", err)
	}
	if created {
		t.Fatalf("expected duplicate insert to be ignored")
	}

	var count int64
	if err := db.Model(&models.ScoreJournal{}).Where("shipment_id = ?", 100).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one journal row, got %d", count)
	}

	entry, err := repo.GetByShipmentID(100)
	if err != nil {
		t.Fatalf("get by shipment failed: %v", err)
	}
	if entry == nil || entry.Delta != 1 || entry.Reason != constants.ScoreReasonDelivered {
		t.Fatalf("expected the first writer's row to survive, got %+v", entry)
	}
}

func TestJournalGuardRejectsHistoryRewrites(t *testing.T) {
	repo, db := setupScoreJournalRepositoryTest(t)
	customerID := uint(3)
	entry := newJournalEntry(1, 200, &customerID, 1, constants.ScoreReasonDelivered)
	if _, err := repo.InsertIgnoreDuplicate(entry); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	cases := []struct {
		name string
		sql  string
	}{
		{"delta", "UPDATE score_journal SET delta = -1 WHERE shipment_id = 200"},
		{"reason", "UPDATE score_journal SET reason = 'cancelled' WHERE shipment_id = 200"},
		{"shipment_id", "UPDATE score_journal SET shipment_id = 201 WHERE shipment_id = 200"},
		{"created_at", "UPDATE score_journal SET created_at = '2000-01-01 00:00:00' WHERE shipment_id = 200"},
		{"id", "UPDATE score_journal SET id = 'forged-id' WHERE shipment_id = 200"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := db.Exec(tc.sql).Error
			if err == nil {
				t.Fatalf("expected update of %s to be rejected", tc.name)
			}
			if !strings.Contains(err.Error(), "immutable") {
				t.Fatalf("expected immutability error, got: %v", err)
			}
		})
	}

	// 历史列保持原值
	got, err := repo.GetByShipmentID(200)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got == nil || got.Delta != 1 || got.Reason != constants.ScoreReasonDelivered || got.ID != entry.ID {
		t.Fatalf("journal row was modified despite guard: %+v", got)
	}
}

func TestJournalGuardAllowsCustomerRefUpdates(t *testing.T) {
	repo, _ := setupScoreJournalRepositoryTest(t)
	customerID := uint(5)
	if _, err := repo.InsertIgnoreDuplicate(newJournalEntry(1, 300, &customerID, -1, constants.ScoreReasonReturned)); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	// customer_id 是引用列而非历史列，置空与回填都必须放行
	detached, err := repo.DetachCustomer(customerID)
	if err != nil {
		t.Fatalf("detach failed: %v", err)
	}
	if detached != 1 {
		t.Fatalf("expected one detached row, got %d", detached)
	}
	entry, err := repo.GetByShipmentID(300)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if entry.CustomerID != nil {
		t.Fatalf("expected customer_id to be nulled, got %v", *entry.CustomerID)
	}
	if entry.Delta != -1 || entry.Reason != constants.ScoreReasonReturned {
		t.Fatalf("detach must keep history columns, got %+v", entry)
	}

	if err := repo.TouchCustomerRef(300, 1, &customerID); err != nil {
		t.Fatalf("touch customer ref failed: %v", err)
	}
	entry, err = repo.GetByShipmentID(300)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if entry.CustomerID == nil || *entry.CustomerID != customerID {
		t.Fatalf("expected customer_id restored, got %+v", entry.CustomerID)
	}
}

func TestJournalSumsAndOrphanStats(t *testing.T) {
	repo, _ := setupScoreJournalRepositoryTest(t)
	customerA := uint(11)
	customerB := uint(12)

	entries := []*models.ScoreJournal{
		newJournalEntry(1, 401, &customerA, 1, constants.ScoreReasonDelivered),
		newJournalEntry(1, 402, &customerA, -1, constants.ScoreReasonCancelled),
		newJournalEntry(1, 403, &customerB, 1, constants.ScoreReasonDelivered),
		newJournalEntry(1, 404, nil, -1, constants.ScoreReasonReturned),
		newJournalEntry(2, 405, &customerA, 1, constants.ScoreReasonDelivered),
	}
	for _, entry := range entries {
		if _, err := repo.InsertIgnoreDuplicate(entry); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
	}

	total, err := repo.SumByTenant(1)
	if err != nil {
		t.Fatalf("sum by tenant failed: %v", err)
	}
	if total != 0 {
		t.Fatalf("expected tenant 1 journal sum 0, got %d", total)
	}

	sums, err := repo.CustomerSums(1)
	if err != nil {
		t.Fatalf("customer sums failed: %v", err)
	}
	if len(sums) != 2 {
		t.Fatalf("expected two customer groups, got %d", len(sums))
	}
	if sums[0].CustomerID != customerA || sums[0].Total != 0 {
		t.Fatalf("unexpected sum for customer A: %+v", sums[0])
	}
	if sums[1].CustomerID != customerB || sums[1].Total != 1 {
		t.Fatalf("unexpected sum for customer B: %+v", sums[1])
	}

	count, orphanSum, err := repo.OrphanStats(1)
	if err != nil {
		t.Fatalf("orphan stats failed: %v", err)
	}
	if count != 1 || orphanSum != -1 {
		t.Fatalf("unexpected orphan stats: count=%d sum=%d", count, orphanSum)
	}
}
