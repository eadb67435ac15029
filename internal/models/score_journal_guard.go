package models

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

const sqliteJournalGuard = `
CREATE TRIGGER IF NOT EXISTS trg_score_journal_immutable
BEFORE UPDATE ON score_journal
FOR EACH ROW
WHEN OLD.id <> NEW.id
  OR OLD.shipment_id <> NEW.shipment_id
  OR OLD.delta <> NEW.delta
  OR OLD.reason <> NEW.reason
  OR OLD.created_at <> NEW.created_at
BEGIN
  SELECT RAISE(ABORT, 'score_journal row is immutable');
END;
`

const postgresJournalGuardFunc = `
CREATE OR REPLACE FUNCTION score_journal_guard() RETURNS trigger AS $$
BEGIN
  IF NEW.id IS DISTINCT FROM OLD.id
     OR NEW.shipment_id IS DISTINCT FROM OLD.shipment_id
     OR NEW.delta IS DISTINCT FROM OLD.delta
     OR NEW.reason IS DISTINCT FROM OLD.reason
     OR NEW.created_at IS DISTINCT FROM OLD.created_at THEN
    RAISE EXCEPTION 'score_journal row is immutable';
  END IF;
  RETURN NEW;
END;
$$ LANGUAGE plpgsql;
`

const postgresJournalGuardDrop = `DROP TRIGGER IF EXISTS trg_score_journal_immutable ON score_journal;`

const postgresJournalGuardTrigger = `
CREATE TRIGGER trg_score_journal_immutable
BEFORE UPDATE ON score_journal
FOR EACH ROW EXECUTE FUNCTION score_journal_guard();
`

// EnsureJournalGuards 安装流水表的不可变触发器
//
// 计分引擎自身的 upsert 已经只更新 customer_id/tenant_id，触发器是针对
// 上游代码缺陷的纵深防御：任何试图改写历史列的 UPDATE 都会被存储层拒绝。
func EnsureJournalGuards(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("db is nil")
	}
	dialect := ""
	if db.Dialector != nil {
		dialect = strings.ToLower(strings.TrimSpace(db.Dialector.Name()))
	}
	switch dialect {
	case "", "sqlite":
		return db.Exec(sqliteJournalGuard).Error
	case "postgres", "postgresql":
		if err := db.Exec(postgresJournalGuardFunc).Error; err != nil {
			return err
		}
		if err := db.Exec(postgresJournalGuardDrop).Error; err != nil {
			return err
		}
		return db.Exec(postgresJournalGuardTrigger).Error
	default:
		return fmt.Errorf("unsupported database dialect for journal guards: %s", dialect)
	}
}
