package service

import (
	"errors"
	"strings"
	"time"

	"github.com/shiptrack-next/internal/logger"
	"github.com/shiptrack-next/internal/models"
	"github.com/shiptrack-next/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// 计分跳过原因常量
const (
	SkipReasonNotTerminal     = "not_terminal"
	SkipReasonAlreadyFinal    = "already_final"
	SkipReasonAlreadyScored   = "already_scored"
	SkipReasonCustomerMissing = "customer_missing"
)

// errCustomerVanished 事务内发现客户已被并发删除，用于触发回滚
var errCustomerVanished = errors.New("customer vanished during scoring")

// ScoreOutcome 一次计分调用的结果：要么计分成功，要么带原因跳过。
// 跳过不是错误，幂等重放与非计分迁移都是正常业务路径。
type ScoreOutcome struct {
	Scored     bool   `json:"scored"`
	SkipReason string `json:"skip_reason,omitempty"`
	Delta      int    `json:"delta,omitempty"`
	JournalID  string `json:"journal_id,omitempty"`
}

// ScoringService 信誉分计分引擎
type ScoringService struct {
	db           *gorm.DB
	customerRepo repository.CustomerRepository
	shipmentRepo repository.ShipmentRepository
	journalRepo  repository.ScoreJournalRepository
}

// NewScoringService 创建计分引擎
func NewScoringService(
	db *gorm.DB,
	customerRepo repository.CustomerRepository,
	shipmentRepo repository.ShipmentRepository,
	journalRepo repository.ScoreJournalRepository,
) *ScoringService {
	return &ScoringService{
		db:           db,
		customerRepo: customerRepo,
		shipmentRepo: shipmentRepo,
		journalRepo:  journalRepo,
	}
}

// RecordTransition 记录一次运单状态迁移并按需计分。
//
// 任意并发调用方（回调、轮询任务、人工改状态）都可以重复上报同一迁移，
// 正确性不依赖调用方互斥：流水表 shipment_id 唯一索引决定先写者，只有
// 真正创建流水行的调用才执行聚合分与运单标记的副作用，其余调用得到
// already_scored 跳过。事务内任何失败都整体回滚，不存在半完成状态。
func (s *ScoringService) RecordTransition(tenantID, shipmentID uint, oldStatus, newStatus string) (*ScoreOutcome, error) {
	if tenantID == 0 || shipmentID == 0 {
		return nil, ErrScoringInvalidInput
	}
	oldStatus = NormalizeShipmentStatus(oldStatus)
	newStatus = NormalizeShipmentStatus(newStatus)
	if !IsValidShipmentStatus(oldStatus) || !IsValidShipmentStatus(newStatus) {
		return nil, ErrShipmentStatusInvalid
	}

	log := logger.SW(
		"tenant_id", tenantID,
		"shipment_id", shipmentID,
		"old_status", oldStatus,
		"new_status", newStatus,
	)

	delta, scoreable := ScoreDelta(newStatus)
	if !scoreable {
		log.Debugw("scoring_skip_not_terminal")
		return &ScoreOutcome{SkipReason: SkipReasonNotTerminal}, nil
	}

	// 终态到终态的迁移永不补记：即便流水行因故缺失，也不允许事后伪造，
	// 该检查独立于流水状态，防御携带过期 oldStatus 的调用方
	if IsFinalOutcome(oldStatus) {
		log.Infow("scoring_skip_already_final")
		return &ScoreOutcome{SkipReason: SkipReasonAlreadyFinal}, nil
	}

	shipment, err := s.shipmentRepo.GetByID(tenantID, shipmentID)
	if err != nil {
		log.Errorw("scoring_shipment_fetch_failed", "error", err)
		return nil, err
	}
	if shipment == nil {
		return nil, ErrShipmentNotFound
	}

	// 运单侧幂等标记快路径，重复回调无需进入写事务
	if shipment.Scored() {
		log.Debugw("scoring_skip_already_scored_local")
		return &ScoreOutcome{SkipReason: SkipReasonAlreadyScored}, nil
	}

	outcome := &ScoreOutcome{}
	now := time.Now()
	txErr := s.db.Transaction(func(tx *gorm.DB) error {
		customer, err := s.customerRepo.WithTx(tx).GetByID(tenantID, shipment.CustomerID)
		if err != nil {
			return err
		}
		if customer == nil {
			// 客户已删除：不落流水、不动聚合，静默跳过
			outcome.SkipReason = SkipReasonCustomerMissing
			return nil
		}

		customerID := customer.ID
		entry := &models.ScoreJournal{
			ID:         uuid.NewString(),
			TenantID:   tenantID,
			ShipmentID: shipment.ID,
			CustomerID: &customerID,
			Delta:      delta,
			Reason:     newStatus,
			CreatedAt:  now,
		}
		created, err := s.journalRepo.WithTx(tx).InsertIgnoreDuplicate(entry)
		if err != nil {
			// 唯一约束冲突意味着并发对手已经计分，按已计分处理
			if !isUniqueViolation(err) {
				return err
			}
			created = false
		}
		if !created {
			if err := s.journalRepo.WithTx(tx).TouchCustomerRef(shipment.ID, tenantID, &customerID); err != nil {
				return err
			}
			outcome.SkipReason = SkipReasonAlreadyScored
			return nil
		}

		rows, err := s.customerRepo.WithTx(tx).AdjustScore(tenantID, customerID, delta)
		if err != nil {
			return err
		}
		if rows == 0 {
			// 客户在事务内被并发删除，回滚撤销刚插入的流水行
			return errCustomerVanished
		}
		if _, err := s.shipmentRepo.WithTx(tx).MarkScored(tenantID, shipment.ID, now, delta); err != nil {
			return err
		}

		outcome.Scored = true
		outcome.Delta = delta
		outcome.JournalID = entry.ID
		return nil
	})
	if txErr != nil {
		if errors.Is(txErr, errCustomerVanished) {
			log.Infow("scoring_skip_customer_vanished", "customer_id", shipment.CustomerID)
			return &ScoreOutcome{SkipReason: SkipReasonCustomerMissing}, nil
		}
		log.Errorw("scoring_transaction_failed", "error", txErr)
		return nil, txErr
	}

	if outcome.Scored {
		log.Infow("scoring_transition_recorded",
			"customer_id", shipment.CustomerID,
			"delta", outcome.Delta,
			"journal_id", outcome.JournalID,
		)
	} else {
		log.Infow("scoring_transition_skipped", "skip_reason", outcome.SkipReason)
	}
	return outcome, nil
}

// isUniqueViolation 判断是否为唯一约束冲突（sqlite 与 postgres 文案不同）
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint") ||
		strings.Contains(message, "duplicate key")
}
