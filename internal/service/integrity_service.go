package service

import (
	"time"

	"github.com/shiptrack-next/internal/logger"
	"github.com/shiptrack-next/internal/repository"
)

// IntegrityCheckOptions 对账选项
type IntegrityCheckOptions struct {
	// Fix 启用保守自动修复：仅清零"流水无记录但聚合分非 0"的客户
	Fix bool
}

// CustomerDrift 单客户漂移明细
type CustomerDrift struct {
	CustomerID   uint  `json:"customer_id"`
	JournalDelta int64 `json:"journal_delta"`
	LiveScore    int64 `json:"live_score"`
	Diff         int64 `json:"diff"`
	Missing      bool  `json:"missing,omitempty"` // 流水仍指向该客户但客户行已不存在
	Fixed        bool  `json:"fixed,omitempty"`
}

// IntegrityReport 租户对账报告
type IntegrityReport struct {
	TenantID      uint            `json:"tenant_id"`
	TenantCode    string          `json:"tenant_code"`
	JournalSum    int64           `json:"journal_sum"`
	AggregateSum  int64           `json:"aggregate_sum"`
	Mismatch      bool            `json:"mismatch"`
	Drifts        []CustomerDrift `json:"drifts,omitempty"`
	OrphanEntries int64           `json:"orphan_entries"`
	OrphanSum     int64           `json:"orphan_sum"`
	Fixed         int             `json:"fixed"`
	CheckedAt     time.Time       `json:"checked_at"`
}

// IntegrityService 流水与聚合分对账服务
type IntegrityService struct {
	tenantRepo   repository.TenantRepository
	customerRepo repository.CustomerRepository
	journalRepo  repository.ScoreJournalRepository
}

// NewIntegrityService 创建对账服务
func NewIntegrityService(
	tenantRepo repository.TenantRepository,
	customerRepo repository.CustomerRepository,
	journalRepo repository.ScoreJournalRepository,
) *IntegrityService {
	return &IntegrityService{
		tenantRepo:   tenantRepo,
		customerRepo: customerRepo,
		journalRepo:  journalRepo,
	}
}

// CheckTenant 对单个租户执行对账。
//
// 漂移本身是对账的正常输出而不是错误；只有存储层故障才返回 error。
// 修复策略刻意保守：只处理"流水中毫无记录但聚合分非 0"的客户（与历史
// 无关的脏数据，清零即可），凡是流水有记录但与聚合分不一致的情况一律
// 只报告不修复——分歧可能来自合理的外部调整，自动覆盖会销毁真实信息。
func (s *IntegrityService) CheckTenant(tenantID uint, opts IntegrityCheckOptions) (*IntegrityReport, error) {
	tenant, err := s.tenantRepo.GetByID(tenantID)
	if err != nil {
		return nil, err
	}
	if tenant == nil {
		return nil, ErrTenantNotFound
	}

	log := logger.SW("tenant_id", tenantID, "tenant_code", tenant.Code)

	journalSum, err := s.journalRepo.SumByTenant(tenantID)
	if err != nil {
		return nil, err
	}
	aggregateSum, err := s.customerRepo.SumScores(tenantID)
	if err != nil {
		return nil, err
	}
	customerSums, err := s.journalRepo.CustomerSums(tenantID)
	if err != nil {
		return nil, err
	}
	scores, err := s.customerRepo.ListScores(tenantID)
	if err != nil {
		return nil, err
	}
	orphanEntries, orphanSum, err := s.journalRepo.OrphanStats(tenantID)
	if err != nil {
		return nil, err
	}

	journalByCustomer := make(map[uint]int64, len(customerSums))
	for _, row := range customerSums {
		journalByCustomer[row.CustomerID] = row.Total
	}

	report := &IntegrityReport{
		TenantID:      tenantID,
		TenantCode:    tenant.Code,
		JournalSum:    journalSum,
		AggregateSum:  aggregateSum,
		OrphanEntries: orphanEntries,
		OrphanSum:     orphanSum,
		CheckedAt:     time.Now(),
	}

	seen := make(map[uint]bool, len(scores))
	for _, score := range scores {
		seen[score.CustomerID] = true
		journalDelta := journalByCustomer[score.CustomerID]
		diff := journalDelta - score.DeliveryScore
		if diff == 0 {
			continue
		}
		drift := CustomerDrift{
			CustomerID:   score.CustomerID,
			JournalDelta: journalDelta,
			LiveScore:    score.DeliveryScore,
			Diff:         diff,
		}
		if opts.Fix && journalDelta == 0 && score.DeliveryScore != 0 {
			fixed, err := s.customerRepo.ResetScoreIfUnjournaled(tenantID, score.CustomerID, int(score.DeliveryScore))
			if err != nil {
				return nil, err
			}
			if fixed {
				drift.Fixed = true
				report.Fixed++
				log.Infow("integrity_score_reset",
					"customer_id", score.CustomerID,
					"previous_score", score.DeliveryScore,
				)
			}
		}
		report.Drifts = append(report.Drifts, drift)
	}

	// 流水仍指向但客户行已不存在的引用：属于未走删除流程的异常，只报告
	for _, row := range customerSums {
		if seen[row.CustomerID] {
			continue
		}
		report.Drifts = append(report.Drifts, CustomerDrift{
			CustomerID:   row.CustomerID,
			JournalDelta: row.Total,
			Diff:         row.Total,
			Missing:      true,
		})
	}

	report.Mismatch = len(report.Drifts) > 0
	if report.Mismatch {
		log.Warnw("integrity_mismatch_found",
			"journal_sum", report.JournalSum,
			"aggregate_sum", report.AggregateSum,
			"drift_count", len(report.Drifts),
			"fixed", report.Fixed,
		)
	} else {
		log.Infow("integrity_check_clean",
			"journal_sum", report.JournalSum,
			"aggregate_sum", report.AggregateSum,
			"orphan_entries", report.OrphanEntries,
		)
	}
	return report, nil
}

// CheckAll 对全部启用租户执行对账
func (s *IntegrityService) CheckAll(opts IntegrityCheckOptions) ([]*IntegrityReport, error) {
	tenants, err := s.tenantRepo.ListActive()
	if err != nil {
		return nil, err
	}
	reports := make([]*IntegrityReport, 0, len(tenants))
	for _, tenant := range tenants {
		report, err := s.CheckTenant(tenant.ID, opts)
		if err != nil {
			return reports, err
		}
		reports = append(reports, report)
	}
	return reports, nil
}
