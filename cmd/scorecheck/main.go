package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/shiptrack-next/internal/config"
	"github.com/shiptrack-next/internal/logger"
	"github.com/shiptrack-next/internal/models"
	"github.com/shiptrack-next/internal/repository"
	"github.com/shiptrack-next/internal/service"
)

// scorecheck 对账命令行工具。独立于 API 进程运行，适合放进 cron：
// 默认只报告漂移，-fix 启用保守修复，-alert 在发现漂移时以非零码退出
// 便于监控系统告警。
func main() {
	var (
		tenantID uint64
		fix      bool
		alert    bool
		verbose  bool
	)
	flag.Uint64Var(&tenantID, "tenant", 0, "仅对账指定租户 ID（0 表示全部启用租户）")
	flag.BoolVar(&fix, "fix", false, "启用保守自动修复（流水无记录且聚合分非 0 时清零）")
	flag.BoolVar(&alert, "alert", false, "发现漂移时以非零码退出")
	flag.BoolVar(&verbose, "verbose", false, "输出完整报告 JSON")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("数据库初始化失败: %v", err)
	}

	tenantRepo := repository.NewTenantRepository(models.DB)
	customerRepo := repository.NewCustomerRepository(models.DB)
	journalRepo := repository.NewScoreJournalRepository(models.DB)
	integrity := service.NewIntegrityService(tenantRepo, customerRepo, journalRepo)

	opts := service.IntegrityCheckOptions{Fix: fix}
	var reports []*service.IntegrityReport
	if tenantID != 0 {
		report, err := integrity.CheckTenant(uint(tenantID), opts)
		if err != nil {
			stdLog.Fatalf("对账执行失败: %v", err)
		}
		reports = append(reports, report)
	} else {
		var err error
		reports, err = integrity.CheckAll(opts)
		if err != nil {
			stdLog.Fatalf("对账执行失败: %v", err)
		}
	}

	mismatched := 0
	fixed := 0
	for _, report := range reports {
		if report.Mismatch {
			mismatched++
		}
		fixed += report.Fixed
		if verbose || report.Mismatch {
			payload, err := json.MarshalIndent(report, "", "  ")
			if err != nil {
				stdLog.Fatalf("报告序列化失败: %v", err)
			}
			fmt.Println(string(payload))
		}
	}

	fmt.Printf("checked=%d mismatched=%d fixed=%d\n", len(reports), mismatched, fixed)
	if alert && mismatched > 0 {
		os.Exit(1)
	}
}
