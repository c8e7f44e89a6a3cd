// Command ledger-verify replays the movement ledger against on-hand stock for
// every batch and exits non-zero when any location disagrees.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	inventoryapp "github.com/erp/ledger/internal/application/inventory"
	"github.com/erp/ledger/internal/infrastructure/config"
	"github.com/erp/ledger/internal/infrastructure/logger"
	"github.com/erp/ledger/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

func main() {
	var (
		pageSize int
		timeout  time.Duration
	)
	flag.IntVar(&pageSize, "page-size", 0, "Batches checked per transaction (default: ledger.reconcile_page_size)")
	flag.DurationVar(&timeout, "timeout", 10*time.Minute, "Abort the check after this long")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(2)
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}, "ledger-verify")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(2)
	}
	defer func() {
		_ = log.Sync()
	}()

	if pageSize <= 0 {
		pageSize = cfg.Ledger.ReconcilePageSize
	}

	db, err := persistence.NewDatabase(&cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	loc, err := cfg.Ledger.Location()
	if err != nil {
		log.Fatal("Invalid ledger time zone", zap.Error(err))
	}
	uow := inventoryapp.NewUnitOfWork(
		persistence.NewGormTransactionScope(db.DB),
		inventoryapp.EngineConfig{TimeZone: loc},
		log,
	)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	found, checked, err := inventoryapp.NewLedgerService(uow).ReconcileAll(ctx, pageSize)
	if err != nil {
		log.Error("Reconciliation failed", zap.Int("batches_checked", checked), zap.Error(err))
		os.Exit(2)
	}

	for _, d := range found {
		log.Warn("Ledger discrepancy",
			zap.String("batch_id", d.BatchID.String()),
			zap.String("location", d.Location),
			zap.Int64("on_hand", d.OnHand),
			zap.Int64("ledger_net", d.LedgerNet),
			zap.Int64("difference", d.Difference),
		)
	}
	if len(found) > 0 {
		log.Error("Ledger is inconsistent",
			zap.Int("batches_checked", checked),
			zap.Int("discrepancies", len(found)),
		)
		os.Exit(1)
	}
	log.Info("Ledger is consistent", zap.Int("batches_checked", checked))
}
