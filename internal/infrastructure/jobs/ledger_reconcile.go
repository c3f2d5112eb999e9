package jobs

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"greencoin.backend/internal/domain/entities"
	"greencoin.backend/pkg/logger"
	"greencoin.backend/pkg/metrics"
)

// DefaultReconcileSchedule runs the reconciliation every 15 minutes
const DefaultReconcileSchedule = "@every 15m"

// LedgerReconciler compares stored balances with their ledgers
type LedgerReconciler interface {
	ReconcileAll(ctx context.Context, batchSize int) ([]entities.LedgerDrift, error)
}

// LedgerReconcileJob reports users whose balance no longer equals the sum of
// their ledger. It never writes to the ledger.
type LedgerReconcileJob struct {
	reconciler LedgerReconciler
	schedule   string
	batchSize  int

	mu      sync.Mutex
	stop    chan struct{}
	running bool
}

func NewLedgerReconcileJob(reconciler LedgerReconciler, schedule string, batchSize int) *LedgerReconcileJob {
	if schedule == "" {
		schedule = DefaultReconcileSchedule
	}
	return &LedgerReconcileJob{
		reconciler: reconciler,
		schedule:   schedule,
		batchSize:  batchSize,
	}
}

// Start schedules the job and blocks until ctx is cancelled or Stop is called.
func (j *LedgerReconcileJob) Start(ctx context.Context) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	if _, err := c.AddFunc(j.schedule, func() { j.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("invalid reconcile schedule %q: %w", j.schedule, err)
	}

	j.mu.Lock()
	if j.running {
		j.mu.Unlock()
		return fmt.Errorf("reconcile job already running")
	}
	stop := make(chan struct{})
	j.stop = stop
	j.running = true
	j.mu.Unlock()

	logger.Info(ctx, "Starting ledger reconcile job", zap.String("schedule", j.schedule))
	c.Start()

	select {
	case <-ctx.Done():
		j.Stop()
	case <-stop:
	}
	<-c.Stop().Done()
	logger.Info(context.Background(), "Ledger reconcile job stopped")
	return nil
}

// Stop ends a running Start.
func (j *LedgerReconcileJob) Stop() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.running {
		close(j.stop)
		j.running = false
	}
}

// RunOnce performs a single reconciliation pass.
func (j *LedgerReconcileJob) RunOnce(ctx context.Context) []entities.LedgerDrift {
	drifted, err := j.reconciler.ReconcileAll(ctx, j.batchSize)
	metrics.RecordReconcile(len(drifted), err)
	if err != nil {
		logger.Error(ctx, "Ledger reconcile failed", zap.Error(err), zap.Int("drifted", len(drifted)))
		return drifted
	}

	for _, d := range drifted {
		logger.Warn(ctx, "Ledger drift detected",
			zap.String("user_id", d.UserID.String()),
			zap.Int64("balance", d.Balance),
			zap.Int64("ledger_total", d.LedgerTotal),
			zap.Int64("delta", d.Delta()),
		)
	}
	if len(drifted) == 0 {
		logger.Debug(ctx, "Ledger reconcile clean")
	}
	return drifted
}
