package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/NadavMozeson/typescript-discord-bot/internal/logger"
)

// Job is a periodic task. Its error is logged; the next run happens regardless.
type Job func(ctx context.Context) error

// Runner runs named jobs on cron specs with a seconds field
type Runner struct {
	cron    *cron.Cron
	baseCtx context.Context
}

// New creates a runner whose jobs receive baseCtx
func New(baseCtx context.Context) *Runner {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	return &Runner{
		cron:    cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		baseCtx: baseCtx,
	}
}

// Add schedules job. An empty spec disables the job.
func (r *Runner) Add(name, spec string, job Job) error {
	if spec == "" {
		logger.Info("Job disabled", zap.String("job", name))
		return nil
	}
	_, err := r.cron.AddFunc(spec, func() {
		r.run(name, job)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule %s: %w", name, err)
	}
	return nil
}

func (r *Runner) run(name string, job Job) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error(fmt.Errorf("job panicked: %v", rec), zap.String("job", name))
		}
	}()
	if err := job(r.baseCtx); err != nil {
		logger.Error(err, zap.String("job", name))
	}
}

// Len is the number of scheduled jobs
func (r *Runner) Len() int {
	return len(r.cron.Entries())
}

func (r *Runner) Start() {
	logger.Info("Scheduler started", zap.Int("jobs", r.Len()))
	r.cron.Start()
}

// Stop waits for running jobs to finish
func (r *Runner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	logger.Info("Scheduler stopped")
}
