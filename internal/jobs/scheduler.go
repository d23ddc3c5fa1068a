package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// Job interface that all scheduled jobs must implement
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// JobScheduler manages cron-scheduled background jobs
type JobScheduler struct {
	scheduler gocron.Scheduler
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewJobScheduler creates a new job scheduler
func NewJobScheduler() (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &JobScheduler{
		scheduler: scheduler,
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

// Register schedules a job on a standard 5-field cron expression
func (s *JobScheduler) Register(cronExpr string, job Job) error {
	_, err := s.scheduler.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(func() { s.runJob(job) }),
		gocron.WithName(job.Name()),
	)
	if err != nil {
		return fmt.Errorf("failed to register job %s: %w", job.Name(), err)
	}

	log.Printf("✅ [SCHEDULER] Registered job %q (%s)", job.Name(), cronExpr)
	return nil
}

// Start begins running all registered jobs
func (s *JobScheduler) Start() {
	s.scheduler.Start()
	log.Printf("🚀 [SCHEDULER] Job scheduler started with %d jobs", len(s.scheduler.Jobs()))
}

// RunNow immediately runs a job outside its schedule
func (s *JobScheduler) RunNow(job Job) error {
	return job.Run(s.ctx)
}

// Stop gracefully stops the scheduler and cancels running jobs
func (s *JobScheduler) Stop() {
	log.Println("🛑 [SCHEDULER] Stopping job scheduler...")
	s.cancel()
	if err := s.scheduler.Shutdown(); err != nil {
		log.Printf("⚠️ [SCHEDULER] Shutdown error: %v", err)
	}
	log.Println("✅ [SCHEDULER] Job scheduler stopped")
}

func (s *JobScheduler) runJob(job Job) {
	log.Printf("▶️  [SCHEDULER] Running job: %s", job.Name())
	start := time.Now()

	if err := job.Run(s.ctx); err != nil {
		log.Printf("❌ [SCHEDULER] Job %q failed: %v", job.Name(), err)
		return
	}

	log.Printf("✅ [SCHEDULER] Job %q completed in %v", job.Name(), time.Since(start))
}
