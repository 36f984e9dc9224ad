package background

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"billledger/internal/logger"
	"billledger/internal/services"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
)

const (
	OverdueSweepJob = "overdue-reminder-sweep"
	GSTArchiveJob   = "gst-report-archive"

	jobTimeout = 5 * time.Minute
)

// Archiver stores the previous month's GST report
type Archiver interface {
	ArchivePreviousMonth(ctx context.Context) (*services.ArchivedReport, error)
}

// JobScheduler runs the ledger's periodic jobs
type JobScheduler struct {
	scheduler gocron.Scheduler
	sweeper   *OverdueSweeper
	archiver  Archiver
	jobs      map[string]gocron.Job
	mu        sync.RWMutex
	log       zerolog.Logger
}

// NewJobScheduler registers the overdue sweep every sweepInterval and, when
// archiver is non-nil, the GST archive at 02:00 UTC on the first of each month.
func NewJobScheduler(sweeper *OverdueSweeper, archiver Archiver, sweepInterval time.Duration) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	js := &JobScheduler{
		scheduler: scheduler,
		sweeper:   sweeper,
		archiver:  archiver,
		jobs:      make(map[string]gocron.Job),
		log:       logger.WithComponent("scheduler"),
	}
	if err := js.registerJobs(sweepInterval); err != nil {
		_ = scheduler.Shutdown()
		return nil, err
	}
	return js, nil
}

// Start starts the job scheduler
func (js *JobScheduler) Start() {
	js.log.Info().Int("jobs", len(js.jobs)).Msg("Starting background job scheduler")
	js.scheduler.Start()
}

// Stop waits for running jobs and stops the scheduler
func (js *JobScheduler) Stop() error {
	js.log.Info().Msg("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs(sweepInterval time.Duration) error {
	sweepJob, err := js.scheduler.NewJob(
		gocron.DurationJob(sweepInterval),
		gocron.NewTask(js.runSweep),
		gocron.WithName(OverdueSweepJob),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("create overdue sweep job: %w", err)
	}
	js.jobs[OverdueSweepJob] = sweepJob

	if js.archiver == nil {
		js.log.Warn().Msg("Object storage not configured; GST archive job disabled")
		return nil
	}
	archiveJob, err := js.scheduler.NewJob(
		gocron.MonthlyJob(1, gocron.NewDaysOfTheMonth(1), gocron.NewAtTimes(gocron.NewAtTime(2, 0, 0))),
		gocron.NewTask(js.runArchive),
		gocron.WithName(GSTArchiveJob),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("create gst archive job: %w", err)
	}
	js.jobs[GSTArchiveJob] = archiveJob
	return nil
}

func (js *JobScheduler) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	if _, err := js.sweeper.Run(ctx); err != nil {
		js.log.Error().Err(err).Str("job", OverdueSweepJob).Msg("Job failed")
	}
}

func (js *JobScheduler) runArchive() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	if _, err := js.archiver.ArchivePreviousMonth(ctx); err != nil {
		js.log.Error().Err(err).Str("job", GSTArchiveJob).Msg("Job failed")
	}
}

// RunNow triggers a registered job outside its schedule
func (js *JobScheduler) RunNow(name string) error {
	js.mu.RLock()
	job, ok := js.jobs[name]
	js.mu.RUnlock()
	if !ok {
		return fmt.Errorf("unknown job %q", name)
	}
	return job.RunNow()
}

// RemoveJob removes a job from the scheduler
func (js *JobScheduler) RemoveJob(name string) error {
	js.mu.Lock()
	defer js.mu.Unlock()

	if job, exists := js.jobs[name]; exists {
		err := js.scheduler.RemoveJob(job.ID())
		delete(js.jobs, name)
		return err
	}
	return nil
}

// JobStatus describes one scheduled job
type JobStatus struct {
	Name    string    `json:"name"`
	NextRun time.Time `json:"next_run"`
	LastRun time.Time `json:"last_run"`
}

// GetJobStatus returns information about scheduled jobs
func (js *JobScheduler) GetJobStatus() []JobStatus {
	js.mu.RLock()
	defer js.mu.RUnlock()

	status := make([]JobStatus, 0, len(js.jobs))
	for name, job := range js.jobs {
		s := JobStatus{Name: name}
		if next, err := job.NextRun(); err == nil {
			s.NextRun = next
		}
		if last, err := job.LastRun(); err == nil {
			s.LastRun = last
		}
		status = append(status, s)
	}
	sort.Slice(status, func(i, j int) bool { return status[i].Name < status[j].Name })
	return status
}
