package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weather-500-years/internal/pipeline"
)

// Runner executes one comparison run.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) (pipeline.Outcome, error)
}

// Job is one cron entry and the tag its messages carry.
type Job struct {
	Cron string
	Tag  string
}

// Scheduler posts the comparison on cron schedules.
type Scheduler struct {
	scheduler *gocron.Scheduler
	runner    Runner
	place     string
	jobs      []Job

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new Scheduler evaluating cron expressions in loc.
func New(loc *time.Location, place string, jobs []Job, runner Runner) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	s := gocron.NewScheduler(loc)
	// one run at a time across all entries; a tick that arrives while another
	// run is in progress waits for it
	s.SetMaxConcurrentJobs(1, gocron.WaitMode)

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		scheduler: s,
		runner:    runner,
		place:     place,
		jobs:      jobs,
		ctx:       ctx,
		cancel:    cancel,
	}
}

func jobTag(i int) string {
	return fmt.Sprintf("run-%d", i)
}

// Start registers every job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if len(s.jobs) == 0 {
		log.Println("scheduler: no cron entries configured; nothing to schedule")
		return nil
	}

	for i, j := range s.jobs {
		j := j
		_, err := s.scheduler.Cron(j.Cron).Tag(jobTag(i)).SingletonMode().Do(func() {
			s.runJob(j)
		})
		if err != nil {
			return fmt.Errorf("scheduler: register %q: %w", j.Cron, err)
		}
		log.Printf("INFO: scheduler: %q scheduled (tag %q)", j.Cron, j.Tag)
	}

	s.scheduler.StartAsync()
	return nil
}

// runJob never propagates errors; a failed run is logged and the next tick proceeds.
func (s *Scheduler) runJob(j Job) {
	log.Printf("scheduler: running comparison for %s (%s)", s.place, j.Cron)

	out, err := s.runner.Run(s.ctx, pipeline.Request{Place: s.place, Tag: j.Tag})
	if err != nil {
		log.Printf("ERROR: scheduler: run %s failed: %s: %v", out.RunID, pipeline.Describe(err), err)
		return
	}
	log.Printf("scheduler: run %s completed", out.RunID)
}

// Stop stops the scheduler and cancels any in-flight run.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
	s.cancel()
}
