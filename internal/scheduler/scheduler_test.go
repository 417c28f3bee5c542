package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/i474232898/weather-500-years/internal/pipeline"
	"github.com/i474232898/weather-500-years/internal/weather"
)

type fakeRunner struct {
	reqs chan pipeline.Request
	err  error
}

func (f *fakeRunner) Run(_ context.Context, req pipeline.Request) (pipeline.Outcome, error) {
	f.reqs <- req
	return pipeline.Outcome{RunID: "test"}, f.err
}

func TestSchedulerRunsTaggedJob(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"success", nil},
		{"failure is not fatal", weather.ErrNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{reqs: make(chan pipeline.Request, 4), err: tt.err}
			s := New(time.UTC, "Seoul", []Job{
				{Cron: "0 8 * * *", Tag: "morning"},
				{Cron: "0 20 * * *", Tag: "evening"},
			}, runner)
			if err := s.Start(); err != nil {
				t.Fatalf("Start: %v", err)
			}
			defer s.Stop()

			if s.scheduler.Len() != 2 {
				t.Fatalf("jobs = %d, want 2", s.scheduler.Len())
			}
			if err := s.scheduler.RunByTag(jobTag(1)); err != nil {
				t.Fatalf("RunByTag: %v", err)
			}

			select {
			case req := <-runner.reqs:
				if req.Place != "Seoul" || req.Tag != "evening" {
					t.Errorf("unexpected request: %+v", req)
				}
			case <-time.After(2 * time.Second):
				t.Fatalf("job did not run")
			}
		})
	}
}

type slowRunner struct {
	active  int32
	maxSeen int32
	done    chan struct{}
}

func (r *slowRunner) Run(context.Context, pipeline.Request) (pipeline.Outcome, error) {
	n := atomic.AddInt32(&r.active, 1)
	for {
		m := atomic.LoadInt32(&r.maxSeen)
		if n <= m || atomic.CompareAndSwapInt32(&r.maxSeen, m, n) {
			break
		}
	}
	time.Sleep(100 * time.Millisecond)
	atomic.AddInt32(&r.active, -1)
	r.done <- struct{}{}
	return pipeline.Outcome{}, nil
}

func TestSchedulerRunsNeverOverlap(t *testing.T) {
	runner := &slowRunner{done: make(chan struct{}, 2)}
	s := New(time.UTC, "Seoul", []Job{
		{Cron: "0 8 * * *", Tag: "a"},
		{Cron: "0 8 * * *", Tag: "b"},
	}, runner)
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer s.Stop()

	s.scheduler.RunAll()

	for i := 0; i < 2; i++ {
		select {
		case <-runner.done:
		case <-time.After(3 * time.Second):
			t.Fatalf("run %d did not complete", i)
		}
	}
	if got := atomic.LoadInt32(&runner.maxSeen); got != 1 {
		t.Errorf("max concurrent runs = %d, want 1", got)
	}
}

func TestSchedulerRejectsBadCron(t *testing.T) {
	s := New(nil, "Seoul", []Job{{Cron: "not a cron"}}, &fakeRunner{reqs: make(chan pipeline.Request, 1)})
	defer s.Stop()

	if err := s.Start(); err == nil {
		t.Fatalf("expected error for invalid cron expression")
	}
}

func TestSchedulerWithoutJobs(t *testing.T) {
	s := New(time.UTC, "Seoul", nil, &fakeRunner{})
	defer s.Stop()

	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if s.scheduler.IsRunning() {
		t.Errorf("scheduler started without jobs")
	}
}
