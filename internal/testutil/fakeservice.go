// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"sync"
	"time"

	"taskseed/internal/dummy"
	"taskseed/internal/service"
)

// FakeService is an in-memory implementation of service.Service for testing.
// Responses are scripted: each call consumes the next entry of the matching
// script, and an exhausted script means success.
type FakeService struct {
	mu sync.Mutex

	// CreateErrs scripts CreateTask results in call order.
	CreateErrs []error

	// BatchErrs scripts CreateTasks errors in call order.
	BatchErrs []error

	// BatchResults scripts per-action results for accepted batches, in order
	// of accepted calls.
	BatchResults [][]service.ActionResult

	// Count and CountErr are returned by TaskCount.
	Count    int
	CountErr error

	// OnCall, if set, is invoked with "create <name>" or "batch <first>" on
	// every attempt, before the scripted result is returned.
	OnCall func(event string)

	createCalls []dummy.Record
	batchCalls  [][]dummy.Record
	countCalls  int
	created     []dummy.Record
	accepted    int
}

// NewFakeService creates an empty FakeService whose calls all succeed.
func NewFakeService() *FakeService {
	return &FakeService{}
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, rec dummy.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.createCalls = append(f.createCalls, rec)
	if f.OnCall != nil {
		f.OnCall("create " + rec.Name)
	}
	if n := len(f.createCalls) - 1; n < len(f.CreateErrs) && f.CreateErrs[n] != nil {
		return f.CreateErrs[n]
	}
	f.created = append(f.created, rec)
	return nil
}

// CreateTasks implements service.Service.
func (f *FakeService) CreateTasks(ctx context.Context, recs []dummy.Record) ([]service.ActionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.batchCalls = append(f.batchCalls, append([]dummy.Record(nil), recs...))
	if f.OnCall != nil && len(recs) > 0 {
		f.OnCall("batch " + recs[0].Name)
	}
	if n := len(f.batchCalls) - 1; n < len(f.BatchErrs) && f.BatchErrs[n] != nil {
		return nil, f.BatchErrs[n]
	}

	var results []service.ActionResult
	if f.accepted < len(f.BatchResults) {
		results = f.BatchResults[f.accepted]
	}
	f.accepted++
	for i, rec := range recs {
		if i < len(results) && !results[i].OK() {
			continue
		}
		f.created = append(f.created, rec)
	}
	return results, nil
}

// TaskCount implements service.Service.
func (f *FakeService) TaskCount(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.countCalls++
	if f.CountErr != nil {
		return 0, f.CountErr
	}
	return f.Count, nil
}

// CreateCalls returns every record passed to CreateTask, retries included.
func (f *FakeService) CreateCalls() []dummy.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]dummy.Record(nil), f.createCalls...)
}

// BatchCalls returns every batch passed to CreateTasks, retries included.
func (f *FakeService) BatchCalls() [][]dummy.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]dummy.Record(nil), f.batchCalls...)
}

// Created returns the records the fake accepted.
func (f *FakeService) Created() []dummy.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]dummy.Record(nil), f.created...)
}

// Calls returns the total number of backend calls of any kind.
func (f *FakeService) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.createCalls) + len(f.batchCalls) + f.countCalls
}

// FixedSource is a dummy.Source returning constant values.
type FixedSource struct {
	Days      int
	Completed bool
}

// IntRange implements dummy.Source.
func (s FixedSource) IntRange(min, max int) int { return s.Days }

// Bool implements dummy.Source.
func (s FixedSource) Bool() bool { return s.Completed }

// Sleeps records requested pauses without waiting.
type Sleeps struct {
	mu        sync.Mutex
	Durations []time.Duration

	// OnSleep, if set, is invoked with every duration.
	OnSleep func(d time.Duration)
}

// Sleep has the signature of upload.Sleeper. It returns ctx.Err().
func (s *Sleeps) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.Durations = append(s.Durations, d)
	hook := s.OnSleep
	s.mu.Unlock()
	if hook != nil {
		hook(d)
	}
	return ctx.Err()
}

// Total returns the sum of all recorded pauses.
func (s *Sleeps) Total() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total time.Duration
	for _, d := range s.Durations {
		total += d
	}
	return total
}
