// Package upload submits synthetic task records to a backend, one request at
// a time, pacing requests and waiting out rate limits.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"taskseed/internal/dummy"
	"taskseed/internal/logging"
	"taskseed/internal/service"
)

// DefaultCount is the number of records uploaded when none is given.
const DefaultCount = 1000

// DefaultBatchSize is the number of records per batch request.
const DefaultBatchSize = 10

// MaxBatchSize is the largest batch the API accepts.
const MaxBatchSize = 10

// Progress receives the number of records finished (in any outcome).
// *progressbar.ProgressBar satisfies it.
type Progress interface {
	Add(n int) error
}

// Summary counts records by outcome.
type Summary struct {
	Created     int
	Failed      int
	Skipped     int
	RateLimited int // rate limit responses seen, not records
	Elapsed     time.Duration
}

// Uploader sends records to a service sequentially.
type Uploader struct {
	svc    service.Service
	gen    *dummy.Generator
	out    io.Writer
	errOut io.Writer
	log    *slog.Logger

	// Policy controls pacing and retries.
	Policy Policy

	// Sleep is used for every pause. Defaults to upload.Sleep.
	Sleep Sleeper

	// Progress, if set, is advanced as records finish.
	Progress Progress

	// Quiet suppresses success and retry lines. Failures are always printed.
	Quiet bool
}

// New creates an Uploader with DefaultPolicy.
func New(svc service.Service, gen *dummy.Generator, out, errOut io.Writer, log *slog.Logger) *Uploader {
	if log == nil {
		log = logging.Discard()
	}
	return &Uploader{
		svc:    svc,
		gen:    gen,
		out:    out,
		errOut: errOut,
		log:    log,
		Policy: DefaultPolicy(),
		Sleep:  Sleep,
	}
}

type outcome int

const (
	created outcome = iota
	failed
	skipped
)

// UploadEach creates records 1..total with one request per record.
// It stops early only if ctx is cancelled, returning the partial summary and
// ctx's error.
func (u *Uploader) UploadEach(ctx context.Context, total int) (sum Summary, err error) {
	start := time.Now()
	defer func() { sum.Elapsed = time.Since(start) }()

	for i := 1; i <= total; i++ {
		rec := u.gen.Record(i)
		label := fmt.Sprintf("task '%s'", rec.Name)

		res, err := u.submit(ctx, label, &sum, func(ctx context.Context) error {
			return u.svc.CreateTask(ctx, rec)
		})
		if err != nil {
			return sum, err
		}
		switch res {
		case created:
			sum.Created++
			u.info("Task '%s' created successfully.\n", rec.Name)
		case failed:
			sum.Failed++
		case skipped:
			sum.Skipped++
		}
		u.advance(1)

		if i < total {
			if err := u.Sleep(ctx, u.Policy.Throttle); err != nil {
				return sum, err
			}
		}
	}
	return sum, nil
}

// UploadBatches creates records 1..total with one batch request per chunk of
// at most size records. A rate-limited chunk is resubmitted whole.
func (u *Uploader) UploadBatches(ctx context.Context, total, size int) (sum Summary, err error) {
	start := time.Now()
	defer func() { sum.Elapsed = time.Since(start) }()

	chunks := Chunks(total, size)
	for n, chunk := range chunks {
		recs := u.gen.Records(chunk.First, chunk.Last)
		label := fmt.Sprintf("batch %s..%s", dummy.Name(chunk.First), dummy.Name(chunk.Last))

		var results []service.ActionResult
		res, err := u.submit(ctx, label, &sum, func(ctx context.Context) error {
			var err error
			results, err = u.svc.CreateTasks(ctx, recs)
			return err
		})
		if err != nil {
			return sum, err
		}
		switch res {
		case created:
			bad := u.reportActions(recs, results)
			sum.Created += len(recs) - bad
			sum.Failed += bad
			u.info("Batch of tasks %s..%s created successfully.\n", recs[0].Name, recs[len(recs)-1].Name)
		case failed:
			sum.Failed += len(recs)
		case skipped:
			sum.Skipped += len(recs)
		}
		u.advance(len(recs))

		if n < len(chunks)-1 {
			if err := u.Sleep(ctx, u.Policy.Throttle); err != nil {
				return sum, err
			}
		}
	}
	return sum, nil
}

// submit sends one unit of work until it reaches a terminal outcome.
// The returned error is non-nil only when ctx is done.
func (u *Uploader) submit(ctx context.Context, label string, sum *Summary, send func(context.Context) error) (outcome, error) {
	for retries := 0; ; retries++ {
		err := send(ctx)
		if err == nil {
			return created, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return failed, ctxErr
		}
		u.log.Debug("attempt failed", "unit", label, "retries", retries, "error", err)

		var (
			rateErr      *service.RateLimitError
			transportErr *service.TransportError
			statusErr    *service.StatusError
		)
		switch {
		case errors.As(err, &rateErr):
			sum.RateLimited++
			if u.Policy.exhausted(retries) {
				fmt.Fprintf(u.errOut, "Rate limit still hit for %s after %d retries. Giving up.\n", label, retries)
				return failed, nil
			}
			u.info("Rate limit hit. Retrying after %d seconds...\n", int(rateErr.RetryAfter/time.Second))
			if err := u.Sleep(ctx, rateErr.RetryAfter); err != nil {
				return failed, err
			}

		case errors.As(err, &transportErr):
			if !u.Policy.RetryTransport || u.Policy.exhausted(retries) {
				fmt.Fprintf(u.errOut, "Request failed for %s: %v. Skipping...\n", label, transportErr.Err)
				return skipped, nil
			}
			u.info("Request failed for %s: %v. Retrying...\n", label, transportErr.Err)

		case errors.As(err, &statusErr):
			fmt.Fprintf(u.errOut, "Failed to create %s. Status code: %d, Response: %s\n", label, statusErr.StatusCode, statusErr.Body)
			return failed, nil

		default:
			fmt.Fprintf(u.errOut, "Failed to create %s: %v\n", label, err)
			return failed, nil
		}

		if err := u.Sleep(ctx, u.Policy.RetryDelay); err != nil {
			return failed, err
		}
	}
}

// reportActions prints failing sub-actions of an accepted batch and returns
// how many failed. Missing results are not counted as failures.
func (u *Uploader) reportActions(recs []dummy.Record, results []service.ActionResult) int {
	bad := 0
	for i, r := range results {
		if r.OK() || i >= len(recs) {
			continue
		}
		bad++
		fmt.Fprintf(u.errOut, "Failed to create task '%s' in batch. Status code: %d, Response: %s\n", recs[i].Name, r.StatusCode, r.Body)
	}
	return bad
}

func (u *Uploader) info(format string, args ...any) {
	if u.Quiet {
		return
	}
	fmt.Fprintf(u.out, format, args...)
}

func (u *Uploader) advance(n int) {
	if u.Progress == nil {
		return
	}
	if err := u.Progress.Add(n); err != nil {
		u.log.Debug("progress update failed", "error", err)
	}
}
