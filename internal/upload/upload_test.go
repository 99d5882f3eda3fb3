package upload_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskseed/internal/backend/asana"
	"taskseed/internal/dummy"
	"taskseed/internal/service"
	"taskseed/internal/testutil"
	"taskseed/internal/upload"
)

var fixedNow = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

// harness wires an Uploader to a fake service and a recording sleeper, and
// keeps a single ordered log of calls and pauses.
type harness struct {
	svc    *testutil.FakeService
	sleeps *testutil.Sleeps
	up     *upload.Uploader
	out    bytes.Buffer
	errOut bytes.Buffer
	events []string
}

func newHarness(t *testing.T, svc service.Service) *harness {
	t.Helper()
	h := &harness{sleeps: &testutil.Sleeps{}}
	if fake, ok := svc.(*testutil.FakeService); ok {
		h.svc = fake
		fake.OnCall = func(ev string) { h.events = append(h.events, ev) }
	}
	h.sleeps.OnSleep = func(d time.Duration) { h.events = append(h.events, fmt.Sprintf("sleep %s", d)) }

	gen := dummy.NewSeeded(1, func() time.Time { return fixedNow })
	h.up = upload.New(svc, gen, &h.out, &h.errOut, nil)
	h.up.Sleep = h.sleeps.Sleep
	return h
}

func TestChunks(t *testing.T) {
	chunks := upload.Chunks(1000, 10)
	require.Len(t, chunks, 100)
	next := 1
	for _, c := range chunks {
		assert.Equal(t, next, c.First)
		assert.Equal(t, 10, c.Len())
		next = c.Last + 1
	}
	assert.Equal(t, 1001, next)

	short := upload.Chunks(999, 10)
	require.Len(t, short, 100)
	assert.Equal(t, upload.Chunk{First: 991, Last: 999}, short[99])
	assert.Equal(t, 9, short[99].Len())

	assert.Equal(t, []upload.Chunk{{First: 1, Last: 3}}, upload.Chunks(3, 10))
	assert.Nil(t, upload.Chunks(0, 10))
	assert.Nil(t, upload.Chunks(10, 0))
}

func TestUploadEach_AllSucceed(t *testing.T) {
	h := newHarness(t, testutil.NewFakeService())

	sum, err := h.up.UploadEach(context.Background(), 5)
	require.NoError(t, err)

	assert.Equal(t, 5, sum.Created)
	assert.Zero(t, sum.Failed+sum.Skipped+sum.RateLimited)

	calls := h.svc.CreateCalls()
	require.Len(t, calls, 5)
	for i, rec := range calls {
		assert.Equal(t, dummy.Name(i+1), rec.Name)
	}

	// Throttle between records, not after the last one.
	assert.Equal(t, []time.Duration{
		upload.DefaultThrottle, upload.DefaultThrottle, upload.DefaultThrottle, upload.DefaultThrottle,
	}, h.sleeps.Durations)
	assert.Contains(t, h.out.String(), "Task 'Task 5' created successfully.\n")
	assert.Empty(t, h.errOut.String())
}

func TestUploadEach_RateLimitWaitsThenResubmitsSameRecord(t *testing.T) {
	fake := testutil.NewFakeService()
	fake.CreateErrs = []error{&service.RateLimitError{RetryAfter: 5 * time.Second}}
	h := newHarness(t, fake)

	sum, err := h.up.UploadEach(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"create Task 1",
		"sleep 5s",
		"sleep 1s",
		"create Task 1",
	}, h.events)

	calls := fake.CreateCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, calls[0], calls[1], "retry must resubmit the identical record")
	assert.GreaterOrEqual(t, h.sleeps.Total(), 5*time.Second)

	assert.Equal(t, 1, sum.Created)
	assert.Equal(t, 1, sum.RateLimited)
	assert.Contains(t, h.out.String(), "Rate limit hit. Retrying after 5 seconds...")
}

func TestUploadEach_RateLimitUnboundedByDefault(t *testing.T) {
	fake := testutil.NewFakeService()
	for i := 0; i < 50; i++ {
		fake.CreateErrs = append(fake.CreateErrs, &service.RateLimitError{RetryAfter: time.Second})
	}
	h := newHarness(t, fake)

	sum, err := h.up.UploadEach(context.Background(), 1)
	require.NoError(t, err)

	assert.Len(t, fake.CreateCalls(), 51)
	assert.Equal(t, 1, sum.Created)
	assert.Equal(t, 50, sum.RateLimited)
}

func TestUploadEach_RateLimitCeiling(t *testing.T) {
	fake := testutil.NewFakeService()
	for i := 0; i < 10; i++ {
		fake.CreateErrs = append(fake.CreateErrs, &service.RateLimitError{RetryAfter: time.Second})
	}
	h := newHarness(t, fake)
	h.up.Policy = h.up.Policy.WithMaxRetries(3)

	sum, err := h.up.UploadEach(context.Background(), 1)
	require.NoError(t, err)

	assert.Len(t, fake.CreateCalls(), 4, "initial attempt plus three retries")
	assert.Equal(t, 1, sum.Failed)
	assert.Zero(t, sum.Created)
	assert.Contains(t, h.errOut.String(), "Giving up")
}

func TestUploadEach_PermanentFailureNotRetried(t *testing.T) {
	fake := testutil.NewFakeService()
	fake.CreateErrs = []error{&service.StatusError{StatusCode: 400, Body: `{"errors":[{"message":"bad"}]}`}}
	h := newHarness(t, fake)

	sum, err := h.up.UploadEach(context.Background(), 2)
	require.NoError(t, err)

	assert.Equal(t, []string{"create Task 1", "sleep 100ms", "create Task 2"}, h.events)
	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, 1, sum.Created)
	assert.Contains(t, h.errOut.String(), "Failed to create task 'Task 1'. Status code: 400")
}

func TestUploadEach_TransportFailureSkipped(t *testing.T) {
	fake := testutil.NewFakeService()
	fake.CreateErrs = []error{&service.TransportError{Err: errors.New("connection refused")}}
	h := newHarness(t, fake)

	sum, err := h.up.UploadEach(context.Background(), 2)
	require.NoError(t, err)

	assert.Len(t, fake.CreateCalls(), 2)
	assert.Equal(t, 1, sum.Skipped)
	assert.Equal(t, 1, sum.Created)
	assert.Contains(t, h.errOut.String(), "connection refused. Skipping...")
	assert.NotContains(t, h.out.String(), "Retrying")
}

func TestUploadEach_TransportRetryOptIn(t *testing.T) {
	te := &service.TransportError{Err: errors.New("reset")}
	fake := testutil.NewFakeService()
	fake.CreateErrs = []error{te, te, te}
	h := newHarness(t, fake)
	h.up.Policy = h.up.Policy.WithRetryTransport(true).WithMaxRetries(2)

	sum, err := h.up.UploadEach(context.Background(), 2)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"create Task 1", "sleep 1s",
		"create Task 1", "sleep 1s",
		"create Task 1",
		"sleep 100ms",
		"create Task 2",
	}, h.events)
	assert.Equal(t, 1, sum.Skipped)
	assert.Equal(t, 1, sum.Created)
}

func TestUploadEach_UnknownErrorCountsAsFailure(t *testing.T) {
	fake := testutil.NewFakeService()
	fake.CreateErrs = []error{errors.New("boom")}
	h := newHarness(t, fake)

	sum, err := h.up.UploadEach(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Failed)
	assert.Contains(t, h.errOut.String(), "boom")
}

func TestUploadEach_Cancelled(t *testing.T) {
	h := newHarness(t, testutil.NewFakeService())
	ctx, cancel := context.WithCancel(context.Background())
	h.sleeps.OnSleep = func(time.Duration) { cancel() }

	sum, err := h.up.UploadEach(ctx, 10)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, sum.Created)
	assert.Len(t, h.svc.CreateCalls(), 1)
}

func TestUploadEach_Quiet(t *testing.T) {
	h := newHarness(t, testutil.NewFakeService())
	h.up.Quiet = true

	_, err := h.up.UploadEach(context.Background(), 3)
	require.NoError(t, err)
	assert.Empty(t, h.out.String())
}

func TestUploadEach_ZeroTotal(t *testing.T) {
	h := newHarness(t, testutil.NewFakeService())

	sum, err := h.up.UploadEach(context.Background(), 0)
	require.NoError(t, err)
	assert.Zero(t, h.svc.Calls())
	assert.Zero(t, sum.Created)
}

// countingProgress records every Add.
type countingProgress struct{ adds []int }

func (p *countingProgress) Add(n int) error {
	p.adds = append(p.adds, n)
	return nil
}

func TestUploadBatches_Chunking(t *testing.T) {
	h := newHarness(t, testutil.NewFakeService())
	progress := &countingProgress{}
	h.up.Progress = progress

	sum, err := h.up.UploadBatches(context.Background(), 25, 10)
	require.NoError(t, err)

	batches := h.svc.BatchCalls()
	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 10)
	assert.Len(t, batches[1], 10)
	assert.Len(t, batches[2], 5)
	assert.Equal(t, "Task 11", batches[1][0].Name)
	assert.Equal(t, "Task 25", batches[2][4].Name)

	assert.Equal(t, 25, sum.Created)
	assert.Equal(t, []int{10, 10, 5}, progress.adds)
	assert.Equal(t, []time.Duration{upload.DefaultThrottle, upload.DefaultThrottle}, h.sleeps.Durations)
	assert.Contains(t, h.out.String(), "Batch of tasks Task 21..Task 25 created successfully.")
}

func TestUploadBatches_DefaultRunCoversAllRecords(t *testing.T) {
	h := newHarness(t, testutil.NewFakeService())

	sum, err := h.up.UploadBatches(context.Background(), upload.DefaultCount, upload.DefaultBatchSize)
	require.NoError(t, err)

	assert.Len(t, h.svc.BatchCalls(), 100)
	created := h.svc.Created()
	require.Len(t, created, 1000)
	for i, rec := range created {
		require.Equal(t, dummy.Name(i+1), rec.Name)
	}
	assert.Equal(t, 1000, sum.Created)
}

func TestUploadBatches_RateLimitResubmitsWholeChunk(t *testing.T) {
	fake := testutil.NewFakeService()
	fake.BatchErrs = []error{nil, &service.RateLimitError{RetryAfter: 5 * time.Second}}
	h := newHarness(t, fake)

	sum, err := h.up.UploadBatches(context.Background(), 30, 10)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"batch Task 1", "sleep 100ms",
		"batch Task 11", "sleep 5s", "sleep 1s",
		"batch Task 11", "sleep 100ms",
		"batch Task 21",
	}, h.events)

	batches := fake.BatchCalls()
	assert.Equal(t, batches[1], batches[2])
	assert.Equal(t, 30, sum.Created)
	assert.Equal(t, 1, sum.RateLimited)
}

func TestUploadBatches_FailedChunkMovesOn(t *testing.T) {
	fake := testutil.NewFakeService()
	fake.BatchErrs = []error{&service.StatusError{StatusCode: 500, Body: "oops"}}
	h := newHarness(t, fake)

	sum, err := h.up.UploadBatches(context.Background(), 20, 10)
	require.NoError(t, err)

	assert.Len(t, fake.BatchCalls(), 2)
	assert.Equal(t, 10, sum.Failed)
	assert.Equal(t, 10, sum.Created)
	assert.Contains(t, h.errOut.String(), "Failed to create batch Task 1..Task 10. Status code: 500, Response: oops")
}

func TestUploadBatches_TransportFailureSkipsChunk(t *testing.T) {
	fake := testutil.NewFakeService()
	fake.BatchErrs = []error{&service.TransportError{Err: errors.New("timeout")}}
	h := newHarness(t, fake)

	sum, err := h.up.UploadBatches(context.Background(), 20, 10)
	require.NoError(t, err)

	assert.Equal(t, 10, sum.Skipped)
	assert.Equal(t, 10, sum.Created)
}

func TestUploadBatches_PartialFailuresReported(t *testing.T) {
	fake := testutil.NewFakeService()
	fake.BatchResults = [][]service.ActionResult{{
		{StatusCode: 201},
		{StatusCode: 400, Body: `{"errors":[{"message":"due_on: invalid"}]}`},
		{StatusCode: 201},
	}}
	h := newHarness(t, fake)

	sum, err := h.up.UploadBatches(context.Background(), 3, 3)
	require.NoError(t, err)

	assert.Len(t, fake.BatchCalls(), 1, "partial failures are not retried")
	assert.Equal(t, 2, sum.Created)
	assert.Equal(t, 1, sum.Failed)
	assert.Contains(t, h.errOut.String(), "Failed to create task 'Task 2' in batch. Status code: 400")
}

// TestUploadEach_AgainstAPI runs the uploader against the real client and a
// test server that rate limits the first request without a Retry-After header.
func TestUploadEach_AgainstAPI(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client := asana.NewWithHTTPClient(srv.Client(), srv.URL, "42", nil)
	h := newHarness(t, client)

	sum, err := h.up.UploadEach(context.Background(), 2)
	require.NoError(t, err)

	assert.Equal(t, int32(3), hits.Load())
	assert.Equal(t, 2, sum.Created)
	assert.Equal(t, []time.Duration{service.DefaultRetryAfter, upload.DefaultRetryDelay, upload.DefaultThrottle}, h.sleeps.Durations)
}

func TestSleep(t *testing.T) {
	assert.NoError(t, upload.Sleep(context.Background(), 0))
	assert.NoError(t, upload.Sleep(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	assert.ErrorIs(t, upload.Sleep(ctx, time.Hour), context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}
