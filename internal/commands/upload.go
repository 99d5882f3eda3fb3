package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"taskseed/internal/config"
	"taskseed/internal/dummy"
	"taskseed/internal/exitcode"
	"taskseed/internal/logging"
	"taskseed/internal/output"
	"taskseed/internal/service"
	"taskseed/internal/upload"
)

func init() {
	Register(&UploadCmd{})
	Register(&BatchUploadCmd{})
}

// uploadFlags are shared by upload and batch-upload.
type uploadFlags struct {
	count          int
	maxRetries     int
	retryTransport bool
	progress       bool

	// Test hooks.
	gen   *dummy.Generator
	sleep upload.Sleeper
}

func (f *uploadFlags) register(fs *flag.FlagSet) {
	fs.IntVar(&f.count, "count", upload.DefaultCount, "")
	fs.IntVar(&f.count, "n", upload.DefaultCount, "")
	fs.IntVar(&f.maxRetries, "max-retries", 0, "")
	fs.BoolVar(&f.retryTransport, "retry-network", false, "")
	fs.BoolVar(&f.progress, "progress", false, "")
}

// SetCount sets the record count (for testing).
func (f *uploadFlags) SetCount(n int) { f.count = n }

// SetGenerator replaces the record generator (for testing).
func (f *uploadFlags) SetGenerator(gen *dummy.Generator) { f.gen = gen }

// SetSleeper replaces the pause function (for testing).
func (f *uploadFlags) SetSleeper(s upload.Sleeper) { f.sleep = s }

// SetProgress enables the progress bar (for testing).
func (f *uploadFlags) SetProgress(on bool) { f.progress = on }

func (f *uploadFlags) validate(args []string, errOut io.Writer) bool {
	switch {
	case len(args) > 0:
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
	case f.count < 0:
		fmt.Fprintf(errOut, "error: invalid count: %d\n", f.count)
	case f.maxRetries < 0:
		fmt.Fprintf(errOut, "error: invalid max-retries: %d\n", f.maxRetries)
	default:
		return true
	}
	return false
}

func (f *uploadFlags) uploader(cfg *config.Config, svc service.Service, out, errOut io.Writer, description string) *upload.Uploader {
	gen := f.gen
	if gen == nil {
		gen = dummy.NewDefault()
	}
	u := upload.New(svc, gen, out, errOut, logging.New(errOut, cfg.Debug))
	u.Policy = upload.DefaultPolicy().
		WithMaxRetries(f.maxRetries).
		WithRetryTransport(f.retryTransport)
	if f.sleep != nil {
		u.Sleep = f.sleep
	}
	u.Quiet = cfg.Quiet
	if f.progress {
		// Per-record lines would tear the bar apart.
		u.Quiet = true
		u.Progress = output.NewProgress(errOut, f.count, description)
	}
	return u
}

// UploadCmd implements the upload command: one request per task.
type UploadCmd struct {
	uploadFlags
}

func (c *UploadCmd) Name() string      { return "upload" }
func (c *UploadCmd) Aliases() []string { return nil }
func (c *UploadCmd) Synopsis() string  { return "Create dummy tasks one request at a time" }
func (c *UploadCmd) Usage() string {
	return "taskseed upload [--count <n>] [--max-retries <n>] [--retry-network] [--progress]"
}
func (c *UploadCmd) NeedsAuth() bool { return true }

func (c *UploadCmd) RegisterFlags(fs *flag.FlagSet) {
	c.register(fs)
}

func (c *UploadCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if !c.validate(args, errOut) {
		return exitcode.UserError
	}
	u := c.uploader(cfg, svc, out, errOut, "uploading")
	sum, err := u.UploadEach(ctx, c.count)
	return finishUpload(cfg, sum, err, out, errOut)
}

// BatchUploadCmd implements the batch-upload command: one batch request per
// chunk of tasks.
type BatchUploadCmd struct {
	uploadFlags
	batchSize int
}

// SetBatchSize sets the chunk size (for testing).
func (c *BatchUploadCmd) SetBatchSize(n int) { c.batchSize = n }

func (c *BatchUploadCmd) Name() string      { return "batch-upload" }
func (c *BatchUploadCmd) Aliases() []string { return []string{"batch"} }
func (c *BatchUploadCmd) Synopsis() string  { return "Create dummy tasks with batch requests" }
func (c *BatchUploadCmd) Usage() string {
	return "taskseed batch-upload [--count <n>] [--batch-size <n>] [--max-retries <n>] [--retry-network] [--progress]"
}
func (c *BatchUploadCmd) NeedsAuth() bool { return true }

func (c *BatchUploadCmd) RegisterFlags(fs *flag.FlagSet) {
	c.register(fs)
	fs.IntVar(&c.batchSize, "batch-size", upload.DefaultBatchSize, "")
}

func (c *BatchUploadCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if !c.validate(args, errOut) {
		return exitcode.UserError
	}
	if c.batchSize < 1 || c.batchSize > upload.MaxBatchSize {
		fmt.Fprintf(errOut, "error: batch size must be between 1 and %d\n", upload.MaxBatchSize)
		return exitcode.UserError
	}
	u := c.uploader(cfg, svc, out, errOut, "uploading batches")
	sum, err := u.UploadBatches(ctx, c.count, c.batchSize)
	return finishUpload(cfg, sum, err, out, errOut)
}

// finishUpload prints the summary and maps the run error to an exit code.
func finishUpload(cfg *config.Config, sum upload.Summary, err error, out, errOut io.Writer) int {
	if !cfg.Quiet {
		output.FormatSummary(out, sum)
		output.FormatElapsed(out, sum.Elapsed)
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(errOut, "error: interrupted")
			return exitcode.Interrupted
		}
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
	return exitcode.Success
}
