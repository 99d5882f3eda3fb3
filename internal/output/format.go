// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"taskseed/internal/upload"
)

// FormatSummary writes the outcome counts of an upload run.
// Format: "created: N, failed: N, skipped: N, rate limited: N\n"
func FormatSummary(w io.Writer, sum upload.Summary) {
	fmt.Fprintf(w, "created: %d, failed: %d, skipped: %d, rate limited: %d\n",
		sum.Created, sum.Failed, sum.Skipped, sum.RateLimited)
}

// FormatElapsed writes the total run time with two decimals.
func FormatElapsed(w io.Writer, d time.Duration) {
	fmt.Fprintf(w, "Total time taken to generate tasks: %.2f seconds\n", d.Seconds())
}

// FormatCSVWritten writes the confirmation line of the generate-csv command.
func FormatCSVWritten(w io.Writer, n int, path string) {
	fmt.Fprintf(w, "ok: wrote %d tasks to %s\n", n, path)
}

// FormatTaskCount writes the number of tasks in a project.
func FormatTaskCount(w io.Writer, projectID string, n int) {
	fmt.Fprintf(w, "%d tasks in project %s\n", n, projectID)
}

// NewProgress returns a progress bar over total records that renders to w.
func NewProgress(w io.Writer, total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(w) }),
	)
}
