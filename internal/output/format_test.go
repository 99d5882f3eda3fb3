package output_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskseed/internal/output"
	"taskseed/internal/upload"
)

func TestFormatSummary(t *testing.T) {
	var buf bytes.Buffer
	output.FormatSummary(&buf, upload.Summary{Created: 997, Failed: 2, Skipped: 1, RateLimited: 4})

	assert.Equal(t, "created: 997, failed: 2, skipped: 1, rate limited: 4\n", buf.String())
}

func TestFormatElapsed(t *testing.T) {
	var buf bytes.Buffer
	output.FormatElapsed(&buf, 12500*time.Millisecond)

	assert.Equal(t, "Total time taken to generate tasks: 12.50 seconds\n", buf.String())
}

func TestFormatCSVWritten(t *testing.T) {
	var buf bytes.Buffer
	output.FormatCSVWritten(&buf, 1000, "tasks1000.csv")

	assert.Equal(t, "ok: wrote 1000 tasks to tasks1000.csv\n", buf.String())
}

func TestFormatTaskCount(t *testing.T) {
	var buf bytes.Buffer
	output.FormatTaskCount(&buf, "1201", 42)

	assert.Equal(t, "42 tasks in project 1201\n", buf.String())
}

func TestNewProgress_RendersToWriter(t *testing.T) {
	var buf bytes.Buffer
	bar := output.NewProgress(&buf, 20, "uploading")

	require.NoError(t, bar.Add(20))

	assert.Contains(t, buf.String(), "uploading")
	assert.Contains(t, buf.String(), "20/20")
}
