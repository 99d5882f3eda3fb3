package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskseed/internal/config"
	"taskseed/internal/csvout"
	"taskseed/internal/dummy"
	"taskseed/internal/exitcode"
	"taskseed/internal/output"
	"taskseed/internal/service"
)

func init() {
	Register(&GenerateCSVCmd{})
}

// GenerateCSVCmd implements the generate-csv command.
type GenerateCSVCmd struct {
	output string
	count  int
	gen    *dummy.Generator
}

// SetOutput sets the output path (for testing).
func (c *GenerateCSVCmd) SetOutput(path string) { c.output = path }

// SetCount sets the record count (for testing).
func (c *GenerateCSVCmd) SetCount(n int) { c.count = n }

// SetGenerator replaces the record generator (for testing).
func (c *GenerateCSVCmd) SetGenerator(gen *dummy.Generator) { c.gen = gen }

func (c *GenerateCSVCmd) Name() string      { return "generate-csv" }
func (c *GenerateCSVCmd) Aliases() []string { return []string{"csv"} }
func (c *GenerateCSVCmd) Synopsis() string  { return "Write dummy tasks to a CSV file" }
func (c *GenerateCSVCmd) Usage() string {
	return "taskseed generate-csv [--output <file>] [--count <n>]"
}
func (c *GenerateCSVCmd) NeedsAuth() bool { return false }

func (c *GenerateCSVCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.output, "output", csvout.DefaultFile, "")
	fs.StringVar(&c.output, "o", csvout.DefaultFile, "")
	fs.IntVar(&c.count, "count", csvout.DefaultCount, "")
	fs.IntVar(&c.count, "n", csvout.DefaultCount, "")
}

func (c *GenerateCSVCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	if c.count < 0 {
		fmt.Fprintf(errOut, "error: invalid count: %d\n", c.count)
		return exitcode.UserError
	}
	if c.output == "" {
		fmt.Fprintln(errOut, "error: output path required")
		return exitcode.UserError
	}

	gen := c.gen
	if gen == nil {
		gen = dummy.NewDefault()
	}
	if err := csvout.WriteFile(c.output, gen, c.count); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if !cfg.Quiet {
		output.FormatCSVWritten(out, c.count, c.output)
	}
	return exitcode.Success
}
