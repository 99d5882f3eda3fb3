package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"taskseed/internal/config"
	"taskseed/internal/exitcode"
	"taskseed/internal/output"
	"taskseed/internal/service"
)

func init() {
	Register(&CountCmd{})
}

// CountCmd implements the count command.
type CountCmd struct{}

func (c *CountCmd) Name() string      { return "count" }
func (c *CountCmd) Aliases() []string { return nil }
func (c *CountCmd) Synopsis() string  { return "Print the number of tasks in the project" }
func (c *CountCmd) Usage() string     { return "taskseed count" }
func (c *CountCmd) NeedsAuth() bool   { return true }

func (c *CountCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *CountCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	n, err := svc.TaskCount(ctx)
	if err != nil {
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}

	output.FormatTaskCount(out, cfg.ProjectID, n)
	return exitcode.Success
}
