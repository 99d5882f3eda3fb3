package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"taskseed/internal/config"
	"taskseed/internal/exitcode"
	"taskseed/internal/service"
)

func init() {
	Register(&HelpCmd{registry: DefaultRegistry})
}

// HelpCmd implements the help command.
type HelpCmd struct {
	registry *Registry
}

// NewHelpCmd creates a help command listing the commands in r.
func NewHelpCmd(r *Registry) *HelpCmd {
	return &HelpCmd{registry: r}
}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "taskseed help" }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, c.text())
	return exitcode.Success
}

func (c *HelpCmd) text() string {
	var b strings.Builder
	b.WriteString("Usage:\n")
	for _, cmd := range c.registry.All() {
		fmt.Fprintf(&b, "  %-58s %s\n", cmd.Usage(), cmd.Synopsis())
		if aliases := cmd.Aliases(); len(aliases) > 0 {
			fmt.Fprintf(&b, "      aliases: %s\n", strings.Join(aliases, ", "))
		}
	}
	b.WriteString(helpFooter)
	return b.String()
}

const helpFooter = `
Common flags:
  --env-file <file>  Read ACCESS_TOKEN and PROJECT_ID from this file (default .env)
  --api-url <url>    Override the API base URL
  --quiet            Suppress informational output
  --debug            Print debug logs to stderr

Environment:
  ACCESS_TOKEN       Personal access token sent as a bearer token
  PROJECT_ID         Project that receives the created tasks
`
