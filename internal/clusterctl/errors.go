package clusterctl

import (
	"fmt"
	"strings"
)

// CommandError is returned when a cluster CLI command does not produce the expected outcome
type CommandError struct {
	Args   []string
	Result Result
	Reason string
}

func (c *CommandError) Error() string {
	reason := c.Reason
	if reason == "" {
		reason = fmt.Sprintf("exit code %d", c.Result.ExitCode)
	}
	return fmt.Sprintf("command '%s' failed (%s): stdout=[%s], stderr=[%s]",
		strings.Join(c.Args, " "), reason, c.Result.Stdout, c.Result.Stderr)
}
