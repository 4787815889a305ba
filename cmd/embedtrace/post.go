package main

import (
	"fmt"
)

// Run executes the post command.
func (c *PostCmd) Run(deps *Dependencies) error {
	posted, failed, err := deps.Runner.PostPending(deps.Ctx)
	if err != nil {
		return fmt.Errorf("repost pass failed: %w", err)
	}

	if posted == 0 && failed == 0 {
		fmt.Fprintln(deps.Stdout, "No pending reposts.")
		return nil
	}

	fmt.Fprintf(deps.Stdout, "Posted %d quote posts", posted)
	if failed > 0 {
		fmt.Fprintf(deps.Stdout, " (%d failed)", failed)
	}
	fmt.Fprintln(deps.Stdout)

	return nil
}
