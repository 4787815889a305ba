package main

import (
	"fmt"

	"github.com/kmichalik/embedtrace"
)

// Run executes the pending command.
func (c *PendingCmd) Run(deps *Dependencies) error {
	pending, err := deps.Embeds.PendingReposts(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", embedtrace.ErrorMessage(err))
		return err
	}

	if len(pending) == 0 {
		fmt.Fprintln(deps.Stdout, "No pending reposts.")
		return nil
	}

	for _, p := range pending {
		fmt.Fprintf(deps.Stdout, "%s  %s  via %s\n", p.ID, p.PostURL, p.ArticleDomain)
	}

	return nil
}
