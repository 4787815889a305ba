package main

import (
	"fmt"
)

// Run executes the scan command.
func (c *ScanCmd) Run(deps *Dependencies) error {
	result, err := deps.Runner.Run(deps.Ctx, deps.Feeds)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	fmt.Fprintf(deps.Stdout, "Scanned %d articles", result.Articles)
	if result.FetchFailed > 0 {
		fmt.Fprintf(deps.Stdout, " (%d failed to fetch)", result.FetchFailed)
	}
	fmt.Fprintln(deps.Stdout)

	fmt.Fprintf(deps.Stdout, "Discovered %d embeds: %d new, %d already logged\n",
		result.Discovered, result.Written, result.Skipped)

	if deps.Runner.Reposter != nil {
		fmt.Fprintf(deps.Stdout, "Posted %d quote posts", result.Posted)
		if result.PostFailed > 0 {
			fmt.Fprintf(deps.Stdout, " (%d failed)", result.PostFailed)
		}
		fmt.Fprintln(deps.Stdout)
	}

	return nil
}
