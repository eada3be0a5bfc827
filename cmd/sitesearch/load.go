package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/sitesearch"
)

// Run executes the load command.
func (c *LoadCmd) Run(deps *Dependencies) error {
	idx, err := deps.Store.Load(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitesearch.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Loaded index of %s\n", idx.SeedURL)
	fmt.Fprintf(deps.Stdout, "  %d words across %d pages\n", idx.WordCount(), idx.PageCount())
	fmt.Fprintf(deps.Stdout, "  built %s (%s)\n", idx.BuiltAt.Format(time.RFC3339), idx.ID)

	return nil
}
