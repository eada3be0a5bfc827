package main

import (
	"fmt"

	"github.com/fwojciec/sitesearch"
)

// Run executes the print command.
func (c *PrintCmd) Run(deps *Dependencies) error {
	if len(sitesearch.Tokenize(c.Word)) != 1 {
		fmt.Fprintf(deps.Stderr, "error: %q is not a single word\n", c.Word)
		return sitesearch.Errorf(sitesearch.EINVALID, "%q is not a single word", c.Word)
	}

	idx, err := deps.Store.Load(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitesearch.ErrorMessage(err))
		return err
	}

	postings, ok := idx.Postings(c.Word)
	if !ok {
		fmt.Fprintf(deps.Stdout, "%q was not found\n", c.Word)
		return nil
	}

	for _, p := range postings {
		fmt.Fprintf(deps.Stdout, "%6d  %s\n", p.Count, p.URL)
	}

	return nil
}
