package main

import (
	"fmt"
	"strings"

	"github.com/fwojciec/sitesearch"
)

// Run executes the find command.
func (c *FindCmd) Run(deps *Dependencies) error {
	if len(sitesearch.Tokenize(strings.Join(c.Words, " "))) == 0 {
		fmt.Fprintln(deps.Stderr, "error: query contains no searchable words")
		return sitesearch.Errorf(sitesearch.EINVALID, "query contains no searchable words")
	}

	idx, err := deps.Store.Load(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", sitesearch.ErrorMessage(err))
		return err
	}

	urls := idx.Search(c.Words...)
	if len(urls) == 0 {
		fmt.Fprintln(deps.Stdout, "no matching pages")
		return nil
	}

	for _, u := range urls {
		fmt.Fprintln(deps.Stdout, u)
	}

	return nil
}
