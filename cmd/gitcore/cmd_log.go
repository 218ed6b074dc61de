package main

import (
	"fmt"

	"github.com/odvcencio/gitcore/pkg/hash"
	"github.com/odvcencio/gitcore/pkg/repo"
	"github.com/spf13/cobra"
)

func newLogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "log [ref]",
		Short: "Show the commit ancestry reachable from ref (default HEAD)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			ref := "HEAD"
			if len(args) > 0 {
				ref = args[0]
			}
			cur, err := r.ResolveRef(ref)
			if err != nil {
				return err
			}

			seen := make(map[hash.Hash]bool)
			for !cur.IsZero() && !seen[cur] {
				seen[cur] = true
				commit, err := r.Store.ReadCommit(cur)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "commit %s\nAuthor: %s <%s>\n\n    %s\n\n",
					cur, commit.Author.Name, commit.Author.Email, commit.Message)
				if len(commit.Parents) == 0 {
					break
				}
				cur = commit.Parents[0]
			}
			return nil
		},
	}
}
