package main

import (
	"fmt"

	"github.com/odvcencio/gitcore/pkg/repo"
	"github.com/spf13/cobra"
)

func newAheadCountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ahead-count [from] [ancestor]",
		Short: "Count commits from from (inclusive) back to ancestor (exclusive)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			from, err := r.ResolveRef(args[0])
			if err != nil {
				return err
			}
			ancestor, err := r.ResolveRef(args[1])
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), r.CountTillAncestor(from, ancestor))
			return nil
		},
	}
}
