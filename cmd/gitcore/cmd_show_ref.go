package main

import (
	"fmt"

	"github.com/odvcencio/gitcore/pkg/repo"
	"github.com/spf13/cobra"
)

func newShowRefCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show-ref",
		Short: "List every reference and the hash it resolves to",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			list, err := r.Refs.List("refs/")
			if err != nil {
				return err
			}
			for _, ref := range list {
				h := ref.Hash
				if ref.IsSymbolic() {
					resolved, err := r.Refs.Resolve(ref.Name)
					if err != nil {
						continue
					}
					h = resolved.Hash
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", h, ref.Name)
			}
			return nil
		},
	}
}
