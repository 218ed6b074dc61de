package main

import (
	"fmt"

	"github.com/odvcencio/gitcore/pkg/repo"
	"github.com/spf13/cobra"
)

func newBranchCmd() *cobra.Command {
	var deleteBranch string

	cmd := &cobra.Command{
		Use:   "branch [name]",
		Short: "List, create, or delete branches",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			if deleteBranch != "" {
				return r.DeleteBranch(deleteBranch)
			}

			if len(args) == 0 {
				names, err := r.ListBranches()
				if err != nil {
					return err
				}
				current, onBranch, _ := r.CurrentBranch()
				for _, name := range names {
					marker := "  "
					if onBranch && name == current {
						marker = "* "
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s%s\n", marker, name)
				}
				return nil
			}

			target, err := r.ResolveRef("HEAD")
			if err != nil {
				return fmt.Errorf("branch: resolve HEAD: %w", err)
			}
			return r.CreateBranch(args[0], target)
		},
	}

	cmd.Flags().StringVarP(&deleteBranch, "delete", "d", "", "delete the named branch")
	return cmd
}
