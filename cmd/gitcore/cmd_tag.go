package main

import (
	"fmt"

	"github.com/odvcencio/gitcore/pkg/repo"
	"github.com/spf13/cobra"
)

func newTagCmd() *cobra.Command {
	var deleteTag string
	var force bool

	cmd := &cobra.Command{
		Use:   "tag [name]",
		Short: "List or create lightweight tags",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			if deleteTag != "" {
				return r.DeleteTag(deleteTag)
			}

			if len(args) == 0 {
				names, err := r.ListTags()
				if err != nil {
					return err
				}
				for _, name := range names {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			}

			target, err := r.ResolveRef("HEAD")
			if err != nil {
				return fmt.Errorf("tag: resolve HEAD: %w", err)
			}
			return r.CreateTag(args[0], target, force)
		},
	}

	cmd.Flags().StringVarP(&deleteTag, "delete", "d", "", "delete the named tag")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing tag")
	return cmd
}
