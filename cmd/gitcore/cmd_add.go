package main

import (
	"fmt"

	"github.com/odvcencio/gitcore/pkg/repo"
	"github.com/spf13/cobra"
)

func newAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <path>...",
		Short: "Stage files into the index",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			idx, err := r.ReadIndex()
			if err != nil {
				return err
			}

			for _, path := range args {
				info, err := r.FS.Stat(path)
				if err != nil {
					return fmt.Errorf("add %s: %w", path, err)
				}
				if info.IsDir() {
					if err := r.AddDirectory(idx, path, true); err != nil {
						return err
					}
					continue
				}
				if err := r.AddFile(idx, path); err != nil {
					return err
				}
			}

			return r.WriteIndex(idx)
		},
	}
}
