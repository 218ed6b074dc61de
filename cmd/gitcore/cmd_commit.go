package main

import (
	"fmt"
	"os"
	"time"

	"github.com/odvcencio/gitcore/pkg/object"
	"github.com/odvcencio/gitcore/pkg/repo"
	"github.com/odvcencio/gitcore/pkg/sign"
	"github.com/spf13/cobra"
)

func newCommitCmd() *cobra.Command {
	var message string
	var author string
	var all bool
	var gpgSign bool
	var signingKey string

	cmd := &cobra.Command{
		Use:   "commit",
		Short: "Record staged changes as a new commit",
		RunE: func(cmd *cobra.Command, args []string) error {
			if message == "" {
				return fmt.Errorf("commit message is required (-m)")
			}

			r, err := repo.Open(".")
			if err != nil {
				return err
			}

			if author == "" {
				author = loadPrefs().Author
			}
			if author == "" {
				author = os.Getenv("USER")
				if author == "" {
					author = "unknown"
				}
			}

			now := time.Now()
			sig := object.Signature{
				Name:      author,
				Email:     author + "@localhost",
				Timestamp: now.Unix(),
				TZOffset:  formatTZOffset(now),
			}

			var signer sign.Signer
			if gpgSign || signingKey != "" {
				cfg, err := r.ReadConfig()
				if err != nil {
					return fmt.Errorf("commit: %w", err)
				}
				s, _, err := sign.NewSSHSigner(signingKey, cfg.Core.SigningKey)
				if err != nil {
					return fmt.Errorf("commit: %w", err)
				}
				signer = s
			}

			h, err := r.Commit(repo.CommitOptions{
				Message:   message,
				Author:    sig,
				AutoStage: all,
				Signer:    signer,
			})
			if err != nil {
				return err
			}

			branch, onBranch, err := r.CurrentBranch()
			label := "HEAD"
			if err == nil && onBranch {
				label = branch
			}

			short := h.String()[:8]
			fmt.Fprintf(cmd.OutOrStdout(), "[%s %s] %s\n", label, short, message)
			return nil
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "", "commit message")
	cmd.Flags().StringVar(&author, "author", "", "override author (default: author in ~/.gitcoreconfig.toml, then $USER)")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "auto-stage the working tree before committing")
	cmd.Flags().BoolVarP(&gpgSign, "gpg-sign", "S", false, "sign the commit with an SSH key")
	cmd.Flags().StringVar(&signingKey, "signing-key", "", "SSH key path to sign with (default: core.signingkey, then ~/.ssh)")

	return cmd
}

func formatTZOffset(t time.Time) string {
	_, offset := t.Zone()
	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}
	return fmt.Sprintf("%s%02d%02d", sign, offset/3600, (offset%3600)/60)
}
