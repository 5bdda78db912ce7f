package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "vdomtrace version %s (built %s)\n", Version, BuildTime)
			if s.cfg.ModulePath != "" {
				fmt.Fprintf(w, "project %s (%s)\n", s.cfg.Project, s.cfg.ModulePath)
			} else {
				fmt.Fprintf(w, "project %s\n", s.cfg.Project)
			}
			return nil
		},
	}
}
