package cmd

import (
	"github.com/spf13/cobra"

	"github.com/go-drift/vdom/pkg/errors"
	"github.com/go-drift/vdom/pkg/trace"
)

func newShowCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "show <trace files...>",
		Short: "Print traces written by run --out",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, path := range args {
				t, err := trace.LoadFile(path)
				if err != nil {
					return &errors.VdomError{Op: "trace.LoadFile", Kind: errors.KindIO, Source: path, Err: err}
				}
				if err := trace.Render(cmd.OutOrStdout(), t, s.colorize); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
