package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/go-drift/vdom/pkg/errors"
	"github.com/go-drift/vdom/pkg/log"
	"github.com/go-drift/vdom/pkg/scenario"
)

var errPanicked = fmt.Errorf("replay panicked")

func newCheckCommand(s *session) *cobra.Command {
	c := &cobra.Command{
		Use:   "check [scenario files...]",
		Short: "Replay scenarios and compare against their expectations",
		Long: `Replay each scenario and compare the teardown with its expect list.

A scenario that drops its whole tree must also leave nothing behind but the
root element and the root scope. The command fails if any scenario does.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jobs, err := jobsFlag(cmd)
			if err != nil {
				return err
			}
			paths, err := s.scenarioPaths(args)
			if err != nil {
				return err
			}

			failures := make([]error, len(paths))
			steps := make([]int, len(paths))
			var g errgroup.Group
			g.SetLimit(jobs)
			for i, path := range paths {
				g.Go(func() error {
					failures[i] = errPanicked
					defer errors.Recover("vdomtrace.check")
					sc, err := scenario.Load(path)
					if err != nil {
						failures[i] = err
						return nil
					}
					t, err := sc.Run(cmd.Context(), s.domOptions()...)
					if err != nil {
						failures[i] = err
						return nil
					}
					steps[i] = len(t.Events)
					failures[i] = sc.Verify(t)
					return nil
				})
			}
			_ = g.Wait()

			ok := color.New(color.FgGreen)
			fail := color.New(color.FgRed, color.Bold)
			if s.colorize {
				ok.EnableColor()
				fail.EnableColor()
			} else {
				ok.DisableColor()
				fail.DisableColor()
			}

			w := cmd.OutOrStdout()
			failed := 0
			for i, path := range paths {
				if failures[i] != nil {
					failed++
					log.Warn("scenario failed", "path", path, "error", failures[i])
					fmt.Fprintf(w, "%s %s\n  %v\n", fail.Sprint("FAIL"), path, failures[i])
					continue
				}
				fmt.Fprintf(w, "%s   %s (%d steps)\n", ok.Sprint("ok"), path, steps[i])
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d scenarios failed", failed, len(paths))
			}
			return nil
		},
	}
	c.Flags().Uint("jobs", 4, "scenarios replayed in parallel")
	return c
}
