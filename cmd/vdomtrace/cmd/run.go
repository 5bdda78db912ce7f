package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"fortio.org/safecast"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/go-drift/vdom/pkg/errors"
	"github.com/go-drift/vdom/pkg/log"
	"github.com/go-drift/vdom/pkg/scenario"
	"github.com/go-drift/vdom/pkg/trace"
)

func newRunCommand(s *session) *cobra.Command {
	c := &cobra.Command{
		Use:   "run [scenario files...]",
		Short: "Replay scenarios and print their teardown traces",
		Long: `Replay each scenario in its own tree and print the teardown steps.

With no arguments every .yaml, .yml and .toml file in the scenario
directory (scenarios.dir in vdom.yaml, default ./scenarios) is replayed.
With --out, each trace is also written there as <name>.trace.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jobs, err := jobsFlag(cmd)
			if err != nil {
				return err
			}
			out, _ := cmd.Flags().GetString("out")

			results, err := s.replay(cmd.Context(), args, jobs)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, r := range results {
				if err := trace.Render(w, r.trace, s.colorize); err != nil {
					return err
				}
				if out != "" {
					path := filepath.Join(out, r.scenario.Name+".trace")
					if err := trace.SaveFile(path, r.trace); err != nil {
						return &errors.VdomError{Op: "trace.SaveFile", Kind: errors.KindIO, Source: path, Err: err}
					}
					log.Info("trace written", "path", path)
				}
			}
			return nil
		},
	}
	c.Flags().String("out", "", "directory to write msgpack traces to")
	c.Flags().Uint("jobs", 4, "scenarios replayed in parallel")
	return c
}

func jobsFlag(cmd *cobra.Command) (int, error) {
	jobs, err := cmd.Flags().GetUint("jobs")
	if err != nil {
		return 0, err
	}
	n, err := safecast.Conv[int](jobs)
	if err != nil {
		return 0, fmt.Errorf("--jobs: %w", err)
	}
	if n == 0 {
		n = 1
	}
	return n, nil
}

type result struct {
	path     string
	scenario *scenario.Scenario
	trace    *trace.Trace
}

// replay loads and runs every scenario, at most jobs at a time. Results come
// back in argument order. The first failure cancels the rest.
func (s *session) replay(ctx context.Context, args []string, jobs int) ([]result, error) {
	paths, err := s.scenarioPaths(args)
	if err != nil {
		return nil, err
	}

	results := make([]result, len(paths))
	for i, path := range paths {
		results[i].path = path
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, path := range paths {
		g.Go(func() error {
			defer errors.Recover("vdomtrace.replay")
			sc, err := scenario.Load(path)
			if err != nil {
				return err
			}
			t, err := sc.Run(ctx, s.domOptions()...)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = result{path: path, scenario: sc, trace: t}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for _, r := range results {
		if r.trace == nil {
			return nil, fmt.Errorf("%s: replay panicked", r.path)
		}
	}
	return results, nil
}

// scenarioPaths returns args, or the scenario files in the configured
// directory when args is empty.
func (s *session) scenarioPaths(args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	entries, err := os.ReadDir(s.cfg.ScenarioDir)
	if err != nil {
		return nil, &errors.VdomError{Op: "cmd.scenarioPaths", Kind: errors.KindIO, Source: s.cfg.ScenarioDir, Err: err}
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, err := scenario.FormatFor(e.Name()); err == nil {
			paths = append(paths, filepath.Join(s.cfg.ScenarioDir, e.Name()))
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no scenario files in %s", s.cfg.ScenarioDir)
	}
	slices.Sort(paths)
	return paths, nil
}
