package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/redhat-developer/openshift-checker/internal/batch"
	"github.com/redhat-developer/openshift-checker/internal/checker"
	"github.com/redhat-developer/openshift-checker/internal/log"
	"github.com/redhat-developer/openshift-checker/internal/model"
	"github.com/redhat-developer/openshift-checker/internal/output"
	"github.com/redhat-developer/openshift-checker/internal/platform"

	"github.com/spf13/cobra"
)

var errThreshold = errors.New("severity threshold exceeded")

func newCheckCmd() *cobra.Command {
	var (
		format   string
		parallel int
		failOn   string
	)
	cmd := &cobra.Command{
		Use:   "check IMAGE...",
		Short: "Analyze images and print the checks reported by the analyzer",
		Example: `  openshift-checker check sha256:1f3c...
  openshift-checker check --format json quay.io/app:latest registry.access.redhat.com/ubi9`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := log.ContextAttrs(cmd.Context(),
				slog.Group("openshift-checker",
					slog.String("cmd", "check"),
					slog.Int("pid", os.Getpid()),
				),
			)

			var threshold model.Severity
			if failOn != "" {
				var err error
				threshold, err = model.ParseSeverity(failOn)
				if err != nil {
					return fmt.Errorf("--fail-on: %w", err)
				}
			}

			bridge, err := checker.FromConfig(config)
			if err != nil {
				return err
			}
			formatter, err := output.New(format, bridge.Info())
			if err != nil {
				return fmt.Errorf("--format: %w", err)
			}
			if parallel <= 0 {
				parallel = config.Check.Parallel
			}

			reports := batch.Check(ctx, bridge, parallel, args)
			if ctx.Err() != nil {
				return &model.CancelledError{Cause: ctx.Err()}
			}
			if err := formatter.Format(cmd.OutOrStdout(), reports); err != nil {
				return fmt.Errorf("formatting output: %w", err)
			}

			if failed := batch.Failed(reports); len(failed) > 0 {
				for _, r := range failed {
					slog.ErrorContext(ctx, "analyze error", "image", r.ImageID, "kind", model.Kind(r.Err), "error", r.Err)
				}
				return fmt.Errorf("%d of %d images could not be checked: %w", len(failed), len(reports), failed[0].Err)
			}
			if threshold != "" {
				var n int
				for _, r := range reports {
					n += len(r.Result.Failing(threshold))
				}
				if n > 0 {
					return fmt.Errorf("%w: %d checks at %s or above", errThreshold, n, threshold)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "o", output.FormatText, "Output format (text, json, cyclonedx)")
	cmd.Flags().IntVar(&parallel, "parallel", 0, "Number of images checked at once (default: check.parallel from config)")
	cmd.Flags().StringVar(&failOn, "fail-on", "", "Exit with code 2 if a check at this severity or above did not pass (low, medium, high, critical)")
	return cmd
}

func newResolveCmd() *cobra.Command {
	var goos string
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Print the analyzer path used on the given operating system",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			os := platform.Current()
			if goos != "" {
				os = platform.Classify(goos)
			}
			resolver, err := checker.ResolverFromConfig(config.Analyzer)
			if err != nil {
				return err
			}
			path, err := resolver.Resolve(os)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), path)
			return err
		},
	}
	cmd.Flags().StringVar(&goos, "os", "", "Operating system (linux, darwin, windows), default is the current one")
	return cmd
}
