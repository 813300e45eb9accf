package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/kiln"
	"github.com/aretw0/kiln/pkg/adapters/lifecycle"
	"github.com/aretw0/kiln/pkg/core"
)

var watchCmd = &cobra.Command{
	Use:   "watch [pattern]",
	Short: "Rebuild documents as they change",
	Long: `Build the documents matched by the pattern, then watch them and rebuild every
document that changes, printing its record count. Stop with Ctrl+C.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		patterns, err := documentPatterns(args)
		if err != nil {
			return err
		}
		pattern := patterns[0]

		r, err := newReader()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		out := cmd.OutOrStdout()
		if records, err := r.ReadGlob(ctx, pattern); err != nil {
			slog.Warn("initial read failed", "error", err)
		} else {
			fmt.Fprintf(out, "%d records\n", len(records))
		}

		events, err := r.Watch(ctx, pattern)
		if err != nil {
			return err
		}
		src := lifecycle.NewSource(events)
		if err := src.Start(ctx); err != nil {
			return err
		}

		fmt.Fprintf(out, "watching %s\n", pattern)
		for e := range src.Events() {
			change, ok := e.(core.Event)
			if !ok {
				continue
			}
			rebuild(ctx, r, change, out)
		}
		return r.Save()
	},
}

func rebuild(ctx context.Context, r *kiln.Reader, e core.Event, out io.Writer) {
	if e.Type == core.EventDelete {
		fmt.Fprintf(out, "%s: removed\n", e.Path)
		return
	}
	records, err := r.ReadFile(ctx, e.Path)
	if err != nil {
		fmt.Fprintf(out, "%s: %v\n", e.Path, err)
		return
	}
	fmt.Fprintf(out, "%s: %d records\n", e.Path, len(records))
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
