package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	appLog "weekcal/internal/log"
	"weekcal/internal/period"
	"weekcal/internal/watch"
)

const defaultConfigPath = "/etc/weekcal/config.yaml"

// globalFlags holds flags shared by every subcommand.
type globalFlags struct {
	configPath string
	debug      bool
}

// monthFlags selects the month to show.
type monthFlags struct {
	date     string
	index    int
	prefetch bool
}

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var g globalFlags

	root := &cobra.Command{
		Use:           "weekcal",
		Short:         "Page ICS calendars month by month the way a week view does",
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if g.debug {
				appLog.SetLevel(appLog.LevelDebug)
			}
		},
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", defaultConfigPath, "path to config file")
	root.PersistentFlags().BoolVar(&g.debug, "debug", false, "enable debug logging")

	root.AddCommand(newIndexCmd(), newMonthCmd(&g), newWatchCmd(&g))
	return root
}

func newIndexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "index <YYYY-MM-DD>",
		Short: "Print the period index of a date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := time.Parse(time.DateOnly, args[0])
			if err != nil {
				return fmt.Errorf("parse date %q: %w", args[0], err)
			}
			// The fraction can reach the next integer on the 31st, so the
			// month comes from the date itself.
			year, month, _ := t.Date()
			fmt.Fprintf(cmd.OutOrStdout(), "index=%.4f period=%d year=%d month=%s\n",
				period.ToIndex(t), period.Index(year, month), year, month)
			return nil
		},
	}
}

func addMonthFlags(fs *pflag.FlagSet, mf *monthFlags) {
	fs.StringVar(&mf.date, "date", "", "date inside the month to show (YYYY-MM-DD, default today)")
	fs.IntVar(&mf.index, "index", 0, "period index of the month to show (overrides --date)")
	fs.BoolVar(&mf.prefetch, "prefetch", false, "also load the previous and next month")
}

// indexChanged reports whether --index was given explicitly, so that
// index 0 (January of year 0) stays addressable.
func indexChanged(cmd *cobra.Command) bool {
	changed := false
	cmd.Flags().Visit(func(f *pflag.Flag) {
		if f.Name == "index" {
			changed = true
		}
	})
	return changed
}

func newMonthCmd(g *globalFlags) *cobra.Command {
	var mf monthFlags
	cmd := &cobra.Command{
		Use:   "month",
		Short: "Load and print one month of events",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(g.configPath)
			if err != nil {
				return err
			}
			idx, err := a.indexFor(mf.date, mf.index, indexChanged(cmd))
			if err != nil {
				return err
			}
			a.printMonths(cmd.OutOrStdout(), idx, mf.prefetch)
			return nil
		},
	}
	addMonthFlags(cmd.Flags(), &mf)
	return cmd
}

func newWatchCmd(g *globalFlags) *cobra.Command {
	var mf monthFlags
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print a month and reprint it whenever a calendar file changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(g.configPath)
			if err != nil {
				return err
			}
			idx, err := a.indexFor(mf.date, mf.index, indexChanged(cmd))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			a.printMonths(out, idx, mf.prefetch)

			paths := a.calendarPaths()
			if len(paths) == 0 {
				return fmt.Errorf("no calendars configured in %s", g.configPath)
			}
			w, err := watch.New(paths, a.cfg.WatchDebounce())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			appLog.Info("watching calendars", "files", len(paths), "period", idx)
			return w.Run(ctx, func(changed []string) {
				a.reload()
				a.printMonths(out, idx, mf.prefetch)
			})
		},
	}
	addMonthFlags(cmd.Flags(), &mf)
	return cmd
}
