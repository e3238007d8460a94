package main

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/rsyncapp/synccore/internal/config"
	"github.com/rsyncapp/synccore/internal/metrics"
	"github.com/rsyncapp/synccore/internal/orchestrator"
	"github.com/rsyncapp/synccore/internal/synclog"
	"github.com/rsyncapp/synccore/internal/volume"
)

var stateDirFlag string
var loadedDefaults config.Defaults

var rootCmd = &cobra.Command{
	Use:   "rsynccli",
	Short: "Drive the synccore transfer engine from the command line",
	Long:  "rsynccli exercises the synccore engine's sync, resume, pause/cancel and volume APIs.",
}

func init() {
	home, _ := os.UserHomeDir()
	defaultStateDir := filepath.Join(home, ".rsynccli", "transfers")

	// Persisted defaults sit under flags: a config file sets the baseline,
	// an explicit --state-dir/--concurrency/--bwlimit still wins since
	// pflag only applies its StringVar default when the flag is never
	// passed.
	loadedDefaults, _ = config.Load(filepath.Join(home, ".rsynccli", "config.yaml"))
	if loadedDefaults.StateDir != "" {
		defaultStateDir = loadedDefaults.StateDir
	}

	rootCmd.PersistentFlags().StringVar(&stateDirFlag, "state-dir", defaultStateDir, "directory holding transfer state JSON files")
}

// Execute runs the CLI; it's the only symbol main.go calls.
func Execute() error {
	return rootCmd.Execute()
}

var (
	engineOnce sync.Once
	engine     *orchestrator.Engine
	engineErr  error
	watcherCtx context.CancelFunc
)

// sharedEngine lazily builds the one Engine the whole command tree uses,
// wiring it to a background volume watcher and a local metrics registry.
func sharedEngine() (*orchestrator.Engine, error) {
	engineOnce.Do(func() {
		w, err := volume.New(volume.MountRootsForPlatform())
		if err != nil {
			synclog.Base().WithError(err).Warn("volume watcher unavailable, continuing without it")
		}

		reg := prometheus.NewRegistry()
		collectors := metrics.New(reg)

		engine, engineErr = orchestrator.New(stateDirFlag, w, collectors)
		if engineErr != nil {
			return
		}

		if w != nil {
			ctx, cancel := context.WithCancel(context.Background())
			watcherCtx = cancel
			w.Start(ctx)
		}
	})
	return engine, engineErr
}
