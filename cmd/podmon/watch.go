package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/srg/podmon/internal/ringchan"
	"github.com/srg/podmon/listener"
	"github.com/srg/podmon/pkg/config"
	"github.com/srg/podmon/state"
)

// watchEventsCapacity bounds the changes queued for rendering; a slow terminal
// loses the oldest ones.
const watchEventsCapacity = 64

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Track an accessory and print battery changes",
	Long: `Listen for proximity pairing advertisements and print the accessory state
every time it changes.

The accessory is reported as disconnected when no advertisement arrived within
the stale timeout, and as unavailable while the Bluetooth adapter cannot scan.
Watching runs until interrupted unless --duration is given.`,
	Example: `  podmon watch
  podmon watch --model "AirPods Pro 2" --stale-timeout 10s
  podmon watch --format json --duration 1m`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

var (
	watchVerbose      bool
	watchDuration     time.Duration
	watchStaleTimeout time.Duration
	watchSmoothing    int
	watchLayout       string
	watchModels       []string
	watchFormat       string
	watchNoColor      bool
	watchHistory      int
)

func init() {
	initWatchFlags()
}

func initWatchFlags() {
	watchCmd.Flags().BoolVar(&watchVerbose, "verbose", false, "Enable debug logging")
	watchCmd.Flags().DurationVarP(&watchDuration, "duration", "d", 0, "Stop after this long (0 to watch until interrupted)")
	watchCmd.Flags().DurationVar(&watchStaleTimeout, "stale-timeout", 0, "Report the accessory disconnected after this long without advertisements")
	watchCmd.Flags().IntVar(&watchSmoothing, "smoothing", 0, "Number of recent readings to smooth battery levels over")
	watchCmd.Flags().StringVar(&watchLayout, "layout", "", "Payload layout (continuity, compact)")
	watchCmd.Flags().StringSliceVarP(&watchModels, "model", "m", nil, "Only track these models (name or 0x hex id)")
	watchCmd.Flags().StringVarP(&watchFormat, "format", "f", "text", "Output format (text, json)")
	watchCmd.Flags().BoolVar(&watchNoColor, "no-color", false, "Disable colored output")
	watchCmd.Flags().IntVar(&watchHistory, "history", 0, "Print the last N changes on exit")
}

func resetWatchFlags() {
	watchCmd.ResetFlags()
	initWatchFlags()
}

// applyWatchFlags overrides config values with explicitly set flags.
func applyWatchFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("stale-timeout") {
		cfg.StaleTimeout = watchStaleTimeout
	}
	if flags.Changed("smoothing") {
		cfg.SmoothingWindow = watchSmoothing
	}
	if flags.Changed("layout") {
		cfg.Layout = watchLayout
	}
	if flags.Changed("model") {
		cfg.Models = watchModels
	}
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if err := validateFormat(watchFormat, "text", "json"); err != nil {
		return err
	}
	if watchHistory < 0 {
		return fmt.Errorf("invalid history size %d: must be >= 0", watchHistory)
	}

	cfg, fromFile, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyWatchFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := configureLogger(cmd, "verbose", cfg, fromFile)
	if err != nil {
		return err
	}

	decoder, err := cfg.NewDecoder()
	if err != nil {
		return err
	}

	// All arguments validated - don't show usage on runtime errors
	cmd.SilenceUsage = true

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if watchDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, watchDuration)
		defer cancel()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	w := &watchWriter{
		out:      out,
		format:   watchFormat,
		renderer: newBatteryRenderer(cfg.LowBatteryThreshold, !watchNoColor && isTerminal(out)),
	}
	if watchHistory > 0 {
		w.history = newChangeHistory(watchHistory)
	}

	mgr := state.New(logger, cfg.StateOptions())
	defer mgr.Close()

	events := ringchan.New[statusChange](watchEventsCapacity)
	mgr.RegisterFunc(func(old, next state.DeviceStatus) {
		if events.Send(statusChange{At: time.Now(), Old: old, New: next}) {
			logger.Warn("Output is falling behind, dropped a status change")
		}
	})

	lopts := cfg.ListenerOptions()
	lopts.AdapterHook = listener.AdapterHookFunc(mgr.SetAdapterAvailable)
	l := listener.New(logger, lopts)

	// Print the starting point before any reading can change it.
	if err := w.initial(mgr.CurrentStatus()); err != nil {
		return err
	}

	sub, err := l.Start(ctx, listener.DecodeTo(decoder, mgr))
	if err != nil {
		return err
	}
	defer sub.Stop()

	var scanErr error
loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case <-sub.Done():
			scanErr = sub.Err()
			break loop
		case c := <-events.C():
			if err := w.change(c, logger); err != nil {
				return err
			}
		}
	}

	// Deliver what is still queued before reporting.
	sub.Stop()
	mgr.Close()
	events.Close()
	for c := range events.C() {
		if err := w.change(c, logger); err != nil {
			return err
		}
	}

	logger.WithFields(logrus.Fields{
		"changes": events.GetMetrics().Written,
		"dropped": events.GetMetrics().Overwritten,
	}).Debug("Watch finished")

	if w.history != nil && w.format == "text" {
		w.history.print(out, w.renderer)
	}

	if scanErr != nil && !errors.Is(scanErr, context.Canceled) && !errors.Is(scanErr, context.DeadlineExceeded) {
		return scanErr
	}
	return nil
}

// watchWriter prints status changes in the chosen format.
type watchWriter struct {
	out      io.Writer
	format   string
	renderer *batteryRenderer
	history  *changeHistory
}

func (w *watchWriter) initial(st state.DeviceStatus) error {
	if w.format == "json" {
		return nil
	}
	_, err := fmt.Fprintf(w.out, "[%s] %s\n", time.Now().Format(time.TimeOnly), w.renderer.status(st))
	return err
}

func (w *watchWriter) change(c statusChange, logger *logrus.Logger) error {
	if w.history != nil {
		if err := w.history.add(c); err != nil {
			logger.WithError(err).Warn("History dropped a change")
		}
	}

	if w.format == "json" {
		return json.NewEncoder(w.out).Encode(c)
	}
	_, err := fmt.Fprintf(w.out, "[%s] %s\n", c.At.Format(time.TimeOnly), w.renderer.status(c.New))
	return err
}

// validateFormat checks format against the supported values.
func validateFormat(format string, valid ...string) error {
	for _, v := range valid {
		if format == v {
			return nil
		}
	}
	return fmt.Errorf("invalid format '%s': must be one of %v", format, valid)
}
