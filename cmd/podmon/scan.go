package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/srg/podmon/listener"
	"github.com/srg/podmon/proximity"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "List nearby accessories",
	Long: `Scan for a fixed time and list the accessories whose proximity pairing
advertisements were received, with their signal strength and latest battery reading.

Use --all to also list advertisers of the vendor whose payload could not be decoded.`,
	Args: cobra.NoArgs,
	RunE: runScan,
}

var (
	scanVerbose   bool
	scanDuration  time.Duration
	scanFormat    string
	scanAll       bool
	scanAllowList []string
	scanBlockList []string
	scanLayout    string
	scanModels    []string
)

func init() {
	initScanFlags()
}

func initScanFlags() {
	scanCmd.Flags().BoolVar(&scanVerbose, "verbose", false, "Enable debug logging")
	scanCmd.Flags().DurationVarP(&scanDuration, "duration", "d", 10*time.Second, "Scan duration")
	scanCmd.Flags().StringVarP(&scanFormat, "format", "f", "table", "Output format (table, json)")
	scanCmd.Flags().BoolVarP(&scanAll, "all", "a", false, "Include advertisers whose payload could not be decoded")
	scanCmd.Flags().StringSliceVar(&scanAllowList, "allow", nil, "Only show devices with these addresses")
	scanCmd.Flags().StringSliceVar(&scanBlockList, "block", nil, "Hide devices with these addresses")
	scanCmd.Flags().StringVar(&scanLayout, "layout", "", "Payload layout (continuity, compact)")
	scanCmd.Flags().StringSliceVarP(&scanModels, "model", "m", nil, "Only decode these models (name or 0x hex id)")
}

func resetScanFlags() {
	scanCmd.ResetFlags()
	initScanFlags()
}

// scanResult is one listed advertiser.
type scanResult struct {
	Address  string                   `json:"address"`
	RSSI     int                      `json:"rssi"`
	Count    int                      `json:"count"`
	LastSeen time.Time                `json:"last_seen"`
	Status   *proximity.BatteryStatus `json:"status,omitempty"`
}

func runScan(cmd *cobra.Command, _ []string) error {
	if err := validateFormat(scanFormat, "table", "json"); err != nil {
		return err
	}
	if scanDuration <= 0 {
		return fmt.Errorf("invalid duration %s: must be > 0", scanDuration)
	}

	cfg, fromFile, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("layout") {
		cfg.Layout = scanLayout
	}
	if cmd.Flags().Changed("model") {
		cfg.Models = scanModels
	}
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

	lopts := cfg.ListenerOptions()
	lopts.AllowList = scanAllowList
	lopts.BlockList = scanBlockList
	l := listener.New(logger, lopts)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, scanDuration)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Handler calls are serialised and finished once the subscription is stopped.
	decoded := make(map[string]proximity.BatteryStatus)
	sub, err := l.Start(ctx, func(raw listener.RawAdvertisement) {
		if status, ok := decoder.Decode(raw.Payload, raw.VendorID); ok {
			decoded[raw.Address] = status
		}
	})
	if err != nil {
		return err
	}

	progress := NewCountdownPrinter(cmd.ErrOrStderr(), "Scanning for accessories", scanDuration)
	progress.Start()

	select {
	case <-ctx.Done():
	case <-sub.Done():
	}
	sub.Stop()
	progress.Stop()

	if err := sub.Err(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		logger.WithError(err).Error("Scan failed")
		return err
	}

	results := collectScanResults(l.Sightings(), decoded, scanAll)
	logger.WithFields(logrus.Fields{
		"advertisers": len(l.Sightings()),
		"listed":      len(results),
	}).Debug("Scan finished")

	if scanFormat == "json" {
		return displayScanJSON(cmd.OutOrStdout(), results)
	}
	return displayScanTable(cmd.OutOrStdout(), results)
}

// collectScanResults joins sightings with decoded readings, strongest signal first.
func collectScanResults(sightings []listener.Sighting, decoded map[string]proximity.BatteryStatus, all bool) []scanResult {
	results := make([]scanResult, 0, len(sightings))
	for _, s := range sightings {
		r := scanResult{Address: s.Address, RSSI: s.RSSI, Count: s.Count, LastSeen: s.LastSeen}
		if status, ok := decoded[s.Address]; ok {
			r.Status = &status
		} else if !all {
			continue
		}
		results = append(results, r)
	}
	slices.SortStableFunc(results, func(a, b scanResult) int {
		return b.RSSI - a.RSSI
	})
	return results
}

func displayScanTable(w io.Writer, results []scanResult) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "No accessories discovered")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ADDRESS\tRSSI\tMODEL\tBATTERY\tSEEN")
	for _, r := range results {
		model, battery := "-", "-"
		if r.Status != nil {
			model = r.Status.Model.Name()
			battery = plainBattery(*r.Status)
		}
		fmt.Fprintf(tw, "%s\t%d dBm\t%s\t%s\t%dx\n", r.Address, r.RSSI, model, battery, r.Count)
	}
	return tw.Flush()
}

func displayScanJSON(w io.Writer, results []scanResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(results)
}
