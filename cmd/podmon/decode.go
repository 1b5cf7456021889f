package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/srg/podmon/internal/device"
	"github.com/srg/podmon/proximity"
)

// decodeCmd represents the decode command
var decodeCmd = &cobra.Command{
	Use:   "decode <hex-payload>",
	Short: "Decode a captured advertisement payload",
	Long: `Decode the manufacturer data of a captured proximity pairing advertisement
without touching the Bluetooth adapter.

The payload is given as hex. Spaces, colons and a leading 0x are ignored. By default
the payload starts at the message type byte; use --company-id when the capture
still carries the 2-byte little-endian company identifier in front of it.`,
	Example: `  podmon decode 070701142000a50701
  podmon decode --company-id 4c00070701142000a50701 --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runDecode,
}

var (
	decodeVendor    uint16
	decodeCompanyID bool
	decodeLayout    string
	decodeModels    []string
	decodeFormat    string
)

func init() {
	initDecodeFlags()
}

func initDecodeFlags() {
	decodeCmd.Flags().Uint16Var(&decodeVendor, "vendor", proximity.AppleCompanyID, "Company identifier the payload was advertised with (defaults to the tracked vendor)")
	decodeCmd.Flags().BoolVar(&decodeCompanyID, "company-id", false, "Payload starts with the 2-byte company identifier")
	decodeCmd.Flags().StringVar(&decodeLayout, "layout", "", "Payload layout (continuity, compact)")
	decodeCmd.Flags().StringSliceVarP(&decodeModels, "model", "m", nil, "Only accept these models (name or 0x hex id)")
	decodeCmd.Flags().StringVarP(&decodeFormat, "format", "f", "table", "Output format (table, json)")
}

func resetDecodeFlags() {
	decodeCmd.ResetFlags()
	initDecodeFlags()
}

func runDecode(cmd *cobra.Command, args []string) error {
	if err := validateFormat(decodeFormat, "table", "json"); err != nil {
		return err
	}

	payload, err := parseHexPayload(args[0])
	if err != nil {
		return err
	}

	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("layout") {
		cfg.Layout = decodeLayout
	}
	if cmd.Flags().Changed("model") {
		cfg.Models = decodeModels
	}

	decoder, err := cfg.NewDecoder()
	if err != nil {
		return err
	}

	vendorID := decoder.VendorID()
	if cmd.Flags().Changed("vendor") {
		vendorID = decodeVendor
	}
	if decodeCompanyID {
		var ok bool
		vendorID, payload, ok = device.SplitManufacturerData(payload)
		if !ok {
			return fmt.Errorf("payload too short to carry a company identifier: %w", ErrNotApplicable)
		}
	}

	cmd.SilenceUsage = true

	status, ok := decoder.Decode(payload, vendorID)
	if !ok {
		return ErrNotApplicable
	}

	if decodeFormat == "json" {
		return writeDecodedJSON(cmd.OutOrStdout(), vendorID, status)
	}
	return writeDecodedTable(cmd.OutOrStdout(), vendorID, status)
}

// parseHexPayload accepts hex with optional 0x prefix and separators.
func parseHexPayload(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	s = strings.NewReplacer(" ", "", ":", "", "-", "").Replace(s)
	if s == "" {
		return nil, fmt.Errorf("empty payload")
	}
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex payload: %w", err)
	}
	return data, nil
}

type decodedPayload struct {
	Vendor    string                  `json:"vendor"`
	ModelName string                  `json:"model_name"`
	Status    proximity.BatteryStatus `json:"status"`
}

func writeDecodedJSON(w io.Writer, vendorID uint16, status proximity.BatteryStatus) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(decodedPayload{
		Vendor:    device.VendorName(vendorID),
		ModelName: status.Model.Name(),
		Status:    status,
	})
}

func writeDecodedTable(w io.Writer, vendorID uint16, status proximity.BatteryStatus) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "VENDOR\t%s\n", device.VendorName(vendorID))
	fmt.Fprintf(tw, "MODEL\t%s (%s)\n", status.Model.Name(), status.Model)
	fmt.Fprintf(tw, "LEFT\t%s\n", chargeText(status.Left, status.LeftCharging))
	fmt.Fprintf(tw, "RIGHT\t%s\n", chargeText(status.Right, status.RightCharging))
	fmt.Fprintf(tw, "CASE\t%s\n", chargeText(status.Case, status.CaseCharging))
	fmt.Fprintf(tw, "SINGLE POD\t%t\n", status.SinglePod)
	return tw.Flush()
}

func chargeText(p proximity.Percent, charging bool) string {
	if charging {
		return p.String() + " (charging)"
	}
	return p.String()
}
