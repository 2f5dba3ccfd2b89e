package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"cmee-tracker/internal/device"
	"cmee-tracker/internal/tracker"

	"github.com/spf13/cobra"
)

// pollCmd represents the poll command
var pollCmd = &cobra.Command{
	Use:   "poll",
	Short: "Run one poll cycle",
	Long:  `Log in to the CMEE service, fetch alarm and device data, log out and print the normalized watches.`,
	RunE:  runPoll,
}

func init() {
	rootCmd.AddCommand(pollCmd)
	pollCmd.Flags().Bool("json", false, "Print devices as JSON")
}

func runPoll(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	asJSON, _ := cmd.Flags().GetBool("json")

	summary, err := tracker.Run(cmd.Context(), tracker.Options{Config: cfg, Logger: logger})
	if err != nil {
		return err
	}
	return PrintDevices(cmd.OutOrStdout(), summary.Devices, asJSON)
}

// PrintDevices writes records as an aligned table, or as indented JSON.
func PrintDevices(w io.Writer, records []device.Record, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No devices found")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "DEV_ID\tNAME\tSTATUS\tLAT\tLON\tACC\tBATT\tLOCATION\tPOSITIONED")
	for _, rec := range records {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%.6f\t%.6f\t%s\t%s\t%s\t%s\n",
			rec.DevID,
			rec.HostName,
			rec.Attributes.Status,
			rec.Latitude(),
			rec.Longitude(),
			optional(rec.GPSAccuracy),
			optional(rec.Battery),
			rec.Attributes.Location,
			rec.Attributes.PositioningTime,
		)
	}
	return tw.Flush()
}

func optional(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}
