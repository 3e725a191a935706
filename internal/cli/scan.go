package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/openwater-etl/internal/domain"
	"github.com/couchcryptid/openwater-etl/internal/report"
)

type scanOptions struct {
	source sourceOptions
	states []string
	unit   string
}

type readingOutput struct {
	Location    string      `json:"location"`
	Published   string      `json:"published"`
	Temperature float64     `json:"temperature"`
	Unit        domain.Unit `json:"unit"`
}

type skippedOutput struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
	Error  string `json:"error"`
}

// ScanResult is the data payload of `wtemp scan --format json`.
type ScanResult struct {
	Records  int             `json:"records"`
	Skipped  []skippedOutput `json:"skipped,omitempty"`
	States   []string        `json:"states,omitempty"`
	Unit     domain.Unit     `json:"unit"`
	Readings []readingOutput `json:"readings"`
}

// NewScanCommand creates the scan command.
func NewScanCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &scanOptions{}

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan the feed and list readings",
		Long: `Scan the feed and list its readings, optionally restricted to one or
more state codes. Each --state selects every reading whose location contains
that code; repeated flags concatenate in order.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, rootOpts, opts)
		},
	}

	addSourceFlags(cmd, &opts.source)
	cmd.Flags().StringArrayVarP(&opts.states, "state", "s", nil, "two-letter state code to select (repeatable)")
	cmd.Flags().StringVarP(&opts.unit, "unit", "u", "F", "temperature unit (F|C)")

	return cmd
}

func runScan(cmd *cobra.Command, rootOpts *RootOptions, opts *scanOptions) error {
	unit, err := domain.ParseUnit(opts.unit)
	if err != nil {
		return err
	}
	states := make([]string, 0, len(opts.states))
	for _, code := range opts.states {
		norm, err := domain.NormalizeStateCode(code)
		if err != nil {
			return err
		}
		states = append(states, norm)
	}

	res, err := opts.source.scan(cmd.Context(), rootOpts.logger(cmd))
	if err != nil {
		return err
	}

	readings := res.Store.All()
	if len(states) > 0 {
		readings = res.Store.ForStates(states...)
	}

	out := ScanResult{
		Records:  res.Records,
		States:   states,
		Unit:     unit,
		Readings: make([]readingOutput, 0, len(readings)),
	}
	for _, s := range res.Skipped {
		out.Skipped = append(out.Skipped, skippedOutput{Line: s.Line, Reason: s.Reason(), Error: s.Err.Error()})
	}
	for _, rd := range readings {
		out.Readings = append(out.Readings, readingOutput{
			Location:    rd.Location,
			Published:   rd.Published,
			Temperature: rd.In(unit),
			Unit:        unit,
		})
	}

	if rootOpts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), out)
	}
	return writeScanText(cmd.OutOrStdout(), out)
}

func writeScanText(w io.Writer, out ScanResult) error {
	if len(out.Readings) == 0 {
		_, err := fmt.Fprintln(w, "No readings matched.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LOCATION\tPUBLISHED\tTEMP")
	for _, rd := range out.Readings {
		fmt.Fprintf(tw, "%s\t%s\t%s %s\n", rd.Location, rd.Published, report.FormatTemp(rd.Temperature), rd.Unit.Symbol())
	}
	return tw.Flush()
}
