package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/openwater-etl/internal/adapter/recipients"
	"github.com/couchcryptid/openwater-etl/internal/domain"
	"github.com/couchcryptid/openwater-etl/internal/report"
)

type reportOptions struct {
	source     sourceOptions
	recipients string
	from       string
	subject    string
	html       bool
}

// NewReportCommand creates the report command.
func NewReportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &reportOptions{}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render every recipient's report without sending it",
		Long: `Scan the feed once, load the recipients file, and print the notification
each recipient would receive. Nothing is published.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, rootOpts, opts)
		},
	}

	addSourceFlags(cmd, &opts.source)
	cmd.Flags().StringVarP(&opts.recipients, "recipients", "r", "recipients.yaml", "recipients YAML file")
	cmd.Flags().StringVar(&opts.from, "from", "igotdarighttemperature@gmail.com", "sender address")
	cmd.Flags().StringVar(&opts.subject, "subject", "Your Water Temperatures from OpenWater", "report subject")
	cmd.Flags().BoolVar(&opts.html, "html", false, "print the HTML body instead of the plain text body")

	return cmd
}

func runReport(cmd *cobra.Command, rootOpts *RootOptions, opts *reportOptions) error {
	logger := rootOpts.logger(cmd)

	res, err := opts.source.scan(cmd.Context(), logger)
	if err != nil {
		return err
	}

	rs, err := recipients.NewFileSource(opts.recipients, logger).Recipients(cmd.Context())
	if err != nil {
		return err
	}

	assembler := report.NewAssembler(opts.from, opts.subject)
	notifications := make([]domain.Notification, 0, len(rs))
	for _, r := range rs {
		n, err := assembler.Render(r, r.Select(res.Store))
		if err != nil {
			return err
		}
		notifications = append(notifications, n)
	}

	if rootOpts.Format == "json" {
		return writeJSON(cmd.OutOrStdout(), notifications)
	}
	return writeReportText(cmd.OutOrStdout(), notifications, opts.html)
}

func writeReportText(w io.Writer, notifications []domain.Notification, html bool) error {
	if len(notifications) == 0 {
		_, err := fmt.Fprintln(w, "No recipients.")
		return err
	}
	for i, n := range notifications {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "To: %s <%s>\nFrom: %s\nSubject: %s\n\n", n.Name, n.Recipient, n.From, n.Subject)
		body := n.TextBody
		if html {
			body = n.HTMLBody
		}
		if _, err := io.WriteString(w, body); err != nil {
			return err
		}
	}
	return nil
}
